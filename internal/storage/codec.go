package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/klauspost/compress/zstd"
)

// ErrCorruptRecord возвращается, если запись чанка не удаётся разобрать
var ErrCorruptRecord = errors.New("повреждённая запись чанка")

// Формат записи (little endian):
//
//	int32  X чанка
//	int32  Z чанка
//	uint8  количество записей палитры N
//	uint16 * N ID блоков палитры
//	uint32 длина сжатых вокселей L
//	L байт вокселей, сжатых zstd
const recordHeaderSize = 4 + 4 + 1

// ChunkCodec кодирует чанки в компактные записи для хранилища.
// Безопасен для одновременного использования.
type ChunkCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewChunkCodec создаёт кодек с заданным уровнем сжатия zstd (1..4).
// Нулевой уровень означает уровень по умолчанию.
func NewChunkCodec(level int) (*ChunkCodec, error) {
	encoderLevel := zstd.SpeedDefault
	if level != 0 {
		if level < int(zstd.SpeedFastest) || level > int(zstd.SpeedBestCompression) {
			return nil, fmt.Errorf("недопустимый уровень сжатия: %d", level)
		}
		encoderLevel = zstd.EncoderLevel(level)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(encoderLevel))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания zstd кодера: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(world.ChunkVolume*2))
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("ошибка создания zstd декодера: %w", err)
	}

	return &ChunkCodec{encoder: encoder, decoder: decoder}, nil
}

// Encode сериализует снимок чанка
func (c *ChunkCodec) Encode(snap world.ChunkSnapshot) ([]byte, error) {
	if len(snap.Palette) > world.MaxPaletteSize {
		return nil, fmt.Errorf("чанк %v: палитра из %d записей не помещается в запись", snap.Position, len(snap.Palette))
	}

	compressed := c.encoder.EncodeAll(snap.Voxels, nil)

	var buf bytes.Buffer
	buf.Grow(recordHeaderSize + len(snap.Palette)*2 + 4 + len(compressed))

	// Запись в bytes.Buffer не возвращает ошибок
	binary.Write(&buf, binary.LittleEndian, int32(snap.Position.X))
	binary.Write(&buf, binary.LittleEndian, int32(snap.Position.Z))
	buf.WriteByte(uint8(len(snap.Palette)))
	for _, id := range snap.Palette {
		binary.Write(&buf, binary.LittleEndian, uint16(id))
	}
	binary.Write(&buf, binary.LittleEndian, uint32(len(compressed)))
	buf.Write(compressed)

	return buf.Bytes(), nil
}

// Decode восстанавливает чанк из записи. Восстановленный чанк чистый.
func (c *ChunkCodec) Decode(data []byte) (*world.Chunk, error) {
	if len(data) < recordHeaderSize {
		return nil, fmt.Errorf("%w: заголовок короче %d байт", ErrCorruptRecord, recordHeaderSize)
	}

	x := int32(binary.LittleEndian.Uint32(data[0:4]))
	z := int32(binary.LittleEndian.Uint32(data[4:8]))
	paletteLen := int(data[8])
	offset := recordHeaderSize

	if len(data) < offset+paletteLen*2+4 {
		return nil, fmt.Errorf("%w: палитра обрезана", ErrCorruptRecord)
	}
	palette := make([]block.BlockID, paletteLen)
	for i := range palette {
		palette[i] = block.BlockID(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2
	}

	compressedLen := int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	if len(data)-offset != compressedLen {
		return nil, fmt.Errorf("%w: ожидалось %d байт вокселей, получено %d", ErrCorruptRecord, compressedLen, len(data)-offset)
	}

	voxels, err := c.decoder.DecodeAll(data[offset:], make([]byte, 0, world.ChunkVolume))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	chunk, err := world.ChunkFromData(vec.New(int(x), 0, int(z)), palette, voxels)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return chunk, nil
}

// Close освобождает ресурсы кодека
func (c *ChunkCodec) Close() {
	c.encoder.Close()
	c.decoder.Close()
}
