package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

func newTestCodec(t *testing.T) *ChunkCodec {
	t.Helper()
	codec, err := NewChunkCodec(0)
	require.NoError(t, err)
	t.Cleanup(codec.Close)
	return codec
}

func generatedChunk(t *testing.T, coord vec.Vec3) *world.Chunk {
	t.Helper()
	gen, err := world.NewTerrainGenerator(world.DefaultTerrainConfig(), block.NewRegistry(), nil)
	require.NoError(t, err)
	chunk, err := gen.GenerateChunk(coord)
	require.NoError(t, err)
	return chunk
}

func TestCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	chunk := generatedChunk(t, vec.New(-3, 0, 7))
	require.NoError(t, chunk.SetBlock(vec.New(2, 120, 9), block.WoodBlockID))

	record, err := codec.Encode(chunk.Snapshot())
	require.NoError(t, err)
	assert.Less(t, len(record), world.ChunkVolume/4, "воксели должны сжиматься")

	decoded, err := codec.Decode(record)
	require.NoError(t, err)
	assert.Equal(t, chunk.Position, decoded.Position)
	assert.Equal(t, chunk.PaletteIDs(), decoded.PaletteIDs())
	assert.Equal(t, chunk.Voxels(), decoded.Voxels())
	assert.False(t, decoded.IsDirty(), "восстановленный чанк чистый")
	assert.Equal(t, block.WoodBlockID, decoded.GetBlock(vec.New(2, 120, 9)))
}

func TestCodecEmptyChunk(t *testing.T) {
	codec := newTestCodec(t)

	record, err := codec.Encode(world.NewChunk(vec.New(1<<20, 0, -(1 << 20))).Snapshot())
	require.NoError(t, err)

	decoded, err := codec.Decode(record)
	require.NoError(t, err)
	assert.True(t, decoded.IsEmpty())
	assert.Equal(t, vec.New(1<<20, 0, -(1<<20)), decoded.Position)
}

func TestCodecCorruptRecords(t *testing.T) {
	codec := newTestCodec(t)
	record, err := codec.Encode(generatedChunk(t, vec.Zero).Snapshot())
	require.NoError(t, err)

	cases := map[string][]byte{
		"пусто":             nil,
		"короткий заголовок": record[:5],
		"обрезанная палитра": record[:recordHeaderSize+1],
		"обрезанные воксели": record[:len(record)-3],
		"лишние байты":       append(append([]byte(nil), record...), 1, 2, 3),
	}
	for name, data := range cases {
		_, err := codec.Decode(data)
		assert.ErrorIs(t, err, ErrCorruptRecord, name)
	}

	// Первая запись палитры обязана быть воздухом
	broken := append([]byte(nil), record...)
	broken[recordHeaderSize] = byte(block.StoneBlockID)
	_, err = codec.Decode(broken)
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestCodecCompressionLevel(t *testing.T) {
	_, err := NewChunkCodec(9)
	assert.Error(t, err)

	codec, err := NewChunkCodec(4)
	require.NoError(t, err)
	defer codec.Close()

	record, err := codec.Encode(generatedChunk(t, vec.New(2, 0, 2)).Snapshot())
	require.NoError(t, err)
	_, err = codec.Decode(record)
	assert.NoError(t, err)
}

func TestChunkKey(t *testing.T) {
	assert.Equal(t, "chunk:-4:17", chunkKey(vec.New(-4, 9, 17)))

	coord, err := parseChunkKey("chunk:-4:17")
	require.NoError(t, err)
	assert.Equal(t, vec.New(-4, 0, 17), coord)

	_, err = parseChunkKey("player:1")
	assert.Error(t, err)
}
