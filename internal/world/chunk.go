package world

import (
	"fmt"
	"iter"
	"sync"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Chunk — столб вокселей ChunkSize x ChunkHeight x ChunkSize.
// Каждый воксель хранит однобайтовый индекс палитры.
type Chunk struct {
	Position vec.Vec3 // Координаты чанка (Y всегда 0)

	mu      sync.RWMutex
	palette *Palette
	voxels  []byte
	dirty   bool   // Изменён с момента последнего сохранения
	changes uint64 // Счетчик изменений, растёт при каждой записи
}

// ChunkSnapshot — согласованная копия данных чанка для сохранения
type ChunkSnapshot struct {
	Position vec.Vec3
	Palette  []block.BlockID
	Voxels   []byte
	Version  uint64 // Значение счетчика изменений на момент снимка
}

// NewChunk создаёт пустой чанк, заполненный воздухом. Y позиции обнуляется:
// чанк занимает весь столбец.
func NewChunk(position vec.Vec3) *Chunk {
	position.Y = 0
	return &Chunk{
		Position: position,
		palette:  NewPalette(),
		voxels:   make([]byte, ChunkVolume),
	}
}

// ChunkFromData восстанавливает чанк из сохранённой палитры и вокселей как есть.
// Индексы вне палитры при чтении дают воздух.
func ChunkFromData(position vec.Vec3, paletteIDs []block.BlockID, voxels []byte) (*Chunk, error) {
	if len(voxels) != ChunkVolume {
		return nil, fmt.Errorf("chunk %v: voxel data has %d bytes, want %d", position, len(voxels), ChunkVolume)
	}
	palette, err := PaletteFromIDs(paletteIDs)
	if err != nil {
		return nil, fmt.Errorf("chunk %v: %w", position, err)
	}

	data := make([]byte, ChunkVolume)
	copy(data, voxels)
	position.Y = 0
	return &Chunk{
		Position: position,
		palette:  palette,
		voxels:   data,
	}, nil
}

// GetBlock возвращает ID блока по локальным координатам.
// Вне границ чанка — воздух.
func (c *Chunk) GetBlock(local vec.Vec3) block.BlockID {
	index, ok := LocalToIndex(local)
	if !ok {
		return block.AirBlockID
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.palette.Resolve(c.voxels[index])
}

// SetBlock устанавливает блок по локальным координатам.
// Координаты вне чанка молча игнорируются. При переполнении палитры
// возвращается ErrPaletteOverflow, а чанк не изменяется.
func (c *Chunk) SetBlock(local vec.Vec3, id block.BlockID) error {
	index, ok := LocalToIndex(local)
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.setIndexLocked(index, id)
}

func (c *Chunk) setIndexLocked(index int, id block.BlockID) error {
	paletteIndex, err := c.palette.Add(id)
	if err != nil {
		return fmt.Errorf("chunk %v: %w", c.Position, err)
	}
	c.voxels[index] = paletteIndex
	c.dirty = true
	c.changes++
	return nil
}

// Fill заполняет весь чанк одним типом блока, сбрасывая палитру
func (c *Chunk) Fill(id block.BlockID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.palette = NewPalette()
	// В свежей палитре одна запись, переполнение невозможно
	paletteIndex, _ := c.palette.Add(id)
	for i := range c.voxels {
		c.voxels[i] = paletteIndex
	}
	c.dirty = true
	c.changes++
}

// IsEmpty возвращает true, если в палитре только воздух. Воксели не сканируются.
func (c *Chunk) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.isEmptyLocked()
}

func (c *Chunk) isEmptyLocked() bool {
	return c.palette.Len() == 1 && c.palette.Resolve(0) == block.AirBlockID
}

// CountSolidBlocks считает воксели, отличные от воздуха
func (c *Chunk) CountSolidBlocks() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.isEmptyLocked() {
		return 0
	}

	count := 0
	for _, paletteIndex := range c.voxels {
		if c.palette.Resolve(paletteIndex) != block.AirBlockID {
			count++
		}
	}
	return count
}

// Blocks перебирает все непустые воксели в порядке возрастания индекса.
// Последовательность ленивая и может перебираться повторно. Пока идёт
// перебор, чанк заблокирован на чтение: писать в него из тела цикла нельзя.
func (c *Chunk) Blocks() iter.Seq2[vec.Vec3, block.BlockID] {
	return func(yield func(vec.Vec3, block.BlockID) bool) {
		c.mu.RLock()
		defer c.mu.RUnlock()

		if c.isEmptyLocked() {
			return
		}
		for index, paletteIndex := range c.voxels {
			id := c.palette.Resolve(paletteIndex)
			if id == block.AirBlockID {
				continue
			}
			local, _ := IndexToLocal(index)
			if !yield(local, id) {
				return
			}
		}
	}
}

// MarkClean сбрасывает флаг изменений после успешного сохранения
func (c *Chunk) MarkClean() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dirty = false
}

// MarkCleanAt сбрасывает флаг, только если с версии снимка чанк не менялся.
// Возвращает false, если после снимка были записи.
func (c *Chunk) MarkCleanAt(version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.changes != version {
		return false
	}
	c.dirty = false
	return true
}

// IsDirty возвращает true, если чанк нужно сохранить
func (c *Chunk) IsDirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.dirty
}

// PaletteLen возвращает количество записей в палитре
func (c *Chunk) PaletteLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.palette.Len()
}

// PaletteIDs возвращает копию палитры в порядке индексов
func (c *Chunk) PaletteIDs() []block.BlockID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.palette.IDs()
}

// Voxels возвращает копию массива индексов палитры
func (c *Chunk) Voxels() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]byte, len(c.voxels))
	copy(out, c.voxels)
	return out
}

// Snapshot возвращает согласованную копию палитры и вокселей под одной блокировкой
func (c *Chunk) Snapshot() ChunkSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	voxels := make([]byte, len(c.voxels))
	copy(voxels, c.voxels)
	return ChunkSnapshot{
		Position: c.Position,
		Palette:  c.palette.IDs(),
		Voxels:   voxels,
		Version:  c.changes,
	}
}
