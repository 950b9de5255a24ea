package world

import (
	"errors"
	"sync"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// ChunkManager владеет всеми загруженными чанками и маршрутизирует доступ
// по мировым координатам. Ввода-вывода не выполняет: грязные чанки перед
// выгрузкой сохраняет вызывающая сторона.
type ChunkManager struct {
	chunksMu sync.RWMutex        // Мьютекс для карты чанков
	chunks   map[vec.Vec3]*Chunk // Не более одного чанка на координату
	metrics  *Metrics
}

// NewChunkManager создаёт пустой менеджер. metrics может быть nil.
func NewChunkManager(metrics *Metrics) *ChunkManager {
	return &ChunkManager{
		chunks:  make(map[vec.Vec3]*Chunk),
		metrics: metrics,
	}
}

// GetOrCreate возвращает чанк, создавая пустой при необходимости.
// Создание атомарно относительно координаты.
func (cm *ChunkManager) GetOrCreate(coord vec.Vec3) *Chunk {
	coord = columnKey(coord)

	cm.chunksMu.RLock()
	chunk, exists := cm.chunks[coord]
	cm.chunksMu.RUnlock()
	if exists {
		return chunk
	}

	cm.chunksMu.Lock()
	defer cm.chunksMu.Unlock()

	// Проверяем еще раз на случай гонки
	if chunk, exists := cm.chunks[coord]; exists {
		return chunk
	}
	chunk = NewChunk(coord)
	cm.chunks[coord] = chunk
	cm.metrics.chunkCreated()
	cm.metrics.setLoaded(len(cm.chunks))
	return chunk
}

// Get возвращает загруженный чанк
func (cm *ChunkManager) Get(coord vec.Vec3) (*Chunk, bool) {
	cm.chunksMu.RLock()
	defer cm.chunksMu.RUnlock()

	chunk, exists := cm.chunks[columnKey(coord)]
	return chunk, exists
}

// Insert добавляет чанк по его собственной позиции, заменяя существующий
func (cm *ChunkManager) Insert(chunk *Chunk) {
	chunk.Position = columnKey(chunk.Position)

	cm.chunksMu.Lock()
	defer cm.chunksMu.Unlock()

	cm.chunks[chunk.Position] = chunk
	cm.metrics.setLoaded(len(cm.chunks))
}

// InsertIfAbsent добавляет чанк, только если позиция свободна.
// Возвращает false, если там уже есть чанк (например, изменённый игроком).
func (cm *ChunkManager) InsertIfAbsent(chunk *Chunk) bool {
	chunk.Position = columnKey(chunk.Position)

	cm.chunksMu.Lock()
	defer cm.chunksMu.Unlock()

	if _, exists := cm.chunks[chunk.Position]; exists {
		return false
	}
	cm.chunks[chunk.Position] = chunk
	cm.metrics.setLoaded(len(cm.chunks))
	return true
}

// Remove удаляет чанк и возвращает его
func (cm *ChunkManager) Remove(coord vec.Vec3) (*Chunk, bool) {
	coord = columnKey(coord)

	cm.chunksMu.Lock()
	defer cm.chunksMu.Unlock()

	chunk, exists := cm.chunks[coord]
	if exists {
		delete(cm.chunks, coord)
		cm.metrics.setLoaded(len(cm.chunks))
	}
	return chunk, exists
}

// GetBlock возвращает блок по мировым координатам.
// Незагруженный чанк читается как воздух и не создаётся.
func (cm *ChunkManager) GetBlock(world vec.Vec3) block.BlockID {
	chunk, exists := cm.Get(WorldToChunk(world))
	if !exists {
		return block.AirBlockID
	}
	return chunk.GetBlock(WorldToLocal(world))
}

// SetBlock устанавливает блок по мировым координатам, создавая чанк при необходимости
func (cm *ChunkManager) SetBlock(world vec.Vec3, id block.BlockID) error {
	local := WorldToLocal(world)
	if !InBounds(local) {
		// Запись за пределами высоты мира игнорируется, чанк не создаётся
		return nil
	}

	chunk := cm.GetOrCreate(WorldToChunk(world))
	err := chunk.SetBlock(local, id)
	if errors.Is(err, ErrPaletteOverflow) {
		cm.metrics.paletteOverflow()
	}
	return err
}

// LoadedChunks возвращает координаты загруженных чанков в произвольном порядке
func (cm *ChunkManager) LoadedChunks() []vec.Vec3 {
	cm.chunksMu.RLock()
	defer cm.chunksMu.RUnlock()

	coords := make([]vec.Vec3, 0, len(cm.chunks))
	for coord := range cm.chunks {
		coords = append(coords, coord)
	}
	return coords
}

// DirtyChunks возвращает чанки, требующие сохранения
func (cm *ChunkManager) DirtyChunks() []*Chunk {
	cm.chunksMu.RLock()
	defer cm.chunksMu.RUnlock()

	var dirty []*Chunk
	for _, chunk := range cm.chunks {
		if chunk.IsDirty() {
			dirty = append(dirty, chunk)
		}
	}
	return dirty
}

// ChunkCount возвращает количество загруженных чанков
func (cm *ChunkManager) ChunkCount() int {
	cm.chunksMu.RLock()
	defer cm.chunksMu.RUnlock()

	return len(cm.chunks)
}

// UnloadDistantChunks выгружает чанки, для которых квадрат расстояния в
// плоскости XZ до center больше maxRadius². Y не учитывается.
// Изменения выгруженных чанков теряются; возвращаются их координаты.
func (cm *ChunkManager) UnloadDistantChunks(center vec.Vec3, maxRadius int) []vec.Vec3 {
	maxDistanceSq := maxRadius * maxRadius

	cm.chunksMu.Lock()
	defer cm.chunksMu.Unlock()

	var removed []vec.Vec3
	for coord := range cm.chunks {
		if coord.DistanceSqXZ(center) > maxDistanceSq {
			delete(cm.chunks, coord)
			removed = append(removed, coord)
		}
	}

	cm.metrics.chunksUnloaded(len(removed))
	cm.metrics.setLoaded(len(cm.chunks))
	return removed
}

// columnKey приводит координату чанка к ключу карты: чанк занимает
// весь столбец, поэтому Y всегда 0
func columnKey(coord vec.Vec3) vec.Vec3 {
	coord.Y = 0
	return coord
}
