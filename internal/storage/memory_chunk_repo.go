package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/annel0/voxel-world/internal/vec"
)

// MemoryChunkRepo реализует ChunkRepo в памяти.
// Используется для тестов и прогонов генератора без сохранения на диск.
// ВНИМАНИЕ: Данные теряются при завершении процесса!
type MemoryChunkRepo struct {
	mu   sync.RWMutex
	data map[vec.Vec3][]byte // координаты чанка -> запись
}

// NewMemoryChunkRepo создает новый репозиторий чанков в памяти
func NewMemoryChunkRepo() *MemoryChunkRepo {
	return &MemoryChunkRepo{
		data: make(map[vec.Vec3][]byte),
	}
}

// Save сохраняет копию записи
func (r *MemoryChunkRepo) Save(ctx context.Context, coord vec.Vec3, record []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[normalizeCoord(coord)] = append([]byte(nil), record...)
	return nil
}

// Load возвращает копию записи
func (r *MemoryChunkRepo) Load(ctx context.Context, coord vec.Vec3) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.data[normalizeCoord(coord)]
	if !exists {
		return nil, false, nil
	}
	return append([]byte(nil), record...), true, nil
}

// Delete удаляет запись
func (r *MemoryChunkRepo) Delete(ctx context.Context, coord vec.Vec3) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.data, normalizeCoord(coord))
	return nil
}

// BatchSave сохраняет все записи под одной блокировкой
func (r *MemoryChunkRepo) BatchSave(ctx context.Context, records map[vec.Vec3][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for coord, record := range records {
		r.data[normalizeCoord(coord)] = append([]byte(nil), record...)
	}
	return nil
}

// List возвращает координаты, отсортированные по X, затем по Z
func (r *MemoryChunkRepo) List(ctx context.Context) ([]vec.Vec3, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	coords := make([]vec.Vec3, 0, len(r.data))
	for coord := range r.data {
		coords = append(coords, coord)
	}
	r.mu.RUnlock()

	sort.Slice(coords, func(i, j int) bool {
		if coords[i].X != coords[j].X {
			return coords[i].X < coords[j].X
		}
		return coords[i].Z < coords[j].Z
	})
	return coords, nil
}

// Count возвращает количество сохранённых записей
func (r *MemoryChunkRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.data)
}

// Close ничего не делает
func (r *MemoryChunkRepo) Close() error {
	return nil
}

// normalizeCoord обнуляет Y, как и ключи остальных репозиториев
func normalizeCoord(coord vec.Vec3) vec.Vec3 {
	return vec.New(coord.X, 0, coord.Z)
}
