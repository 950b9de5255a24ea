package storage

import (
	"context"
	"fmt"

	"github.com/annel0/voxel-world/internal/vec"
)

// ChunkRepo определяет интерфейс хранилища закодированных записей чанков.
// Записи адресуются координатами чанка (X, Z); Y не используется.
type ChunkRepo interface {
	// Save сохраняет запись чанка, заменяя прежнюю.
	Save(ctx context.Context, coord vec.Vec3, record []byte) error

	// Load возвращает запись чанка.
	// Второе значение равно false, если чанк ещё не сохранялся.
	Load(ctx context.Context, coord vec.Vec3) ([]byte, bool, error)

	// Delete удаляет запись. Удаление отсутствующей записи не ошибка.
	Delete(ctx context.Context, coord vec.Vec3) error

	// BatchSave сохраняет несколько записей за одну операцию (для автосохранения).
	BatchSave(ctx context.Context, records map[vec.Vec3][]byte) error

	// List возвращает координаты всех сохранённых чанков.
	List(ctx context.Context) ([]vec.Vec3, error)

	// Close закрывает хранилище.
	Close() error
}

const chunkKeyPrefix = "chunk:"

// chunkKey строит ключ записи вида "chunk:x:z"
func chunkKey(coord vec.Vec3) string {
	return fmt.Sprintf("%s%d:%d", chunkKeyPrefix, coord.X, coord.Z)
}

// parseChunkKey разбирает ключ, построенный chunkKey
func parseChunkKey(key string) (vec.Vec3, error) {
	var x, z int
	if _, err := fmt.Sscanf(key, chunkKeyPrefix+"%d:%d", &x, &z); err != nil {
		return vec.Vec3{}, fmt.Errorf("ошибка парсинга ключа '%s': %w", key, err)
	}
	return vec.New(x, 0, z), nil
}
