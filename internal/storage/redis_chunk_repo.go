package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/go-redis/redis/v8"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        `yaml:"addr"`       // Адрес Redis сервера
	Password  string        `yaml:"password"`   // Пароль (пустой если не требуется)
	DB        int           `yaml:"db"`         // Номер базы данных
	KeyPrefix string        `yaml:"key_prefix"` // Префикс перед ключом chunk:x:z
	TTL       time.Duration `yaml:"ttl"`        // Время жизни записей, 0 - бессрочно
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "voxel:",
	}
}

// RedisChunkRepo хранит записи чанков в Redis. Подходит как общий кэш
// чанков для нескольких процессов генерации.
type RedisChunkRepo struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisChunkRepo подключается к Redis и проверяет соединение
func NewRedisChunkRepo(ctx context.Context, config *RedisConfig) (*RedisChunkRepo, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	return &RedisChunkRepo{
		client:    client,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
	}, nil
}

func (r *RedisChunkRepo) key(coord vec.Vec3) string {
	return r.keyPrefix + chunkKey(coord)
}

// Save сохраняет запись чанка
func (r *RedisChunkRepo) Save(ctx context.Context, coord vec.Vec3, record []byte) error {
	if err := r.client.Set(ctx, r.key(coord), record, r.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка сохранения чанка %d:%d в Redis: %w", coord.X, coord.Z, err)
	}
	return nil
}

// Load читает запись чанка
func (r *RedisChunkRepo) Load(ctx context.Context, coord vec.Vec3) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.key(coord)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil // Чанк не найден
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения чанка %d:%d из Redis: %w", coord.X, coord.Z, err)
	}
	return data, true, nil
}

// Delete удаляет запись чанка
func (r *RedisChunkRepo) Delete(ctx context.Context, coord vec.Vec3) error {
	if err := r.client.Del(ctx, r.key(coord)).Err(); err != nil {
		return fmt.Errorf("ошибка удаления чанка %d:%d из Redis: %w", coord.X, coord.Z, err)
	}
	return nil
}

// BatchSave записывает все записи одним pipeline
func (r *RedisChunkRepo) BatchSave(ctx context.Context, records map[vec.Vec3][]byte) error {
	if len(records) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for coord, record := range records {
		pipe.Set(ctx, r.key(coord), record, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ошибка выполнения batch в Redis: %w", err)
	}
	return nil
}

// List обходит ключи командой SCAN
func (r *RedisChunkRepo) List(ctx context.Context) ([]vec.Vec3, error) {
	var coords []vec.Vec3

	iter := r.client.Scan(ctx, 0, r.keyPrefix+chunkKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		coord, err := parseChunkKey(strings.TrimPrefix(iter.Val(), r.keyPrefix))
		if err != nil {
			return nil, err
		}
		coords = append(coords, coord)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("ошибка перебора ключей Redis: %w", err)
	}
	return coords, nil
}

// Close закрывает соединение с Redis
func (r *RedisChunkRepo) Close() error {
	return r.client.Close()
}
