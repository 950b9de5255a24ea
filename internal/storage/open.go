package storage

import (
	"context"
	"fmt"
)

// Поддерживаемые бэкенды хранилища чанков
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMaria  = "maria"
)

// Config описывает, где и как хранить чанки
type Config struct {
	Backend          string       `yaml:"backend"`           // memory | badger | redis | maria
	Path             string       `yaml:"path"`              // Каталог BadgerDB
	DSN              string       `yaml:"dsn"`               // Строка подключения MariaDB
	Redis            *RedisConfig `yaml:"redis"`             // Настройки Redis
	CompressionLevel int          `yaml:"compression_level"` // Уровень zstd, 0 — по умолчанию
}

// DefaultConfig возвращает конфигурацию хранилища по умолчанию
func DefaultConfig() Config {
	return Config{
		Backend: BackendBadger,
		Path:    "data/world",
	}
}

// OpenChunkRepo открывает репозиторий, выбранный в конфигурации
func OpenChunkRepo(ctx context.Context, cfg Config) (ChunkRepo, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryChunkRepo(), nil
	case BackendBadger, "":
		return NewBadgerChunkRepo(cfg.Path)
	case BackendRedis:
		return NewRedisChunkRepo(ctx, cfg.Redis)
	case BackendMaria:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("для бэкенда %q нужен dsn", BackendMaria)
		}
		return NewMariaChunkRepo(cfg.DSN)
	default:
		return nil, fmt.Errorf("неизвестный бэкенд хранилища %q", cfg.Backend)
	}
}

// OpenChunkStore открывает репозиторий и создаёт поверх него ChunkStore
func OpenChunkStore(ctx context.Context, cfg Config) (*ChunkStore, error) {
	codec, err := NewChunkCodec(cfg.CompressionLevel)
	if err != nil {
		return nil, err
	}

	repo, err := OpenChunkRepo(ctx, cfg)
	if err != nil {
		codec.Close()
		return nil, err
	}
	return NewChunkStore(repo, codec), nil
}
