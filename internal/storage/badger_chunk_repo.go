package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/dgraph-io/badger/v3"
)

var errStorageNotReady = errors.New("хранилище не готово")

// BadgerChunkRepo хранит записи чанков во встроенной BadgerDB
type BadgerChunkRepo struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerChunkRepo открывает (или создаёт) базу в каталоге dbPath.
// Пустой путь открывает базу в памяти.
func NewBadgerChunkRepo(dbPath string) (*BadgerChunkRepo, error) {
	opts := badger.DefaultOptions(dbPath)
	if dbPath == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &BadgerChunkRepo{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
	}, nil
}

// Save сохраняет запись чанка
func (r *BadgerChunkRepo) Save(ctx context.Context, coord vec.Vec3, record []byte) error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if !r.isReady {
		return errStorageNotReady
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(chunkKey(coord)), record)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// Load читает запись чанка
func (r *BadgerChunkRepo) Load(ctx context.Context, coord vec.Vec3) ([]byte, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if !r.isReady {
		return nil, false, errStorageNotReady
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(chunkKey(coord)))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return data, true, nil
}

// Delete удаляет запись чанка
func (r *BadgerChunkRepo) Delete(ctx context.Context, coord vec.Vec3) error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if !r.isReady {
		return errStorageNotReady
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(chunkKey(coord)))
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления из BadgerDB: %w", err)
	}
	return nil
}

// BatchSave записывает несколько чанков через WriteBatch
func (r *BadgerChunkRepo) BatchSave(ctx context.Context, records map[vec.Vec3][]byte) error {
	if len(records) == 0 {
		return nil // Нечего сохранять
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if !r.isReady {
		return errStorageNotReady
	}

	wb := r.db.NewWriteBatch()
	defer wb.Cancel()

	for coord, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := wb.Set([]byte(chunkKey(coord)), record); err != nil {
			return fmt.Errorf("ошибка записи чанка %v в batch: %w", coord, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("ошибка фиксации batch: %w", err)
	}
	return nil
}

// List перебирает ключи с префиксом chunk: без чтения значений
func (r *BadgerChunkRepo) List(ctx context.Context) ([]vec.Vec3, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if !r.isReady {
		return nil, errStorageNotReady
	}

	var coords []vec.Vec3
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(chunkKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			coord, err := parseChunkKey(string(it.Item().Key()))
			if err != nil {
				return err
			}
			coords = append(coords, coord)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка перебора BadgerDB: %w", err)
	}
	return coords, nil
}

// Close закрывает базу. Повторный вызов ничего не делает.
func (r *BadgerChunkRepo) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.isReady {
		return nil
	}

	r.isReady = false
	return r.db.Close()
}
