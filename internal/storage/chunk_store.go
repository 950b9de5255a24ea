package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
)

// ChunkStore — сторона сохранения для ChunkManager: кодирует грязные чанки,
// пишет их в репозиторий и сбрасывает флаг изменений после успешной записи.
type ChunkStore struct {
	repo   ChunkRepo
	codec  *ChunkCodec
	logger *logging.Logger
}

// NewChunkStore создаёт хранилище чанков поверх репозитория и кодека
func NewChunkStore(repo ChunkRepo, codec *ChunkCodec) *ChunkStore {
	return &ChunkStore{
		repo:   repo,
		codec:  codec,
		logger: logging.GetStorageLogger(),
	}
}

// SaveChunk сохраняет чанк. Флаг изменений сбрасывается, только если чанк
// не менялся, пока шла запись.
func (s *ChunkStore) SaveChunk(ctx context.Context, chunk *world.Chunk) error {
	snap := chunk.Snapshot()
	record, err := s.codec.Encode(snap)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, snap.Position, record); err != nil {
		return err
	}
	chunk.MarkCleanAt(snap.Version)
	return nil
}

// LoadChunk читает чанк из репозитория. Второе значение false, если
// чанк ещё не сохранялся.
func (s *ChunkStore) LoadChunk(ctx context.Context, coord vec.Vec3) (*world.Chunk, bool, error) {
	record, found, err := s.repo.Load(ctx, coord)
	if err != nil || !found {
		return nil, false, err
	}

	chunk, err := s.codec.Decode(record)
	if err != nil {
		s.logger.Debug("Запись чанка %d:%d:\n%s", coord.X, coord.Z, logging.HexDump(record))
		return nil, false, fmt.Errorf("чанк %d:%d: %w", coord.X, coord.Z, err)
	}
	return chunk, true, nil
}

// SaveDirty сохраняет все грязные чанки менеджера одной пачкой.
// Возвращает количество сохранённых чанков.
func (s *ChunkStore) SaveDirty(ctx context.Context, manager *world.ChunkManager) (int, error) {
	dirty := manager.DirtyChunks()
	if len(dirty) == 0 {
		return 0, nil
	}

	records := make(map[vec.Vec3][]byte, len(dirty))
	versions := make(map[vec.Vec3]uint64, len(dirty))
	for _, chunk := range dirty {
		snap := chunk.Snapshot()
		record, err := s.codec.Encode(snap)
		if err != nil {
			return 0, err
		}
		records[snap.Position] = record
		versions[snap.Position] = snap.Version
	}

	if err := s.repo.BatchSave(ctx, records); err != nil {
		return 0, err
	}

	for _, chunk := range dirty {
		if !chunk.MarkCleanAt(versions[chunk.Position]) {
			s.logger.Debug("Чанк %v изменён во время сохранения, остаётся грязным", chunk.Position)
		}
	}

	s.logger.Debug("Сохранено %d чанков", len(records))
	return len(records), nil
}

// LoadArea загружает в менеджер сохранённые чанки квадрата
// [center-radius, center+radius]. Уже загруженные чанки не заменяются.
// Возвращает количество добавленных чанков.
func (s *ChunkStore) LoadArea(ctx context.Context, manager *world.ChunkManager, center vec.Vec3, radius int) (int, error) {
	loaded := 0
	for x := center.X - radius; x <= center.X+radius; x++ {
		for z := center.Z - radius; z <= center.Z+radius; z++ {
			coord := vec.New(x, 0, z)
			if _, exists := manager.Get(coord); exists {
				continue
			}

			chunk, found, err := s.LoadChunk(ctx, coord)
			if errors.Is(err, ErrCorruptRecord) {
				// Повреждённый чанк будет сгенерирован заново
				s.logger.Warn("Пропуск повреждённого чанка %v: %v", coord, err)
				continue
			}
			if err != nil {
				return loaded, err
			}
			if found && manager.InsertIfAbsent(chunk) {
				loaded++
			}
		}
	}
	return loaded, nil
}

// FlushAndUnload сохраняет грязные чанки и выгружает те, что дальше
// maxRadius от center. Если сохранение не удалось, ничего не выгружается.
func (s *ChunkStore) FlushAndUnload(ctx context.Context, manager *world.ChunkManager, center vec.Vec3, maxRadius int) ([]vec.Vec3, error) {
	if _, err := s.SaveDirty(ctx, manager); err != nil {
		return nil, fmt.Errorf("сохранение перед выгрузкой: %w", err)
	}

	// Записи, пришедшие между сохранением и выгрузкой, теряются
	removed := manager.UnloadDistantChunks(center, maxRadius)
	if len(removed) > 0 {
		s.logger.Debug("Выгружено %d чанков дальше радиуса %d от %v", len(removed), maxRadius, center)
	}
	return removed, nil
}

// Delete удаляет сохранённый чанк
func (s *ChunkStore) Delete(ctx context.Context, coord vec.Vec3) error {
	return s.repo.Delete(ctx, coord)
}

// List возвращает координаты всех сохранённых чанков
func (s *ChunkStore) List(ctx context.Context) ([]vec.Vec3, error) {
	return s.repo.List(ctx)
}

// Close закрывает репозиторий и кодек
func (s *ChunkStore) Close() error {
	err := s.repo.Close()
	s.codec.Close()
	return err
}
