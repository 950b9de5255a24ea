package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-world/internal/vec"
)

// testChunkRepo проверяет общий контракт ChunkRepo
func testChunkRepo(t *testing.T, repo ChunkRepo) {
	ctx := context.Background()

	t.Run("Load Missing", func(t *testing.T) {
		data, found, err := repo.Load(ctx, vec.New(1000, 0, 1000))
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, data)
	})

	t.Run("Save and Load", func(t *testing.T) {
		coord := vec.New(-2, 0, 5)
		require.NoError(t, repo.Save(ctx, coord, []byte{1, 2, 3}))

		data, found, err := repo.Load(ctx, coord)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte{1, 2, 3}, data)

		require.NoError(t, repo.Save(ctx, coord, []byte{4}))
		data, _, err = repo.Load(ctx, coord)
		require.NoError(t, err)
		assert.Equal(t, []byte{4}, data, "повторное сохранение заменяет запись")
	})

	t.Run("Batch and List", func(t *testing.T) {
		records := map[vec.Vec3][]byte{
			vec.New(0, 0, 0):  {10},
			vec.New(0, 0, -1): {11},
			vec.New(7, 0, 3):  {12},
		}
		require.NoError(t, repo.BatchSave(ctx, records))
		require.NoError(t, repo.BatchSave(ctx, nil))

		coords, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Subset(t, coords, []vec.Vec3{vec.New(0, 0, 0), vec.New(0, 0, -1), vec.New(7, 0, 3), vec.New(-2, 0, 5)})

		data, found, err := repo.Load(ctx, vec.New(7, 0, 3))
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte{12}, data)
	})

	t.Run("Delete", func(t *testing.T) {
		coord := vec.New(7, 0, 3)
		require.NoError(t, repo.Delete(ctx, coord))
		require.NoError(t, repo.Delete(ctx, coord), "удаление отсутствующей записи не ошибка")

		_, found, err := repo.Load(ctx, coord)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestMemoryChunkRepo(t *testing.T) {
	repo := NewMemoryChunkRepo()
	defer repo.Close()

	testChunkRepo(t, repo)

	coords, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []vec.Vec3{vec.New(-2, 0, 5), vec.New(0, 0, -1), vec.New(0, 0, 0)}, coords, "список отсортирован по X, затем Z")
	assert.Equal(t, 3, repo.Count())
}

func TestMemoryChunkRepoCopiesRecords(t *testing.T) {
	repo := NewMemoryChunkRepo()
	ctx := context.Background()

	record := []byte{1, 2}
	require.NoError(t, repo.Save(ctx, vec.Zero, record))
	record[0] = 99

	data, _, err := repo.Load(ctx, vec.New(0, 42, 0))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, data, "Y координаты не участвует в ключе")
}

func TestMemoryChunkRepoCancelled(t *testing.T) {
	repo := NewMemoryChunkRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, repo.Save(ctx, vec.Zero, []byte{1}), context.Canceled)
	assert.Equal(t, 0, repo.Count())
}

func TestBadgerChunkRepo(t *testing.T) {
	repo, err := NewBadgerChunkRepo(t.TempDir())
	require.NoError(t, err)

	testChunkRepo(t, repo)

	require.NoError(t, repo.Close())
	require.NoError(t, repo.Close(), "повторное закрытие безопасно")

	_, _, err = repo.Load(context.Background(), vec.Zero)
	assert.ErrorIs(t, err, errStorageNotReady)
}

func TestBadgerChunkRepoReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewBadgerChunkRepo(dir)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, vec.New(3, 0, -3), []byte("chunk")))
	require.NoError(t, repo.Close())

	repo, err = NewBadgerChunkRepo(dir)
	require.NoError(t, err)
	defer repo.Close()

	data, found, err := repo.Load(ctx, vec.New(3, 0, -3))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("chunk"), data)
}

func TestBadgerChunkRepoInMemory(t *testing.T) {
	repo, err := NewBadgerChunkRepo("")
	require.NoError(t, err)
	defer repo.Close()

	testChunkRepo(t, repo)
}

// Тесты внешних хранилищ запускаются только при заданном адресе
func TestRedisChunkRepo(t *testing.T) {
	addr := os.Getenv("VOXEL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("VOXEL_TEST_REDIS_ADDR не задан")
	}

	repo, err := NewRedisChunkRepo(context.Background(), &RedisConfig{Addr: addr, KeyPrefix: "voxel-test:"})
	require.NoError(t, err)
	defer repo.Close()

	testChunkRepo(t, repo)
}

func TestMariaChunkRepo(t *testing.T) {
	dsn := os.Getenv("VOXEL_TEST_MARIA_DSN")
	if dsn == "" {
		t.Skip("VOXEL_TEST_MARIA_DSN не задан")
	}

	repo, err := NewMariaChunkRepo(dsn)
	require.NoError(t, err)
	defer repo.Close()

	testChunkRepo(t, repo)
}

func TestOpenChunkRepo(t *testing.T) {
	ctx := context.Background()

	repo, err := OpenChunkRepo(ctx, Config{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryChunkRepo{}, repo)

	repo, err = OpenChunkRepo(ctx, Config{Backend: BackendBadger, Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &BadgerChunkRepo{}, repo)
	require.NoError(t, repo.Close())

	_, err = OpenChunkRepo(ctx, Config{Backend: BackendMaria})
	assert.Error(t, err, "без dsn MariaDB не открывается")

	_, err = OpenChunkRepo(ctx, Config{Backend: "cassandra"})
	assert.Error(t, err)
}
