package world

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/util"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Пещеры не появляются ближе caveMargin блоков к дну мира и к MaxHeight
const caveMargin = 5

// dirtDepth — толщина слоя земли под травой
const dirtDepth = 3

// caveVerticalStretch сжимает шум по Y: полости вытягиваются по горизонтали
const caveVerticalStretch = 0.5

// TerrainConfig — неизменяемые параметры генерации. Полностью определяет результат.
type TerrainConfig struct {
	Seed            uint32  `yaml:"seed"`
	SeaLevel        int     `yaml:"sea_level"`
	MaxHeight       int     `yaml:"max_height"`
	HeightScale     float64 `yaml:"height_scale"`
	HeightFrequency float64 `yaml:"height_frequency"`
	CaveFrequency   float64 `yaml:"cave_frequency"`
	CaveThreshold   float64 `yaml:"cave_threshold"`

	// Workers ограничивает параллельную генерацию; 0 — по числу CPU.
	// На результат не влияет.
	Workers int `yaml:"workers"`
}

// DefaultTerrainConfig возвращает параметры по умолчанию
func DefaultTerrainConfig() TerrainConfig {
	return TerrainConfig{
		Seed:            12345,
		SeaLevel:        64,
		MaxHeight:       128,
		HeightScale:     32.0,
		HeightFrequency: 0.01,
		CaveFrequency:   0.05,
		CaveThreshold:   0.3,
	}
}

// Validate проверяет согласованность параметров
func (c TerrainConfig) Validate() error {
	if c.MaxHeight <= 0 || c.MaxHeight >= ChunkHeight {
		return fmt.Errorf("max_height %d must be in (0, %d)", c.MaxHeight, ChunkHeight)
	}
	if c.SeaLevel < 0 || c.SeaLevel > c.MaxHeight {
		return fmt.Errorf("sea_level %d must be in [0, max_height]", c.SeaLevel)
	}
	if c.HeightScale < 0 || c.HeightFrequency < 0 || c.CaveFrequency < 0 {
		return errors.New("scales and frequencies must not be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d must not be negative", c.Workers)
	}
	return nil
}

// TerrainGenerator строит ландшафт из двух независимых полей шума.
// Все методы только читают состояние и безопасны для параллельного вызова.
type TerrainGenerator struct {
	config      TerrainConfig
	heightNoise *util.NoiseField
	caveNoise   *util.NoiseField
	registry    *block.Registry
	metrics     *Metrics

	air, stone, dirt, grass block.BlockID
}

// NewTerrainGenerator создаёт генератор. Поле высот получает сид config.Seed,
// поле пещер — config.Seed+1. ID блоков берутся из реестра по имени.
func NewTerrainGenerator(config TerrainConfig, registry *block.Registry, metrics *Metrics) (*TerrainGenerator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация ландшафта: %w", err)
	}
	if registry == nil {
		return nil, errors.New("terrain generator requires a block registry")
	}

	tg := &TerrainGenerator{
		config:      config,
		heightNoise: util.NewNoiseField(int64(config.Seed)),
		caveNoise:   util.NewNoiseField(int64(config.Seed + 1)),
		registry:    registry,
		metrics:     metrics,
		air:         block.AirBlockID,
	}

	for name, dst := range map[string]*block.BlockID{
		block.StoneName: &tg.stone,
		block.DirtName:  &tg.dirt,
		block.GrassName: &tg.grass,
	} {
		def, ok := registry.GetByName(name)
		if !ok {
			return nil, fmt.Errorf("в реестре нет блока %q", name)
		}
		*dst = def.ID
	}

	return tg, nil
}

// Config возвращает параметры генератора
func (tg *TerrainGenerator) Config() TerrainConfig {
	return tg.config
}

// Registry возвращает реестр блоков генератора
func (tg *TerrainGenerator) Registry() *block.Registry {
	return tg.registry
}

// Height возвращает высоту поверхности в столбце (x, z), в пределах [0, MaxHeight]
func (tg *TerrainGenerator) Height(x, z int) int {
	n := tg.heightNoise.Noise2D(
		float64(x)*tg.config.HeightFrequency,
		float64(z)*tg.config.HeightFrequency,
	)
	height := tg.config.SeaLevel + int(math.Round(n*tg.config.HeightScale))
	return clampInt(height, 0, tg.config.MaxHeight)
}

// IsCave проверяет, вырезана ли пещера в точке
func (tg *TerrainGenerator) IsCave(x, y, z int) bool {
	if y <= caveMargin || y >= tg.config.MaxHeight-caveMargin {
		return false
	}

	freq := tg.config.CaveFrequency
	n := tg.caveNoise.Noise3D(
		float64(x)*freq,
		float64(y)*freq*caveVerticalStretch,
		float64(z)*freq,
	)
	return math.Abs(n) < tg.config.CaveThreshold
}

// BlockAt возвращает блок в мировой точке
func (tg *TerrainGenerator) BlockAt(world vec.Vec3) block.BlockID {
	return tg.blockInColumn(world.X, world.Y, world.Z, tg.Height(world.X, world.Z))
}

// blockInColumn выбирает блок при известной высоте столбца; первое совпадение побеждает
func (tg *TerrainGenerator) blockInColumn(x, y, z, height int) block.BlockID {
	switch {
	case y > height:
		return tg.air
	case tg.IsCave(x, y, z):
		return tg.air
	case y <= 0:
		return tg.stone // Коренная порода
	case y == height:
		return tg.grass
	case y >= height-dirtDepth:
		return tg.dirt
	default:
		return tg.stone
	}
}

// GenerateChunk строит чанк целиком. Результат чистый: сохранять нечего.
func (tg *TerrainGenerator) GenerateChunk(coord vec.Vec3) (*Chunk, error) {
	start := time.Now()

	coord.Y = 0
	chunk := NewChunk(coord)
	origin := ChunkLocalToWorld(coord, vec.Zero)

	chunk.mu.Lock()
	for lz := 0; lz < ChunkSize; lz++ {
		for lx := 0; lx < ChunkSize; lx++ {
			wx, wz := origin.X+lx, origin.Z+lz
			height := tg.Height(wx, wz)

			// Выше поверхности только воздух, он уже записан
			top := min(height, ChunkHeight-1)
			for y := 0; y <= top; y++ {
				id := tg.blockInColumn(wx, y, wz, height)
				if id == tg.air {
					continue
				}
				index, _ := LocalToIndex(vec.Vec3{X: lx, Y: y, Z: lz})
				if err := chunk.setIndexLocked(index, id); err != nil {
					chunk.mu.Unlock()
					return nil, err
				}
			}
		}
	}
	chunk.dirty = false
	chunk.mu.Unlock()

	tg.metrics.chunkGenerated(time.Since(start))
	return chunk, nil
}

// GenerateChunksAround генерирует все отсутствующие чанки квадрата
// [center-radius, center+radius] по X и Z. Существующие чанки не трогаются.
// Возвращает количество добавленных чанков.
func (tg *TerrainGenerator) GenerateChunksAround(ctx context.Context, center vec.Vec3, radius int, manager *ChunkManager) (int, error) {
	if radius < 0 {
		return 0, fmt.Errorf("radius %d must not be negative", radius)
	}

	var pending []vec.Vec3
	for x := center.X - radius; x <= center.X+radius; x++ {
		for z := center.Z - radius; z <= center.Z+radius; z++ {
			coord := vec.Vec3{X: x, Y: 0, Z: z}
			if _, exists := manager.Get(coord); !exists {
				pending = append(pending, coord)
			}
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	workers := tg.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	inserted := make([]bool, len(pending))
	for i, coord := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chunk, err := tg.GenerateChunk(coord)
			if err != nil {
				return err
			}
			// Чанк мог появиться, пока шла генерация
			inserted[i] = manager.InsertIfAbsent(chunk)
			return nil
		})
	}

	err := g.Wait()

	count := 0
	for _, ok := range inserted {
		if ok {
			count++
		}
	}
	logging.GetWorldLogger().Debug("Сгенерировано %d чанков вокруг %v (радиус %d)", count, center, radius)

	return count, err
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
