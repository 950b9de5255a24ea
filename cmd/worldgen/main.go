package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/storage"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (defaults to $VOXEL_CONFIG)")
		radius     = flag.Int("radius", -1, "Override generation radius in chunks")
		saveAll    = flag.Bool("save-all", false, "Persist every loaded chunk, not only edited ones")
		serve      = flag.Bool("serve", false, "Keep running and serve /metrics until interrupted")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *radius >= 0 {
		cfg.Generation.Radius = *radius
	}

	if err := logging.InitDefaultLogger("worldgen", cfg.Logging.Dir); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	logManager := logging.InitLoggerManager(cfg.Logging.Dir)
	defer closeLogs()

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logging.Warn("%v, используется INFO", err)
	}
	logging.Default().SetLevels(level, logging.DEBUG)

	// Логгеры компонентов создаются заранее, чтобы получить уровень из конфига
	logging.GetWorldLogger()
	logging.GetStorageLogger()
	for _, component := range logManager.ListComponents() {
		if err := logManager.SetLogLevel(component, level, logging.DEBUG); err != nil {
			logging.Warn("Уровень логов для %s: %v", component, err)
		}
	}
	logging.Debug("📝 Логгеры компонентов: %v", logManager.ListComponents())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *saveAll, *serve); err != nil {
		logging.Error("❌ %v", err)
		closeLogs()
		os.Exit(1)
	}
}

// closeLogs закрывает файлы логов компонентов и основной логгер
func closeLogs() {
	if err := logging.GetLoggerManager().CloseAll(); err != nil {
		logging.Error("Ошибка закрытия логгеров: %v", err)
	}
	logging.CloseDefaultLogger()
}

func run(ctx context.Context, cfg *config.Config, saveAll, serve bool) error {
	logging.Info("🌍 Запуск генератора мира (seed=%d)", cfg.Terrain.Seed)

	registry := block.NewRegistry()
	if cfg.BlockPack != "" {
		n, err := block.LoadYAMLFile(cfg.BlockPack, registry)
		if err != nil {
			return fmt.Errorf("набор блоков: %w", err)
		}
		logging.Info("📦 Загружено %d блоков из %s", n, cfg.BlockPack)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := world.NewMetrics(reg)

	var metricsServer *http.Server
	if serve {
		metricsServer = startMetricsServer(reg, cfg.Metrics.GetPort())
		defer shutdownMetricsServer(metricsServer)
	}

	generator, err := world.NewTerrainGenerator(cfg.Terrain, registry, metrics)
	if err != nil {
		return err
	}

	store, err := storage.OpenChunkStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("хранилище: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("Ошибка закрытия хранилища: %v", err)
		}
	}()

	manager := world.NewChunkManager(metrics)
	center := vec.New(cfg.Generation.CenterX, 0, cfg.Generation.CenterZ)

	loaded, err := store.LoadArea(ctx, manager, center, cfg.Generation.Radius)
	if err != nil {
		return fmt.Errorf("загрузка сохранённых чанков: %w", err)
	}
	logging.Info("💾 Загружено %d сохранённых чанков", loaded)

	start := time.Now()
	generated, err := generator.GenerateChunksAround(ctx, center, cfg.Generation.Radius, manager)
	if err != nil {
		return fmt.Errorf("генерация: %w", err)
	}
	logging.Info("⛰️  Сгенерировано %d чанков за %v (всего в памяти: %d)", generated, time.Since(start), manager.ChunkCount())

	if saveAll {
		for _, coord := range manager.LoadedChunks() {
			if chunk, ok := manager.Get(coord); ok {
				if err := store.SaveChunk(ctx, chunk); err != nil {
					return fmt.Errorf("сохранение чанка %v: %w", coord, err)
				}
			}
		}
		logging.Info("💾 Сохранены все %d чанков", manager.ChunkCount())
	}

	logStats(manager)

	if serve {
		logging.Info("📊 Метрики доступны на :%d/metrics, ожидание сигнала завершения...", cfg.Metrics.GetPort())
		<-ctx.Done()
		logging.Info("📡 Получен сигнал завершения")
	}

	// Сохраняем на свежем контексте: исходный уже может быть отменён сигналом
	flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Generation.UnloadRadius > 0 {
		removed, err := store.FlushAndUnload(flushCtx, manager, center, cfg.Generation.UnloadRadius)
		if err != nil {
			return err
		}
		logging.Info("🧹 Выгружено %d дальних чанков", len(removed))
	}

	saved, err := store.SaveDirty(flushCtx, manager)
	if err != nil {
		return fmt.Errorf("сохранение изменённых чанков: %w", err)
	}
	logging.Info("👋 Готово, сохранено %d изменённых чанков", saved)
	return nil
}

// logStats выводит сводку по загруженным чанкам
func logStats(manager *world.ChunkManager) {
	var solid, empty, maxPalette int
	for _, coord := range manager.LoadedChunks() {
		chunk, ok := manager.Get(coord)
		if !ok {
			continue
		}
		if chunk.IsEmpty() {
			empty++
			continue
		}
		solid += chunk.CountSolidBlocks()
		maxPalette = max(maxPalette, chunk.PaletteLen())
	}
	logging.Info("📈 Твёрдых блоков: %d, пустых чанков: %d, максимум палитры: %d", solid, empty, maxPalette)
}

func startMetricsServer(reg *prometheus.Registry, port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка сервера метрик: %v", err)
		}
	}()
	return srv
}

func shutdownMetricsServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Ошибка остановки сервера метрик: %v", err)
	}
}
