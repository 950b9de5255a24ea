package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/annel0/voxel-world/internal/storage"
	"github.com/annel0/voxel-world/internal/world"
)

// Config корневая структура конфигурации генератора мира.
type Config struct {
	Terrain    world.TerrainConfig `yaml:"terrain"`
	Storage    storage.Config      `yaml:"storage"`
	Generation GenerationConfig    `yaml:"generation"`
	Metrics    MetricsConfig       `yaml:"metrics"`
	Logging    LoggingConfig       `yaml:"logging"`

	// BlockPack — путь к YAML-набору дополнительных блоков
	BlockPack string `yaml:"block_pack"`
}

// GenerationConfig задаёт область предварительной генерации
type GenerationConfig struct {
	CenterX      int `yaml:"center_x"`
	CenterZ      int `yaml:"center_z"`
	Radius       int `yaml:"radius"`        // В чанках
	UnloadRadius int `yaml:"unload_radius"` // 0 — не выгружать
}

type MetricsConfig struct {
	Port int `yaml:"port"` // 0 — взять из окружения или по умолчанию
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"` // Пусто — только консоль
}

// GetPort возвращает порт метрик с поддержкой fallback значений
func (m *MetricsConfig) GetPort() int {
	return getPortWithEnvFallback(m.Port, "VOXEL_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Terrain: world.DefaultTerrainConfig(),
		Storage: storage.DefaultConfig(),
		Generation: GenerationConfig{
			Radius:       4,
			UnloadRadius: 8,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Validate проверяет согласованность секций
func (c *Config) Validate() error {
	if err := c.Terrain.Validate(); err != nil {
		return fmt.Errorf("terrain: %w", err)
	}
	if c.Generation.Radius < 0 {
		return fmt.Errorf("generation.radius %d must not be negative", c.Generation.Radius)
	}
	if c.Generation.UnloadRadius < 0 {
		return fmt.Errorf("generation.unload_radius %d must not be negative", c.Generation.UnloadRadius)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV VOXEL_CONFIG или возвращает дефолты.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}
