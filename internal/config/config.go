package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/annel0/voxel-world/internal/entity"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/physics"
	"github.com/annel0/voxel-world/internal/world"
)

// ErrInvalid возвращается, если конфигурация не проходит проверку
var ErrInvalid = errors.New("некорректная конфигурация")

// Config корневая структура конфигурации приложения
type Config struct {
	World     WorldConfig         `yaml:"world"`
	Physics   physics.Config      `yaml:"physics"`
	Player    entity.PlayerConfig `yaml:"player"`
	Server    ServerConfig        `yaml:"server"`
	Logging   LoggingConfig       `yaml:"logging"`
	Telemetry TelemetryConfig     `yaml:"telemetry"`
}

// WorldConfig – параметры мира и отложенной генерации
type WorldConfig struct {
	world.Params `yaml:",inline"`

	GenerationBudgetMs      int     `yaml:"generation_budget_ms"`       // Время на отложенную генерацию за кадр
	MaxGenerationsPerSecond float64 `yaml:"max_generations_per_second"` // 0 – без ограничения
	GenerationBurst         int     `yaml:"generation_burst"`
}

type ServerConfig struct {
	FrameRate float64 `yaml:"frame_rate"`
	HTTPPort  int     `yaml:"http_port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"` // Пусто – только консоль
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"` // host:port OTLP HTTP коллектора
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Params:             world.DefaultParams(),
			GenerationBudgetMs: 8,
			GenerationBurst:    1,
		},
		Physics: physics.DefaultConfig(),
		Player:  entity.DefaultPlayerConfig(),
		Server: ServerConfig{
			FrameRate: 60,
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "voxel-world",
			Endpoint:    "localhost:4318",
		},
	}
}

// GetHTTPPort возвращает порт HTTP API с поддержкой fallback значений
func (s *ServerConfig) GetHTTPPort() int {
	return getPortWithEnvFallback(s.HTTPPort, "VOXEL_HTTP_PORT", 8088)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// GenerationBudget возвращает бюджет отложенной генерации на кадр
func (w WorldConfig) GenerationBudget() time.Duration {
	return time.Duration(w.GenerationBudgetMs) * time.Millisecond
}

// LogOptions преобразует секцию logging в параметры логгера
func (c *Config) LogOptions() (logging.Options, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return logging.Options{}, err
	}
	return logging.Options{Level: level, Dir: c.Logging.Dir}, nil
}

// Validate проверяет конфигурацию целиком
func (c *Config) Validate() error {
	if err := c.World.Params.Validate(); err != nil {
		return fmt.Errorf("%w: world: %v", ErrInvalid, err)
	}
	if c.World.GenerationBudgetMs < 0 {
		return fmt.Errorf("%w: world.generation_budget_ms=%d", ErrInvalid, c.World.GenerationBudgetMs)
	}
	if c.World.MaxGenerationsPerSecond < 0 {
		return fmt.Errorf("%w: world.max_generations_per_second=%v", ErrInvalid, c.World.MaxGenerationsPerSecond)
	}
	if err := c.Physics.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Player.Radius <= 0 || c.Player.Height <= 0 {
		return fmt.Errorf("%w: player radius=%v height=%v", ErrInvalid, c.Player.Radius, c.Player.Height)
	}
	if c.Server.FrameRate <= 0 {
		return fmt.Errorf("%w: server.frame_rate=%v", ErrInvalid, c.Server.FrameRate)
	}
	if _, err := c.LogOptions(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV VOXEL_CONFIG;
// если и он не задан, возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
