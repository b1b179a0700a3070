// Package config собирает конфигурацию сервиса из значений по умолчанию,
// YAML-файла, флагов командной строки и переменных окружения (в порядке возрастания приоритета).
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DBTimeout ограничивает время одного обращения к хранилищу.
const DBTimeout = 3 * time.Second

const (
	FastStoreSQLite = "sqlite"
	FastStoreRedis  = "redis"
)

// PoolConfig - параметры пула свободных кодов.
type PoolConfig struct {
	BatchSize     uint64        `env:"BATCH_SIZE" yaml:"batch_size"`
	LowWatermark  int           `env:"LOW_WATERMARK" yaml:"low_watermark"`
	HighWatermark int           `env:"HIGH_WATERMARK" yaml:"high_watermark"`
	Cooldown      time.Duration `env:"GENERATION_COOLDOWN" yaml:"generation_cooldown"`
	CodeLength    int           `env:"IDENTIFIER_LENGTH" yaml:"identifier_length"`
}

// ReplicationConfig - параметры фоновой репликации в основное хранилище.
type ReplicationConfig struct {
	Workers      int           `env:"REPLICATION_WORKERS" yaml:"workers"`
	QueueSize    int           `env:"REPLICATION_QUEUE_SIZE" yaml:"queue_size"`
	Retries      uint64        `env:"REPLICATION_RETRIES" yaml:"retries"`
	TaskTimeout  time.Duration `env:"REPLICATION_TIMEOUT" yaml:"task_timeout"`
	DrainTimeout time.Duration `env:"DRAIN_TIMEOUT" yaml:"drain_timeout"`
}

type ConfigType struct {
	ServerAddress   string `env:"SERVER_ADDRESS" yaml:"server_address"`
	BaseAddress     string `env:"BASE_URL" yaml:"base_url"`
	DSN             string `env:"DATABASE_DSN" yaml:"database_dsn"`
	FileStoragePath string `env:"FILE_STORAGE_PATH" yaml:"file_storage_path"`
	FastStore       string `env:"FAST_STORE" yaml:"fast_store"`
	SQLitePath      string `env:"SQLITE_PATH" yaml:"sqlite_path"`
	RedisAddr       string `env:"REDIS_ADDR" yaml:"redis_addr"`
	TrustedSubnet   string `env:"TRUSTED_SUBNET" yaml:"trusted_subnet"`
	LogLevel        string `env:"LOG_LEVEL" yaml:"log_level"`
	ConfigPath      string `env:"CONFIG" yaml:"-"`

	Pool        PoolConfig        `yaml:"pool"`
	Replication ReplicationConfig `yaml:"replication"`
}

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() *ConfigType {
	return &ConfigType{
		ServerAddress:   "localhost:8080",
		BaseAddress:     "http://localhost:8080",
		FileStoragePath: "storage.json",
		FastStore:       FastStoreSQLite,
		SQLitePath:      "urls.db",
		RedisAddr:       "localhost:6379",
		LogLevel:        "info",
		Pool: PoolConfig{
			BatchSize:     100000,
			LowWatermark:  1000,
			HighWatermark: 10000,
			Cooldown:      5 * time.Second,
			CodeLength:    6,
		},
		Replication: ReplicationConfig{
			Workers:      8,
			QueueSize:    10000,
			Retries:      3,
			TaskTimeout:  10 * time.Second,
			DrainTimeout: 30 * time.Second,
		},
	}
}

// NewConfig разбирает args (без имени программы) и окружение.
// Путь к YAML-файлу берётся из флага -c или переменной CONFIG.
func NewConfig(args []string) (*ConfigType, error) {
	config := Default()

	path := configPathFromArgs(args)
	if path == "" {
		path = os.Getenv("CONFIG")
	}
	if path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	fs := flag.NewFlagSet("shortener", flag.ContinueOnError)
	fs.StringVar(&config.ConfigPath, "c", path, "YAML config file path")
	fs.StringVar(&config.ServerAddress, "a", config.ServerAddress, "HTTP server address")
	fs.StringVar(&config.BaseAddress, "b", config.BaseAddress, "shorten URL base address")
	fs.StringVar(&config.DSN, "d", config.DSN, "Postgres DSN of the authoritative store")
	fs.StringVar(&config.FileStoragePath, "f", config.FileStoragePath, "file authoritative store path, used when DSN is empty")
	fs.StringVar(&config.FastStore, "fast", config.FastStore, "fast store backend: sqlite or redis")
	fs.StringVar(&config.SQLitePath, "sqlite", config.SQLitePath, "SQLite fast store path")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "Redis fast store address")
	fs.StringVar(&config.TrustedSubnet, "t", config.TrustedSubnet, "trusted subnet (CIDR) for internal endpoints")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.Uint64Var(&config.Pool.BatchSize, "batch", config.Pool.BatchSize, "codes reserved per replenishment")
	fs.IntVar(&config.Pool.LowWatermark, "low", config.Pool.LowWatermark, "pool size that triggers replenishment")
	fs.IntVar(&config.Pool.HighWatermark, "high", config.Pool.HighWatermark, "pool size guaranteed at startup")
	fs.DurationVar(&config.Pool.Cooldown, "cooldown", config.Pool.Cooldown, "minimum interval between replenishments")
	fs.IntVar(&config.Pool.CodeLength, "len", config.Pool.CodeLength, "short code length")
	fs.IntVar(&config.Replication.Workers, "workers", config.Replication.Workers, "replication workers")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(config, env.Options{FuncMap: map[reflect.Type]env.ParserFunc{
		reflect.TypeOf(time.Duration(0)): parseDuration,
	}}); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate проверяет согласованность параметров.
func (c *ConfigType) Validate() error {
	var errs []error
	if c.Pool.CodeLength < 1 || c.Pool.CodeLength > 10 {
		errs = append(errs, fmt.Errorf("identifier length %d out of range [1, 10]", c.Pool.CodeLength))
	}
	if c.Pool.BatchSize == 0 {
		errs = append(errs, errors.New("batch size must be positive"))
	}
	if c.Pool.LowWatermark < 0 || c.Pool.HighWatermark < c.Pool.LowWatermark {
		errs = append(errs, fmt.Errorf("watermarks must satisfy 0 <= low (%d) <= high (%d)",
			c.Pool.LowWatermark, c.Pool.HighWatermark))
	}
	if c.FastStore != FastStoreSQLite && c.FastStore != FastStoreRedis {
		errs = append(errs, fmt.Errorf("unknown fast store %q", c.FastStore))
	}
	if c.Replication.Workers < 1 {
		errs = append(errs, errors.New("replication workers must be positive"))
	}
	if c.Replication.QueueSize < 1 {
		errs = append(errs, errors.New("replication queue size must be positive"))
	}
	return errors.Join(errs...)
}

func loadFile(path string, config *ConfigType) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// parseDuration принимает как "1m30s", так и целое число секунд ("5").
func parseDuration(value string) (any, error) {
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(value)
}

func configPathFromArgs(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "-c" || arg == "--c":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "-c="):
			return strings.TrimPrefix(arg, "-c=")
		case strings.HasPrefix(arg, "--c="):
			return strings.TrimPrefix(arg, "--c=")
		}
	}
	return ""
}
