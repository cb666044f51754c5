package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Debug   bool    `yaml:"debug" env:"CATALOG_DEBUG"`
	Limiter Limiter `yaml:"limiter"`
	Server  Server  `yaml:"server"`
	DB      DB      `yaml:"db"`
	Storage Storage `yaml:"storage"`
	Catalog Catalog `yaml:"catalog"`
}

type Limiter struct {
	Enabled bool    `yaml:"enabled" env:"CATALOG_LIMITER_ENABLED"`
	Rps     float64 `yaml:"rps" env-default:"20"`
	Burst   int     `yaml:"burst" env-default:"5"`
}

type Server struct {
	Port string `yaml:"port" env:"CATALOG_PORT" env-default:"8000"`
	Host string `yaml:"host" env:"CATALOG_HOST" env-default:"localhost"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"2s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"2s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type DB struct {
	Dsn             string        `yaml:"dsn" env:"CATALOG_DB_DSN"`
	MaxConns        int           `yaml:"max_conns" env-default:"25"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"10m"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env-default:"5s"`
}

type Storage struct {
	Driver  string `yaml:"driver" env:"CATALOG_STORAGE_DRIVER" env-default:"postgres"`
	Migrate bool   `yaml:"migrate" env:"CATALOG_STORAGE_MIGRATE"`
}

type Catalog struct {
	DefaultPageSize int `yaml:"default_page_size" env-default:"10"`
	MaxPageSize     int `yaml:"max_page_size" env-default:"100"`
	DefaultCount    int `yaml:"default_count" env-default:"5"`
	UpdateRetries   int `yaml:"update_retries" env-default:"1"` // extra attempts after an edit conflict
}

// Client configures cmd/browse. It is read from the environment only.
type Client struct {
	BaseURL   string        `env:"CATALOG_API_URL" env-default:"http://localhost:8000"`
	Timeout   time.Duration `env:"CATALOG_CLIENT_TIMEOUT" env-default:"5s"`
	Retries   int           `env:"CATALOG_CLIENT_RETRIES" env-default:"1"`
	PageSize  int           `env:"CATALOG_CLIENT_PAGE_SIZE" env-default:"10"`
	Workers   int           `env:"CATALOG_CLIENT_WORKERS" env-default:"4"`
	QueueSize int           `env:"CATALOG_CLIENT_QUEUE_SIZE" env-default:"32"`
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.DB.Dsn == "" {
			return fmt.Errorf("db.dsn is required for the %s storage driver", StorageDriverPostgres)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Catalog.DefaultPageSize < 1 || c.Catalog.MaxPageSize < c.Catalog.DefaultPageSize {
		return fmt.Errorf("invalid page size bounds: default %d, max %d", c.Catalog.DefaultPageSize, c.Catalog.MaxPageSize)
	}
	return nil
}

// loadDotEnv loads a .env file from the working directory when there is one.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			panic(fmt.Errorf("load .env: %w", err))
		}
	}
}

func Load(configPath string) (*Config, error) {
	var cfg Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file %s not found", configPath)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad(configPath string) *Config {
	loadDotEnv()
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func MustLoadClient() *Client {
	loadDotEnv()
	var cfg Client
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}
