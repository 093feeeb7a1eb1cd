package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Env       string          `yaml:"env" env:"PFG_ENV" env-default:"local"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConf       `yaml:"redis"`
	HTTP      HTTPConfig      `yaml:"http"`
	Chunk     ChunkConfig     `yaml:"chunk"`
	Migration MigrationConfig `yaml:"migration"`
	Auth      AuthConfig      `yaml:"auth"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver" env:"PFG_STORAGE_DRIVER" env-default:"memory"`
	DSN        string `yaml:"dsn" env:"PFG_STORAGE_DSN"`
	Migrations bool   `yaml:"migrations" env:"PFG_STORAGE_MIGRATIONS" env-default:"true"`
}

type HTTPConfig struct {
	Host          string        `yaml:"host" env:"PFG_HTTP_HOST"`
	Port          string        `yaml:"port" env:"PFG_HTTP_PORT" env-default:"8080"`
	SessionSecret string        `yaml:"session_secret" env:"PFG_HTTP_SESSION_SECRET" env-required:"true"`
	NonceSecret   string        `yaml:"nonce_secret" env:"PFG_HTTP_NONCE_SECRET" env-required:"true"`
	NonceTTL      time.Duration `yaml:"nonce_ttl" env:"PFG_HTTP_NONCE_TTL" env-default:"12h"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"PFG_REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"PFG_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"PFG_REDIS_DB"`
}

type ChunkConfig struct {
	TTL  time.Duration `yaml:"ttl" env-default:"5m"`
	Size int           `yaml:"size" env-default:"50"`
}

type MigrationConfig struct {
	// cron-выражение robfig/cron. Пустое отключает плановый запуск.
	Schedule string `yaml:"schedule" env:"PFG_MIGRATION_SCHEDULE"`
}

type AuthConfig struct {
	Users []User `yaml:"users"`
}

type User struct {
	Name         string `yaml:"name"`
	Role         string `yaml:"role"`
	PasswordHash string `yaml:"password_hash"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	if cfg.Storage.Driver == DriverPostgres && cfg.Storage.DSN == "" {
		panic("storage.dsn is required for the postgres driver")
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
