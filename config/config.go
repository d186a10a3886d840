package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type StorageMode string

const (
	InMemory StorageMode = "inmemory"
	Mongo    StorageMode = "mongo"
)

type AppMode string

const (
	ServerMode AppMode = "server"
	WorkerMode AppMode = "worker"
)

type Config struct {
	AppMode     AppMode
	Env         string
	Port        string
	StorageMode StorageMode
	Mongo       Mongo
	RedisURL    string
	SeedFile    string
}

type Mongo struct {
	URL    string
	DbName string
}

// ViewEventsEnabled reports whether view events are queued and counted.
func (c *Config) ViewEventsEnabled() bool {
	return c.RedisURL != ""
}

func (c *Config) Validate() error {
	switch c.AppMode {
	case ServerMode, WorkerMode:
	default:
		return fmt.Errorf("invalid 'APP_MODE' %q", c.AppMode)
	}
	switch c.StorageMode {
	case InMemory:
	case Mongo:
		if c.Mongo.URL == "" {
			return errors.New("'MONGO_URL' not specified")
		}
		if c.Mongo.DbName == "" {
			return errors.New("'MONGO_DBNAME' not specified")
		}
	default:
		return fmt.Errorf("invalid 'STORAGE_MODE' %q", c.StorageMode)
	}
	if c.AppMode == WorkerMode && c.RedisURL == "" {
		return errors.New("'REDIS_URL' was not specified for 'worker' APP_MODE")
	}
	return nil
}

func Load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app_mode", string(ServerMode))
	v.SetDefault("env", "dev")
	v.SetDefault("server_port", "8080")
	v.SetDefault("storage_mode", string(InMemory))
	v.SetDefault("mongo_url", "")
	v.SetDefault("mongo_dbname", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("seed_file", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		AppMode:     AppMode(v.GetString("app_mode")),
		Env:         v.GetString("env"),
		Port:        v.GetString("server_port"),
		StorageMode: StorageMode(v.GetString("storage_mode")),
		Mongo: Mongo{
			URL:    v.GetString("mongo_url"),
			DbName: v.GetString("mongo_dbname"),
		},
		RedisURL: v.GetString("redis_url"),
		SeedFile: v.GetString("seed_file"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	return mustLoad(viper.New(), slog.Default(), os.Exit)
}

func mustLoad(v *viper.Viper, log *slog.Logger, exit func(int)) *Config {
	cfg, err := Load(v)
	if err != nil {
		log.Error("Invalid configuration", slog.String("error", err.Error()))
		exit(1)
	}
	return cfg
}
