package main

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	StoreDriver     string        `env:"STORE_DRIVER,default=badger" validate:"oneof=badger mongo"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,default=./data/badger" validate:"required_if=StoreDriver badger"`
	MongoURI        string        `env:"MONGO_URI" validate:"required_if=StoreDriver mongo"`
	MongoDatabase   string        `env:"MONGO_DATABASE,default=batepapo" validate:"required_if=StoreDriver mongo"`
	MongoTimeout    time.Duration `env:"MONGO_TIMEOUT,default=10s" validate:"gt=0"`
	ReapInterval    time.Duration `env:"REAP_INTERVAL,default=15s" validate:"gt=0"`
	StaleThreshold  time.Duration `env:"STALE_THRESHOLD,default=10s" validate:"gt=0"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	Host            string        `env:"HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=5000" validate:"min=1,max=65535"`
	CorsOrigin      string        `env:"CORS_ORIGIN,default=*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s" validate:"gt=0"`
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
