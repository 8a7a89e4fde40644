// config описывает конфигурацию rating-service.
package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/pribylovaa/go-food-delivery/pkg/config"
	"github.com/pribylovaa/go-food-delivery/pkg/queue/amqp"
)

// Config - корневая конфигурация сервиса.
type Config struct {
	Env      string               `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     pkgconfig.HTTPConfig `yaml:"http"`
	GRPC     pkgconfig.GRPCConfig `yaml:"grpc"`
	RabbitMQ amqp.Config          `yaml:"rabbitmq"`
	DB       DBConfig             `yaml:"db"`
	Rating   RatingConfig         `yaml:"rating"`
	Timeouts TimeoutConfig        `yaml:"timeouts"`
}

// DBConfig - подключение к MongoDB с коллекциями сущностей.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
}

// RatingConfig - допустимый диапазон рейтинга.
type RatingConfig struct {
	Min float64 `yaml:"min" env:"RATING_MIN" env-default:"0"`
	Max float64 `yaml:"max" env:"RATING_MAX" env-default:"5"`
}

// TimeoutConfig - таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// Load загружает конфигурацию и проверяет её.
func Load(path string) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](path)
	if err != nil {
		return nil, err
	}

	if cfg.Rating.Min >= cfg.Rating.Max {
		return nil, fmt.Errorf("config: rating.min must be < rating.max")
	}

	return cfg, nil
}

// MustLoad - обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}
