// config описывает конфигурацию token-service.
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
	Auth     AuthConfig           `yaml:"auth"`
	DB       DBConfig             `yaml:"db"`
	Redis    RedisConfig          `yaml:"redis"`
	Timeouts TimeoutConfig        `yaml:"timeouts"`
}

// AuthConfig - параметры выпуска и проверки токенов.
// Access и refresh подписываются разными секретами.
type AuthConfig struct {
	AccessSecret    string        `yaml:"access_secret" env:"ACCESS_TOKEN_SECRET" env-required:"true"`
	RefreshSecret   string        `yaml:"refresh_secret" env:"REFRESH_TOKEN_SECRET" env-required:"true"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"720h"`
	Issuer          string        `yaml:"issuer" env:"ISSUER" env-default:"token-service"`
}

// DBConfig - подключение к MongoDB; имя БД берётся из пути URI.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
}

// RedisConfig - кэш ответов для повторных доставок. Пустой URL отключает кэш.
type RedisConfig struct {
	URL      string        `yaml:"url" env:"REDIS_URL"`
	ReplyTTL time.Duration `yaml:"reply_ttl" env:"REDIS_REPLY_TTL" env-default:"10m"`
}

// TimeoutConfig - таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// Load загружает конфигурацию и проверяет её согласованность.
func Load(path string) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](path)
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
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

func (c *Config) validate() error {
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return fmt.Errorf("config: auth.access_secret and auth.refresh_secret must differ")
	}

	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return fmt.Errorf("config: token ttl must be positive")
	}

	if c.Auth.AccessTokenTTL >= c.Auth.RefreshTokenTTL {
		return fmt.Errorf("config: access_token_ttl must be shorter than refresh_token_ttl")
	}

	return nil
}
