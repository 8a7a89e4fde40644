// config - источник загрузки конфигурации для API Gateway.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"net"
	"time"

	pkgconfig "github.com/pribylovaa/go-food-delivery/pkg/config"
	"github.com/pribylovaa/go-food-delivery/pkg/queue/amqp"
)

type Config struct {
	Env      string               `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     pkgconfig.HTTPConfig `yaml:"http"`
	Metrics  MetricsConfig        `yaml:"metrics"`
	RabbitMQ amqp.Config          `yaml:"rabbitmq"`
	Timeouts TimeoutConfig        `yaml:"timeouts"`
}

// TimeoutConfig - дедлайны вызовов через очередь.
//   - Service - общий дедлайн HTTP-запроса;
//   - Tokens - ожидание ответа token-service;
//   - OTP - ожидание ответа verify_otp.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"15s"`
	Tokens  time.Duration `yaml:"tokens"  env:"TOKENS_TIMEOUT"  env-default:"9s"`
	OTP     time.Duration `yaml:"otp"     env:"OTP_TIMEOUT"     env-default:"5s"`
}

// MetricsConfig - отдельный HTTP для health и Prometheus.
type MetricsConfig struct {
	Host string `yaml:"host" env:"METRICS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"50085"`
}

func (m MetricsConfig) Addr() string { return net.JoinHostPort(m.Host, m.Port) }

// MustLoad - паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load читает конфигурацию и проверяет таймауты: дедлайн вызова не может
// превышать дедлайн HTTP-запроса, иначе клиент всегда увидит общий таймаут.
func Load(path string) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](path)
	if err != nil {
		return nil, err
	}

	t := cfg.Timeouts
	if t.Tokens <= 0 || t.OTP <= 0 {
		return nil, fmt.Errorf("config: timeouts.tokens and timeouts.otp must be > 0")
	}

	if t.Service > 0 && (t.Tokens > t.Service || t.OTP > t.Service) {
		return nil, fmt.Errorf("config: call timeouts must not exceed timeouts.service")
	}

	return cfg, nil
}
