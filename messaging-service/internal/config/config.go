// config описывает конфигурацию messaging-service.
package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/pribylovaa/go-food-delivery/pkg/config"
	"github.com/pribylovaa/go-food-delivery/pkg/queue/amqp"
)

// TLS-режимы SMTP.
const (
	TLSMandatory     = "mandatory"
	TLSOpportunistic = "opportunistic"
	TLSNone          = "none"
)

// Config - корневая конфигурация сервиса.
type Config struct {
	Env      string               `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     pkgconfig.HTTPConfig `yaml:"http"`
	GRPC     pkgconfig.GRPCConfig `yaml:"grpc"`
	RabbitMQ amqp.Config          `yaml:"rabbitmq"`
	DB       DBConfig             `yaml:"db"`
	SMTP     SMTPConfig           `yaml:"smtp"`
	OTP      OTPConfig            `yaml:"otp"`
	Timeouts TimeoutConfig        `yaml:"timeouts"`
}

// DBConfig - подключение к MongoDB.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
}

// SMTPConfig - почтовый сервер. Пустой Host отключает отправку (письма только логируются).
type SMTPConfig struct {
	Host     string        `yaml:"host" env:"SMTP_HOST"`
	Port     int           `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string        `yaml:"username" env:"SMTP_USERNAME"`
	Password string        `yaml:"password" env:"SMTP_PASSWORD"`
	From     string        `yaml:"from" env:"SMTP_FROM"`
	TLS      string        `yaml:"tls" env:"SMTP_TLS" env-default:"opportunistic"`
	Timeout  time.Duration `yaml:"timeout" env:"SMTP_TIMEOUT" env-default:"10s"`
}

// OTPConfig - параметры одноразовых кодов.
type OTPConfig struct {
	// TTL = 0 - код живёт до проверки или перезаписи.
	TTL time.Duration `yaml:"ttl" env:"OTP_TTL" env-default:"0s"`
}

// TimeoutConfig - таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"15s"`
}

// Load загружает конфигурацию и проверяет её.
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
	if c.OTP.TTL < 0 {
		return fmt.Errorf("config: otp.ttl must be >= 0")
	}

	if c.SMTP.Host == "" {
		return nil
	}

	if c.SMTP.From == "" {
		return fmt.Errorf("config: smtp.from is required when smtp.host is set")
	}

	if c.SMTP.Port <= 0 {
		return fmt.Errorf("config: smtp.port must be > 0")
	}

	switch c.SMTP.TLS {
	case TLSMandatory, TLSOpportunistic, TLSNone:
	default:
		return fmt.Errorf("config: smtp.tls must be one of %s|%s|%s", TLSMandatory, TLSOpportunistic, TLSNone)
	}

	return nil
}
