// config загружает конфигурацию сервисов из YAML и переменных окружения (cleanenv)
// с единым приоритетом источников:
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. только переменные окружения.
//
// После чтения файла переменные окружения всегда накладываются поверх YAML.
// Конкретные структуры конфигурации живут в internal/config каждого сервиса.
package config

import (
	"fmt"
	"net"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// LocalFile - файл конфигурации по умолчанию в рабочей директории.
const LocalFile = "local.yaml"

// HTTPConfig - адрес HTTP-сервера (health/metrics или публичный API).
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8081"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// GRPCConfig - адрес gRPC health-сервера.
type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50051"`
}

// Addr возвращает адрес в формате host:port.
func (g GRPCConfig) Addr() string {
	return net.JoinHostPort(g.Host, g.Port)
}

// Load читает конфигурацию типа T по приоритету источников (см. описание пакета).
func Load[T any](path string) (*T, error) {
	var cfg T

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*T, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", p, err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	if path != "" {
		return tryRead(path)
	}

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	if _, err := os.Stat(LocalFile); err == nil {
		return tryRead(LocalFile)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, %s or env vars: %w", LocalFile, err)
	}

	return &cfg, nil
}

// MustLoad - обёртка над Load с panic при ошибке.
func MustLoad[T any](path string) *T {
	cfg, err := Load[T](path)
	if err != nil {
		panic(err)
	}

	return cfg
}
