// Package config loads the YAML configuration consumed by the cmd/
// binaries. Grounded on cmd/searcher/conf.go's NewConf(path) pattern.
package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the on-disk configuration for both the build and query
// binaries.
type Config struct {
	LogLevel  string `yaml:"loglevel"`
	LogPath   string `yaml:"logpath"`
	IndexPath string `yaml:"index"`

	Codec     string `yaml:"codec"`
	BlockSize uint32 `yaml:"blocksize"`

	Redis struct {
		Addr string `yaml:"addr"`
		DB   int    `yaml:"db"`
	} `yaml:"redis"`

	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`

	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`

	MetricsAddr string `yaml:"metrics_addr"`
}

// Load reads and parses the YAML configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}
