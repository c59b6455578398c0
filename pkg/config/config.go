package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Model   ModelConfig   `yaml:"model"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`     // HTTP Listen Address (e.g. :8000)
	TCPAddr string `yaml:"tcp_addr"` // TCP Listen Address (e.g. :9000)
}

type StorageConfig struct {
	Path         string `yaml:"path"`
	HistoryLimit int    `yaml:"history_limit"`
	CacheSize    int    `yaml:"cache_size"`
}

type ModelConfig struct {
	TrainingCSV string `yaml:"training_csv"`
}

func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:    ":8000",
			TCPAddr: ":9000",
		},
		Storage: StorageConfig{
			Path:         "biomass_results.db",
			HistoryLimit: 100,
			CacheSize:    1024,
		},
		Model: ModelConfig{
			TrainingCSV: "sample_data.csv",
		},
	}

	if configPath == "" {
		for _, p := range []string{"configs/biomass.yaml", "biomass.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return cfg, err
				}
				applyDefaults(cfg)
				return cfg, nil
			}
		}
		applyDefaults(cfg)
		return cfg, nil // no file found: use defaults
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.TCPAddr == "" {
		cfg.Server.TCPAddr = ":9000"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "biomass_results.db"
	}
	if cfg.Storage.HistoryLimit <= 0 {
		cfg.Storage.HistoryLimit = 100
	}
	if cfg.Storage.CacheSize <= 0 {
		cfg.Storage.CacheSize = 1024
	}
	if cfg.Model.TrainingCSV == "" {
		cfg.Model.TrainingCSV = "sample_data.csv"
	}
}
