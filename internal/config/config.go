package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	StoreDSN     string `yaml:"store_dsn"`
	LogFile      string `yaml:"log_file"`
	LatencyMinMs int    `yaml:"latency_min_ms"`
	LatencyMaxMs int    `yaml:"latency_max_ms"`
	Seed         bool   `yaml:"seed"`
	Orders       Orders `yaml:"orders"`
}

type Orders struct {
	// StrictTransitions rejects non-adjacent status moves instead of
	// allowing free manual overrides.
	StrictTransitions bool `yaml:"strict_transitions"`
}

func defaults() Config {
	return Config{
		StoreDSN:     "shopsim.db",
		LatencyMinMs: 300,
		LatencyMaxMs: 800,
		Seed:         true,
	}
}

// Load reads the yaml config at path (missing file falls back to defaults),
// then applies env-var overrides.
func Load(path string) (Config, error) {
	cfg := defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, err
			}
		} else if !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if v := os.Getenv("STORE_DSN"); v != "" {
		cfg.StoreDSN = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("LATENCY_MIN_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LatencyMinMs = n
		}
	}
	if v := os.Getenv("LATENCY_MAX_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LatencyMaxMs = n
		}
	}
	if v := os.Getenv("SEED"); v != "" {
		cfg.Seed = v == "1" || v == "true"
	}
	if v := os.Getenv("STRICT_TRANSITIONS"); v != "" {
		cfg.Orders.StrictTransitions = v == "1" || v == "true"
	}

	log.Printf("[config] STORE_DSN=%s LATENCY=%d-%dms SEED=%v STRICT=%v",
		cfg.StoreDSN, cfg.LatencyMinMs, cfg.LatencyMaxMs, cfg.Seed, cfg.Orders.StrictTransitions)
	return cfg, nil
}
