package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mkervran/bikefleet/core/metrics"
	"github.com/mkervran/bikefleet/infra/mqtt"
	"github.com/mkervran/bikefleet/infra/redis"
)

// Config is the full service configuration.
type Config struct {
	MQTT    mqtt.Config    `json:"mqtt"`
	Redis   redis.Config   `json:"redis"`
	Tracker TrackerConfig  `json:"tracker"`
	API     APIConfig      `json:"api"`
	Metrics metrics.Config `json:"metrics"`
}

// Load reads the config file (yaml or json by extension) and applies
// environment overrides of the form BF_SECTION__KEY.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("BF_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "bf_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.MQTT.SetDefaults()
	cfg.Redis.SetDefaults()
	cfg.Tracker.SetDefaults()
	cfg.API.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Tracker.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
