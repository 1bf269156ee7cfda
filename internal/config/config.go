package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the analysis engine.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Engine    EngineConfig    `yaml:"engine"`
	Rules     RulesConfig     `yaml:"rules"`
	Cache     CacheConfig     `yaml:"cache"`
	Inventory InventoryConfig `yaml:"inventory"`
}

// ServerConfig controls the HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// EngineConfig carries analysis defaults and the revenue table.
type EngineConfig struct {
	TimeWindow         time.Duration      `yaml:"timeWindow"`
	MaxHops            int                `yaml:"maxHops"`
	MinConfidence      float64            `yaml:"minConfidence"`
	CascadeDelay       time.Duration      `yaml:"cascadeDelay"`
	CascadeMaxAffected int                `yaml:"cascadeMaxAffected"`
	PatternWindowDays  int                `yaml:"patternWindowDays"`
	RevenueTable       map[string]float64 `yaml:"revenueTable"`
}

// RulesConfig controls recommendation rule-pack loading.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig controls Redis-backed caching of analysis responses.
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Addr            string        `yaml:"addr"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	DB              int           `yaml:"db"`
	KeyPrefix       string        `yaml:"keyPrefix"`
	DialTimeout     time.Duration `yaml:"dialTimeout"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	CorrelationsTTL time.Duration `yaml:"correlationsTTL"`
	ImpactTTL       time.Duration `yaml:"impactTTL"`
}

// InventoryConfig configures the optional remote inventory to seed the store
// from at startup.
type InventoryConfig struct {
	BaseURL      string        `yaml:"baseURL"`
	TopologyPath string        `yaml:"topologyPath"`
	EventsPath   string        `yaml:"eventsPath"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("GRAPHSIGHT_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8085",
			MetricsAddress:  ":2112",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    15 * time.Second,
			GracefulTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Engine: EngineConfig{
			TimeWindow:         time.Hour,
			MaxHops:            3,
			MinConfidence:      0.5,
			CascadeDelay:       5 * time.Minute,
			CascadeMaxAffected: 10,
			PatternWindowDays:  7,
		},
		Rules: RulesConfig{Path: "configs/rules/default.yaml"},
		Cache: CacheConfig{
			Enabled:         false,
			KeyPrefix:       "graphsight",
			DialTimeout:     2 * time.Second,
			ReadTimeout:     500 * time.Millisecond,
			WriteTimeout:    500 * time.Millisecond,
			CorrelationsTTL: 2 * time.Minute,
			ImpactTTL:       2 * time.Minute,
		},
		Inventory: InventoryConfig{
			TopologyPath: "/api/v1/topology",
			EventsPath:   "/api/v1/events",
			Timeout:      5 * time.Second,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GRAPHSIGHT_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("GRAPHSIGHT_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("GRAPHSIGHT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("GRAPHSIGHT_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("GRAPHSIGHT_RULES_PATH"); v != "" {
		cfg.Rules.Path = v
	}
	if v := os.Getenv("GRAPHSIGHT_ENGINE_TIME_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Engine.TimeWindow = d
		}
	}
	if v := os.Getenv("GRAPHSIGHT_ENGINE_MAX_HOPS"); v != "" {
		if hops, err := strconv.Atoi(v); err == nil && hops > 0 {
			cfg.Engine.MaxHops = hops
		}
	}
	if v := os.Getenv("GRAPHSIGHT_ENGINE_MIN_CONFIDENCE"); v != "" {
		if conf, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.MinConfidence = conf
		}
	}
	if v := os.Getenv("GRAPHSIGHT_INVENTORY_BASE_URL"); v != "" {
		cfg.Inventory.BaseURL = v
	}
	if v := os.Getenv("GRAPHSIGHT_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("GRAPHSIGHT_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("GRAPHSIGHT_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("GRAPHSIGHT_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("GRAPHSIGHT_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("GRAPHSIGHT_CACHE_CORRELATIONS_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.CorrelationsTTL = d
		}
	}
	if v := os.Getenv("GRAPHSIGHT_CACHE_IMPACT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.ImpactTTL = d
		}
	}
}
