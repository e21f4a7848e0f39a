package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database  DatabaseConfig
	RunDBPath string
	LogLevel  string
	Proxy     ProxyConfig
	Server    ServerConfig
	Scheduler SchedulerConfig
	MarketAPI MarketAPIConfig
	Compare   CompareConfig
	Sources   map[string]*SourceConfig
}

type DatabaseConfig struct {
	URL string
}

type ProxyConfig struct {
	URL string
}

type ServerConfig struct {
	Addr string
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

// MarketAPIConfig holds the OAuth2 client-credential settings for the
// API-based market source.
type MarketAPIConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// CompareConfig tunes the comparison heuristics. The deadband is a fraction:
// 0.05 means a source average within ±5% of the buying price reads as stable.
type CompareConfig struct {
	TrendDeadband   float64
	DefaultPageSize int
}

type SourceConfig struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name"`
	Collector string            `yaml:"collector"` // api or browser
	URL       string            `yaml:"url"`
	Endpoints map[string]string `yaml:"endpoints"`
	MaxItems  int               `yaml:"max_items"`
	Scroll    ScrollConfig      `yaml:"scroll"`
}

// ScrollConfig tunes the scroll-driven collection loop for one marketplace.
type ScrollConfig struct {
	StallLimit       int      `yaml:"stall_limit"`
	MaxAttempts      int      `yaml:"max_attempts"`
	MinPauseMS       int      `yaml:"min_pause_ms"`
	MaxPauseMS       int      `yaml:"max_pause_ms"`
	LoadMoreSelector string   `yaml:"load_more_selector"`
	OverlaySelectors []string `yaml:"overlay_selectors"`
}

// Defaults applied to zero-valued scroll settings.
func (s *ScrollConfig) ApplyDefaults() {
	if s.StallLimit == 0 {
		s.StallLimit = 4
	}
	if s.MaxAttempts == 0 {
		s.MaxAttempts = 150
	}
	if s.MinPauseMS == 0 {
		s.MinPauseMS = 1000
	}
	if s.MaxPauseMS == 0 {
		s.MaxPauseMS = 10000
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		RunDBPath: getEnv("RUN_DB_PATH", "collector.db"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Proxy: ProxyConfig{
			URL: os.Getenv("PROXY_URL"),
		},
		Server: ServerConfig{
			Addr: getEnv("SERVER_ADDR", ":8080"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("COLLECT_CRON"),
		},
		MarketAPI: MarketAPIConfig{
			TokenURL:     os.Getenv("MARKET_API_TOKEN_URL"),
			ClientID:     os.Getenv("MARKET_API_CLIENT_ID"),
			ClientSecret: os.Getenv("MARKET_API_CLIENT_SECRET"),
		},
		Compare: CompareConfig{
			TrendDeadband:   getEnvFloat("TREND_DEADBAND", 0.05),
			DefaultPageSize: getEnvInt("DEFAULT_PAGE_SIZE", 20),
		},
		Sources: make(map[string]*SourceConfig),
	}

	if interval := os.Getenv("COLLECT_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadSourceConfigs(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadSourceConfigs() error {
	configDir := "config/sources"
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(configDir, entry.Name()))
		if err != nil {
			return err
		}

		var src SourceConfig
		if err := yaml.Unmarshal(data, &src); err != nil {
			return err
		}
		src.Scroll.ApplyDefaults()
		if src.MaxItems == 0 {
			src.MaxItems = 500
		}

		c.Sources[src.ID] = &src
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
