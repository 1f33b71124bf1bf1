package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Generation GenerationConfig `mapstructure:"generation"`
	Search     SearchConfig     `mapstructure:"search"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds; 0 keeps streams open
}

// GenerationConfig points at the text generation backend.
type GenerationConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

// SearchConfig selects and tunes the web search provider.
type SearchConfig struct {
	Mode       string `mapstructure:"mode"` // "mock" or "live"
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Engine     string `mapstructure:"engine"`
	Locale     string `mapstructure:"locale"`
	MaxResults int    `mapstructure:"max_results"`
	Timeout    int    `mapstructure:"timeout"` // seconds
}

type HTTPConfig struct {
	CORSOrigins  []string `mapstructure:"cors_origins"`
	MaxBodyBytes int64    `mapstructure:"max_body_bytes"`
	RateLimit    int      `mapstructure:"rate_limit"`  // requests per window
	RateWindow   int      `mapstructure:"rate_window"` // minutes
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	TTL     int    `mapstructure:"ttl"` // minutes
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(cfgFile string) *Config {
	// Load .env file if exists (ignore error if not found)
	godotenv.Load()
	godotenv.Load(".env.local")

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure environment variable handling
	// Replace . with _ for nested config keys
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("ASK")
	v.AutomaticEnv()

	// Read config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")          // Same directory as executable (priority)
		v.AddConfigPath("./configs")  // configs/ subdirectory
		v.AddConfigPath("../configs") // For running from bin/ directory
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is ok, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic("Error reading config file: " + err.Error())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic("Error unmarshaling config: " + err.Error())
	}

	return &cfg
}

// Validate reports configuration the server cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Generation.APIKey) == "" {
		return errors.New("generation API key is required: set ASK_GENERATION_API_KEY")
	}
	if c.Search.Mode != "mock" && c.Search.Mode != "live" {
		return errors.New("search mode must be \"mock\" or \"live\": check ASK_SEARCH_MODE")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 0)

	// Generation defaults; the key is deliberately defaulted empty so the
	// ASK_GENERATION_API_KEY env var binds through AutomaticEnv.
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("generation.model", "gemini-2.0-flash")
	v.SetDefault("generation.timeout", 60)

	// Search defaults
	v.SetDefault("search.mode", "mock")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.base_url", "https://www.searchapi.io/api/v1/search")
	v.SetDefault("search.engine", "google")
	v.SetDefault("search.locale", "en")
	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.timeout", 10)

	// HTTP defaults
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.max_body_bytes", 1<<20)
	v.SetDefault("http.rate_limit", 100)
	v.SetDefault("http.rate_window", 15)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "./data/search_cache.db")
	v.SetDefault("cache.ttl", 15)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}
