// Package config loads the gateway configuration from an optional TOML file
// plus environment variables. Environment values win, so credentials can be
// kept out of the file entirely.
//
// The result is an explicit Config value passed down from the composition
// root — nothing in this repository reads configuration through a global.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultProviderOrder is the fallback priority chain: the polling provider
// first, then the three synchronous ones.
var DefaultProviderOrder = []string{"judge0", "codexapi", "jdoodle", "glot"}

// Config holds everything the server needs to start.
type Config struct {
	Port            int
	NATSURL         string
	ProviderTimeout time.Duration
	ProviderOrder   []string

	Judge0APIKey        string
	JDoodleClientID     string
	JDoodleClientSecret string
	GlotToken           string
}

// fileConfig mirrors the TOML layout of the optional providers file.
type fileConfig struct {
	Port            int      `toml:"port"`
	NATSURL         string   `toml:"nats_url"`
	ProviderTimeout string   `toml:"provider_timeout"`
	Order           []string `toml:"order"`

	Judge0 struct {
		APIKey string `toml:"api_key"`
	} `toml:"judge0"`
	JDoodle struct {
		ClientID     string `toml:"client_id"`
		ClientSecret string `toml:"client_secret"`
	} `toml:"jdoodle"`
	Glot struct {
		Token string `toml:"token"`
	} `toml:"glot"`
}

// Load reads the optional TOML file at path (skipped when path is empty or
// the file does not exist), then applies environment overrides. A .env file
// in the working directory is honoured the same way.
func Load(path string, logger *slog.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not load .env file", slog.String("error", err.Error()))
	}

	cfg := Config{
		Port:          8080,
		ProviderOrder: DefaultProviderOrder,
	}

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if len(cfg.ProviderOrder) == 0 {
		cfg.ProviderOrder = DefaultProviderOrder
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	if fc.NATSURL != "" {
		cfg.NATSURL = fc.NATSURL
	}
	if fc.ProviderTimeout != "" {
		d, err := time.ParseDuration(fc.ProviderTimeout)
		if err != nil {
			return fmt.Errorf("parsing provider_timeout: %w", err)
		}
		cfg.ProviderTimeout = d
	}
	if len(fc.Order) > 0 {
		cfg.ProviderOrder = fc.Order
	}
	if fc.Judge0.APIKey != "" {
		cfg.Judge0APIKey = fc.Judge0.APIKey
	}
	if fc.JDoodle.ClientID != "" {
		cfg.JDoodleClientID = fc.JDoodle.ClientID
	}
	if fc.JDoodle.ClientSecret != "" {
		cfg.JDoodleClientSecret = fc.JDoodle.ClientSecret
	}
	if fc.Glot.Token != "" {
		cfg.GlotToken = fc.Glot.Token
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATSURL = v
	}
	if v := os.Getenv("JUDGE0_API_KEY"); v != "" {
		cfg.Judge0APIKey = v
	}
	if v := os.Getenv("JDOODLE_CLIENT_ID"); v != "" {
		cfg.JDoodleClientID = v
	}
	if v := os.Getenv("JDOODLE_CLIENT_SECRET"); v != "" {
		cfg.JDoodleClientSecret = v
	}
	if v := os.Getenv("GLOT_TOKEN"); v != "" {
		cfg.GlotToken = v
	}
}
