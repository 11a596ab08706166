package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	AutoPort   bool          `mapstructure:"auto_port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`

	// Presence thresholds. Tunable, never hard-coded elsewhere.
	Grace time.Duration `mapstructure:"grace"`
	Stale time.Duration `mapstructure:"stale"`

	ChatHighWater int `mapstructure:"chat_high_water"`
	ChatLowWater  int `mapstructure:"chat_low_water"`
	ChatMaxLen    int `mapstructure:"chat_max_len"`
	ChatTail      int `mapstructure:"chat_tail"`

	ChatRate       int           `mapstructure:"chat_rate"`
	ChatRateWindow time.Duration `mapstructure:"chat_rate_window"`

	PreviewTTL     time.Duration `mapstructure:"preview_ttl"`
	PreviewTimeout time.Duration `mapstructure:"preview_timeout"`

	ICEServers []ICEServer `mapstructure:"ice_servers"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 5000)
	v.SetDefault("auto_port", true)
	v.SetDefault("static_path", "./static")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("grace", "30s")
	v.SetDefault("stale", "30s")
	v.SetDefault("chat_high_water", 250)
	v.SetDefault("chat_low_water", 200)
	v.SetDefault("chat_max_len", 2000)
	v.SetDefault("chat_tail", 50)
	v.SetDefault("chat_rate", 10)
	v.SetDefault("chat_rate_window", "10s")
	v.SetDefault("preview_ttl", "15m")
	v.SetDefault("preview_timeout", "5s")
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Dur("grace", cfg.Grace).
		Dur("stale", cfg.Stale).
		Msg("config ready")
	return &cfg, nil
}
