package config

import (
	"time"

	"github.com/spf13/viper"
)

// CLIConfig is the echomatch CLI's runtime configuration, loaded via viper
// from a TOML config file plus ECHOMATCH_-prefixed environment overrides
// (the teacher's CLI config pattern).
type CLIConfig struct {
	ServerURL       string        `mapstructure:"server_url"`
	DatabaseDSN     string        `mapstructure:"database_dsn"`
	FFmpegBinary    string        `mapstructure:"ffmpeg_binary"`
	IdentifyTimeout time.Duration `mapstructure:"identify_timeout"`
}

// LoadCLIConfig reads ./echomatch.toml or $HOME/echomatch.toml, falling
// back to defaults when no config file is present.
func LoadCLIConfig() (*CLIConfig, error) {
	v := viper.New()
	v.SetConfigName("echomatch")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("ffmpeg_binary", "ffmpeg")
	v.SetDefault("identify_timeout", 10*time.Second)

	v.SetEnvPrefix("ECHOMATCH")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg CLIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
