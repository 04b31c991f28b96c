// Package config loads runtime options from a config file and environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config wires runtime options into the program.
type Config struct {
	// DataDir roots the durable snapshot store.
	DataDir string
	// Endpoint is the document-chat backend base URL.
	Endpoint string
	// LogFile receives structured logs; empty disables logging (the TUI owns
	// the terminal, so logs never go to stdout).
	LogFile string
}

// Load reads .folio.yaml from the working directory or home, then applies
// FOLIO_* environment overrides. Missing files are fine; defaults cover a
// cold start.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("endpoint", "http://localhost:8080")
	v.SetDefault("log_file", "")

	v.SetConfigName(".folio")
	v.AddConfigPath("./")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.SetEnvPrefix("FOLIO")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	return Config{
		DataDir:  v.GetString("data_dir"),
		Endpoint: v.GetString("endpoint"),
		LogFile:  v.GetString("log_file"),
	}, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".folio"
	}
	return filepath.Join(home, ".folio")
}
