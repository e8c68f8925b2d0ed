// Copyright 2026 The Oakflow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the CLI configuration from a YAML file merged
// with environment-driven logging settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oakflow/oakflow/internal/log"
)

// Config is the oakflow CLI configuration.
type Config struct {
	// Database configures the SQLite process data store.
	Database DatabaseConfig `yaml:"database"`

	// Redis optionally configures a shared Redis context store.
	// When Addr is empty the in-memory store is used.
	Redis RedisConfig `yaml:"redis"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`
}

// DatabaseConfig configures the SQLite process data store.
type DatabaseConfig struct {
	// Path is the SQLite database file. Default: ~/.oakflow/oakflow.db
	Path string `yaml:"path"`
}

// RedisConfig configures the optional Redis context store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.Database.Path = filepath.Join(home, ".oakflow", "oakflow.db")
	} else {
		cfg.Database.Path = "oakflow.db"
	}
	return cfg
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "oakflow.yaml"
	}
	return filepath.Join(home, ".oakflow", "config.yaml")
}

// Load reads a config file. A missing file at the default path falls
// back to defaults; a missing explicitly-requested file is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// LogConfig builds the logger configuration, letting the environment
// override file settings.
func (c *Config) LogConfig() *log.Config {
	lc := log.FromEnv()
	if c.Log.Level != "" && os.Getenv("OAKFLOW_LOG_LEVEL") == "" && os.Getenv("LOG_LEVEL") == "" && os.Getenv("OAKFLOW_DEBUG") == "" {
		lc.Level = c.Log.Level
	}
	if c.Log.Format != "" && os.Getenv("LOG_FORMAT") == "" {
		lc.Format = log.Format(c.Log.Format)
	}
	return lc
}
