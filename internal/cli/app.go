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

package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/oakflow/oakflow/internal/config"
	"github.com/oakflow/oakflow/internal/log"
	"github.com/oakflow/oakflow/internal/store/redisctx"
	"github.com/oakflow/oakflow/internal/store/sqlite"
	"github.com/oakflow/oakflow/pkg/process/expression"
)

// App wires the configuration, logger, process data store, and
// expression engine for one CLI invocation.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Store  *sqlite.Store
	Engine *expression.Engine
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	dbPath     string
}

// register binds the global flags onto a flag set.
func (g *globalFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&g.configPath, "config", "", "config file (default ~/.oakflow/config.yaml)")
	flags.StringVar(&g.dbPath, "db", "", "SQLite database path (overrides config)")
}

// newApp builds the application state for a subcommand run.
func newApp(g *globalFlags) (*App, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.dbPath != "" {
		cfg.Database.Path = g.dbPath
	}

	logger := log.New(cfg.LogConfig())
	logger = log.WithCorrelationID(logger, uuid.NewString())

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	store, err := sqlite.Open(sqlite.Config{Path: cfg.Database.Path})
	if err != nil {
		return nil, err
	}

	opts := []expression.Option{expression.WithLogger(logger)}
	if cfg.Redis.Addr != "" {
		opts = append(opts, expression.WithStore(
			redisctx.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)))
	}

	return &App{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Engine: expression.New(store, opts...),
	}, nil
}

// Close releases the application's resources.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
}

// parseValue converts a CLI-supplied variable value to its typed form:
// int, float, bool, or string, in that order of preference.
func parseValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
