/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"gridboard/internal/catalog"
	"gridboard/internal/config"
	"gridboard/internal/dashboard"
	"gridboard/internal/domain"
	applog "gridboard/internal/log"
	"gridboard/internal/storage"
	"gridboard/internal/telemetry"
)

var (
	cfg     config.AppConfig
	secrets config.Secrets

	width       int
	namespace   string
	catalogPath string
	driver      string
	logLevel    string

	kv      storage.KV
	cards   []domain.Card
	mgr     *dashboard.Manager
	tracker *telemetry.Client
)

// Execute runs the CLI with os.Args.
func Execute() error {
	return execute(newRoot())
}

// execute runs root and releases what the command opened, also on failure.
func execute(root *cobra.Command) error {
	err := root.Execute()
	if cerr := teardown(); err == nil {
		err = cerr
	}
	return err
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "gridboard",
		Short:        "Responsive dashboard card manager",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(); err != nil {
				return err
			}
			cmd.SetContext(applog.WithNamespace(cmd.Context(), cfg.Storage.Namespace))
			return nil
		},
	}

	root.PersistentFlags().IntVar(&width, "width", 0, "viewport width in pixels (default 1280)")
	root.PersistentFlags().StringVar(&namespace, "namespace", "", "storage key namespace (overrides config)")
	root.PersistentFlags().StringVar(&catalogPath, "catalog", "", "card catalog file, YAML or TOML (default built-in cards)")
	root.PersistentFlags().StringVar(&driver, "storage", "", "storage driver: file, sqlite, postgres or memory")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		versionCmd(), configCmd(),
		showCmd(), cardsCmd(),
		editCmd(), moveCmd(), resizeCmd(), toggleCmd(), resetCmd(), dismissCmd(),
		exportCmd(), packCmd(),
		serveCmd(), uiCmd(),
	)
	return root
}

func setup() error {
	c, s, err := config.Load()
	if err != nil {
		return err
	}
	if namespace != "" {
		c.Storage.Namespace = namespace
	}
	if catalogPath != "" {
		c.General.Catalog = catalogPath
	}
	if driver != "" {
		c.Storage.Driver = strings.ToLower(driver)
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg, secrets = c, s
	kv, cards, mgr = nil, nil, nil

	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})

	tcfg := telemetry.FromEnv()
	tcfg.OptIn = cfg.General.TelemetryOptIn
	if tcfg.OptIn {
		id, err := telemetry.InstanceID(cfg.DataDir())
		if err != nil {
			applog.WithComponent("cli").Warn("telemetry instance id", slog.Any("err", err))
		}
		tcfg.Static = map[string]any{"instance": id, "storage": cfg.Storage.Driver}
	}
	tracker = telemetry.NewDefault(tcfg)
	return nil
}

func teardown() error {
	if tracker != nil {
		tracker.Flush(context.Background())
		tracker.Close()
		tracker = nil
	}
	if kv != nil {
		err := kv.Close()
		kv, mgr = nil, nil
		if err != nil && !errors.Is(err, storage.ErrClosed) {
			return fmt.Errorf("close storage: %w", err)
		}
	}
	return nil
}

// openDashboard opens storage, the catalog and a manager at the requested width.
func openDashboard(ctx context.Context) (*dashboard.Manager, error) {
	if mgr != nil {
		return mgr, nil
	}
	if _, err := openStorage(ctx); err != nil {
		return nil, err
	}
	var err error
	if cards == nil {
		cards, err = catalog.Resolve(cfg.General.Catalog)
		if err != nil {
			return nil, err
		}
	}
	mgr, err = newManager(ctx, cards, width)
	return mgr, err
}

func openStorage(ctx context.Context) (storage.KV, error) {
	if kv != nil {
		return kv, nil
	}
	var err error
	kv, err = storage.Open(ctx, storage.Options{
		Driver:   cfg.Storage.Driver,
		Path:     cfg.Storage.Path,
		DataDir:  cfg.DataDir(),
		DSN:      cfg.Storage.DSN,
		Password: secrets.PostgresPassword,
	})
	if err != nil {
		kv = nil
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return kv, nil
}

func newManager(ctx context.Context, cs []domain.Card, w int) (*dashboard.Manager, error) {
	bps, err := cfg.Grid.GridBreakpoints()
	if err != nil {
		applog.WithComponent("cli").Warn("using default breakpoints", slog.Any("err", err))
	}
	return dashboard.New(ctx, kv, cs, dashboard.Options{
		Namespace:       cfg.Storage.Namespace,
		Breakpoints:     bps,
		Sizing:          cfg.Grid.Sizing(),
		SimplifiedCount: cfg.Grid.SimplifiedCount,
		Width:           w,
		RowHeight:       cfg.Grid.RowHeight,
		Margin:          cfg.Grid.Margin,
		Tracker:         tracker,
	})
}

// DataDir is the configured data directory, or "" when the configuration
// cannot be read.
func DataDir() string {
	c, _, err := config.Load()
	if err != nil {
		return ""
	}
	return c.DataDir()
}

// State dumps the open dashboard for crash reports.
func State() ([]byte, error) {
	if mgr == nil {
		return nil, errors.New("no dashboard open")
	}
	return json.MarshalIndent(mgr.View(), "", "  ")
}
