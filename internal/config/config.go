/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gridboard/internal/domain"
	"gridboard/internal/grid"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Grid          GridConfig    `yaml:"grid"`
	Storage       StorageConfig `yaml:"storage"`
	Server        ServerConfig  `yaml:"server"`
	Logging       LoggingConfig `yaml:"logging"`
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Catalog        string `yaml:"catalog"` // optional cards YAML; built-in cards when empty
	DataDir        string `yaml:"data_dir"`
}

type BreakpointConfig struct {
	Key      string `yaml:"key"`
	MinWidth int    `yaml:"min_width"`
	Columns  int    `yaml:"columns"`
}

type GridConfig struct {
	Breakpoints     []BreakpointConfig `yaml:"breakpoints"`
	DefaultW        int                `yaml:"default_w"`
	DefaultH        int                `yaml:"default_h"`
	MinW            int                `yaml:"min_w"`
	MinH            int                `yaml:"min_h"`
	RowHeight       int                `yaml:"row_height"`
	Margin          int                `yaml:"margin"`
	SimplifiedCount int                `yaml:"simplified_count"`
}

type StorageConfig struct {
	Driver    string `yaml:"driver"` // file | sqlite | postgres | memory
	Path      string `yaml:"path"`
	DSN       string `yaml:"dsn"`
	Namespace string `yaml:"namespace"`
	// The Postgres password is not stored on disk; it lives in the OS keychain.
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// The auth secret lives in the OS keychain.
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Secrets are kept out of the YAML file.
type Secrets struct {
	PostgresPassword string
	ServerSecret     string
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	var bps []BreakpointConfig
	for _, bp := range grid.DefaultBreakpoints() {
		bps = append(bps, BreakpointConfig{Key: string(bp.Key), MinWidth: bp.MinWidth, Columns: bp.Columns})
	}
	sz := grid.DefaultSizing()
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false},
		Grid: GridConfig{
			Breakpoints:     bps,
			DefaultW:        sz.DefaultW,
			DefaultH:        sz.DefaultH,
			MinW:            sz.MinW,
			MinH:            sz.MinH,
			RowHeight:       60,
			Margin:          16,
			SimplifiedCount: 4,
		},
		Storage: StorageConfig{Driver: "file"},
		Server:  ServerConfig{Addr: "127.0.0.1:8787"},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile     = "GB_CONFIG"
	EnvDataDir        = "GB_DATA_DIR"
	EnvCatalog        = "GB_CATALOG"
	EnvTelemetryOptIn = "GB_TELEMETRY_OPT_IN"
	EnvStorageDriver  = "GB_STORAGE_DRIVER"
	EnvStoragePath    = "GB_STORAGE_PATH"
	EnvStorageDSN     = "GB_STORAGE_DSN"
	EnvNamespace      = "GB_NAMESPACE"
	EnvServerAddr     = "GB_SERVER_ADDR"
	EnvServerSecret   = "GB_SERVER_SECRET"
	EnvLogLevel       = "GB_LOG_LEVEL"
	EnvLogFormat      = "GB_LOG_FORMAT"
	EnvLogSource      = "GB_LOG_SOURCE"
	EnvLogFile        = "GB_LOG_FILE"
)

// ConfigPath returns the per-user config file path. GB_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	base, err := userDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.yaml"), nil
}

func userDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Gridboard")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Gridboard")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "gridboard")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// DataDir is where layout files, crash reports and telemetry land.
func (c AppConfig) DataDir() string {
	if d := strings.TrimSpace(c.General.DataDir); d != "" {
		return d
	}
	if base, err := userDir(); err == nil {
		return filepath.Join(base, "data")
	}
	return filepath.Join(os.TempDir(), "gridboard")
}

// GridBreakpoints converts the configured table, falling back to the defaults when it is invalid.
func (g GridConfig) GridBreakpoints() (grid.Breakpoints, error) {
	if len(g.Breakpoints) == 0 {
		return grid.DefaultBreakpoints(), nil
	}
	in := make([]grid.Breakpoint, 0, len(g.Breakpoints))
	for _, b := range g.Breakpoints {
		in = append(in, grid.Breakpoint{Key: domain.BreakpointKey(b.Key), MinWidth: b.MinWidth, Columns: b.Columns})
	}
	bps, err := grid.NewBreakpoints(in)
	if err != nil {
		return grid.DefaultBreakpoints(), fmt.Errorf("grid.breakpoints: %w", err)
	}
	return bps, nil
}

// Sizing returns the fallback card sizes.
func (g GridConfig) Sizing() grid.Sizing {
	d := grid.DefaultSizing()
	if g.DefaultW > 0 {
		d.DefaultW = g.DefaultW
	}
	if g.DefaultH > 0 {
		d.DefaultH = g.DefaultH
	}
	if g.MinW > 0 {
		d.MinW = g.MinW
	}
	if g.MinH > 0 {
		d.MinH = g.MinH
	}
	return d
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// Secrets come from the keyring and are returned separately; GB_SERVER_SECRET overrides the stored one.
func Load() (AppConfig, Secrets, error) {
	cfg := Defaults()
	var sec Secrets
	path, err := ConfigPath()
	if err != nil {
		return cfg, sec, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, sec, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	sec.PostgresPassword, _ = tokenStore.Get(keyringService, keyringPostgres)
	sec.ServerSecret, _ = tokenStore.Get(keyringService, keyringServer)
	if v := strings.TrimSpace(os.Getenv(EnvServerSecret)); v != "" {
		sec.ServerSecret = v
	}
	return cfg, sec, nil
}

// Save writes the user config YAML and persists non-empty secrets into the OS keyring.
func Save(cfg AppConfig, sec Secrets) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if sec.PostgresPassword != "" {
		if err := tokenStore.Set(keyringService, keyringPostgres, sec.PostgresPassword); err != nil {
			return err
		}
	}
	if sec.ServerSecret != "" {
		if err := tokenStore.Set(keyringService, keyringServer, sec.ServerSecret); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if strings.TrimSpace(src.General.Catalog) != "" {
		dst.General.Catalog = strings.TrimSpace(src.General.Catalog)
	}
	if strings.TrimSpace(src.General.DataDir) != "" {
		dst.General.DataDir = strings.TrimSpace(src.General.DataDir)
	}
	// grid
	if len(src.Grid.Breakpoints) > 0 {
		dst.Grid.Breakpoints = append([]BreakpointConfig(nil), src.Grid.Breakpoints...)
	}
	mergeInt(&dst.Grid.DefaultW, src.Grid.DefaultW)
	mergeInt(&dst.Grid.DefaultH, src.Grid.DefaultH)
	mergeInt(&dst.Grid.MinW, src.Grid.MinW)
	mergeInt(&dst.Grid.MinH, src.Grid.MinH)
	mergeInt(&dst.Grid.RowHeight, src.Grid.RowHeight)
	mergeInt(&dst.Grid.Margin, src.Grid.Margin)
	mergeInt(&dst.Grid.SimplifiedCount, src.Grid.SimplifiedCount)
	// storage
	if strings.TrimSpace(src.Storage.Driver) != "" {
		dst.Storage.Driver = strings.ToLower(strings.TrimSpace(src.Storage.Driver))
	}
	if strings.TrimSpace(src.Storage.Path) != "" {
		dst.Storage.Path = strings.TrimSpace(src.Storage.Path)
	}
	if strings.TrimSpace(src.Storage.DSN) != "" {
		dst.Storage.DSN = strings.TrimSpace(src.Storage.DSN)
	}
	if strings.TrimSpace(src.Storage.Namespace) != "" {
		dst.Storage.Namespace = strings.TrimSpace(src.Storage.Namespace)
	}
	if strings.TrimSpace(src.Server.Addr) != "" {
		dst.Server.Addr = strings.TrimSpace(src.Server.Addr)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func mergeInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.General.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCatalog)); v != "" {
		cfg.General.Catalog = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageDriver)); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoragePath)); v != "" {
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageDSN)); v != "" {
		cfg.Storage.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvNamespace)); v != "" {
		cfg.Storage.Namespace = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvServerAddr)); v != "" {
		cfg.Server.Addr = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"general.data_dir":         EnvDataDir,
	"general.catalog":          EnvCatalog,
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"storage.driver":           EnvStorageDriver,
	"storage.path":             EnvStoragePath,
	"storage.dsn":              EnvStorageDSN,
	"storage.namespace":        EnvNamespace,
	"server.addr":              EnvServerAddr,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// Validate reports settings that cannot work at runtime.
func (c AppConfig) Validate() error {
	if _, err := c.Grid.GridBreakpoints(); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case "file", "sqlite", "memory":
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return errors.New("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("storage.driver %q: want file, sqlite, postgres or memory", c.Storage.Driver)
	}
	if c.Grid.SimplifiedCount < 0 {
		return errors.New("grid.simplified_count must not be negative")
	}
	return nil
}

// Summary is a one-line rendering used by the CLI.
func (c AppConfig) Summary() string {
	return "storage=" + c.Storage.Driver + " namespace=" + strconv.Quote(c.Storage.Namespace) + " server=" + c.Server.Addr
}
