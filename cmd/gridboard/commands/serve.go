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
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gridboard/internal/backend"
	"gridboard/internal/catalog"
	"gridboard/internal/dashboard"
	"gridboard/internal/domain"
	applog "gridboard/internal/log"
	"gridboard/internal/storage"
	"gridboard/internal/ui"
)

func serveCmd() *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m, err := openDashboard(ctx)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			ready, _ := kv.(storage.Pinger)
			srv := backend.NewServer(m, backend.Config{Addr: addr, Secret: secrets.ServerSecret}, ready)
			if watch && cfg.General.Catalog != "" {
				go watchCatalog(ctx, srv)
			}
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload the card catalog file when it changes")
	return cmd
}

// watchCatalog rebuilds the served manager whenever the catalog file changes.
// Stored layouts are kept; new cards get generated positions.
func watchCatalog(ctx context.Context, srv *backend.Server) {
	l := applog.WithComponent("cli")
	err := catalog.Watch(ctx, cfg.General.Catalog, 0, func(cs []domain.Card) {
		err := srv.Reload(func(width int) (*dashboard.Manager, error) {
			return newManager(ctx, cs, width)
		})
		if err != nil {
			l.Warn("catalog reload rejected", slog.Any("err", err))
		}
	}, nil)
	if err != nil {
		l.Warn("catalog watch stopped", slog.Any("err", err))
	}
}

func uiCmd() *cobra.Command {
	var exportDir string
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Launch the desktop board (build with -tags fyne)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openDashboard(cmd.Context())
			if err != nil {
				return err
			}
			return ui.Run(ui.Options{Manager: m, ExportDir: exportDir, Title: "Gridboard"})
		},
	}
	cmd.Flags().StringVar(&exportDir, "export-dir", "", "where wireframe exports are written (default working directory)")
	return cmd
}
