/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gridboard/internal/catalog"
	"gridboard/internal/export"
	"gridboard/internal/layoutpack"
)

func exportCmd() *cobra.Command {
	var (
		body   bool
		hidden bool
		title  string
	)
	cmd := &cobra.Command{
		Use:   "export <file.png|file.pdf|file.svg>",
		Short: "Write a wireframe of the dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := export.FormatFor(args[0]); err != nil {
				return err
			}
			m, err := openDashboard(cmd.Context())
			if err != nil {
				return err
			}
			opt := export.Options{IncludeBody: body, IncludeHidden: hidden, Title: title}
			if err := export.WriteFile(m.View(), args[0], opt); err != nil {
				return err
			}
			abs, _ := filepath.Abs(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", abs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&body, "body", false, "render card content inside each card")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "outline hidden cards")
	cmd.Flags().StringVar(&title, "title", "", "document title")
	return cmd
}

func packCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Export or install layout packs",
	}
	cmd.AddCommand(packExportCmd(), packInstallCmd())
	return cmd
}

func packExportCmd() *cobra.Command {
	var withCatalog bool
	cmd := &cobra.Command{
		Use:   "export <pack.zip>",
		Short: "Write the stored layouts and hidden cards into a zip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the dashboard makes sure every breakpoint seen so far is stored.
			if _, err := openDashboard(cmd.Context()); err != nil {
				return err
			}
			cs := cards
			if !withCatalog {
				cs = nil
			}
			n, err := layoutpack.Export(cmd.Context(), kv, cfg.Storage.Namespace, cs, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d entries to %s\n", n, args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&withCatalog, "catalog", true, "include the card catalog")
	return cmd
}

func packInstallCmd() *cobra.Command {
	var (
		overwrite  bool
		catalogOut string
	)
	cmd := &cobra.Command{
		Use:     "install <pack.zip>",
		Aliases: []string{"import"},
		Short:   "Install a layout pack into the current namespace",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			res, err := layoutpack.Install(cmd.Context(), store, cfg.Storage.Namespace, args[0], overwrite)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.Installed) > 0 {
				fmt.Fprintln(out, "installed:", strings.Join(res.Installed, ", "))
			}
			if len(res.Skipped) > 0 {
				fmt.Fprintln(out, "skipped (use --overwrite):", strings.Join(res.Skipped, ", "))
			}
			if len(res.Cards) > 0 && catalogOut != "" {
				b, err := catalog.Encode(res.Cards)
				if err != nil {
					return err
				}
				if err := writeFile(catalogOut, b); err != nil {
					return err
				}
				fmt.Fprintln(out, "catalog written to", catalogOut)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace values already stored")
	cmd.Flags().StringVar(&catalogOut, "catalog-out", "", "write the pack's card catalog to this YAML file")
	return cmd
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
