/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gridboard/internal/config"
	"gridboard/internal/dashboard"
	"gridboard/internal/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if p, err := config.ConfigPath(); err == nil {
				fmt.Fprintln(out, "config:  ", p)
			}
			fmt.Fprintln(out, "data dir:", cfg.DataDir())
			catalogName := cfg.General.Catalog
			if catalogName == "" {
				catalogName = "(built-in)"
			}
			fmt.Fprintln(out, "catalog: ", catalogName)
			fmt.Fprintln(out, cfg.Summary())
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the dashboard at the current viewport width",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openDashboard(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(m.View())
			}
			printView(cmd.OutOrStdout(), m.View())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the view as JSON")
	return cmd
}

func cardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cards",
		Short: "List catalog cards and their visibility",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openDashboard(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tSTATE")
			for _, c := range m.Cards() {
				state := "shown"
				if c.Hidden {
					state = "hidden"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Title, state)
			}
			return tw.Flush()
		},
	}
}

func printView(w io.Writer, v dashboard.View) {
	fmt.Fprintf(w, "breakpoint %s, %d columns, %dpx, %s\n", v.Breakpoint, v.Columns, v.Width, v.Mode)
	if v.Simplified {
		fmt.Fprintln(w, "introductory view: run `gridboard dismiss-intro` to see every card")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tX\tY\tW\tH")
	for _, it := range v.Visible() {
		p := it.Placement
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n", it.CardID, it.Title, p.X, p.Y, p.W, p.H)
	}
	_ = tw.Flush()
	var hidden []string
	for _, it := range v.Items {
		if it.Hidden {
			hidden = append(hidden, it.CardID)
		}
	}
	if len(hidden) > 0 {
		fmt.Fprintf(w, "hidden: %v\n", hidden)
	}
}
