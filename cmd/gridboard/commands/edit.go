/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gridboard/internal/dashboard"
)

func intArgs(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", a)
		}
		out[i] = n
	}
	return out, nil
}

// editOnce enters edit mode, applies fn and saves.
func editOnce(ctx context.Context, m *dashboard.Manager, fn func() error) error {
	if _, err := m.ToggleEditMode(ctx); err != nil {
		if errors.Is(err, dashboard.ErrSimplified) {
			return fmt.Errorf("%w; run `gridboard dismiss-intro` first", err)
		}
		return err
	}
	if err := fn(); err != nil {
		_ = m.Save(ctx)
		return err
	}
	return m.Save(ctx)
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <card> <x> <y>",
		Short: "Move a card at the current breakpoint and save",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := intArgs(args[1:])
			if err != nil {
				return err
			}
			m, err := openDashboard(cmd.Context())
			if err != nil {
				return err
			}
			if err := editOnce(cmd.Context(), m, func() error { return m.OnCardMove(cmd.Context(), args[0], n[0], n[1]) }); err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), m.View())
			return nil
		},
	}
}

func resizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resize <card> <w> <h>",
		Short: "Resize a card at the current breakpoint and save",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := intArgs(args[1:])
			if err != nil {
				return err
			}
			m, err := openDashboard(cmd.Context())
			if err != nil {
				return err
			}
			if err := editOnce(cmd.Context(), m, func() error { return m.OnCardResize(cmd.Context(), args[0], n[0], n[1]) }); err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), m.View())
			return nil
		},
	}
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <card>",
		Short: "Hide or show a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openDashboard(cmd.Context())
			if err != nil {
				return err
			}
			hidden, err := m.ToggleCardVisibility(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state := "shown"
			if hidden {
				state = "hidden"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], state)
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore default layouts and show every card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openDashboard(cmd.Context())
			if err != nil {
				return err
			}
			m.ResetLayout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "layout reset")
			return nil
		},
	}
}

func dismissCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss-intro",
		Short: "Leave the introductory view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openDashboard(cmd.Context())
			if err != nil {
				return err
			}
			if m.DismissIntro(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), "introductory view dismissed")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "introductory view not active")
			}
			return nil
		},
	}
}

const editHelp = `commands:
  move <card> <x> <y>    move a card
  resize <card> <w> <h>  resize a card
  toggle <card>          hide or show a card
  width <px>             change the viewport width
  undo | redo            step through history
  show                   print the dashboard
  save                   leave edit mode
  edit                   enter edit mode again
  quit                   save and exit`

func editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Interactive editing session on stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := openDashboard(cmd.Context())
			if err != nil {
				return err
			}
			return repl(cmd.Context(), m, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// repl runs line commands against m until quit or EOF. Edit mode is entered
// on start and left on exit; command errors are printed, not returned.
func repl(ctx context.Context, m *dashboard.Manager, in io.Reader, out io.Writer) error {
	if _, err := m.ToggleEditMode(ctx); err != nil {
		if errors.Is(err, dashboard.ErrSimplified) {
			return fmt.Errorf("%w; run `gridboard dismiss-intro` first", err)
		}
		return err
	}
	defer func() {
		if m.View().EditMode {
			_ = m.Save(ctx)
		}
	}()
	fmt.Fprintln(out, editHelp)
	printView(out, m.View())

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := runLine(ctx, m, fields, out); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}

func runLine(ctx context.Context, m *dashboard.Manager, f []string, out io.Writer) error {
	want := func(n int) error {
		if len(f)-1 != n {
			return fmt.Errorf("%s takes %d arguments", f[0], n)
		}
		return nil
	}
	switch f[0] {
	case "move", "resize":
		if err := want(3); err != nil {
			return err
		}
		n, err := intArgs(f[2:])
		if err != nil {
			return err
		}
		if f[0] == "move" {
			err = m.OnCardMove(ctx, f[1], n[0], n[1])
		} else {
			err = m.OnCardResize(ctx, f[1], n[0], n[1])
		}
		if err != nil {
			return err
		}
	case "toggle":
		if err := want(1); err != nil {
			return err
		}
		if _, err := m.ToggleCardVisibility(ctx, f[1]); err != nil {
			return err
		}
	case "width":
		if err := want(1); err != nil {
			return err
		}
		n, err := intArgs(f[1:])
		if err != nil {
			return err
		}
		if _, err := m.OnViewportResize(ctx, n[0]); err != nil {
			return err
		}
	case "undo", "redo":
		step := m.Undo
		if f[0] == "redo" {
			step = m.Redo
		}
		ok, err := step(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "nothing to", f[0])
			return nil
		}
	case "save":
		if err := m.Save(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "saved")
		return nil
	case "edit":
		if m.View().EditMode {
			fmt.Fprintln(out, "already editing")
			return nil
		}
		if _, err := m.ToggleEditMode(ctx); err != nil {
			return err
		}
	case "show":
	case "help":
		fmt.Fprintln(out, editHelp)
		return nil
	default:
		return fmt.Errorf("unknown command %q", f[0])
	}
	printView(out, m.View())
	return nil
}
