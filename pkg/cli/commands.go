// Good Old Galaxy Core
// Copyright (c) 2026 The Good Old Galaxy Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Good Old Galaxy Core.
//
// Good Old Galaxy Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Good Old Galaxy Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Good Old Galaxy Core.  If not, see <http://www.gnu.org/licenses/>.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goodoldgalaxy/galaxy-core/pkg/helpers"
	"github.com/goodoldgalaxy/galaxy-core/pkg/launcher"
	"github.com/goodoldgalaxy/galaxy-core/pkg/library"
	"github.com/spf13/cobra"
)

const subscriberBuffer = 100

var ErrCatalogRequired = errors.New("a catalog is required, pass --catalog")

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <dir>",
		Short: "Show how the game installed in dir would be started",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := launcher.NewResolver().ResolveDir(args[0])
			if err != nil {
				return userError{err: err}
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a catalog product and its DLCs to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if optionsFrom(cmd).CatalogPath == "" {
				return ErrCatalogRequired
			}
			platform, _ := cmd.Flags().GetString("platform")
			lang, _ := cmd.Flags().GetString("lang")

			return withApp(cmd, func(app *App) error {
				product, err := app.Catalog.Product(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("error looking up product: %w", err)
				}
				if lang == "" {
					lang = app.Config.Lang()
				}
				t := product.NewTitle(library.ParsePlatform(platform), lang)
				if added := app.Manager.Add(t); added != t {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is already in the library\n", added.Name)
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s (%d DLCs)\n", t.Name, len(t.DLCs))
				return nil
			})
		},
	}
	cmd.Flags().String("platform", string(library.PlatformLinux), "installer platform, linux or windows")
	cmd.Flags().String("lang", "", "installer language, defaults to the configured one")
	return cmd
}

func writeTitles(out io.Writer, titles []*library.Title) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATE\tVERSION\tNAME")
	row := func(t *library.Title, indent string) {
		version := t.InstalledVersion()
		if version == "" {
			version = "-"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s%s\n", t.ID, t.State(), version, indent, t.Name)
	}
	for _, t := range titles {
		row(t, "")
		for _, dlc := range t.DLCs {
			row(dlc, "  ")
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("error writing title list: %w", err)
	}
	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the games in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(app *App) error {
				return writeTitles(cmd.OutOrStdout(), app.Manager.Titles())
			})
		},
	}
}

// runPipeline starts a download with start and follows it to the end.
func runPipeline(cmd *cobra.Command, app *App, id int64, start func(context.Context, int64) error) error {
	events, sub := app.Broker.Subscribe(subscriberBuffer)
	defer app.Broker.Unsubscribe(sub)

	if err := start(cmd.Context(), id); err != nil {
		return userError{err: err}
	}
	if err := follow(cmd.Context(), cmd.OutOrStdout(), app.Manager, id, events); err != nil {
		return err
	}

	t, err := app.Manager.Title(id)
	if err != nil {
		return err
	}
	if t.State() != library.StateInstalled {
		return fmt.Errorf("%w: %s is %s", ErrPipelineFailed, t.Name, t.State())
	}
	return nil
}

func newDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <id>",
		Short: "Download and install a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(app *App) error {
				return runPipeline(cmd, app, id, app.Manager.StartDownload)
			})
		},
	}
}

func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume the download that was interrupted last time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(app *App) error {
				id := app.Config.CurrentDownload()
				if id == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nothing to resume")
					return nil
				}
				return runPipeline(cmd, app, id, func(ctx context.Context, _ int64) error {
					return app.Manager.ResumePending(ctx)
				})
			})
		},
	}
}

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <id> <archive>",
		Short: "Install a game from an installer already on disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(app *App) error {
				if err := app.Manager.InstallArchive(cmd.Context(), id, args[1]); err != nil {
					return userError{err: err}
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "installed")
				return nil
			})
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> [archive]",
		Short: "Update a game, from the catalog or from an installer on disk",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(app *App) error {
				if len(args) == 1 {
					return runPipeline(cmd, app, id, app.Manager.StartUpdate)
				}
				if err := app.Manager.Update(cmd.Context(), id, args[1]); err != nil {
					return userError{err: err}
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "updated")
				return nil
			})
		},
	}
}

func newCheckUpdatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-updates",
		Short: "Mark installed games with a newer catalog version as updatable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(app *App) error {
				ids, err := app.Manager.CheckUpdates(cmd.Context())
				for _, id := range ids {
					t, titleErr := app.Manager.Title(id)
					if titleErr != nil {
						continue
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", id, t.Name, t.AvailableVersion())
				}
				if len(ids) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "everything is up to date")
				}
				if err != nil {
					return fmt.Errorf("some titles could not be checked: %w", err)
				}
				return nil
			})
		},
	}
}

// simpleCmd runs a single manager operation on one title.
func simpleCmd(use, short, done string, op func(*App) func(context.Context, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(app *App) error {
				if err := op(app)(cmd.Context(), id); err != nil {
					return userError{err: err}
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), done)
				return nil
			})
		},
	}
}

func newUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall <id>",
		Short: "Remove an installed game and its DLCs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")

			return withApp(cmd, func(app *App) error {
				t, err := app.Manager.Title(id)
				if err != nil {
					return err
				}
				if !yes && !helpers.YesNoPrompt(
					cmd.InOrStdin(), cmd.ErrOrStderr(),
					fmt.Sprintf("Uninstall %s?", t.Name), false,
				) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
					return nil
				}
				if err := app.Manager.Uninstall(cmd.Context(), id); err != nil {
					return userError{err: err}
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "uninstalled")
				return nil
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newLaunchCmd() *cobra.Command {
	return simpleCmd("launch <id>", "Start an installed game", "launched",
		func(app *App) func(context.Context, int64) error { return app.Manager.Launch })
}

func newConfigCompatCmd() *cobra.Command {
	return simpleCmd("config-compat <id>", "Open the compatibility layer settings for a Windows game", "done",
		func(app *App) func(context.Context, int64) error { return app.Manager.ConfigureCompat })
}
