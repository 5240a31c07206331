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
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/goodoldgalaxy/galaxy-core/pkg/config"
	"github.com/spf13/cobra"
)

const (
	flagVerbose = "verbose"
	flagCatalog = "catalog"
)

// NewRootCmd builds the galaxy command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "galaxy",
		Short:         "Manage a library of DRM-free games",
		Long:          "galaxy downloads, installs, updates and launches games from a product catalog.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolP(flagVerbose, "v", false, "log to stderr as well as the log file")
	root.PersistentFlags().String(flagCatalog, "", "JSON product catalog export")

	root.AddCommand(
		newVersionCmd(),
		newResolveCmd(),
		newAddCmd(),
		newListCmd(),
		newDownloadCmd(),
		newResumeCmd(),
		newInstallCmd(),
		newUpdateCmd(),
		newCheckUpdatesCmd(),
		newUninstallCmd(),
		newLaunchCmd(),
		newConfigCompatCmd(),
	)
	return root
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}

func optionsFrom(cmd *cobra.Command) Options {
	verbose, _ := cmd.Flags().GetBool(flagVerbose)
	catalogPath, _ := cmd.Flags().GetString(flagCatalog)
	return Options{CatalogPath: catalogPath, Verbose: verbose}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid title id: %q", arg)
	}
	return id, nil
}

// withApp runs fn against a freshly set up library and closes it after.
func withApp(cmd *cobra.Command, fn func(app *App) error) (err error) {
	app, err := Setup(cmd.Context(), optionsFrom(cmd))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(app)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", config.AppName, config.AppVersion)
		},
	}
}
