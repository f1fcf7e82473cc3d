/*
Copyright © 2026 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/internal/ioconfig"
	"github.com/gnames/gnclade/internal/iofs"
	"github.com/gnames/gnclade/internal/iologger"
	app "github.com/gnames/gnclade/pkg"
	"github.com/gnames/gnclade/pkg/config"
	"github.com/spf13/cobra"
)

var cfg *config.Config

// getRootCmd builds the command tree.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "gnclade",
		Short:   "Extracts pruned taxonomic subtrees in Newick format",
		Long: `GNclade imports NCBI taxonomy or GTDB releases and returns the
minimal subtree that connects selected taxa, serialized as Newick.

Typical workflow:
  gnclade ncbi update
  gnclade prune --taxids 9606,10090 -o mammals.nwk

  gnclade gtdb list
  gnclade gtdb sync --version 220.0
  gnclade prune -s gtdb --names "s__Escherichia coli,g__Bacillus"

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (GNCLADE_*)
  3. Config file (~/.config/gnclade/config.yaml)
  4. Built-in defaults

Nested fields use underscores, e.g. newick.with_id is GNCLADE_NEWICK_WITH_ID.`,
		PersistentPreRunE: bootstrap,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Remove the automatic "gnclade version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	// -V is consistent with other gn projects
	rootCmd.Flags().BoolP("version", "V", false, "version for gnclade")

	rootCmd.AddCommand(
		getConfigCmd(),
		getNCBICmd(),
		getGTDBCmd(),
		getDatasetsCmd(),
		getPruneCmd(),
		getCreateCmd(),
		getMigrateCmd(),
	)
	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with defaults, it is reconfigured after the
	// config is loaded.
	if err = iologger.Init(config.LogDir(homeDir), config.New().Log, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfgViper, err := ioconfig.Load(homeDir)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	cfg.Update(cfgViper.ToOptions())
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	if err = iologger.Init(config.LogDir(homeDir), cfg.Log, true); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir),
		"command", cmd.CommandPath(),
	)
	return nil
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
