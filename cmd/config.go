package cmd

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/internal/ioconfig"
	"github.com/gnames/gnclade/pkg/config"
	"github.com/spf13/cobra"
)

func getConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show effective configuration",
		Long: `Prints configuration after config.yaml and GNCLADE_* environment
variables are applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := ioconfig.Dump(cfg)
			if err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			gn.Info("Config file: <em>%s</em>", config.ConfigFilePath(cfg.HomeDir))
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
