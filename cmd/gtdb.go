package cmd

import (
	"context"
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/internal/iodownload"
	"github.com/gnames/gnclade/internal/iofs"
	"github.com/gnames/gnclade/internal/iogtdb"
	"github.com/gnames/gnclade/pkg/config"
	"github.com/spf13/cobra"
)

func getGTDBCmd() *cobra.Command {
	gtdbCmd := &cobra.Command{
		Use:   "gtdb",
		Short: "Manage Genome Taxonomy Database releases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	gtdbCmd.AddCommand(
		getGTDBListCmd(),
		getGTDBDownloadCmd(),
		getGTDBParseCmd(),
		getGTDBSyncCmd(),
	)
	return gtdbCmd
}

func getGTDBListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List GTDB releases and sub-versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			dl := iodownload.New()
			rels, err := iogtdb.Releases(context.Background(), dl, cfg.Sources.GTDBURL)
			if err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), iogtdb.Format(rels))
			return nil
		},
	}
}

func getGTDBDownloadCmd() *cobra.Command {
	var version string
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download tree and metadata files of a GTDB sub-version",
		Long: `Downloads ar*/bac* trees and metadata of a GTDB sub-version and
unpacks them. Without --version the newest sub-version is used.

Examples:
  gnclade gtdb download
  gnclade gtdb download --version 220.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := gtdbDownload(context.Background(), version)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	downloadCmd.Flags().StringVarP(&version, "version", "v", "",
		"GTDB sub-version, e.g. 220.0 (default newest)")
	return downloadCmd
}

func gtdbDownload(ctx context.Context, version string) (iogtdb.Files, iogtdb.SubVersion, error) {
	dl := iodownload.New(iodownload.OptProgress(true))
	rels, err := iogtdb.Releases(ctx, dl, cfg.Sources.GTDBURL)
	if err != nil {
		return iogtdb.Files{}, iogtdb.SubVersion{}, err
	}
	sv, err := iogtdb.Find(rels, version)
	if err != nil {
		return iogtdb.Files{}, sv, err
	}
	remote, err := iogtdb.RemoteFiles(ctx, dl, sv)
	if err != nil {
		return iogtdb.Files{}, sv, err
	}

	dir := config.GTDBDir(cfg.HomeDir, sv.Version)
	if err = iofs.TouchDir(dir); err != nil {
		return iogtdb.Files{}, sv, err
	}
	files, err := iogtdb.Download(ctx, dl, remote, dir)
	if err != nil {
		return files, sv, err
	}
	gn.Info("GTDB <em>%s</em> is downloaded to <em>%s</em>", sv.Version, dir)
	return files, sv, nil
}

func getGTDBParseCmd() *cobra.Command {
	var version string
	parseCmd := &cobra.Command{
		Use:   "parse",
		Short: "Import downloaded GTDB files into the store",
		Long: `Builds a taxonomy from GTDB metadata lineages and reads the
archaeal and bacterial reference trees. Results are stored as datasets
gtdb, gtdb-tree-ar and gtdb-tree-bac.

Example:
  gnclade gtdb parse --version 220.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			dir := config.GTDBDir(cfg.HomeDir, version)
			files, err := iogtdb.LocalFiles(dir)
			if err == nil {
				err = gtdbImport(ctx, files, version, "file://"+dir)
			}
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	parseCmd.Flags().StringVarP(&version, "version", "v", "",
		"GTDB sub-version, e.g. 220.0")
	_ = parseCmd.MarkFlagRequired("version")
	return parseCmd
}

func getGTDBSyncCmd() *cobra.Command {
	var version string
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Download and import a GTDB sub-version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			files, sv, err := gtdbDownload(ctx, version)
			if err == nil {
				err = gtdbImport(ctx, files, sv.Version, sv.URL)
			}
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	syncCmd.Flags().StringVarP(&version, "version", "v", "",
		"GTDB sub-version, e.g. 220.0 (default newest)")
	return syncCmd
}

func gtdbImport(ctx context.Context, files iogtdb.Files, version, url string) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	err = iogtdb.Import(ctx, st, files, version, url, cfg.Newick.DefaultDistance)
	if err != nil {
		return err
	}
	gn.Info("Imported GTDB <em>%s</em>", version)
	return nil
}
