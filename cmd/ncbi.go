package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnclade/internal/iodownload"
	"github.com/gnames/gnclade/internal/iofs"
	"github.com/gnames/gnclade/internal/ioncbi"
	"github.com/gnames/gnclade/pkg/config"
	"github.com/gnames/gnclade/pkg/taxon"
	"github.com/spf13/cobra"
)

func getNCBICmd() *cobra.Command {
	ncbiCmd := &cobra.Command{
		Use:   "ncbi",
		Short: "Manage NCBI taxonomy data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	ncbiCmd.AddCommand(getNCBIUpdateCmd(), getNCBISummaryCmd())
	return ncbiCmd
}

func getNCBIUpdateCmd() *cobra.Command {
	var force bool

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Download NCBI taxdump and import it",
		Long: `Checks ETag of the NCBI taxdump archive, downloads it when the
local copy is outdated, extracts names.dmp and nodes.dmp and imports
them into the store.

Examples:
  gnclade ncbi update
  gnclade ncbi update --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runNCBIUpdate(force)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	updateCmd.Flags().BoolVarP(&force, "force", "f", false,
		"import even if the stored dataset is up to date")
	return updateCmd
}

func runNCBIUpdate(force bool) error {
	ctx := context.Background()
	dir := config.NCBIDir(cfg.HomeDir)
	if err := iofs.TouchDir(dir); err != nil {
		return err
	}

	dl := iodownload.New(iodownload.OptProgress(true))
	url := cfg.Sources.NCBIURL
	etag, updated, err := ioncbi.Update(ctx, dl, url, dir)
	if err != nil {
		return err
	}
	if updated {
		gn.Info("Downloaded NCBI taxdump to <em>%s</em>", dir)
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if !updated && !force {
		all, err := st.Datasets(ctx)
		if err != nil {
			return err
		}
		for _, ds := range all {
			if ds.ID == ioncbi.DatasetID && ds.ETag == etag {
				gn.Info("NCBI taxonomy is up to date")
				return nil
			}
		}
	}

	tbl, err := ioncbi.Import(ctx, st, dir, url, etag,
		taxon.OptDefaultDistance(cfg.Newick.DefaultDistance))
	if err != nil {
		return err
	}
	gn.Info("Imported <em>%s</em> NCBI taxa", humanize.Comma(int64(tbl.Len())))
	return nil
}

func getNCBISummaryCmd() *cobra.Command {
	var rows int

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show size and first records of imported NCBI taxonomy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			tbl, err := loadTable(ctx, ioncbi.DatasetID, "")
			if err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), ioncbi.Summary(tbl, rows))
			return nil
		},
	}
	summaryCmd.Flags().IntVarP(&rows, "rows", "r", 5, "number of records to show")
	return summaryCmd
}

// loadTable reads a dataset from the store into a taxon table.
func loadTable(ctx context.Context, id, version string) (*taxon.Table, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	ds, recs, err := st.LoadDataset(ctx, id, version)
	if err != nil {
		return nil, err
	}
	gn.Info("Loaded <em>%s</em> version <em>%s</em> (%s taxa)",
		ds.ID, ds.Version, humanize.Comma(int64(len(recs))))
	return taxon.New(recs, taxon.OptDefaultDistance(cfg.Newick.DefaultDistance))
}
