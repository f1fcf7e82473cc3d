package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

func getDatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List imported datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			st, err := openStore(ctx)
			if err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			defer st.Close()

			all, err := st.Datasets(ctx)
			if err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			if len(all) == 0 {
				gn.Info("No datasets yet, run <em>gnclade ncbi update</em> " +
					"or <em>gnclade gtdb sync</em>")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATASET\tVERSION\tTAXA\tUPDATED")
			for _, ds := range all {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					ds.ID, ds.Version,
					humanize.Comma(int64(ds.RecordCount)),
					ds.UpdatedAt.Local().Format(time.DateTime),
				)
			}
			return w.Flush()
		},
	}
}
