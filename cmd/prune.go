package cmd

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnclade/internal/iofs"
	"github.com/gnames/gnclade/internal/iogtdb"
	"github.com/gnames/gnclade/internal/ioncbi"
	"github.com/gnames/gnclade/pkg/gnclade"
	"github.com/gnames/gnclade/pkg/parserpool"
	"github.com/gnames/gnclade/pkg/prune"
	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/spf13/cobra"
)

type pruneFlags struct {
	source  string
	version string
	taxids  []string
	names   []string
	inputs  []string
	output  string
	out     outputFlags
}

func getPruneCmd() *cobra.Command {
	var f pruneFlags

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Extract the subtree of selected taxa as Newick",
		Long: `Finds the minimal subtree that connects selected taxa with the root
of the taxonomy and writes it in Newick format.

Sources:
  ncbi            NCBI taxonomy; tokens are taxon IDs or scientific names
  gtdb            GTDB taxonomy built from metadata
  gtdb-tree-ar    GTDB archaeal reference tree
  gtdb-tree-bac   GTDB bacterial reference tree

GTDB tokens are prefixed taxa (s__..., g__...), NCBI taxon IDs of
genomes or genome accessions (GCF_000005845.2, RS_GCF_000005845.2).

Input files contain tokens separated by commas or new lines.

Examples:
  gnclade prune --taxids 9606,10090,10116
  gnclade prune --names "Homo sapiens,Mus musculus" --with-id -o out.nwk
  gnclade prune -s gtdb -i genomes.txt --canonical
  gnclade prune -s gtdb-tree-bac --version 220.0 -n "g__Escherichia"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runPrune(cmd, f)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	fs := pruneCmd.Flags()
	fs.StringVarP(&f.source, "source", "s", ioncbi.DatasetID,
		"dataset: ncbi, gtdb, gtdb-tree-ar, gtdb-tree-bac")
	fs.StringVar(&f.version, "version", "",
		"dataset version (default most recent)")
	fs.StringSliceVarP(&f.taxids, "taxids", "t", nil,
		"comma separated taxon IDs")
	fs.StringSliceVarP(&f.names, "names", "n", nil,
		"comma separated taxon names")
	fs.StringSliceVarP(&f.inputs, "input", "i", nil,
		"files with tokens, can be repeated")
	fs.StringVarP(&f.output, "output", "o", "-",
		"output file, '-' for STDOUT")
	addOutputFlags(pruneCmd, &f.out)
	return pruneCmd
}

func runPrune(cmd *cobra.Command, f pruneFlags) error {
	ctx := context.Background()
	sources := append([]string{ioncbi.DatasetID}, iogtdb.Datasets...)
	if !slices.Contains(sources, f.source) {
		return fmt.Errorf("unknown source '%s', use one of: %s",
			f.source, strings.Join(sources, ", "))
	}

	cfg.Update(f.out.options(cmd))

	fileTokens, err := iofs.ReadTokens(f.inputs...)
	if err != nil {
		return err
	}

	tbl, err := loadTable(ctx, f.source, f.version)
	if err != nil {
		return err
	}

	mode, code := gnclade.TokensNCBI, nomcode.Zoological
	if f.source != ioncbi.DatasetID {
		mode, code = gnclade.TokensGTDB, nomcode.Bacterial
	}
	opts := []gnclade.Option{gnclade.OptTokenMode(mode)}
	if cfg.Newick.Canonical {
		pool := parserpool.NewPool(cfg.JobsNumber)
		defer pool.Close()
		opts = append(opts, gnclade.OptLabeler(pool.Labeler(code)))
	}

	gc, err := gnclade.New(cfg, tbl, opts...)
	if err != nil {
		return err
	}

	sel, err := selection(gc, mode, f, fileTokens)
	if err != nil {
		return err
	}

	res, err := gc.Prune(sel)
	if err != nil {
		return err
	}
	if len(res.Unmatched) > 0 {
		gn.Warn("Names not found: <warn>%s</warn>", strings.Join(res.Unmatched, ", "))
	}
	if err = iofs.WriteOutput(f.output, res.Newick); err != nil {
		return err
	}
	gn.Info("Original tree: <em>%s</em> taxa, pruned tree: <em>%s</em> taxa",
		humanize.Comma(int64(res.OriginalLen)), humanize.Comma(int64(res.PrunedLen)))
	return nil
}

// selection combines flags and input files. In GTDB mode every token is
// resolved against the dataset, in NCBI mode --taxids must be numbers.
func selection(
	gc *gnclade.GNclade,
	mode gnclade.TokenMode,
	f pruneFlags,
	fileTokens []string,
) (prune.Selection, error) {
	if mode == gnclade.TokensGTDB {
		tokens := slices.Concat(f.taxids, f.names, fileTokens)
		return gc.ResolveTokens(trim(tokens))
	}

	sel, err := gc.ResolveTokens(fileTokens)
	if err != nil {
		return sel, err
	}
	for _, v := range trim(f.taxids) {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return sel, fmt.Errorf("taxon ID '%s' is not a number", v)
		}
		sel.IDs = append(sel.IDs, id)
	}
	sel.Names = append(sel.Names, trim(f.names)...)
	return sel, nil
}

func trim(ss []string) []string {
	var res []string
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			res = append(res, s)
		}
	}
	return res
}
