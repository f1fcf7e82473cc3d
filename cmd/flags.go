package cmd

import (
	"github.com/gnames/gnclade/pkg/config"
	"github.com/spf13/cobra"
)

// outputFlags keep Newick and pruning settings given on command line.
type outputFlags struct {
	precision    int
	withLengths  bool
	withSupport  bool
	withID       bool
	underscores  bool
	canonical    bool
	rejectForest bool
	trimToLCA    bool
}

func addOutputFlags(cmd *cobra.Command, f *outputFlags) {
	fs := cmd.Flags()
	fs.IntVarP(&f.precision, "precision", "p", -1,
		"decimal digits of branch lengths (-1 = shortest exact form)")
	fs.BoolVar(&f.withLengths, "lengths", true, "write branch lengths")
	fs.BoolVar(&f.withSupport, "support", false,
		"write branch support values as [x.xx] (GTDB trees)")
	fs.BoolVar(&f.withID, "with-id", false, "append taxon ID to labels (name_id)")
	fs.BoolVarP(&f.underscores, "underscores", "u", false,
		"replace spaces in labels with underscores")
	fs.BoolVarP(&f.canonical, "canonical", "c", false,
		"use canonical forms of scientific names as labels")
	fs.BoolVar(&f.rejectForest, "reject-forest", false,
		"fail if selected taxa belong to different roots")
	fs.BoolVar(&f.trimToLCA, "trim", false,
		"start the tree at the lowest common ancestor of selected taxa")
}

// options converts only explicitly set flags, so config.yaml and
// environment values are kept otherwise.
func (f *outputFlags) options(cmd *cobra.Command) []config.Option {
	var res []config.Option
	changed := cmd.Flags().Changed
	if changed("precision") {
		res = append(res, config.OptNewickPrecision(f.precision))
	}
	if changed("lengths") {
		res = append(res, config.OptNewickWithLengths(f.withLengths))
	}
	if changed("support") {
		res = append(res, config.OptNewickWithSupport(f.withSupport))
	}
	if changed("with-id") {
		res = append(res, config.OptNewickWithID(f.withID))
	}
	if changed("underscores") {
		res = append(res, config.OptNewickUnderscores(f.underscores))
	}
	if changed("canonical") {
		res = append(res, config.OptNewickCanonical(f.canonical))
	}
	if changed("reject-forest") {
		res = append(res, config.OptPruneRejectForest(f.rejectForest))
	}
	if changed("trim") {
		res = append(res, config.OptPruneTrimToLCA(f.trimToLCA))
	}
	return res
}
