package gnclade_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/config"
	"github.com/gnames/gnclade/pkg/errcode"
	"github.com/gnames/gnclade/pkg/gnclade"
	"github.com/gnames/gnclade/pkg/prune"
	"github.com/gnames/gnclade/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// root(1) -> A(2) -> C(4), root(1) -> B(3)
func ncbiTable(t *testing.T) *taxon.Table {
	t.Helper()
	tbl, err := taxon.New([]taxon.Record{
		{ID: 1, ParentID: 1, Name: "root", Distance: 1},
		{ID: 2, ParentID: 1, Name: "A", Distance: 1},
		{ID: 3, ParentID: 1, Name: "B", Distance: 1},
		{ID: 4, ParentID: 2, Name: "C", Distance: 0.5},
	})
	require.NoError(t, err)
	return tbl
}

func gtdbTable(t *testing.T) *taxon.Table {
	t.Helper()
	tbl, err := taxon.New([]taxon.Record{
		{ID: 1, ParentID: 1, Name: "root", Distance: 1},
		{ID: 2, ParentID: 1, Name: "d__Bacteria", Rank: "domain", Distance: 1},
		{ID: 3, ParentID: 2, Name: "s__Escherichia coli", Rank: "species", Distance: 1},
		{ID: 4, ParentID: 3, Name: "RS_GCF_000005845.2", Rank: "genome",
			Distance: 1, ExtID: "511145"},
		{ID: 5, ParentID: 1, Name: "d__Archaea", Rank: "domain", Distance: 1},
	})
	require.NoError(t, err)
	return tbl
}

func TestPrune(t *testing.T) {
	tests := []struct {
		msg    string
		update []config.Option
		opts   []gnclade.Option
		newick string
	}{
		{"defaults", nil, nil, "((C:0.5)A:1)root:1;"},
		{
			"ids without lengths",
			[]config.Option{
				config.OptNewickWithLengths(false), config.OptNewickWithID(true),
			},
			nil,
			"((C_4)A_2)root_1;",
		},
		{
			"canonical labeler",
			[]config.Option{config.OptNewickCanonical(true)},
			[]gnclade.Option{gnclade.OptLabeler(strings.ToUpper)},
			"((C:0.5)A:1)ROOT:1;",
		},
		{
			"labeler without canonical",
			nil,
			[]gnclade.Option{gnclade.OptLabeler(strings.ToUpper)},
			"((C:0.5)A:1)root:1;",
		},
		{
			"fixed precision",
			[]config.Option{config.OptNewickPrecision(2)},
			nil,
			"((C:0.50)A:1.00)root:1.00;",
		},
	}

	for _, v := range tests {
		cfg := config.New()
		cfg.Update(v.update)
		gc, err := gnclade.New(cfg, ncbiTable(t), v.opts...)
		require.NoError(t, err, v.msg)

		res, err := gc.Prune(prune.Selection{Names: []string{"C", "Z"}})
		require.NoError(t, err, v.msg)
		assert.Equal(t, v.newick, res.Newick, v.msg)
		assert.Equal(t, 4, res.OriginalLen, v.msg)
		assert.Equal(t, 3, res.PrunedLen, v.msg)
		assert.Equal(t, 1, res.Roots, v.msg)
		assert.Equal(t, []string{"Z"}, res.Unmatched, v.msg)
	}
}

func TestNewick(t *testing.T) {
	gc, err := gnclade.New(config.New(), ncbiTable(t))
	require.NoError(t, err)
	assert.Equal(t, "((C:0.5)A:1,B:1)root:1;", gc.Newick())
	assert.Equal(t, 4, gc.Index().Len())
}

func TestTrimToLCA(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{config.OptPruneTrimToLCA(true)})
	gc, err := gnclade.New(cfg, ncbiTable(t))
	require.NoError(t, err)

	res, err := gc.Prune(prune.Selection{IDs: []uint64{4}})
	require.NoError(t, err)
	assert.Equal(t, "C:0.5;", res.Newick)
}

func TestParentCycle(t *testing.T) {
	tbl, err := taxon.New([]taxon.Record{
		{ID: 1, ParentID: 1, Name: "root"},
		{ID: 2, ParentID: 3, Name: "A"},
		{ID: 3, ParentID: 2, Name: "B"},
	})
	require.NoError(t, err)
	gc, err := gnclade.New(config.New(), tbl)
	assert.Nil(t, gc)
	gnErr := assertCode(t, err, errcode.TreeCycleError)
	assert.Equal(t, []any{"2 -> 3"}, gnErr.Vars)
}

func TestRejectForest(t *testing.T) {
	tbl, err := taxon.New([]taxon.Record{
		{ID: 1, ParentID: 1, Name: "r1"},
		{ID: 2, ParentID: 2, Name: "r2"},
	})
	require.NoError(t, err)

	cfg := config.New()
	gc, err := gnclade.New(cfg, tbl)
	require.NoError(t, err)
	res, err := gc.Prune(prune.Selection{IDs: []uint64{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Roots)

	cfg.Update([]config.Option{config.OptPruneRejectForest(true)})
	gc, err = gnclade.New(cfg, tbl)
	require.NoError(t, err)
	_, err = gc.Prune(prune.Selection{IDs: []uint64{1, 2}})
	assertCode(t, err, errcode.PruneForestRejectedError)
}

func TestPruneAll(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{config.OptJobsNumber(2)})
	gc, err := gnclade.New(cfg, ncbiTable(t))
	require.NoError(t, err)
	ctx := context.Background()

	sels := []prune.Selection{
		{IDs: []uint64{4}},
		{Names: []string{"B"}},
		{IDs: []uint64{2, 3}},
	}
	res, err := gc.PruneAll(ctx, sels)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "((C:0.5)A:1)root:1;", res[0].Newick)
	assert.Equal(t, "(B:1)root:1;", res[1].Newick)
	assert.Equal(t, "(A:1,B:1)root:1;", res[2].Newick)

	sels = append(sels, prune.Selection{IDs: []uint64{99}})
	_, err = gc.PruneAll(ctx, sels)
	assertCode(t, err, errcode.PruneUnknownTaxonError)
}

func TestResolveTokensNCBI(t *testing.T) {
	gc, err := gnclade.New(config.New(), ncbiTable(t))
	require.NoError(t, err)

	sel, err := gc.ResolveTokens([]string{"4", "B", "Homo sapiens"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{4}, sel.IDs)
	assert.Equal(t, []string{"B", "Homo sapiens"}, sel.Names)
}

func TestResolveTokensGTDB(t *testing.T) {
	gc, err := gnclade.New(config.New(), gtdbTable(t),
		gnclade.OptTokenMode(gnclade.TokensGTDB))
	require.NoError(t, err)

	tests := []struct {
		msg    string
		tokens []string
		ids    []uint64
		names  []string
	}{
		{"prefixed name", []string{"s__Escherichia coli"}, nil,
			[]string{"s__Escherichia coli"}},
		{"ncbi taxid", []string{"511145"}, []uint64{4}, nil},
		{"accession", []string{"GCF_000005845.2"}, []uint64{4}, nil},
		{"prefixed accession", []string{"GB_GCA_000005845.2"}, []uint64{4}, nil},
		{"mixed", []string{"d__Archaea", "511145"}, []uint64{4},
			[]string{"d__Archaea"}},
	}
	for _, v := range tests {
		sel, err := gc.ResolveTokens(v.tokens)
		require.NoError(t, err, v.msg)
		assert.Equal(t, v.ids, sel.IDs, v.msg)
		assert.Equal(t, v.names, sel.Names, v.msg)
	}

	_, err = gc.ResolveTokens([]string{"s__Nope", "511145", "42", "foo"})
	gnErr := assertCode(t, err, errcode.PruneUnresolvedTokensError)
	assert.Contains(t, gnErr.Err.Error(), "s__Nope, 42, foo")

	sel, err := gc.ResolveTokens([]string{"GCF_000005845.2"})
	require.NoError(t, err)
	res, err := gc.Prune(sel)
	require.NoError(t, err)
	assert.Equal(t,
		"((('RS_GCF_000005845.2':1)'s__Escherichia coli':1)'d__Bacteria':1)root:1;",
		res.Newick)
}

func assertCode(t *testing.T, err error, code gn.ErrorCode) *gn.Error {
	t.Helper()
	require.Error(t, err)
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, code, gnErr.Code)
	return gnErr
}
