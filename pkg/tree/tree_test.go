package tree_test

import (
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/errcode"
	"github.com/gnames/gnclade/pkg/taxon"
	"github.com/gnames/gnclade/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, recs []taxon.Record) *tree.Index {
	t.Helper()
	tbl, err := taxon.New(recs)
	require.NoError(t, err)
	idx, err := tree.Build(tbl)
	require.NoError(t, err)
	return idx
}

func TestBuild(t *testing.T) {
	assert := assert.New(t)
	// rows deliberately out of tree order
	idx := build(t, []taxon.Record{
		{ID: 4, ParentID: 2, Name: "C"},
		{ID: 2, ParentID: 1, Name: "A"},
		{ID: 1, ParentID: 1, Name: "root"},
		{ID: 3, ParentID: 1, Name: "B"},
		{ID: 5, ParentID: 2, Name: "D"},
	})

	assert.Equal(5, idx.Len())
	assert.Equal([]int{2}, idx.Roots())
	assert.True(idx.IsRoot(2))
	_, ok := idx.ParentOf(2)
	assert.False(ok)

	p, ok := idx.ParentOf(0)
	assert.True(ok)
	assert.Equal(1, p)

	assert.Equal([]int{1, 3}, idx.ChildrenOf(2))
	assert.Equal([]int{0, 4}, idx.ChildrenOf(1))
	assert.Empty(idx.ChildrenOf(0))
	assert.Equal([]int{0, 1, 2}, idx.Lineage(0))
}

// Every non-root position has exactly one parent and appears exactly once
// in the children list of that parent.
func TestParentChildConsistency(t *testing.T) {
	var recs []taxon.Record
	recs = append(recs, taxon.Record{ID: 1, ParentID: 1})
	for i := uint64(2); i <= 200; i++ {
		recs = append(recs, taxon.Record{ID: i, ParentID: i / 2})
	}
	idx := build(t, recs)

	for pos := range idx.Len() {
		p, ok := idx.ParentOf(pos)
		if !ok {
			assert.True(t, idx.IsRoot(pos))
			continue
		}
		var count int
		for _, c := range idx.ChildrenOf(p) {
			if c == pos {
				count++
			}
		}
		assert.Equal(t, 1, count, "position %d", pos)
	}

	var childCount int
	for pos := range idx.Len() {
		childCount += len(idx.ChildrenOf(pos))
	}
	assert.Equal(t, idx.Len()-len(idx.Roots()), childCount)
}

func TestBuildForest(t *testing.T) {
	idx := build(t, []taxon.Record{
		{ID: 1, ParentID: 1, Name: "root1"},
		{ID: 2, ParentID: 1, Name: "A"},
		{ID: 10, ParentID: 10, Name: "root2"},
		{ID: 11, ParentID: 10, Name: "B"},
	})
	assert.Equal(t, []int{0, 2}, idx.Roots())
	assert.Equal(t, []int{3}, idx.ChildrenOf(2))
}

func TestBuildDanglingParent(t *testing.T) {
	tbl, err := taxon.New([]taxon.Record{
		{ID: 1, ParentID: 1, Name: "root"},
		{ID: 2, ParentID: 1, Name: "A"},
		{ID: 3, ParentID: 77, Name: "orphan"},
	})
	require.NoError(t, err)

	idx, err := tree.Build(tbl)
	require.Error(t, err)
	assert.Nil(t, idx)

	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.TreeDanglingParentError, gnErr.Code)
	assert.Equal(t, []any{uint64(3), 2, uint64(77)}, gnErr.Vars)
	assert.Contains(t, gnErr.Err.Error(), "dangling parent 77")
}

func TestCycle(t *testing.T) {
	tests := []struct {
		msg   string
		recs  []taxon.Record
		cycle string
	}{
		{
			"no root at all",
			[]taxon.Record{{ID: 1, ParentID: 2}, {ID: 2, ParentID: 1}},
			"parent cycle 1 -> 2",
		},
		{
			"loop next to a valid root",
			[]taxon.Record{
				{ID: 1, ParentID: 1, Name: "root"},
				{ID: 2, ParentID: 3},
				{ID: 3, ParentID: 2},
			},
			"parent cycle 2 -> 3",
		},
		{
			"lineage leading into a loop",
			[]taxon.Record{
				{ID: 1, ParentID: 1, Name: "root"},
				{ID: 5, ParentID: 6},
				{ID: 6, ParentID: 7},
				{ID: 7, ParentID: 8},
				{ID: 8, ParentID: 6},
			},
			"parent cycle 6 -> 7 -> 8",
		},
	}

	for _, v := range tests {
		tbl, err := taxon.New(v.recs)
		require.NoError(t, err, v.msg)
		idx, err := tree.Build(tbl)
		require.Error(t, err, v.msg)
		assert.Nil(t, idx, v.msg)

		var gnErr *gn.Error
		require.True(t, errors.As(err, &gnErr), v.msg)
		assert.Equal(t, errcode.TreeCycleError, gnErr.Code, v.msg)
		assert.Equal(t, v.cycle, gnErr.Err.Error(), v.msg)
	}
}
