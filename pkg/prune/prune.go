// Package prune extracts the minimal subtree that connects a selection of
// taxa with the root (or roots) of a taxonomy.
//
// Pruning allocates only request-local state. The shared tree.Index and
// taxon.Table are never modified, so many prunings can run concurrently
// against the same index.
package prune

import (
	"slices"

	"github.com/gnames/gnclade/pkg/tree"
)

// Selection describes taxa to keep. IDs and Names are combined. Every
// taxon that matches a name is selected, ambiguous names are expanded.
type Selection struct {
	IDs   []uint64
	Names []string
}

// IsEmpty returns true if the selection has neither ids nor names.
func (s Selection) IsEmpty() bool {
	return len(s.IDs) == 0 && len(s.Names) == 0
}

// Option changes pruning behavior.
type Option func(*pruner)

// OptRejectForest makes Prune fail with ForestRejectedError when selected
// lineages end in more than one root.
func OptRejectForest(b bool) Option {
	return func(p *pruner) {
		p.rejectForest = b
	}
}

// OptTrimToLCA removes the part of the lineage above the lowest common
// ancestor of the selection. It has no effect on forests.
func OptTrimToLCA(b bool) Option {
	return func(p *pruner) {
		p.trimToLCA = b
	}
}

type pruner struct {
	rejectForest bool
	trimToLCA    bool
}

// Prune computes the union of root-to-taxon paths for every selected
// taxon.
//
// It returns EmptySelectionError if nothing is selected after name
// resolution, and UnknownTaxonError if an id is absent from the table.
// Both are detected before any walk starts.
func Prune(idx *tree.Index, sel Selection, opts ...Option) (*Subtree, error) {
	var p pruner
	for _, opt := range opts {
		opt(&p)
	}

	positions, unmatched, err := resolve(idx, sel)
	if err != nil {
		return nil, err
	}

	res := &Subtree{
		idx:       idx,
		kept:      make(map[int]struct{}),
		selected:  make(map[int]struct{}, len(positions)),
		children:  make(map[int][]int),
		unmatched: unmatched,
	}

	for _, pos := range positions {
		res.selected[pos] = struct{}{}
		res.mark(pos)
	}
	slices.Sort(res.roots)

	if p.rejectForest && len(res.roots) > 1 {
		ids := make([]uint64, len(res.roots))
		for i, r := range res.roots {
			ids[i] = idx.Table().ID(r)
		}
		return nil, ForestRejectedError(ids)
	}

	res.linkChildren()

	if p.trimToLCA {
		res.trim()
	}

	return res, nil
}

// resolve converts a selection to table positions. Ids are checked first,
// unknown id is an error. Names that match nothing are returned separately.
func resolve(idx *tree.Index, sel Selection) ([]int, []string, error) {
	tbl := idx.Table()
	var res []int
	var unmatched []string

	for _, id := range sel.IDs {
		pos, err := tbl.LookupByID(id)
		if err != nil {
			return nil, nil, UnknownTaxonError(id)
		}
		res = append(res, pos)
	}

	for _, name := range sel.Names {
		found := tbl.LookupByName(name)
		if len(found) == 0 {
			unmatched = append(unmatched, name)
			continue
		}
		res = append(res, found...)
	}

	if len(res) == 0 {
		return nil, nil, EmptySelectionError(unmatched)
	}
	return res, unmatched, nil
}
