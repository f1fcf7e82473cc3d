package prune

import (
	"slices"

	"github.com/gnames/gnclade/pkg/taxon"
	"github.com/gnames/gnclade/pkg/tree"
)

// Subtree is the result of pruning. It refers to positions of the source
// index and is discarded after serialization.
type Subtree struct {
	idx       *tree.Index
	kept      map[int]struct{}
	selected  map[int]struct{}
	children  map[int][]int
	roots     []int
	unmatched []string
}

// mark walks from pos towards the root, marking every visited position,
// until it meets an already kept position or a root.
func (s *Subtree) mark(pos int) {
	for {
		if _, ok := s.kept[pos]; ok {
			return
		}
		s.kept[pos] = struct{}{}

		parent, ok := s.idx.ParentOf(pos)
		if !ok {
			s.roots = append(s.roots, pos)
			return
		}
		pos = parent
	}
}

// linkChildren builds children lists restricted to kept positions. Original
// children lists are in insertion order, which is ascending position order,
// so sorting restores it.
func (s *Subtree) linkChildren() {
	for pos := range s.kept {
		parent, ok := s.idx.ParentOf(pos)
		if !ok {
			continue
		}
		s.children[parent] = append(s.children[parent], pos)
	}
	for _, v := range s.children {
		slices.Sort(v)
	}
}

// trim drops the single-child chain above the lowest common ancestor.
func (s *Subtree) trim() {
	lca, ok := s.LCA()
	if !ok || lca == s.roots[0] {
		return
	}
	for pos := s.roots[0]; pos != lca; {
		next := s.children[pos][0]
		delete(s.kept, pos)
		delete(s.children, pos)
		pos = next
	}
	s.roots = []int{lca}
}

// Index returns the index the subtree was pruned from.
func (s *Subtree) Index() *tree.Index {
	return s.idx
}

// Roots returns positions of roots of the pruned tree. There is more than
// one root only when selected lineages end in different roots of a
// malformed taxonomy.
func (s *Subtree) Roots() []int {
	return s.roots
}

// IsForest returns true if the subtree has more than one root.
func (s *Subtree) IsForest() bool {
	return len(s.roots) > 1
}

// Children returns kept children of pos in original order.
func (s *Subtree) Children(pos int) []int {
	return s.children[pos]
}

// Contains returns true if pos is kept.
func (s *Subtree) Contains(pos int) bool {
	_, ok := s.kept[pos]
	return ok
}

// Selected returns true if pos was requested explicitly.
func (s *Subtree) Selected(pos int) bool {
	_, ok := s.selected[pos]
	return ok
}

// Len returns the number of kept positions.
func (s *Subtree) Len() int {
	return len(s.kept)
}

// Positions returns kept positions in ascending order.
func (s *Subtree) Positions() []int {
	res := make([]int, 0, len(s.kept))
	for pos := range s.kept {
		res = append(res, pos)
	}
	slices.Sort(res)
	return res
}

// Unmatched returns selection names that did not match any taxon.
func (s *Subtree) Unmatched() []string {
	return s.unmatched
}

// LCA returns the lowest common ancestor of the selected taxa. The second
// value is false for a forest.
func (s *Subtree) LCA() (int, bool) {
	if len(s.roots) != 1 {
		return 0, false
	}
	pos := s.roots[0]
	for {
		if s.Selected(pos) {
			return pos, true
		}
		ch := s.children[pos]
		if len(ch) != 1 {
			return pos, true
		}
		pos = ch[0]
	}
}

// Table materializes kept records into a new table in original insertion
// order. Roots of the subtree become self-parented, so the table can be
// indexed and pruned again.
func (s *Subtree) Table() (*taxon.Table, error) {
	tbl := s.idx.Table()
	roots := make(map[int]struct{}, len(s.roots))
	for _, r := range s.roots {
		roots[r] = struct{}{}
	}

	positions := s.Positions()
	recs := make([]taxon.Record, len(positions))
	for i, pos := range positions {
		recs[i] = tbl.Record(pos)
		if _, ok := roots[pos]; ok {
			recs[i].ParentID = recs[i].ID
		}
	}
	return taxon.New(recs, taxon.OptDefaultDistance(tbl.DefaultDistance()))
}
