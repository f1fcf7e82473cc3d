// Package tree builds a parent/children index on top of a taxon.Table.
//
// The index keeps only integer positions. Records stay in the table, so
// the index cannot create ownership cycles and a forest (several roots) is
// represented without special cases.
package tree

import (
	"github.com/gnames/gnclade/pkg/taxon"
)

const noParent = -1

// Index provides parent and children relations for every position of a
// taxon.Table. It is immutable after Build and safe for concurrent reads.
type Index struct {
	tbl      *taxon.Table
	parents  []int
	children [][]int
	roots    []int
}

// Build creates an Index from a table. A record whose parent does not
// exist in the table, and which is not its own parent, aborts the build
// with DanglingParentError. Parent links that form a loop without a root
// abort it with CycleError.
//
// Children are ordered by table insertion order, which makes
// serialization deterministic.
func Build(tbl *taxon.Table) (*Index, error) {
	l := tbl.Len()
	res := &Index{
		tbl:      tbl,
		parents:  make([]int, l),
		children: make([][]int, l),
	}

	for pos := range l {
		id, parentID := tbl.ID(pos), tbl.ParentID(pos)
		if id == parentID {
			res.parents[pos] = noParent
			res.roots = append(res.roots, pos)
			continue
		}

		parentPos, err := tbl.LookupByID(parentID)
		if err != nil {
			return nil, DanglingParentError(pos, id, parentID)
		}
		res.parents[pos] = parentPos
		res.children[parentPos] = append(res.children[parentPos], pos)
	}

	if err := res.checkCycles(); err != nil {
		return nil, err
	}
	return res, nil
}

const (
	unvisited = iota
	visiting
	visited
)

// checkCycles makes sure every lineage ends in a root. Each position is
// walked once, a walk stops at a position verified by an earlier walk.
func (idx *Index) checkCycles() error {
	state := make([]uint8, len(idx.parents))
	var path []int
	for pos := range idx.parents {
		path = path[:0]
		p := pos
		for state[p] != visited {
			if state[p] == visiting {
				lin := idx.Lineage(p)
				ids := make([]uint64, len(lin))
				for i, v := range lin {
					ids[i] = idx.tbl.ID(v)
				}
				return CycleError(ids)
			}
			state[p] = visiting
			path = append(path, p)
			parent, ok := idx.ParentOf(p)
			if !ok {
				break
			}
			p = parent
		}
		for _, v := range path {
			state[v] = visited
		}
	}
	return nil
}

// Table returns the table the index was built from.
func (idx *Index) Table() *taxon.Table {
	return idx.tbl
}

// Len returns the number of positions in the index.
func (idx *Index) Len() int {
	return len(idx.parents)
}

// ParentOf returns the position of the parent. The second value is false
// for roots.
func (idx *Index) ParentOf(pos int) (int, bool) {
	p := idx.parents[pos]
	if p == noParent {
		return 0, false
	}
	return p, true
}

// ChildrenOf returns positions of children in table insertion order.
// The returned slice must not be modified.
func (idx *Index) ChildrenOf(pos int) []int {
	return idx.children[pos]
}

// IsRoot returns true if the record at pos is its own parent.
func (idx *Index) IsRoot(pos int) bool {
	return idx.parents[pos] == noParent
}

// Roots returns positions of all roots in insertion order. Well-formed
// taxonomies have exactly one root.
func (idx *Index) Roots() []int {
	return idx.roots
}

// Lineage returns positions from pos up to its root, pos first. On a
// loop of parent links it stops before repeating a position.
func (idx *Index) Lineage(pos int) []int {
	res := []int{pos}
	seen := map[int]struct{}{pos: {}}
	for {
		p, ok := idx.ParentOf(pos)
		if !ok {
			return res
		}
		if _, ok = seen[p]; ok {
			return res
		}
		seen[p] = struct{}{}
		res = append(res, p)
		pos = p
	}
}
