// Package taxon provides the Taxon Table, a columnar in-memory store of
// taxonomic records with constant time lookup by identifier and by name.
//
// This is a pure package: it does no I/O and never logs. Source parsers
// (NCBI taxdump, GTDB metadata, Newick trees) produce rows, the table turns
// them into validated records. All relations between records are expressed
// by integer positions in the table.
package taxon

// Row is a raw taxonomic record as it comes from a source file, before
// numeric fields are parsed.
type Row struct {
	// ID is the decimal unsigned identifier of the taxon.
	ID string
	// ParentID is the decimal identifier of the parent, equal to ID for
	// a root.
	ParentID string
	// Name is the display name of the taxon.
	Name string
	// Rank is the taxonomic rank, it can be empty.
	Rank string
	// Distance is the branch length to the parent. Empty value means the
	// source provides no distance metric.
	Distance string
	// ExtID is an optional identifier from another namespace.
	ExtID string
}

// Record is a parsed taxonomic record.
type Record struct {
	// ID is a unique identifier of the taxon.
	ID uint64
	// ParentID is the identifier of the parent taxon. For a root
	// ParentID equals ID.
	ParentID uint64
	// Name is a display name. Names are not unique.
	Name string
	// Rank of the taxon, e.g. "species", "genus". Can be empty.
	Rank string
	// Distance is a non-negative branch length to the parent.
	Distance float64
	// ExtID keeps an external identifier, for example an NCBI taxon ID of
	// a GTDB genome. It does not take part in tree building.
	ExtID string
	// Support is a branch support value (bootstrap) of the node, zero if
	// the source has none.
	Support float64
}

// Table is a columnar collection of taxonomic records. A Table is
// immutable after construction and is safe for concurrent reads.
type Table struct {
	ids       []uint64
	parentIDs []uint64
	names     []string
	ranks     []string
	distances []float64
	extIDs    []string
	supports  []float64

	idx     map[uint64]int
	nameIdx map[string][]int

	defaultDistance float64
}

// Option configures table construction.
type Option func(*Table)

// OptDefaultDistance sets the branch length used for rows that do not
// provide one. Negative values are ignored.
func OptDefaultDistance(d float64) Option {
	return func(t *Table) {
		if d >= 0 {
			t.defaultDistance = d
		}
	}
}

// DefaultDistance is the branch length used when the data source has no
// distance metric and no other value was configured.
const DefaultDistance = 1.0

func newTable(size int, opts []Option) *Table {
	res := &Table{
		ids:             make([]uint64, 0, size),
		parentIDs:       make([]uint64, 0, size),
		names:           make([]string, 0, size),
		ranks:           make([]string, 0, size),
		distances:       make([]float64, 0, size),
		extIDs:          make([]string, 0, size),
		supports:        make([]float64, 0, size),
		idx:             make(map[uint64]int, size),
		nameIdx:         make(map[string][]int),
		defaultDistance: DefaultDistance,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Len returns the number of records in the table.
func (t *Table) Len() int {
	return len(t.ids)
}

// LookupByID returns the position of a record with the given id.
func (t *Table) LookupByID(id uint64) (int, error) {
	pos, ok := t.idx[id]
	if !ok {
		return 0, NotFoundError(id)
	}
	return pos, nil
}

// LookupByName returns positions of all records with the given name in
// insertion order. Display names are not unique, so the result might
// contain zero, one or many positions. The returned slice must not be
// modified.
func (t *Table) LookupByName(name string) []int {
	return t.nameIdx[name]
}

// Record returns a copy of the record at the given position.
func (t *Table) Record(pos int) Record {
	return Record{
		ID:       t.ids[pos],
		ParentID: t.parentIDs[pos],
		Name:     t.names[pos],
		Rank:     t.ranks[pos],
		Distance: t.distances[pos],
		ExtID:    t.extIDs[pos],
		Support:  t.supports[pos],
	}
}

// Records returns copies of all records in insertion order.
func (t *Table) Records() []Record {
	res := make([]Record, t.Len())
	for i := range res {
		res[i] = t.Record(i)
	}
	return res
}

// ID returns the taxon ID at pos.
func (t *Table) ID(pos int) uint64 { return t.ids[pos] }

// ParentID returns the parent ID at pos.
func (t *Table) ParentID(pos int) uint64 { return t.parentIDs[pos] }

// Name returns the display name at pos.
func (t *Table) Name(pos int) string { return t.names[pos] }

// Rank returns the rank at pos, it might be empty.
func (t *Table) Rank(pos int) string { return t.ranks[pos] }

// Distance returns the branch length to the parent at pos.
func (t *Table) Distance(pos int) float64 { return t.distances[pos] }

// ExtID returns the external identifier at pos.
func (t *Table) ExtID(pos int) string { return t.extIDs[pos] }

// Support returns the branch support value at pos, zero when unknown.
func (t *Table) Support(pos int) float64 { return t.supports[pos] }

// DefaultDistance returns the branch length given to rows without one.
func (t *Table) DefaultDistance() float64 { return t.defaultDistance }

func (t *Table) add(rowIdx int, r Record) error {
	if prev, ok := t.idx[r.ID]; ok {
		return DuplicateIDError(r.ID, prev, rowIdx)
	}
	pos := len(t.ids)
	t.ids = append(t.ids, r.ID)
	t.parentIDs = append(t.parentIDs, r.ParentID)
	t.names = append(t.names, r.Name)
	t.ranks = append(t.ranks, r.Rank)
	t.distances = append(t.distances, r.Distance)
	t.extIDs = append(t.extIDs, r.ExtID)
	t.supports = append(t.supports, r.Support)
	t.idx[r.ID] = pos
	t.nameIdx[r.Name] = append(t.nameIdx[r.Name], pos)
	return nil
}
