package taxon

import (
	"math"
	"strconv"
	"strings"
)

// Load parses raw rows into a Table. The first malformed row aborts
// construction, no partial table is returned.
//
// Row order is preserved and becomes the insertion order of the table.
// It does not need to reflect the tree structure.
func Load(rows []Row, opts ...Option) (*Table, error) {
	res := newTable(len(rows), opts)
	for i, row := range rows {
		rec, err := res.parseRow(i, row)
		if err != nil {
			return nil, err
		}
		if err = res.add(i, rec); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// New creates a Table from already parsed records. It enforces the same
// invariants as Load: unique ids and valid distances.
func New(recs []Record, opts ...Option) (*Table, error) {
	res := newTable(len(recs), opts)
	for i, rec := range recs {
		if !validDistance(rec.Distance) {
			return nil, MalformedRowError(
				i, "distance", strconv.FormatFloat(rec.Distance, 'g', -1, 64),
				errNegativeDistance,
			)
		}
		if math.IsInf(rec.Support, 0) || math.IsNaN(rec.Support) {
			return nil, MalformedRowError(
				i, "support", strconv.FormatFloat(rec.Support, 'g', -1, 64),
				errNonFiniteSupport,
			)
		}
		if err := res.add(i, rec); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (t *Table) parseRow(idx int, row Row) (Record, error) {
	var res Record
	var err error

	id := strings.TrimSpace(row.ID)
	if id == "" {
		return res, MalformedRowError(idx, "id", row.ID, errEmptyField)
	}
	if res.ID, err = strconv.ParseUint(id, 10, 64); err != nil {
		return res, MalformedRowError(idx, "id", row.ID, err)
	}

	parentID := strings.TrimSpace(row.ParentID)
	if parentID == "" {
		return res, MalformedRowError(idx, "parent_id", row.ParentID, errEmptyField)
	}
	if res.ParentID, err = strconv.ParseUint(parentID, 10, 64); err != nil {
		return res, MalformedRowError(idx, "parent_id", row.ParentID, err)
	}

	res.Distance = t.defaultDistance
	if dist := strings.TrimSpace(row.Distance); dist != "" {
		if res.Distance, err = strconv.ParseFloat(dist, 64); err != nil {
			return res, MalformedRowError(idx, "distance", row.Distance, err)
		}
		if !validDistance(res.Distance) {
			return res, MalformedRowError(
				idx, "distance", row.Distance, errNegativeDistance,
			)
		}
	}

	res.Name = strings.TrimSpace(row.Name)
	res.Rank = strings.TrimSpace(row.Rank)
	res.ExtID = strings.TrimSpace(row.ExtID)
	return res, nil
}

func validDistance(d float64) bool {
	return d >= 0 && !math.IsInf(d, 0) && !math.IsNaN(d)
}
