package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/errcode"
)

// DanglingParentError is returned when a parent id of a non-root record
// does not exist in the table.
func DanglingParentError(pos int, id, parentID uint64) error {
	msg := "Taxon <em>%d</em> (row %d) refers to missing parent <em>%d</em>"
	vars := []any{id, pos, parentID}
	return &gn.Error{
		Code: errcode.TreeDanglingParentError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("row %d: id %d has dangling parent %d",
			pos, id, parentID),
	}
}

// CycleError is returned when parent links of several taxa form a loop
// that never reaches a root.
func CycleError(ids []uint64) error {
	strs := make([]string, len(ids))
	for i, v := range ids {
		strs[i] = strconv.FormatUint(v, 10)
	}
	cycle := strings.Join(strs, " -> ")
	msg := "Taxa form a parent cycle: <em>%s</em>"
	vars := []any{cycle}
	return &gn.Error{
		Code: errcode.TreeCycleError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("parent cycle %s", cycle),
	}
}
