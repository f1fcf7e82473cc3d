package prune

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/errcode"
)

// EmptySelectionError is returned when no taxa are selected after names
// are resolved. Unmatched names are listed in the message.
func EmptySelectionError(unmatched []string) error {
	msg := "Selection is empty"
	var vars []any
	err := errors.New("empty selection")
	if len(unmatched) > 0 {
		names := strings.Join(unmatched, ", ")
		msg = "Selection is empty, no taxa found for names: <em>%s</em>"
		vars = []any{names}
		err = fmt.Errorf("empty selection, unmatched names: %s", names)
	}
	return &gn.Error{
		Code: errcode.PruneEmptySelectionError,
		Msg:  msg,
		Vars: vars,
		Err:  err,
	}
}

// UnknownTaxonError is returned when a selected id is not in the table.
func UnknownTaxonError(id uint64) error {
	msg := "Selected taxon ID <em>%d</em> does not exist"
	vars := []any{id}
	return &gn.Error{
		Code: errcode.PruneUnknownTaxonError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unknown taxon id %d", id),
	}
}

// ForestRejectedError is returned when forests are not allowed and the
// selection spans several roots.
func ForestRejectedError(rootIDs []uint64) error {
	msg := `Selection spans <em>%d</em> disconnected roots: %v

The taxonomy has more than one root. Set <em>prune.reject_forest</em>
to false to output one Newick tree per root.`
	vars := []any{len(rootIDs), rootIDs}
	return &gn.Error{
		Code: errcode.PruneForestRejectedError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("selection spans %d roots %v", len(rootIDs), rootIDs),
	}
}
