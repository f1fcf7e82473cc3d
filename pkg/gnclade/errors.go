package gnclade

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/errcode"
)

// UnresolvedTokensError is returned when input tokens do not match any
// taxon. All such tokens are listed.
func UnresolvedTokensError(tokens []string) error {
	list := strings.Join(tokens, ", ")
	msg := "Not found in the dataset: <em>%s</em>"
	vars := []any{list}
	return &gn.Error{
		Code: errcode.PruneUnresolvedTokensError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unresolved tokens: %s", list),
	}
}
