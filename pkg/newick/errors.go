package newick

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnclade/pkg/errcode"
)

// SyntaxError is returned when Newick input cannot be parsed. Offset is
// counted in characters from the start of the input.
func SyntaxError(offset int, reason string) error {
	msg := "Cannot parse Newick at character <em>%d</em>: %s"
	vars := []any{offset, reason}
	return &gn.Error{
		Code: errcode.NewickSyntaxError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("newick syntax error at %d: %s", offset, reason),
	}
}
