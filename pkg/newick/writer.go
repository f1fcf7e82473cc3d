package newick

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/gnames/gnclade/pkg/tree"
)

// Tree is a rooted structure of positions of a tree.Index. It is
// implemented by prune.Subtree and by Whole.
type Tree interface {
	Index() *tree.Index
	Roots() []int
	Children(pos int) []int
}

type whole struct {
	idx *tree.Index
}

// Whole wraps a complete index so it can be serialized without pruning.
func Whole(idx *tree.Index) Tree {
	return whole{idx: idx}
}

func (w whole) Index() *tree.Index     { return w.idx }
func (w whole) Roots() []int           { return w.idx.Roots() }
func (w whole) Children(pos int) []int { return w.idx.ChildrenOf(pos) }

// Writer serializes trees to Newick strings. A Writer has no mutable state
// and can be shared between goroutines.
type Writer struct {
	precision   int
	withLengths bool
	withID      bool
	underscores bool
	withSupport bool
	labeler     func(string) string
}

// Option configures a Writer.
type Option func(*Writer)

// OptPrecision sets a fixed number of decimal digits for distances.
// A negative value selects the shortest round-trip representation.
func OptPrecision(i int) Option {
	return func(w *Writer) {
		w.precision = i
	}
}

// OptWithLengths toggles output of branch lengths.
func OptWithLengths(b bool) Option {
	return func(w *Writer) {
		w.withLengths = b
	}
}

// OptWithID appends the taxon ID to labels as name_id.
func OptWithID(b bool) Option {
	return func(w *Writer) {
		w.withID = b
	}
}

// OptUnderscores replaces whitespace in labels with underscores, the
// traditional unquoted Newick convention.
func OptUnderscores(b bool) Option {
	return func(w *Writer) {
		w.underscores = b
	}
}

// OptWithSupport adds branch support values as '[x.xx]' comments after
// branch lengths. Nodes with zero support get no comment.
func OptWithSupport(b bool) Option {
	return func(w *Writer) {
		w.withSupport = b
	}
}

// OptLabeler sets a function that converts a taxon name to a label, for
// example to a canonical form of a scientific name.
func OptLabeler(fn func(string) string) Option {
	return func(w *Writer) {
		w.labeler = fn
	}
}

// NewWriter creates a Writer. By default it writes branch lengths with
// the shortest round-trip precision and names as labels.
func NewWriter(opts ...Option) *Writer {
	res := &Writer{
		precision:   -1,
		withLengths: true,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Serialize renders every root of t as a separate Newick statement.
// Statements are separated by new lines.
func (w *Writer) Serialize(t Tree) string {
	var sb strings.Builder
	for i, root := range t.Roots() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		w.writeNode(&sb, t, root)
		sb.WriteByte(';')
	}
	return sb.String()
}

func (w *Writer) writeNode(sb *strings.Builder, t Tree, pos int) {
	children := t.Children(pos)
	if len(children) > 0 {
		sb.WriteByte('(')
		for i, ch := range children {
			if i > 0 {
				sb.WriteByte(',')
			}
			w.writeNode(sb, t, ch)
		}
		sb.WriteByte(')')
	}

	tbl := t.Index().Table()
	sb.WriteString(w.Label(tbl.Name(pos), tbl.ID(pos)))
	if w.withLengths {
		sb.WriteByte(':')
		sb.WriteString(w.Distance(tbl.Distance(pos)))
	}
	if w.withSupport {
		if sup := tbl.Support(pos); sup != 0 {
			sb.WriteByte('[')
			sb.WriteString(strconv.FormatFloat(sup, 'f', 2, 64))
			sb.WriteByte(']')
		}
	}
}

// Distance formats a branch length according to the precision policy.
func (w *Writer) Distance(d float64) string {
	return strconv.FormatFloat(d, 'f', w.precision, 64)
}

// Label converts a taxon name and id to a Newick label, quoting it when
// necessary.
func (w *Writer) Label(name string, id uint64) string {
	if w.labeler != nil {
		name = w.labeler(name)
	}
	// an unquoted '_' is read back as a blank
	keepUnderscores := !w.underscores && strings.ContainsRune(name, '_')
	if w.withID {
		idStr := strconv.FormatUint(id, 10)
		if name == "" {
			name = idStr
		} else {
			name = name + "_" + idStr
		}
	}
	if w.underscores {
		name = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return '_'
			}
			return r
		}, name)
	}
	if keepUnderscores {
		return quote(name)
	}
	return Quote(name)
}

// Quote wraps a label in single quotes if it contains whitespace or
// characters reserved by Newick.
func Quote(label string) string {
	if !needsQuotes(label) {
		return label
	}
	return quote(label)
}

func quote(label string) string {
	return "'" + strings.ReplaceAll(label, "'", "''") + "'"
}

func needsQuotes(label string) bool {
	for _, r := range label {
		if isReserved(r) || unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

func isReserved(r rune) bool {
	switch r {
	case '(', ')', '[', ']', ':', ';', ',', '\'':
		return true
	}
	return false
}
