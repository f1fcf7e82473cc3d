package newick

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/gnames/gnclade/pkg/taxon"
)

// Node is a node of a tree read from Newick input.
type Node struct {
	// Children of the node, empty for leaves.
	Children []*Node
	// Label of the node, unquoted. It can be empty.
	Label string
	// Length is the branch length to the parent, nil if absent.
	Length *float64
}

// Reader reads Newick statements one at a time.
type Reader struct {
	r      *bufio.Reader
	offset int
}

// NewReader returns a Reader that reads trees from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadAll returns all trees from the input. The first error aborts
// reading and no trees are returned. The error is never io.EOF.
func (rd *Reader) ReadAll() ([]*Node, error) {
	var res []*Node
	for {
		t, err := rd.ReadTree()
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
}

// ReadTree reads the next tree statement. At the end of input it returns
// io.EOF.
func (rd *Reader) ReadTree() (*Node, error) {
	c, err := rd.skip()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	if c == ';' {
		return &Node{}, nil
	}
	rd.unread()

	res, err := rd.node()
	if err != nil {
		return nil, err
	}

	c, err = rd.skip()
	if err != nil && err != io.EOF {
		return nil, err
	}
	if err != nil || c != ';' {
		return nil, rd.syntaxErr("expected ';' at the end of a tree")
	}
	return res, nil
}

func (rd *Reader) node() (*Node, error) {
	res := &Node{}
	c, err := rd.skip()
	if err != nil {
		return nil, rd.syntaxErr("unexpected end of input")
	}

	if c == '(' {
		for {
			ch, err := rd.node()
			if err != nil {
				return nil, err
			}
			res.Children = append(res.Children, ch)

			c, err = rd.skip()
			if err != nil {
				return nil, rd.syntaxErr("unclosed '('")
			}
			if c == ')' {
				break
			}
			if c != ',' {
				return nil, rd.syntaxErr("expected ',' or ')'")
			}
		}
	} else {
		rd.unread()
	}

	if res.Label, err = rd.label(); err != nil {
		return nil, err
	}

	c, err = rd.skip()
	if err == io.EOF {
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	if c != ':' {
		rd.unread()
		return res, nil
	}

	if res.Length, err = rd.length(); err != nil {
		return nil, err
	}
	return res, nil
}

func (rd *Reader) label() (string, error) {
	c, err := rd.skip()
	if err == io.EOF {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if c == '\'' {
		var sb strings.Builder
		for {
			c, err = rd.read()
			if err != nil {
				return "", rd.syntaxErr("unclosed quoted label")
			}
			if c == '\'' {
				next, err := rd.read()
				if err == nil && next == '\'' {
					sb.WriteRune('\'')
					continue
				}
				if err == nil {
					rd.unread()
				}
				return sb.String(), nil
			}
			sb.WriteRune(c)
		}
	}

	var sb strings.Builder
	for {
		if isReserved(c) || unicode.IsSpace(c) {
			rd.unread()
			break
		}
		sb.WriteRune(c)
		if c, err = rd.read(); err != nil {
			break
		}
	}
	return sb.String(), nil
}

func (rd *Reader) length() (*float64, error) {
	if _, err := rd.skip(); err != nil {
		return nil, rd.syntaxErr("missing branch length")
	}
	rd.unread()

	var sb strings.Builder
	for {
		c, err := rd.read()
		if err != nil {
			break
		}
		if isReserved(c) || unicode.IsSpace(c) {
			rd.unread()
			break
		}
		sb.WriteRune(c)
	}

	f, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return nil, rd.syntaxErr("bad branch length '" + sb.String() + "'")
	}
	return &f, nil
}

// skip returns the next rune that is not whitespace or part of a
// [comment].
func (rd *Reader) skip() (rune, error) {
	for {
		c, err := rd.read()
		if err != nil {
			return 0, err
		}
		if unicode.IsSpace(c) {
			continue
		}
		if c == '[' {
			for c != ']' {
				if c, err = rd.read(); err != nil {
					return 0, rd.syntaxErr("unclosed comment")
				}
			}
			continue
		}
		return c, nil
	}
}

func (rd *Reader) read() (rune, error) {
	c, _, err := rd.r.ReadRune()
	if err == nil {
		rd.offset++
	}
	return c, err
}

func (rd *Reader) unread() {
	if rd.r.UnreadRune() == nil {
		rd.offset--
	}
}

func (rd *Reader) syntaxErr(msg string) error {
	return SyntaxError(rd.offset, msg)
}

// Flatten converts trees to taxon records. IDs are assigned sequentially
// in pre-order starting from 1, each tree root is its own parent.
// Branches without length get defaultDistance. If labeler is not nil it
// converts a label to a name, a rank and a branch support value.
func Flatten(
	trees []*Node,
	defaultDistance float64,
	labeler func(label string) (name, rank string, support float64),
) []taxon.Record {
	var res []taxon.Record
	var id uint64

	var walk func(n *Node, parentID uint64)
	walk = func(n *Node, parentID uint64) {
		id++
		rec := taxon.Record{
			ID:       id,
			ParentID: parentID,
			Name:     n.Label,
			Distance: defaultDistance,
		}
		if parentID == 0 {
			rec.ParentID = id
		}
		if n.Length != nil {
			rec.Distance = *n.Length
		}
		if labeler != nil {
			rec.Name, rec.Rank, rec.Support = labeler(n.Label)
		}
		res = append(res, rec)

		myID := id
		for _, ch := range n.Children {
			walk(ch, myID)
		}
	}

	for _, t := range trees {
		walk(t, 0)
	}
	return res
}
