// Package gnclade combines the taxon table, tree index, pruner and
// Newick writer into one entry point configured by config.Config.
//
// A GNclade is built once per dataset and is read-only afterwards, so
// Prune and PruneAll can be called from many goroutines.
package gnclade

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gnames/gnclade/pkg/config"
	"github.com/gnames/gnclade/pkg/newick"
	"github.com/gnames/gnclade/pkg/prune"
	"github.com/gnames/gnclade/pkg/taxon"
	"github.com/gnames/gnclade/pkg/tree"
	"golang.org/x/sync/errgroup"
)

// TokenMode tells how free-form input tokens are interpreted.
type TokenMode int

const (
	// TokensNCBI treats numeric tokens as taxon IDs and the rest as names.
	TokensNCBI TokenMode = iota
	// TokensGTDB accepts prefixed taxa (s__...), NCBI taxon IDs of
	// genomes and genome accessions.
	TokensGTDB
)

var accessionRe = regexp.MustCompile(`^(?:[A-Za-z]{2}_)?[A-Za-z]{3}_(\d+\.\d+)$`)

var gtdbPrefixes = []string{"d__", "p__", "c__", "o__", "f__", "g__", "s__"}

// GNclade prunes one dataset.
type GNclade struct {
	cfg       config.Config
	idx       *tree.Index
	writer    *newick.Writer
	pruneOpts []prune.Option
	tokenMode TokenMode

	once       sync.Once
	extIDs     map[string][]int
	accessions map[string][]int
}

// Option configures GNclade.
type Option func(*GNclade)

// OptLabeler sets the function converting names to labels. It is used
// only when newick.canonical is enabled in the config.
func OptLabeler(fn func(string) string) Option {
	return func(g *GNclade) {
		if g.cfg.Newick.Canonical && fn != nil {
			g.writer = newWriter(g.cfg.Newick, fn)
		}
	}
}

// OptTokenMode sets interpretation of input tokens.
func OptTokenMode(m TokenMode) Option {
	return func(g *GNclade) {
		g.tokenMode = m
	}
}

// New builds the tree index of tbl.
func New(cfg *config.Config, tbl *taxon.Table, opts ...Option) (*GNclade, error) {
	idx, err := tree.Build(tbl)
	if err != nil {
		return nil, err
	}
	res := &GNclade{
		cfg:    *cfg,
		idx:    idx,
		writer: newWriter(cfg.Newick, nil),
		pruneOpts: []prune.Option{
			prune.OptRejectForest(cfg.Prune.RejectForest),
			prune.OptTrimToLCA(cfg.Prune.TrimToLCA),
		},
	}
	for _, opt := range opts {
		opt(res)
	}
	return res, nil
}

func newWriter(cfg config.NewickConfig, labeler func(string) string) *newick.Writer {
	opts := []newick.Option{
		newick.OptPrecision(cfg.Precision),
		newick.OptWithLengths(cfg.WithLengths),
		newick.OptWithSupport(cfg.WithSupport),
		newick.OptWithID(cfg.WithID),
		newick.OptUnderscores(cfg.Underscores),
	}
	if labeler != nil {
		opts = append(opts, newick.OptLabeler(labeler))
	}
	return newick.NewWriter(opts...)
}

// Index returns the tree index.
func (g *GNclade) Index() *tree.Index {
	return g.idx
}

// Result is the outcome of one pruning.
type Result struct {
	// Newick is the serialized subtree, one statement per root.
	Newick string
	// OriginalLen is the number of taxa in the dataset.
	OriginalLen int
	// PrunedLen is the number of taxa in the subtree.
	PrunedLen int
	// Roots is the number of trees in the result.
	Roots int
	// Unmatched lists names that selected nothing.
	Unmatched []string
	// Subtree gives access to the kept positions.
	Subtree *prune.Subtree
}

// Prune extracts the subtree of a selection and serializes it.
func (g *GNclade) Prune(sel prune.Selection) (Result, error) {
	st, err := prune.Prune(g.idx, sel, g.pruneOpts...)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Newick:      g.writer.Serialize(st),
		OriginalLen: g.idx.Len(),
		PrunedLen:   st.Len(),
		Roots:       len(st.Roots()),
		Unmatched:   st.Unmatched(),
		Subtree:     st,
	}, nil
}

// PruneAll runs several selections concurrently, at most JobsNumber at
// a time. Results follow the order of selections. The first error
// cancels the rest.
func (g *GNclade) PruneAll(ctx context.Context, sels []prune.Selection) ([]Result, error) {
	res := make([]Result, len(sels))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(g.cfg.JobsNumber, 1))
	for i, sel := range sels {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := g.Prune(sel)
			if err != nil {
				return err
			}
			res[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// Newick serializes the whole dataset.
func (g *GNclade) Newick() string {
	return g.writer.Serialize(newick.Whole(g.idx))
}

// ResolveTokens converts input tokens into a selection according to the
// token mode. In NCBI mode it never fails: numbers become IDs, other
// tokens become names. In GTDB mode every token must match a taxon,
// otherwise UnresolvedTokensError lists the ones that do not.
func (g *GNclade) ResolveTokens(tokens []string) (prune.Selection, error) {
	var sel prune.Selection
	if g.tokenMode == TokensNCBI {
		for _, t := range tokens {
			if id, err := strconv.ParseUint(t, 10, 64); err == nil {
				sel.IDs = append(sel.IDs, id)
				continue
			}
			sel.Names = append(sel.Names, t)
		}
		return sel, nil
	}

	g.once.Do(g.indexGTDB)
	tbl := g.idx.Table()
	var missing []string
	addPositions := func(ps []int) {
		for _, p := range ps {
			sel.IDs = append(sel.IDs, tbl.ID(p))
		}
	}
	for _, t := range tokens {
		switch {
		case hasGTDBPrefix(t):
			if len(tbl.LookupByName(t)) == 0 {
				missing = append(missing, t)
				continue
			}
			sel.Names = append(sel.Names, t)
		case isDigits(t):
			ps, ok := g.extIDs[t]
			if !ok {
				missing = append(missing, t)
				continue
			}
			addPositions(ps)
		default:
			m := accessionRe.FindStringSubmatch(t)
			if m == nil {
				missing = append(missing, t)
				continue
			}
			ps, ok := g.accessions[m[1]]
			if !ok {
				missing = append(missing, t)
				continue
			}
			addPositions(ps)
		}
	}
	if len(missing) > 0 {
		return sel, UnresolvedTokensError(missing)
	}
	return sel, nil
}

// indexGTDB maps NCBI taxon IDs and accession numbers to positions.
func (g *GNclade) indexGTDB() {
	tbl := g.idx.Table()
	g.extIDs = make(map[string][]int)
	g.accessions = make(map[string][]int)
	for i := range tbl.Len() {
		if ext := tbl.ExtID(i); ext != "" {
			g.extIDs[ext] = append(g.extIDs[ext], i)
		}
		if m := accessionRe.FindStringSubmatch(tbl.Name(i)); m != nil {
			g.accessions[m[1]] = append(g.accessions[m[1]], i)
		}
	}
}

func hasGTDBPrefix(s string) bool {
	for _, p := range gtdbPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
