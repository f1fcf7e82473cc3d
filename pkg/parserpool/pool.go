// Package parserpool provides a pool of gnparser instances that turn
// scientific names into canonical forms for tree labels.
// This is a pure package - parsing is computation, not I/O.
package parserpool

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
	"github.com/gnames/gnparser/ent/parsed"
)

// Pool provides gnparser instances for concurrent parsing.
// It maintains separate pools for botanical, zoological and bacterial
// nomenclatural codes.
type Pool interface {
	// Parse parses a scientific name string using the specified
	// nomenclatural code. This method is safe for concurrent use.
	Parse(nameString string, code nomcode.Code) (parsed.Parsed, error)

	// Canonical returns the simple canonical form of a name. GTDB rank
	// prefixes like 's__' are kept. Names that cannot be parsed are
	// returned unchanged.
	Canonical(nameString string, code nomcode.Code) string

	// Labeler returns Canonical bound to a code, usable as a Newick
	// labeler.
	Labeler(code nomcode.Code) func(string) string

	// Close shuts down the parser pools and releases resources.
	// After calling Close, the pool should not be used.
	Close()
}

// PoolImpl implements the Pool interface using gnparser.NewPool.
type PoolImpl struct {
	pools    map[nomcode.Code]chan gnparser.GNparser
	poolSize int
}

// NewPool creates a new parser pool with the specified number of workers.
// If jobsNum is 0, it defaults to runtime.NumCPU().
func NewPool(jobsNum int) Pool {
	poolSize := jobsNum
	if poolSize == 0 {
		poolSize = runtime.NumCPU()
	}

	res := &PoolImpl{
		pools:    make(map[nomcode.Code]chan gnparser.GNparser),
		poolSize: poolSize,
	}
	codes := []nomcode.Code{
		nomcode.Zoological,
		nomcode.Botanical,
		nomcode.Bacterial,
	}
	for _, code := range codes {
		cfg := gnparser.NewConfig(gnparser.OptCode(code))
		res.pools[code] = gnparser.NewPool(cfg, poolSize)
	}
	return res
}

// Parse parses a scientific name string using the specified nomenclatural code.
func (p *PoolImpl) Parse(nameString string, code nomcode.Code) (parsed.Parsed, error) {
	ch, ok := p.pools[code]
	if !ok {
		return parsed.Parsed{}, fmt.Errorf("unsupported nomenclatural code: %v", code)
	}

	// blocks if all parsers are busy
	parser := <-ch
	result := parser.ParseName(nameString)
	ch <- parser

	return result, nil
}

// Canonical returns the simple canonical form of a name.
func (p *PoolImpl) Canonical(nameString string, code nomcode.Code) string {
	prefix, name := splitRankPrefix(nameString)
	res, err := p.Parse(name, code)
	if err != nil || !res.Parsed || res.Canonical == nil {
		return nameString
	}
	return prefix + res.Canonical.Simple
}

// Labeler returns a function that converts names to canonical forms.
func (p *PoolImpl) Labeler(code nomcode.Code) func(string) string {
	return func(s string) string {
		return p.Canonical(s, code)
	}
}

// Close shuts down all parser pools and releases resources.
func (p *PoolImpl) Close() {
	for _, ch := range p.pools {
		close(ch)
		for range ch {
		}
	}
}

// splitRankPrefix separates a GTDB prefix like 'g__' from a name.
func splitRankPrefix(s string) (string, string) {
	if len(s) > 3 && s[1:3] == "__" && strings.ContainsRune("dpcofgs", rune(s[0])) {
		return s[:3], s[3:]
	}
	return "", s
}
