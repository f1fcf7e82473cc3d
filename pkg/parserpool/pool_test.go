package parserpool_test

import (
	"sync"
	"testing"

	"github.com/gnames/gnclade/pkg/parserpool"
	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool(t *testing.T) {
	for _, jobs := range []int{0, 1, 4} {
		pool := parserpool.NewPool(jobs)
		require.NotNil(t, pool)
		res, err := pool.Parse("Homo sapiens", nomcode.Zoological)
		require.NoError(t, err)
		assert.True(t, res.Parsed)
		pool.Close()
	}
}

func TestCanonical(t *testing.T) {
	pool := parserpool.NewPool(2)
	defer pool.Close()

	tests := []struct {
		msg, name string
		code      nomcode.Code
		res       string
	}{
		{"author", "Apis mellifera Linnaeus, 1758", nomcode.Zoological,
			"Apis mellifera"},
		{"botanical", "Plantago major L.", nomcode.Botanical, "Plantago major"},
		{"gtdb prefix", "s__Escherichia coli", nomcode.Bacterial,
			"s__Escherichia coli"},
		{"gtdb genus", "g__Bacillus", nomcode.Bacterial, "g__Bacillus"},
		{"unparsed", "GB_GCA_000008085.1", nomcode.Bacterial,
			"GB_GCA_000008085.1"},
		{"unsupported code", "Homo sapiens L.", nomcode.Code(100),
			"Homo sapiens L."},
	}

	for _, v := range tests {
		assert.Equal(t, v.res, pool.Canonical(v.name, v.code), v.msg)
	}
}

func TestCodeDifference(t *testing.T) {
	pool := parserpool.NewPool(2)
	defer pool.Close()

	zoo := pool.Labeler(nomcode.Zoological)
	bot := pool.Labeler(nomcode.Botanical)
	assert.Equal(t, "Bus", zoo("Aus (Bus)"))
	assert.Equal(t, "Aus", bot("Aus (Bus)"))
}

func TestConcurrent(t *testing.T) {
	pool := parserpool.NewPool(4)
	defer pool.Close()
	label := pool.Labeler(nomcode.Zoological)

	var wg sync.WaitGroup
	res := make([]string, 40)
	for i := range res {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res[i] = label("Homo sapiens Linnaeus, 1758")
		}(i)
	}
	wg.Wait()
	for _, v := range res {
		assert.Equal(t, "Homo sapiens", v)
	}
}
