// Package align computes similarity ratios and matching blocks between two
// sequences using greedy longest-match decomposition.
package align

import "errors"

var ErrNilSequence = errors.New("align: nil sequence")

// MatchingBlock is a run of Size symbols shared by a[A:A+Size] and b[B:B+Size].
// The last block of every list is the sentinel {len(a), len(b), 0}.
type MatchingBlock struct {
	A    int `json:"a"`
	B    int `json:"b"`
	Size int `json:"size"`
}

type Options struct {
	// AutoJunk moves symbols that are very frequent in b out of the primary
	// index. They are still matched by block extension and by the fallback scan.
	AutoJunk bool
}

func DefaultOptions() Options {
	return Options{AutoJunk: true}
}

type Result struct {
	Ratio   float64         `json:"ratio"`
	Matches int             `json:"matches"`
	Blocks  []MatchingBlock `json:"blocks"`
}

func Align[T comparable](a, b []T, opts Options) (Result, error) {
	m, err := NewMatcher(a, b, opts)
	if err != nil {
		return Result{}, err
	}
	blocks := m.MatchingBlocks()
	matches := totalSize(blocks)
	return Result{
		Ratio:   ratio(matches, len(a), len(b)),
		Matches: matches,
		Blocks:  blocks,
	}, nil
}

// AlignStrings compares a and b rune by rune; block offsets are rune offsets.
func AlignStrings(a, b string, opts Options) (Result, error) {
	return Align(runes(a), runes(b), opts)
}

func runes(s string) []rune {
	r := []rune(s)
	if r == nil {
		r = []rune{}
	}
	return r
}

func ratio(matches, la, lb int) float64 {
	if la+lb == 0 {
		return 0
	}
	return 2.0 * float64(matches) / float64(la+lb)
}

func totalSize(blocks []MatchingBlock) int {
	n := 0
	for _, blk := range blocks {
		n += blk.Size
	}
	return n
}
