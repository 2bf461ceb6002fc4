package align

import (
	"errors"
	"math"
	"math/rand"
	"slices"
	"strings"
	"testing"
)

func TestAlignIdentity(t *testing.T) {
	inputs := []string{
		"x",
		"the quick brown fox",
		strings.Repeat("lorem ipsum dolor sit amet ", 40),
		strings.Repeat("a", 300),
	}
	for _, in := range inputs {
		res, err := AlignStrings(in, in, DefaultOptions())
		if err != nil {
			t.Fatalf("align %q: %v", in, err)
		}
		n := len([]rune(in))
		want := []MatchingBlock{{0, 0, n}, {n, n, 0}}
		if !slices.Equal(res.Blocks, want) {
			t.Fatalf("identity blocks for %d runes: got %v, want %v", n, res.Blocks, want)
		}
		if res.Ratio != 1.0 {
			t.Fatalf("identity ratio: got %v", res.Ratio)
		}
	}
}

func TestAlignPartialOverlap(t *testing.T) {
	res, err := AlignStrings("abcde", "abxde", DefaultOptions())
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	want := []MatchingBlock{{0, 0, 2}, {3, 3, 2}, {5, 5, 0}}
	if !slices.Equal(res.Blocks, want) {
		t.Fatalf("got blocks %v, want %v", res.Blocks, want)
	}
	if res.Matches != 4 {
		t.Fatalf("expected 4 matched symbols, got %d", res.Matches)
	}
	if math.Abs(res.Ratio-0.8) > 1e-9 {
		t.Fatalf("expected ratio 0.8, got %v", res.Ratio)
	}
}

func TestAlignEmpty(t *testing.T) {
	res, err := AlignStrings("", "", DefaultOptions())
	if err != nil {
		t.Fatalf("align empty: %v", err)
	}
	if res.Ratio != 0 {
		t.Fatalf("expected ratio 0, got %v", res.Ratio)
	}
	if !slices.Equal(res.Blocks, []MatchingBlock{{0, 0, 0}}) {
		t.Fatalf("expected sentinel only, got %v", res.Blocks)
	}

	res, err = AlignStrings("", "abc", DefaultOptions())
	if err != nil {
		t.Fatalf("align empty vs abc: %v", err)
	}
	if res.Ratio != 0 {
		t.Fatalf("expected ratio 0, got %v", res.Ratio)
	}
	if !slices.Equal(res.Blocks, []MatchingBlock{{0, 3, 0}}) {
		t.Fatalf("expected sentinel only, got %v", res.Blocks)
	}
}

func TestAlignDisjoint(t *testing.T) {
	res, err := AlignStrings("aaaa", "bbbb", DefaultOptions())
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	if res.Ratio != 0 {
		t.Fatalf("expected ratio 0, got %v", res.Ratio)
	}
	if !slices.Equal(res.Blocks, []MatchingBlock{{4, 4, 0}}) {
		t.Fatalf("expected sentinel only, got %v", res.Blocks)
	}
}

func TestAlignNilRejected(t *testing.T) {
	if _, err := Align(nil, []int{1}, DefaultOptions()); !errors.Is(err, ErrNilSequence) {
		t.Fatalf("expected ErrNilSequence, got %v", err)
	}
	if _, err := Align([]int{1}, nil, DefaultOptions()); !errors.Is(err, ErrNilSequence) {
		t.Fatalf("expected ErrNilSequence, got %v", err)
	}
	if _, err := Align([]int{}, []int{}, DefaultOptions()); err != nil {
		t.Fatalf("empty non-nil slices must be accepted: %v", err)
	}
}

func TestAlignSymmetricRatio(t *testing.T) {
	pairs := [][2]string{
		{"abcde", "abxde"},
		{"hello world", "world hello"},
		{"document one", "document two"},
	}
	for _, p := range pairs {
		ab, err := AlignStrings(p[0], p[1], DefaultOptions())
		if err != nil {
			t.Fatalf("align: %v", err)
		}
		ba, err := AlignStrings(p[1], p[0], DefaultOptions())
		if err != nil {
			t.Fatalf("align: %v", err)
		}
		if ab.Ratio != ba.Ratio {
			t.Fatalf("ratio not symmetric for %q/%q: %v vs %v", p[0], p[1], ab.Ratio, ba.Ratio)
		}
	}
}

func TestAlignGenericTokens(t *testing.T) {
	res, err := Align([]int{1, 2, 3, 4}, []int{2, 3, 9}, DefaultOptions())
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	want := []MatchingBlock{{1, 0, 2}, {4, 3, 0}}
	if !slices.Equal(res.Blocks, want) {
		t.Fatalf("got %v, want %v", res.Blocks, want)
	}
	if math.Abs(res.Ratio-4.0/7.0) > 1e-9 {
		t.Fatalf("unexpected ratio %v", res.Ratio)
	}
}

func TestFindLongestMatchTieBreak(t *testing.T) {
	m, err := NewMatcher([]rune("abXab"), []rune("ab"), Options{})
	if err != nil {
		t.Fatalf("new matcher: %v", err)
	}
	if got := m.FindLongestMatch(0, 5, 0, 2); got != (MatchingBlock{0, 0, 2}) {
		t.Fatalf("expected smallest i, got %+v", got)
	}

	m, err = NewMatcher([]rune("ab"), []rune("abYab"), Options{})
	if err != nil {
		t.Fatalf("new matcher: %v", err)
	}
	if got := m.FindLongestMatch(0, 2, 0, 5); got != (MatchingBlock{0, 0, 2}) {
		t.Fatalf("expected smallest j, got %+v", got)
	}
	if got := m.FindLongestMatch(0, 2, 1, 5); got != (MatchingBlock{0, 3, 2}) {
		t.Fatalf("expected match restricted to b range, got %+v", got)
	}
}

func TestAutoJunkFallback(t *testing.T) {
	a := []rune(strings.Repeat(" ", 250) + "tail")
	b := []rune(strings.Repeat(" ", 250) + "tail")
	m, err := NewMatcher(a, b, DefaultOptions())
	if err != nil {
		t.Fatalf("new matcher: %v", err)
	}
	if m.Popular() != 1 {
		t.Fatalf("expected the space to be popular, got %d popular symbols", m.Popular())
	}
	if r := m.Ratio(); r != 1.0 {
		t.Fatalf("expected ratio 1 with popular padding, got %v", r)
	}

	only := []rune(strings.Repeat("z", 210))
	m, err = NewMatcher([]rune("zzz"), only, DefaultOptions())
	if err != nil {
		t.Fatalf("new matcher: %v", err)
	}
	blocks := m.MatchingBlocks()
	if blocks[0] != (MatchingBlock{0, 0, 3}) {
		t.Fatalf("fallback scan should match popular-only input, got %v", blocks)
	}
}

func TestMatchingBlocksReturnsCopy(t *testing.T) {
	m, err := NewMatcher([]rune("abcde"), []rune("abxde"), DefaultOptions())
	if err != nil {
		t.Fatalf("new matcher: %v", err)
	}
	blocks := m.MatchingBlocks()
	for i := range blocks {
		blocks[i].Size = 0
	}
	if r := m.Ratio(); math.Abs(r-0.8) > 1e-9 {
		t.Fatalf("editing returned blocks changed the ratio: %v", r)
	}
	if again := m.MatchingBlocks(); again[0] != (MatchingBlock{0, 0, 2}) {
		t.Fatalf("editing returned blocks changed later results: %v", again)
	}
}

func TestAutoJunkDisabledKeepsIndex(t *testing.T) {
	b := []rune(strings.Repeat("ab", 150))
	m, err := NewMatcher([]rune("ab"), b, Options{AutoJunk: false})
	if err != nil {
		t.Fatalf("new matcher: %v", err)
	}
	if m.Popular() != 0 {
		t.Fatalf("expected no popular symbols, got %d", m.Popular())
	}
}

func TestPaddingDoesNotLowerRatio(t *testing.T) {
	base, _ := AlignStrings("abcde", "abxde", DefaultOptions())
	padded, _ := AlignStrings("abcdezzzzz", "abxdezzzzz", DefaultOptions())
	if padded.Ratio < base.Ratio {
		t.Fatalf("padding lowered ratio: %v -> %v", base.Ratio, padded.Ratio)
	}
}

func TestBlockInvariantsRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("abcdefgh ")
	gen := func(n int) []rune {
		out := make([]rune, n)
		for i := range out {
			out[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return out
	}

	for iter := 0; iter < 60; iter++ {
		a := gen(rng.Intn(260))
		b := gen(rng.Intn(260))
		res, err := Align(a, b, DefaultOptions())
		if err != nil {
			t.Fatalf("align: %v", err)
		}
		blocks := res.Blocks
		last := blocks[len(blocks)-1]
		if last != (MatchingBlock{len(a), len(b), 0}) {
			t.Fatalf("missing sentinel: %v", last)
		}
		total := 0
		prevA, prevB := 0, 0
		for i, blk := range blocks[:len(blocks)-1] {
			if blk.Size <= 0 {
				t.Fatalf("non-positive block %v", blk)
			}
			if blk.A < prevA || blk.B < prevB {
				t.Fatalf("blocks overlap or are unordered at %d: %v", i, blocks)
			}
			if i > 0 {
				p := blocks[i-1]
				if p.A+p.Size == blk.A && p.B+p.Size == blk.B {
					t.Fatalf("adjacent blocks not merged: %v %v", p, blk)
				}
			}
			if !slices.Equal(a[blk.A:blk.A+blk.Size], b[blk.B:blk.B+blk.Size]) {
				t.Fatalf("block %v does not match", blk)
			}
			prevA, prevB = blk.A+blk.Size, blk.B+blk.Size
			total += blk.Size
		}
		if total > min(len(a), len(b)) {
			t.Fatalf("matched %d exceeds shorter length", total)
		}
		if res.Ratio < 0 || res.Ratio > 1 {
			t.Fatalf("ratio out of range: %v", res.Ratio)
		}
		if q := QuickRatio(a, b); q+1e-12 < res.Ratio {
			t.Fatalf("quick ratio %v below real ratio %v", q, res.Ratio)
		}
		if rq := RealQuickRatio(len(a), len(b)); rq+1e-12 < QuickRatio(a, b) {
			t.Fatalf("real quick ratio %v below quick ratio", rq)
		}
	}
}

func TestOpcodes(t *testing.T) {
	res, _ := AlignStrings("abcde", "abxde", DefaultOptions())
	got := Opcodes(res.Blocks)
	want := []Opcode{
		{Tag: OpEqual, A1: 0, A2: 2, B1: 0, B2: 2},
		{Tag: OpReplace, A1: 2, A2: 3, B1: 2, B2: 3},
		{Tag: OpEqual, A1: 3, A2: 5, B1: 3, B2: 5},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	res, _ = AlignStrings("abc", "", DefaultOptions())
	got = Opcodes(res.Blocks)
	if len(got) != 1 || got[0].Tag != OpDelete {
		t.Fatalf("expected a single delete, got %v", got)
	}
}

func TestQuickRatioIgnoresOrder(t *testing.T) {
	if r := QuickRatioStrings("abc", "cba"); r != 1.0 {
		t.Fatalf("expected 1, got %v", r)
	}
	if r := RealQuickRatio(0, 0); r != 0 {
		t.Fatalf("expected 0 for empty inputs, got %v", r)
	}
}
