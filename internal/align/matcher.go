package align

import "slices"

const (
	autoJunkMinLen  = 200
	autoJunkPercent = 100
)

// Matcher holds the per-b position index for a single comparison. It is not
// safe for concurrent use; build one per goroutine.
type Matcher[T comparable] struct {
	a, b []T

	// b2j maps each non-popular symbol of b to its ascending positions.
	b2j map[T][]int
	// popular holds the symbols dropped from b2j by auto-junk.
	popular map[T][]int

	prev, cur         []int
	prevSeen, curSeen []int

	blocks []MatchingBlock
}

func NewMatcher[T comparable](a, b []T, opts Options) (*Matcher[T], error) {
	if a == nil || b == nil {
		return nil, ErrNilSequence
	}
	m := &Matcher[T]{
		a:    a,
		b:    b,
		prev: make([]int, len(b)+1),
		cur:  make([]int, len(b)+1),
	}
	m.index(opts.AutoJunk)
	return m, nil
}

func (m *Matcher[T]) index(autoJunk bool) {
	m.b2j = make(map[T][]int)
	for j, sym := range m.b {
		m.b2j[sym] = append(m.b2j[sym], j)
	}

	n := len(m.b)
	if !autoJunk || n < autoJunkMinLen {
		return
	}
	limit := n/autoJunkPercent + 1
	for sym, positions := range m.b2j {
		if len(positions) > limit {
			if m.popular == nil {
				m.popular = make(map[T][]int)
			}
			m.popular[sym] = positions
			delete(m.b2j, sym)
		}
	}
}

// Popular reports how many distinct symbols auto-junk removed from the
// primary index.
func (m *Matcher[T]) Popular() int {
	return len(m.popular)
}

// FindLongestMatch returns the longest block within a[alo:ahi] x b[blo:bhi].
// Ties go to the smallest start in a, then the smallest start in b. A block
// with Size 0 means the ranges share no symbol.
func (m *Matcher[T]) FindLongestMatch(alo, ahi, blo, bhi int) MatchingBlock {
	best := m.scan(alo, ahi, blo, bhi, false)
	if best.Size == 0 && len(m.popular) > 0 {
		best = m.scan(alo, ahi, blo, bhi, true)
	}

	// Popular symbols never start a run in the primary scan, so grow the
	// block across any equal neighbours.
	for best.A > alo && best.B > blo && m.a[best.A-1] == m.b[best.B-1] {
		best.A--
		best.B--
		best.Size++
	}
	for best.A+best.Size < ahi && best.B+best.Size < bhi &&
		m.a[best.A+best.Size] == m.b[best.B+best.Size] {
		best.Size++
	}
	return best
}

// scan is the dynamic-programming pass: prev[j+1] holds the length of the run
// ending at a[i-1], b[j]. Only touched cells are reset between rows.
func (m *Matcher[T]) scan(alo, ahi, blo, bhi int, withPopular bool) MatchingBlock {
	best := MatchingBlock{A: alo, B: blo}
	for i := alo; i < ahi; i++ {
		m.curSeen = m.curSeen[:0]
		for _, j := range m.positions(m.a[i], withPopular) {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := m.prev[j] + 1
			m.cur[j+1] = k
			m.curSeen = append(m.curSeen, j+1)
			if k > best.Size {
				best = MatchingBlock{A: i - k + 1, B: j - k + 1, Size: k}
			}
		}
		for _, idx := range m.prevSeen {
			m.prev[idx] = 0
		}
		m.prev, m.cur = m.cur, m.prev
		m.prevSeen, m.curSeen = m.curSeen, m.prevSeen
	}
	for _, idx := range m.prevSeen {
		m.prev[idx] = 0
	}
	m.prevSeen = m.prevSeen[:0]
	return best
}

func (m *Matcher[T]) positions(sym T, withPopular bool) []int {
	if p, ok := m.b2j[sym]; ok {
		return p
	}
	if withPopular {
		return m.popular[sym]
	}
	return nil
}

type span struct {
	alo, ahi, blo, bhi int
}

// MatchingBlocks returns the ordered, merged block list ending with the
// sentinel. The list is computed once; each call returns a fresh copy.
func (m *Matcher[T]) MatchingBlocks() []MatchingBlock {
	return slices.Clone(m.matchingBlocks())
}

func (m *Matcher[T]) matchingBlocks() []MatchingBlock {
	if m.blocks != nil {
		return m.blocks
	}

	la, lb := len(m.a), len(m.b)
	var found []MatchingBlock
	work := []span{{0, la, 0, lb}}
	for len(work) > 0 {
		s := work[len(work)-1]
		work = work[:len(work)-1]

		blk := m.FindLongestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if blk.Size == 0 {
			continue
		}
		found = append(found, blk)
		if s.alo < blk.A && s.blo < blk.B {
			work = append(work, span{s.alo, blk.A, s.blo, blk.B})
		}
		if blk.A+blk.Size < s.ahi && blk.B+blk.Size < s.bhi {
			work = append(work, span{blk.A + blk.Size, s.ahi, blk.B + blk.Size, s.bhi})
		}
	}
	slices.SortFunc(found, func(x, y MatchingBlock) int {
		if x.A != y.A {
			return x.A - y.A
		}
		return x.B - y.B
	})

	m.blocks = mergeAdjacent(found)
	m.blocks = append(m.blocks, MatchingBlock{A: la, B: lb})
	return m.blocks
}

func mergeAdjacent(blocks []MatchingBlock) []MatchingBlock {
	out := make([]MatchingBlock, 0, len(blocks)+1)
	for _, blk := range blocks {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.A+last.Size == blk.A && last.B+last.Size == blk.B {
				last.Size += blk.Size
				continue
			}
		}
		out = append(out, blk)
	}
	return out
}

// Ratio returns 2*M/T where M is the matched symbol count and T the combined
// length of both sequences.
func (m *Matcher[T]) Ratio() float64 {
	return ratio(totalSize(m.matchingBlocks()), len(m.a), len(m.b))
}
