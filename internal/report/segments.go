package report

import "github.com/aduo2233/FileComparator/internal/align"

type Side int

const (
	SideA Side = iota
	SideB
)

// Segment is a run of text that is either wholly matched or wholly unmatched.
// Start and End are rune offsets.
type Segment struct {
	Text    string `json:"text"`
	Matched bool   `json:"matched"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Segments walks blocks in order over one side's text. Gaps between blocks
// become unmatched segments, so concatenating every Text yields text again.
func Segments(text []rune, blocks []align.MatchingBlock, side Side) []Segment {
	var out []Segment
	pos := 0
	emit := func(start, end int, matched bool) {
		if start >= end {
			return
		}
		out = append(out, Segment{
			Text:    string(text[start:end]),
			Matched: matched,
			Start:   start,
			End:     end,
		})
	}
	for _, blk := range blocks {
		start := blk.A
		if side == SideB {
			start = blk.B
		}
		start = min(start, len(text))
		end := min(start+blk.Size, len(text))
		emit(pos, start, false)
		emit(start, end, true)
		pos = max(pos, end)
	}
	emit(pos, len(text), false)
	return out
}
