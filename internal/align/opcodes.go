package align

type OpTag string

const (
	OpEqual   OpTag = "equal"
	OpReplace OpTag = "replace"
	OpDelete  OpTag = "delete"
	OpInsert  OpTag = "insert"
)

// Opcode describes how a[A1:A2] turns into b[B1:B2].
type Opcode struct {
	Tag OpTag `json:"tag"`
	A1  int   `json:"a1"`
	A2  int   `json:"a2"`
	B1  int   `json:"b1"`
	B2  int   `json:"b2"`
}

// Opcodes expands a block list into a contiguous edit script covering both
// sequences. blocks must be the output of MatchingBlocks.
func Opcodes(blocks []MatchingBlock) []Opcode {
	var out []Opcode
	i, j := 0, 0
	for _, blk := range blocks {
		var tag OpTag
		switch {
		case i < blk.A && j < blk.B:
			tag = OpReplace
		case i < blk.A:
			tag = OpDelete
		case j < blk.B:
			tag = OpInsert
		}
		if tag != "" {
			out = append(out, Opcode{Tag: tag, A1: i, A2: blk.A, B1: j, B2: blk.B})
		}
		i, j = blk.A+blk.Size, blk.B+blk.Size
		if blk.Size > 0 {
			out = append(out, Opcode{Tag: OpEqual, A1: blk.A, A2: i, B1: blk.B, B2: j})
		}
	}
	return out
}
