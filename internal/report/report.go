// Package report renders comparison outcomes as a short summary, JSON, or a
// side-by-side HTML page with the matched spans highlighted.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aduo2233/FileComparator/internal/align"
	"github.com/aduo2233/FileComparator/internal/compare"
)

func Percent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// Summary is the two-line result shown after a comparison.
func Summary(out *compare.Outcome) string {
	return fmt.Sprintf("Similarity: %s\nElapsed: %.2fs", Percent(out.Result.Ratio), out.Elapsed.Seconds())
}

type jsonReport struct {
	RunID          string                `json:"run_id"`
	StartedAt      string                `json:"started_at"`
	ElapsedSeconds float64               `json:"elapsed_seconds"`
	Ratio          float64               `json:"ratio"`
	Percent        string                `json:"percent"`
	Matches        int                   `json:"matches"`
	A              compare.Document      `json:"a"`
	B              compare.Document      `json:"b"`
	Blocks         []align.MatchingBlock `json:"blocks"`
	Opcodes        []align.Opcode        `json:"opcodes"`
}

func WriteJSON(w io.Writer, out *compare.Outcome) error {
	rep := jsonReport{
		RunID:          out.RunID,
		StartedAt:      out.StartedAt.Format(time.RFC3339),
		ElapsedSeconds: out.Elapsed.Seconds(),
		Ratio:          out.Result.Ratio,
		Percent:        Percent(out.Result.Ratio),
		Matches:        out.Result.Matches,
		A:              out.A,
		B:              out.B,
		Blocks:         out.Result.Blocks,
		Opcodes:        align.Opcodes(out.Result.Blocks),
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}
