package ingest

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

type NormalizeOptions struct {
	Lowercase          bool
	CollapseWhitespace bool
}

// Normalize prepares extracted text for comparison. Composed (NFC) form is
// always applied so the same glyph typed two ways still compares equal.
func Normalize(text string, opts NormalizeOptions) string {
	text = norm.NFC.String(text)
	if opts.Lowercase {
		text = cases.Lower(language.Und).String(text)
	}
	if opts.CollapseWhitespace {
		text = collapseWhitespace(text)
	}
	return text
}

func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.Join(strings.Fields(line), " ")
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
