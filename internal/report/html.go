package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/aduo2233/FileComparator/internal/compare"
)

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.A.Title}} vs {{.B.Title}}</title>
<style>
body { font-family: sans-serif; background: #F5F5F5; color: #212121; margin: 0; }
header { padding: 16px 24px; background: #2196F3; color: white; }
header .ratio { font-size: 1.6em; font-weight: bold; }
main { display: flex; gap: 16px; padding: 16px; }
section { flex: 1; background: white; padding: 12px; border: 1px solid #E0E0E0; min-width: 0; }
section h2 { font-size: 1em; color: #616161; margin-top: 0; word-break: break-all; }
pre { white-space: pre-wrap; word-wrap: break-word; font-family: inherit; margin: 0; }
mark { background: #FFE082; }
</style>
</head>
<body>
<header>
<div class="ratio">Similarity: {{.Percent}}</div>
<div>Elapsed: {{printf "%.2f" .Elapsed}}s &middot; matched characters: {{.Matches}} &middot; run {{.RunID}}</div>
</header>
<main>
<section><h2>{{.A.Path}}</h2><pre>{{range .SegA}}{{if .Matched}}<mark>{{.Text}}</mark>{{else}}{{.Text}}{{end}}{{end}}</pre></section>
<section><h2>{{.B.Path}}</h2><pre>{{range .SegB}}{{if .Matched}}<mark>{{.Text}}</mark>{{else}}{{.Text}}{{end}}{{end}}</pre></section>
</main>
</body>
</html>
`))

type page struct {
	RunID      string
	Percent    string
	Elapsed    float64
	Matches    int
	A, B       compare.Document
	SegA, SegB []Segment
}

// WriteHTML renders both normalized texts side by side with every matched
// span wrapped in <mark>.
func WriteHTML(w io.Writer, out *compare.Outcome) error {
	p := page{
		RunID:   out.RunID,
		Percent: Percent(out.Result.Ratio),
		Elapsed: out.Elapsed.Seconds(),
		Matches: out.Result.Matches,
		A:       out.A,
		B:       out.B,
		SegA:    Segments([]rune(out.A.Text), out.Result.Blocks, SideA),
		SegB:    Segments([]rune(out.B.Text), out.Result.Blocks, SideB),
	}
	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}
