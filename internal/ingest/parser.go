package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	rscpdf "rsc.io/pdf"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "text"
)

var (
	ErrTooLarge = errors.New("document exceeds size limit")
	ErrNoText   = errors.New("no extractable text")
)

type Parsed struct {
	Title      string
	SourcePath string
	Format     Format
	Text       string
}

// DetectFormat maps a file extension to its extractor. Anything that is not
// PDF or DOCX is read as UTF-8 text.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	default:
		return FormatText
	}
}

func ParseFile(path string, maxBytes int64) (*Parsed, error) {
	raw, err := ReadSource(path, maxBytes)
	if err != nil {
		return nil, err
	}
	return Parse(path, raw)
}

// ReadSource reads a document's bytes, refusing directories and files over
// maxBytes (no limit when maxBytes <= 0).
func ReadSource(path string, maxBytes int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%s: %d bytes: %w", path, info.Size(), ErrTooLarge)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return raw, nil
}

// Parse extracts text from raw document bytes; path only selects the format
// and the title.
func Parse(path string, raw []byte) (*Parsed, error) {
	format := DetectFormat(path)
	var (
		text string
		err  error
	)
	switch format {
	case FormatDOCX:
		text, err = parseDOCX(raw)
	case FormatPDF:
		text, err = parsePDF(raw)
	default:
		text, err = parseText(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Parsed{
		Title:      title,
		SourcePath: path,
		Format:     format,
		Text:       text,
	}, nil
}

func parseText(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("text file is not valid utf-8")
	}
	return strings.TrimPrefix(string(raw), "\ufeff"), nil
}

func parseDOCX(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open docx zip: %w", err)
	}

	var xmlData []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, openErr := f.Open()
		if openErr != nil {
			return "", fmt.Errorf("open document.xml: %w", openErr)
		}
		xmlData, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}
		break
	}
	if len(xmlData) == 0 {
		return "", fmt.Errorf("word/document.xml not found")
	}

	decoder := xml.NewDecoder(bytes.NewReader(xmlData))
	var b strings.Builder
	inText := false
	paragraphs := 0
	for {
		tok, tokenErr := decoder.Token()
		if tokenErr == io.EOF {
			break
		}
		if tokenErr != nil {
			return "", fmt.Errorf("decode document.xml: %w", tokenErr)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "p":
				// paragraphs are joined by a single newline, empty ones included
				if paragraphs > 0 {
					b.WriteString("\n")
				}
				paragraphs++
			case "tab":
				b.WriteString("\t")
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

// A PDF with no text layer (scanned pages) is ErrNoText rather than an empty
// document, so it is reported instead of scoring 0%.
func parsePDF(raw []byte) (string, error) {
	return firstText(raw, plainTextPDF, contentTextPDF)
}

// firstText returns the first non-blank text produced by readers, tried in
// order. When none yields text the first reader error wins over ErrNoText.
func firstText(raw []byte, readers ...func([]byte) (string, error)) (string, error) {
	var firstErr error
	for _, read := range readers {
		text, err := read(raw)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return "", firstErr
	}
	return "", ErrNoText
}

func plainTextPDF(raw []byte) (text string, err error) {
	defer recoverPDF(&err)

	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, pageErr := p.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// contentTextPDF walks the raw text runs of each page.
func contentTextPDF(raw []byte) (text string, err error) {
	defer recoverPDF(&err)

	r, err := rscpdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, run := range page.Content().Text {
			b.WriteString(run.S)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Both PDF readers panic on some malformed streams.
func recoverPDF(err *error) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("read pdf content: %v", rec)
	}
}
