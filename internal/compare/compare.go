// Package compare extracts two documents, normalizes their text and aligns
// them character by character.
package compare

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aduo2233/FileComparator/internal/align"
	"github.com/aduo2233/FileComparator/internal/db"
	"github.com/aduo2233/FileComparator/internal/ingest"
	"github.com/aduo2233/FileComparator/internal/logging"
	"github.com/aduo2233/FileComparator/internal/pipeline"
)

var ErrMissingDocument = errors.New("document path is empty")

type Options struct {
	Align        align.Options
	Normalize    ingest.NormalizeOptions
	MaxFileBytes int64
	Workers      int
}

func DefaultOptions() Options {
	return Options{
		Align:     align.DefaultOptions(),
		Normalize: ingest.NormalizeOptions{Lowercase: true},
		Workers:   2,
	}
}

// ExtractionCache is satisfied by *db.Cache.
type ExtractionCache interface {
	Get(digest, format string) (db.Extraction, bool, error)
	Put(ext db.Extraction) error
}

type Document struct {
	Path   string        `json:"path"`
	Title  string        `json:"title"`
	Format ingest.Format `json:"format"`
	Digest string        `json:"digest,omitempty"`
	Cached bool          `json:"cached"`
	// Text is the normalized text that was aligned; block offsets are rune
	// offsets into it.
	Text string `json:"-"`
}

type Outcome struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	A         Document      `json:"a"`
	B         Document      `json:"b"`
	Result    align.Result  `json:"result"`
}

type Service struct {
	opts  Options
	cache ExtractionCache
	log   logrus.FieldLogger
}

// New returns a Service. cache may be nil to always extract from source.
func New(opts Options, cache ExtractionCache, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logging.Discard()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Service{opts: opts, cache: cache, log: log}
}

// CompareFiles extracts both documents concurrently and aligns them. Any
// extraction failure is returned before alignment starts.
func (s *Service) CompareFiles(ctx context.Context, pathA, pathB string) (*Outcome, error) {
	started := time.Now()
	runID := uuid.NewString()
	log := s.log.WithField("run_id", runID)

	paths := []string{pathA, pathB}
	docs := make([]Document, len(paths))
	errs := pipeline.Run(ctx, paths, s.opts.Workers, func(ctx context.Context, i int, path string) error {
		doc, err := s.Extract(ctx, path)
		if err != nil {
			return err
		}
		docs[i] = doc
		return nil
	})
	if err := pipeline.FirstError(errs); err != nil {
		logging.Stage(log, "EXTRACT").WithError(err).Error("document extraction failed")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := s.align(runID, started, docs[0], docs[1])
	if err != nil {
		return nil, err
	}
	logging.Stage(log, "ALIGN").WithFields(logrus.Fields{
		"ratio":   out.Result.Ratio,
		"matches": out.Result.Matches,
		"blocks":  len(out.Result.Blocks) - 1,
		"elapsed": out.Elapsed.String(),
	}).Info("comparison complete")
	return out, nil
}

// CompareTexts aligns two in-memory texts after normalization.
func (s *Service) CompareTexts(a, b string) (*Outcome, error) {
	started := time.Now()
	docA := Document{Title: "a", Format: ingest.FormatText, Text: ingest.Normalize(a, s.opts.Normalize)}
	docB := Document{Title: "b", Format: ingest.FormatText, Text: ingest.Normalize(b, s.opts.Normalize)}
	return s.align(uuid.NewString(), started, docA, docB)
}

func (s *Service) align(runID string, started time.Time, a, b Document) (*Outcome, error) {
	res, err := align.AlignStrings(a.Text, b.Text, s.opts.Align)
	if err != nil {
		return nil, fmt.Errorf("align documents: %w", err)
	}
	return &Outcome{
		RunID:     runID,
		StartedAt: started,
		Elapsed:   time.Since(started),
		A:         a,
		B:         b,
		Result:    res,
	}, nil
}

// Extract reads one document, consulting the cache by content digest and
// format, and returns its normalized text.
func (s *Service) Extract(ctx context.Context, path string) (Document, error) {
	if strings.TrimSpace(path) == "" {
		return Document{}, ErrMissingDocument
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	log := logging.Stage(s.log, "EXTRACT").WithField("path", path)

	raw, err := ingest.ReadSource(path, s.opts.MaxFileBytes)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	digest := db.Digest(raw)
	doc := Document{
		Path:   path,
		Title:  titleOf(path),
		Format: ingest.DetectFormat(path),
		Digest: digest,
	}

	var text string
	if s.cache != nil {
		ext, ok, cacheErr := s.cache.Get(digest, string(doc.Format))
		switch {
		case cacheErr != nil:
			log.WithError(cacheErr).Warn("extraction cache lookup failed")
		case ok:
			text = ext.Text
			doc.Cached = true
		}
	}

	if !doc.Cached {
		parsed, err := ingest.Parse(path, raw)
		if err != nil {
			return Document{}, err
		}
		text = parsed.Text
		if s.cache != nil {
			putErr := s.cache.Put(db.Extraction{
				Digest: digest,
				Path:   path,
				Format: string(parsed.Format),
				Size:   int64(len(raw)),
				Text:   text,
			})
			if putErr != nil {
				log.WithError(putErr).Warn("extraction cache store failed")
			}
		}
	}

	doc.Text = ingest.Normalize(text, s.opts.Normalize)
	log.WithFields(logrus.Fields{
		"format": doc.Format,
		"cached": doc.Cached,
		"runes":  len([]rune(doc.Text)),
	}).Debug("document extracted")
	return doc, nil
}

// Bounds are the cheap upper bounds on the ratio, usable to skip a full
// alignment when they already fall below a threshold.
type Bounds struct {
	Quick     float64 `json:"quick"`
	RealQuick float64 `json:"real_quick"`
}

func (s *Service) QuickBounds(ctx context.Context, pathA, pathB string) (Bounds, error) {
	paths := []string{pathA, pathB}
	docs := make([]Document, len(paths))
	errs := pipeline.Run(ctx, paths, s.opts.Workers, func(ctx context.Context, i int, path string) error {
		doc, err := s.Extract(ctx, path)
		docs[i] = doc
		return err
	})
	if err := pipeline.FirstError(errs); err != nil {
		return Bounds{}, err
	}
	a, b := []rune(docs[0].Text), []rune(docs[1].Text)
	return Bounds{
		Quick:     align.QuickRatio(a, b),
		RealQuick: align.RealQuickRatio(len(a), len(b)),
	}, nil
}

func titleOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
