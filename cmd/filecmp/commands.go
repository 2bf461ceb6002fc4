package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/aduo2233/FileComparator/internal/compare"
	"github.com/aduo2233/FileComparator/internal/config"
	"github.com/aduo2233/FileComparator/internal/db"
	"github.com/aduo2233/FileComparator/internal/ingest"
	"github.com/aduo2233/FileComparator/internal/logging"
	"github.com/aduo2233/FileComparator/internal/report"
	"github.com/aduo2233/FileComparator/internal/workspace"
)

type state struct {
	root  string
	cfg   *config.Config
	log   *logrus.Logger
	cache *db.Cache
}

func (s *state) setup(c *cli.Context) error {
	if err := config.LoadEnv(c.String("env-file")); err != nil {
		return err
	}

	var err error
	if dir := c.String("workspace"); dir != "" {
		s.root, err = workspace.EnsureAt(dir)
	} else {
		s.root, err = workspace.EnsureDefault()
	}
	if err != nil {
		return fmt.Errorf("workspace initialization failed: %w", err)
	}

	s.cfg, err = config.Load(s.root)
	if err != nil {
		return err
	}
	if lvl := c.String("log-level"); lvl != "" {
		s.cfg.LogLevel = lvl
	}
	if f := c.String("log-format"); f != "" {
		s.cfg.LogFormat = f
	}
	s.log, err = logging.New(s.cfg.LogLevel, s.cfg.LogFormat, c.App.ErrWriter)
	if err != nil {
		return err
	}
	logging.Stage(s.log, "BOOT").WithField("workspace", s.root).Debug("configuration loaded")
	return nil
}

func (s *state) teardown(*cli.Context) error {
	if s.cache == nil {
		return nil
	}
	err := s.cache.Close()
	s.cache = nil
	return err
}

func (s *state) openCache(disabled bool) (compare.ExtractionCache, error) {
	if disabled || !s.cfg.CacheEnabled {
		return nil, nil
	}
	if s.cache == nil {
		if err := os.MkdirAll(filepath.Dir(s.cfg.CachePath), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		cache, err := db.OpenCache(s.cfg.CachePath)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	return s.cache, nil
}

func (s *state) service(c *cli.Context) (*compare.Service, error) {
	opts := compare.Options{
		MaxFileBytes: s.cfg.MaxFileBytes,
		Workers:      s.cfg.Workers,
	}
	opts.Align.AutoJunk = s.cfg.AutoJunk && !c.Bool("no-autojunk")
	opts.Normalize = ingest.NormalizeOptions{
		Lowercase:          s.cfg.Lowercase && !c.Bool("keep-case"),
		CollapseWhitespace: s.cfg.CollapseWhitespace || c.Bool("collapse-space"),
	}

	cache, err := s.openCache(c.Bool("no-cache"))
	if err != nil {
		return nil, err
	}
	return compare.New(opts, cache, s.log), nil
}

func twoPaths(c *cli.Context) (string, string, error) {
	if c.NArg() != 2 {
		return "", "", fmt.Errorf("expected two files, got %d", c.NArg())
	}
	return c.Args().Get(0), c.Args().Get(1), nil
}

func (s *state) compare(c *cli.Context) error {
	pathA, pathB, err := twoPaths(c)
	if err != nil {
		return err
	}
	svc, err := s.service(c)
	if err != nil {
		return err
	}
	out, err := svc.CompareFiles(c.Context, pathA, pathB)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, report.Summary(out))

	htmlPath, jsonPath := c.String("html"), c.String("json")
	if c.Bool("save") {
		if htmlPath == "" {
			htmlPath = workspace.ReportPath(s.root, out.RunID, "html")
		}
		if jsonPath == "" {
			jsonPath = workspace.ReportPath(s.root, out.RunID, "json")
		}
	}
	if htmlPath != "" {
		if err := writeReport(htmlPath, out, report.WriteHTML); err != nil {
			return err
		}
		logging.Stage(s.log, "REPORT").WithField("path", htmlPath).Info("html report written")
	}
	if jsonPath != "" {
		if err := writeReport(jsonPath, out, report.WriteJSON); err != nil {
			return err
		}
		logging.Stage(s.log, "REPORT").WithField("path", jsonPath).Info("json report written")
	}
	return nil
}

func writeReport(path string, out *compare.Outcome, render func(io.Writer, *compare.Outcome) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := render(f, out); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}

func (s *state) quick(c *cli.Context) error {
	pathA, pathB, err := twoPaths(c)
	if err != nil {
		return err
	}
	svc, err := s.service(c)
	if err != nil {
		return err
	}
	bounds, err := svc.QuickBounds(c.Context, pathA, pathB)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Upper bound: %s\nLength bound: %s\n",
		report.Percent(bounds.Quick), report.Percent(bounds.RealQuick))
	return nil
}

func (s *state) initWorkspace(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "Workspace ready at: %s\n", filepath.Clean(s.root))
	return nil
}

func (s *state) prune(c *cli.Context) error {
	if _, err := s.openCache(false); err != nil {
		return err
	}
	if s.cache == nil {
		fmt.Fprintln(c.App.Writer, "Cache disabled")
		return nil
	}
	n, err := s.cache.Prune(time.Now().Add(-c.Duration("older-than")))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Pruned %d cached extraction(s)\n", n)
	return nil
}
