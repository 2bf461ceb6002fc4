package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	st := &state{}
	return &cli.App{
		Name:  "filecmp",
		Usage: "compare two documents (txt, pdf, docx) and report how much text they share",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "workspace",
				Usage: "workspace directory (default ~/FileComparator)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file loaded before reading configuration",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override the configured log level",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "override the configured log format (text or json)",
			},
		},
		Before: st.setup,
		After:  st.teardown,
		Commands: []*cli.Command{
			{
				Name:      "compare",
				Aliases:   []string{"c"},
				Usage:     "align two documents and print the similarity ratio",
				ArgsUsage: "FILE_A FILE_B",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "html", Usage: "write a highlighted HTML report to `PATH`"},
					&cli.StringFlag{Name: "json", Usage: "write a JSON report to `PATH`"},
					&cli.BoolFlag{Name: "save", Usage: "write HTML and JSON reports into the workspace reports dir"},
					&cli.BoolFlag{Name: "no-autojunk", Usage: "index every symbol, even very frequent ones (slower on repetitive input)"},
					&cli.BoolFlag{Name: "no-cache", Usage: "always extract text from the source files"},
					&cli.BoolFlag{Name: "keep-case", Usage: "compare without lower-casing"},
					&cli.BoolFlag{Name: "collapse-space", Usage: "collapse runs of whitespace and drop blank lines before comparing"},
				},
				Action: st.compare,
			},
			{
				Name:      "quick",
				Usage:     "print cheap upper bounds on the similarity ratio",
				ArgsUsage: "FILE_A FILE_B",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-cache", Usage: "always extract text from the source files"},
				},
				Action: st.quick,
			},
			{
				Name:   "init",
				Usage:  "create the workspace and default config",
				Action: st.initWorkspace,
			},
			{
				Name:  "cache",
				Usage: "manage the extracted-text cache",
				Subcommands: []*cli.Command{
					{
						Name:  "prune",
						Usage: "drop cached extractions older than a duration",
						Flags: []cli.Flag{
							&cli.DurationFlag{Name: "older-than", Value: 30 * 24 * time.Hour, Usage: "age cutoff"},
						},
						Action: st.prune,
					},
				},
			},
		},
	}
}
