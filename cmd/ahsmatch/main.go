// Command ahsmatch matches free-form construction job descriptions
// against AHS/AHSP unit-price catalogs, from the command line or as an
// HTTP service.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/rencanakan/ahsmatch/internal/cache"
	"github.com/rencanakan/ahsmatch/internal/catalog"
	"github.com/rencanakan/ahsmatch/internal/complexity"
	"github.com/rencanakan/ahsmatch/internal/config"
	"github.com/rencanakan/ahsmatch/internal/matching"
	"github.com/rencanakan/ahsmatch/internal/textnorm"
	"github.com/rencanakan/ahsmatch/internal/version"
	"github.com/rencanakan/ahsmatch/internal/wordclass"
)

func main() {
	app := &cli.App{
		Name:                   "ahsmatch",
		Usage:                  "Match construction job descriptions against AHS price catalogs",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: ./ahsmatch.toml when present)",
			},
			&cli.StringFlag{
				Name:  "dictionary",
				Usage: "Dictionary extension file (default: ./.ahsmatch.kdl when present)",
			},
			&cli.StringSliceFlag{
				Name:  "catalog",
				Usage: "Catalog CSV glob (e.g. --catalog 'data/**/*.csv', overrides config)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "match",
				Aliases:   []string{"m"},
				Usage:     "Match one description against the catalog",
				ArgsUsage: "<description>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "unit",
						Aliases: []string{"u"},
						Usage:   "Required unit (hard filter, e.g. m2)",
					},
				},
				Action: runMatch,
			},
			{
				Name:      "batch",
				Aliases:   []string{"b"},
				Usage:     "Match descriptions from files, one per line, NDJSON to stdout",
				ArgsUsage: "<file>...",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent matches (0 = NumCPU)",
					},
				},
				Action: runBatch,
			},
			{
				Name:      "analyze",
				Aliases:   []string{"a"},
				Usage:     "Show complexity metrics and strategy for a query",
				ArgsUsage: "<description>",
				Action:    runAnalyze,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP matching service",
				Action: runServe,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles everything a command needs after wiring.
type app struct {
	cfg          *config.Config
	repo         *catalog.MemoryRepository
	matcher      *matching.Matcher
	analyzer     *complexity.Analyzer
	logger       *log.Logger
	catalogGlobs []string
	catalogPaths []string
}

// buildApp loads config and dictionaries and, when withCatalog is
// set, the catalog files themselves.
func buildApp(c *cli.Context, withCatalog bool) (*app, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "ahsmatch",
	})
	if c.Bool("verbose") {
		logger.SetLevel(log.DebugLevel)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cwd, c.String("config"))
	if err != nil {
		return nil, err
	}

	var dict *config.Dictionary
	if path := c.String("dictionary"); path != "" {
		dict, err = config.LoadDictionaryFile(path)
	} else {
		dict, err = config.LoadDictionary(cwd)
	}
	if err != nil {
		return nil, err
	}
	if dict != nil {
		logger.Debug("dictionary extensions loaded",
			"abbreviations", len(dict.Abbreviations),
			"stopwords", len(dict.Stopwords),
			"glossary", len(dict.Glossary))
	}

	tables := wordclass.DefaultTables()
	if dict != nil {
		// User stopwords join the generic table: they carry no
		// matching signal and drag complexity scores down.
		generic := dict.Generic
		for word := range dict.Stopwords {
			generic = append(generic, word)
		}
		tables.Merge(dict.Technical, dict.Action, generic)
	}
	analyzer := complexity.NewAnalyzer(tables)

	rt := &app{
		cfg:      cfg,
		analyzer: analyzer,
		logger:   logger,
	}
	if !withCatalog {
		return rt, nil
	}

	rt.catalogGlobs = c.StringSlice("catalog")
	if len(rt.catalogGlobs) == 0 {
		rt.catalogGlobs = cfg.Catalog.Globs
	}
	if len(rt.catalogGlobs) == 0 {
		return nil, errors.New("no catalog files configured (use --catalog or set catalog.globs in ahsmatch.toml)")
	}

	rt.catalogPaths, err = catalog.ExpandGlobs(rt.catalogGlobs)
	if err != nil {
		return nil, err
	}
	entries, err := catalog.LoadCSVGlobs(rt.catalogGlobs)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded", "files", len(rt.catalogPaths), "entries", len(entries))
	rt.repo = catalog.NewMemoryRepository(entries)

	normMemo, err := cache.NewMemo[string](cfg.Cache.NormalizeEntries)
	if err != nil {
		return nil, err
	}
	resultMemo, err := cache.NewMemo[matching.Result](cfg.Cache.MatchEntries)
	if err != nil {
		return nil, err
	}

	rt.matcher = matching.NewMatcher(rt.repo,
		matching.WithLogger(logger),
		matching.WithConfig(matching.Config{
			FuzzySingleThreshold:   cfg.Matching.FuzzySingleThreshold,
			FuzzyMultipleThreshold: cfg.Matching.FuzzyMultipleThreshold,
			SingleWordThreshold:    cfg.Matching.SingleWordThreshold,
			MultipleLimit:          cfg.Matching.MultipleLimit,
		}),
		matching.WithExpander(textnorm.NewExpander(dict.ExtendAbbreviations(textnorm.DefaultAbbreviations))),
		matching.WithTranslator(matching.NewTranslator(dict.ExtendGlossary(matching.DefaultGlossary))),
		matching.WithAnalyzer(analyzer),
		matching.WithCaches(normMemo, resultMemo),
	)
	return rt, nil
}

// reloadCatalog re-reads the catalog files and swaps the repository
// contents in place. Memoized results are dropped.
func (rt *app) reloadCatalog() {
	entries, err := catalog.LoadCSVGlobs(rt.catalogGlobs)
	if err != nil {
		rt.logger.Error("catalog reload failed, keeping previous data", "error", err)
		return
	}
	rt.repo.Replace(entries)
	rt.matcher.InvalidateCache()
	rt.logger.Info("catalog reloaded", "entries", len(entries))
}

func (rt *app) watchDebounce() time.Duration {
	return time.Duration(rt.cfg.Catalog.ReloadDebounceMs) * time.Millisecond
}

func runMatch(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("match needs a description argument")
	}

	rt, err := buildApp(c, true)
	if err != nil {
		return err
	}

	description := strings.Join(c.Args().Slice(), " ")
	result, err := rt.matcher.BestMatch(c.Context, description, c.String("unit"))
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, renderResult(result))
}

func runAnalyze(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("analyze needs a description argument")
	}

	rt, err := buildApp(c, false)
	if err != nil {
		return err
	}

	summary := rt.analyzer.Summary(strings.Join(c.Args().Slice(), " "))
	if _, bad := summary["error"]; bad {
		return errors.New("unable to analyze query")
	}
	return printJSON(os.Stdout, summary)
}

// renderResult maps a Result onto the wire payload: alternatives keep
// their own shape, otherwise status plus a single match, a list, or
// null.
func renderResult(result matching.Result) map[string]any {
	if len(result.Alternatives) > 0 {
		return map[string]any{
			"message":      result.Message,
			"alternatives": result.Alternatives,
		}
	}

	var match any
	switch {
	case result.Best != nil:
		match = result.Best
	case len(result.Matches) > 0:
		match = result.Matches
	}
	return map[string]any{"status": result.Status, "match": match}
}

func printJSON(w *os.File, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(payload)
}
