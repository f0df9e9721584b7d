package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"runtime"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// batchLine is one input row: a description, optionally followed by a
// unit after a tab or "|" separator.
type batchLine struct {
	description string
	unit        string
}

type batchResult struct {
	Description string `json:"description"`
	Unit        string `json:"unit,omitempty"`
	Result      any    `json:"result"`
	Error       string `json:"error,omitempty"`
}

func runBatch(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("batch needs at least one input file")
	}

	rt, err := buildApp(c, true)
	if err != nil {
		return err
	}

	var lines []batchLine
	for _, path := range c.Args().Slice() {
		fileLines, err := readBatchFile(path)
		if err != nil {
			return err
		}
		lines = append(lines, fileLines...)
	}
	if len(lines) == 0 {
		return errors.New("no descriptions found in input files")
	}

	workers := c.Int("workers")
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]batchResult, len(lines))
	group, ctx := errgroup.WithContext(c.Context)
	group.SetLimit(workers)

	for i, line := range lines {
		i, line := i, line
		group.Go(func() error {
			out := batchResult{Description: line.description, Unit: line.unit}
			result, err := rt.matcher.BestMatch(ctx, line.description, line.unit)
			if err != nil {
				out.Error = err.Error()
			} else {
				out.Result = renderResult(result)
			}
			results[i] = out
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	// Input order, one JSON object per line.
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	for _, result := range results {
		if err := enc.Encode(result); err != nil {
			return err
		}
	}

	rt.logger.Info("batch complete", "descriptions", len(lines), "workers", workers)
	return nil
}

func readBatchFile(path string) ([]batchLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []batchLine
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, splitBatchLine(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func splitBatchLine(line string) batchLine {
	sep := "\t"
	if !strings.Contains(line, sep) {
		sep = "|"
	}
	if description, unit, found := strings.Cut(line, sep); found {
		return batchLine{
			description: strings.TrimSpace(description),
			unit:        strings.TrimSpace(unit),
		}
	}
	return batchLine{description: line}
}
