package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/crawl"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	if c.Out != "" && deps.Writer == nil {
		deps.Writer = newWriter(c.Out)
	}

	crawler := *deps.Crawler
	crawler.Writer = deps.resultWriter(deps.Writer)

	progress := func(e crawl.ProgressEvent) {
		if e.Type == crawl.ProgressFailed {
			fmt.Fprintf(deps.Stderr, "skip %s: %s\n", e.URL, harvest.ErrorMessage(e.Error))
		}
	}

	results, err := crawler.Run(deps.Ctx, c.URLs, deps.Config, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	if deps.Writer != nil {
		if err := deps.Writer.Commit(); err != nil {
			return err
		}
		fmt.Fprintf(deps.Stdout, "Wrote %d results to %s\n", len(results), deps.Writer.Dir())
		return nil
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
