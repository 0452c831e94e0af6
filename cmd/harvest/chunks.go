package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/harvest/chunk"
)

// Run executes the chunks command.
func (c *ChunksCmd) Run(deps *Dependencies) error {
	var (
		data []byte
		err  error
	)
	if c.File == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(c.File)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	text := string(data)
	chunks := chunk.NewPlanner(deps.Config).Plan(text)
	fmt.Fprintf(deps.Stdout, "%d tokens in %d chunks (threshold %d, overlap %.2f)\n",
		chunk.EstimateTokens(text), len(chunks), deps.Config.ChunkTokenThreshold, deps.Config.OverlapRate)

	for _, ch := range chunks {
		fmt.Fprintf(deps.Stdout, "#%d  tokens=%d  bytes=%d-%d  overlap=%d\n", ch.Index, ch.Tokens, ch.Start, ch.End, ch.Overlap)
		if c.Full {
			fmt.Fprintln(deps.Stdout, strings.TrimSpace(ch.Text))
			fmt.Fprintln(deps.Stdout)
		}
	}
	return nil
}
