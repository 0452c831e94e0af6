package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/crawl"
	"github.com/fwojciec/harvest/prometheus"
	harvestslog "github.com/fwojciec/harvest/slog"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Config is the pipeline configuration after the config file and
	// flags are applied.
	Config harvest.Config

	Crawler *crawl.Crawler

	// Writer, if set, receives results instead of stdout. Crawl commits
	// it when the run succeeds.
	Writer ResultStore

	// Harvester serves the HTTP API.
	Harvester harvest.Harvester

	// Metrics counts pages written by extract and crawl, and is exposed
	// by serve. May be nil.
	Metrics *prometheus.Metrics
}

// resultWriter wraps store so every result is logged and counted. Commit
// and Abort stay on store. A nil store with nil Metrics yields nil.
func (deps *Dependencies) resultWriter(store ResultStore) harvest.ResultWriter {
	var w harvest.ResultWriter
	if store != nil {
		w = harvestslog.NewLoggingResultWriter(store, deps.Logger)
	}
	if deps.Metrics != nil {
		w = prometheus.NewResultWriter(w, deps.Metrics)
	}
	return w
}

// ResultStore is a ResultWriter with commit semantics.
type ResultStore interface {
	harvest.ResultWriter
	Commit() error
	Abort() error
	Dir() string
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"C" type:"existingfile" help:"YAML or JSON pipeline config file"`
	Verbose bool   `short:"v" help:"Log debug output"`

	Query       string   `short:"q" help:"Query that ranks links and guides extraction"`
	Instruction string   `help:"Extra instruction for the extraction backend"`
	ExcludeTags []string `name:"exclude-tag" help:"HTML tag to drop before processing (repeatable)"`
	NoChunking  bool     `help:"Send the whole page text as one chunk"`

	Backend string `default:"none" enum:"none,rules,gemini,openai" help:"Extraction backend (${enum})"`
	Model   string `help:"Model name for gemini or openai backends"`
	BaseURL string `name:"base-url" env:"OPENAI_BASE_URL" help:"OpenAI-compatible API base URL"`

	Fetcher      string        `default:"auto" enum:"auto,http,rod" help:"Page fetcher (${enum})"`
	FetchTimeout time.Duration `default:"30s" help:"Timeout per page fetch"`
	Extractor    string        `default:"trafilatura" enum:"trafilatura,readability" help:"Main-content extractor (${enum})"`
	Rate         float64       `default:"2" help:"Page requests per second per domain (0 for no limit)"`
	LimitHeads   bool          `help:"Count head metadata fetches against --rate too"`
	NoLanguage   bool          `help:"Skip language detection"`

	Extract ExtractCmd `cmd:"" help:"Run the pipeline on one or more URLs"`
	Crawl   CrawlCmd   `cmd:"" help:"Walk a site from a start URL"`
	Chunks  ChunksCmd  `cmd:"" help:"Show how a text file is split into chunks"`
	Serve   ServeCmd   `cmd:"" help:"Serve the pipeline over HTTP"`
}

// apply overrides cfg with the flags that were set.
func (c *CLI) apply(cfg *harvest.Config) {
	if c.Query != "" {
		cfg.Query = c.Query
	}
	if c.Instruction != "" {
		cfg.Instruction = c.Instruction
	}
	if len(c.ExcludeTags) > 0 {
		cfg.ExcludedTags = append(cfg.ExcludedTags, c.ExcludeTags...)
	}
	if c.NoChunking {
		cfg.ApplyChunking = false
	}
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URLs []string `arg:"" name:"url" help:"Page URLs"`
	Out  string   `short:"o" help:"Write results to this directory instead of stdout"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL         string `arg:"" help:"Start URL"`
	Out         string `short:"o" default:"harvest-out" help:"Output directory"`
	MaxPages    int    `short:"n" default:"100" help:"Maximum pages to visit"`
	MaxDepth    int    `short:"d" help:"Maximum link depth from the start page (0 for no limit)"`
	Concurrency int    `short:"c" default:"4" help:"Concurrent page limit"`
}

// ChunksCmd is the "chunks" subcommand.
type ChunksCmd struct {
	File string `arg:"" help:"Text file to split, or - for stdin"`
	Full bool   `help:"Print chunk text"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8080" help:"Listen address"`
}
