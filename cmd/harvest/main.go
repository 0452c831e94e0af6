package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/crawl"
	"github.com/fwojciec/harvest/gemini"
	"github.com/fwojciec/harvest/goquery"
	"github.com/fwojciec/harvest/htmltomarkdown"
	harvesthttp "github.com/fwojciec/harvest/http"
	"github.com/fwojciec/harvest/lingua"
	harvestopenai "github.com/fwojciec/harvest/openai"
	"github.com/fwojciec/harvest/pipeline"
	"github.com/fwojciec/harvest/prometheus"
	"github.com/fwojciec/harvest/readability"
	"github.com/fwojciec/harvest/rod"
	"github.com/fwojciec/harvest/rules"
	harvestslog "github.com/fwojciec/harvest/slog"
	"github.com/fwojciec/harvest/trafilatura"
	"github.com/fwojciec/harvest/yaml"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv looks up API keys. Set before calling Run().
	Getenv func(string) string

	// closers are released when Run returns.
	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Getenv: os.Getenv}
}

// Close releases fetchers opened by Run.
func (m *Main) Close() error {
	var firstErr error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("harvest"),
		kong.Description("Score links, recognize tables and extract structured content from web pages"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'harvest --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = newLogger(stderr, cli.Verbose)

	cfg := harvest.DefaultConfig()
	if cli.Config != "" {
		if cfg, err = yaml.LoadConfig(cli.Config); err != nil {
			return fmt.Errorf("failed to load config: %s", harvest.ErrorMessage(err))
		}
	}
	cli.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %s", harvest.ErrorMessage(err))
	}
	deps.Config = cfg

	// Wire command-specific dependencies based on command
	cmd := strings.Fields(kongCtx.Command())[0]
	if cmd == "extract" || cmd == "crawl" || cmd == "serve" {
		defer m.Close()

		metrics := prometheus.NewMetrics()
		deps.Metrics = metrics
		probeURL := ""
		switch cmd {
		case "extract":
			probeURL = cli.Extract.URLs[0]
		case "crawl":
			probeURL = cli.Crawl.URL
		}

		crawler, err := m.newCrawler(ctx, cli, deps.Logger, metrics, probeURL)
		if err != nil {
			return err
		}
		deps.Crawler = crawler
		deps.Harvester = prometheus.NewHarvester(crawler, metrics)
	}

	return kongCtx.Run(deps)
}

// newLogger logs text to w, at debug level when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newCrawler wires the fetcher, parser and pipeline selected by cli.
func (m *Main) newCrawler(ctx context.Context, cli *CLI, logger *slog.Logger, metrics *prometheus.Metrics, probeURL string) (*crawl.Crawler, error) {
	backend, counter, err := m.newBackend(ctx, cli, logger)
	if err != nil {
		return nil, err
	}
	if backend != nil {
		backend = harvestslog.NewLoggingBackend(prometheus.NewBackend(backend, metrics), logger)
	}

	var heads harvest.HeadFetcher = harvesthttp.NewHeadFetcher()
	heads = harvestslog.NewLoggingHeadFetcher(prometheus.NewHeadFetcher(heads, metrics), logger)

	// One limiter per process so --rate is the real per-host rate. Head
	// fetches skip it unless asked, since they are bounded by concurrency.
	limiter := crawl.NewDomainLimiter(cli.Rate, 1)
	p := &pipeline.Pipeline{
		Heads:        heads,
		Backend:      backend,
		TokenCounter: counter,
	}
	if cli.LimitHeads {
		p.Limiter = limiter
	}
	if !cli.NoLanguage {
		p.Language = lingua.NewDetector()
	}

	var extractor harvest.Extractor = trafilatura.NewExtractor()
	if cli.Extractor == "readability" {
		extractor = readability.NewExtractor()
	}
	fetcher, err := m.newFetcher(ctx, cli, logger, extractor, probeURL)
	if err != nil {
		return nil, err
	}

	return &crawl.Crawler{
		Fetcher: harvestslog.NewLoggingFetcher(fetcher, logger),
		Parser: &goquery.Parser{
			Extractor: extractor,
			Converter: htmltomarkdown.NewConverter(),
		},
		Runner:  p,
		Limiter: limiter,
	}, nil
}

// newFetcher returns the page fetcher selected by cli. In auto mode the
// probe URL is fetched both ways and the browser is kept only when it
// renders noticeably more content.
func (m *Main) newFetcher(ctx context.Context, cli *CLI, logger *slog.Logger, extractor harvest.Extractor, probeURL string) (harvest.Fetcher, error) {
	static := harvesthttp.NewFetcher(harvesthttp.WithTimeout(cli.FetchTimeout))
	if cli.Fetcher == "http" || (cli.Fetcher == "auto" && probeURL == "") {
		return static, nil
	}

	rendered, err := rod.NewFetcher(rod.WithFetchTimeout(cli.FetchTimeout))
	if err != nil {
		if cli.Fetcher == "rod" {
			return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
		}
		logger.Warn("browser unavailable, using plain HTTP", "err", err)
		return static, nil
	}
	m.closers = append(m.closers, rendered)
	if cli.Fetcher == "rod" {
		return rendered, nil
	}

	chosen := crawl.ChooseFetcher(ctx, probeURL, static, rendered, extractor)
	logger.Info("fetcher probe", "url", probeURL, "rendered", chosen == harvest.Fetcher(rendered))
	return chosen, nil
}

// newBackend returns the extraction backend selected by cli, and a token
// counter when one matches it. A nil backend disables extraction.
func (m *Main) newBackend(ctx context.Context, cli *CLI, logger *slog.Logger) (harvest.Backend, harvest.TokenCounter, error) {
	switch cli.Backend {
	case "rules":
		return rules.NewBackend(), nil, nil
	case "gemini":
		apiKey := m.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		backend := gemini.NewBackend(client)
		if cli.Model != "" {
			backend.Model = cli.Model
		}
		counter, err := gemini.NewTokenCounter("")
		if err != nil {
			logger.Warn("token counting disabled", "err", err)
			return backend, nil, nil
		}
		return backend, counter, nil
	case "openai":
		apiKey := m.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		return harvestopenai.NewBackend(harvestopenai.NewClient(apiKey, cli.BaseURL), cli.Model), nil, nil
	}
	return nil, nil, nil
}
