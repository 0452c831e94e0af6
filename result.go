package harvest

import "context"

// Stats counts the failures a run recovered from.
type Stats struct {
	Candidates         int `json:"candidates"`
	FetchFailures      int `json:"fetchFailures"`
	SkippedBlocks      int `json:"skippedBlocks"`
	Chunks             int `json:"chunks"`
	ExtractionFailures int `json:"extractionFailures"`
	Tokens             int `json:"tokens,omitempty"`
}

// Result is the outcome of one pipeline run.
// Success is false only when the run could not produce a result for the
// page as a whole; sections computed before the failure are still filled.
type Result struct {
	URL              string   `json:"url"`
	Links            Links    `json:"links"`
	Tables           []Table  `json:"tables"`
	ExtractedContent []Record `json:"extractedContent"`
	Content          string   `json:"content,omitempty"`
	Language         string   `json:"language,omitempty"`
	Stats            Stats    `json:"stats"`
	Success          bool     `json:"success"`
	ErrorMessage     string   `json:"errorMessage,omitempty"`
}

// NewResult returns an unsuccessful result for url with empty, non-nil sections.
func NewResult(url string) *Result {
	return &Result{
		URL: url,
		Links: Links{
			Internal: []ScoredLink{},
			External: []ScoredLink{},
		},
		Tables:           []Table{},
		ExtractedContent: []Record{},
	}
}

// Runner runs the pipeline on one parsed page.
type Runner interface {
	Run(ctx context.Context, pc *PageContext, cfg Config) (*Result, error)
}

// ResultWriter persists results of multi-page runs.
type ResultWriter interface {
	WriteResult(ctx context.Context, result *Result) error
}

// Harvester fetches a single page and runs the pipeline on it.
type Harvester interface {
	Harvest(ctx context.Context, url string, cfg Config) (*Result, error)
}
