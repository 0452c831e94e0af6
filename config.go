package harvest

import (
	"math"
	"time"
)

// Configuration defaults.
const (
	DefaultMaxLinks              = 200
	DefaultConcurrency           = 10
	DefaultTimeout               = 5 * time.Second
	DefaultTableScoreThreshold   = 7
	DefaultChunkTokenThreshold   = 2048
	DefaultOverlapRate           = 0.1
	DefaultExtractionConcurrency = 4
	DefaultExtractionAttempts    = 2
)

// Config is the configuration of one pipeline run.
// Start from DefaultConfig; zero values are not defaults.
type Config struct {
	IncludeInternal bool          `yaml:"includeInternal" json:"includeInternal"`
	IncludeExternal bool          `yaml:"includeExternal" json:"includeExternal"`
	MaxLinks        int           `yaml:"maxLinks" json:"maxLinks"` // per list, 0 means no cap
	Concurrency     int           `yaml:"concurrency" json:"concurrency"`
	Timeout         time.Duration `yaml:"timeout" json:"timeout"`
	Query           string        `yaml:"query" json:"query"`
	ScoreThreshold  float64       `yaml:"scoreThreshold" json:"scoreThreshold"`

	TableScoreThreshold int `yaml:"tableScoreThreshold" json:"tableScoreThreshold"`

	ChunkTokenThreshold int     `yaml:"chunkTokenThreshold" json:"chunkTokenThreshold"`
	OverlapRate         float64 `yaml:"overlapRate" json:"overlapRate"`
	ApplyChunking       bool    `yaml:"applyChunking" json:"applyChunking"`

	ExcludedTags    []string `yaml:"excludedTags" json:"excludedTags"`
	ExcludedDomains []string `yaml:"excludedDomains" json:"excludedDomains"`
	ExcludeImages   bool     `yaml:"excludeImages" json:"excludeImages"`
	ExcludeIframes  bool     `yaml:"excludeIframes" json:"excludeIframes"`

	ExtractionConcurrency int     `yaml:"extractionConcurrency" json:"extractionConcurrency"`
	ExtractionAttempts    int     `yaml:"extractionAttempts" json:"extractionAttempts"`
	Instruction           string  `yaml:"instruction" json:"instruction"`
	Schema                *Schema `yaml:"schema" json:"schema"`

	// Deadline bounds a whole run. Work still pending when it expires is
	// recorded as individual failures. Zero means no deadline.
	Deadline time.Duration `yaml:"deadline" json:"deadline"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		IncludeInternal:       true,
		IncludeExternal:       true,
		MaxLinks:              DefaultMaxLinks,
		Concurrency:           DefaultConcurrency,
		Timeout:               DefaultTimeout,
		TableScoreThreshold:   DefaultTableScoreThreshold,
		ChunkTokenThreshold:   DefaultChunkTokenThreshold,
		OverlapRate:           DefaultOverlapRate,
		ApplyChunking:         true,
		ExtractionConcurrency: DefaultExtractionConcurrency,
		ExtractionAttempts:    DefaultExtractionAttempts,
	}
}

// Validate returns an EINVALID error if the configuration cannot be used.
func (c *Config) Validate() error {
	if c.MaxLinks < 0 {
		return Errorf(EINVALID, "maxLinks must not be negative, got %d", c.MaxLinks)
	}
	if c.Concurrency < 1 {
		return Errorf(EINVALID, "concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Timeout <= 0 {
		return Errorf(EINVALID, "timeout must be positive, got %s", c.Timeout)
	}
	if math.IsNaN(c.ScoreThreshold) || math.IsInf(c.ScoreThreshold, 0) {
		return Errorf(EINVALID, "scoreThreshold must be finite")
	}
	if c.TableScoreThreshold < 0 {
		return Errorf(EINVALID, "tableScoreThreshold must not be negative, got %d", c.TableScoreThreshold)
	}
	if c.ChunkTokenThreshold <= 0 {
		return Errorf(EINVALID, "chunkTokenThreshold must be positive, got %d", c.ChunkTokenThreshold)
	}
	if !(c.OverlapRate >= 0 && c.OverlapRate < 1) {
		return Errorf(EINVALID, "overlapRate must be in [0,1), got %v", c.OverlapRate)
	}
	if c.ExtractionConcurrency < 1 {
		return Errorf(EINVALID, "extractionConcurrency must be at least 1, got %d", c.ExtractionConcurrency)
	}
	if c.ExtractionAttempts < 1 {
		return Errorf(EINVALID, "extractionAttempts must be at least 1, got %d", c.ExtractionAttempts)
	}
	if c.Deadline < 0 {
		return Errorf(EINVALID, "deadline must not be negative, got %s", c.Deadline)
	}
	return c.Schema.Validate()
}

// RemovedTags returns the element names removed before any component runs.
func (c *Config) RemovedTags() []string {
	tags := make([]string, 0, len(c.ExcludedTags)+2)
	tags = append(tags, c.ExcludedTags...)
	if c.ExcludeImages {
		tags = append(tags, "img", "picture")
	}
	if c.ExcludeIframes {
		tags = append(tags, "iframe")
	}
	return tags
}
