package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.Backend = (*Backend)(nil)

// Backend is a mock implementation of harvest.Backend.
type Backend struct {
	ExtractFn func(ctx context.Context, text string, schema *harvest.Schema, instruction string) ([]harvest.Record, error)
}

func (b *Backend) Extract(ctx context.Context, text string, schema *harvest.Schema, instruction string) ([]harvest.Record, error) {
	return b.ExtractFn(ctx, text, schema, instruction)
}

var _ harvest.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of harvest.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}

var _ harvest.LanguageDetector = (*LanguageDetector)(nil)

// LanguageDetector is a mock implementation of harvest.LanguageDetector.
type LanguageDetector struct {
	DetectLanguageFn func(text string) string
}

func (d *LanguageDetector) DetectLanguage(text string) string {
	return d.DetectLanguageFn(text)
}
