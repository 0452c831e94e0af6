package gemini

import (
	"context"

	"github.com/fwojciec/harvest"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// TokenizerModel is the model whose local tokenizer is used when none is
// given. Gemini models share a vocabulary, so counts carry over.
const TokenizerModel = "gemini-2.0-flash"

var _ harvest.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts the tokens a chunk costs when sent to Gemini,
// using the local tokenizer.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a new TokenCounter for the given model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = TokenizerModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, harvest.Errorf(harvest.EUNAVAILABLE, "load tokenizer for %s: %v", model, err)
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the tokens of text as wrapped in the extraction prompt.
// Empty text costs nothing.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	contents := []*genai.Content{
		genai.NewContentFromText(harvest.BuildUserPrompt(text), genai.RoleUser),
	}

	result, err := tc.tok.CountTokens(contents, nil)
	if err != nil {
		return 0, err
	}

	return int(result.TotalTokens), nil
}
