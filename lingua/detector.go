// Package lingua detects the language of extracted text with lingua-go.
package lingua

import (
	"strings"

	"github.com/fwojciec/harvest"
	"github.com/pemistahl/lingua-go"
)

// MaxSampleChars bounds how much text is inspected. Detection accuracy
// stops improving long before a full page.
const MaxSampleChars = 2000

// Ensure Detector implements harvest.LanguageDetector at compile time.
var _ harvest.LanguageDetector = (*Detector)(nil)

// Detector implements harvest.LanguageDetector.
type Detector struct {
	detector lingua.LanguageDetector
}

// NewDetector creates a detector for the given languages, or for every
// supported language when none are given.
func NewDetector(languages ...lingua.Language) *Detector {
	var builder lingua.LanguageDetectorBuilder
	if len(languages) >= 2 {
		builder = lingua.NewLanguageDetectorBuilder().FromLanguages(languages...)
	} else {
		builder = lingua.NewLanguageDetectorBuilder().FromAllLanguages()
	}
	return &Detector{detector: builder.WithLowAccuracyMode().Build()}
}

// DetectLanguage returns the lowercase ISO 639-1 code of text's language,
// or "" when it cannot be decided.
func (d *Detector) DetectLanguage(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if r := []rune(text); len(r) > MaxSampleChars {
		text = string(r[:MaxSampleChars])
	}
	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
