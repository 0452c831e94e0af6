package harvest

// LanguageDetector identifies the natural language of a text.
type LanguageDetector interface {
	// DetectLanguage returns an ISO 639-1 code, or "" when unsure.
	DetectLanguage(text string) string
}
