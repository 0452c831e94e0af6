// Package fs writes pipeline results to a directory tree.
package fs

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/harvest"
)

// URLToPath converts a page URL to a relative file path under its host,
// with the given extension.
// Example: https://example.com/docs/api/users → example.com/docs/api/users.json
func URLToPath(rawURL, ext string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", harvest.Errorf(harvest.EINVALID, "invalid URL %q", rawURL)
	}
	if u.Host == "" {
		return "", harvest.Errorf(harvest.EINVALID, "URL %q has no host", rawURL)
	}
	host := strings.ReplaceAll(u.Host, ":", "_")

	path := u.Path

	// Handle root or trailing slash → index
	if path == "" || path == "/" {
		return filepath.Join(host, "index"+ext), nil
	}

	// Remove leading slash
	path = strings.TrimPrefix(path, "/")

	// Trailing slash becomes index in that directory
	if strings.HasSuffix(path, "/") {
		return filepath.Join(host, path+"index"+ext), nil
	}

	return filepath.Join(host, path+ext), nil
}

// FormatContent formats a result's cleaned text with YAML frontmatter.
func FormatContent(result *harvest.Result, crawled time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(result.URL)
	if result.Language != "" {
		b.WriteString("\nlanguage: ")
		b.WriteString(result.Language)
	}
	b.WriteString("\ncrawled: ")
	b.WriteString(crawled.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(result.Content)
	return b.String()
}

// Ensure Writer implements harvest.ResultWriter at compile time.
var _ harvest.ResultWriter = (*Writer)(nil)

// Writer writes each result as a JSON file, plus a markdown file with its
// content, with atomic update semantics: files go to a temporary directory
// that replaces the output directory on Commit.
type Writer struct {
	baseDir string
	name    string

	// Now returns the crawl date written to content files.
	Now func() time.Time
}

// NewWriter creates a new Writer.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewWriter(baseDir, name string) *Writer {
	return &Writer{baseDir: baseDir, name: name, Now: time.Now}
}

func (w *Writer) tempDir() string {
	return filepath.Join(w.baseDir, w.name+".tmp")
}

func (w *Writer) finalDir() string {
	return filepath.Join(w.baseDir, w.name)
}

// Dir returns the output directory as it is after Commit.
func (w *Writer) Dir() string {
	return w.finalDir()
}

// WriteResult writes result to the temporary directory.
func (w *Writer) WriteResult(ctx context.Context, result *harvest.Result) error {
	relPath, err := URLToPath(result.URL, ".json")
	if err != nil {
		return err
	}

	fullPath := filepath.Join(w.tempDir(), relPath)

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return harvest.Errorf(harvest.EINTERNAL, "encode result for %s: %v", result.URL, err)
	}
	if err := os.WriteFile(fullPath, append(data, '\n'), 0644); err != nil {
		return err
	}

	if result.Content == "" {
		return nil
	}
	mdPath := strings.TrimSuffix(fullPath, ".json") + ".md"
	return os.WriteFile(mdPath, []byte(FormatContent(result, w.Now())), 0644)
}

// Commit replaces the output directory with everything written so far.
func (w *Writer) Commit() error {
	// Nothing written: leave any previous output alone
	if _, err := os.Stat(w.tempDir()); os.IsNotExist(err) {
		return nil
	}

	// Remove existing final directory if present
	if err := os.RemoveAll(w.finalDir()); err != nil {
		return err
	}

	// Atomically rename temp to final
	return os.Rename(w.tempDir(), w.finalDir())
}

// Abort discards everything written since the last Commit.
func (w *Writer) Abort() error {
	return os.RemoveAll(w.tempDir())
}
