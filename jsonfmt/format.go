// Package jsonfmt rewrites JSON files in place with canonical indentation.
// Formatting preserves key order and is idempotent; files already in
// canonical form are left untouched.
package jsonfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIndent is the indent width used when none is configured.
const DefaultIndent = 4

// Options configures a formatting run.
type Options struct {
	// Dir is the directory whose .json files are rewritten.
	Dir string

	// Recursive includes .json files in subdirectories.
	Recursive bool

	// Indent is the indent width in spaces. Non-positive uses DefaultIndent.
	Indent int
}

// Status classifies the outcome for one file.
type Status string

const (
	StatusFormatted Status = "formatted"
	StatusUnchanged Status = "unchanged"
	StatusFailed    Status = "failed"
)

// FileResult reports the outcome for one file.
type FileResult struct {
	Path   string
	Status Status
	Err    error
}

// Summary aggregates a formatting run.
type Summary struct {
	Results   []FileResult
	Formatted int
	Unchanged int
	Failed    int
}

// Run reformats the .json files under opts.Dir. It returns an error only if
// at least one file failed to read, parse, or write; the summary is returned
// in either case.
func Run(opts Options, logger *slog.Logger) (*Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	indent := opts.Indent
	if indent <= 0 {
		indent = DefaultIndent
	}

	pattern := filepath.Join(opts.Dir, "*.json")
	if opts.Recursive {
		pattern = filepath.Join(opts.Dir, "**", "*.json")
	}

	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(paths)

	summary := &Summary{}
	for _, path := range paths {
		result := formatFile(path, indent)
		summary.Results = append(summary.Results, result)

		switch result.Status {
		case StatusFormatted:
			summary.Formatted++
			logger.Info("Formatted", "path", path)
		case StatusUnchanged:
			summary.Unchanged++
			logger.Debug("Unchanged", "path", path)
		case StatusFailed:
			summary.Failed++
			logger.Error("Failed", "path", path, "error", result.Err)
		}
	}

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d of %d files failed", summary.Failed, len(summary.Results))
	}
	return summary, nil
}

// formatFile rewrites one file if its canonical form differs from its
// current content.
func formatFile(path string, indent int) FileResult {
	original, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Status: StatusFailed, Err: fmt.Errorf("read: %w", err)}
	}

	formatted, err := Format(original, indent)
	if err != nil {
		return FileResult{Path: path, Status: StatusFailed, Err: fmt.Errorf("parse: %w", err)}
	}

	if bytes.Equal(formatted, original) {
		return FileResult{Path: path, Status: StatusUnchanged}
	}

	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return FileResult{Path: path, Status: StatusFailed, Err: fmt.Errorf("write: %w", err)}
	}
	return FileResult{Path: path, Status: StatusFormatted}
}

// Format returns the canonical form of a JSON document: indented with the
// given width, key order preserved, single trailing newline.
func Format(src []byte, indent int) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(src), "", strings.Repeat(" ", indent)); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
