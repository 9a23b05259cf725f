package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/scaleproof/internal/model"
)

// Output formats accepted by WriteReports
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatBoth     = "both" // json + markdown
	FormatAll      = "all"
)

// ValidFormat reports whether format is a known output format
func ValidFormat(format string) bool {
	switch format {
	case FormatJSON, FormatMarkdown, FormatHTML, FormatBoth, FormatAll:
		return true
	}
	return false
}

// WriteReports renders the report in the requested format(s) into dir and
// returns the written paths. Files are named <basename>.json / .md / .html.
func WriteReports(rep *model.Report, dir, basename, format string) ([]string, error) {
	if !ValidFormat(format) {
		return nil, fmt.Errorf("unknown report format %q", format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var written []string
	write := func(ext string, data []byte) error {
		path := filepath.Join(dir, basename+ext)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	if format == FormatJSON || format == FormatBoth || format == FormatAll {
		data, err := GenerateJSONReport(rep)
		if err != nil {
			return written, err
		}
		if err := write(".json", data); err != nil {
			return written, err
		}
	}
	if format == FormatMarkdown || format == FormatBoth || format == FormatAll {
		if err := write(".md", []byte(GenerateMarkdownReport(rep))); err != nil {
			return written, err
		}
	}
	if format == FormatHTML || format == FormatAll {
		if err := write(".html", GenerateHTMLReport(rep)); err != nil {
			return written, err
		}
	}
	return written, nil
}
