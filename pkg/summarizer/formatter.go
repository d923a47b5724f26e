package summarizer

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Formatter defines the interface for formatting a Summary.
type Formatter interface {
	// Format converts a Summary to a formatted string.
	Format(summary *Summary) string
}

// FormatFunc is a function adapter for the Formatter interface.
type FormatFunc func(summary *Summary) string

// Format implements the Formatter interface.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// YAMLFormatter renders the summary as a YAML document for scripts.
var YAMLFormatter = FormatFunc(func(summary *Summary) string {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Sprintf("# summary not encodable: %v\n", err)
	}
	return string(data)
})

// ForPath picks the formatter from the summary file extension. Anything
// other than .yaml or .yml is written as Markdown.
func ForPath(path string, opts ...MarkdownOption) Formatter {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAMLFormatter
	default:
		return NewMarkdownFormatter(opts...)
	}
}
