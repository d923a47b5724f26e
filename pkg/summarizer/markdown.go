package summarizer

import (
	"fmt"
	"strings"
)

// Translator maps a heading or label to the display language.
type Translator func(key string) string

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the translator used for headings and labels.
func WithTranslator(t Translator) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.t = t
	}
}

// WithVersion sets the tool version printed in the header.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// MarkdownFormatter renders a Summary as Markdown.
type MarkdownFormatter struct {
	t       Translator
	version string
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{t: func(key string) string { return key }}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", f.t("Decode Summary"))
	generated := s.GeneratedAt.Format("2006-01-02 15:04:05")
	if f.version != "" {
		fmt.Fprintf(&b, "%s: %s (avdcmd %s)\n\n", f.t("Generated"), generated, f.version)
	} else {
		fmt.Fprintf(&b, "%s: %s\n\n", f.t("Generated"), generated)
	}

	fmt.Fprintf(&b, "## %s\n\n", f.t("Input"))
	f.tableHeader(&b)
	f.row(&b, "Input File", s.Input.Path)
	codec := s.Input.Codec
	if s.Input.CodecSource != "" {
		codec = fmt.Sprintf("%s (%s)", codec, f.t(s.Input.CodecSource))
	}
	f.row(&b, "Codec", codec)
	if s.Input.Width > 0 && s.Input.Height > 0 {
		f.row(&b, "Dimensions", fmt.Sprintf("%dx%d", s.Input.Width, s.Input.Height))
	} else {
		f.row(&b, "Dimensions", "N/A")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", f.t("Decoding"))
	f.tableHeader(&b)
	f.row(&b, "Slices", fmt.Sprintf("%d", s.Decode.Slices))
	f.row(&b, "Intra Slices", fmt.Sprintf("%d", s.Decode.IntraSlices))
	f.row(&b, "Instructions", fmt.Sprintf("%d", s.Decode.Instructions))
	f.row(&b, "Command Data", formatBytes(int64(s.Decode.Instructions)*4))
	if s.Output.Dir != "" {
		f.row(&b, "Output Directory", s.Output.Dir)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", f.t("Address Layout"))
	if len(s.Layout.Ranges) == 0 {
		fmt.Fprintf(&b, "%s\n", f.t("No ranges published"))
		return b.String()
	}
	fmt.Fprintf(&b, "%s: %d\n\n", f.t("Layouts"), s.Layout.Generations)
	fmt.Fprintf(&b, "| %s | %s | %s |\n", f.t("Name"), "IOVA", f.t("Size"))
	b.WriteString("|------|------|------|\n")
	var end uint64
	for _, r := range s.Layout.Ranges {
		fmt.Fprintf(&b, "| %s | 0x%x | 0x%x (%s) |\n", r.Name, r.IOVA, r.Size, formatBytes(int64(r.Size)))
		if r.End() > end {
			end = r.End()
		}
	}
	fmt.Fprintf(&b, "\n%s: 0x%x (%s)\n", f.t("End of Layout"), end, formatBytes(int64(end)))

	return b.String()
}

func (f *MarkdownFormatter) tableHeader(b *strings.Builder) {
	fmt.Fprintf(b, "| %s | %s |\n", f.t("Item"), f.t("Value"))
	b.WriteString("|------|-------|\n")
}

func (f *MarkdownFormatter) row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", f.t(label), value)
}

// formatBytes renders a byte count with binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit && exp < 2; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}

var _ Formatter = (*MarkdownFormatter)(nil)
