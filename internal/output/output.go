// Package output renders accepted blocks and run summaries. Blocks are
// written verbatim in first-seen order; summaries support text, JSON, and
// table formats.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"github.com/bimmerbailey/memsift/internal/dedupe"
)

// Format represents an output format type.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// Emitter writes accepted blocks. The text is exactly what was read from
// the input; only the optional heading color is added, and only when the
// destination is a terminal.
type Emitter struct {
	w        io.Writer
	colorize bool
}

// NewEmitter creates a block emitter for w.
func NewEmitter(w io.Writer, mode ColorMode) *Emitter {
	return &Emitter{w: w, colorize: shouldColorize(mode, w)}
}

// WriteBlock writes one accepted block.
func (e *Emitter) WriteBlock(b *dedupe.Block) error {
	lines := b.Lines()
	for i, line := range lines {
		if i == 0 && e.colorize {
			line = colorizeHeading(b.Category(), line)
		}
		if _, err := fmt.Fprintln(e.w, line); err != nil {
			return err
		}
	}
	return nil
}

// Writer renders run summaries in the configured format.
type Writer struct {
	w      io.Writer
	format Format
}

// New creates a summary Writer.
func New(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format}
}

// WriteSummary outputs the run counters in the configured format.
func (wr *Writer) WriteSummary(sum dedupe.Summary) error {
	switch wr.format {
	case FormatJSON:
		enc := json.NewEncoder(wr.w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	case FormatTable:
		return wr.writeTable(sum)
	default:
		return wr.writeText(sum)
	}
}

func (wr *Writer) writeText(sum dedupe.Summary) error {
	fmt.Fprintf(wr.w, "Lines: %d\n", sum.Lines)
	fmt.Fprintf(wr.w, "Blocks: %d\n", sum.Blocks)
	fmt.Fprintf(wr.w, "Unique: %d\n", sum.Accepted)
	fmt.Fprintf(wr.w, "Suppressed: %d\n", sum.Suppressed)
	fmt.Fprintf(wr.w, "Marker occurrences: %d\n", sum.Epochs)
	for _, cat := range sortedCategories(sum.Categories) {
		fmt.Fprintf(wr.w, "  %s: %d\n", cat, sum.Categories[cat])
	}
	return nil
}

func (wr *Writer) writeTable(sum dedupe.Summary) error {
	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tVALUE")
	fmt.Fprintln(tw, "------\t-----")
	fmt.Fprintf(tw, "lines\t%d\n", sum.Lines)
	fmt.Fprintf(tw, "blocks\t%d\n", sum.Blocks)
	fmt.Fprintf(tw, "unique\t%d\n", sum.Accepted)
	fmt.Fprintf(tw, "suppressed\t%d\n", sum.Suppressed)
	fmt.Fprintf(tw, "markers\t%d\n", sum.Epochs)
	for _, cat := range sortedCategories(sum.Categories) {
		fmt.Fprintf(tw, "%s\t%d\n", cat, sum.Categories[cat])
	}
	return tw.Flush()
}

// sortedCategories returns category names in a stable order for output.
func sortedCategories(categories map[string]int) []string {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
