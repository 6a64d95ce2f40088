package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"sportanalyzer/internal/feedback"
)

const (
	defaultPreviewLines = 3
	defaultWidth        = 100
	// frameColumnsWidth is the space taken by the #, frame, and time columns
	// plus table borders.
	frameColumnsWidth = 30
)

// Options tune rendering.
type Options struct {
	// Width is the terminal width used to wrap feedback text.
	Width int
	// PreviewLines limits collapsed frame text. Zero uses the default.
	PreviewLines int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.PreviewLines <= 0 {
		o.PreviewLines = defaultPreviewLines
	}
	return o
}

// Stats renders the four headline cards as a single-row table.
func Stats(v feedback.View) string {
	stats := v.Stats()
	columns := make([]column, len(stats))
	row := make([]string, len(stats))
	for i, stat := range stats {
		columns[i] = column{header: stat.Label, align: alignRight}
		row[i] = stat.Value
	}
	return renderTable(columns, [][]string{row})
}

// Frames renders the frame list. The selected frame shows its full text; the
// others are previewed.
func Frames(v feedback.View, sel feedback.Selection, opts Options) string {
	opts = opts.withDefaults()
	textWidth := max(opts.Width-frameColumnsWidth, 20)
	columns := []column{
		{header: "#", align: alignRight},
		{header: "Frame", align: alignRight},
		{header: "Time", align: alignRight},
		{header: "Feedback", maxWidth: textWidth},
	}
	frames := v.Frames()
	rows := make([][]string, 0, len(frames))
	for i, frame := range frames {
		body := frame.Text
		if !sel.IsSelected(i) {
			body = feedback.Preview(body, opts.PreviewLines)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(frame.Frame),
			frame.TimestampLabel(),
			strings.TrimSpace(body),
		})
	}
	return renderTable(columns, rows)
}

// FrameDetail renders one frame with its full text.
func FrameDetail(v feedback.View, i int) (string, bool) {
	frame, ok := v.Frame(i)
	if !ok {
		return "", false
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (frame %d at %s)\n", feedback.FrameLabel(i), frame.Frame, frame.TimestampLabel())
	b.WriteString(strings.TrimSpace(frame.Text))
	b.WriteString("\n")
	return b.String(), true
}

// Render writes the full report for doc.
func Render(w io.Writer, doc feedback.Document, sel feedback.Selection, opts Options) error {
	var b strings.Builder
	b.WriteString("Analysis Results\n")
	if doc.ProcessedVideo != "" {
		fmt.Fprintf(&b, "Processed video: %s\n", doc.ProcessedVideo)
	}
	b.WriteString("\n")

	v := doc.View
	if !v.HasAnalysis() {
		b.WriteString("No analysis available for this video.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString(Stats(v))
	b.WriteString("\n\n")
	if v.Len() == 0 {
		b.WriteString("No frame analysis entries.\n")
	} else {
		fmt.Fprintf(&b, "Frame Analysis (%d)\n", v.Len())
		b.WriteString(Frames(v, sel, opts))
		b.WriteString("\n")
		if i, ok := sel.Selected(); ok {
			if detail, ok := FrameDetail(v, i); ok {
				b.WriteString("\n")
				b.WriteString(detail)
			}
		}
	}
	b.WriteString("\nSummary\n")
	for _, line := range v.Summary() {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
