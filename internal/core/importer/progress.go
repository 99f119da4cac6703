package importer

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ProgressCallback defines the interface for progress reporting
type ProgressCallback interface {
	Update(label string)
	Finish(summary *Summary)
}

// ProgressReporter draws a progress bar while importing
type ProgressReporter struct {
	writer    io.Writer
	total     int
	current   int
	startTime time.Time
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter(w io.Writer, total int) *ProgressReporter {
	return &ProgressReporter{
		writer:    w,
		total:     total,
		startTime: time.Now(),
	}
}

// Update advances the bar by one file
func (p *ProgressReporter) Update(label string) {
	p.current++
	if p.total <= 0 {
		return
	}

	pct := float64(p.current) / float64(p.total) * 100

	// Draw progress bar (40 chars wide)
	barWidth := 40
	filled := barWidth * p.current / p.total
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	label = truncate(label, 40)

	var eta time.Duration
	if elapsed := time.Since(p.startTime); p.current > 0 {
		perFile := elapsed / time.Duration(p.current)
		eta = perFile * time.Duration(p.total-p.current)
	}

	_, _ = fmt.Fprintf(p.writer, "\r[%s] %3.0f%% (%d/%d) ETA: %s | %-40s",
		bar, pct, p.current, p.total, eta.Round(time.Second), label)
}

// Finish completes the progress display
func (p *ProgressReporter) Finish(summary *Summary) {
	elapsed := time.Since(p.startTime).Round(time.Millisecond)
	if summary == nil {
		_, _ = fmt.Fprintf(p.writer, "\nProcessed %d files in %s\n", p.current, elapsed)
		return
	}
	_, _ = fmt.Fprintf(p.writer, "\nImported %d, skipped %d, failed %d in %s\n",
		summary.Imported, summary.Skipped, summary.Failed, elapsed)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
