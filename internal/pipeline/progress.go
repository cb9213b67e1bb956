package pipeline

import (
	"fmt"
	"io"
	"os"
	"sync"

	"photo-pipeline/internal/derive"
	"photo-pipeline/internal/logging"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Reporter receives the running summary after setup, after every batch and
// once the run ends. Calls come from the orchestrating goroutine only.
type Reporter interface {
	Start(s derive.RunSummary)
	Update(s derive.RunSummary)
	Finish(s derive.RunSummary)
}

type nopReporter struct{}

func (nopReporter) Start(derive.RunSummary)  {}
func (nopReporter) Update(derive.RunSummary) {}
func (nopReporter) Finish(derive.RunSummary) {}

// NewReporter returns a progress bar when w is a terminal and a log-line
// reporter otherwise.
func NewReporter(w io.Writer) Reporter {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return NewBarReporter(w)
	}
	return LogReporter{}
}

// ProgressLine formats s the way both reporters display it.
func ProgressLine(s derive.RunSummary) string {
	return fmt.Sprintf("%.1f%% | succeeded: %d | skipped: %d | failed: %d",
		s.Percent(), s.Succeeded, s.Skipped, s.Failed)
}

// LogReporter writes one info line per update.
type LogReporter struct{}

// Start logs the task count.
func (LogReporter) Start(s derive.RunSummary) {
	logging.Info("Processing %d tasks", s.Total)
}

// Update logs the current progress line.
func (LogReporter) Update(s derive.RunSummary) {
	logging.Info("Progress: %s", ProgressLine(s))
}

// Finish is a no-op; the caller prints the final summary.
func (LogReporter) Finish(derive.RunSummary) {}

// BarReporter renders a progress bar on an interactive terminal.
type BarReporter struct {
	w   io.Writer
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// NewBarReporter creates a bar reporter writing to w.
func NewBarReporter(w io.Writer) *BarReporter {
	return &BarReporter{w: w}
}

// Start creates the bar sized to the task count.
func (b *BarReporter) Start(s derive.RunSummary) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bar = progressbar.NewOptions(s.Total,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription(ProgressLine(s)),
		progressbar.OptionSetWidth(24),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(b.w)
		}),
	)
}

// Update moves the bar to the processed count.
func (b *BarReporter) Update(s derive.RunSummary) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar == nil {
		return
	}
	b.bar.Describe(ProgressLine(s))
	if err := b.bar.Set(s.Processed()); err != nil {
		logging.Debug("progress bar update failed: %v", err)
	}
}

// Finish completes the bar.
func (b *BarReporter) Finish(s derive.RunSummary) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar == nil {
		return
	}
	b.bar.Describe(ProgressLine(s))
	if err := b.bar.Finish(); err != nil {
		logging.Debug("progress bar finish failed: %v", err)
	}
	b.bar = nil
}
