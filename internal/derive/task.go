package derive

import (
	"fmt"
	"path/filepath"
	"time"

	"photo-pipeline/internal/mediatypes"
)

// Variant names a derivative kind. The value doubles as a metrics label.
type Variant string

const (
	// VariantMin is the fixed-width thumbnail.
	VariantMin Variant = "min"
	// VariantMid keeps the original dimensions and only re-encodes.
	VariantMid Variant = "mid"
)

// Variants lists every variant in expansion order.
var Variants = []Variant{VariantMin, VariantMid}

// Task is one (source file, variant) unit of work.
type Task struct {
	SourcePath string
	Variant    Variant
	SourceDir  string
	OutputDir  string
}

// File returns the source file's base name, used in logs and results.
func (t Task) File() string {
	return filepath.Base(t.SourcePath)
}

// Destination is OutputDir joined with the source base name, extension
// replaced by .webp.
func (t Task) Destination() string {
	return filepath.Join(t.OutputDir, mediatypes.DerivativeName(t.SourcePath))
}

// ExpandTasks returns the MIN then MID task for each name, in order. Names
// are relative to sourceDir.
func ExpandTasks(sourceDir, minDir, midDir string, names []string) []Task {
	tasks := make([]Task, 0, len(names)*len(Variants))
	for _, name := range names {
		src := filepath.Join(sourceDir, name)
		tasks = append(tasks,
			Task{SourcePath: src, Variant: VariantMin, SourceDir: sourceDir, OutputDir: minDir},
			Task{SourcePath: src, Variant: VariantMid, SourceDir: sourceDir, OutputDir: midDir},
		)
	}
	return tasks
}

// Outcome is the result kind of a task.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Result is the single outcome of one Task. Error is set only for
// OutcomeFailed.
type Result struct {
	File     string
	Variant  Variant
	Outcome  Outcome
	Error    string
	Bytes    int
	Duration time.Duration
}

// Skipped reports that the task's destination already existed.
func Skipped(t Task) Result {
	return Result{File: t.File(), Variant: t.Variant, Outcome: OutcomeSkipped}
}

// Succeeded reports a derivative of n bytes written to disk.
func Succeeded(t Task, n int) Result {
	return Result{File: t.File(), Variant: t.Variant, Outcome: OutcomeSucceeded, Bytes: n}
}

// Failed reports a task that could not be completed.
func Failed(t Task, err error) Result {
	return Result{File: t.File(), Variant: t.Variant, Outcome: OutcomeFailed, Error: err.Error()}
}

// Recovered converts a panic value caught while running t into a Failed
// result. It matches the recover hook signature of pool.New.
func Recovered(t Task, r any) Result {
	return Failed(t, fmt.Errorf("panic: %v", r))
}

// RunSummary aggregates results for one pipeline run. Total is fixed up
// front; the other counters grow as results are folded in.
type RunSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Add folds one result into the summary.
func (s *RunSummary) Add(r Result) {
	switch r.Outcome {
	case OutcomeSucceeded:
		s.Succeeded++
	case OutcomeSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

// Processed is the number of results folded so far.
func (s RunSummary) Processed() int {
	return s.Succeeded + s.Skipped + s.Failed
}

// Complete reports whether every task has a result.
func (s RunSummary) Complete() bool {
	return s.Processed() == s.Total
}

// Percent returns processed/total as a percentage. An empty run is 100%.
func (s RunSummary) Percent() float64 {
	if s.Total == 0 {
		return 100
	}
	return float64(s.Processed()) / float64(s.Total) * 100
}

func (s RunSummary) String() string {
	return fmt.Sprintf("total=%d succeeded=%d skipped=%d failed=%d", s.Total, s.Succeeded, s.Skipped, s.Failed)
}
