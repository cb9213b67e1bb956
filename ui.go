package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"photo-pipeline/internal/derive"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"golang.org/x/term"
)

type ui struct {
	title func(a ...any) string
	ok    func(a ...any) string
	info  func(a ...any) string
	warn  func(a ...any) string
	err   func(a ...any) string
	dim   func(a ...any) string
}

func newUI() *ui {
	return &ui{
		title: color.New(color.FgHiCyan, color.Bold).SprintFunc(),
		ok:    color.New(color.FgGreen, color.Bold).SprintFunc(),
		info:  color.New(color.FgCyan).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
		err:   color.New(color.FgRed, color.Bold).SprintFunc(),
		dim:   color.New(color.FgHiBlack).SprintFunc(),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// startSpinner shows a spinner on w when it is a terminal. The returned
// function stops it.
func startSpinner(w io.Writer, suffix string) func() {
	if !isTerminal(w) {
		return func() {}
	}
	spin := spinner.New(spinner.CharSets[14], 120*time.Millisecond, spinner.WithWriter(w))
	spin.Suffix = " " + suffix
	spin.Start()
	return spin.Stop
}

// printRunResult prints the summary unless the run failed before any task
// was planned, in which case the error line is the whole report.
func (u *ui) printRunResult(w io.Writer, s derive.RunSummary, elapsed time.Duration, runErr error) {
	if runErr != nil && s.Total == 0 {
		return
	}
	u.printRunSummary(w, s, elapsed)
}

func (u *ui) printRunSummary(w io.Writer, s derive.RunSummary, elapsed time.Duration) {
	_, _ = fmt.Fprintln(w, u.title("Derivatives"))
	_, _ = fmt.Fprintf(w, "  total:      %d\n", s.Total)
	_, _ = fmt.Fprintf(w, "  succeeded:  %s\n", u.ok(s.Succeeded))
	_, _ = fmt.Fprintf(w, "  skipped:    %s\n", u.dim(s.Skipped))
	failed := fmt.Sprint(s.Failed)
	if s.Failed > 0 {
		failed = u.err(s.Failed)
	}
	_, _ = fmt.Fprintf(w, "  failed:     %s\n", failed)
	_, _ = fmt.Fprintf(w, "  elapsed:    %s\n", u.dim(elapsed.Round(time.Millisecond)))
	if s.Failed > 0 {
		_, _ = fmt.Fprintf(w, "%s %d file(s) failed, see the log above\n", u.warn("[WARN]"), s.Failed)
	}
}

func (u *ui) printCatalogSummary(w io.Writer, n int, path string, elapsed time.Duration) {
	_, _ = fmt.Fprintln(w, u.title("Catalog"))
	if n == 0 {
		_, _ = fmt.Fprintf(w, "  %s no images found, %s not written\n", u.warn("[WARN]"), path)
		return
	}
	_, _ = fmt.Fprintf(w, "  %s %d entries written to %s\n", u.ok("[OK]"), n, u.info(path))
	_, _ = fmt.Fprintf(w, "  elapsed:    %s\n", u.dim(elapsed.Round(time.Millisecond)))
}
