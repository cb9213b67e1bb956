// Package pipeline drives a derivative run over a source directory.
//
// Runner.Run validates the source directory, creates the min and mid output
// directories, enumerates recognized images (jpg, jpeg, png, webp, gif, tiff,
// case-insensitive, non-recursive) and expands every file into a MIN and a
// MID task. Tasks are submitted to a bounded Scheduler in batches of
// PoolSize*BatchMultiplier; batch N+1 is only submitted once every result of
// batch N has been folded into the RunSummary, which bounds peak memory to
// one batch.
//
// Setup problems (missing source directory, mkdir or enumeration failures)
// and scheduler faults are returned as errors and abort the run. Per-task
// failures never are: they arrive as derive.OutcomeFailed results and are
// counted.
//
// Cancellation is checked between batches only; a batch that has been
// submitted always runs to completion.
package pipeline
