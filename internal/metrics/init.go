package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
func InitializeMetrics() {
	for _, status := range []string{"success", "error"} {
		PipelineRunsTotal.WithLabelValues(status)
	}

	for _, variant := range []string{"min", "mid"} {
		for _, outcome := range []string{"succeeded", "skipped", "failed"} {
			PipelineTasksTotal.WithLabelValues(variant, outcome)
		}
		PipelineTaskDuration.WithLabelValues(variant)
		PipelineOutputBytes.WithLabelValues(variant)
	}

	for _, pool := range []string{"derive", "catalog"} {
		PoolWorkers.WithLabelValues(pool)
		PoolInFlight.WithLabelValues(pool)
		PoolTaskDuration.WithLabelValues(pool)
		PoolWorkersReclaimed.WithLabelValues(pool)
	}

	for _, stage := range []string{"stat", "decode", "exif", "colors", "write"} {
		CatalogErrorsTotal.WithLabelValues(stage)
	}

	volumes := []string{"source", "min", "mid", "catalog", "unknown"}
	for _, op := range []string{"stat", "open", "readdir", "write"} {
		for _, vol := range volumes {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}
}

// SetAppInfo records build information.
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
