package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, kind := range []string{"image", "video", "unsupported"} {
		for _, outcome := range []string{"accepted", "unsupported", "unreadable"} {
			IngestInputsTotal.WithLabelValues(kind, outcome)
		}
	}

	for _, outcome := range []string{"removed", "missing", "error"} {
		DeletesTotal.WithLabelValues(outcome)
	}

	for _, op := range []string{"get", "set", "delete"} {
		KVQueryTotal.WithLabelValues(op, "success")
		KVQueryTotal.WithLabelValues(op, "error")
		KVQueryDuration.WithLabelValues(op)
	}

	for _, op := range []string{"stat", "open"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
	}
}
