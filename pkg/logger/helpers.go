package logger

// LogAccountScrape logs the outcome of one processed account. This is the
// per-username status line surfaced during a run.
func LogAccountScrape(username string, postCount int, success bool, err error) {
	fields := map[string]interface{}{
		"username":   username,
		"post_count": postCount,
		"success":    success,
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	if success {
		GetLogger().InfoWithFields("account scraped", fields)
	} else {
		GetLogger().ErrorWithFields("account scrape failed", fields)
	}
}

// LogRateLimit logs that request pacing kicked in for a resource
func LogRateLimit(resource string, waitSeconds float64) {
	GetLogger().WarnWithFields("rate limit reached", map[string]interface{}{
		"resource":     resource,
		"wait_seconds": waitSeconds,
	})
}

// LogArtifactWrite logs a persisted output artifact
func LogArtifactWrite(username, path string, err error) {
	fields := map[string]interface{}{
		"username": username,
		"path":     path,
	}
	if err != nil {
		fields["error"] = err.Error()
		GetLogger().ErrorWithFields("failed to write artifact", fields)
		return
	}
	GetLogger().DebugWithFields("artifact written", fields)
}
