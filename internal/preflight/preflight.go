package preflight

import (
	"strings"

	"marquee/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the local filesystem and configuration checks for cfg.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReadableDirectory("Video directory", cfg.Paths.VideoDir),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
	}
	// Log directory (when configured)
	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckDeckFile(cfg.Paths.DeckFile), CheckAdminPassword(cfg.Admin.Password))
	return results
}

// Failed returns only the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
