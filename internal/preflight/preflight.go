package preflight

import (
	"context"

	"echosurvey/internal/config"
	"echosurvey/internal/survey"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for cfg. When surveyDir is set the
// survey root, its layout, and its free space are checked too.
func RunAll(ctx context.Context, cfg *config.Config, surveyDir string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Path}
		if !status.Available {
			result.Detail = status.Detail
		}
		results = append(results, result)
	}

	if cfg.Map.CoastlineGeoJSON != "" {
		results = append(results, CheckReadableFile("Coastline GeoJSON", cfg.Map.CoastlineGeoJSON))
	}
	if cfg.Map.ContoursGeoJSON != "" {
		results = append(results, CheckReadableFile("Contours GeoJSON", cfg.Map.ContoursGeoJSON))
	}

	if surveyDir == "" {
		return results
	}
	root := CheckDirectoryAccess("Survey root", surveyDir)
	results = append(results, root)
	if !root.Passed {
		return results
	}
	results = append(results, CheckLayout(survey.OpenLayout(cfg, surveyDir)))
	results = append(results, CheckFreeSpace(ctx, "Free space", surveyDir, cfg.Preflight.MinFreeGiB))
	return results
}

// Failed reports whether any check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
