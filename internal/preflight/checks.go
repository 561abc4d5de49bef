package preflight

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/disk"
	"golang.org/x/sys/unix"

	"echosurvey/internal/config"
	"echosurvey/internal/deps"
	"echosurvey/internal/survey"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckReadableFile verifies that a regular file exists and can be read.
func CheckReadableFile(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, humanize.IBytes(uint64(info.Size())))}
}

// CheckLayout verifies every survey subdirectory exists.
func CheckLayout(layout survey.Layout) Result {
	const name = "Survey layout"
	if err := layout.Check(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%v (run 'echosurvey init')", err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d directories present", len(layout.Dirs()))}
}

// CheckFreeSpace verifies at least minGiB are free on the filesystem holding path.
func CheckFreeSpace(ctx context.Context, name, path string, minGiB int) Result {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	detail := fmt.Sprintf("%s free of %s", humanize.IBytes(usage.Free), humanize.IBytes(usage.Total))
	if minGiB > 0 && usage.Free < uint64(minGiB)<<30 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (below %d GiB minimum)", detail, minGiB)}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSystemDeps evaluates the configured echosounder tools.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(Requirements(cfg))
}

// Requirements lists the external tools named by cfg.
func Requirements(cfg *config.Config) []deps.Requirement {
	return []deps.Requirement{
		{
			Name:        "Raw decoder",
			Command:     cfg.Tools.Convert,
			Description: "Required by convert",
		},
		{
			Name:        "Calibrator",
			Command:     cfg.Tools.Calibrate,
			Description: "Required by daily for echograms",
		},
		{
			Name:        "Inspector",
			Command:     cfg.Tools.Inspect,
			Description: "Required to read positions and metadata",
		},
	}
}
