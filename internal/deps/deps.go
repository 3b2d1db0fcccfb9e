// Package deps reports the availability of the external binaries mosaic can
// take advantage of. Both are optional: a missing ffmpeg disables poster
// thumbnails and a missing ffprobe disables the media catalog, each with a
// startup warning rather than an error.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"mosaic/internal/config"
)

// Requirement defines an external dependency mosaic relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency. Command holds the
// resolved path when the binary was found, the configured name otherwise.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckSystemDeps evaluates the binaries the config points at.
func CheckSystemDeps(cfg *config.Config) []Status {
	return CheckBinaries([]Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Generates first-frame poster thumbnails",
			Optional:    true,
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Reads stream metadata for the media catalog",
			Optional:    true,
		},
	})
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}
