package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"sportanalyzer/internal/config"
)

// Requirement defines an external binary sportanalyzer runs.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Requirement
	Available bool
	// Path is the resolved executable when Available.
	Path   string
	Detail string
}

// Requirements lists the binaries cfg refers to.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	return []Requirement{
		{
			Name:        "mpv",
			Command:     cfg.Player.Binary,
			Description: "media engine used by `sportanalyzer play`",
		},
		{
			Name:        "ffprobe",
			Command:     cfg.Analysis.ProbeBinary,
			Description: "estimates the sampled frame count before upload",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		status := Status{Requirement: req}
		if req.Command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(req.Command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", req.Command)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the required dependencies that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
