// Package deps reports which backend helpers are installed.
package deps

import (
	"fmt"
	"os"
	"strings"

	"packagekit/internal/backend"
	"packagekit/internal/config"
)

// Requirement is one helper executable an operation needs.
type Requirement struct {
	Operation string
	Path      string
	// Optional marks helpers whose absence only disables one operation.
	Optional bool
}

// Status reports whether a helper can be executed.
type Status struct {
	Operation string
	Path      string
	Optional  bool
	Available bool
	Detail    string
}

// HelperRequirements lists the helper of every backend operation.
func HelperRequirements(cfg *config.Config) []Requirement {
	ops := backend.Operations()
	reqs := make([]Requirement, 0, len(ops))
	for _, op := range ops {
		reqs = append(reqs, Requirement{
			Operation: op.Name,
			Path:      cfg.HelperPath(op.Helper),
			Optional:  op.Name != "resolve" && op.Name != "get-updates",
		})
	}
	return reqs
}

// CheckHelpers stats each requirement and reports availability.
func CheckHelpers(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		path := strings.TrimSpace(req.Path)
		status := Status{
			Operation: req.Operation,
			Path:      path,
			Optional:  req.Optional,
		}
		switch info, err := os.Stat(path); {
		case path == "":
			status.Detail = "helper not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("helper %q not found", path)
		case info.IsDir():
			status.Detail = fmt.Sprintf("helper %q is a directory", path)
		case info.Mode().Perm()&0o111 == 0:
			status.Detail = fmt.Sprintf("helper %q is not executable", path)
		default:
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

// Missing counts unavailable helpers, split by whether they are optional.
func Missing(statuses []Status) (required, optional int) {
	for _, s := range statuses {
		if s.Available {
			continue
		}
		if s.Optional {
			optional++
		} else {
			required++
		}
	}
	return required, optional
}
