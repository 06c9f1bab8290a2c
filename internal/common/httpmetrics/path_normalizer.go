package httpmetrics

import "strings"

var knownRoots = map[string]bool{
	"auth":    true,
	"users":   true,
	"health":  true,
	"metrics": true,
}

// Segments under /users/ that name a route rather than an account.
var userRoutes = map[string]bool{
	"me":              true,
	"change-password": true,
}

// NormalizePath maps a request path to a bounded label. Account ids under
// /users/ become {id} whether or not they parse, and paths outside the
// served roots share one label.
func NormalizePath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}

	parts := strings.Split(trimmed, "/")
	if !knownRoots[parts[0]] {
		return "/{unknown}"
	}
	if parts[0] == "users" && len(parts) > 1 && !userRoutes[parts[1]] {
		parts[1] = "{id}"
	}
	return "/" + strings.Join(parts, "/")
}
