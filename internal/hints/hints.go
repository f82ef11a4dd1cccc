// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/derwolz/rebelreads-linkify/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForAddressInUse returns hints for listener bind errors.
// Inside a container a loopback address is unreachable from the host,
// so that case gets its own suggestion.
func ForAddressInUse(addr string) string {
	var hints []string

	if os.Getenv("LINKIFY_SERVER_ADDR") == "" {
		hints = append(hints, "use --addr or LINKIFY_SERVER_ADDR to pick another port")
	}
	if IsInContainer() && (strings.HasPrefix(addr, "127.0.0.1") || strings.HasPrefix(addr, "localhost")) {
		hints = append(hints, "bind :PORT instead of loopback inside a container")
	}

	return formatHints(hints)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config dir.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "/linkify/") || strings.Contains(p, "\\linkify\\") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForInvalidDomain returns a hint for rejected site domains.
func ForInvalidDomain() string {
	return format("domains are bare hosts like sirened.com, without scheme, port, or path")
}

// ForUnknownFormat returns hints listing the accepted output formats.
func ForUnknownFormat(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForInputTooLarge returns a hint for oversized input files.
func ForInputTooLarge() string {
	return format("raise site.maxMessageSize or use the batch command for many messages")
}

// ForBatchLine returns a hint describing the batch input line shape.
func ForBatchLine() string {
	return format(`each line must be a JSON object like {"id":"c1","message":"..."}`)
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
