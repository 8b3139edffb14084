// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-book2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser launch and connection errors.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	sandboxOff := os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_NO_SANDBOX") == "true"
	if (inCI || IsInContainer()) && !sandboxOff {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about raising timeouts for slow sites.
func ForTimeout() string {
	return format("for slow sites, raise --timeout or --render-timeout")
}

// ForNetwork returns a hint for chapter download failures against baseURL.
func ForNetwork(baseURL string) string {
	if baseURL == "" {
		return format("check network access to the book site")
	}
	return format("check network access to " + baseURL + " or pass --base-url")
}

// ForEmptyTOC returns a hint when no chapter links were found.
func ForEmptyTOC(domain string) string {
	hint := "the table of contents needs markdown links such as [Intro](intro.html)"
	if domain != "" {
		hint += "; links must end in .html or point at " + domain
	}
	return format(hint)
}

// ForConfigNotFound suggests --config and the user config location that was searched.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	userDir := filepath.Join(".config", "go-book2pdf")
	for _, p := range searchedPaths {
		if strings.Contains(p, userDir) {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
