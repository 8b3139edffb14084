package main

// Notes:
// - Chrome detection depends on the host; tests only assert on the parts
//   that do not, such as JSON shape and site checks.
// - TestIsContainer and TestRunDoctorCmd_JSON call t.Setenv and are not
//   parallel.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-book2pdf/internal/fetch"
)

// ---------------------------------------------------------------------------
// TestCheckSite - Book site reachability
// ---------------------------------------------------------------------------

func TestCheckSite(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/en/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "<html>index</html>")
	}))
	t.Cleanup(srv.Close)

	client := fetch.New(5 * time.Second)

	t.Run("reachable", func(t *testing.T) {
		t.Parallel()

		result := &doctorResult{}
		checkSite(context.Background(), result, client, srv.URL+"/en/")
		if result.Site == nil || !result.Site.Reachable || result.Site.Bytes != len("<html>index</html>") {
			t.Errorf("Site = %+v", result.Site)
		}
		if len(result.Warnings) != 0 {
			t.Errorf("Warnings = %v", result.Warnings)
		}
	})

	t.Run("not found is a warning", func(t *testing.T) {
		t.Parallel()

		result := &doctorResult{}
		checkSite(context.Background(), result, client, srv.URL+"/fr/")
		if result.Site == nil || result.Site.Reachable {
			t.Errorf("Site = %+v, want unreachable", result.Site)
		}
		if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "404") {
			t.Errorf("Warnings = %v", result.Warnings)
		}
		if len(result.Errors) != 0 {
			t.Errorf("Errors = %v, site failures must not be errors", result.Errors)
		}
	})
}

// ---------------------------------------------------------------------------
// TestIsContainer - Container detection
// ---------------------------------------------------------------------------

func TestIsContainer(t *testing.T) {
	t.Setenv("BOOK2PDF_CONTAINER", "1")

	got, hint := isContainer()
	if !got || hint != "BOOK2PDF_CONTAINER=1" {
		t.Errorf("isContainer() = %v, %q", got, hint)
	}
}

func TestCheckEnvironment_SandboxWarning(t *testing.T) {
	t.Setenv("BOOK2PDF_CONTAINER", "1")
	t.Setenv("CI", "")

	result := &doctorResult{}
	checkEnvironment(result)
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "ROD_NO_SANDBOX") {
		t.Errorf("Warnings = %v", result.Warnings)
	}

	result = &doctorResult{Env: envInfo{NoSandbox: "1"}}
	checkEnvironment(result)
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none with sandbox disabled", result.Warnings)
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd - Output formats
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_JSON(t *testing.T) {
	t.Setenv("BOOK2PDF_CONTAINER", "")

	env, stdout, _ := testEnv(nil)
	code := runDoctorCmd([]string{"--offline", "--json"}, env)
	if code != ExitSuccess && code != ExitGeneral {
		t.Fatalf("runDoctorCmd() = %d", code)
	}

	var result doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if result.Site != nil {
		t.Errorf("Site = %+v, --offline must skip the site check", result.Site)
	}
	if result.Env.Workers < 1 || result.Env.Workers > 8 {
		t.Errorf("Workers = %d, want within [1,8]", result.Env.Workers)
	}
	if (code == ExitGeneral) != (result.Status == statusErrors) {
		t.Errorf("exit %d with status %q", code, result.Status)
	}
}

func TestRunDoctorCmd_BadFlag(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(nil)
	if code := runDoctorCmd([]string{"--colour"}, env); code != ExitUsage {
		t.Errorf("runDoctorCmd() = %d, want ExitUsage", code)
	}
}

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *doctorResult
		want   []string
	}{
		{
			name: "ready",
			result: &doctorResult{
				Status: statusReady,
				Chrome: chromeInfo{Found: true, Path: "/usr/bin/chromium", Version: "Chromium 120", Sandbox: true},
				Env:    envInfo{OS: "linux", Arch: "amd64", Workers: 4},
				System: systemInfo{TempWritable: true},
				Site:   &siteInfo{URL: "https://aosabook.org/en/", Reachable: true, Bytes: 2048},
			},
			want: []string{"[OK] Found at /usr/bin/chromium", "Sandbox: enabled", "Download workers: 4", "(2048 bytes)", "Status: Ready to build"},
		},
		{
			name: "errors",
			result: &doctorResult{
				Status: statusErrors,
				Env:    envInfo{OS: "linux", Arch: "arm64", Container: true, ContainerHint: "/.dockerenv"},
				Site:   &siteInfo{URL: "https://aosabook.org/en/"},
				Errors: []string{"Chrome/Chromium not found"},
			},
			want: []string{"[ERROR] Not found", "Container: detected (/.dockerenv)", "unreachable", "Temp directory: not writable", "Status: Not ready"},
		},
		{
			name:   "warnings",
			result: &doctorResult{Status: statusWarnings, Warnings: []string{"Could not get Chrome version"}},
			want:   []string{"[WARN] Could not get Chrome version", "Status: Ready with warnings"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			printDoctorResult(&buf, tt.result)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}
}
