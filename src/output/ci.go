package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// CI environment detection.

func IsCI() bool {
	return os.Getenv("CI") == "true"
}

func IsGitLabCI() bool {
	return os.Getenv("GITLAB_CI") == "true"
}

// GitLab collapsible section helpers.

func SectionStart(w io.Writer, id, name string) {
	if !IsGitLabCI() {
		return
	}
	fmt.Fprintf(w, "\033[0Ksection_start:%d:%s\r\033[0K%s\n", time.Now().Unix(), id, name)
}

func SectionEnd(w io.Writer, id string) {
	if !IsGitLabCI() {
		return
	}
	fmt.Fprintf(w, "\033[0Ksection_end:%d:%s\r\033[0K\n", time.Now().Unix(), id)
}

// BuildContext returns the key-value pairs describing the build being
// resolved, for ContextBlock. Empty values are left out.
func BuildContext(kv ...KV) []KV {
	var out []KV
	for _, p := range kv {
		if p.Value != "" {
			out = append(out, p)
		}
	}
	if sha := os.Getenv("CI_COMMIT_SHORT_SHA"); sha != "" {
		out = append(out, KV{Key: "commit", Value: sha})
	}
	if pipe := os.Getenv("CI_PIPELINE_ID"); pipe != "" {
		out = append(out, KV{Key: "pipeline", Value: pipe})
	}
	return out
}

// PhaseResult prints a compact single-line phase summary.
func PhaseResult(w io.Writer, name string, status Status, detail string, elapsed time.Duration, color bool) {
	detail = strings.TrimSpace(detail)
	fmt.Fprintf(w, "  %-16s %s  %-44s (%s)\n", name, StatusIcon(status, color), detail, elapsed.Round(time.Millisecond))
}
