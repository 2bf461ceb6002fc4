package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aduo2233/FileComparator/internal/config"
)

const BaseDirName = "FileComparator"

func EnsureDefault() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return EnsureAt(filepath.Join(home, BaseDirName))
}

func EnsureAt(base string) (string, error) {
	paths := []string{
		config.Dir(base),
		filepath.Join(base, "cache"),
		filepath.Join(base, "reports"),
	}

	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", p, err)
		}
	}

	if _, err := config.WriteDefaults(base); err != nil {
		return "", err
	}
	return base, nil
}

// ReportPath names an exported report for a run inside the workspace.
func ReportPath(root, runID, ext string) string {
	name := sanitizeForFilename(runID)
	if name == "" {
		name = "report"
	}
	return filepath.Join(root, "reports", name+"."+strings.TrimPrefix(ext, "."))
}

func sanitizeForFilename(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return out
}
