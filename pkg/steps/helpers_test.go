package steps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

// writeTestFile writes content to a file in dir, failing the test on error.
func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// newTestContext returns a context for a template rooted at a fresh temp dir.
func newTestContext(t *testing.T) (*api.Context, string) {
	t.Helper()
	dir := t.TempDir()
	in := api.Input{Topic: "Tea", Style: api.StyleProfessional}.WithDefaults()
	return api.NewContext(in, &api.Template{ID: "t", BaseDir: dir}), dir
}
