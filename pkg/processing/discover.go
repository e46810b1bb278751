package processing

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

// DefaultTemplatesDir is scanned relative to the working directory.
const DefaultTemplatesDir = "templates"

const templateFilePattern = "*/proteus.{json,yaml,yml}"

// DiscoverTemplates loads <root>/<dir>/proteus.{json,yaml,yml}. A missing
// root yields no templates. Files that fail to load are logged and skipped.
func DiscoverTemplates(root string) ([]*api.Template, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path: %w", err)
	}

	st, err := os.Stat(absRoot)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checking templates directory: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", absRoot)
	}

	matches, err := doublestar.Glob(os.DirFS(absRoot), templateFilePattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", templateFilePattern, err)
	}

	templates := make([]*api.Template, 0, len(matches))
	for _, m := range matches {
		path := filepath.Join(absRoot, filepath.FromSlash(m))
		tmpl, err := api.LoadTemplate(path)
		if err != nil {
			slog.Warn("failed to load template", "path", path, "error", err)
			continue
		}
		slog.Debug("loaded template", "id", tmpl.ID, "path", path)
		templates = append(templates, tmpl)
	}
	return templates, nil
}
