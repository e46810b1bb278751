package processing

import (
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

// LoadReferenceImages reads every path once. Images that cannot be loaded
// are logged and dropped.
func LoadReferenceImages(paths []string, log *slog.Logger) []api.ReferenceImage {
	refs := make([]api.ReferenceImage, 0, len(paths))
	for _, p := range paths {
		ref, err := LoadReferenceImage(p)
		if err != nil {
			log.Warn("skipping reference image", "path", p, "error", err)
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

// LoadReferenceImage reads an image file. The MIME type comes from the file
// extension, falling back to content sniffing.
func LoadReferenceImage(path string) (api.ReferenceImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.ReferenceImage{}, fmt.Errorf("reading reference image: %w", err)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mediaType
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return api.ReferenceImage{}, fmt.Errorf("%s is %s, not an image", path, mimeType)
	}

	return api.ReferenceImage{Path: path, MIMEType: mimeType, Data: data}, nil
}
