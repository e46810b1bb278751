package gemini

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

const (
	multimodalPrefix = "gemini"
	imageAspectRatio = "3:4"
	imageOutputMIME  = "image/jpeg"
	imagesPerRequest = 1
	imageFilePattern = "image_%d_%d%s"
	defaultImageExt  = ".jpg"
	imageDirPerm     = 0o750
	imageFilePerm    = 0o600
)

// IsMultimodalModel reports whether model produces images through the
// content endpoint rather than the dedicated image endpoint.
func IsMultimodalModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), multimodalPrefix)
}

// GenerateImage requests one image and writes it into req.OutputDir. Every
// failure is returned as an error for the caller to log and skip.
func (c *Client) GenerateImage(ctx context.Context, req api.ImageRequest) (string, error) {
	var (
		data []byte
		mime string
		err  error
	)
	if IsMultimodalModel(req.Model) {
		data, mime, err = c.multimodalImage(ctx, req)
	} else {
		data, mime, err = c.dedicatedImage(ctx, req)
	}
	if err != nil {
		return "", fmt.Errorf("image %d with %s: %w", req.Index+1, req.Model, err)
	}

	path, err := c.writeImage(req, data, mime)
	if err != nil {
		return "", fmt.Errorf("image %d: %w", req.Index+1, err)
	}
	return path, nil
}

func (c *Client) multimodalImage(ctx context.Context, req api.ImageRequest) ([]byte, string, error) {
	resp, err := c.models.GenerateContent(ctx, req.Model, userContent(req.Prompt, req.References), &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityText), string(genai.ModalityImage)},
	})
	if err != nil {
		return nil, "", err
	}

	if len(resp.Candidates) == 0 {
		return nil, "", fmt.Errorf("%w: no candidates", api.ErrNoImage)
	}
	cand := resp.Candidates[0]
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, part.InlineData.MIMEType, nil
			}
		}
	}

	err = fmt.Errorf("%w (finish reason %q)", api.ErrNoImage, cand.FinishReason)
	if cand.FinishMessage != "" {
		err = fmt.Errorf("%w: %s", err, cand.FinishMessage)
	}
	if text := strings.TrimSpace(resp.Text()); text != "" {
		err = fmt.Errorf("%w: model said %q", err, snippet(text))
	}
	return nil, "", err
}

func (c *Client) dedicatedImage(ctx context.Context, req api.ImageRequest) ([]byte, string, error) {
	resp, err := c.models.GenerateImages(ctx, req.Model, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: imagesPerRequest,
		AspectRatio:    imageAspectRatio,
		OutputMIMEType: imageOutputMIME,
	})
	if err != nil {
		return nil, "", err
	}

	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0] == nil {
		return nil, "", api.ErrNoImage
	}
	img := resp.GeneratedImages[0]
	if img.Image == nil || len(img.Image.ImageBytes) == 0 {
		if img.RAIFilteredReason != "" {
			return nil, "", fmt.Errorf("%w (filtered: %s)", api.ErrNoImage, img.RAIFilteredReason)
		}
		return nil, "", api.ErrNoImage
	}

	mime := img.Image.MIMEType
	if mime == "" {
		mime = imageOutputMIME
	}
	return img.Image.ImageBytes, mime, nil
}

func (c *Client) writeImage(req api.ImageRequest, data []byte, mime string) (string, error) {
	if err := os.MkdirAll(req.OutputDir, imageDirPerm); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	name := fmt.Sprintf(imageFilePattern, req.Index+1, c.now().UnixMilli(), extensionFor(mime))
	path := filepath.Join(req.OutputDir, name)
	if err := os.WriteFile(path, data, imageFilePerm); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func extensionFor(mime string) string {
	switch strings.ToLower(mime) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return defaultImageExt
	}
}
