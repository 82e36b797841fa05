package ecommerce

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"github.com/invsync/backend/internal/domain/integration"
)

// ImageStager stores an image and returns a URL the platform can fetch it from
type ImageStager interface {
	StageImage(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// stageDataURL decodes an inline data URL and stages it under a key scoped to the remote product.
// Non data URLs are returned unchanged.
func stageDataURL(ctx context.Context, stager ImageStager, prefix string, img integration.ImageUpload) (string, error) {
	if stager == nil || !img.IsDataURL() {
		return img.Source, nil
	}
	payload, err := img.Base64Payload()
	if err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", integration.ErrInvalidImagePayload, err)
	}
	key := path.Join(prefix, fmt.Sprintf("%d-%s", img.Position, sanitizeFilename(img.Filename)))
	return stager.StageImage(ctx, key, img.ContentType(), data)
}

func sanitizeFilename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}
