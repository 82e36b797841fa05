package integration

import (
	"fmt"
	"strings"
)

// MaxImagesPerCollection caps the size and color image collections
const MaxImagesPerCollection = 3

// ImagePayload is an image as sent by the client: a data URL preview, optionally wrapped in a file
type ImagePayload struct {
	Preview     string
	FileName    string
	FilePreview string
}

// Source returns the preview, falling back to the file preview
func (p *ImagePayload) Source() string {
	if p == nil {
		return ""
	}
	if p.Preview != "" {
		return p.Preview
	}
	return p.FilePreview
}

// ImageSet groups the images of a listing
type ImageSet struct {
	Main  *ImagePayload
	Size  []*ImagePayload
	Color []*ImagePayload
}

// IsEmpty reports whether the set carries no usable image
func (s ImageSet) IsEmpty() bool {
	return len(SelectImages(s)) == 0
}

// ImageUpload is one image selected for upload
type ImageUpload struct {
	Source      string
	Filename    string
	Position    int
	IsThumbnail bool
}

// IsDataURL reports whether the source is an inline data URL
func (u ImageUpload) IsDataURL() bool {
	return strings.HasPrefix(u.Source, "data:")
}

// Base64Payload returns the part of a data URL after the first comma
func (u ImageUpload) Base64Payload() (string, error) {
	_, payload, ok := strings.Cut(u.Source, ",")
	if !ok || payload == "" {
		return "", fmt.Errorf("%w: %s is not a base64 data URL", ErrInvalidImagePayload, u.Filename)
	}
	return payload, nil
}

// ContentType returns the media type declared by a data URL, defaulting to image/png
func (u ImageUpload) ContentType() string {
	header, _, ok := strings.Cut(u.Source, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return "image/png"
	}
	mediaType, _, _ := strings.Cut(strings.TrimPrefix(header, "data:"), ";")
	if mediaType == "" {
		return "image/png"
	}
	return mediaType
}

// SelectImages picks the main image and at most MaxImagesPerCollection images from each of
// the size and color collections. Entries without a source are skipped.
// Positions: main is 1, size image i is i+2, color images follow the images selected so far.
func SelectImages(s ImageSet) []ImageUpload {
	var uploads []ImageUpload

	if src := s.Main.Source(); src != "" {
		uploads = append(uploads, ImageUpload{
			Source:      src,
			Filename:    filenameOr(s.Main, "image-1.png"),
			Position:    1,
			IsThumbnail: true,
		})
	}

	for i, img := range capped(s.Size) {
		if src := img.Source(); src != "" {
			uploads = append(uploads, ImageUpload{
				Source:   src,
				Filename: filenameOr(img, fmt.Sprintf("image-size-%d.png", i+1)),
				Position: i + 2,
			})
		}
	}

	for i, img := range capped(s.Color) {
		if src := img.Source(); src != "" {
			uploads = append(uploads, ImageUpload{
				Source:   src,
				Filename: filenameOr(img, fmt.Sprintf("image-color-%d.png", i+1)),
				Position: len(uploads) + 1,
			})
		}
	}
	return uploads
}

func capped(images []*ImagePayload) []*ImagePayload {
	if len(images) > MaxImagesPerCollection {
		return images[:MaxImagesPerCollection]
	}
	return images
}

func filenameOr(p *ImagePayload, fallback string) string {
	if p != nil && p.FileName != "" {
		return p.FileName
	}
	return fallback
}
