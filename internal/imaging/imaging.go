// Package imaging validates uploaded pictures and shrinks them before storage.
package imaging

import (
	"bytes"
	"civictriage/backend/internal/config"
	"civictriage/backend/internal/models"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// AcceptedTypes may be uploaded. AVIF passes validation but cannot be re-encoded.
var AcceptedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/avif"}

// passThroughTypes are stored as-is when already under the target size.
var passThroughTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// File is one uploaded picture.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Result mirrors what the upload form reports back to the citizen.
type Result struct {
	File           File
	OriginalSize   int
	CompressedSize int
	WasCompressed  bool
}

// Detect sniffs the content type from the bytes, without parameters.
func Detect(data []byte) string {
	ct := mimetype.Detect(data).String()
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// Validate rejects unsupported types and files over 10MB.
func Validate(size int64, contentType string) error {
	accepted := false
	for _, t := range AcceptedTypes {
		if t == contentType {
			accepted = true
			break
		}
	}
	if !accepted {
		return models.NewValidationError("files", "error.file_type",
			"Invalid file type. Please upload JPEG, PNG, GIF, WEBP, or AVIF images.")
	}
	if size > config.MaxUploadBytes {
		return models.NewValidationError("files", "error.file_too_large",
			"File is too large. Maximum size is 10MB.")
	}
	return nil
}

// Normalize returns small files of a common type untouched. Anything else is decoded,
// scaled to fit 1920x1080 and re-encoded as JPEG at falling quality until it fits 1MB
// or the attempts run out.
func Normalize(f File, now time.Time) (Result, error) {
	if f.ContentType == "" {
		f.ContentType = Detect(f.Data)
	}
	originalSize := len(f.Data)

	if ext, ok := passThroughTypes[f.ContentType]; ok && originalSize <= config.TargetImageBytes {
		f.Name = SanitizeFileName(f.Name, ext, now)
		return Result{File: f, OriginalSize: originalSize, CompressedSize: originalSize}, nil
	}

	orientation := 1
	if f.ContentType == "image/jpeg" {
		orientation = Orientation(f.Data)
	}

	img, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return Result{}, fmt.Errorf("failed to decode image: %w", err)
	}
	img = Orient(img, orientation)

	bounds := img.Bounds()
	width, height := FitWithin(bounds.Dx(), bounds.Dy(), config.MaxImageWidth, config.MaxImageHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	out, quality, err := encode(dst, config.TargetImageBytes)
	if err != nil {
		return Result{}, err
	}

	log.WithFields(log.Fields{
		"name":        f.Name,
		"original":    originalSize,
		"compressed":  len(out),
		"quality":     quality,
		"width":       width,
		"height":      height,
		"orientation": orientation,
	}).Info("image compressed")

	return Result{
		File: File{
			Name:        SanitizeFileName(f.Name, "jpg", now),
			ContentType: "image/jpeg",
			Data:        out,
		},
		OriginalSize:   originalSize,
		CompressedSize: len(out),
		WasCompressed:  true,
	}, nil
}

// encode re-encodes img as JPEG, lowering the quality until the output fits target
// or the attempts run out. The returned quality is the one the bytes were encoded at.
func encode(img image.Image, target int) ([]byte, int, error) {
	var buf bytes.Buffer
	quality := config.InitialJPEGQuality
	for attempt := 1; ; attempt++ {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, 0, fmt.Errorf("failed to encode compressed image: %w", err)
		}
		if buf.Len() <= target || attempt >= config.MaxEncodeAttempts ||
			quality-config.JPEGQualityStep < config.MinJPEGQuality {
			return buf.Bytes(), quality, nil
		}
		quality -= config.JPEGQualityStep
	}
}

// FitWithin scales width and height down to fit the box, preserving aspect ratio.
// Dimensions already inside the box are returned unchanged.
func FitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	var w, h int
	if width*maxHeight > height*maxWidth {
		w, h = maxWidth, height*maxWidth/width
	} else {
		w, h = width*maxHeight/height, maxHeight
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

var (
	nonAlnum   = regexp.MustCompile(`[^a-zA-Z0-9]`)
	underscore = regexp.MustCompile(`_+`)
)

// SanitizeFileName keeps only ASCII letters and digits from the base name, joined by
// single underscores, and appends ext. An empty result falls back to image_<millis>.
func SanitizeFileName(name, ext string, now time.Time) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = nonAlnum.ReplaceAllString(base, "_")
	base = underscore.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_")
	if base == "" {
		base = fmt.Sprintf("image_%d", now.UnixMilli())
	}
	return base + "." + ext
}
