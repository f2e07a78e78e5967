package imaging

import (
	"bytes"
	"civictriage/backend/internal/models"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

// createTestJPEG creates a small JPEG with a simple gradient.
func createTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8((x + y) % 256), G: uint8((x * 2) % 256), B: uint8((y * 2) % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// createNoisePNG creates a PNG that does not compress well, so it stays over 1MB.
func createNoisePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rng.Intn(256))
		img.Pix[i+1] = uint8(rng.Intn(256))
		img.Pix[i+2] = uint8(rng.Intn(256))
		img.Pix[i+3] = 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func createSolidPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 10, 120, 200, 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		size        int64
		contentType string
		wantKey     string
	}{
		{"jpeg", 2048, "image/jpeg", ""},
		{"avif is accepted", 2048, "image/avif", ""},
		{"exactly 10MB", 10 * 1024 * 1024, "image/png", ""},
		{"pdf rejected", 2048, "application/pdf", "error.file_type"},
		{"bmp rejected", 2048, "image/bmp", "error.file_type"},
		{"over 10MB", 10*1024*1024 + 1, "image/webp", "error.file_too_large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.size, tt.contentType)
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}
			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantKey, verr.Key)
			assert.Equal(t, "files", verr.Field)
		})
	}
}

func TestDetect(t *testing.T) {
	assert.Equal(t, "image/jpeg", Detect(createTestJPEG(t, 8, 8)))
	assert.Equal(t, "image/png", Detect(createSolidPNG(t, 8, 8)))
	assert.Equal(t, "text/plain", Detect([]byte("not an image")))
}

func TestNormalize_SmallFilePassesThrough(t *testing.T) {
	data := createTestJPEG(t, 120, 80)

	res, err := Normalize(File{Name: "My photo (1).jpeg", Data: data}, now)

	require.NoError(t, err)
	assert.False(t, res.WasCompressed)
	assert.Equal(t, data, res.File.Data)
	assert.Equal(t, "image/jpeg", res.File.ContentType)
	assert.Equal(t, "My_photo_1.jpg", res.File.Name)
	assert.Equal(t, len(data), res.CompressedSize)
}

func TestNormalize_SmallFileIgnoresDimensions(t *testing.T) {
	data := createSolidPNG(t, 4000, 100)
	require.Less(t, len(data), 1024*1024)

	res, err := Normalize(File{Name: "banner.png", Data: data}, now)

	require.NoError(t, err)
	assert.False(t, res.WasCompressed, "size and type alone decide pass-through")
	assert.Equal(t, "banner.png", res.File.Name)
}

func TestNormalize_LargeImageIsScaledAndReencoded(t *testing.T) {
	// Arrange
	data := createNoisePNG(t, 2400, 600)
	require.Greater(t, len(data), 1024*1024)

	// Act
	res, err := Normalize(File{Name: "pothole on Main St.png", Data: data}, now)

	// Assert
	require.NoError(t, err)
	assert.True(t, res.WasCompressed)
	assert.Equal(t, "image/jpeg", res.File.ContentType)
	assert.Equal(t, "pothole_on_Main_St.jpg", res.File.Name)
	assert.Equal(t, len(data), res.OriginalSize)
	assert.Equal(t, len(res.File.Data), res.CompressedSize)

	img, format, err := image.Decode(bytes.NewReader(res.File.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1920, img.Bounds().Dx())
	assert.Equal(t, 480, img.Bounds().Dy())
}

func TestNormalize_UndecodableImageFails(t *testing.T) {
	_, err := Normalize(File{Name: "x.avif", ContentType: "image/avif", Data: []byte("....ftypavif")}, now)

	assert.ErrorContains(t, err, "failed to decode image")
}

func TestEncode_ReportsQualityOfReturnedBytes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 37)
	}

	t.Run("fits on first attempt", func(t *testing.T) {
		out, quality, err := encode(img, 1<<20)
		require.NoError(t, err)
		assert.Equal(t, 80, quality)
		assertJPEGQuality(t, img, out, quality)
	})

	t.Run("never fits", func(t *testing.T) {
		out, quality, err := encode(img, 1)
		require.NoError(t, err)
		// 80, 70, 60, 50, 40: five attempts
		assert.Equal(t, 40, quality)
		assertJPEGQuality(t, img, out, quality)
	})
}

func assertJPEGQuality(t *testing.T, img image.Image, out []byte, quality int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}))
	assert.Equal(t, buf.Bytes(), out)
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{1920, 1080, 1920, 1080},
		{800, 600, 800, 600},
		{3840, 2160, 1920, 1080},
		{1000, 3000, 360, 1080},
		{4000, 100, 1920, 48},
		{2000, 1080, 1920, 1036},
		{100000, 1, 1920, 1},
	}
	for _, tt := range tests {
		w, h := FitWithin(tt.w, tt.h, 1920, 1080)
		assert.Equal(t, tt.wantW, w, "width for %dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantH, h, "height for %dx%d", tt.w, tt.h)
		assert.LessOrEqual(t, w, 1920)
		assert.LessOrEqual(t, h, 1080)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.jpg"},
		{"__weird   name!!.JPG", "weird_name.jpg"},
		{"фото.jpg", "image_1792054800000.jpg"},
		{"", "image_1792054800000.jpg"},
		{"archive.tar.gz", "archive_tar.jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFileName(tt.in, "jpg", now), "SanitizeFileName(%q)", tt.in)
	}
}

func TestOrient(t *testing.T) {
	// 3x2 image with a single red pixel in the top-left corner.
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	red := color.RGBA{R: 255, A: 255}

	tests := []struct {
		orientation int
		w, h        int
		x, y        int
	}{
		{1, 3, 2, 0, 0},
		{2, 3, 2, 2, 0},
		{3, 3, 2, 2, 1},
		{4, 3, 2, 0, 1},
		{5, 2, 3, 0, 0},
		{6, 2, 3, 1, 0},
		{7, 2, 3, 1, 2},
		{8, 2, 3, 0, 2},
	}
	for _, tt := range tests {
		out := Orient(src, tt.orientation)
		assert.Equal(t, tt.w, out.Bounds().Dx(), "orientation %d width", tt.orientation)
		assert.Equal(t, tt.h, out.Bounds().Dy(), "orientation %d height", tt.orientation)
		assert.Equal(t, red, color.RGBAModel.Convert(out.At(tt.x, tt.y)), "orientation %d corner", tt.orientation)
	}
}

func TestOrientation_DefaultsWithoutExif(t *testing.T) {
	assert.Equal(t, 1, Orientation(createTestJPEG(t, 4, 4)))
	assert.Equal(t, 1, Orientation([]byte("garbage")))
}
