package localization

import (
	"civictriage/backend/internal/models"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLocales(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"),
		[]byte(`{"error.title_required": "Please enter a title.", "error.not_found": "Not found."}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uk.json"),
		[]byte(`{"error.title_required": "Будь ласка, вкажіть заголовок."}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))
	return dir
}

func TestGetString(t *testing.T) {
	l, err := NewLocalizer(writeLocales(t))
	require.NoError(t, err)

	assert.Equal(t, "Будь ласка, вкажіть заголовок.", l.GetString("uk", "error.title_required"))
	assert.Equal(t, "Not found.", l.GetString("uk", "error.not_found"), "falls back to English")
	assert.Equal(t, "error.unknown", l.GetString("en", "error.unknown"))
}

func TestMessage(t *testing.T) {
	l, err := NewLocalizer(writeLocales(t))
	require.NoError(t, err)

	known := models.NewValidationError("title", "error.title_required", "title is required")
	assert.Equal(t, "Please enter a title.", l.Message("en", known))

	untranslated := models.NewValidationError("files", "error.file_type", "bad type")
	assert.Equal(t, "bad type", l.Message("uk", untranslated))
}

func TestNilLocalizer(t *testing.T) {
	var l *Localizer
	verr := models.NewValidationError("title", "error.title_required", "title is required")

	assert.Equal(t, "title is required", l.Message("uk", verr))
	assert.Equal(t, "en", l.Match("uk"))
}

func TestMatch(t *testing.T) {
	l, err := NewLocalizer(writeLocales(t))
	require.NoError(t, err)

	assert.Equal(t, "uk", l.Match("uk-UA,uk;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", l.Match("en-GB"))
	assert.Equal(t, "en", l.Match("fr-FR"))
	assert.Equal(t, "en", l.Match(""))
}

func TestNewLocalizer_MissingDirectory(t *testing.T) {
	_, err := NewLocalizer(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNewLocalizer_BadJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte("{"), 0o644))

	_, err := NewLocalizer(dir)
	assert.ErrorContains(t, err, "en.json")
}

func TestBundledLocalesShareKeys(t *testing.T) {
	l, err := NewLocalizer(".")
	require.NoError(t, err)

	require.Contains(t, l.translations, "en")
	require.Contains(t, l.translations, "uk")
	for key := range l.translations["en"] {
		assert.Contains(t, l.translations["uk"], key)
	}
}
