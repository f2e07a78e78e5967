// Package localization provides functionality for internationalization (i18n).
// It loads translation strings from JSON files and resolves validation messages
// for the language a client asks for.
package localization

import (
	"civictriage/backend/internal/models"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

const defaultLang = "en"

// Localizer manages the translations for the application.
// It holds a map of languages, each with its own map of translation keys and values.
type Localizer struct {
	translations map[string]map[string]string
	matcher      language.Matcher
	tags         []language.Tag
	mu           sync.RWMutex
}

// NewLocalizer creates and returns a new Localizer instance.
// The directory should contain JSON files named with the language code (e.g., "en.json").
func NewLocalizer(path string) (*Localizer, error) {
	l := &Localizer{
		translations: make(map[string]map[string]string),
	}

	files, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		lang := strings.TrimSuffix(file.Name(), ".json")
		data, err := os.ReadFile(filepath.Join(path, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}

		l.translations[lang] = translations
	}

	l.buildMatcher()
	return l, nil
}

// buildMatcher puts English first so it wins when nothing else matches.
func (l *Localizer) buildMatcher() {
	langs := make([]string, 0, len(l.translations))
	for lang := range l.translations {
		if lang != defaultLang {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)

	l.tags = []language.Tag{language.English}
	for _, lang := range langs {
		tag, err := language.Parse(lang)
		if err != nil {
			continue
		}
		l.tags = append(l.tags, tag)
	}
	l.matcher = language.NewMatcher(l.tags)
}

// Match picks the best loaded language for an Accept-Language header value.
func (l *Localizer) Match(acceptLanguage string) string {
	if l == nil || l.matcher == nil || acceptLanguage == "" {
		return defaultLang
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return defaultLang
	}
	_, idx, _ := l.matcher.Match(prefs...)
	base, _ := l.tags[idx].Base()
	return base.String()
}

// GetString returns the localized string for a given key and language.
// If the language or the key is not found, it returns the key itself as a fallback.
func (l *Localizer) GetString(lang, key string) string {
	if l == nil {
		return key
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	if langTranslations, ok := l.translations[lang]; ok {
		if value, ok := langTranslations[key]; ok {
			return value
		}
	}

	// Fallback to a default language if the key is not found in the specified language
	if lang != defaultLang {
		if enTranslations, ok := l.translations[defaultLang]; ok {
			if value, ok := enTranslations[key]; ok {
				return value
			}
		}
	}

	return key
}

// Message renders a validation error for lang, falling back to its English message
// when no translation exists for its key.
func (l *Localizer) Message(lang string, verr *models.ValidationError) string {
	if verr.Key == "" {
		return verr.Message
	}
	if msg := l.GetString(lang, verr.Key); msg != verr.Key {
		return msg
	}
	return verr.Message
}
