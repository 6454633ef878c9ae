package state

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/example/vehicore/models"
	"github.com/example/vehicore/validation"
)

// SupportedLanguages are the UI languages, default first.
var SupportedLanguages = []language.Tag{language.English, language.French, language.German}

var languageMatcher = language.NewMatcher(SupportedLanguages)

// MatchLanguage picks the best supported language for a list of BCP 47 tags
// or an Accept-Language header. ok is false when nothing matched.
func MatchLanguage(requested string) (lang string, ok bool) {
	tags, _, err := language.ParseAcceptLanguage(requested)
	if err != nil || len(tags) == 0 {
		return SupportedLanguages[0].String(), false
	}
	_, idx, confidence := languageMatcher.Match(tags...)
	if confidence == language.No {
		return SupportedLanguages[0].String(), false
	}
	return SupportedLanguages[idx].String(), true
}

// Preferences persists the UI language.
type Preferences struct {
	storage  TokenStorage
	fallback string

	mu sync.Mutex
}

func NewPreferences(storage TokenStorage, defaultLanguage string) *Preferences {
	fallback, _ := MatchLanguage(defaultLanguage)
	return &Preferences{storage: storage, fallback: fallback}
}

// Language returns the stored language, or the configured default.
func (p *Preferences) Language() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	stored, ok, err := p.storage.Get(models.LanguageKey)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read language preference")
		return p.fallback
	}
	if !ok || stored == "" {
		return p.fallback
	}
	return stored
}

func (p *Preferences) SetLanguage(requested string) (string, error) {
	lang, ok := MatchLanguage(requested)
	if !ok {
		return "", validation.Errors{"language": fmt.Sprintf("unsupported language %q", requested)}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.storage.Set(models.LanguageKey, lang); err != nil {
		return "", fmt.Errorf("failed to store language: %w", err)
	}
	return lang, nil
}
