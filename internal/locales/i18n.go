package locales

import (
	"embed"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

//go:embed *.json
var localeFS embed.FS

// DefaultLanguage is used when no language was configured.
const DefaultLanguage = "ru"

// ScenarioLanguages are the languages posts can be generated in.
var ScenarioLanguages = []string{"ru", "es", "it", "fr"}

var (
	mu     sync.RWMutex
	bundle *i18n.Bundle
)

// Init loads the embedded message files. The default language is used by localizers
// when none of the requested languages has a translation.
func Init(defaultLangCode string) {
	tag, err := language.Parse(defaultLangCode)
	if err != nil {
		log.Warn().Err(err).Str("lang", defaultLangCode).Msg("failed to parse default language, falling back to English")
		tag = language.English
	}

	b := i18n.NewBundle(tag)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	files, err := localeFS.ReadDir(".")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read embedded locales")
	}
	loaded := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		if _, err := b.LoadMessageFileFS(localeFS, file.Name()); err != nil {
			log.Warn().Err(err).Str("file", file.Name()).Msg("failed to load message file")
			continue
		}
		loaded++
	}
	if loaded == 0 {
		log.Fatal().Msg("no message files loaded")
	}

	mu.Lock()
	bundle = b
	mu.Unlock()
	log.Debug().Int("files", loaded).Str("default", tag.String()).Msg("i18n bundle initialized")
}

// NewLocalizer creates a localizer for the given language preferences.
func NewLocalizer(langPrefs ...string) *i18n.Localizer {
	mu.RLock()
	defer mu.RUnlock()
	if bundle == nil {
		log.Panic().Msg("localizer requested before i18n bundle initialization")
	}
	return i18n.NewLocalizer(bundle, langPrefs...)
}

// GetMessage localizes msgID. It falls back to English and finally to the ID itself.
func GetMessage(localizer *i18n.Localizer, msgID string, templateData map[string]any, pluralCount *int) string {
	cfg := &i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: templateData,
	}
	if pluralCount != nil {
		cfg.PluralCount = *pluralCount
	}

	msg, err := localizer.Localize(cfg)
	if err == nil {
		return msg
	}
	log.Error().Err(err).Str("msg_id", msgID).Msg("failed to localize message, falling back to English")

	msg, err = NewLocalizer(language.English.String()).Localize(cfg)
	if err == nil {
		return msg
	}
	return msgID
}

// Message is a shortcut for GetMessage with a fresh localizer for lang.
func Message(lang, msgID string, templateData map[string]any) string {
	return GetMessage(NewLocalizer(lang), msgID, templateData, nil)
}

// IsScenarioLanguage reports whether posts can be generated in lang.
func IsScenarioLanguage(lang string) bool {
	return slices.Contains(ScenarioLanguages, lang)
}
