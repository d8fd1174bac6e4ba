package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var locales = []string{"en", "ru", "pl"}

// Localizer manages internationalization
type Localizer struct {
	bundle          *i18n.Bundle
	defaultLanguage string
	localizers      map[string]*i18n.Localizer
}

// NewLocalizer creates a new localizer with the embedded locale files
func NewLocalizer(defaultLanguage string) (*Localizer, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, lang := range locales {
		if _, err := bundle.LoadMessageFileFS(localeFS, fmt.Sprintf("locales/%s.json", lang)); err != nil {
			return nil, fmt.Errorf("failed to load language file %s: %w", lang, err)
		}
	}

	localizers := make(map[string]*i18n.Localizer)
	for _, lang := range locales {
		localizers[lang] = i18n.NewLocalizer(bundle, lang)
	}

	if _, ok := localizers[defaultLanguage]; !ok {
		return nil, fmt.Errorf("unsupported default language: %s", defaultLanguage)
	}

	return &Localizer{
		bundle:          bundle,
		defaultLanguage: defaultLanguage,
		localizers:      localizers,
	}, nil
}

// Get returns localized message
func (l *Localizer) Get(lang, messageID string, data map[string]interface{}) string {
	localizer, exists := l.localizers[lang]
	if !exists {
		localizer = l.localizers[l.defaultLanguage]
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID // Fallback to message ID
	}

	return msg
}

// Message IDs
const (
	MsgChooseLanguage      = "choose_language"
	MsgGreeting            = "greeting"
	MsgAnswerPrefix        = "answer_prefix"
	MsgAnswerError         = "answer_error"
	MsgGenericError        = "generic_error"
	MsgTranslationFallback = "translation_fallback"
	MsgHistoryHeader       = "history_header"
	MsgHistoryEmpty        = "history_empty"
	MsgStatsHeader         = "stats_header"
	MsgStatsEmpty          = "stats_empty"
	MsgRateLimitExceeded   = "rate_limit_exceeded"
)
