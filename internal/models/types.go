package models

// Language is a user's response language. The set is closed: the dispatcher
// only ever accepts one of the labels below, so every other component can
// assume a valid value.
type Language string

const (
	LanguageEnglish Language = "English"
	LanguageRussian Language = "Russian"
	LanguagePolish  Language = "Polish"
)

// DefaultLanguage is used for users who never picked a language.
const DefaultLanguage = LanguageEnglish

// SupportedLanguages lists the selectable languages in keyboard order.
var SupportedLanguages = []Language{LanguageRussian, LanguageEnglish, LanguagePolish}

// ParseLanguage matches a message text against the supported labels.
func ParseLanguage(text string) (Language, bool) {
	for _, l := range SupportedLanguages {
		if string(l) == text {
			return l, true
		}
	}
	return "", false
}

// Code returns the ISO 639-1 code used by the translation API and the
// localizer ("en", "ru", "pl").
func (l Language) Code() string {
	switch l {
	case LanguageRussian:
		return "ru"
	case LanguagePolish:
		return "pl"
	default:
		return "en"
	}
}

// Session holds per-user transient state. One entry per user who has
// interacted, lives for the process lifetime.
type Session struct {
	UserID       int64
	Language     Language
	LastQuestion string
}

// Command identifies the kind of interaction recorded in the log.
type Command string

const (
	CommandStart      Command = "start"
	CommandAsk        Command = "ask"
	CommandHistory    Command = "history"
	CommandStatistics Command = "statistics"
)

// LogEntry is one recorded interaction in a user's history.
type LogEntry struct {
	Command Command
	Params  map[string]string
	RawText string
}

// LanguageStat is one row of the language-selection aggregate.
type LanguageStat struct {
	Language Language
	Count    int
}
