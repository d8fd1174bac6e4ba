package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizedMessages(t *testing.T) {
	l, err := NewLocalizer("en")
	require.NoError(t, err)

	assert.Equal(t, "Answer", l.Get("en", MsgAnswerPrefix, nil))
	assert.Equal(t, "Ответ", l.Get("ru", MsgAnswerPrefix, nil))
	assert.Equal(t, "Odpowiedź", l.Get("pl", MsgAnswerPrefix, nil))
}

func TestUnknownLanguageFallsBackToDefault(t *testing.T) {
	l, err := NewLocalizer("en")
	require.NoError(t, err)

	assert.Equal(t, l.Get("en", MsgGreeting, nil), l.Get("de", MsgGreeting, nil))
}

func TestUnknownMessageIDReturnsID(t *testing.T) {
	l, err := NewLocalizer("en")
	require.NoError(t, err)

	assert.Equal(t, "no_such_message", l.Get("en", "no_such_message", nil))
}

func TestUnsupportedDefaultLanguageRejected(t *testing.T) {
	_, err := NewLocalizer("de")
	assert.Error(t, err)
}
