package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gpt-relay-bot/internal/config"
	"github.com/gpt-relay-bot/internal/history"
	"github.com/gpt-relay-bot/internal/i18n"
	"github.com/gpt-relay-bot/internal/middleware"
	"github.com/gpt-relay-bot/internal/models"
	"github.com/gpt-relay-bot/internal/services/answer"
	"github.com/gpt-relay-bot/internal/services/cache"
	"github.com/gpt-relay-bot/internal/services/prefs"
	"github.com/gpt-relay-bot/internal/services/translate"
	"github.com/gpt-relay-bot/internal/session"
	"github.com/gpt-relay-bot/pkg/markdown"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// MessageHandler handles non-command messages: exact language labels and
// free-text questions.
type MessageHandler struct {
	config      *config.Config
	bot         Sender
	sessions    *session.Store
	log         *history.Log
	prefs       *prefs.Manager
	answers     answer.Service
	translator  translate.Translator
	cache       cache.Service
	rateLimiter middleware.RateLimiter
	localizer   *i18n.Localizer
	logger      *logrus.Logger
	metrics     *middleware.Metrics
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(
	cfg *config.Config,
	bot Sender,
	sessions *session.Store,
	log *history.Log,
	prefs *prefs.Manager,
	answers answer.Service,
	translator translate.Translator,
	cacheService cache.Service,
	rateLimiter middleware.RateLimiter,
	localizer *i18n.Localizer,
	logger *logrus.Logger,
	metrics *middleware.Metrics,
) *MessageHandler {
	return &MessageHandler{
		config:      cfg,
		bot:         bot,
		sessions:    sessions,
		log:         log,
		prefs:       prefs,
		answers:     answers,
		translator:  translator,
		cache:       cacheService,
		rateLimiter: rateLimiter,
		localizer:   localizer,
		logger:      logger,
		metrics:     metrics,
	}
}

// HandleMessage processes a non-command message. An exact supported-language
// label selects that language; everything else is treated as a question.
func (h *MessageHandler) HandleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if lang, ok := models.ParseLanguage(message.Text); ok {
		return h.handleLanguageSelection(ctx, message, lang)
	}
	return h.handleQuestion(ctx, message)
}

// handleLanguageSelection sets the session language, persists it exactly once
// and greets the user in the new language, clearing the selection keyboard.
func (h *MessageHandler) handleLanguageSelection(ctx context.Context, message *tgbotapi.Message, lang models.Language) error {
	chatID := message.Chat.ID
	userID := message.From.ID

	h.sessions.SetLanguage(userID, lang)
	h.prefs.Save(ctx, userID, lang)
	h.metrics.RecordPreferenceSave(string(lang))

	h.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"language": lang,
	}).Info("Language selected")

	msg := tgbotapi.NewMessage(chatID, h.localizer.Get(lang.Code(), i18n.MsgGreeting, nil))
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)

	if _, err := h.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send greeting: %w", err)
	}
	return nil
}

// handleQuestion runs the answer pipeline: session update, interaction log,
// cache, Q&A API, optional translation, reply.
func (h *MessageHandler) handleQuestion(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	userID := message.From.ID
	question := message.Text

	sess := h.sessions.Get(userID)
	h.sessions.SetLastQuestion(userID, question)
	h.log.Append(userID, models.CommandAsk, map[string]string{"question": question}, question)

	lang := sess.Language
	code := lang.Code()

	if !h.rateLimiter.Allow(userID) {
		h.metrics.RecordRateLimitExceeded()
		h.send(chatID, h.localizer.Get(code, i18n.MsgRateLimitExceeded, nil))
		return nil
	}

	if cached, found := h.cache.Get(ctx, question, lang); found {
		h.metrics.RecordCacheHit()
		h.reply(chatID, code, cached)
		return nil
	}
	h.metrics.RecordCacheMiss()

	start := time.Now()
	content, err := h.answers.Ask(ctx, question)
	if err != nil {
		h.metrics.RecordAnswerRequest("error", time.Since(start))
		h.logAnswerFailure(userID, question, err)
		h.send(chatID, h.localizer.Get(code, i18n.MsgAnswerError, nil))
		return nil
	}
	h.metrics.RecordAnswerRequest("success", time.Since(start))

	// The Q&A API answers in English; translate unless that is the user's
	// language. Translation failure degrades to the untranslated answer.
	if lang != models.LanguageEnglish {
		translated, terr := h.translator.Translate(ctx, content, "en", code)
		if terr != nil {
			h.metrics.RecordTranslationRequest(code, "error")
			h.logger.WithError(terr).WithFields(logrus.Fields{
				"user_id": userID,
				"target":  code,
			}).Warn("Translation failed, falling back to English")
			h.send(chatID, h.localizer.Get(code, i18n.MsgTranslationFallback, nil))
		} else {
			h.metrics.RecordTranslationRequest(code, "success")
			content = translated
		}
	}

	h.cache.Set(ctx, question, lang, content)
	h.reply(chatID, code, content)
	return nil
}

// reply sends the answer with its localized prefix.
func (h *MessageHandler) reply(chatID int64, langCode, content string) {
	prefix := h.localizer.Get(langCode, i18n.MsgAnswerPrefix, nil)
	text := fmt.Sprintf("%s: %s", prefix, markdown.ToTelegramHTML(content))

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send answer")
	}
}

func (h *MessageHandler) send(chatID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}

func (h *MessageHandler) logAnswerFailure(userID int64, question string, err error) {
	entry := h.logger.WithError(err).WithField("user_id", userID)
	switch {
	case errors.Is(err, answer.ErrInvalidResponse):
		entry.Error("Answer API returned an invalid response")
	case errors.Is(err, answer.ErrUnreachable):
		entry.Error("Answer API unreachable")
	default:
		entry.WithField("question", question).Error("Answer request failed")
	}
}
