package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gpt-relay-bot/internal/config"
	"github.com/gpt-relay-bot/internal/history"
	"github.com/gpt-relay-bot/internal/i18n"
	"github.com/gpt-relay-bot/internal/middleware"
	"github.com/gpt-relay-bot/internal/models"
	"github.com/gpt-relay-bot/internal/services/prefs"
	"github.com/gpt-relay-bot/internal/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Sender is the outbound messaging surface the handlers need from the
// Telegram client. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// CommandHandler handles the /start, /history and /statistics commands
type CommandHandler struct {
	bot       Sender
	config    *config.Config
	sessions  *session.Store
	log       *history.Log
	prefs     *prefs.Manager
	localizer *i18n.Localizer
	logger    *logrus.Logger
	metrics   *middleware.Metrics
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(
	bot Sender,
	cfg *config.Config,
	sessions *session.Store,
	log *history.Log,
	prefs *prefs.Manager,
	localizer *i18n.Localizer,
	logger *logrus.Logger,
	metrics *middleware.Metrics,
) *CommandHandler {
	return &CommandHandler{
		bot:       bot,
		config:    cfg,
		sessions:  sessions,
		log:       log,
		prefs:     prefs,
		localizer: localizer,
		logger:    logger,
		metrics:   metrics,
	}
}

// Commands recognized by the dispatcher. Anything else falls through to the
// free-text pipeline.
const (
	cmdStart      = "start"
	cmdHistory    = "history"
	cmdStatistics = "statistics"
)

// IsKnownCommand reports whether the dispatcher routes this command here.
func IsKnownCommand(command string) bool {
	switch command {
	case cmdStart, cmdHistory, cmdStatistics:
		return true
	}
	return false
}

// HandleCommand processes a recognized command message
func (h *CommandHandler) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	userID := message.From.ID
	lang := h.sessions.Get(userID).Language.Code()

	h.metrics.RecordCommandExecuted(message.Command())

	switch message.Command() {
	case cmdStart:
		return h.handleStart(ctx, chatID, userID, lang, message.Text)
	case cmdHistory:
		return h.handleHistory(ctx, chatID, userID, lang, message.Text)
	case cmdStatistics:
		return h.handleStatistics(ctx, chatID, userID, lang, message.Text)
	}
	return nil
}

// handleStart re-presents the language menu. A previously chosen language is
// kept until the user selects a new one.
func (h *CommandHandler) handleStart(ctx context.Context, chatID, userID int64, lang, rawText string) error {
	h.log.Append(userID, models.CommandStart, nil, rawText)

	h.sendStartImage(chatID, userID)

	msg := tgbotapi.NewMessage(chatID, h.localizer.Get(lang, i18n.MsgChooseLanguage, nil))
	msg.ReplyMarkup = languageKeyboard()

	if _, err := h.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send language prompt: %w", err)
	}
	return nil
}

// sendStartImage sends the configured greeting image. The image is optional:
// a missing file is a warning, never an aborted start flow.
func (h *CommandHandler) sendStartImage(chatID, userID int64) {
	path := h.config.Bot.StartImage
	if path == "" {
		return
	}

	if _, err := os.Stat(path); err != nil {
		h.logger.WithError(err).WithField("path", path).Warn("Start image not found, skipping photo")
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
	if _, err := h.bot.Send(photo); err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Warn("Failed to send start image")
	}
}

// handleHistory renders the user's interaction log oldest first. The history
// request itself is recorded, so a non-empty listing includes it; an empty
// history still renders the fixed empty message.
func (h *CommandHandler) handleHistory(ctx context.Context, chatID, userID int64, lang, rawText string) error {
	prior := h.log.List(userID)
	h.log.Append(userID, models.CommandHistory, nil, rawText)

	if len(prior) == 0 {
		msg := tgbotapi.NewMessage(chatID, h.localizer.Get(lang, i18n.MsgHistoryEmpty, nil))
		_, err := h.bot.Send(msg)
		return err
	}

	entries := h.log.List(userID)

	var sb strings.Builder
	sb.WriteString(h.localizer.Get(lang, i18n.MsgHistoryHeader, nil))
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("\nCommand: %s, Text: %s", e.Command, e.RawText))
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	if _, err := h.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send history: %w", err)
	}
	return nil
}

// handleStatistics renders the cross-user language aggregate sorted by count
// descending. A store failure surfaces as the fixed "no statistics" message.
func (h *CommandHandler) handleStatistics(ctx context.Context, chatID, userID int64, lang, rawText string) error {
	h.log.Append(userID, models.CommandStatistics, nil, rawText)

	stats := h.prefs.Statistics(ctx)
	if len(stats) == 0 {
		msg := tgbotapi.NewMessage(chatID, h.localizer.Get(lang, i18n.MsgStatsEmpty, nil))
		_, err := h.bot.Send(msg)
		return err
	}

	var sb strings.Builder
	sb.WriteString(h.localizer.Get(lang, i18n.MsgStatsHeader, nil))
	for _, s := range stats {
		sb.WriteString(fmt.Sprintf("\n%s: %d", s.Language, s.Count))
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	if _, err := h.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send statistics: %w", err)
	}
	return nil
}

func languageKeyboard() tgbotapi.ReplyKeyboardMarkup {
	buttons := make([]tgbotapi.KeyboardButton, 0, len(models.SupportedLanguages))
	for _, l := range models.SupportedLanguages {
		buttons = append(buttons, tgbotapi.NewKeyboardButton(string(l)))
	}

	keyboard := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(buttons...))
	keyboard.ResizeKeyboard = true
	return keyboard
}
