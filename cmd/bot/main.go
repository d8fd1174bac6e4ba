package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gpt-relay-bot/internal/config"
	"github.com/gpt-relay-bot/internal/handlers"
	"github.com/gpt-relay-bot/internal/history"
	"github.com/gpt-relay-bot/internal/i18n"
	"github.com/gpt-relay-bot/internal/middleware"
	"github.com/gpt-relay-bot/internal/services/answer"
	"github.com/gpt-relay-bot/internal/services/cache"
	"github.com/gpt-relay-bot/internal/services/prefs"
	"github.com/gpt-relay-bot/internal/services/translate"
	"github.com/gpt-relay-bot/internal/session"
	"github.com/gpt-relay-bot/pkg/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	envFile := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	// Load .env file if exists
	if err := godotenv.Load(*envFile); err != nil {
		// It's okay if .env doesn't exist
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("Starting GPT relay bot...")

	bot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		log.WithError(err).Fatal("Failed to create bot")
	}

	bot.Debug = cfg.Logging.Level == "debug"
	log.WithField("username", bot.Self.UserName).Info("Bot authorized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prefsManager, err := prefs.NewManager(&cfg.Storage, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize preference store")
	}
	defer prefsManager.Close()

	sessions := session.NewStore(log)
	interactionLog := history.NewLog()

	answerService := answer.NewClient(&cfg.Answer, log)
	translator := translate.NewGoogleTranslator(&cfg.Translate, log)
	cacheService := cache.NewCache(&cfg.Cache, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	localizer, err := i18n.NewLocalizer(cfg.I18n.DefaultLanguage)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize i18n")
	}

	metrics := middleware.NewMetrics()

	if cfg.Monitoring.Metrics.Enabled {
		go func() {
			log.WithFields(logrus.Fields{
				"port": cfg.Monitoring.Metrics.Port,
				"path": cfg.Monitoring.Metrics.Path,
			}).Info("Starting metrics server")

			if err := middleware.StartMetricsServer(cfg.Monitoring.Metrics.Port, cfg.Monitoring.Metrics.Path); err != nil {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	commandHandler := handlers.NewCommandHandler(
		bot,
		cfg,
		sessions,
		interactionLog,
		prefsManager,
		localizer,
		log,
		metrics,
	)

	messageHandler := handlers.NewMessageHandler(
		cfg,
		bot,
		sessions,
		interactionLog,
		prefsManager,
		answerService,
		translator,
		cacheService,
		rateLimiter,
		localizer,
		log,
		metrics,
	)

	var updates tgbotapi.UpdatesChannel

	if cfg.Bot.Webhook.Enabled {
		webhookURL := fmt.Sprintf("%s/%s", cfg.Bot.Webhook.URL, bot.Token)
		webhook, err := tgbotapi.NewWebhook(webhookURL)
		if err != nil {
			log.WithError(err).Fatal("Failed to create webhook")
		}

		if _, err := bot.Request(webhook); err != nil {
			log.WithError(err).Fatal("Failed to set webhook")
		}

		updates = bot.ListenForWebhook("/" + bot.Token)
		log.WithField("url", webhookURL).Info("Webhook set")
	} else {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = cfg.Bot.UpdateTimeout

		updates = bot.GetUpdatesChan(u)
		log.Info("Using long polling")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// One goroutine per update, serialized per user: concurrency across users,
	// single writer within a user.
	serializer := middleware.NewUserSerializer()

	go func() {
		for update := range updates {
			if update.Message == nil || update.Message.From == nil {
				continue
			}

			msg := update.Message
			go func() {
				userID := msg.From.ID
				serializer.Lock(userID)
				defer serializer.Unlock(userID)

				if msg.IsCommand() && handlers.IsKnownCommand(msg.Command()) {
					metrics.RecordMessageReceived("command")
					if err := commandHandler.HandleCommand(ctx, msg); err != nil {
						log.WithError(err).Error("Failed to handle command")
						metrics.RecordMessageProcessed("error")
					} else {
						metrics.RecordMessageProcessed("success")
					}
					return
				}

				// Unmatched patterns, unknown commands included, fall through
				// to the free-text pipeline.
				metrics.RecordMessageReceived("text")
				if err := messageHandler.HandleMessage(ctx, msg); err != nil {
					log.WithError(err).Error("Failed to handle message")
					metrics.RecordMessageProcessed("error")
				} else {
					metrics.RecordMessageProcessed("success")
				}
			}()
		}
	}()

	go startPeriodicTasks(ctx, sessions, metrics, log)

	<-sigChan
	log.Info("Shutdown signal received")

	if cfg.Bot.Webhook.Enabled {
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			log.WithError(err).Error("Failed to delete webhook")
		}
	}

	cancel()

	// Give in-flight handlers time to finish
	time.Sleep(2 * time.Second)

	log.Info("Bot stopped")
}

// startPeriodicTasks refreshes gauge metrics in the background
func startPeriodicTasks(ctx context.Context, sessions *session.Store, metrics *middleware.Metrics, log *logrus.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.SetActiveSessions(float64(sessions.Count()))
		}
	}
}
