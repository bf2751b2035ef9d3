package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mymmrac/telego"
	"github.com/rs/zerolog/log"
	"go.uber.org/ratelimit"

	telegoBot "winposts-bot/bot"
	"winposts-bot/internal/auth"
	"winposts-bot/internal/bonus"
	"winposts-bot/internal/config"
	"winposts-bot/internal/database"
	"winposts-bot/internal/generator"
	"winposts-bot/internal/handlers"
	"winposts-bot/internal/linkfmt"
	"winposts-bot/internal/llm"
	"winposts-bot/internal/locales"
	"winposts-bot/internal/logging"
	"winposts-bot/internal/mediagroups"
	"winposts-bot/internal/publisher"
	"winposts-bot/internal/retry"
	"winposts-bot/internal/server"
	"winposts-bot/internal/session"
	"winposts-bot/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}
	logging.Setup(cfg.Debug)

	err = telemetry.Init(telemetry.Options{
		DSN:         cfg.SentryDSN,
		Environment: cfg.AppEnv,
		Release:     cfg.Version,
		Debug:       cfg.Debug,
		Secrets:     []string{cfg.BotToken, cfg.OpenRouterAPIKey},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize error reporting")
	}
	defer telemetry.Close()

	locales.Init(cfg.DefaultLanguage)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("error disconnecting from MongoDB")
		} else {
			log.Info().Msg("disconnected from MongoDB")
		}
	}()

	mongoLogger := database.NewMongoLogger(db)
	sessions := session.NewStore(database.NewMongoSessionRepository(db), cfg.SessionTTL, cfg.DefaultLanguage)

	// --- Generation pipeline ---
	completer, err := llm.NewClient(llm.Config{
		APIKey:  cfg.OpenRouterAPIKey,
		BaseURL: cfg.OpenRouterBaseURL,
		Model:   cfg.OpenRouterModel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create completion client")
	}
	variator := bonus.NewVariator(nil)
	formatter := linkfmt.New(linkfmt.DefaultCategories())
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.LLMMaxAttempts
	policy.InitialDelay = cfg.LLMRetryDelay
	gen := generator.New(completer, variator, formatter, generator.Options{
		Forbidden: cfg.ForbiddenWords,
		Policy:    policy,
		Limiter:   ratelimit.New(cfg.LLMCallsPerMinute, ratelimit.Per(time.Minute)),
	})

	// --- Telegram ---
	bot, err := telego.NewBot(cfg.BotToken, telego.WithLogger(logging.NewTelegoLogger(log.Logger, cfg.BotToken)))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create telego bot")
	}
	me, err := bot.GetMe(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to reach Telegram")
	}
	log.Info().Str("username", me.Username).Str("version", cfg.Version).Msg("bot authorized")

	pub, err := publisher.New(bot, cfg.ChannelID, ratelimit.New(cfg.PublishPerMinute, ratelimit.Per(time.Minute)), mongoLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create publisher")
	}
	adminChecker, err := auth.NewAdminChecker(bot, cfg.ChannelID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create admin checker")
	}
	mediaGroupMgr := mediagroups.NewManager(mediagroups.DefaultProcessDelay, mediagroups.DefaultMaxGroupSize)

	messageHandler := handlers.NewMessageHandler(handlers.Deps{
		Sessions:     sessions,
		Generator:    gen,
		Publisher:    pub,
		Formatter:    formatter,
		Variator:     variator,
		AdminChecker: adminChecker,
		ActionLogger: mongoLogger,
		UserRepo:     mongoLogger,
		Version:      cfg.Version,
		MaxGenerate:  cfg.MaxGenerate,
	})

	updates, err := bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start long polling")
	}
	appBot, err := telegoBot.New(telegoBot.BotDeps{
		Bot:           bot,
		UpdatesChan:   updates,
		Handler:       messageHandler,
		MediaGroupMgr: mediaGroupMgr,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	var metricsServer *server.Server
	if cfg.MetricsAddr != "" {
		metricsServer = server.New(cfg.MetricsAddr, cfg.Version)
		go func() {
			if err := metricsServer.Start(); err != nil {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		appBot.Start(ctx)
		close(done)
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	appBot.Stop()
	<-done

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to stop metrics server")
		}
	}
	log.Info().Msg("shutdown complete")
}
