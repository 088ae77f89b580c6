package main

import (
	"context"

	"github.com/amora-app/amora-server/internal/app"
	"github.com/amora-app/amora-server/internal/cache"
	"github.com/amora-app/amora-server/internal/config"
	"github.com/amora-app/amora-server/internal/db"
	"github.com/amora-app/amora-server/internal/geocode"
	"github.com/amora-app/amora-server/internal/graph"
	"github.com/amora-app/amora-server/internal/logger"
	"github.com/amora-app/amora-server/internal/notify"
	"github.com/amora-app/amora-server/internal/server"
	"github.com/amora-app/amora-server/internal/service/discovery"
	"github.com/amora-app/amora-server/internal/service/interaction"
	"github.com/amora-app/amora-server/internal/service/match"
	"github.com/amora-app/amora-server/internal/service/message"
	"github.com/amora-app/amora-server/internal/service/profile"
	"github.com/amora-app/amora-server/internal/service/user"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB (runs migrations)
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Match notifications go out via Telegram when a token is configured
	var notifier notify.MatchNotifier = notify.Disabled{}
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, log)
		if err != nil {
			log.Warn("telegram notifier unavailable, match notifications disabled", "err", err)
		} else {
			notifier = tg
		}
	} else {
		log.Warn("TELEGRAM_BOT_TOKEN not set, match notifications disabled")
	}

	appCtx := app.New(database, redisCache, log, notifier, cfg)

	profiles := profile.NewService(appCtx, geocode.NewClient())
	users := user.NewService(appCtx, profiles)
	discover := discovery.NewService(appCtx, discovery.Options{
		RediscoverUnmatched: cfg.Discovery.RediscoverUnmatched,
		CountCap:            cfg.Discovery.CountCap,
	})
	interactions := interaction.NewService(appCtx, interaction.Options{
		Cooldown:       cfg.Discovery.CooldownWindow,
		UndoDailyLimit: cfg.Discovery.UndoDailyLimit,
	})
	matches := match.NewService(appCtx, match.Options{
		HiddenWindow: cfg.Discovery.HiddenWindow,
	})
	messages := message.NewService(appCtx)

	resolver := graph.NewResolver(appCtx, discover, interactions, matches, messages, profiles, users)
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		log.Error("failed to build schema", "err", err)
		return
	}

	if cfg.App.Env == "development" {
		if err := db.SeedDemoData(context.Background(), database, log); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	engine := server.New(appCtx, schema)

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting http server", "addr", addr, "env", cfg.App.Env)

	if err := engine.Run(addr); err != nil {
		log.Error("http server stopped", "err", err)
	}
}
