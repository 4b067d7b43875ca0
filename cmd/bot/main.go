package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/PoluyanbIch/GoQuizBot/internal/app"
	"github.com/PoluyanbIch/GoQuizBot/internal/config"
	"github.com/PoluyanbIch/GoQuizBot/internal/logging"
	"github.com/PoluyanbIch/GoQuizBot/internal/telegram"
	"github.com/PoluyanbIch/GoQuizBot/internal/vk"
)

type transport interface {
	Start(ctx context.Context) error
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.Fatal(err)
	}
	if cfg.TelegramToken == "" && cfg.VKToken == "" {
		logrus.Fatal("TELEGRAM_BOT_TOKEN or VK_COMMUNITY_TOKEN is required")
	}

	logger, closeLog, err := logging.New(cfg.Log, "quiz-bot")
	if err != nil {
		logrus.Fatal(err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Оба бота работают с одним хранилищем и одним движком
	rt, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("startup failed")
	}
	defer rt.Close()

	var bots []transport
	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, rt.Engine, logger, cfg.Workers, cfg.TelegramDebug)
		if err != nil {
			logger.WithError(err).Fatal("telegram bot")
		}
		bots = append(bots, bot)
	}
	if cfg.VKToken != "" {
		bot, err := vk.NewBot(cfg.VKToken, cfg.VKGroupID, rt.Engine, logger, cfg.Workers)
		if err != nil {
			logger.WithError(err).Fatal("vk bot")
		}
		bots = append(bots, bot)
	}

	logger.WithField("transports", len(bots)).Info("🤖 Bot is starting...")
	if err := run(ctx, bots); err != nil {
		logger.WithError(err).Error("bot stopped")
	}
	logger.Info("bot stopped")
}

// run stops every transport as soon as one of them fails.
func run(ctx context.Context, bots []transport) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, bot := range bots {
		g.Go(func() error { return bot.Start(gctx) })
	}
	return g.Wait()
}
