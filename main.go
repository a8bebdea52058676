package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/a04k/cogslash/bot"
	"github.com/a04k/cogslash/commands"
	"github.com/a04k/cogslash/commands/general"
	"github.com/a04k/cogslash/commands/help"
	"github.com/a04k/cogslash/config"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	log, err := bot.NewLogger(cfg.Logging)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to set up logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bot.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create bot")
	}
	defer b.Close()

	for _, cog := range []commands.Cog{
		help.New(b.Slash),
		general.New(cfg.Discord.GuildIDs),
	} {
		if err := b.AddCog(cog); err != nil {
			log.WithError(err).WithField("cog", cog.Name()).Fatal("Failed to add cog")
		}
	}

	if err := b.Run(ctx); err != nil {
		log.WithError(err).Error("Bot stopped")
		return
	}
	log.Info("Shutting down")
}
