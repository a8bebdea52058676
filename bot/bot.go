package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/a04k/cogslash/commands"
	"github.com/a04k/cogslash/config"
	"github.com/a04k/cogslash/store"
	"github.com/a04k/cogslash/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

type Bot struct {
	Client *discordgo.Session
	Slash  *commands.SlashCommand
	Store  store.Store
	Log    *logrus.Logger

	cfg *config.Config
}

// New creates the session, the command hash cache and the dispatcher.
// Nothing connects to Discord until Run.
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Bot, error) {
	client, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, err
	}
	client.Identify.Intents = discordgo.IntentsGuilds

	var st store.Store = store.NewMemory()
	if cfg.Database.URL != "" {
		st, err = store.NewPostgres(ctx, cfg.Database.URL, cfg.Database.MaxConnections, log.WithField("component", "store"))
		if err != nil {
			return nil, err
		}
	}

	slash := commands.New(client,
		commands.WithLogger(log.WithField("component", "slash")),
		commands.WithStore(st),
		commands.WithRateLimiter(utils.NewRateLimiter(cfg.RateLimit.PerMinute, time.Minute)),
		commands.WithDeleteUnused(cfg.Sync.DeleteUnused),
		commands.WithSyncInterval(time.Duration(cfg.Sync.IntervalMS)*time.Millisecond),
	)
	client.AddHandler(slash.HandleInteraction)

	return &Bot{Client: client, Slash: slash, Store: st, Log: log, cfg: cfg}, nil
}

// AddCog registers the commands of cog.
func (b *Bot) AddCog(cog commands.Cog) error {
	return b.Slash.AddCog(cog)
}

// RemoveCog unregisters the commands of cog. Call Sync afterwards to drop
// them from Discord.
func (b *Bot) RemoveCog(cog commands.Cog) {
	b.Slash.RemoveCog(cog)
}

// Sync pushes the registered commands to Discord.
func (b *Bot) Sync(ctx context.Context) error {
	appID := b.appID()
	if appID == "" {
		return fmt.Errorf("application ID unknown; set DISCORD_APP_ID or wait for the ready event")
	}
	return b.Slash.Sync(ctx, appID)
}

func (b *Bot) appID() string {
	if b.cfg.Discord.AppID != "" {
		return b.cfg.Discord.AppID
	}
	if b.Client.State != nil && b.Client.State.User != nil {
		return b.Client.State.User.ID
	}
	return ""
}

// Run opens the gateway and blocks until ctx is done. Commands are synced
// on every ready event when syncing is enabled.
func (b *Bot) Run(ctx context.Context) error {
	b.Client.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.Log.WithField("user", r.User.Username).Info("Bot is ready")
		if !b.cfg.Sync.Enabled {
			return
		}
		if err := b.Sync(ctx); err != nil {
			b.Log.WithError(err).Error("Slash command sync failed")
		}
	})

	if err := b.Client.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	b.Log.Info("Bot is running. Press Ctrl+C to exit.")

	<-ctx.Done()
	return nil
}

// Close disconnects from Discord and releases the store.
func (b *Bot) Close() error {
	err := b.Client.Close()
	if cerr := b.Store.Close(); err == nil {
		err = cerr
	}
	return err
}
