package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/a04k/cogslash/model"
	"github.com/a04k/cogslash/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// ErrRateLimited is returned by Dispatch when the invoking user hit the
// per-command rate limit.
var ErrRateLimited = errors.New("rate limited")

type invokable interface {
	Key() string
	AutoConvert() model.AutoConvert
	Invoke(ctx *model.Context, values map[string]interface{}) error
}

// HandleInteraction is a discordgo event handler; add it with
// session.AddHandler.
func (sc *SlashCommand) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	_ = sc.Dispatch(s, s, i.Interaction)
}

// Dispatch routes an application command interaction to its handler. r
// answers the interaction, normally the session itself. Interactions that
// match no handler are ignored and return nil.
func (sc *SlashCommand) Dispatch(s *discordgo.Session, r model.Responder, i *discordgo.Interaction) (err error) {
	if i == nil || i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}
	data, ok := i.Data.(discordgo.ApplicationCommandInteractionData)
	if !ok {
		return nil
	}

	ctx := model.NewContext(s, r, i)
	ctx.Name = data.Name
	target, options := sc.resolve(ctx, data)
	if target == nil {
		return nil
	}

	log := sc.log.WithFields(logrus.Fields{
		"command": target.Key(),
		"guild":   i.GuildID,
	})
	if ctx.Author != nil {
		log = log.WithField("user", ctx.Author.ID)
		if !sc.limiter.Allow(ctx.Author.ID, target.Key()) {
			wait := sc.limiter.RetryAfter(ctx.Author.ID, target.Key()).Round(time.Second)
			log.Debug("Command rate limited")
			_ = ctx.SendEphemeral(fmt.Sprintf("You're doing that too often. Try again in %s.", wait))
			return ErrRateLimited
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s: %v", target.Key(), rec)
		}
		if err != nil {
			log.WithError(err).Error("Command failed")
			// A deferred interaction still waits for a message, which
			// SendEphemeral posts as a follow-up.
			if !ctx.Responded() || ctx.Deferred() {
				_ = ctx.SendEphemeral("An error occurred while running this command.")
			}
		}
	}()

	ctx.Options = utils.ConvertOptions(options, target.AutoConvert(), data.Resolved, i.GuildID)
	log.Debug("Invoking command")
	return target.Invoke(ctx, ctx.Options)
}

// resolve finds the command or subcommand addressed by data and fills the
// subcommand names of ctx. It returns the options meant for the handler.
func (sc *SlashCommand) resolve(ctx *model.Context, data discordgo.ApplicationCommandInteractionData) (invokable, []*discordgo.ApplicationCommandInteractionDataOption) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	node, ok := sc.commands[data.Name]
	if !ok {
		sc.log.WithField("command", data.Name).Debug("Unknown command")
		return nil, nil
	}
	if len(node.guildIDs) > 0 && !utils.ContainsString(node.guildIDs, ctx.GuildID) {
		return nil, nil
	}

	if !node.hasSubcommands() {
		if node.command == nil {
			return nil, nil
		}
		return node.command, data.Options
	}
	if len(data.Options) == 0 {
		return nil, nil
	}

	var (
		target  *model.SubcommandObject
		options []*discordgo.ApplicationCommandInteractionDataOption
	)
	first := data.Options[0]
	switch first.Type {
	case discordgo.ApplicationCommandOptionSubCommandGroup:
		group, ok := node.groups[first.Name]
		if !ok || len(first.Options) == 0 {
			return nil, nil
		}
		sub := first.Options[0]
		target = group.subcommands[sub.Name]
		ctx.SubcommandGroup = first.Name
		ctx.SubcommandName = sub.Name
		options = sub.Options
	case discordgo.ApplicationCommandOptionSubCommand:
		target = node.subcommands[first.Name]
		ctx.SubcommandName = first.Name
		options = first.Options
	}
	if target == nil {
		return nil, nil
	}
	return target, options
}
