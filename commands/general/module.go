// Package general is the example cog: a plain command, one with generated
// options, and subcommands with and without a group.
package general

import (
	"fmt"
	"strings"
	"time"

	"github.com/a04k/cogslash/cogext"
	"github.com/a04k/cogslash/model"

	"github.com/bwmarrin/discordgo"
)

//go:generate go run ../../cli docgen .

const maxEchoCount = 5

// General holds general utility commands.
type General struct {
	guildIDs []string
	started  time.Time
}

// New returns the cog. Its commands are limited to guildIDs when given.
func New(guildIDs []string) *General {
	return &General{guildIDs: guildIDs, started: time.Now()}
}

func (g *General) Name() string { return "General" }

func (g *General) SlashCommands() []model.Entry {
	return []model.Entry{
		cogext.MustSlash(g.Ping, cogext.SlashOptions{GuildIDs: g.guildIDs}),
		cogext.MustSlash(g.Echo, cogext.SlashOptions{GuildIDs: g.guildIDs}),
		cogext.MustSubcommand(g.GroupSay, cogext.SubcommandOptions{
			Base:     "group",
			Name:     "say",
			BaseDesc: "Group of text commands",
			GuildIDs: g.guildIDs,
		}),
		cogext.MustSubcommand(g.InfoUser, cogext.SubcommandOptions{
			Base:            "info",
			SubcommandGroup: "member",
			Name:            "user",
			BaseDesc:        "Look things up",
			SubGroupDesc:    "Member lookups",
			GuildIDs:        g.guildIDs,
		}),
	}
}

// EchoArgs are the options of /echo.
type EchoArgs struct {
	Text  string `desc:"Text to repeat"`
	Count *int   `desc:"How many times, up to 5"`
}

// SayArgs are the options of /group say.
type SayArgs struct {
	Text string `desc:"What to say"`
}

// UserArgs are the options of /info member user.
type UserArgs struct {
	User *discordgo.Member `desc:"Member to look up"`
}

// Ping reports that the bot is alive and how long it has been running.
func (g *General) Ping(ctx *model.Context, _ model.NoArgs) error {
	return ctx.Send(fmt.Sprintf("Pong! Up for %s.", time.Since(g.started).Round(time.Second)))
}

// Echo repeats the given text.
func (g *General) Echo(ctx *model.Context, args EchoArgs) error {
	n := 1
	if args.Count != nil {
		n = *args.Count
	}
	if n < 1 || n > maxEchoCount {
		return ctx.SendEphemeral(fmt.Sprintf("Count must be between 1 and %d.", maxEchoCount))
	}
	return ctx.Send(strings.TrimSpace(strings.Repeat(args.Text+"\n", n)))
}

// GroupSay sends the given text.
func (g *General) GroupSay(ctx *model.Context, args SayArgs) error {
	return ctx.Send(args.Text)
}

// InfoUser shows who a member is.
func (g *General) InfoUser(ctx *model.Context, args UserArgs) error {
	m := args.User
	if m == nil || m.User == nil {
		return ctx.SendEphemeral("Unknown member.")
	}
	name := m.User.Username
	if m.Nick != "" {
		name = m.Nick + " (" + m.User.Username + ")"
	}
	joined := "unknown"
	if !m.JoinedAt.IsZero() {
		joined = m.JoinedAt.Format("2006-01-02")
	}
	return ctx.Send(fmt.Sprintf("**%s**\nID: %s\nJoined: %s\nRoles: %d", name, m.User.ID, joined, len(m.Roles)))
}
