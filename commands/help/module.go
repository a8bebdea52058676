// Package help is a cog answering /help from the dispatcher's command table.
package help

import (
	"fmt"
	"sort"
	"strings"

	"github.com/a04k/cogslash/cogext"
	"github.com/a04k/cogslash/model"

	"github.com/bwmarrin/discordgo"
)

//go:generate go run ../../cli docgen .

const embedColor = 0x00ff00

// Discord limits per message.
const (
	maxEmbedFields = 25
	maxEmbeds      = 10
)

// Lister is implemented by *commands.SlashCommand.
type Lister interface {
	ApplicationCommands() map[string][]*discordgo.ApplicationCommand
}

type Help struct {
	commands Lister
}

func New(l Lister) *Help {
	return &Help{commands: l}
}

func (h *Help) Name() string { return "Help" }

func (h *Help) SlashCommands() []model.Entry {
	return []model.Entry{
		cogext.MustSlash(h.Help, cogext.SlashOptions{}),
	}
}

type Args struct {
	Command *string `desc:"Command to explain"`
}

// Help lists the slash commands available here, or explains one of them.
func (h *Help) Help(ctx *model.Context, args Args) error {
	visible := h.visible(ctx.GuildID)

	if args.Command != nil {
		name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(*args.Command)), "/")
		for _, cmd := range visible {
			if cmd.Name == name {
				return ctx.Respond(&discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{commandEmbed(cmd)}})
			}
		}
		return ctx.SendEphemeral(fmt.Sprintf("Command `%s` not found.", name))
	}

	return ctx.Respond(&discordgo.InteractionResponseData{Embeds: listEmbeds(visible)})
}

// listEmbeds spreads one field per command over as many embeds as Discord
// accepts in a message. Commands that do not fit are counted in the footer.
func listEmbeds(cmds []*discordgo.ApplicationCommand) []*discordgo.MessageEmbed {
	first := &discordgo.MessageEmbed{
		Title:       "Help",
		Description: "Here is a list of commands. For more information on a specific command, use `/help command:<name>`.",
		Color:       embedColor,
	}
	embeds := []*discordgo.MessageEmbed{first}
	for i, cmd := range cmds {
		embed := embeds[len(embeds)-1]
		if len(embed.Fields) == maxEmbedFields {
			if len(embeds) == maxEmbeds {
				embed.Footer = &discordgo.MessageEmbedFooter{
					Text: fmt.Sprintf("%d more commands not shown. Use /help command:<name>.", len(cmds)-i),
				}
				break
			}
			embed = &discordgo.MessageEmbed{Color: embedColor}
			embeds = append(embeds, embed)
		}
		value := cmd.Description
		if paths := subcommandPaths(cmd); len(paths) > 0 {
			value += "\n" + strings.Join(paths, ", ")
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "/" + cmd.Name, Value: value})
	}
	return embeds
}

// visible returns the global commands plus those of guildID, sorted by name.
func (h *Help) visible(guildID string) []*discordgo.ApplicationCommand {
	scopes := h.commands.ApplicationCommands()
	cmds := append([]*discordgo.ApplicationCommand{}, scopes[""]...)
	if guildID != "" {
		cmds = append(cmds, scopes[guildID]...)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

func subcommandPaths(cmd *discordgo.ApplicationCommand) []string {
	var paths []string
	for _, o := range cmd.Options {
		switch o.Type {
		case discordgo.ApplicationCommandOptionSubCommand:
			paths = append(paths, "`/"+cmd.Name+" "+o.Name+"`")
		case discordgo.ApplicationCommandOptionSubCommandGroup:
			for _, sub := range o.Options {
				paths = append(paths, "`/"+cmd.Name+" "+o.Name+" "+sub.Name+"`")
			}
		}
	}
	return paths
}

func commandEmbed(cmd *discordgo.ApplicationCommand) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Help: /%s", cmd.Name),
		Description: cmd.Description,
		Color:       embedColor,
	}

	if paths := subcommandPaths(cmd); len(paths) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Subcommands",
			Value: strings.Join(paths, "\n"),
		})
		return embed
	}

	var lines []string
	for _, o := range cmd.Options {
		req := "optional"
		if o.Required {
			req = "required"
		}
		lines = append(lines, fmt.Sprintf("`%s` (%s, %s) - %s", o.Name, o.Type, req, o.Description))
	}
	if len(lines) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Options",
			Value: strings.Join(lines, "\n"),
		})
	}
	return embed
}
