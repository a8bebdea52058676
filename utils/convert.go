package utils

import (
	"errors"
	"fmt"

	"github.com/a04k/cogslash/model"

	"github.com/bwmarrin/discordgo"
)

// ErrSubcommandOption is returned when an option list used for auto-convert
// holds a subcommand or subcommand group.
var ErrSubcommandOption = errors.New("you can't use subcommand or subcommand_group type")

// GenerateAutoConvert maps every option name to its option type.
func GenerateAutoConvert(options []*discordgo.ApplicationCommandOption) (model.AutoConvert, error) {
	convert := make(model.AutoConvert, len(options))
	for _, o := range options {
		if o.Type == discordgo.ApplicationCommandOptionSubCommand || o.Type == discordgo.ApplicationCommandOptionSubCommandGroup {
			return nil, fmt.Errorf("option %q: %w", o.Name, ErrSubcommandOption)
		}
		convert[o.Name] = o.Type
	}
	return convert, nil
}

// ConvertOption returns the value handed to a handler for opt. Options listed
// in convert as USER, CHANNEL, ROLE or MENTIONABLE are resolved to objects
// through resolved; everything else is passed through unchanged.
func ConvertOption(opt *discordgo.ApplicationCommandInteractionDataOption, convert model.AutoConvert, resolved *discordgo.ApplicationCommandInteractionDataResolved, guildID string) interface{} {
	typ, ok := convert[opt.Name]
	if !ok {
		return opt.Value
	}
	switch typ {
	case discordgo.ApplicationCommandOptionUser, discordgo.ApplicationCommandOptionChannel,
		discordgo.ApplicationCommandOptionRole, discordgo.ApplicationCommandOptionMentionable:
	default:
		return opt.Value
	}
	raw, isString := opt.Value.(string)
	if !isString {
		return opt.Value
	}
	id, err := ParseSnowflake(raw)
	if err != nil {
		return opt.Value
	}

	switch typ {
	case discordgo.ApplicationCommandOptionUser:
		if v := resolveUser(id, resolved, guildID); v != nil {
			return v
		}
	case discordgo.ApplicationCommandOptionChannel:
		if resolved != nil {
			if c, ok := resolved.Channels[id]; ok {
				return c
			}
		}
	case discordgo.ApplicationCommandOptionRole:
		if resolved != nil {
			if r, ok := resolved.Roles[id]; ok {
				return r
			}
		}
	case discordgo.ApplicationCommandOptionMentionable:
		var m model.Mentionable
		if resolved != nil {
			m.User = resolved.Users[id]
			m.Role = resolved.Roles[id]
		}
		if m.User != nil || m.Role != nil {
			return m
		}
	}
	return id
}

// resolveUser prefers the guild member when the interaction happened in a
// guild and falls back to the plain user.
func resolveUser(id string, resolved *discordgo.ApplicationCommandInteractionDataResolved, guildID string) interface{} {
	if resolved == nil {
		return nil
	}
	user := resolved.Users[id]
	if guildID != "" {
		if m, ok := resolved.Members[id]; ok && m != nil {
			member := *m
			member.GuildID = guildID
			if member.User == nil {
				member.User = user
			}
			return &member
		}
	}
	if user != nil {
		return user
	}
	return nil
}

// ConvertOptions converts a whole option list into handler values.
func ConvertOptions(opts []*discordgo.ApplicationCommandInteractionDataOption, convert model.AutoConvert, resolved *discordgo.ApplicationCommandInteractionDataResolved, guildID string) map[string]interface{} {
	values := make(map[string]interface{}, len(opts))
	for _, o := range opts {
		values[o.Name] = ConvertOption(o, convert, resolved, guildID)
	}
	return values
}
