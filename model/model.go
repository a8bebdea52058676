package model

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

// ErrNoHandler is returned when a command node without a handler is invoked,
// e.g. a base command that only exists to hold subcommands.
var ErrNoHandler = errors.New("command has no handler")

// AutoConvert maps an option name to the option type its value is converted to.
type AutoConvert map[string]discordgo.ApplicationCommandOptionType

// Invoker decodes converted option values and calls the wrapped handler.
type Invoker func(ctx *Context, values map[string]interface{}) error

// NoArgs is the argument type of handlers that take no options.
type NoArgs struct{}

// Mentionable is the value of a MENTIONABLE option: either a user or a role.
type Mentionable struct {
	User *discordgo.User
	Role *discordgo.Role
}

// Entry is implemented by *CommandObject and *SubcommandObject so a cog can
// hand both kinds to the dispatcher in one list.
type Entry interface {
	Key() string
	GuildIDs() []string
}

// CommandData holds the metadata of a top level slash command.
type CommandData struct {
	Name           string
	Description    string
	AutoConvert    AutoConvert
	GuildIDs       []string
	Options        []*discordgo.ApplicationCommandOption
	HasSubcommands bool
	Func           interface{}
	Invoke         Invoker
}

// CommandObject is the descriptor of a slash command declared by a cog.
type CommandObject struct {
	name           string
	description    string
	autoConvert    AutoConvert
	guildIDs       []string
	options        []*discordgo.ApplicationCommandOption
	hasSubcommands bool
	fn             interface{}
	invoke         Invoker
}

// NewCommandObject copies d into a new descriptor.
func NewCommandObject(d CommandData) *CommandObject {
	return &CommandObject{
		name:           d.Name,
		description:    d.Description,
		autoConvert:    copyConvert(d.AutoConvert),
		guildIDs:       copyStrings(d.GuildIDs),
		options:        copyOptions(d.Options),
		hasSubcommands: d.HasSubcommands,
		fn:             d.Func,
		invoke:         d.Invoke,
	}
}

func (c *CommandObject) Name() string         { return c.name }
func (c *CommandObject) Description() string  { return c.description }
func (c *CommandObject) HasSubcommands() bool { return c.hasSubcommands }

// Func returns the handler the descriptor was built from.
func (c *CommandObject) Func() interface{} { return c.fn }

// AutoConvert returns a copy of the auto-convert map. A nil map means none was set.
func (c *CommandObject) AutoConvert() AutoConvert { return copyConvert(c.autoConvert) }

// AllowedGuildIDs returns the guilds the command is limited to; empty means global.
func (c *CommandObject) AllowedGuildIDs() []string { return copyStrings(c.guildIDs) }

// Options returns a copy of the option list.
func (c *CommandObject) Options() []*discordgo.ApplicationCommandOption {
	return copyOptions(c.options)
}

// Key implements Entry.
func (c *CommandObject) Key() string { return c.name }

// GuildIDs implements Entry.
func (c *CommandObject) GuildIDs() []string { return c.AllowedGuildIDs() }

// Invoke runs the handler with the converted option values.
func (c *CommandObject) Invoke(ctx *Context, values map[string]interface{}) error {
	if c.invoke == nil {
		return ErrNoHandler
	}
	return c.invoke(ctx, values)
}

// SubcommandData holds the metadata of a subcommand.
type SubcommandData struct {
	Base                       string
	SubcommandGroup            string
	Name                       string
	Description                string
	BaseDescription            string
	SubcommandGroupDescription string
	AutoConvert                AutoConvert
	GuildIDs                   []string
	Options                    []*discordgo.ApplicationCommandOption
	Func                       interface{}
	Invoke                     Invoker
}

// SubcommandObject is the descriptor of a subcommand declared by a cog.
type SubcommandObject struct {
	data SubcommandData
}

// NewSubcommandObject copies d into a new descriptor.
func NewSubcommandObject(d SubcommandData) *SubcommandObject {
	d.AutoConvert = copyConvert(d.AutoConvert)
	d.GuildIDs = copyStrings(d.GuildIDs)
	d.Options = copyOptions(d.Options)
	return &SubcommandObject{data: d}
}

func (s *SubcommandObject) Base() string            { return s.data.Base }
func (s *SubcommandObject) SubcommandGroup() string { return s.data.SubcommandGroup }
func (s *SubcommandObject) Name() string            { return s.data.Name }
func (s *SubcommandObject) Description() string     { return s.data.Description }
func (s *SubcommandObject) BaseDescription() string { return s.data.BaseDescription }

func (s *SubcommandObject) SubcommandGroupDescription() string {
	return s.data.SubcommandGroupDescription
}

func (s *SubcommandObject) Func() interface{}         { return s.data.Func }
func (s *SubcommandObject) AutoConvert() AutoConvert  { return copyConvert(s.data.AutoConvert) }
func (s *SubcommandObject) AllowedGuildIDs() []string { return copyStrings(s.data.GuildIDs) }
func (s *SubcommandObject) GuildIDs() []string        { return s.AllowedGuildIDs() }
func (s *SubcommandObject) Options() []*discordgo.ApplicationCommandOption {
	return copyOptions(s.data.Options)
}

// Key returns "base group name", or "base name" without a group.
func (s *SubcommandObject) Key() string {
	if s.data.SubcommandGroup == "" {
		return s.data.Base + " " + s.data.Name
	}
	return s.data.Base + " " + s.data.SubcommandGroup + " " + s.data.Name
}

// Invoke runs the handler with the converted option values.
func (s *SubcommandObject) Invoke(ctx *Context, values map[string]interface{}) error {
	if s.data.Invoke == nil {
		return ErrNoHandler
	}
	return s.data.Invoke(ctx, values)
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

func copyConvert(in AutoConvert) AutoConvert {
	if in == nil {
		return nil
	}
	out := make(AutoConvert, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// copyOptions keeps the nil/empty distinction: nil means "not given".
func copyOptions(in []*discordgo.ApplicationCommandOption) []*discordgo.ApplicationCommandOption {
	if in == nil {
		return nil
	}
	out := make([]*discordgo.ApplicationCommandOption, len(in))
	for i, o := range in {
		c := *o
		if o.Options != nil {
			c.Options = copyOptions(o.Options)
		}
		if o.Choices != nil {
			c.Choices = append([]*discordgo.ApplicationCommandOptionChoice{}, o.Choices...)
		}
		out[i] = &c
	}
	return out
}
