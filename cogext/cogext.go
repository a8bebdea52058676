// Package cogext declares slash commands and subcommands for cogs.
//
// A handler is a function taking the slash context and an argument struct:
//
//	type SayArgs struct {
//		Text string `desc:"What to say"`
//	}
//
//	func (c *Example) GroupSay(ctx *model.Context, args SayArgs) error {
//		return ctx.Send(args.Text)
//	}
//
// The cog returns the descriptors from its SlashCommands method:
//
//	func (c *Example) SlashCommands() []model.Entry {
//		return []model.Entry{
//			cogext.MustSlash(c.Ping, cogext.SlashOptions{Name: "ping"}),
//			cogext.MustSubcommand(c.GroupSay, cogext.SubcommandOptions{Base: "group", Name: "say"}),
//		}
//	}
//
// Exported fields of the argument struct become the command options. A
// handler taking map[string]interface{} receives the raw converted values and
// must declare its options explicitly. When no description is given, the
// handler's doc comment is used if it was registered (see cogctl docgen),
// otherwise a placeholder.
package cogext

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/a04k/cogslash/model"
	"github.com/a04k/cogslash/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	defaultDescription    = "No description"
	defaultSubDescription = "No Description."
)

// ErrMissingBase is returned by Subcommand when no base command name is set.
var ErrMissingBase = errors.New("subcommand needs a base command")

// SlashOptions are the settings of a slash command. Zero values mean
// "not given" and fall back to defaults.
type SlashOptions struct {
	// Name of the command. Defaults to the handler's name in snake_case.
	Name string
	// Description of the command. Defaults to the handler's doc comment.
	Description string
	// AutoConvert is used only when the command ends up without options.
	AutoConvert model.AutoConvert
	// GuildIDs limits the command to these guilds; empty means global.
	GuildIDs []string
	// Options replaces the generated options. nil generates them from the
	// argument struct, an empty non-nil slice declares no options.
	Options []*discordgo.ApplicationCommandOption
}

// SubcommandOptions are the settings of a subcommand.
type SubcommandOptions struct {
	Base            string
	SubcommandGroup string
	Name            string
	Description     string

	BaseDescription string
	// BaseDesc is an alias of BaseDescription.
	BaseDesc string

	SubcommandGroupDescription string
	// SubGroupDesc is an alias of SubcommandGroupDescription.
	SubGroupDesc string

	AutoConvert model.AutoConvert
	GuildIDs    []string
	Options     []*discordgo.ApplicationCommandOption
}

// Slash wraps fn into a slash command descriptor.
func Slash[A any](fn func(*model.Context, A) error, opts SlashOptions) (*model.CommandObject, error) {
	name := opts.Name
	if name == "" {
		name = utils.CommandName(utils.FuncName(fn))
	}
	m, err := resolve(fn, opts.Description, opts.Options, opts.AutoConvert)
	if err != nil {
		return nil, fmt.Errorf("slash command %q: %w", name, err)
	}

	return model.NewCommandObject(model.CommandData{
		Name:           name,
		Description:    m.description,
		AutoConvert:    m.autoConvert,
		GuildIDs:       opts.GuildIDs,
		Options:        m.options,
		HasSubcommands: false,
		Func:           fn,
		Invoke:         invoker(fn),
	}), nil
}

// MustSlash is like Slash but panics on error. It is meant for cog
// declarations, where an error is a programming mistake.
func MustSlash[A any](fn func(*model.Context, A) error, opts SlashOptions) *model.CommandObject {
	c, err := Slash(fn, opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Subcommand wraps fn into a subcommand descriptor.
func Subcommand[A any](fn func(*model.Context, A) error, opts SubcommandOptions) (*model.SubcommandObject, error) {
	baseDescription := opts.BaseDescription
	if baseDescription == "" {
		baseDescription = opts.BaseDesc
	}
	groupDescription := opts.SubcommandGroupDescription
	if groupDescription == "" {
		groupDescription = opts.SubGroupDesc
	}

	name := opts.Name
	if name == "" {
		name = utils.CommandName(utils.FuncName(fn))
	}
	if opts.Base == "" {
		return nil, fmt.Errorf("subcommand %q: %w", name, ErrMissingBase)
	}
	m, err := resolve(fn, opts.Description, opts.Options, opts.AutoConvert)
	if err != nil {
		return nil, fmt.Errorf("subcommand %q of %q: %w", name, opts.Base, err)
	}

	if baseDescription == "" {
		baseDescription = defaultSubDescription
	}
	if groupDescription == "" {
		groupDescription = defaultSubDescription
	}

	return model.NewSubcommandObject(model.SubcommandData{
		Base:                       opts.Base,
		SubcommandGroup:            opts.SubcommandGroup,
		Name:                       name,
		Description:                m.description,
		BaseDescription:            baseDescription,
		SubcommandGroupDescription: groupDescription,
		AutoConvert:                m.autoConvert,
		GuildIDs:                   opts.GuildIDs,
		Options:                    m.options,
		Func:                       fn,
		Invoke:                     invoker(fn),
	}), nil
}

// MustSubcommand is like Subcommand but panics on error.
func MustSubcommand[A any](fn func(*model.Context, A) error, opts SubcommandOptions) *model.SubcommandObject {
	s, err := Subcommand(fn, opts)
	if err != nil {
		panic(err)
	}
	return s
}

type metadata struct {
	description string
	options     []*discordgo.ApplicationCommandOption
	autoConvert model.AutoConvert
}

// resolve applies the description fallback and derives options and the
// auto-convert map shared by Slash and Subcommand.
func resolve[A any](fn func(*model.Context, A) error, description string, options []*discordgo.ApplicationCommandOption, autoConvert model.AutoConvert) (metadata, error) {
	var m metadata

	m.description = description
	if m.description == "" {
		m.description = utils.Doc(fn)
	}
	if m.description == "" {
		m.description = defaultDescription
	}

	m.options = options
	if options == nil {
		generated, err := utils.GenerateOptions(reflect.TypeOf((*A)(nil)).Elem(), m.description)
		if err != nil {
			return m, err
		}
		m.options = generated
	}

	if len(m.options) > 0 {
		convert, err := utils.GenerateAutoConvert(m.options)
		if err != nil {
			return m, err
		}
		m.autoConvert = convert
	} else {
		m.autoConvert = autoConvert
	}
	return m, nil
}

// invoker decodes option values into a fresh A and calls fn.
func invoker[A any](fn func(*model.Context, A) error) model.Invoker {
	return func(ctx *model.Context, values map[string]interface{}) error {
		var args A
		if reflect.TypeOf((*A)(nil)).Elem().Kind() == reflect.Struct {
			if err := utils.Bind(&args, values); err != nil {
				return err
			}
		} else if raw, ok := any(values).(A); ok {
			args = raw
		}
		return fn(ctx, args)
	}
}
