package commands

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/a04k/cogslash/model"
	"github.com/a04k/cogslash/store"
	"github.com/a04k/cogslash/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// CommandClient is the part of *discordgo.Session used to register commands.
type CommandClient interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandEdit(appID, guildID, cmdID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
}

// DuplicateCommandError is returned when a cog declares a command, or a
// subcommand path, that is already registered.
type DuplicateCommandError struct {
	Name string
}

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("duplicate command name detected: %s", e.Name)
}

// GuildMismatchError is returned when a subcommand is declared for other
// guilds than the base it attaches to. Discord scopes whole commands, so a
// subcommand cannot narrow or widen its base.
type GuildMismatchError struct {
	Name       string
	GuildIDs   []string
	BaseGuilds []string
}

func (e *GuildMismatchError) Error() string {
	return fmt.Sprintf("subcommand %s is declared for guilds %v but its base is registered for %v", e.Name, e.GuildIDs, e.BaseGuilds)
}

// SlashCommand collects cog commands, publishes them to Discord and routes
// interactions back to their handlers.
type SlashCommand struct {
	mu       sync.RWMutex
	commands map[string]*commandNode
	cogs     map[string][]model.Entry

	client       CommandClient
	store        store.Store
	log          logrus.FieldLogger
	limiter      *utils.RateLimiter
	pace         *rate.Limiter
	deleteUnused bool
}

// Option configures a SlashCommand.
type Option func(*SlashCommand)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(sc *SlashCommand) { sc.log = l }
}

// WithStore sets the command hash cache used by Sync.
func WithStore(s store.Store) Option {
	return func(sc *SlashCommand) { sc.store = s }
}

// WithRateLimiter limits how often a user may invoke each command.
func WithRateLimiter(rl *utils.RateLimiter) Option {
	return func(sc *SlashCommand) { sc.limiter = rl }
}

// WithDeleteUnused makes Sync delete remote commands no cog declares.
func WithDeleteUnused(v bool) Option {
	return func(sc *SlashCommand) { sc.deleteUnused = v }
}

// WithSyncInterval sets the minimum delay between registration API calls.
func WithSyncInterval(d time.Duration) Option {
	return func(sc *SlashCommand) {
		if d <= 0 {
			sc.pace = rate.NewLimiter(rate.Inf, 1)
			return
		}
		sc.pace = rate.NewLimiter(rate.Every(d), 1)
	}
}

// New creates a dispatcher that registers commands through client.
func New(client CommandClient, opts ...Option) *SlashCommand {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	sc := &SlashCommand{
		commands: make(map[string]*commandNode),
		cogs:     make(map[string][]model.Entry),
		client:   client,
		store:    store.NewMemory(),
		log:      discard,
		pace:     rate.NewLimiter(rate.Every(25*time.Millisecond), 1),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// commandNode is a top level command: a plain command, a base holding
// subcommands, or both.
type commandNode struct {
	name        string
	description string
	guildIDs    []string
	command     *model.CommandObject
	subcommands map[string]*model.SubcommandObject
	groups      map[string]*groupNode
}

type groupNode struct {
	name        string
	description string
	subcommands map[string]*model.SubcommandObject
}

func (n *commandNode) hasSubcommands() bool {
	return len(n.subcommands) > 0 || len(n.groups) > 0
}

// Command returns the registered slash command called name.
func (sc *SlashCommand) Command(name string) (*model.CommandObject, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	n, ok := sc.commands[name]
	if !ok || n.command == nil {
		return nil, false
	}
	return n.command, true
}

// HasCommand reports whether a top level command node exists for name,
// including bases created only to hold subcommands.
func (sc *SlashCommand) HasCommand(name string) bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	_, ok := sc.commands[name]
	return ok
}

// HasSubcommands reports whether the command called name has subcommands.
func (sc *SlashCommand) HasSubcommands(name string) bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	n, ok := sc.commands[name]
	return ok && n.hasSubcommands()
}

// Subcommand returns the registered subcommand base [group] name. Pass an
// empty group for subcommands outside a group.
func (sc *SlashCommand) Subcommand(base, group, name string) (*model.SubcommandObject, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	n, ok := sc.commands[base]
	if !ok {
		return nil, false
	}
	if group == "" {
		s, ok := n.subcommands[name]
		return s, ok
	}
	g, ok := n.groups[group]
	if !ok {
		return nil, false
	}
	s, ok := g.subcommands[name]
	return s, ok
}
