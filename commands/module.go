package commands

import (
	"sort"

	"github.com/a04k/cogslash/model"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Cog is a plugin that groups slash commands.
type Cog interface {
	// Name identifies the cog; a cog is registered at most once per name.
	Name() string
	// SlashCommands returns the cog's *model.CommandObject and
	// *model.SubcommandObject descriptors.
	SlashCommands() []model.Entry
}

// AddCog registers every command of cog. Nothing is registered when one of
// them collides with an existing command.
func (sc *SlashCommand) AddCog(cog Cog) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	log := sc.log.WithField("cog", cog.Name())
	if _, exists := sc.cogs[cog.Name()]; exists {
		log.Warn("Cog already registered, skipping")
		return nil
	}

	entries := cog.SlashCommands()
	var added []model.Entry
	for _, e := range entries {
		var err error
		switch x := e.(type) {
		case *model.CommandObject:
			err = sc.addCommand(x)
		case *model.SubcommandObject:
			err = sc.addSubcommand(x)
		default:
			log.WithField("entry", e.Key()).Warn("Ignoring unknown command entry")
			continue
		}
		if err != nil {
			for _, a := range added {
				sc.removeEntry(a)
			}
			return err
		}
		added = append(added, e)
	}

	sc.cogs[cog.Name()] = added
	log.WithField("commands", len(added)).Info("Cog registered")
	return nil
}

// RemoveCog unregisters every command cog registered.
func (sc *SlashCommand) RemoveCog(cog Cog) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	entries, ok := sc.cogs[cog.Name()]
	if !ok {
		return
	}
	for _, e := range entries {
		sc.removeEntry(e)
	}
	delete(sc.cogs, cog.Name())
	sc.log.WithFields(logrus.Fields{"cog": cog.Name(), "commands": len(entries)}).Info("Cog removed")
}

func (sc *SlashCommand) addCommand(c *model.CommandObject) error {
	if _, exists := sc.commands[c.Name()]; exists {
		return &DuplicateCommandError{Name: c.Name()}
	}
	sc.commands[c.Name()] = &commandNode{
		name:        c.Name(),
		description: c.Description(),
		guildIDs:    c.AllowedGuildIDs(),
		command:     c,
	}
	return nil
}

func (sc *SlashCommand) addSubcommand(s *model.SubcommandObject) error {
	node, exists := sc.commands[s.Base()]
	if !exists {
		node = &commandNode{
			name:        s.Base(),
			description: s.BaseDescription(),
			guildIDs:    s.AllowedGuildIDs(),
		}
	} else if !sameGuilds(node.guildIDs, s.AllowedGuildIDs()) {
		return &GuildMismatchError{Name: s.Key(), GuildIDs: s.AllowedGuildIDs(), BaseGuilds: node.guildIDs}
	}

	if s.SubcommandGroup() == "" {
		if _, dup := node.subcommands[s.Name()]; dup {
			return &DuplicateCommandError{Name: s.Key()}
		}
		if node.subcommands == nil {
			node.subcommands = make(map[string]*model.SubcommandObject)
		}
		node.subcommands[s.Name()] = s
	} else {
		group, ok := node.groups[s.SubcommandGroup()]
		if !ok {
			group = &groupNode{
				name:        s.SubcommandGroup(),
				description: s.SubcommandGroupDescription(),
				subcommands: make(map[string]*model.SubcommandObject),
			}
		}
		if _, dup := group.subcommands[s.Name()]; dup {
			return &DuplicateCommandError{Name: s.Key()}
		}
		group.subcommands[s.Name()] = s
		if node.groups == nil {
			node.groups = make(map[string]*groupNode)
		}
		node.groups[group.name] = group
	}

	sc.commands[node.name] = node
	return nil
}

// sameGuilds reports whether a and b hold the same guild IDs in any order.
// Empty means global.
func sameGuilds(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		if seen[id] == 0 {
			return false
		}
		seen[id]--
	}
	return true
}

// removeEntry drops e if it is still the registered descriptor at its path.
func (sc *SlashCommand) removeEntry(e model.Entry) {
	switch x := e.(type) {
	case *model.CommandObject:
		node, ok := sc.commands[x.Name()]
		if !ok || node.command != x {
			return
		}
		node.command = nil
		if !node.hasSubcommands() {
			delete(sc.commands, x.Name())
		}

	case *model.SubcommandObject:
		node, ok := sc.commands[x.Base()]
		if !ok {
			return
		}
		if x.SubcommandGroup() == "" {
			if node.subcommands[x.Name()] == x {
				delete(node.subcommands, x.Name())
			}
		} else if group, ok := node.groups[x.SubcommandGroup()]; ok {
			if group.subcommands[x.Name()] == x {
				delete(group.subcommands, x.Name())
			}
			if len(group.subcommands) == 0 {
				delete(node.groups, group.name)
			}
		}
		if !node.hasSubcommands() && node.command == nil {
			delete(sc.commands, node.name)
		}
	}
}

// ApplicationCommands renders the registered commands as Discord payloads
// grouped by scope: the empty key holds global commands, other keys are
// guild IDs.
func (sc *SlashCommand) ApplicationCommands() map[string][]*discordgo.ApplicationCommand {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	names := make([]string, 0, len(sc.commands))
	for name := range sc.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	scopes := make(map[string][]*discordgo.ApplicationCommand)
	for _, name := range names {
		node := sc.commands[name]
		if len(node.guildIDs) == 0 {
			scopes[""] = append(scopes[""], node.applicationCommand())
			continue
		}
		for _, guildID := range node.guildIDs {
			scopes[guildID] = append(scopes[guildID], node.applicationCommand())
		}
	}
	return scopes
}

func (n *commandNode) applicationCommand() *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        n.name,
		Description: n.description,
	}
	if !n.hasSubcommands() {
		if n.command != nil {
			cmd.Options = n.command.Options()
		}
		return cmd
	}

	for _, name := range sortedKeys(n.groups) {
		group := n.groups[name]
		opt := &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
			Name:        group.name,
			Description: group.description,
		}
		for _, subName := range sortedKeys(group.subcommands) {
			opt.Options = append(opt.Options, subcommandOption(group.subcommands[subName]))
		}
		cmd.Options = append(cmd.Options, opt)
	}
	for _, name := range sortedKeys(n.subcommands) {
		cmd.Options = append(cmd.Options, subcommandOption(n.subcommands[name]))
	}
	return cmd
}

func subcommandOption(s *model.SubcommandObject) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        s.Name(),
		Description: s.Description(),
		Options:     s.Options(),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
