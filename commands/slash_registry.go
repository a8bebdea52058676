package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/a04k/cogslash/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// commandNeedsUpdate checks if an existing command needs to be updated
func commandNeedsUpdate(existing, desired *discordgo.ApplicationCommand) bool {
	if existing.Name != desired.Name {
		return true
	}
	if existing.Description != desired.Description {
		return true
	}
	return hashCommand(existing) != hashCommand(desired)
}

// Sync registers and updates the slash commands of every scope with
// Discord. Scopes the store remembers but no cog uses any more are cleaned
// up as well.
func (sc *SlashCommand) Sync(ctx context.Context, appID string) error {
	scopes := sc.ApplicationCommands()

	known, err := sc.store.Scopes(ctx)
	if err != nil {
		sc.log.WithError(err).Warn("Could not list cached command scopes")
	}
	// The global scope is always checked so unused global commands get
	// cleaned up even when every command is guild scoped.
	for _, scope := range append(known, "") {
		if _, ok := scopes[scope]; !ok {
			scopes[scope] = nil
		}
	}

	names := make([]string, 0, len(scopes))
	for scope := range scopes {
		names = append(names, scope)
	}
	sort.Strings(names)

	var result *multierror.Error
	for _, scope := range names {
		if err := sc.syncScope(ctx, appID, scope, scopes[scope]); err != nil {
			result = multierror.Append(result, err)
		}
		if ctx.Err() != nil {
			result = multierror.Append(result, ctx.Err())
			break
		}
	}
	return result.ErrorOrNil()
}

// syncScope registers desired in one scope: creates missing commands,
// edits changed ones and deletes the obsolete ones this bot owns.
func (sc *SlashCommand) syncScope(ctx context.Context, appID, guildID string, desired []*discordgo.ApplicationCommand) error {
	log := sc.log.WithField("scope", scopeName(guildID))

	// Get existing commands
	existingCommands, err := sc.client.ApplicationCommands(appID, guildID)
	if err != nil {
		return fmt.Errorf("fetch commands for %s: %w", scopeName(guildID), err)
	}
	existingMap := make(map[string]*discordgo.ApplicationCommand, len(existingCommands))
	for _, cmd := range existingCommands {
		existingMap[cmd.Name] = cmd
	}

	owned, err := sc.store.Hashes(ctx, guildID)
	if err != nil {
		log.WithError(err).Warn("Could not load command hashes")
		owned = map[string]string{}
	}

	var result *multierror.Error
	hashes := make(map[string]string, len(desired))

	for _, cmd := range desired {
		l := log.WithField("command", cmd.Name)
		if existing, exists := existingMap[cmd.Name]; exists {
			delete(existingMap, cmd.Name)
			if !commandNeedsUpdate(existing, cmd) {
				hashes[cmd.Name] = hashCommand(cmd)
				continue
			}
			if err := sc.pace.Wait(ctx); err != nil {
				return err
			}
			l.Info("Updating slash command")
			if _, err := sc.client.ApplicationCommandEdit(appID, guildID, existing.ID, cmd); err != nil {
				l.WithError(err).Error("Error updating command")
				result = multierror.Append(result, fmt.Errorf("update %s: %w", cmd.Name, err))
				continue
			}
		} else {
			if err := sc.pace.Wait(ctx); err != nil {
				return err
			}
			l.Info("Creating slash command")
			if _, err := sc.client.ApplicationCommandCreate(appID, guildID, cmd); err != nil {
				l.WithError(err).Error("Error creating command")
				result = multierror.Append(result, fmt.Errorf("create %s: %w", cmd.Name, err))
				continue
			}
		}
		hashes[cmd.Name] = hashCommand(cmd)
	}

	// Delete any remaining commands that are no longer wanted
	for name, cmd := range existingMap {
		if _, ours := owned[name]; !ours && !sc.deleteUnused {
			continue
		}
		if err := sc.pace.Wait(ctx); err != nil {
			return err
		}
		log.WithField("command", name).Info("Deleting unused slash command")
		if err := sc.client.ApplicationCommandDelete(appID, guildID, cmd.ID); err != nil {
			log.WithFields(logrus.Fields{"command": name, "error": err}).Error("Error deleting command")
			result = multierror.Append(result, fmt.Errorf("delete %s: %w", name, err))
			if h, ours := owned[name]; ours {
				hashes[name] = h
			}
		}
	}

	if err := sc.store.SaveHashes(ctx, guildID, hashes); err != nil {
		log.WithError(err).Warn("Could not save command hashes")
	}
	return result.ErrorOrNil()
}

func scopeName(guildID string) string {
	if guildID == "" {
		return "global"
	}
	return "guild " + guildID
}

// SyncGuild registers only the commands of one guild; pass an empty guild
// ID for global commands.
func (sc *SlashCommand) SyncGuild(ctx context.Context, appID, guildID string) error {
	return sc.syncScope(ctx, appID, guildID, sc.ApplicationCommands()[guildID])
}

// AllowedIn reports whether a command called name may be used in guildID.
func (sc *SlashCommand) AllowedIn(name, guildID string) bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	node, ok := sc.commands[name]
	if !ok {
		return false
	}
	return len(node.guildIDs) == 0 || utils.ContainsString(node.guildIDs, guildID)
}
