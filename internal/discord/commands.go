package discord

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/keshon/lavacog/internal/command"
	"github.com/keshon/lavacog/pkg/cmd"
)

// commandCreateRate keeps slash command creation under Discord's limit.
const commandCreateRate = rate.Limit(40)

// registerCommands syncs the guild's slash commands with the registry,
// touching only commands whose definition changed since the last sync.
func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	existing, err := b.dg.ApplicationCommands(appID, guildID)
	if err != nil {
		log.Printf("[WARN] [%s] Failed to list existing commands: %v", guildID, err)
	}
	localHashes := b.cache.load(guildID)

	wanted := slashDefinitions(b.registry)
	wantedHashes := make(map[string]string, len(wanted))
	for _, def := range wanted {
		wantedHashes[def.Name] = hashCommand(def)
	}

	// Delete obsolete
	for _, old := range existing {
		if _, ok := wantedHashes[old.Name]; !ok {
			log.Printf("[INFO] [%s] Deleting obsolete command: %s", guildID, old.Name)
			if err := b.dg.ApplicationCommandDelete(appID, guildID, old.ID); err != nil {
				log.Printf("[ERR] [%s] Failed to delete %s: %v", guildID, old.Name, err)
			}
			delete(localHashes, old.Name)
		}
	}

	present := make(map[string]bool, len(existing))
	for _, c := range existing {
		present[c.Name] = true
	}

	// Create or update changed commands
	var changed []*discordgo.ApplicationCommand
	for _, def := range wanted {
		if !present[def.Name] || localHashes[def.Name] != wantedHashes[def.Name] {
			changed = append(changed, def)
		}
	}

	if len(changed) > 0 {
		log.Printf("[INFO] [%s] %d commands changed, updating...", guildID, len(changed))
		limiter := rate.NewLimiter(commandCreateRate, 1)
		for _, def := range changed {
			if err := limiter.Wait(context.Background()); err != nil {
				return err
			}
			if _, err := b.dg.ApplicationCommandCreate(appID, guildID, def); err != nil {
				log.Printf("[ERR] Can't create command %s: %v", def.Name, err)
				continue
			}
			localHashes[def.Name] = wantedHashes[def.Name]
			log.Printf("[DONE] Command created: %s", def.Name)
		}
	}

	return b.cache.save(guildID, localHashes)
}

// slashDefinitions collects the slash definition of every registered command.
func slashDefinitions(reg *cmd.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range reg.GetAll() {
		sp, ok := cmd.Root(c).(command.SlashProvider)
		if !ok {
			continue
		}
		def := sp.SlashDefinition()
		if def == nil {
			continue
		}
		if def.Type == 0 {
			def.Type = discordgo.ChatApplicationCommand
		}
		defs = append(defs, def)
	}
	return defs
}
