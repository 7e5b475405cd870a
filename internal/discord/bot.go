// Package discord runs the Discord session: it routes prefix messages, slash
// commands and button clicks into the command registry and feeds voice events
// to the voice bridges.
package discord

import (
	"context"
	"fmt"
	"log"
	"slices"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavacog/internal/config"
	"github.com/keshon/lavacog/pkg/cmd"
)

// VoiceHandlers receives the raw voice gateway events.
type VoiceHandlers interface {
	OnVoiceServerUpdate(s *discordgo.Session, ev *discordgo.VoiceServerUpdate)
	OnVoiceStateUpdate(s *discordgo.Session, ev *discordgo.VoiceStateUpdate)
}

// Bot is a Discord bot
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	registry *cmd.Registry
	cache    *commandCache
}

// New wires the handlers onto dg. The session is opened by Run.
func New(dg *discordgo.Session, cfg *config.Config, registry *cmd.Registry, voice VoiceHandlers) *Bot {
	b := &Bot{
		dg:       dg,
		cfg:      cfg,
		registry: registry,
		cache:    newCommandCache(cfg.StoragePath),
	}

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(voice.OnVoiceServerUpdate)
	dg.AddHandler(voice.OnVoiceStateUpdate)
	return b
}

// Run opens the session and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received. Cleaning up...")
	return nil
}

// configureIntents configures the Discord intents
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsMessageContent
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	// Slash commands are synced per guild from onGuildCreate, which follows
	// Ready for every guild.
	for _, g := range r.Guilds {
		b.leaveIfBlacklisted(s, g.ID)
	}
	log.Printf("[INFO] Discord bot %v is running.", r.User.Username)
}

// onGuildCreate is called when a guild becomes available or the bot joins one
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf("[INFO] Guild available: %s (%s)", g.Guild.ID, g.Guild.Name)
	if b.leaveIfBlacklisted(s, g.Guild.ID) {
		return
	}
	b.syncGuildCommands(g.Guild.ID)
}

func (b *Bot) syncGuildCommands(guildID string) {
	if !b.cfg.InitSlashCommands {
		log.Println("[INFO] Registering slash commands skipped")
		return
	}
	if err := b.registerCommands(guildID); err != nil {
		log.Printf("[ERR] Error registering slash commands for guild %s: %v", guildID, err)
	}
}

func (b *Bot) leaveIfBlacklisted(s *discordgo.Session, guildID string) bool {
	if !b.isGuildBlacklisted(guildID) {
		return false
	}
	log.Printf("[INFO] Leaving blacklisted guild: %s", guildID)
	if err := s.GuildLeave(guildID); err != nil {
		log.Printf("[ERR] Failed to leave guild %s: %v", guildID, err)
	}
	return true
}

func (b *Bot) isGuildBlacklisted(guildID string) bool {
	return slices.Contains(b.cfg.DiscordGuildBlacklist, guildID)
}
