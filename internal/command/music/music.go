// Package music implements the music commands on top of the per-guild
// players and the voice bridge.
package music

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavacog/internal/bot"
	"github.com/keshon/lavacog/internal/command"
	"github.com/keshon/lavacog/internal/music/player"
)

const (
	category  = "Music"
	noticeTTL = 5 * time.Second
)

// Players is the per-guild player registry.
type Players interface {
	Create(guildID string) *player.Player
	Get(guildID string) *player.Player
}

// Link joins and leaves voice channels.
type Link interface {
	Connect(ctx context.Context, guildID, channelID string) error
	Disconnect(ctx context.Context, guildID string, force bool) error
}

// Voice answers questions about Discord voice state.
type Voice interface {
	// UserVoiceChannel returns the voice channel userID sits in.
	UserVoiceChannel(guildID, userID string) (string, bool)
	// BotPermissions returns the bot's permissions in channelID.
	BotPermissions(channelID string) (int64, error)
}

// Music holds the services every music command needs.
type Music struct {
	Players Players
	Link    Link
	Voice   Voice
}

// Commands returns every music command.
func (m *Music) Commands() []command.DiscordCommand {
	return []command.DiscordCommand{
		&PlayCommand{m},
		&SkipCommand{m},
		&StopCommand{m},
		&QueueCommand{m},
		&PauseCommand{m},
		&RepeatCommand{m},
		&DisconnectCommand{m},
	}
}

// TrackHook reacts to player events. Only queue end needs action: the bot
// leaves voice.
func (m *Music) TrackHook(e player.Event) {
	switch ev := e.(type) {
	case player.QueueEndEvent:
		if err := m.Link.Disconnect(context.Background(), ev.Guild, true); err != nil {
			log.Printf("[ERR] Failed to leave voice after queue end in guild %s: %v", ev.Guild, err)
		}
	case player.TrackStartEvent, player.TrackEndEvent, player.TrackStuckEvent:
		log.Printf("[DEBUG] %s in guild %s, nothing to do", e.Kind(), e.GuildID())
	case player.TrackExceptionEvent:
		log.Printf("[WARN] Track %q failed in guild %s: %s", ev.Track.Title, ev.Guild, ev.Message)
	case player.WebSocketClosedEvent:
		log.Printf("[WARN] Voice websocket closed in guild %s: %d %s (remote=%v)", ev.Guild, ev.Code, ev.Reason, ev.ByRemote)
	default:
		log.Printf("[DEBUG] Unhandled player event %s in guild %s", e.Kind(), e.GuildID())
	}
}

// player returns the guild's player, or nil when none exists.
func (m *Music) player(guildID string) *player.Player {
	return m.Players.Get(guildID)
}

func notice(data interface{}, text string) error {
	return command.Respond(data, command.Reply{Content: text, DeleteAfter: noticeTTL})
}

func embedNotice(data interface{}, title string) error {
	return command.Respond(data, command.Reply{
		Embed:       &discordgo.MessageEmbed{Title: title, Color: bot.EmbedColor},
		DeleteAfter: noticeTTL,
	})
}

func origin(data interface{}) command.Origin {
	o, _ := command.OriginOf(data)
	return o
}
