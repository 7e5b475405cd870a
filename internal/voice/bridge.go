// Package voice bridges Discord voice membership and the audio node: it joins
// and leaves channels on the gateway and relays the resulting voice events to
// the node client.
package voice

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavacog/internal/music/node"
	"github.com/keshon/lavacog/internal/music/player"
)

var ErrNoPlayer = errors.New("no player for guild")

// Gateway is the voice-state primitive of *discordgo.Session. An empty
// channelID leaves voice.
type Gateway interface {
	ChannelVoiceJoinManual(guildID, channelID string, mute, deaf bool) error
}

// Relay accepts voice updates for the audio node.
type Relay interface {
	HandleVoiceUpdate(ctx context.Context, u node.VoiceUpdate) error
}

// Players is the per-guild player registry.
type Players interface {
	Create(guildID string) *player.Player
	Get(guildID string) *player.Player
	Remove(guildID string)
}

// Bridge is one guild's voice connection.
type Bridge struct {
	guildID string
	gateway Gateway
	relay   Relay
	players Players
	release func()
}

func (b *Bridge) GuildID() string { return b.guildID }

// Connect ensures a player exists and moves the bot into channelID.
func (b *Bridge) Connect(ctx context.Context, channelID string) error {
	b.players.Create(b.guildID)
	if err := b.gateway.ChannelVoiceJoinManual(b.guildID, channelID, false, false); err != nil {
		return fmt.Errorf("failed to join voice channel %s in guild %s: %w", channelID, b.guildID, err)
	}
	log.Printf("[INFO] Joining voice channel %s in guild %s", channelID, b.guildID)
	return nil
}

// Disconnect leaves voice. Without force it does nothing when the player is
// not connected. The player's channel is cleared here because no final voice
// state update is delivered after the bot leaves. An idle player is dropped
// from the registry; one with queued tracks is kept for the next connect.
func (b *Bridge) Disconnect(ctx context.Context, force bool) error {
	p := b.players.Get(b.guildID)
	if p == nil {
		if !force {
			return fmt.Errorf("%w %s", ErrNoPlayer, b.guildID)
		}
	} else if !force && !p.IsConnected() {
		return nil
	}

	if err := b.gateway.ChannelVoiceJoinManual(b.guildID, "", false, false); err != nil {
		return fmt.Errorf("failed to leave voice in guild %s: %w", b.guildID, err)
	}
	if p != nil {
		p.ClearChannelID()
		if p.Idle() {
			b.players.Remove(b.guildID)
		}
	}
	if b.release != nil {
		b.release()
	}
	log.Printf("[INFO] Left voice in guild %s", b.guildID)
	return nil
}

func (b *Bridge) OnVoiceServerUpdate(ctx context.Context, ev *discordgo.VoiceServerUpdate) error {
	return b.relay.HandleVoiceUpdate(ctx, node.VoiceUpdate{Type: node.VoiceServerUpdate, Data: ev})
}

func (b *Bridge) OnVoiceStateUpdate(ctx context.Context, ev *discordgo.VoiceStateUpdate) error {
	return b.relay.HandleVoiceUpdate(ctx, node.VoiceUpdate{Type: node.VoiceStateUpdate, Data: ev})
}

// Bridges holds the live bridge of every guild the bot is in voice in.
type Bridges struct {
	mu      sync.Mutex
	bridges map[string]*Bridge
	gateway Gateway
	relay   Relay
	players Players
}

func NewBridges(gateway Gateway, relay Relay, players Players) *Bridges {
	return &Bridges{
		bridges: make(map[string]*Bridge),
		gateway: gateway,
		relay:   relay,
		players: players,
	}
}

// For returns the guild's bridge, creating it if absent.
func (s *Bridges) For(guildID string) *Bridge {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.bridges[guildID]; ok {
		return b
	}
	b := s.newBridge(guildID)
	s.bridges[guildID] = b
	return b
}

// Lookup returns the guild's bridge without creating one.
func (s *Bridges) Lookup(guildID string) (*Bridge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bridges[guildID]
	return b, ok
}

func (s *Bridges) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bridges)
}

func (s *Bridges) newBridge(guildID string) *Bridge {
	b := &Bridge{
		guildID: guildID,
		gateway: s.gateway,
		relay:   s.relay,
		players: s.players,
	}
	b.release = func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.bridges[guildID] == b {
			delete(s.bridges, guildID)
		}
	}
	return b
}

// Connect joins channelID in guildID.
func (s *Bridges) Connect(ctx context.Context, guildID, channelID string) error {
	return s.For(guildID).Connect(ctx, channelID)
}

// Disconnect leaves voice in guildID. A guild without a bridge still gets a
// leave request when force is set.
func (s *Bridges) Disconnect(ctx context.Context, guildID string, force bool) error {
	if b, ok := s.Lookup(guildID); ok {
		return b.Disconnect(ctx, force)
	}
	return s.newBridge(guildID).Disconnect(ctx, force)
}

// OnVoiceServerUpdate is a discordgo event handler.
func (s *Bridges) OnVoiceServerUpdate(_ *discordgo.Session, ev *discordgo.VoiceServerUpdate) {
	if err := s.bridgeOrTransient(ev.GuildID).OnVoiceServerUpdate(context.Background(), ev); err != nil {
		log.Printf("[ERR] Failed to relay voice server update for guild %s: %v", ev.GuildID, err)
	}
}

// OnVoiceStateUpdate is a discordgo event handler.
func (s *Bridges) OnVoiceStateUpdate(_ *discordgo.Session, ev *discordgo.VoiceStateUpdate) {
	if ev.VoiceState == nil {
		return
	}
	if err := s.bridgeOrTransient(ev.GuildID).OnVoiceStateUpdate(context.Background(), ev); err != nil {
		log.Printf("[ERR] Failed to relay voice state update for guild %s: %v", ev.GuildID, err)
	}
}

// bridgeOrTransient returns the live bridge, or an unregistered one so events
// for guilds joined outside a bridge are still relayed.
func (s *Bridges) bridgeOrTransient(guildID string) *Bridge {
	if b, ok := s.Lookup(guildID); ok {
		return b
	}
	return s.newBridge(guildID)
}
