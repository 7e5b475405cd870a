// Package node is the bot's handle on the audio node: it owns the disgolink
// client, the per-guild player registry, the voice-update relay and the event
// hooks. One Client is built by the composition root and passed to whatever
// needs it.
package node

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"sync"

	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"

	"github.com/keshon/lavacog/internal/metrics"
	"github.com/keshon/lavacog/internal/music/player"
)

// link is the part of disgolink.Client this package drives.
type link interface {
	AddNode(ctx context.Context, config disgolink.NodeConfig) (disgolink.Node, error)
	Player(guildID snowflake.ID) disgolink.Player
	OnVoiceServerUpdate(ctx context.Context, guildID snowflake.ID, token string, endpoint string)
	OnVoiceStateUpdate(ctx context.Context, guildID snowflake.ID, channelID *snowflake.ID, sessionID string)
	Close()
}

// Hook receives every player event.
type Hook func(player.Event)

// Config describes one node.
type Config struct {
	Host     string
	Port     int
	Password string
	Region   string
	Name     string
	Secure   bool
}

type Client struct {
	link    link
	userID  string
	players *player.Registry
	metrics *metrics.Metrics

	mu    sync.RWMutex
	hooks []Hook
}

type Option func(*Client)

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New builds a client for the bot user userID. No node is contacted until
// AddNode.
func New(userID string, opts ...Option) (*Client, error) {
	id, err := snowflake.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid bot user id %q: %w", userID, err)
	}

	c := &Client{userID: userID}
	for _, opt := range opts {
		opt(c)
	}

	c.link = disgolink.New(id,
		disgolink.WithListenerFunc(c.onTrackStart),
		disgolink.WithListenerFunc(c.onTrackEnd),
		disgolink.WithListenerFunc(c.onTrackException),
		disgolink.WithListenerFunc(c.onTrackStuck),
		disgolink.WithListenerFunc(c.onWebSocketClosed),
	)
	c.players = player.NewRegistry(c.newBackend, c.dispatch)
	return c, nil
}

// AddNode connects to an audio node.
func (c *Client) AddNode(ctx context.Context, cfg Config) error {
	address := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	_, err := c.link.AddNode(ctx, disgolink.NodeConfig{
		Name:     cfg.Name,
		Address:  address,
		Password: cfg.Password,
		Secure:   cfg.Secure,
	})
	if err != nil {
		return fmt.Errorf("failed to add node %s (%s): %w", cfg.Name, address, err)
	}
	log.Printf("[INFO] Audio node %s connected | address=%s region=%s", cfg.Name, address, cfg.Region)
	return nil
}

// Players returns the per-guild player registry.
func (c *Client) Players() *player.Registry {
	return c.players
}

// AddEventHook registers h for every player event.
func (c *Client) AddEventHook(h Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, h)
}

// ClearEventHooks drops all hooks.
func (c *Client) ClearEventHooks() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = nil
}

// Close drops all hooks and disconnects from all nodes. Events still in
// flight from the node reach no hook.
func (c *Client) Close() {
	c.ClearEventHooks()
	c.link.Close()
}

func (c *Client) newBackend(guildID string) player.Backend {
	return &backend{link: c.link, guildID: guildID}
}

func (c *Client) dispatch(e player.Event) {
	c.metrics.NodeEvent(e.Kind())

	c.mu.RLock()
	hooks := make([]Hook, len(c.hooks))
	copy(hooks, c.hooks)
	c.mu.RUnlock()

	for _, h := range hooks {
		h(e)
	}
}

// advance moves the guild's queue on after a track ended.
func (c *Client) advance(ctx context.Context, guildID string, mayStartNext bool) {
	p := c.players.Get(guildID)
	if p == nil {
		return
	}
	if err := p.HandleTrackEnd(ctx, mayStartNext); err != nil {
		log.Printf("[ERR] Failed to advance queue for guild %s: %v", guildID, err)
	}
}

func (c *Client) onTrackStart(p disgolink.Player, e lavalink.TrackStartEvent) {
	c.dispatch(player.TrackStartEvent{
		Guild: p.GuildID().String(),
		Track: player.TrackFromLavalink(e.Track),
	})
}

func (c *Client) onTrackEnd(p disgolink.Player, e lavalink.TrackEndEvent) {
	guildID := p.GuildID().String()
	c.dispatch(player.TrackEndEvent{
		Guild:  guildID,
		Track:  player.TrackFromLavalink(e.Track),
		Reason: string(e.Reason),
	})
	c.advance(context.Background(), guildID, e.Reason.MayStartNext())
}

func (c *Client) onTrackException(p disgolink.Player, e lavalink.TrackExceptionEvent) {
	c.dispatch(player.TrackExceptionEvent{
		Guild:   p.GuildID().String(),
		Track:   player.TrackFromLavalink(e.Track),
		Message: e.Exception.Message,
	})
}

func (c *Client) onTrackStuck(p disgolink.Player, e lavalink.TrackStuckEvent) {
	c.dispatch(player.TrackStuckEvent{
		Guild: p.GuildID().String(),
		Track: player.TrackFromLavalink(e.Track),
	})
}

func (c *Client) onWebSocketClosed(p disgolink.Player, e lavalink.WebSocketClosedEvent) {
	c.dispatch(player.WebSocketClosedEvent{
		Guild:    p.GuildID().String(),
		Code:     e.Code,
		Reason:   e.Reason,
		ByRemote: e.ByRemote,
	})
}
