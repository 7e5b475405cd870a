package player

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
)

var ErrNoTrackPlaying = errors.New("no track is currently playing")

// Backend is the node-side half of a player: everything that has to go over
// the wire to the audio node.
type Backend interface {
	Play(ctx context.Context, track Track) error
	Stop(ctx context.Context) error
	SetPaused(ctx context.Context, paused bool) error
	LoadTracks(ctx context.Context, query string) (*LoadResult, error)
}

// Player is the per-guild playback session: queue, flags and the voice
// channel the bot currently sits in. State lives here; the Backend only
// carries commands to the node.
type Player struct {
	mu        sync.Mutex
	guildID   string
	backend   Backend
	current   *Track
	queue     []Track
	repeat    bool
	paused    bool
	channelID string
	store     map[string]string
	emit      func(Event)
}

// New creates a Player. emit may be nil.
func New(guildID string, backend Backend, emit func(Event)) *Player {
	if emit == nil {
		emit = func(Event) {}
	}
	return &Player{
		guildID: guildID,
		backend: backend,
		queue:   make([]Track, 0),
		store:   make(map[string]string),
		emit:    emit,
	}
}

func (p *Player) GuildID() string { return p.guildID }

// ChannelID returns the voice channel the bot is in, or "".
func (p *Player) ChannelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channelID
}

// SetChannelID records the bot's voice channel as reported by the gateway.
func (p *Player) SetChannelID(channelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channelID = channelID
}

// ClearChannelID marks the player detached from voice.
func (p *Player) ClearChannelID() {
	p.SetChannelID("")
}

func (p *Player) IsConnected() bool {
	return p.ChannelID() != ""
}

// IsPlaying reports whether the player is connected and has a current track.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channelID != "" && p.current != nil
}

func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Current returns a copy of the current track.
func (p *Player) Current() (Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Track{}, ErrNoTrackPlaying
	}
	return *p.current, nil
}

// Add appends track to the queue on behalf of requester.
func (p *Player) Add(requester string, track Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	track.Requester = requester
	p.queue = append(p.queue, track)
	log.Printf("[Player] Added %q to queue | guild=%s QueueLen=%d", track.Title, p.guildID, len(p.queue))
}

// Queue returns a copy of the queue.
func (p *Player) Queue() []Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.queue)
}

// Idle reports whether the player has no current track and an empty queue.
func (p *Player) Idle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current == nil && len(p.queue) == 0
}

func (p *Player) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func (p *Player) ClearQueue() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = p.queue[:0]
}

func (p *Player) Repeat() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.repeat
}

func (p *Player) SetRepeat(repeat bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.repeat = repeat
}

// Store keeps a small piece of per-guild data alongside the player.
func (p *Player) Store(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.store[key] = value
}

func (p *Player) Fetch(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.store[key]
	return v, ok
}

// LoadTracks asks the node to resolve query.
func (p *Player) LoadTracks(ctx context.Context, query string) (*LoadResult, error) {
	return p.backend.LoadTracks(ctx, query)
}

// Play starts the next track in the queue. With repeat on, the current track
// is requeued at the end first. An empty queue stops the node player and
// emits QueueEndEvent.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	if p.repeat && p.current != nil {
		p.queue = append(p.queue, *p.current)
	}
	p.current = nil

	if len(p.queue) == 0 {
		p.mu.Unlock()
		log.Printf("[Player] Queue is empty, nothing to play | guild=%s", p.guildID)
		if err := p.backend.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop player: %w", err)
		}
		p.emit(QueueEndEvent{Guild: p.guildID})
		return nil
	}

	next := p.queue[0]
	p.queue = p.queue[1:]
	p.current = &next
	queueLen := len(p.queue)
	p.mu.Unlock()

	if err := p.backend.Play(ctx, next); err != nil {
		p.mu.Lock()
		p.current = nil
		p.mu.Unlock()
		return fmt.Errorf("failed to play %q: %w", next.Title, err)
	}

	log.Printf("[Player] Now playing %q | guild=%s QueueLen=%d", next.Title, p.guildID, queueLen)
	return nil
}

// Skip ends the current track and plays the next one.
func (p *Player) Skip(ctx context.Context) error {
	return p.Play(ctx)
}

// Stop stops playback. The queue is left alone.
func (p *Player) Stop(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()

	if err := p.backend.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop player: %w", err)
	}
	log.Printf("[Player] Stopped | guild=%s", p.guildID)
	return nil
}

func (p *Player) SetPause(ctx context.Context, paused bool) error {
	if err := p.backend.SetPaused(ctx, paused); err != nil {
		return fmt.Errorf("failed to set pause: %w", err)
	}
	p.mu.Lock()
	p.paused = paused
	p.mu.Unlock()
	return nil
}

// HandleTrackEnd advances the queue after the node finished a track.
// Tracks ended by a replace or stop do not advance.
func (p *Player) HandleTrackEnd(ctx context.Context, mayStartNext bool) error {
	if !mayStartNext {
		return nil
	}
	return p.Play(ctx)
}
