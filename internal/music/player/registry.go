package player

import "sync"

// Registry holds at most one Player per guild.
type Registry struct {
	mu         sync.Mutex
	players    map[string]*Player
	newBackend func(guildID string) Backend
	emit       func(Event)
}

// NewRegistry returns an empty registry. newBackend builds the node side of
// each new player; emit receives events from every player.
func NewRegistry(newBackend func(guildID string) Backend, emit func(Event)) *Registry {
	return &Registry{
		players:    make(map[string]*Player),
		newBackend: newBackend,
		emit:       emit,
	}
}

// Create returns the guild's player, creating it if absent.
func (r *Registry) Create(guildID string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[guildID]; ok {
		return p
	}
	p := New(guildID, r.newBackend(guildID), r.emit)
	r.players[guildID] = p
	return p
}

// Get returns the guild's player or nil.
func (r *Registry) Get(guildID string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players[guildID]
}

func (r *Registry) Remove(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, guildID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}
