// Package playertest provides an in-memory player.Backend for tests.
package playertest

import (
	"context"
	"strconv"
	"sync"

	"github.com/keshon/lavacog/internal/music/player"
)

// Backend records every call and answers LoadTracks from Results.
type Backend struct {
	mu      sync.Mutex
	Played  []player.Track
	Stops   int
	Pauses  []bool
	Queries []string

	// Results maps a query to its load result. Unknown queries load empty.
	Results map[string]*player.LoadResult
	// Err, when set, is returned from every call.
	Err error
}

func New() *Backend {
	return &Backend{Results: make(map[string]*player.LoadResult)}
}

func (b *Backend) Play(ctx context.Context, track player.Track) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	b.Played = append(b.Played, track)
	return nil
}

func (b *Backend) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	b.Stops++
	return nil
}

func (b *Backend) SetPaused(ctx context.Context, paused bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	b.Pauses = append(b.Pauses, paused)
	return nil
}

func (b *Backend) LoadTracks(ctx context.Context, query string) (*player.LoadResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return nil, b.Err
	}
	b.Queries = append(b.Queries, query)
	if r, ok := b.Results[query]; ok {
		return r, nil
	}
	return &player.LoadResult{Type: player.LoadEmpty}, nil
}

// Calls returns the number of node calls that mutate playback.
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Played) + b.Stops + len(b.Pauses)
}

// Tracks builds n tracks titled "T1".."Tn".
func Tracks(n int) []player.Track {
	tracks := make([]player.Track, n)
	for i := range tracks {
		tracks[i] = Track(i + 1)
	}
	return tracks
}

// Track builds the i-th test track.
func Track(i int) player.Track {
	return player.Track{
		Title: "T" + strconv.Itoa(i),
		URI:   "https://example.com/t/" + strconv.Itoa(i),
	}
}
