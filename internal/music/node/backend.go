package node

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"

	"github.com/keshon/lavacog/internal/music/player"
)

// backend drives one guild's disgolink player.
type backend struct {
	link    link
	guildID string
}

func (b *backend) player() (disgolink.Player, error) {
	id, err := snowflake.Parse(b.guildID)
	if err != nil {
		return nil, fmt.Errorf("invalid guild id %q: %w", b.guildID, err)
	}
	return b.link.Player(id), nil
}

func (b *backend) update(ctx context.Context, opts ...lavalink.PlayerUpdateOpt) error {
	p, err := b.player()
	if err != nil {
		return err
	}
	return p.Update(ctx, opts...)
}

func (b *backend) Play(ctx context.Context, track player.Track) error {
	return b.update(ctx, lavalink.WithTrack(track.Raw))
}

func (b *backend) Stop(ctx context.Context) error {
	return b.update(ctx, lavalink.WithNullTrack())
}

func (b *backend) SetPaused(ctx context.Context, paused bool) error {
	return b.update(ctx, lavalink.WithPaused(paused))
}

func (b *backend) LoadTracks(ctx context.Context, query string) (*player.LoadResult, error) {
	p, err := b.player()
	if err != nil {
		return nil, err
	}

	var (
		result  player.LoadResult
		loadErr error
	)

	p.Node().LoadTracksHandler(ctx, query, disgolink.NewResultHandler(
		func(track lavalink.Track) {
			result.Type = player.LoadTrack
			result.Tracks = []player.Track{player.TrackFromLavalink(track)}
		},
		func(playlist lavalink.Playlist) {
			result.Type = player.LoadPlaylist
			result.PlaylistName = playlist.Info.Name
			result.Tracks = convertTracks(playlist.Tracks)
		},
		func(tracks []lavalink.Track) {
			result.Type = player.LoadSearch
			result.Tracks = convertTracks(tracks)
		},
		func() {
			result.Type = player.LoadEmpty
		},
		func(err error) {
			result.Type = player.LoadFailed
			loadErr = err
		},
	))

	if loadErr != nil {
		return nil, fmt.Errorf("failed to load tracks for %q: %w", query, loadErr)
	}
	return &result, nil
}

func convertTracks(tracks []lavalink.Track) []player.Track {
	out := make([]player.Track, len(tracks))
	for i, t := range tracks {
		out[i] = player.TrackFromLavalink(t)
	}
	return out
}
