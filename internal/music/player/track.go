package player

import "github.com/disgoorg/disgolink/v3/lavalink"

// Track is a queued track. Raw is the node's encoded track and is passed
// back to the node untouched.
type Track struct {
	Title     string
	URI       string
	Requester string
	Raw       lavalink.Track
}

// TrackFromLavalink converts a node track. Requester is filled in by Player.Add.
func TrackFromLavalink(t lavalink.Track) Track {
	track := Track{
		Title: t.Info.Title,
		Raw:   t,
	}
	if t.Info.URI != nil {
		track.URI = *t.Info.URI
	}
	return track
}

// LoadType tags a search result.
type LoadType int

const (
	LoadTrack LoadType = iota
	LoadPlaylist
	LoadSearch
	LoadEmpty
	LoadFailed
)

func (t LoadType) String() string {
	switch t {
	case LoadTrack:
		return "TRACK_LOADED"
	case LoadPlaylist:
		return "PLAYLIST_LOADED"
	case LoadSearch:
		return "SEARCH_RESULT"
	case LoadEmpty:
		return "NO_MATCHES"
	case LoadFailed:
		return "LOAD_FAILED"
	}
	return "UNKNOWN"
}

// LoadResult is what the node returns for a query.
type LoadResult struct {
	Type         LoadType
	PlaylistName string
	Tracks       []Track
}
