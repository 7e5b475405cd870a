package player

// Event is a player event. The set of kinds is closed: only the types in this
// file implement it.
type Event interface {
	GuildID() string
	Kind() string
	playerEvent()
}

// QueueEndEvent fires when a track ended and nothing was left to play.
type QueueEndEvent struct {
	Guild string
}

type TrackStartEvent struct {
	Guild string
	Track Track
}

type TrackEndEvent struct {
	Guild  string
	Track  Track
	Reason string
}

type TrackExceptionEvent struct {
	Guild   string
	Track   Track
	Message string
}

type TrackStuckEvent struct {
	Guild string
	Track Track
}

// WebSocketClosedEvent reports the node's voice websocket to Discord closing.
type WebSocketClosedEvent struct {
	Guild    string
	Code     int
	Reason   string
	ByRemote bool
}

func (e QueueEndEvent) GuildID() string        { return e.Guild }
func (e TrackStartEvent) GuildID() string      { return e.Guild }
func (e TrackEndEvent) GuildID() string        { return e.Guild }
func (e TrackExceptionEvent) GuildID() string  { return e.Guild }
func (e TrackStuckEvent) GuildID() string      { return e.Guild }
func (e WebSocketClosedEvent) GuildID() string { return e.Guild }

func (QueueEndEvent) Kind() string        { return "queue_end" }
func (TrackStartEvent) Kind() string      { return "track_start" }
func (TrackEndEvent) Kind() string        { return "track_end" }
func (TrackExceptionEvent) Kind() string  { return "track_exception" }
func (TrackStuckEvent) Kind() string      { return "track_stuck" }
func (WebSocketClosedEvent) Kind() string { return "websocket_closed" }

func (QueueEndEvent) playerEvent()        {}
func (TrackStartEvent) playerEvent()      {}
func (TrackEndEvent) playerEvent()        {}
func (TrackExceptionEvent) playerEvent()  {}
func (TrackStuckEvent) playerEvent()      {}
func (WebSocketClosedEvent) playerEvent() {}
