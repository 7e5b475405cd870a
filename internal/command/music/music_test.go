package music

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/lavacog/internal/command"
	"github.com/keshon/lavacog/internal/music/player"
	"github.com/keshon/lavacog/internal/music/player/playertest"
	"github.com/keshon/lavacog/pkg/cmd"
)

const (
	guildID     = "g1"
	textChannel = "text1"
	botChannel  = "vc1"
	caller      = "u1"
)

type recorder struct {
	replies []command.Reply
}

func (r *recorder) Send(reply command.Reply) error {
	r.replies = append(r.replies, reply)
	return nil
}

// text returns the visible text of the last reply.
func (r *recorder) text() string {
	if len(r.replies) == 0 {
		return ""
	}
	last := r.replies[len(r.replies)-1]
	if last.Embed != nil {
		if last.Embed.Title != "" {
			return last.Embed.Title
		}
		return last.Embed.Description
	}
	return last.Content
}

type fakeLink struct {
	players     *player.Registry
	connects    []string
	disconnects []bool
}

func (l *fakeLink) Connect(ctx context.Context, guildID, channelID string) error {
	l.connects = append(l.connects, channelID)
	l.players.Create(guildID).SetChannelID(channelID)
	return nil
}

func (l *fakeLink) Disconnect(ctx context.Context, guildID string, force bool) error {
	l.disconnects = append(l.disconnects, force)
	if p := l.players.Get(guildID); p != nil {
		p.ClearChannelID()
	}
	return nil
}

type fakeVoice struct {
	channels map[string]string
	perms    int64
	err      error
}

func (v *fakeVoice) UserVoiceChannel(guildID, userID string) (string, bool) {
	ch, ok := v.channels[userID]
	return ch, ok
}

func (v *fakeVoice) BotPermissions(channelID string) (int64, error) {
	return v.perms, v.err
}

type harness struct {
	m        *Music
	players  *player.Registry
	backends map[string]*playertest.Backend
	link     *fakeLink
	voice    *fakeVoice
	reg      *cmd.Registry
	rec      *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		backends: make(map[string]*playertest.Backend),
		voice: &fakeVoice{
			channels: map[string]string{caller: botChannel},
			perms:    discordgo.PermissionVoiceConnect | discordgo.PermissionVoiceSpeak,
		},
		reg: cmd.NewRegistry(),
		rec: &recorder{},
	}
	h.players = player.NewRegistry(func(g string) player.Backend {
		b := playertest.New()
		h.backends[g] = b
		return b
	}, nil)
	h.link = &fakeLink{players: h.players}
	h.m = &Music{Players: h.players, Link: h.link, Voice: h.voice}
	for _, c := range h.m.Commands() {
		command.RegisterCommand(h.reg, c, WithVoiceMembership(h.m))
	}
	return h
}

func (h *harness) run(t *testing.T, name string, args ...string) error {
	t.Helper()
	c, ok := h.reg.Get(name)
	require.True(t, ok, "command %s not registered", name)
	return c.Run(context.Background(), &cmd.Invocation{
		Name: name,
		Args: args,
		Data: &command.MessageContext{
			Event: &discordgo.MessageCreate{Message: &discordgo.Message{
				GuildID:   guildID,
				ChannelID: textChannel,
				Author:    &discordgo.User{ID: caller, Username: "alice"},
			}},
			Responder: h.rec,
		},
	})
}

func (h *harness) player() *player.Player { return h.players.Create(guildID) }

func (h *harness) backend() *playertest.Backend {
	h.player()
	return h.backends[guildID]
}

// playing connects the bot and starts the first of n queued tracks.
func (h *harness) playing(t *testing.T, n int) *player.Player {
	t.Helper()
	p := h.player()
	p.SetChannelID(botChannel)
	for _, tr := range playertest.Tracks(n) {
		p.Add(caller, tr)
	}
	require.NoError(t, p.Play(context.Background()))
	return p
}

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"some song", "ytsearch:some song"},
		{"<https://example.com/track>", "https://example.com/track"},
		{"https://www.youtube.com/watch?v=x", "https://www.youtube.com/watch?v=x"},
		{"http://example.com", "http://example.com"},
		{"example.com/track", "ytsearch:example.com/track"},
		{"ftp://example.com/x", "ytsearch:ftp://example.com/x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SearchQuery(tt.in))
		})
	}
}

func TestQueuePageCount(t *testing.T) {
	for l := 1; l <= 35; l++ {
		q := QueuePage(playertest.Tracks(l), 1)
		assert.Equal(t, (l+9)/10, q.Total, "len %d", l)
	}
}

func TestQueuePageThreeOfTwentyThree(t *testing.T) {
	p := QueuePage(playertest.Tracks(23), 3)

	titles := make([]string, len(p.Tracks))
	for i, tr := range p.Tracks {
		titles[i] = tr.Title
	}
	if diff := cmp.Diff([]string{"T21", "T22", "T23"}, titles); diff != "" {
		t.Errorf("page 3 tracks mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Viewing page 3/3", p.Footer())

	want := "23 tracks\n\n" +
		"21. [**T21**](https://example.com/t/21)\n" +
		"22. [**T22**](https://example.com/t/22)\n" +
		"23. [**T23**](https://example.com/t/23)\n"
	assert.Equal(t, want, p.Description())
}

func TestQueuePageIndicesIncrease(t *testing.T) {
	p := QueuePage(playertest.Tracks(15), 2)
	lines := strings.Split(strings.TrimSpace(p.Description()), "\n")[2:]
	require.Len(t, lines, 5)
	for i, line := range lines {
		assert.True(t, strings.HasPrefix(line, fmt.Sprintf("%d. ", 11+i)), line)
	}
}

func TestQueuePageClampsAndButtons(t *testing.T) {
	q := playertest.Tracks(23)

	assert.Equal(t, 3, QueuePage(q, 9).Number)
	assert.Equal(t, 1, QueuePage(q, 0).Number)

	single := QueuePage(playertest.Tracks(1), 1)
	assert.Nil(t, single.Buttons())
	assert.True(t, strings.HasPrefix(single.Description(), "1 track\n\n"))

	row := QueuePage(q, 1).Buttons()[0].(discordgo.ActionsRow)
	prev := row.Components[0].(discordgo.Button)
	next := row.Components[1].(discordgo.Button)
	assert.True(t, prev.Disabled)
	assert.Equal(t, QueuePagePrefix+"2", next.CustomID)
	assert.False(t, next.Disabled)
}

func TestPlayURLSingleTrack(t *testing.T) {
	h := newHarness(t)
	track := player.Track{Title: "Track", URI: "https://example.com/track"}
	h.backend().Results["https://example.com/track"] = &player.LoadResult{
		Type:   player.LoadTrack,
		Tracks: []player.Track{track},
	}

	require.NoError(t, h.run(t, "play", "<https://example.com/track>"))

	assert.Equal(t, []string{botChannel}, h.link.connects)
	assert.Equal(t, "added Track to the queue.", h.rec.text())
	b := h.backend()
	require.Len(t, b.Played, 1)
	assert.Equal(t, "Track", b.Played[0].Title)
	assert.Equal(t, caller, b.Played[0].Requester)

	p := h.player()
	assert.True(t, p.IsPlaying())
	ch, ok := p.Fetch("channel")
	assert.True(t, ok)
	assert.Equal(t, textChannel, ch)
}

func TestPlayWhilePlayingOnlyQueues(t *testing.T) {
	h := newHarness(t)
	p := h.playing(t, 1)
	h.backend().Results["https://example.com/next"] = &player.LoadResult{
		Type:   player.LoadTrack,
		Tracks: []player.Track{{Title: "Next", URI: "https://example.com/next"}},
	}

	require.NoError(t, h.run(t, "p", "https://example.com/next"))
	assert.Equal(t, 1, p.QueueLen())
	assert.Len(t, h.backend().Played, 1)
	assert.Empty(t, h.link.connects)
}

func TestPlaySearchNothingFound(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "play", "some", "song"))
	assert.Equal(t, []string{"ytsearch:some song"}, h.backend().Queries)
	assert.Equal(t, "Nothing found!", h.rec.text())
	assert.Equal(t, noticeTTL, h.rec.replies[0].DeleteAfter)
	assert.Equal(t, 0, h.player().QueueLen())
}

func TestPlayPlaylist(t *testing.T) {
	h := newHarness(t)
	h.backend().Results["https://example.com/list"] = &player.LoadResult{
		Type:         player.LoadPlaylist,
		PlaylistName: "Mix",
		Tracks:       playertest.Tracks(3),
	}

	require.NoError(t, h.run(t, "play", "https://example.com/list"))
	assert.Equal(t, "added Mix to the queue.", h.rec.text())
	assert.Len(t, h.backend().Played, 1)
	assert.Equal(t, 2, h.player().QueueLen())
}

func TestPlaySurfacesLoadError(t *testing.T) {
	h := newHarness(t)
	h.backend().Err = errors.New("node down")

	err := h.run(t, "play", "x")
	assert.ErrorIs(t, err, h.backend().Err)
}

func TestNotPlayingNotices(t *testing.T) {
	for _, name := range []string{"skip", "stop", "pause", "repeat"} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			p := h.player()
			p.SetChannelID(botChannel)
			p.Add(caller, playertest.Track(1))

			require.NoError(t, h.run(t, name))
			assert.Equal(t, "Not playing.", h.rec.text())
			assert.Equal(t, 0, h.backend().Calls())
			assert.Equal(t, 1, p.QueueLen())
			assert.False(t, p.Repeat())
			assert.False(t, p.Paused())
		})
	}
}

func TestSkip(t *testing.T) {
	h := newHarness(t)
	p := h.playing(t, 2)

	require.NoError(t, h.run(t, "forceskip"))
	assert.Equal(t, "Skipped.", h.rec.text())
	cur, err := p.Current()
	require.NoError(t, err)
	assert.Equal(t, "T2", cur.Title)
}

func TestStopClearsQueue(t *testing.T) {
	h := newHarness(t)
	p := h.playing(t, 5)

	require.NoError(t, h.run(t, "stop"))
	assert.Equal(t, "Stopped. (Queue cleared)", h.rec.text())
	assert.Equal(t, 0, p.QueueLen())
	assert.False(t, p.IsPlaying())
}

func TestPauseTwiceRestores(t *testing.T) {
	h := newHarness(t)
	p := h.playing(t, 1)

	require.NoError(t, h.run(t, "pause"))
	assert.Equal(t, "Paused", h.rec.text())
	assert.True(t, p.Paused())

	require.NoError(t, h.run(t, "resume"))
	assert.Equal(t, "Resumed", h.rec.text())
	assert.False(t, p.Paused())
}

func TestRepeatTwiceRestores(t *testing.T) {
	h := newHarness(t)
	p := h.playing(t, 1)

	require.NoError(t, h.run(t, "repeat"))
	assert.Equal(t, "Repeat `ON`", h.rec.text())
	assert.True(t, p.Repeat())

	require.NoError(t, h.run(t, "loop"))
	assert.Equal(t, "Repeat `OFF`", h.rec.text())
	assert.False(t, p.Repeat())
}

func TestQueueCommand(t *testing.T) {
	h := newHarness(t)
	p := h.player()
	p.SetChannelID(botChannel)

	require.NoError(t, h.run(t, "queue"))
	assert.Equal(t, "Nothing is in the queue.", h.rec.text())

	for _, tr := range playertest.Tracks(23) {
		p.Add(caller, tr)
	}
	require.NoError(t, h.run(t, "q", "3"))
	last := h.rec.replies[len(h.rec.replies)-1]
	require.NotNil(t, last.Embed)
	assert.Equal(t, "Viewing page 3/3", last.Embed.Footer.Text)
	assert.Contains(t, last.Embed.Description, "21. [**T21**]")
	assert.NotContains(t, last.Embed.Description, "20. ")
	assert.Zero(t, last.DeleteAfter)
}

func TestQueueComponent(t *testing.T) {
	h := newHarness(t)
	p := h.player()
	for _, tr := range playertest.Tracks(12) {
		p.Add(caller, tr)
	}
	q := &QueueCommand{h.m}
	cc := &command.ComponentInteractionContext{
		Event: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Type:    discordgo.InteractionMessageComponent,
			GuildID: guildID,
			Data:    discordgo.MessageComponentInteractionData{CustomID: QueuePagePrefix + "2"},
		}},
		Responder: h.rec,
	}

	require.NoError(t, q.Component(context.Background(), cc))
	require.Len(t, h.rec.replies, 1)
	assert.Equal(t, "Viewing page 2/2", h.rec.replies[0].Embed.Footer.Text)
}

func TestDisconnect(t *testing.T) {
	h := newHarness(t)
	p := h.playing(t, 4)

	require.NoError(t, h.run(t, "dc"))
	assert.Equal(t, "Disconnected", h.rec.text())
	assert.Equal(t, 0, p.QueueLen())
	assert.False(t, p.IsConnected())
	assert.Equal(t, []bool{true}, h.link.disconnects)
}

func TestDisconnectNotConnectedIsGuarded(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, "disconnect")
	assert.ErrorIs(t, err, command.NewInvocationError(command.NotConnected))
	assert.Empty(t, h.link.disconnects)
}

func TestDisconnectCommandChecksChannel(t *testing.T) {
	h := newHarness(t)
	p := h.playing(t, 2)
	d := &DisconnectCommand{h.m}
	h.voice.channels[caller] = "elsewhere"

	err := d.Run(context.Background(), &cmd.Invocation{Data: &command.MessageContext{
		Event: &discordgo.MessageCreate{Message: &discordgo.Message{
			GuildID: guildID,
			Author:  &discordgo.User{ID: caller},
		}},
		Responder: h.rec,
	}})
	require.NoError(t, err)
	assert.Equal(t, "Please get in my voicechannel first.", h.rec.text())
	assert.Equal(t, 1, p.QueueLen())
}

func TestVoiceMembershipGuard(t *testing.T) {
	t.Run("no voice channel", func(t *testing.T) {
		h := newHarness(t)
		delete(h.voice.channels, caller)
		err := h.run(t, "play", "x")
		assert.ErrorIs(t, err, command.NewInvocationError(command.NoVoiceChannel))
		assert.NotNil(t, h.players.Get(guildID), "player is created before checks")
	})

	t.Run("not connected", func(t *testing.T) {
		h := newHarness(t)
		err := h.run(t, "skip")
		assert.ErrorIs(t, err, command.NewInvocationError(command.NotConnected))
	})

	t.Run("missing permissions", func(t *testing.T) {
		h := newHarness(t)
		h.voice.perms = discordgo.PermissionVoiceConnect
		err := h.run(t, "play", "x")
		assert.ErrorIs(t, err, command.NewInvocationError(command.MissingPermissions))
		assert.Empty(t, h.link.connects)
	})

	t.Run("permission lookup fails", func(t *testing.T) {
		h := newHarness(t)
		h.voice.err = errors.New("unknown channel")
		err := h.run(t, "play", "x")
		assert.ErrorIs(t, err, h.voice.err)
	})

	t.Run("wrong channel", func(t *testing.T) {
		h := newHarness(t)
		h.playing(t, 1)
		h.voice.channels[caller] = "elsewhere"
		err := h.run(t, "pause")
		assert.ErrorIs(t, err, command.NewInvocationError(command.WrongChannel))
	})
}

func TestTrackHook(t *testing.T) {
	h := newHarness(t)
	p := h.playing(t, 1)

	h.m.TrackHook(player.TrackStartEvent{Guild: guildID})
	h.m.TrackHook(player.TrackExceptionEvent{Guild: guildID, Message: "boom"})
	h.m.TrackHook(player.WebSocketClosedEvent{Guild: guildID, Code: 4006})
	assert.Empty(t, h.link.disconnects)

	h.m.TrackHook(player.QueueEndEvent{Guild: guildID})
	assert.Equal(t, []bool{true}, h.link.disconnects)
	assert.False(t, p.IsConnected())
}
