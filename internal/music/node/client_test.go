package node

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/lavacog/internal/music/player"
	"github.com/keshon/lavacog/internal/music/player/playertest"
)

type serverUpdate struct {
	guildID  snowflake.ID
	token    string
	endpoint string
}

type stateUpdate struct {
	guildID   snowflake.ID
	channelID *snowflake.ID
	sessionID string
}

type fakeLink struct {
	nodes   []disgolink.NodeConfig
	servers []serverUpdate
	states  []stateUpdate
	closed  bool
}

func (f *fakeLink) AddNode(ctx context.Context, cfg disgolink.NodeConfig) (disgolink.Node, error) {
	f.nodes = append(f.nodes, cfg)
	return nil, nil
}

func (f *fakeLink) Player(guildID snowflake.ID) disgolink.Player { return nil }

func (f *fakeLink) OnVoiceServerUpdate(ctx context.Context, guildID snowflake.ID, token string, endpoint string) {
	f.servers = append(f.servers, serverUpdate{guildID, token, endpoint})
}

func (f *fakeLink) OnVoiceStateUpdate(ctx context.Context, guildID snowflake.ID, channelID *snowflake.ID, sessionID string) {
	f.states = append(f.states, stateUpdate{guildID, channelID, sessionID})
}

func (f *fakeLink) Close() { f.closed = true }

const botID = "100"

func newTestClient(t *testing.T) (*Client, *fakeLink) {
	t.Helper()
	fl := &fakeLink{}
	c := &Client{link: fl, userID: botID}
	c.players = player.NewRegistry(func(string) player.Backend { return playertest.New() }, c.dispatch)
	return c, fl
}

func stateEvent(userID, guildID, channelID string) *discordgo.VoiceStateUpdate {
	return &discordgo.VoiceStateUpdate{VoiceState: &discordgo.VoiceState{
		UserID:    userID,
		GuildID:   guildID,
		ChannelID: channelID,
		SessionID: "sess",
	}}
}

func TestNewRejectsBadUserID(t *testing.T) {
	_, err := New("not-a-snowflake")
	assert.Error(t, err)
}

func TestAddNode(t *testing.T) {
	c, fl := newTestClient(t)
	err := c.AddNode(context.Background(), Config{
		Host: "127.0.0.1", Port: 2333, Password: "pw", Region: "eu", Name: "default-node",
	})
	require.NoError(t, err)
	require.Len(t, fl.nodes, 1)
	assert.Equal(t, "127.0.0.1:2333", fl.nodes[0].Address)
	assert.Equal(t, "default-node", fl.nodes[0].Name)
	assert.Equal(t, "pw", fl.nodes[0].Password)
}

func TestHandleVoiceServerUpdate(t *testing.T) {
	c, fl := newTestClient(t)
	err := c.HandleVoiceUpdate(context.Background(), VoiceUpdate{
		Type: VoiceServerUpdate,
		Data: &discordgo.VoiceServerUpdate{GuildID: "5", Token: "tok", Endpoint: "eu.discord.media"},
	})
	require.NoError(t, err)
	require.Len(t, fl.servers, 1)
	assert.Equal(t, serverUpdate{snowflake.ID(5), "tok", "eu.discord.media"}, fl.servers[0])
}

func TestHandleVoiceStateUpdateOwnUserOnly(t *testing.T) {
	ctx := context.Background()
	c, fl := newTestClient(t)

	require.NoError(t, c.HandleVoiceUpdate(ctx, VoiceUpdate{Type: VoiceStateUpdate, Data: stateEvent("999", "5", "7")}))
	assert.Empty(t, fl.states)

	require.NoError(t, c.HandleVoiceUpdate(ctx, VoiceUpdate{Type: VoiceStateUpdate, Data: stateEvent(botID, "5", "7")}))
	require.Len(t, fl.states, 1)
	require.NotNil(t, fl.states[0].channelID)
	assert.Equal(t, snowflake.ID(7), *fl.states[0].channelID)
	assert.Equal(t, "sess", fl.states[0].sessionID)
}

func TestHandleVoiceStateUpdateTracksChannel(t *testing.T) {
	ctx := context.Background()
	c, fl := newTestClient(t)
	p := c.Players().Create("5")

	require.NoError(t, c.HandleVoiceUpdate(ctx, VoiceUpdate{Type: VoiceStateUpdate, Data: stateEvent(botID, "5", "7")}))
	assert.Equal(t, "7", p.ChannelID())

	require.NoError(t, c.HandleVoiceUpdate(ctx, VoiceUpdate{Type: VoiceStateUpdate, Data: stateEvent(botID, "5", "")}))
	assert.False(t, p.IsConnected())
	require.Len(t, fl.states, 2)
	assert.Nil(t, fl.states[1].channelID)
}

func TestHandleVoiceUpdateErrors(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	err := c.HandleVoiceUpdate(ctx, VoiceUpdate{Type: "VOICE_CHANNEL_EFFECT_SEND"})
	assert.ErrorIs(t, err, ErrUnknownVoiceUpdate)

	err = c.HandleVoiceUpdate(ctx, VoiceUpdate{Type: VoiceServerUpdate, Data: "nope"})
	assert.ErrorIs(t, err, ErrMalformedVoiceUpdate)

	err = c.HandleVoiceUpdate(ctx, VoiceUpdate{Type: VoiceStateUpdate, Data: &discordgo.VoiceStateUpdate{}})
	assert.ErrorIs(t, err, ErrMalformedVoiceUpdate)
}

func TestEventHooks(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	var got []player.Event
	c.AddEventHook(func(e player.Event) { got = append(got, e) })

	p := c.Players().Create("5")
	p.SetChannelID("7")
	p.Add("u1", playertest.Track(1))
	require.NoError(t, p.Play(ctx))

	c.advance(ctx, "5", true)
	require.Len(t, got, 1)
	assert.Equal(t, player.QueueEndEvent{Guild: "5"}, got[0])

	c.ClearEventHooks()
	c.dispatch(player.TrackStuckEvent{Guild: "5"})
	assert.Len(t, got, 1)
}

func TestAdvanceWithoutPlayer(t *testing.T) {
	c, _ := newTestClient(t)
	assert.NotPanics(t, func() { c.advance(context.Background(), "404", true) })
}

func TestCloseDropsHooks(t *testing.T) {
	c, fl := newTestClient(t)
	calls := 0
	c.AddEventHook(func(player.Event) { calls++ })

	c.Close()
	assert.True(t, fl.closed)

	c.dispatch(player.QueueEndEvent{Guild: "5"})
	assert.Zero(t, calls)
}
