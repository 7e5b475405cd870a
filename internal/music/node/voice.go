package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

var (
	ErrUnknownVoiceUpdate   = errors.New("unknown voice update type")
	ErrMalformedVoiceUpdate = errors.New("malformed voice update")
)

type VoiceUpdateType string

const (
	VoiceServerUpdate VoiceUpdateType = "VOICE_SERVER_UPDATE"
	VoiceStateUpdate  VoiceUpdateType = "VOICE_STATE_UPDATE"
)

// VoiceUpdate is a raw gateway voice event on its way to the node. Data is
// *discordgo.VoiceServerUpdate or *discordgo.VoiceStateUpdate to match Type.
type VoiceUpdate struct {
	Type VoiceUpdateType
	Data any
}

// HandleVoiceUpdate forwards a gateway voice event to the node. State updates
// about other users are dropped.
func (c *Client) HandleVoiceUpdate(ctx context.Context, u VoiceUpdate) error {
	switch u.Type {
	case VoiceServerUpdate:
		ev, ok := u.Data.(*discordgo.VoiceServerUpdate)
		if !ok || ev == nil {
			return fmt.Errorf("%w: %s carries %T", ErrMalformedVoiceUpdate, u.Type, u.Data)
		}
		guildID, err := snowflake.Parse(ev.GuildID)
		if err != nil {
			return fmt.Errorf("%w: guild id %q", ErrMalformedVoiceUpdate, ev.GuildID)
		}
		c.link.OnVoiceServerUpdate(ctx, guildID, ev.Token, ev.Endpoint)

	case VoiceStateUpdate:
		ev, ok := u.Data.(*discordgo.VoiceStateUpdate)
		if !ok || ev == nil || ev.VoiceState == nil {
			return fmt.Errorf("%w: %s carries %T", ErrMalformedVoiceUpdate, u.Type, u.Data)
		}
		if ev.UserID != c.userID {
			return nil
		}
		guildID, err := snowflake.Parse(ev.GuildID)
		if err != nil {
			return fmt.Errorf("%w: guild id %q", ErrMalformedVoiceUpdate, ev.GuildID)
		}
		var channelID *snowflake.ID
		if ev.ChannelID != "" {
			id, err := snowflake.Parse(ev.ChannelID)
			if err != nil {
				return fmt.Errorf("%w: channel id %q", ErrMalformedVoiceUpdate, ev.ChannelID)
			}
			channelID = &id
		}
		c.link.OnVoiceStateUpdate(ctx, guildID, channelID, ev.SessionID)

		if p := c.players.Get(ev.GuildID); p != nil {
			if ev.ChannelID == "" {
				p.ClearChannelID()
			} else {
				p.SetChannelID(ev.ChannelID)
			}
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownVoiceUpdate, u.Type)
	}

	c.metrics.VoiceUpdateRelayed(string(u.Type))
	return nil
}
