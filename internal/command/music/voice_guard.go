package music

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavacog/internal/command"
	"github.com/keshon/lavacog/pkg/cmd"
)

const requiredVoicePerms = discordgo.PermissionVoiceConnect | discordgo.PermissionVoiceSpeak

// WithVoiceMembership makes sure the caller and the bot share a voice
// channel before a music command runs. Only play may pull the bot into the
// caller's channel.
func WithVoiceMembership(m *Music) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if err := m.ensureVoiceMembership(ctx, c.Name(), inv.Data); err != nil {
				return err
			}
			return c.Run(ctx, inv)
		})
	}
}

func (m *Music) ensureVoiceMembership(ctx context.Context, name string, data interface{}) error {
	o, ok := command.OriginOf(data)
	if !ok || o.GuildID == "" {
		return nil
	}

	p := m.Players.Create(o.GuildID)
	shouldConnect := name == "play"

	userChannel, inVoice := m.Voice.UserVoiceChannel(o.GuildID, o.UserID)
	if !inVoice || userChannel == "" {
		return command.NewInvocationError(command.NoVoiceChannel)
	}

	if p.IsConnected() {
		if p.ChannelID() != userChannel {
			return command.NewInvocationError(command.WrongChannel)
		}
		return nil
	}

	if !shouldConnect {
		return command.NewInvocationError(command.NotConnected)
	}

	perms, err := m.Voice.BotPermissions(userChannel)
	if err != nil {
		return fmt.Errorf("failed to read permissions in channel %s: %w", userChannel, err)
	}
	if perms&requiredVoicePerms != requiredVoicePerms {
		return command.NewInvocationError(command.MissingPermissions)
	}

	p.Store("channel", o.ChannelID)
	return m.Link.Connect(ctx, o.GuildID, userChannel)
}
