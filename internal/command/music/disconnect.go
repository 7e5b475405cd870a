package music

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavacog/pkg/cmd"
)

type DisconnectCommand struct{ *Music }

func (c *DisconnectCommand) Name() string { return "disconnect" }
func (c *DisconnectCommand) Description() string {
	return "Disconnects the player from the voice channel and clears its queue."
}
func (c *DisconnectCommand) Aliases() []string       { return []string{"dc"} }
func (c *DisconnectCommand) Category() string        { return category }
func (c *DisconnectCommand) Cooldown() time.Duration { return 5 * time.Second }

func (c *DisconnectCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *DisconnectCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	o := origin(inv.Data)
	p := c.player(o.GuildID)
	if p == nil || !p.IsConnected() {
		return embedNotice(inv.Data, "Not connected.")
	}

	userChannel, ok := c.Voice.UserVoiceChannel(o.GuildID, o.UserID)
	if !ok || userChannel != p.ChannelID() {
		return embedNotice(inv.Data, "Please get in my voicechannel first.")
	}

	p.ClearQueue()
	if err := p.Stop(ctx); err != nil {
		return err
	}
	if err := c.Link.Disconnect(ctx, o.GuildID, true); err != nil {
		return err
	}
	return embedNotice(inv.Data, "Disconnected")
}
