package music

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavacog/pkg/cmd"
)

type StopCommand struct{ *Music }

func (c *StopCommand) Name() string            { return "stop" }
func (c *StopCommand) Description() string     { return "Stops the player and clears its queue." }
func (c *StopCommand) Aliases() []string       { return nil }
func (c *StopCommand) Category() string        { return category }
func (c *StopCommand) Cooldown() time.Duration { return 5 * time.Second }

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *StopCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	p := c.player(origin(inv.Data).GuildID)
	if p == nil || !p.IsPlaying() {
		return notice(inv.Data, "Not playing.")
	}

	p.ClearQueue()
	if err := p.Stop(ctx); err != nil {
		return err
	}
	return embedNotice(inv.Data, "Stopped. (Queue cleared)")
}
