package music

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavacog/pkg/cmd"
)

type PauseCommand struct{ *Music }

func (c *PauseCommand) Name() string            { return "pause" }
func (c *PauseCommand) Description() string     { return "Pauses/Resumes the current track." }
func (c *PauseCommand) Aliases() []string       { return []string{"resume"} }
func (c *PauseCommand) Category() string        { return category }
func (c *PauseCommand) Cooldown() time.Duration { return 5 * time.Second }

func (c *PauseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *PauseCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	p := c.player(origin(inv.Data).GuildID)
	if p == nil || !p.IsPlaying() {
		return notice(inv.Data, "Not playing.")
	}

	if p.Paused() {
		if err := p.SetPause(ctx, false); err != nil {
			return err
		}
		return embedNotice(inv.Data, "Resumed")
	}
	if err := p.SetPause(ctx, true); err != nil {
		return err
	}
	return embedNotice(inv.Data, "Paused")
}
