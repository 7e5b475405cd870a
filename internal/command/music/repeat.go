package music

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavacog/pkg/cmd"
)

type RepeatCommand struct{ *Music }

func (c *RepeatCommand) Name() string { return "repeat" }
func (c *RepeatCommand) Description() string {
	return "Repeats the queue until the command is invoked again."
}
func (c *RepeatCommand) Aliases() []string       { return []string{"loop"} }
func (c *RepeatCommand) Category() string        { return category }
func (c *RepeatCommand) Cooldown() time.Duration { return 2 * time.Second }

func (c *RepeatCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *RepeatCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	p := c.player(origin(inv.Data).GuildID)
	if p == nil || !p.IsPlaying() {
		return notice(inv.Data, "Not playing.")
	}

	p.SetRepeat(!p.Repeat())
	state := "`OFF`"
	if p.Repeat() {
		state = "`ON`"
	}
	return embedNotice(inv.Data, "Repeat "+state)
}
