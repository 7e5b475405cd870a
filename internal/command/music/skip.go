package music

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavacog/pkg/cmd"
)

type SkipCommand struct{ *Music }

func (c *SkipCommand) Name() string            { return "skip" }
func (c *SkipCommand) Description() string     { return "Skips the current track." }
func (c *SkipCommand) Aliases() []string       { return []string{"forceskip"} }
func (c *SkipCommand) Category() string        { return category }
func (c *SkipCommand) Cooldown() time.Duration { return 5 * time.Second }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *SkipCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	p := c.player(origin(inv.Data).GuildID)
	if p == nil || !p.IsPlaying() {
		return notice(inv.Data, "Not playing.")
	}

	if err := p.Skip(ctx); err != nil {
		return err
	}
	return embedNotice(inv.Data, "Skipped.")
}
