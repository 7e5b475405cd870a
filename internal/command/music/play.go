package music

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavacog/internal/command"
	"github.com/keshon/lavacog/internal/music/player"
	"github.com/keshon/lavacog/pkg/cmd"
)

type PlayCommand struct{ *Music }

func (c *PlayCommand) Name() string            { return "play" }
func (c *PlayCommand) Description() string     { return "Searches and plays a song from a given query." }
func (c *PlayCommand) Aliases() []string       { return []string{"p"} }
func (c *PlayCommand) Category() string        { return category }
func (c *PlayCommand) Cooldown() time.Duration { return 5 * time.Second }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Link or search query",
				Required:    true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	o := origin(inv.Data)
	input := strings.Join(inv.Args, " ")
	if strings.TrimSpace(input) == "" {
		return notice(inv.Data, "Tell me what to play.")
	}

	p := c.Players.Create(o.GuildID)
	result, err := p.LoadTracks(ctx, SearchQuery(input))
	if err != nil {
		return err
	}
	if len(result.Tracks) == 0 {
		return notice(inv.Data, "Nothing found!")
	}

	var added string
	if result.Type == player.LoadPlaylist {
		for _, t := range result.Tracks {
			p.Add(o.UserID, t)
		}
		added = result.PlaylistName
	} else {
		t := result.Tracks[0]
		p.Add(o.UserID, t)
		added = t.Title
	}
	if err := command.Respond(inv.Data, command.Reply{Content: fmt.Sprintf("added %s to the queue.", added)}); err != nil {
		return err
	}

	if !p.IsPlaying() {
		return p.Play(ctx)
	}
	return nil
}
