package music

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavacog/internal/bot"
	"github.com/keshon/lavacog/internal/command"
	"github.com/keshon/lavacog/internal/music/player"
	"github.com/keshon/lavacog/pkg/cmd"
)

const (
	itemsPerPage = 10
	// QueuePagePrefix starts the custom id of the queue page buttons.
	QueuePagePrefix = "queue:page:"
)

type QueueCommand struct{ *Music }

func (c *QueueCommand) Name() string            { return "queue" }
func (c *QueueCommand) Description() string     { return "Shows the player's queue." }
func (c *QueueCommand) Aliases() []string       { return []string{"q"} }
func (c *QueueCommand) Category() string        { return category }
func (c *QueueCommand) Cooldown() time.Duration { return 2 * time.Second }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "page",
				Description: "Page to show",
			},
		},
	}
}

func (c *QueueCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	page := 1
	if len(inv.Args) > 0 {
		if n, err := strconv.Atoi(inv.Args[0]); err == nil {
			page = n
		}
	}

	reply, ok := c.render(origin(inv.Data).GuildID, page)
	if !ok {
		return notice(inv.Data, "Nothing is in the queue.")
	}
	return command.Respond(inv.Data, reply)
}

// Component handles the page buttons under a queue listing.
func (c *QueueCommand) Component(ctx context.Context, cc *command.ComponentInteractionContext) error {
	id := cc.Event.MessageComponentData().CustomID
	page, err := strconv.Atoi(strings.TrimPrefix(id, QueuePagePrefix))
	if err != nil {
		return fmt.Errorf("bad queue page button %q: %w", id, err)
	}

	reply, ok := c.render(cc.Event.GuildID, page)
	if !ok {
		reply = command.Reply{Content: "Nothing is in the queue."}
	}
	return command.Respond(cc, reply)
}

func (c *QueueCommand) render(guildID string, page int) (command.Reply, bool) {
	p := c.player(guildID)
	if p == nil || p.QueueLen() == 0 {
		return command.Reply{}, false
	}

	qp := QueuePage(p.Queue(), page)
	return command.Reply{
		Embed: &discordgo.MessageEmbed{
			Color:       bot.EmbedColor,
			Description: qp.Description(),
			Footer:      &discordgo.MessageEmbedFooter{Text: qp.Footer()},
		},
		Components: qp.Buttons(),
	}, true
}

// Page is one page of a queue listing.
type Page struct {
	Number int
	Total  int
	Size   int
	// First is the zero-based queue index of Tracks[0].
	First  int
	Tracks []player.Track
}

// QueuePage slices the queue into the given 1-based page. Out of range pages
// are clamped.
func QueuePage(queue []player.Track, page int) Page {
	total := (len(queue) + itemsPerPage - 1) / itemsPerPage
	if total < 1 {
		total = 1
	}
	page = max(1, min(page, total))

	start := (page - 1) * itemsPerPage
	end := min(start+itemsPerPage, len(queue))
	return Page{
		Number: page,
		Total:  total,
		Size:   len(queue),
		First:  start,
		Tracks: queue[start:end],
	}
}

func (p Page) Description() string {
	var b strings.Builder
	noun := "track"
	if p.Size > 1 {
		noun = "tracks"
	}
	fmt.Fprintf(&b, "%d %s\n\n", p.Size, noun)
	for i, t := range p.Tracks {
		fmt.Fprintf(&b, "%d. [**%s**](%s)\n", p.First+i+1, t.Title, t.URI)
	}
	return b.String()
}

func (p Page) Footer() string {
	return fmt.Sprintf("Viewing page %d/%d", p.Number, p.Total)
}

// Buttons returns prev/next controls, or nil for a single page.
func (p Page) Buttons() []discordgo.MessageComponent {
	if p.Total <= 1 {
		return nil
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Previous",
				Style:    discordgo.SecondaryButton,
				CustomID: QueuePagePrefix + strconv.Itoa(p.Number-1),
				Disabled: p.Number <= 1,
			},
			discordgo.Button{
				Label:    "Next",
				Style:    discordgo.SecondaryButton,
				CustomID: QueuePagePrefix + strconv.Itoa(p.Number+1),
				Disabled: p.Number >= p.Total,
			},
		}},
	}
}
