package discord

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavacog/internal/bot"
	"github.com/keshon/lavacog/internal/command"
	"github.com/keshon/lavacog/pkg/cmd"
)

const errorNoticeTTL = 5 * time.Second

// onMessageCreate dispatches prefix commands.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	name, args, ok := parsePrefixCommand(m.Content, b.cfg.CommandPrefix, s.State.User.ID)
	if !ok {
		return
	}
	c, ok := b.registry.Get(name)
	if !ok {
		return
	}

	data := &command.MessageContext{
		Session:   s,
		Event:     m,
		Responder: &bot.MessageResponder{Session: s, ChannelID: m.ChannelID},
	}
	b.run(c, &cmd.Invocation{Name: name, Args: args, Data: data})
}

// onInteractionCreate is called when an interaction is created
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		c, ok := b.registry.Get(data.Name)
		if !ok {
			log.Printf("[WARN] Unknown command: %s", data.Name)
			return
		}
		if err := bot.RespondDeferred(s, i); err != nil {
			log.Printf("[ERR] Failed to defer /%s: %v", data.Name, err)
			return
		}
		ctx := &command.SlashInteractionContext{
			Session:   s,
			Event:     i,
			Responder: &bot.InteractionResponder{Session: s, Interaction: i.Interaction},
		}
		b.run(c, &cmd.Invocation{Name: data.Name, Args: slashArgs(data.Options), Data: ctx})

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		name, _, _ := strings.Cut(customID, ":")
		c, ok := b.registry.Get(name)
		if !ok {
			log.Printf("[WARN] No matching component for customID: %s", customID)
			return
		}
		handler, ok := cmd.Root(c).(command.ComponentInteractionHandler)
		if !ok {
			log.Printf("[WARN] Command %s does not handle components", c.Name())
			return
		}
		ctx := &command.ComponentInteractionContext{
			Session:   s,
			Event:     i,
			Responder: &bot.ComponentResponder{Session: s, Interaction: i},
		}
		if err := handler.Component(context.Background(), ctx); err != nil {
			log.Printf("[ERR] Error running component %s: %v", customID, err)
			bot.RespondEmbedEphemeral(s, i, &discordgo.MessageEmbed{Description: "Something went wrong.", Color: bot.EmbedColor})
		}

	default:
		log.Printf("[DEBUG] Unknown interaction type: %d", i.Type)
	}
}

// run executes c and reports failures back to the invoker.
func (b *Bot) run(c cmd.Command, inv *cmd.Invocation) {
	err := c.Run(context.Background(), inv)
	if err == nil {
		return
	}

	var ie *command.InvocationError
	if errors.As(err, &ie) {
		reportErr := command.Respond(inv.Data, command.Reply{
			Embed:       &discordgo.MessageEmbed{Title: ie.Error(), Color: bot.EmbedColor},
			DeleteAfter: errorNoticeTTL,
		})
		if reportErr != nil {
			log.Printf("[WARN] Failed to report %s to user: %v", ie.Kind, reportErr)
		}
		return
	}

	log.Printf("[ERR] Error running command %s: %v", c.Name(), err)
	if reportErr := command.Respond(inv.Data, command.Reply{
		Embed: &discordgo.MessageEmbed{Description: "Something went wrong while running this command.", Color: bot.EmbedColor},
	}); reportErr != nil {
		log.Printf("[WARN] Failed to report error to user: %v", reportErr)
	}
}

// parsePrefixCommand splits "!name arg arg" or "<@bot> name arg" into the
// command name and its arguments.
func parsePrefixCommand(content, prefix, botID string) (string, []string, bool) {
	content = strings.TrimSpace(content)

	var rest string
	switch {
	case prefix != "" && strings.HasPrefix(content, prefix):
		rest = strings.TrimPrefix(content, prefix)
	case botID != "" && strings.HasPrefix(content, "<@"+botID+">"):
		rest = strings.TrimPrefix(content, "<@"+botID+">")
	case botID != "" && strings.HasPrefix(content, "<@!"+botID+">"):
		rest = strings.TrimPrefix(content, "<@!"+botID+">")
	default:
		return "", nil, false
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// slashArgs flattens slash options into positional arguments in the order
// they were sent.
func slashArgs(opts []*discordgo.ApplicationCommandInteractionDataOption) []string {
	args := make([]string, 0, len(opts))
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionString:
			args = append(args, o.StringValue())
		case discordgo.ApplicationCommandOptionInteger:
			args = append(args, strconv.FormatInt(o.IntValue(), 10))
		case discordgo.ApplicationCommandOptionBoolean:
			args = append(args, strconv.FormatBool(o.BoolValue()))
		}
	}
	return args
}
