package command

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavacog/pkg/cmd"
)

// Discord-specific contexts (what the runtime passes when executing).

type SlashInteractionContext struct {
	Session   *discordgo.Session
	Event     *discordgo.InteractionCreate
	Responder Responder
}

type ComponentInteractionContext struct {
	Session   *discordgo.Session
	Event     *discordgo.InteractionCreate
	Responder Responder
}

type MessageContext struct {
	Session   *discordgo.Session
	Event     *discordgo.MessageCreate
	Responder Responder
}

// Reply is one outgoing message. A non-zero DeleteAfter removes it again once
// the duration has passed.
type Reply struct {
	Content     string
	Embed       *discordgo.MessageEmbed
	Components  []discordgo.MessageComponent
	DeleteAfter time.Duration
}

// Responder delivers replies for a context, so commands never touch the
// transport directly.
type Responder interface {
	Send(r Reply) error
}

var ErrNoResponder = errors.New("context has no responder")

// Respond sends r through the responder carried by data.
func Respond(data interface{}, r Reply) error {
	var rs Responder
	switch v := data.(type) {
	case *SlashInteractionContext:
		rs = v.Responder
	case *ComponentInteractionContext:
		rs = v.Responder
	case *MessageContext:
		rs = v.Responder
	}
	if rs == nil {
		return ErrNoResponder
	}
	return rs.Send(r)
}

// Origin is where an invocation came from.
type Origin struct {
	GuildID   string
	ChannelID string
	UserID    string
	Username  string
}

// OriginOf extracts the origin of any Discord context.
func OriginOf(data interface{}) (Origin, bool) {
	switch v := data.(type) {
	case *SlashInteractionContext:
		return interactionOrigin(v.Event), v.Event != nil
	case *ComponentInteractionContext:
		return interactionOrigin(v.Event), v.Event != nil
	case *MessageContext:
		if v.Event == nil || v.Event.Message == nil {
			return Origin{}, false
		}
		o := Origin{GuildID: v.Event.GuildID, ChannelID: v.Event.ChannelID}
		if v.Event.Author != nil {
			o.UserID = v.Event.Author.ID
			o.Username = v.Event.Author.Username
		}
		return o, true
	}
	return Origin{}, false
}

func interactionOrigin(e *discordgo.InteractionCreate) Origin {
	if e == nil || e.Interaction == nil {
		return Origin{}
	}
	o := Origin{GuildID: e.GuildID, ChannelID: e.ChannelID}
	switch {
	case e.Member != nil && e.Member.User != nil:
		o.UserID, o.Username = e.Member.User.ID, e.Member.User.Username
	case e.User != nil:
		o.UserID, o.Username = e.User.ID, e.User.Username
	}
	return o
}

// Providers — how a command is registered with Discord.

type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

type ComponentInteractionHandler interface {
	Component(ctx context.Context, c *ComponentInteractionContext) error
}

// DiscordMeta is exposed by the Discord adapter so middleware can read
// category and cooldown without depending on the concrete command type.
type DiscordMeta interface {
	Category() string
	Cooldown() time.Duration
}

// DiscordCommand is what individual Discord commands implement.
type DiscordCommand interface {
	Name() string
	Description() string
	Aliases() []string
	Category() string
	Cooldown() time.Duration
	Run(ctx context.Context, inv *cmd.Invocation) error
}

// DiscordAdapter adapts a DiscordCommand to cmd.Command so it can live in the
// universal registry. It also implements SlashProvider,
// ComponentInteractionHandler and DiscordMeta by delegating to the inner
// command.
type DiscordAdapter struct {
	Cmd DiscordCommand
}

func (a *DiscordAdapter) Name() string            { return a.Cmd.Name() }
func (a *DiscordAdapter) Description() string     { return a.Cmd.Description() }
func (a *DiscordAdapter) Aliases() []string       { return a.Cmd.Aliases() }
func (a *DiscordAdapter) Category() string        { return a.Cmd.Category() }
func (a *DiscordAdapter) Cooldown() time.Duration { return a.Cmd.Cooldown() }

func (a *DiscordAdapter) Run(ctx context.Context, inv *cmd.Invocation) error {
	return a.Cmd.Run(ctx, inv)
}

func (a *DiscordAdapter) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := a.Cmd.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

func (a *DiscordAdapter) Component(ctx context.Context, c *ComponentInteractionContext) error {
	if ch, ok := a.Cmd.(ComponentInteractionHandler); ok {
		return ch.Component(ctx, c)
	}
	return nil
}

// RegisterCommand registers a Discord command with reg and applies middlewares.
func RegisterCommand(reg *cmd.Registry, discordCmd DiscordCommand, mws ...cmd.Middleware) {
	reg.Register(cmd.Apply(&DiscordAdapter{Cmd: discordCmd}, mws...))
}
