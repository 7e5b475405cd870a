package bot

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lavacog/internal/command"
)

// MessageResponder replies in a text channel.
type MessageResponder struct {
	Session   *discordgo.Session
	ChannelID string
}

func (r *MessageResponder) Send(reply command.Reply) error {
	msg, err := r.Session.ChannelMessageSendComplex(r.ChannelID, messageSend(reply))
	if err != nil {
		return err
	}
	if reply.DeleteAfter > 0 {
		time.AfterFunc(reply.DeleteAfter, func() {
			if err := r.Session.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
				log.Printf("[WARN] Failed to delete message %s: %v", msg.ID, err)
			}
		})
	}
	return nil
}

// InteractionResponder replies to an interaction that has already been
// deferred, using followup messages.
type InteractionResponder struct {
	Session     *discordgo.Session
	Interaction *discordgo.Interaction
}

func (r *InteractionResponder) Send(reply command.Reply) error {
	msg, err := r.Session.FollowupMessageCreate(r.Interaction, true, webhookParams(reply))
	if err != nil {
		return err
	}
	if reply.DeleteAfter > 0 {
		time.AfterFunc(reply.DeleteAfter, func() {
			if err := r.Session.FollowupMessageDelete(r.Interaction, msg.ID); err != nil {
				log.Printf("[WARN] Failed to delete followup %s: %v", msg.ID, err)
			}
		})
	}
	return nil
}

// ComponentResponder answers a button click by editing the message it sits on.
type ComponentResponder struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
}

func (r *ComponentResponder) Send(reply command.Reply) error {
	return UpdateMessage(r.Session, r.Interaction, replyEmbed(reply), reply.Components)
}

func messageSend(reply command.Reply) *discordgo.MessageSend {
	m := &discordgo.MessageSend{
		Content:    reply.Content,
		Components: reply.Components,
	}
	if reply.Embed != nil {
		m.Embeds = []*discordgo.MessageEmbed{reply.Embed}
	}
	return m
}

func webhookParams(reply command.Reply) *discordgo.WebhookParams {
	p := &discordgo.WebhookParams{
		Content:    reply.Content,
		Components: reply.Components,
	}
	if reply.Embed != nil {
		p.Embeds = []*discordgo.MessageEmbed{reply.Embed}
	}
	return p
}

func replyEmbed(reply command.Reply) *discordgo.MessageEmbed {
	if reply.Embed != nil {
		return reply.Embed
	}
	return &discordgo.MessageEmbed{Description: reply.Content, Color: EmbedColor}
}
