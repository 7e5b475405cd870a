package discord

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// State answers voice and naming questions from the session's state cache,
// falling back to the REST API where the cache can miss.
type State struct {
	s *discordgo.Session
}

func NewState(s *discordgo.Session) *State {
	return &State{s: s}
}

// UserVoiceChannel returns the voice channel userID sits in.
func (st *State) UserVoiceChannel(guildID, userID string) (string, bool) {
	vs, err := st.s.State.VoiceState(guildID, userID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return "", false
	}
	return vs.ChannelID, true
}

// BotPermissions returns the bot's permissions in channelID.
func (st *State) BotPermissions(channelID string) (int64, error) {
	perms, err := st.s.State.UserChannelPermissions(st.s.State.User.ID, channelID)
	if err == nil {
		return perms, nil
	}
	return st.s.UserChannelPermissions(st.s.State.User.ID, channelID)
}

func (st *State) ChannelName(channelID string) string {
	channel, err := st.s.State.Channel(channelID)
	if err != nil {
		channel, err = st.s.Channel(channelID)
		if err != nil {
			log.Println("[WARN] Failed to fetch channel:", err)
			return ""
		}
	}
	return channel.Name
}

func (st *State) GuildName(guildID string) string {
	guild, err := st.s.State.Guild(guildID)
	if err != nil {
		guild, err = st.s.Guild(guildID)
		if err != nil {
			log.Println("[WARN] Failed to fetch guild:", err)
			return ""
		}
	}
	return guild.Name
}
