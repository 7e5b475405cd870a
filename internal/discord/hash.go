package discord

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type hashedOption struct {
	Name        string                                      `json:"name"`
	Description string                                      `json:"description"`
	Type        discordgo.ApplicationCommandOptionType      `json:"type"`
	Required    bool                                        `json:"required"`
	Choices     []*discordgo.ApplicationCommandOptionChoice `json:"choices,omitempty"`
	Options     []hashedOption                              `json:"options,omitempty"`
}

type hashedCommand struct {
	Name        string                           `json:"name"`
	Description string                           `json:"description"`
	Type        discordgo.ApplicationCommandType `json:"type"`
	Options     []hashedOption                   `json:"options,omitempty"`
}

// hashCommand returns a digest of the parts of a definition Discord cares
// about. IDs and versions are ignored; options are order-independent.
func hashCommand(def *discordgo.ApplicationCommand) string {
	data, _ := json.Marshal(hashedCommand{
		Name:        def.Name,
		Description: def.Description,
		Type:        def.Type,
		Options:     hashOptions(def.Options),
	})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hashOptions(opts []*discordgo.ApplicationCommandOption) []hashedOption {
	if len(opts) == 0 {
		return nil
	}
	out := make([]hashedOption, len(opts))
	for i, o := range opts {
		out[i] = hashedOption{
			Name:        o.Name,
			Description: o.Description,
			Type:        o.Type,
			Required:    o.Required,
			Choices:     o.Choices,
			Options:     hashOptions(o.Options),
		}
	}
	slices.SortFunc(out, func(a, b hashedOption) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
