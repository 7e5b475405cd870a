package middleware

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/keshon/lavacog/internal/command"
	"github.com/keshon/lavacog/internal/storage"
	"github.com/keshon/lavacog/pkg/cmd"
)

type HistoryStore interface {
	AppendCommandToHistory(guildID string, record storage.CommandHistoryRecord) error
}

// NameResolver turns ids into display names for the history log.
type NameResolver interface {
	ChannelName(channelID string) string
	GuildName(guildID string) string
}

// WithCommandLogger wraps a command to log its execution
func WithCommandLogger(store HistoryStore, names NameResolver) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)

			o, ok := command.OriginOf(inv.Data)
			if !ok || o.GuildID == "" {
				return err
			}
			record := storage.CommandHistoryRecord{
				ChannelID: o.ChannelID,
				UserID:    o.UserID,
				Username:  o.Username,
				Command:   c.Name(),
				Param:     strings.Join(inv.Args, " "),
				Datetime:  time.Now(),
			}
			if names != nil {
				record.ChannelName = names.ChannelName(o.ChannelID)
				record.GuildName = names.GuildName(o.GuildID)
			}
			if e := store.AppendCommandToHistory(o.GuildID, record); e != nil {
				log.Printf("[WARN] Failed to log command %s: %v", c.Name(), e)
			}
			return err
		})
	}
}
