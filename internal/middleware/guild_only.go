package middleware

import (
	"context"

	"github.com/keshon/lavacog/internal/command"
	"github.com/keshon/lavacog/pkg/cmd"
)

// WithGuildOnly wraps a command to enforce guild-only access
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if o, ok := command.OriginOf(inv.Data); !ok || o.GuildID == "" {
				return nil
			}
			return c.Run(ctx, inv)
		})
	}
}
