package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/keshon/lavacog/internal/command"
	"github.com/keshon/lavacog/pkg/cmd"
)

const cooldownNoticeTTL = 5 * time.Second

// Cooldowns rate-limits each user per command.
type Cooldowns struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	now      func() time.Time
}

func NewCooldowns() *Cooldowns {
	return &Cooldowns{
		limiters: make(map[string]*rate.Limiter),
		now:      time.Now,
	}
}

// Take spends one use of key. When the key is still cooling down it returns
// the remaining wait and false, and nothing is spent.
func (c *Cooldowns) Take(key string, every time.Duration) (time.Duration, bool) {
	c.mu.Lock()
	lim, ok := c.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(every), 1)
		c.limiters[key] = lim
	}
	c.mu.Unlock()

	now := c.now()
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return every, false
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return d, false
	}
	return 0, true
}

// Middleware applies the command's cooldown to every invocation.
func (c *Cooldowns) Middleware() cmd.Middleware {
	return func(next cmd.Command) cmd.Command {
		meta, ok := cmd.Root(next).(command.DiscordMeta)
		if !ok || meta.Cooldown() <= 0 {
			return next
		}
		every := meta.Cooldown()

		return cmd.Wrap(next, func(ctx context.Context, inv *cmd.Invocation) error {
			o, ok := command.OriginOf(inv.Data)
			if !ok || o.UserID == "" {
				return next.Run(ctx, inv)
			}
			wait, ok := c.Take(next.Name()+":"+o.UserID, every)
			if !ok {
				return command.Respond(inv.Data, command.Reply{
					Content:     fmt.Sprintf("You are on cooldown. Try again in %.2fs", wait.Seconds()),
					DeleteAfter: cooldownNoticeTTL,
				})
			}
			return next.Run(ctx, inv)
		})
	}
}
