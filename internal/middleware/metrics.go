package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/keshon/lavacog/internal/command"
	"github.com/keshon/lavacog/internal/metrics"
	"github.com/keshon/lavacog/pkg/cmd"
)

// WithMetrics records invocation counts, latency and failures.
func WithMetrics(m *metrics.Metrics) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)
			m.CommandRan(c.Name(), time.Since(start).Seconds())
			if err != nil {
				m.CommandFailed(c.Name(), errorKind(err))
			}
			return err
		})
	}
}

func errorKind(err error) string {
	var ie *command.InvocationError
	if errors.As(err, &ie) {
		return ie.Kind.String()
	}
	return "error"
}
