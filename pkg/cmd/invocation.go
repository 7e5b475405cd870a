// Package cmd provides a transport-agnostic command core: a command is something
// with a name, description, and Run(ctx, invocation). How it is registered and
// dispatched (Discord prefix message, slash interaction) is defined by adapters
// that wrap this.
package cmd

import "context"

// Invocation carries what any command runner can pass: the name the command was
// invoked under (which may be an alias), its arguments, and an opaque payload.
// Adapters set Data to their own context type.
type Invocation struct {
	Name string
	Args []string
	Data interface{}
}

// Command is the universal contract: identity plus execution. Permissions,
// cooldowns and transport-specific registration stay in adapters.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// Aliased is implemented by commands reachable under extra names.
type Aliased interface {
	Aliases() []string
}
