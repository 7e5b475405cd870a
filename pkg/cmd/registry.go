package cmd

import (
	"sort"
	"strings"
)

// Registry stores commands by name and alias. It does not perform dispatch;
// each adapter looks up commands and invokes them with its own context.
// Registration happens during startup, before any lookups.
type Registry struct {
	commands map[string]Command
	aliases  map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
	}
}

// Register adds a command under its name and, if the root command is
// Aliased, under each of its aliases. Names are case-insensitive.
func (r *Registry) Register(c Command) {
	name := strings.ToLower(c.Name())
	r.commands[name] = c
	if a, ok := Root(c).(Aliased); ok {
		for _, alias := range a.Aliases() {
			r.aliases[strings.ToLower(alias)] = name
		}
	}
}

// Get returns the command registered under name or alias.
func (r *Registry) Get(name string) (Command, bool) {
	name = strings.ToLower(name)
	if c, ok := r.commands[name]; ok {
		return c, true
	}
	if target, ok := r.aliases[name]; ok {
		c, ok := r.commands[target]
		return c, ok
	}
	return nil, false
}

// GetAll returns all registered commands, sorted by name. Aliases are not
// repeated.
func (r *Registry) GetAll() []Command {
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}
