package plugin

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// SourceBuiltin is the source of commands provided by the editor itself.
const SourceBuiltin = "builtin"

// Command is an entry of the command prompt.
type Command struct {
	Name        string
	Description string
	// Source is SourceBuiltin or the name of the plugin that registered
	// the command.
	Source string
	// Run executes the command. It is called on the main loop and must not
	// block on plugin work.
	Run func() error
}

// Registry holds the commands offered by the command prompt. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds cmd. A source may replace its own command; a name owned by
// another source is rejected with ErrCommandExists.
func (r *Registry) Register(cmd Command) error {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return fmt.Errorf("%w: command name must not be empty", ErrInvalidParams)
	}
	cmd.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.commands[name]; ok && old.Source != cmd.Source {
		return fmt.Errorf("%w: %q by %s", ErrCommandExists, name, old.Source)
	}
	r.commands[name] = cmd
	return nil
}

// Unregister removes a command.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.commands[name]
	delete(r.commands, name)
	return ok
}

// RemoveSource removes every command registered by source.
func (r *Registry) RemoveSource(source string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for name, cmd := range r.commands {
		if cmd.Source == source {
			delete(r.commands, name)
			n++
		}
	}
	return n
}

// Get returns the named command.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Run executes the named command.
func (r *Registry) Run(name string) error {
	cmd, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrCommandNotFound, name)
	}
	if cmd.Run == nil {
		return nil
	}
	return cmd.Run()
}

// Len returns the number of commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Suggestions returns the commands whose name starts with prefix, compared
// without case, sorted by name. An empty prefix returns every command.
func (r *Registry) Suggestions(prefix string) []Command {
	prefix = strings.ToLower(strings.TrimSpace(prefix))

	r.mu.RLock()
	out := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		if strings.HasPrefix(strings.ToLower(cmd.Name), prefix) {
			out = append(out, cmd)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
