package keymap

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/quill/internal/action"
	"github.com/dshills/quill/internal/input/key"
)

// ErrUnknownAction is returned when a binding names an action that does
// not exist.
var ErrUnknownAction = errors.New("unknown action")

// Context selects the keymap used for a key.
type Context uint8

const (
	ContextNormal Context = iota
	ContextHelp
)

func (c Context) String() string {
	switch c {
	case ContextNormal:
		return "normal"
	case ContextHelp:
		return "help"
	}
	return fmt.Sprintf("Context(%d)", uint8(c))
}

// Keymap holds the bindings of one context.
type Keymap struct {
	// Name is the keymap identifier.
	Name string

	// Context is where the keymap applies.
	Context Context

	// Bindings are the key-to-action mappings in display order.
	Bindings []Binding

	index map[key.Event]int
}

// New creates a keymap from bindings. Every key name must parse.
func New(name string, ctx Context, bindings []Binding) (*Keymap, error) {
	km := &Keymap{
		Name:     name,
		Context:  ctx,
		Bindings: slices.Clone(bindings),
		index:    make(map[key.Event]int, len(bindings)),
	}
	for i, b := range km.Bindings {
		ev, err := key.Parse(b.Keys)
		if err != nil {
			return nil, fmt.Errorf("keymap %s: binding %d (%s): %w", name, i, b.Keys, err)
		}
		if b.Action == action.None {
			return nil, fmt.Errorf("keymap %s: binding %d (%s): empty action", name, i, b.Keys)
		}
		// Canonical names keep the help page consistent.
		km.Bindings[i].Keys = ev.String()
		km.index[ev] = i
	}
	return km, nil
}

// Lookup returns the binding for a key event.
func (k *Keymap) Lookup(ev key.Event) (Binding, bool) {
	i, ok := k.index[ev.Normalize()]
	if !ok {
		return Binding{}, false
	}
	return k.Bindings[i], true
}

// Bind adds or replaces the binding for keys. The action is given by its
// dotted name, as in configuration files.
func (k *Keymap) Bind(keys, actionName string) error {
	ev, err := key.Parse(keys)
	if err != nil {
		return fmt.Errorf("bind %s: %w", keys, err)
	}
	kind, ok := action.Parse(actionName)
	if !ok || kind == action.None {
		return fmt.Errorf("bind %s: %w: %q", keys, ErrUnknownAction, actionName)
	}
	b := Binding{Keys: ev.String(), Action: kind}
	if i, ok := k.index[ev]; ok {
		k.Bindings[i] = b
		return nil
	}
	k.index[ev] = len(k.Bindings)
	k.Bindings = append(k.Bindings, b)
	return nil
}

// Registry holds one keymap per context.
// Registry is not safe for concurrent use.
type Registry struct {
	keymaps map[Context]*Keymap
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{keymaps: make(map[Context]*Keymap)}
}

// Register adds a keymap, replacing the one for the same context.
func (r *Registry) Register(km *Keymap) {
	r.keymaps[km.Context] = km
}

// Keymap returns the keymap of a context, or nil.
func (r *Registry) Keymap(ctx Context) *Keymap {
	return r.keymaps[ctx]
}

// Lookup resolves a key event in a context. In the Normal context an
// unbound printable character becomes InsertChar.
func (r *Registry) Lookup(ctx Context, ev key.Event) (action.Action, bool) {
	ev = ev.Normalize()
	if km := r.keymaps[ctx]; km != nil {
		if b, ok := km.Lookup(ev); ok {
			return action.New(b.Action), true
		}
	}
	if ctx == ContextNormal && ev.IsChar() {
		return action.Char(ev.Rune), true
	}
	return action.Action{}, false
}

// Override applies user bindings, mapping key names to action names, to
// the Normal keymap. All bindings are checked before any is applied.
func (r *Registry) Override(bindings map[string]string) error {
	km := r.keymaps[ContextNormal]
	if km == nil {
		return fmt.Errorf("override: no %s keymap", ContextNormal)
	}
	keys := make([]string, 0, len(bindings))
	for k, name := range bindings {
		if _, err := key.Parse(k); err != nil {
			return fmt.Errorf("override %s: %w", k, err)
		}
		if kind, ok := action.Parse(name); !ok || kind == action.None {
			return fmt.Errorf("override %s: %w: %q", k, ErrUnknownAction, name)
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := km.Bind(k, bindings[k]); err != nil {
			return err
		}
	}
	return nil
}

// Help returns the Normal context bindings grouped for the help page.
func (r *Registry) Help() []BindingCategory {
	km := r.keymaps[ContextNormal]
	if km == nil {
		return nil
	}
	return GroupByCategory(km.Bindings)
}
