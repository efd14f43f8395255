package keymap

import (
	"github.com/dshills/quill/internal/action"
)

// Binding represents a single key-to-action mapping.
type Binding struct {
	// Keys is the key name that triggers this binding, such as "Ctrl+S".
	Keys string

	// Action is the action kind to run.
	Action action.Kind

	// Description provides documentation for the binding. When empty the
	// action's description is used.
	Description string

	// Category groups bindings for display purposes. When empty the
	// action's category is used.
	Category string
}

// Describe returns the description shown on the help page.
func (b Binding) Describe() string {
	if b.Description != "" {
		return b.Description
	}
	return b.Action.Description()
}

// Group returns the category shown on the help page.
func (b Binding) Group() string {
	if b.Category != "" {
		return b.Category
	}
	if c := b.Action.Category(); c != "" {
		return c
	}
	return "Other"
}

// BindingCategory represents a category of bindings for display.
type BindingCategory struct {
	Name     string
	Bindings []Binding
}

// GroupByCategory groups bindings by their category, keeping the order in
// which categories first appear.
func GroupByCategory(bindings []Binding) []BindingCategory {
	categoryMap := make(map[string][]Binding)
	order := make([]string, 0)

	for _, b := range bindings {
		cat := b.Group()
		if _, exists := categoryMap[cat]; !exists {
			order = append(order, cat)
		}
		categoryMap[cat] = append(categoryMap[cat], b)
	}

	result := make([]BindingCategory, 0, len(order))
	for _, name := range order {
		result = append(result, BindingCategory{
			Name:     name,
			Bindings: categoryMap[name],
		})
	}
	return result
}
