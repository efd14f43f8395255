package plugin

import (
	"errors"
	"testing"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	ran := ""
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(r.Register(Command{Name: "save", Source: SourceBuiltin, Run: func() error { ran = "save"; return nil }}))
	must(r.Register(Command{Name: "Save All", Source: SourceBuiltin}))
	must(r.Register(Command{Name: "greet", Source: "hello"}))

	if err := r.Register(Command{Name: "save", Source: "hello"}); !errors.Is(err, ErrCommandExists) {
		t.Errorf("duplicate from other source: %v", err)
	}
	if err := r.Register(Command{Name: "greet", Source: "hello", Description: "v2"}); err != nil {
		t.Errorf("same source should replace: %v", err)
	}
	if c, _ := r.Get("greet"); c.Description != "v2" {
		t.Errorf("greet = %+v", c)
	}
	if err := r.Register(Command{Name: "  "}); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("empty name: %v", err)
	}

	names := func(cmds []Command) []string {
		out := make([]string, len(cmds))
		for i, c := range cmds {
			out[i] = c.Name
		}
		return out
	}
	if got := names(r.Suggestions("sa")); len(got) != 2 || got[0] != "Save All" || got[1] != "save" {
		t.Errorf("Suggestions(sa) = %v", got)
	}
	if got := r.Suggestions(""); len(got) != 3 {
		t.Errorf("Suggestions() = %v", names(got))
	}
	if got := r.Suggestions("x"); len(got) != 0 {
		t.Errorf("Suggestions(x) = %v", names(got))
	}

	must(r.Run("save"))
	if ran != "save" {
		t.Error("command did not run")
	}
	if err := r.Run("nope"); !errors.Is(err, ErrCommandNotFound) {
		t.Errorf("Run(nope) = %v", err)
	}

	if n := r.RemoveSource("hello"); n != 1 || r.Len() != 2 {
		t.Errorf("RemoveSource = %d, Len = %d", n, r.Len())
	}
	if !r.Unregister("save") || r.Unregister("save") {
		t.Error("Unregister result mismatch")
	}
}
