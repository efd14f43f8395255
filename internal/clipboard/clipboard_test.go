package clipboard

import (
	"errors"
	"testing"
)

func TestMemory(t *testing.T) {
	var m Memory
	if got, err := m.Get(); err != nil || got != "" {
		t.Fatalf("empty Get = %q, %v", got, err)
	}
	if err := m.Set("héllo\nworld"); err != nil {
		t.Fatal(err)
	}
	if got, _ := m.Get(); got != "héllo\nworld" {
		t.Errorf("Get = %q", got)
	}
}

func TestDefaultMemory(t *testing.T) {
	if _, ok := Default(false).(*Memory); !ok {
		t.Error("Default(false) should be a memory clipboard")
	}
}

func TestSystemFallsBackToLocal(t *testing.T) {
	s, err := NewSystem()
	if errors.Is(err, ErrUnavailable) {
		t.Skip("no system clipboard")
	}
	if err != nil {
		t.Fatal(err)
	}
	// Without a display server both calls fail, but the text survives.
	setErr := s.Set("abc")
	got, getErr := s.Get()
	if setErr == nil && getErr == nil && got != "abc" {
		t.Errorf("Get = %q after successful Set", got)
	}
	if getErr != nil && got != "abc" {
		t.Errorf("local fallback = %q", got)
	}
}
