package cursor

import (
	"math/rand"
	"reflect"
	"slices"
	"testing"
	"testing/quick"

	"github.com/dshills/quill/internal/engine/chunktree"
)

func buf(s string) chunktree.Snapshot {
	return chunktree.MustFromString(s, chunktree.WithChunkTarget(8)).Snapshot()
}

func ranges(s *Set) [][2]int {
	var out [][2]int
	for _, c := range s.All() {
		start, end := c.Selection()
		out = append(out, [2]int{start, end})
	}
	return out
}

func positions(s *Set) []int {
	return s.Snapshot().Positions()
}

func TestCursorSelection(t *testing.T) {
	c := New(1, 10)
	if c.HasSelection() {
		t.Fatal("new cursor should have no selection")
	}
	c = c.Extend(4)
	if !c.HasSelection() || c.Start() != 4 || c.End() != 10 {
		t.Fatalf("Extend(4) = %v", c)
	}
	if c.IsForward() {
		t.Error("selection 10 -> 4 should be backward")
	}
	c = c.Extend(10)
	if c.HasSelection() {
		t.Errorf("extending back to the anchor should clear the selection, got %v", c)
	}
	c = New(1, 3).Extend(8).MoveTo(5)
	if c.HasSelection() || c.Position != 5 {
		t.Errorf("MoveTo = %v", c)
	}
}

func TestCursorClamp(t *testing.T) {
	c := Cursor{ID: 0, Position: 50, Anchor: 40, PreferredColumn: NoColumn}.Clamp(30)
	if c.Position != 30 || c.Anchor != NoAnchor {
		t.Errorf("Clamp(30) = %v", c)
	}
}

func TestNormalizeMerges(t *testing.T) {
	tests := []struct {
		name     string
		touching bool
		add      [][2]int // position, anchor
		want     [][2]int
	}{
		{"sorted", true, [][2]int{{8, NoAnchor}, {4, NoAnchor}}, [][2]int{{0, 0}, {4, 4}, {8, 8}}},
		{"coincident", false, [][2]int{{0, NoAnchor}}, [][2]int{{0, 0}}},
		{"overlap", false, [][2]int{{5, 2}, {7, 3}}, [][2]int{{0, 0}, {2, 7}}},
		{"inside selection", false, [][2]int{{9, 2}, {5, NoAnchor}}, [][2]int{{0, 0}, {2, 9}}},
		{"touching fused", true, [][2]int{{5, 2}, {8, 5}}, [][2]int{{0, 0}, {2, 8}}},
		{"touching kept", false, [][2]int{{5, 2}, {8, 5}}, [][2]int{{0, 0}, {2, 5}, {5, 8}}},
		{"bare on edge", false, [][2]int{{5, 2}, {5, NoAnchor}}, [][2]int{{0, 0}, {2, 5}}},
		{"anchor equal position", true, [][2]int{{3, 3}}, [][2]int{{0, 0}, {3, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSet(0, WithMergeTouching(tt.touching))
			for _, a := range tt.add {
				s.Add(a[0], a[1])
			}
			if got := ranges(s); !slices.Equal(got, tt.want) {
				t.Errorf("ranges = %v, want %v", got, tt.want)
			}
			if err := s.CheckInvariants(-1); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestNormalizeKeepsPrimary(t *testing.T) {
	s := NewSet(0)
	id := s.AddPrimary(Cursor{Position: 6, Anchor: 2, PreferredColumn: NoColumn})
	s.Add(4, 8)
	if s.Count() != 2 {
		t.Fatalf("count = %d, want 2", s.Count())
	}
	p := s.Primary()
	if p.ID != id {
		t.Errorf("primary id = %d, want %d", p.ID, id)
	}
	if p.Start() != 2 || p.End() != 8 {
		t.Errorf("merged primary = %v, want 2..8", p)
	}
}

func TestSetPrimaryAndRemoveSecondary(t *testing.T) {
	s := NewSet(0)
	id := s.Add(5, NoAnchor)
	s.Add(9, NoAnchor)
	if err := s.SetPrimary(id); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPrimary(99); err == nil {
		t.Error("expected ErrCursorNotFound")
	}
	s.RemoveSecondary()
	if s.Count() != 1 || s.Primary().Position != 5 {
		t.Errorf("after RemoveSecondary: %v", s)
	}
}

func TestApplyEditMultiCursorInsert(t *testing.T) {
	s := NewSet(0)
	for _, p := range []int{4, 8, 12} {
		s.Add(p, NoAnchor)
	}
	// Descending order, each insertion authored by the cursor at its site.
	for _, c := range slices.Backward(s.All()) {
		s.ApplyEdit(InsertEdit(c.Position, 1, c.ID))
	}
	if got, want := positions(s), []int{1, 6, 11, 16}; !slices.Equal(got, want) {
		t.Errorf("positions = %v, want %v", got, want)
	}
}

func TestApplyEditAuthorTieBreak(t *testing.T) {
	s := NewSet(3)
	author := s.Primary().ID
	other := s.Add(7, NoAnchor)
	s.ApplyEdit(InsertEdit(7, 2, author))
	c, _ := s.Get(other)
	if c.Position != 7 {
		t.Errorf("non-author cursor at the insertion point moved to %d", c.Position)
	}
	s.ApplyEdit(InsertEdit(3, 2, author))
	if s.Primary().Position != 5 {
		t.Errorf("author cursor = %d, want 5", s.Primary().Position)
	}
	c, _ = s.Get(other)
	if c.Position != 9 {
		t.Errorf("cursor after the insertion = %d, want 9", c.Position)
	}
}

func TestApplyEditDelete(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		in         []int
		want       []int
	}{
		{"after", 2, 4, []int{0, 6}, []int{0, 4}},
		{"inside collapses", 2, 6, []int{0, 4}, []int{0, 2}},
		{"at end", 2, 4, []int{0, 4}, []int{0, 2}},
		{"at start", 2, 4, []int{2, 9}, []int{2, 7}},
		{"merge", 2, 6, []int{2, 5}, []int{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSet(tt.in[0])
			for _, p := range tt.in[1:] {
				s.Add(p, NoAnchor)
			}
			s.ApplyEdit(DeleteEdit(tt.start, tt.end, NoAuthor))
			if got := positions(s); !slices.Equal(got, tt.want) {
				t.Errorf("positions = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyEditCollapsesSelection(t *testing.T) {
	s := NewSet(0)
	s.Add(6, 2)
	s.ApplyEdit(DeleteEdit(2, 6, NoAuthor))
	c := s.All()[1]
	if c.HasSelection() || c.Anchor != NoAnchor {
		t.Errorf("selection should collapse, got %v", c)
	}
}

func TestAddAtNextMatch(t *testing.T) {
	b := buf("foo foo foo")
	s := NewSet(3)
	if err := s.Update(Cursor{ID: s.Primary().ID, Position: 3, Anchor: 0, PreferredColumn: NoColumn}); err != nil {
		t.Fatal(err)
	}

	if !s.AddAtNextMatch(b) {
		t.Fatal("first AddAtNextMatch added nothing")
	}
	if got, want := ranges(s), [][2]int{{0, 3}, {4, 7}}; !slices.Equal(got, want) {
		t.Fatalf("ranges = %v, want %v", got, want)
	}
	if s.Primary().Start() != 4 {
		t.Errorf("new match should be primary, got %v", s.Primary())
	}

	if !s.AddAtNextMatch(b) {
		t.Fatal("second AddAtNextMatch added nothing")
	}
	if got, want := ranges(s), [][2]int{{0, 3}, {4, 7}, {8, 11}}; !slices.Equal(got, want) {
		t.Fatalf("ranges = %v, want %v", got, want)
	}

	if s.AddAtNextMatch(b) {
		t.Errorf("all matches taken, but a cursor was added: %v", ranges(s))
	}
}

func TestAddAtNextMatchWraps(t *testing.T) {
	b := buf("ab x ab x ab")
	s := NewSet(0)
	s.Update(Cursor{ID: s.Primary().ID, Position: 12, Anchor: 10, PreferredColumn: NoColumn})
	if !s.AddAtNextMatch(b) {
		t.Fatal("expected a wrapped match")
	}
	if s.Primary().Start() != 0 {
		t.Errorf("primary = %v, want the match at 0", s.Primary())
	}
}

func TestAddAtNextMatchSelectsWord(t *testing.T) {
	b := buf("foo bar")
	s := NewSet(5)
	if !s.AddAtNextMatch(b) {
		t.Fatal("expected the word to be selected")
	}
	if s.Count() != 1 {
		t.Errorf("count = %d, want 1", s.Count())
	}
	if start, end := s.Primary().Selection(); start != 4 || end != 7 {
		t.Errorf("selection = %d..%d, want 4..7", start, end)
	}
	if NewSet(3).AddAtNextMatch(buf("a   b")) {
		t.Error("no word under cursor should report false")
	}
}

func TestAddAboveBelow(t *testing.T) {
	// Line starts: 0, 7, 10.
	b := buf("abcdef\nab\nabcdef")
	s := NewSet(5)
	if !s.AddBelow(b) {
		t.Fatal("AddBelow failed")
	}
	if s.Primary().Position != 9 {
		t.Errorf("clamped cursor = %d, want 9", s.Primary().Position)
	}
	if !s.AddBelow(b) {
		t.Fatal("chained AddBelow failed")
	}
	if s.Primary().Position != 15 {
		t.Errorf("preferred column restored at %d, want 15", s.Primary().Position)
	}
	if s.AddBelow(b) {
		t.Error("AddBelow on the last line should fail")
	}
	if got, want := positions(s), []int{5, 9, 15}; !slices.Equal(got, want) {
		t.Errorf("positions = %v, want %v", got, want)
	}

	s = NewSet(2)
	if s.AddAbove(b) {
		t.Error("AddAbove on the first line should fail")
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := NewSet(0)
	s.Add(4, 2)
	snap := s.Snapshot()
	s.Add(9, NoAnchor)
	s.RemoveSecondary()
	s.Restore(snap)
	if !s.Snapshot().Equal(snap) {
		t.Errorf("restore mismatch: %v vs %v", s.Snapshot(), snap)
	}
	id := s.Add(20, NoAnchor)
	for _, c := range snap.Cursors {
		if c.ID == id {
			t.Errorf("restored set reused id %d", id)
		}
	}
}

type setOps struct {
	ops []op
}

type op struct {
	kind   int
	a, b   int
	author bool
}

func (setOps) Generate(r *rand.Rand, size int) reflect.Value {
	n := r.Intn(size + 1)
	ops := make([]op, n)
	for i := range ops {
		ops[i] = op{kind: r.Intn(4), a: r.Intn(64), b: r.Intn(64), author: r.Intn(2) == 0}
	}
	return reflect.ValueOf(setOps{ops: ops})
}

func TestNormalizeProperties(t *testing.T) {
	check := func(touching bool, in setOps) bool {
		s := NewSet(0, WithMergeTouching(touching))
		for _, o := range in.ops {
			switch o.kind {
			case 0:
				s.Add(o.a, NoAnchor)
			case 1:
				s.Add(o.a, o.b)
			case 2:
				author := NoAuthor
				if o.author {
					author = s.Primary().ID
				}
				s.ApplyEdit(InsertEdit(o.a, o.b%5+1, author))
			case 3:
				s.ApplyEdit(DeleteEdit(min(o.a, o.b), max(o.a, o.b), NoAuthor))
			}
			if err := s.CheckInvariants(-1); err != nil {
				t.Log(err)
				return false
			}
		}
		before := s.Snapshot()
		s.Normalize()
		return s.Snapshot().Equal(before)
	}
	if err := quick.Check(check, &quick.Config{MaxCount: 300}); err != nil {
		t.Error(err)
	}
}
