package chunktree

import (
	"fmt"
	"unicode/utf8"
)

// CheckInvariants verifies the structural invariants of the tree: cached
// aggregates equal the fold of the children, all leaves sit at the same
// depth, chunks are valid UTF-8 no larger than twice the target, only the
// root leaf may be empty, and the height respects the balance bound. It is
// meant for tests.
func (s view) CheckInvariants() error {
	if s.root == nil {
		return nil
	}
	if _, err := checkNode(s.root, s.root, s.target); err != nil {
		return err
	}
	if s.target > 0 && s.Height() > maxHeight(s.Len(), s.target) {
		return fmt.Errorf("height %d exceeds bound %d for %d bytes",
			s.Height(), maxHeight(s.Len(), s.target), s.Len())
	}
	return nil
}

func checkNode(n, root *node, target int) (Summary, error) {
	if n.isLeaf() {
		if len(n.children) != 0 {
			return Summary{}, fmt.Errorf("leaf has %d children", len(n.children))
		}
		if n.text == "" && n != root {
			return Summary{}, fmt.Errorf("empty non-root leaf")
		}
		if !utf8.ValidString(n.text) {
			return Summary{}, fmt.Errorf("leaf %q is not valid UTF-8", n.text)
		}
		if target > 0 && len(n.text) > 2*target {
			return Summary{}, fmt.Errorf("leaf of %d bytes exceeds 2*target (%d)", len(n.text), 2*target)
		}
		if got := Summarize(n.text); got != n.sum {
			return Summary{}, fmt.Errorf("leaf summary %+v, want %+v", n.sum, got)
		}
		return n.sum, nil
	}

	if len(n.children) == 0 || len(n.children) > maxChildren {
		return Summary{}, fmt.Errorf("internal node has %d children", len(n.children))
	}
	var total Summary
	for _, c := range n.children {
		if c.height+1 != n.height {
			return Summary{}, fmt.Errorf("child height %d under node height %d", c.height, n.height)
		}
		sum, err := checkNode(c, root, target)
		if err != nil {
			return Summary{}, err
		}
		total = total.Add(sum)
	}
	if total != n.sum {
		return Summary{}, fmt.Errorf("node summary %+v, want %+v", n.sum, total)
	}
	return total, nil
}
