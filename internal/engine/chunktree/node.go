package chunktree

import (
	"strings"
	"unicode/utf8"
)

// Tree shape constants.
const (
	// maxChildren is the maximum number of children of an internal node.
	maxChildren = 8

	// minChildren is the fill below which an internal node is merged with
	// a sibling. The root is exempt.
	minChildren = 4
)

// node is a node of the tree. Leaves (height 0) hold a single chunk of
// text, internal nodes hold children of equal height. Nodes are immutable
// after construction.
type node struct {
	height   uint8
	sum      Summary
	children []*node
	text     string
}

func newLeaf(s string) *node {
	return &node{text: s, sum: Summarize(s)}
}

func newInternal(children []*node) *node {
	n := &node{
		height:   children[0].height + 1,
		children: children,
	}
	for _, c := range children {
		n.sum = n.sum.Add(c.sum)
	}
	return n
}

func (n *node) isLeaf() bool {
	return n.height == 0
}

// buildTree bulk-builds a balanced tree from s.
func buildTree(s string, target int) *node {
	pieces := splitChunks(s, target)
	if len(pieces) == 0 {
		return newLeaf("")
	}
	level := make([]*node, len(pieces))
	for i, p := range pieces {
		level[i] = newLeaf(p)
	}
	for len(level) > 1 {
		level = groupNodes(level)
	}
	return level[0]
}

// groupNodes packs same-height nodes under new parents, each parent
// receiving between minChildren and maxChildren nodes when there are
// enough of them.
func groupNodes(nodes []*node) []*node {
	if len(nodes) <= maxChildren {
		return []*node{newInternal(nodes)}
	}
	groups := (len(nodes) + maxChildren - 1) / maxChildren
	parents := make([]*node, 0, groups)
	base := len(nodes) / groups
	extra := len(nodes) % groups
	start := 0
	for g := 0; g < groups; g++ {
		size := base
		if g < extra {
			size++
		}
		kids := make([]*node, size)
		copy(kids, nodes[start:start+size])
		parents = append(parents, newInternal(kids))
		start += size
	}
	return parents
}

// wrapSiblings turns a replacement list produced by insert into the node
// list a parent should hold: one node when it fits, several otherwise.
func wrapSiblings(children []*node) []*node {
	if len(children) <= maxChildren {
		return []*node{newInternal(children)}
	}
	return groupNodes(children)
}

// insert returns the nodes replacing n after inserting text at the
// relative offset at. The returned nodes have n's height.
func (n *node) insert(at int, text string, target int) []*node {
	if n.isLeaf() {
		s := n.text[:at] + text + n.text[at:]
		pieces := splitChunks(s, target)
		out := make([]*node, len(pieces))
		for i, p := range pieces {
			out[i] = newLeaf(p)
		}
		return out
	}

	idx, off := n.childForInsert(at)
	repl := n.children[idx].insert(at-off, text, target)

	children := make([]*node, 0, len(n.children)+len(repl)-1)
	children = append(children, n.children[:idx]...)
	children = append(children, repl...)
	children = append(children, n.children[idx+1:]...)
	return wrapSiblings(children)
}

// childForInsert returns the index of the child that receives an insert at
// the relative offset at, together with the child's starting offset. An
// offset on a child boundary goes to the left child.
func (n *node) childForInsert(at int) (int, int) {
	off := 0
	for i, c := range n.children {
		if at <= off+c.sum.Bytes {
			return i, off
		}
		off += c.sum.Bytes
	}
	last := len(n.children) - 1
	return last, off - n.children[last].sum.Bytes
}

// remove deletes the relative range [start, end) from n. It returns nil
// when nothing is left. The result has n's height but may be underfull;
// the parent rebalances.
func (n *node) remove(start, end, target int) *node {
	if n.isLeaf() {
		s := n.text[:start] + n.text[end:]
		if s == "" {
			return nil
		}
		return newLeaf(s)
	}

	kids := make([]*node, 0, len(n.children))
	off := 0
	for _, c := range n.children {
		cs, ce := off, off+c.sum.Bytes
		off = ce
		if end <= cs || start >= ce {
			kids = append(kids, c)
			continue
		}
		s := max(start, cs) - cs
		e := min(end, ce) - cs
		if s == 0 && e == c.sum.Bytes {
			continue
		}
		if nc := c.remove(s, e, target); nc != nil {
			kids = append(kids, nc)
		}
	}
	kids = rebalance(kids, target)
	if len(kids) == 0 {
		return nil
	}
	return newInternal(kids)
}

// rebalance merges underfull siblings with a neighbour. Leaves below half
// the target are joined with the next (or previous) leaf and re-split if
// the result is too large; internal nodes below minChildren pool their
// children with a neighbour. The number of siblings never grows.
func rebalance(kids []*node, target int) []*node {
	if len(kids) < 2 {
		return kids
	}
	out := make([]*node, 0, len(kids))
	for i := 0; i < len(kids); i++ {
		k := kids[i]
		if !underfull(k, target) {
			out = append(out, k)
			continue
		}
		switch {
		case i+1 < len(kids):
			out = append(out, merge(k, kids[i+1], target)...)
			i++
		case len(out) > 0:
			prev := out[len(out)-1]
			out = out[:len(out)-1]
			out = append(out, merge(prev, k, target)...)
		default:
			out = append(out, k)
		}
	}
	return out
}

func underfull(n *node, target int) bool {
	if n.isLeaf() {
		return n.sum.Bytes < target/2
	}
	return len(n.children) < minChildren
}

// merge joins two adjacent siblings of equal height.
func merge(a, b *node, target int) []*node {
	if a.isLeaf() {
		pieces := splitChunks(a.text+b.text, target)
		out := make([]*node, len(pieces))
		for i, p := range pieces {
			out[i] = newLeaf(p)
		}
		return out
	}
	children := make([]*node, 0, len(a.children)+len(b.children))
	children = append(children, a.children...)
	children = append(children, b.children...)
	return wrapSiblings(children)
}

// leafAt returns the leaf containing the byte at pos and the absolute
// offset of that leaf. For pos == len the last leaf is returned.
func (n *node) leafAt(pos int) (*node, int) {
	base := 0
	for !n.isLeaf() {
		last := len(n.children) - 1
		idx := last
		for i, c := range n.children {
			if pos < base+c.sum.Bytes || i == last {
				idx = i
				break
			}
			base += c.sum.Bytes
		}
		n = n.children[idx]
	}
	return n, base
}

// linesBefore counts newlines in [0, pos).
func (n *node) linesBefore(pos int) int {
	lines := 0
	for !n.isLeaf() {
		var next *node
		for _, c := range n.children {
			if pos <= c.sum.Bytes {
				next = c
				break
			}
			pos -= c.sum.Bytes
			lines += c.sum.Lines
		}
		if next == nil {
			return lines
		}
		n = next
	}
	return lines + strings.Count(n.text[:pos], "\n")
}

// charsBefore counts code points in [0, pos).
func (n *node) charsBefore(pos int) int {
	chars := 0
	for !n.isLeaf() {
		var next *node
		for _, c := range n.children {
			if pos <= c.sum.Bytes {
				next = c
				break
			}
			pos -= c.sum.Bytes
			chars += c.sum.Chars
		}
		if next == nil {
			return chars
		}
		n = next
	}
	return chars + utf8.RuneCountInString(n.text[:pos])
}

// offsetOfChar returns the byte offset of the code point with index ci.
// ci == total chars maps to the end of the text.
func (n *node) offsetOfChar(ci int) int {
	off := 0
	for !n.isLeaf() {
		var next *node
		for _, c := range n.children {
			if ci < c.sum.Chars {
				next = c
				break
			}
			ci -= c.sum.Chars
			off += c.sum.Bytes
		}
		if next == nil {
			return off
		}
		n = next
	}
	for i := range n.text {
		if ci == 0 {
			return off + i
		}
		ci--
	}
	return off + len(n.text)
}

// offsetAfterNewline returns the byte offset just past the k-th newline
// (1-based) in the subtree.
func (n *node) offsetAfterNewline(k int) int {
	off := 0
	for !n.isLeaf() {
		var next *node
		for _, c := range n.children {
			if k <= c.sum.Lines {
				next = c
				break
			}
			k -= c.sum.Lines
			off += c.sum.Bytes
		}
		if next == nil {
			return off
		}
		n = next
	}
	for i := 0; i < len(n.text); i++ {
		if n.text[i] == '\n' {
			k--
			if k == 0 {
				return off + i + 1
			}
		}
	}
	return off + len(n.text)
}

// collect appends the text of every leaf to b.
func (n *node) collect(b *strings.Builder) {
	if n.isLeaf() {
		b.WriteString(n.text)
		return
	}
	for _, c := range n.children {
		c.collect(b)
	}
}
