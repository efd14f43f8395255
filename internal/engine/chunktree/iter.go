package chunktree

// iterFrame is one level of the path from the root to the current leaf.
type iterFrame struct {
	n    *node
	idx  int // child currently being visited
	base int // absolute offset of that child
}

// Iterator lazily walks the chunks covering a byte range. Each step costs
// amortized O(1); positioning at the start of the range costs O(log n).
//
//	it := t.Slice(10, 200)
//	for it.Next() {
//		process(it.Chunk())
//	}
type Iterator struct {
	stack    []iterFrame
	leaf     *node
	leafBase int
	primed   bool

	pos   int // next unread byte
	end   int
	chunk string
	start int // offset of the current chunk
}

// Slice returns an iterator over the bytes in [start, end). Bounds are
// clamped to the buffer.
func (s view) Slice(start, end int) *Iterator {
	start = max(start, 0)
	end = min(end, s.Len())
	it := &Iterator{pos: start, end: end}
	if s.root == nil || start >= end {
		return it
	}

	it.stack = make([]iterFrame, 0, int(s.root.height)+1)
	n, base := s.root, 0
	for !n.isLeaf() {
		last := len(n.children) - 1
		idx := last
		for i, c := range n.children {
			if start < base+c.sum.Bytes || i == last {
				idx = i
				break
			}
			base += c.sum.Bytes
		}
		it.stack = append(it.stack, iterFrame{n: n, idx: idx, base: base})
		n = n.children[idx]
	}
	it.leaf, it.leafBase = n, base
	return it
}

// Line returns an iterator over the content of line, without its
// terminator. Lines outside the buffer yield nothing.
func (s view) Line(line int) *Iterator {
	if line < 0 || line >= s.LineCount() {
		return &Iterator{}
	}
	return s.Slice(s.LineStart(line), s.LineEnd(line))
}

// Next advances to the next chunk. It returns false when the range is
// exhausted.
func (it *Iterator) Next() bool {
	if it.pos >= it.end || it.leaf == nil {
		return false
	}
	if it.primed {
		if !it.advance() {
			return false
		}
	}
	it.primed = true

	from := it.pos - it.leafBase
	to := min(len(it.leaf.text), it.end-it.leafBase)
	it.chunk = it.leaf.text[from:to]
	it.start = it.pos
	it.pos = it.leafBase + to
	return true
}

// advance moves to the leaf following the current one.
func (it *Iterator) advance() bool {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		if top.idx+1 < len(top.n.children) {
			top.base += top.n.children[top.idx].sum.Bytes
			top.idx++
			n, base := top.n.children[top.idx], top.base
			for !n.isLeaf() {
				it.stack = append(it.stack, iterFrame{n: n, base: base})
				n = n.children[0]
			}
			it.leaf, it.leafBase = n, base
			return true
		}
		it.stack = it.stack[:len(it.stack)-1]
	}
	return false
}

// Chunk returns the current chunk.
func (it *Iterator) Chunk() string {
	return it.chunk
}

// Offset returns the absolute byte offset of the current chunk.
func (it *Iterator) Offset() int {
	return it.start
}
