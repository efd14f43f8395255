package chunktree

import (
	"fmt"
	"io"
	"math/bits"
	"strings"
	"unicode/utf8"
)

// Option configures a Tree.
type Option func(*Tree)

// WithChunkTarget sets the preferred leaf size in bytes.
func WithChunkTarget(n int) Option {
	return func(t *Tree) {
		if n < minChunkTarget {
			n = minChunkTarget
		}
		t.target = n
	}
}

// Tree is the mutable handle of a chunk tree. It is not safe for
// concurrent mutation; readers on other goroutines should work on a
// Snapshot.
type Tree struct {
	view
}

// Snapshot is an immutable view of a tree at one point in time. The zero
// value is an empty buffer.
type Snapshot struct {
	view
}

// view carries the read operations shared by Tree and Snapshot.
type view struct {
	root   *node
	target int
}

// New creates an empty tree.
func New(opts ...Option) *Tree {
	t := &Tree{view{target: DefaultChunkTarget}}
	for _, opt := range opts {
		opt(t)
	}
	t.root = newLeaf("")
	return t
}

// FromString creates a tree holding s. It fails with ErrInvalidEncoding if
// s is not valid UTF-8.
func FromString(s string, opts ...Option) (*Tree, error) {
	if !utf8.ValidString(s) {
		return nil, ErrInvalidEncoding
	}
	t := New(opts...)
	t.root = buildTree(s, t.target)
	return t, nil
}

// MustFromString is like FromString but panics on invalid input. It is
// intended for tests and literals.
func MustFromString(s string, opts ...Option) *Tree {
	t, err := FromString(s, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// FromReader creates a tree from everything read from r.
func FromReader(r io.Reader, opts ...Option) (*Tree, error) {
	var b strings.Builder
	if _, err := io.Copy(&b, r); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return FromString(b.String(), opts...)
}

// Snapshot returns an immutable view of the current contents.
func (t *Tree) Snapshot() Snapshot {
	return Snapshot{t.view}
}

// Insert inserts text at byte offset at. On error the tree is unchanged.
func (t *Tree) Insert(at int, text string) error {
	if at < 0 || at > t.Len() {
		return fmt.Errorf("insert at %d (len %d): %w", at, t.Len(), ErrOutOfBounds)
	}
	if !t.isBoundary(at) {
		return fmt.Errorf("insert at %d: %w", at, ErrInvalidBoundary)
	}
	if !utf8.ValidString(text) {
		return ErrInvalidEncoding
	}
	if text == "" {
		return nil
	}

	nodes := t.root.insert(at, text, t.target)
	for len(nodes) > 1 {
		nodes = groupNodes(nodes)
	}
	t.setRoot(nodes[0])
	return nil
}

// Delete removes the range [start, end) and returns the removed text. On
// error the tree is unchanged.
func (t *Tree) Delete(start, end int) (string, error) {
	if err := t.checkRange(start, end); err != nil {
		return "", err
	}
	if start == end {
		return "", nil
	}

	removed := t.Text(start, end)
	root := t.root.remove(start, end, t.target)
	if root == nil {
		root = newLeaf("")
	}
	t.setRoot(root)
	return removed, nil
}

// Replace replaces [start, end) with text and returns the removed text.
func (t *Tree) Replace(start, end int, text string) (string, error) {
	if err := t.checkRange(start, end); err != nil {
		return "", err
	}
	if !utf8.ValidString(text) {
		return "", ErrInvalidEncoding
	}
	removed, err := t.Delete(start, end)
	if err != nil {
		return "", err
	}
	if err := t.Insert(start, text); err != nil {
		return "", err
	}
	return removed, nil
}

// setRoot installs a new root, collapsing single-child chains and
// rebuilding when the height exceeds the balance bound.
func (t *Tree) setRoot(root *node) {
	for !root.isLeaf() && len(root.children) == 1 {
		root = root.children[0]
	}
	if int(root.height) > maxHeight(root.sum.Bytes, t.target) {
		var b strings.Builder
		b.Grow(root.sum.Bytes)
		root.collect(&b)
		root = buildTree(b.String(), t.target)
	}
	t.root = root
}

// maxHeight is the tallest tree accepted for a buffer of n bytes:
// 1 + 2*log2(n/target).
func maxHeight(n, target int) int {
	return 1 + 2*bits.Len(uint(n/target))
}

// Len returns the length in bytes.
func (s view) Len() int {
	if s.root == nil {
		return 0
	}
	return s.root.sum.Bytes
}

// CharCount returns the number of code points.
func (s view) CharCount() int {
	if s.root == nil {
		return 0
	}
	return s.root.sum.Chars
}

// LineCount returns the number of lines: newlines plus one.
func (s view) LineCount() int {
	if s.root == nil {
		return 1
	}
	return s.root.sum.Lines + 1
}

// Summary returns the aggregate metrics of the whole buffer.
func (s view) Summary() Summary {
	if s.root == nil {
		return Summary{}
	}
	return s.root.sum
}

// Height returns the tree height. A single leaf has height 0.
func (s view) Height() int {
	if s.root == nil {
		return 0
	}
	return int(s.root.height)
}

// String returns the whole buffer.
func (s view) String() string {
	if s.root == nil {
		return ""
	}
	var b strings.Builder
	b.Grow(s.root.sum.Bytes)
	s.root.collect(&b)
	return b.String()
}

// Text returns the text in [start, end). Out of range bounds are clamped.
func (s view) Text(start, end int) string {
	start = max(start, 0)
	end = min(end, s.Len())
	if start >= end {
		return ""
	}
	var b strings.Builder
	b.Grow(end - start)
	it := s.Slice(start, end)
	for it.Next() {
		b.WriteString(it.Chunk())
	}
	return b.String()
}

// WriteTo writes the whole buffer to w.
func (s view) WriteTo(w io.Writer) (int64, error) {
	var total int64
	it := s.Slice(0, s.Len())
	for it.Next() {
		n, err := io.WriteString(w, it.Chunk())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Reader returns an io.Reader over the whole buffer.
func (s view) Reader() io.Reader {
	return &reader{it: s.Slice(0, s.Len())}
}

type reader struct {
	it  *Iterator
	buf string
}

func (r *reader) Read(p []byte) (int, error) {
	for r.buf == "" {
		if !r.it.Next() {
			return 0, io.EOF
		}
		r.buf = r.it.Chunk()
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// ByteAt returns the byte at pos.
func (s view) ByteAt(pos int) (byte, error) {
	if pos < 0 || pos >= s.Len() {
		return 0, ErrOutOfBounds
	}
	leaf, base := s.root.leafAt(pos)
	return leaf.text[pos-base], nil
}

// RuneAt decodes the code point starting at pos. It returns (0, 0) at the
// end of the buffer or when pos is invalid.
func (s view) RuneAt(pos int) (rune, int) {
	if pos < 0 || pos >= s.Len() {
		return 0, 0
	}
	leaf, base := s.root.leafAt(pos)
	return utf8.DecodeRuneInString(leaf.text[pos-base:])
}

// RuneBefore decodes the code point ending at pos. It returns (0, 0) at
// the start of the buffer or when pos is invalid.
func (s view) RuneBefore(pos int) (rune, int) {
	if pos <= 0 || pos > s.Len() {
		return 0, 0
	}
	leaf, base := s.root.leafAt(pos - 1)
	return utf8.DecodeLastRuneInString(leaf.text[:pos-base])
}

// NextBoundary returns the code point boundary after pos, or Len at the end.
func (s view) NextBoundary(pos int) int {
	if pos >= s.Len() {
		return s.Len()
	}
	_, size := s.RuneAt(pos)
	return pos + max(size, 1)
}

// PrevBoundary returns the code point boundary before pos, or 0 at the start.
func (s view) PrevBoundary(pos int) int {
	if pos <= 0 {
		return 0
	}
	_, size := s.RuneBefore(pos)
	return pos - max(size, 1)
}

// IsBoundary reports whether pos is a valid position: inside [0, Len] and
// not splitting a code point.
func (s view) IsBoundary(pos int) bool {
	return pos >= 0 && pos <= s.Len() && s.isBoundary(pos)
}

func (s view) isBoundary(pos int) bool {
	if pos == 0 || pos >= s.Len() {
		return true
	}
	b, err := s.ByteAt(pos)
	return err == nil && isUTF8Start(b)
}

func (s view) checkRange(start, end int) error {
	if start < 0 || start > end || end > s.Len() {
		return fmt.Errorf("range [%d, %d) (len %d): %w", start, end, s.Len(), ErrOutOfBounds)
	}
	if !s.isBoundary(start) || !s.isBoundary(end) {
		return fmt.Errorf("range [%d, %d): %w", start, end, ErrInvalidBoundary)
	}
	return nil
}

// Equal reports whether two snapshots hold the same text.
func (s view) Equal(other Snapshot) bool {
	if s.root == other.root {
		return true
	}
	if s.Summary() != other.Summary() {
		return false
	}
	return s.String() == other.String()
}
