// Package chunktree provides the text buffer used by the editing engine.
//
// A ChunkTree is a B+ tree of bounded UTF-8 chunks. Leaves hold one chunk
// each, internal nodes hold up to eight children, and every node caches the
// byte, code point and newline counts of its subtree. Position and line
// lookups descend the tree using those aggregates, so insert, delete and
// position<->(line, column) conversions are O(log n).
//
// Nodes are never mutated once published. A mutation copies the path from
// the root to the affected leaves and swaps the root, which makes
// Snapshot an O(1) operation whose result is safe to read from other
// goroutines while the single writer keeps editing.
//
// Basic usage:
//
//	t := chunktree.FromString("hello world")
//	_ = t.Insert(5, ",")              // "hello, world"
//	removed, _ := t.Delete(0, 7)      // removed == "hello, "
//	line, col, _ := t.PositionToLineCol(3)
//
// Columns count code points, not bytes. Positions are byte offsets and must
// fall on code point boundaries.
package chunktree
