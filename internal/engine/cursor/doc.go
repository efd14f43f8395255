// Package cursor provides multi-cursor and selection management.
//
// A Cursor is a value: a byte position, an optional anchor and an optional
// preferred column used by vertical motion. When the anchor is present the
// cursor carries a selection between the anchor and the position; the
// position is where typing happens.
//
// Set holds an ordered collection of cursors with a designated primary.
// After every change the set is normalized:
//   - cursors are sorted by the start of their selection
//   - overlapping cursors are merged into the union of their selections
//   - touching selections fuse when the set is configured to merge them
//   - the primary keeps its identity through merges
//
// Edits reported with ApplyEdit shift cursors the way the text moved. For
// an insertion exactly at a cursor, only the cursor that authored the edit
// moves to the end of the inserted text.
//
// Basic usage:
//
//	set := cursor.NewSet(0)
//	set.Add(4, cursor.NoAnchor)
//	set.ApplyEdit(cursor.InsertEdit(4, 1, id))
//
// Thread Safety:
//
// Cursor and Snapshot are value types safe for concurrent reads. Set is not
// thread-safe; it is owned by a single document state.
package cursor
