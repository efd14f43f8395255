package chunktree

// DefaultChunkTarget is the preferred leaf size in bytes. Leaves are split
// above twice the target and merged with a neighbour below half of it.
const DefaultChunkTarget = 1024

// minChunkTarget keeps tiny targets (used by tests) from degenerating into
// one-byte leaves that cannot hold a four byte code point.
const minChunkTarget = 8

// splitChunks splits s into pieces of roughly target bytes. Every piece
// ends on a code point boundary and pieces prefer to end just after a
// newline near the split point. Each returned piece is at most 2*target
// bytes.
func splitChunks(s string, target int) []string {
	if len(s) == 0 {
		return nil
	}
	if len(s) <= 2*target {
		return []string{s}
	}

	pieces := make([]string, 0, len(s)/target+1)
	remaining := s
	for len(remaining) > 2*target {
		split := findSplitPoint(remaining, target)
		pieces = append(pieces, remaining[:split])
		remaining = remaining[split:]
	}
	if len(remaining) > 0 {
		pieces = append(pieces, remaining)
	}
	return pieces
}

// findSplitPoint finds a code point boundary near target, preferring the
// byte after a newline within a quarter target of it.
func findSplitPoint(s string, target int) int {
	if target >= len(s) {
		return len(s)
	}

	window := target / 4
	lo := target - window
	hi := target + window
	if hi > len(s) {
		hi = len(s)
	}
	for i := target; i < hi; i++ {
		if s[i] == '\n' {
			return i + 1
		}
	}
	for i := target - 1; i >= lo && i >= 0; i-- {
		if s[i] == '\n' {
			return i + 1
		}
	}

	pos := target
	for pos > 0 && !isUTF8Start(s[pos]) {
		pos--
	}
	if pos == 0 {
		pos = target
		for pos < len(s) && !isUTF8Start(s[pos]) {
			pos++
		}
	}
	return pos
}

// isUTF8Start reports whether b starts a UTF-8 sequence. Continuation
// bytes have the form 10xxxxxx.
func isUTF8Start(b byte) bool {
	return b&0xC0 != 0x80
}
