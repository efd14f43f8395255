package chunktree

// byteReader gives random access to the buffer bytes, caching the most
// recently visited leaf. Scans that move through the buffer monotonically
// descend the tree once per leaf.
type byteReader struct {
	root *node
	leaf *node
	base int
}

func (r *byteReader) at(pos int) byte {
	if r.leaf == nil || pos < r.base || pos >= r.base+len(r.leaf.text) {
		r.leaf, r.base = r.root.leafAt(pos)
	}
	return r.leaf.text[pos-r.base]
}

// SearchForward returns the offset of the first occurrence of needle that
// starts at or after from. It uses Boyer-Moore-Horspool over the chunked
// text. An empty needle matches at from.
func (s view) SearchForward(from int, needle string) (int, bool) {
	n, m := s.Len(), len(needle)
	from = max(from, 0)
	if from > n {
		return -1, false
	}
	if m == 0 {
		return from, true
	}
	if m > n-from {
		return -1, false
	}

	var shift [256]int
	for i := range shift {
		shift[i] = m
	}
	for i := 0; i < m-1; i++ {
		shift[needle[i]] = m - 1 - i
	}

	r := byteReader{root: s.root}
	for pos := from; pos+m <= n; {
		last := r.at(pos + m - 1)
		if last == needle[m-1] {
			j := m - 2
			for j >= 0 && r.at(pos+j) == needle[j] {
				j--
			}
			if j < 0 {
				return pos, true
			}
		}
		pos += shift[last]
	}
	return -1, false
}

// SearchBackward returns the offset of the last occurrence of needle that
// ends at or before from. An empty needle matches at from.
func (s view) SearchBackward(from int, needle string) (int, bool) {
	n, m := s.Len(), len(needle)
	from = min(from, n)
	if from < 0 {
		return -1, false
	}
	if m == 0 {
		return from, true
	}
	if m > from {
		return -1, false
	}

	// Mirror image of the forward table: the window is aligned on its
	// first byte and slides left.
	var shift [256]int
	for i := range shift {
		shift[i] = m
	}
	for i := m - 1; i > 0; i-- {
		shift[needle[i]] = i
	}

	r := byteReader{root: s.root}
	for pos := from - m; pos >= 0; {
		first := r.at(pos)
		if first == needle[0] {
			j := 1
			for j < m && r.at(pos+j) == needle[j] {
				j++
			}
			if j == m {
				return pos, true
			}
		}
		pos -= shift[first]
	}
	return -1, false
}
