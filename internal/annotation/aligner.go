package annotation

// offsetAligner converts document-global character offsets into
// (part index, part-local offset) pairs. The document's concatenated text
// has one separator character between consecutive parts, so part i starts
// at sum(L[0..i-1]) + i in global coordinates.
//
// An aligner is built per document and holds no cross-document state.
type offsetAligner struct {
	lengths []int
}

func newOffsetAligner(partLengths []int) *offsetAligner {
	return &offsetAligner{lengths: partLengths}
}

// align scans parts in order and returns the first part whose window
// [start, next start) contains global, together with the part-local
// offset. Windows are left-closed, so an offset exactly on a part boundary
// belongs to the part that starts there.
//
// ok is false when the offset falls outside every part: past the end of
// the document, or on the separator position between two parts (where the
// local offset would equal the part's length and no entity may be stored).
// Such mentions reference material outside the loaded parts and are
// dropped by the caller.
func (a *offsetAligner) align(global int) (part int, local int, ok bool) {
	if global < 0 {
		return 0, 0, false
	}
	start := 0
	for i, length := range a.lengths {
		next := start + length + 1
		if global >= start && global < next {
			local = global - start
			if local >= length {
				// Separator position between part i and part i+1.
				return 0, 0, false
			}
			return i, local, true
		}
		start = next
	}
	return 0, 0, false
}
