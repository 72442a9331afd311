package ingest

import "github.com/zeebo/xxh3"

// seenSet tracks collision identifiers already accepted in this run, using a
// 64-bit xxh3 digest per id so the set stays compact on multi-million row
// files. Keep-first: the first row for an id wins, later rows are skipped.
type seenSet struct {
	ids map[uint64]struct{}
}

func newSeenSet(hint int) *seenSet {
	if hint <= 0 {
		hint = 1 << 16
	}
	return &seenSet{ids: make(map[uint64]struct{}, hint)}
}

// Add reports whether id was newly added (true) or already present (false).
func (s *seenSet) Add(id string) bool {
	h := xxh3.HashString(id)
	if _, ok := s.ids[h]; ok {
		return false
	}
	s.ids[h] = struct{}{}
	return true
}

func (s *seenSet) Len() int { return len(s.ids) }
