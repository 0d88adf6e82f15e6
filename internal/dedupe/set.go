package dedupe

// Set tracks identity keys already admitted into a snapshot.
// It lives for one aggregation and is not safe for concurrent use.
type Set struct {
	items map[string]struct{}
}

// NewSet creates a set sized for the expected number of keys.
func NewSet(capacity int) *Set {
	if capacity < 0 {
		capacity = 0
	}
	return &Set{items: make(map[string]struct{}, capacity)}
}

// Admit records the key and reports whether it was new. Empty keys are never admitted.
func (s *Set) Admit(key string) bool {
	if key == "" {
		return false
	}
	if _, ok := s.items[key]; ok {
		return false
	}
	s.items[key] = struct{}{}
	return true
}
