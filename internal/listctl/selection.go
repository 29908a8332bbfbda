package listctl

// Selection tracks checked row ids for bulk operations.
//
// Invariant: after every refresh the set contains only ids present in the
// current item list (Prune), and any page/filter change clears it outright.
type Selection struct {
	ids map[string]bool
}

func NewSelection() *Selection {
	return &Selection{ids: map[string]bool{}}
}

func (s *Selection) Toggle(id string) {
	if id == "" {
		return
	}
	if s.ids[id] {
		delete(s.ids, id)
		return
	}
	s.ids[id] = true
}

func (s *Selection) Has(id string) bool { return s.ids[id] }

func (s *Selection) Len() int { return len(s.ids) }

func (s *Selection) Clear() {
	s.ids = map[string]bool{}
}

// IDs returns the selected ids in input order relative to visible: callers
// pass the current item order so bulk requests are deterministic.
func (s *Selection) IDs(visible []string) []string {
	out := make([]string, 0, len(s.ids))
	for _, id := range visible {
		if s.ids[id] {
			out = append(out, id)
		}
	}
	return out
}

// Prune drops ids not present in visible.
func (s *Selection) Prune(visible []string) {
	keep := make(map[string]bool, len(s.ids))
	for _, id := range visible {
		if s.ids[id] {
			keep[id] = true
		}
	}
	s.ids = keep
}
