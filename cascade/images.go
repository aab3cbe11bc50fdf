package cascade

// ImageSet collects image ids without duplicates, in first-seen order.
type ImageSet struct {
	seen map[string]struct{}
	ids  []string
}

func NewImageSet() *ImageSet {
	return &ImageSet{seen: make(map[string]struct{})}
}

// Add records id unless it is nil, empty or already present.
func (s *ImageSet) Add(id *string) {
	if id == nil || *id == "" {
		return
	}
	if _, ok := s.seen[*id]; ok {
		return
	}
	s.seen[*id] = struct{}{}
	s.ids = append(s.ids, *id)
}

func (s *ImageSet) IDs() []string {
	return append([]string(nil), s.ids...)
}

func (s *ImageSet) Len() int { return len(s.ids) }
