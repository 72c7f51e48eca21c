package checksum

// Hint is a digest advertised for a file, e.g. by a metalink <hash> element.
type Hint struct {
	Type  string
	Value string
}

// SelectBest returns the hint with the strongest recognized algorithm.
// Hints with an empty type or value and unrecognized algorithms are ignored.
// When several hints share the strongest algorithm the first one wins.
// The boolean is false when nothing could be selected.
func SelectBest(hints []Hint) (Hint, bool) {
	var (
		best     Hint
		bestType = Unknown
	)
	for _, h := range hints {
		if h.Type == "" || h.Value == "" {
			continue
		}
		t := TypeFromName(h.Type)
		if t != Unknown && t > bestType {
			bestType = t
			best = h
		}
	}
	return best, bestType != Unknown
}
