package chat

// fallback walks the candidate space for one exchange:
//
//	Streaming(i) -> Buffered(i) -> Streaming(i+1 mod N) -> ...
//
// starting at the preferred base URL and visiting each of the 2N pairs once.
type fallback struct {
	bases   []string
	start   int
	visited int
}

func newFallback(bases []string, preferred int) *fallback {
	if preferred < 0 || preferred >= len(bases) {
		preferred = 0
	}
	return &fallback{bases: bases, start: preferred}
}

// next returns the next candidate and its base URL index, or false once every
// pair has been tried
func (f *fallback) next() (Candidate, int, bool) {
	if f.visited >= 2*len(f.bases) {
		return Candidate{}, 0, false
	}

	index := (f.start + f.visited/2) % len(f.bases)
	mode := ModeStreaming
	if f.visited%2 == 1 {
		mode = ModeBuffered
	}
	f.visited++

	return Candidate{BaseURL: f.bases[index], Mode: mode}, index, true
}

// attempts reports how many candidates have been handed out
func (f *fallback) attempts() int {
	return f.visited
}
