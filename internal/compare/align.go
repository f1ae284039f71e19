package compare

// Aligner builds the shared key order: keys keep their first-seen position
// and duplicates are ignored.
type Aligner struct {
	keys []Key
	pos  map[Key]int
}

// NewAligner returns an empty Aligner.
func NewAligner() *Aligner {
	return &Aligner{pos: make(map[Key]int)}
}

// Add appends k unless it is already ordered and returns its position.
func (a *Aligner) Add(k Key) int {
	if p, ok := a.pos[k]; ok {
		return p
	}
	a.pos[k] = len(a.keys)
	a.keys = append(a.keys, k)
	return len(a.keys) - 1
}

// AddAll appends every key of ks in order.
func (a *Aligner) AddAll(ks []Key) {
	for _, k := range ks {
		a.Add(k)
	}
}

// Position returns the index of k. A key that was never ordered is a defect
// upstream; it is placed at the end instead of being dropped, and known
// reports false.
func (a *Aligner) Position(k Key) (pos int, known bool) {
	if p, ok := a.pos[k]; ok {
		return p, true
	}
	return a.Add(k), false
}

// Len returns the number of ordered keys.
func (a *Aligner) Len() int { return len(a.keys) }

// Keys returns a copy of the key order.
func (a *Aligner) Keys() []Key {
	out := make([]Key, len(a.keys))
	copy(out, a.keys)
	return out
}

// Align orders source first (document order), then every key of rest that
// is not yet present, in first-observed order.
func Align(source []Key, rest ...[]Key) []Key {
	a := NewAligner()
	a.AddAll(source)
	for _, ks := range rest {
		a.AddAll(ks)
	}
	return a.Keys()
}
