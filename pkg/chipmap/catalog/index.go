package catalog

// Index maps family markers to canonical names, both in catalog order.
type Index struct {
	markers []string
	names   map[string][]string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{names: make(map[string][]string)}
}

// Declare registers marker without adding names. Declaring a known marker
// is a no-op.
func (x *Index) Declare(marker string) {
	if _, ok := x.names[marker]; ok {
		return
	}
	x.markers = append(x.markers, marker)
	x.names[marker] = nil
}

// Add appends names under marker, declaring it if needed.
func (x *Index) Add(marker string, names ...string) {
	x.Declare(marker)
	x.names[marker] = append(x.names[marker], names...)
}

// Markers returns the markers in the order they were first seen.
func (x *Index) Markers() []string {
	return append([]string(nil), x.markers...)
}

// Names returns the canonical names recorded under marker.
func (x *Index) Names(marker string) []string {
	return append([]string(nil), x.names[marker]...)
}

// Has reports whether marker was declared.
func (x *Index) Has(marker string) bool {
	_, ok := x.names[marker]
	return ok
}

// Len returns the number of markers.
func (x *Index) Len() int {
	return len(x.markers)
}

// NameCount returns the number of canonical names across all markers.
func (x *Index) NameCount() int {
	n := 0
	for _, names := range x.names {
		n += len(names)
	}
	return n
}

// Map returns a copy of the index as a plain map.
func (x *Index) Map() map[string][]string {
	out := make(map[string][]string, len(x.names))
	for _, m := range x.markers {
		out[m] = x.Names(m)
	}
	return out
}
