package catalog

import (
	"errors"

	"github.com/cognicore/chipmap/pkg/chipmap/classify"
	"github.com/cognicore/chipmap/pkg/chipmap/internalerr"
)

// Entry is a canonical name with its triple.
type Entry struct {
	Name   string          `json:"name" yaml:"name"`
	Triple classify.Triple `json:"triple" yaml:"triple"`
}

// Miss is a canonical name no rule matched.
type Miss struct {
	Marker string `json:"marker" yaml:"marker"`
	Name   string `json:"name" yaml:"name"`
}

// Classified is the classified view of an Index. Markers whose names all
// failed to classify are absent.
type Classified struct {
	markers   []string
	entries   map[string][]Entry
	unmatched []Miss
}

// Classify runs every name of idx through c. Unclassifiable names are
// recorded as misses; any other error stops classification.
func Classify(idx *Index, c *classify.Classifier) (*Classified, error) {
	out := &Classified{entries: make(map[string][]Entry)}
	for _, marker := range idx.Markers() {
		var entries []Entry
		for _, name := range idx.Names(marker) {
			t, err := c.Classify(name)
			if errors.Is(err, internalerr.ErrUnclassifiable) {
				out.unmatched = append(out.unmatched, Miss{Marker: marker, Name: name})
				continue
			}
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{Name: name, Triple: t})
		}
		if len(entries) == 0 {
			continue
		}
		out.markers = append(out.markers, marker)
		out.entries[marker] = entries
	}
	return out, nil
}

// Markers returns the classified markers in catalog order.
func (c *Classified) Markers() []string {
	return append([]string(nil), c.markers...)
}

// Entries returns the classified names of marker.
func (c *Classified) Entries(marker string) []Entry {
	return append([]Entry(nil), c.entries[marker]...)
}

// Triples returns the triples of marker in catalog order.
func (c *Classified) Triples(marker string) []classify.Triple {
	entries := c.entries[marker]
	if len(entries) == 0 {
		return nil
	}
	out := make([]classify.Triple, len(entries))
	for i, e := range entries {
		out[i] = e.Triple
	}
	return out
}

// Map returns marker → triples, the shape consumed by plotting tools.
func (c *Classified) Map() map[string][]classify.Triple {
	out := make(map[string][]classify.Triple, len(c.markers))
	for _, m := range c.markers {
		out[m] = c.Triples(m)
	}
	return out
}

// Unmatched returns the names no rule matched, in catalog order.
func (c *Classified) Unmatched() []Miss {
	return append([]Miss(nil), c.unmatched...)
}

// Len returns the number of classified markers.
func (c *Classified) Len() int {
	return len(c.markers)
}

// EntryCount returns the number of classified names.
func (c *Classified) EntryCount() int {
	n := 0
	for _, e := range c.entries {
		n += len(e)
	}
	return n
}
