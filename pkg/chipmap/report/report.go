package report

import (
	"crypto/rand"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/chipmap/pkg/chipmap/catalog"
	"github.com/cognicore/chipmap/pkg/chipmap/classify"
)

// Builder constructs reports with unique, time-ordered IDs
type Builder struct {
	entropy *ulid.LockedMonotonicReader
	now     func() time.Time
}

// New creates a new report builder
func New() *Builder {
	return &Builder{
		entropy: &ulid.LockedMonotonicReader{MonotonicReader: ulid.Monotonic(rand.Reader, 0)},
		now:     time.Now,
	}
}

// Report is the classified view of one catalog run
type Report struct {
	ID          string         `json:"id" yaml:"id"`
	Source      string         `json:"source" yaml:"source"`
	GeneratedAt time.Time      `json:"generated_at" yaml:"generated_at"`
	Families    []Family       `json:"families" yaml:"families"`
	Unmatched   []catalog.Miss `json:"unmatched" yaml:"unmatched"`
	Totals      Totals         `json:"totals" yaml:"totals"`
}

// Family holds the classified names of one marker
type Family struct {
	Marker  string          `json:"marker" yaml:"marker"`
	Entries []catalog.Entry `json:"entries" yaml:"entries"`
	Points  []Point         `json:"points" yaml:"points"`
}

// Point is one scatter point: X = epoch*10 + series, Y = level
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Totals summarizes classification coverage
type Totals struct {
	Families   int     `json:"families" yaml:"families"`
	Plotted    int     `json:"plotted" yaml:"plotted"`
	Names      int     `json:"names" yaml:"names"`
	Classified int     `json:"classified" yaml:"classified"`
	Unmatched  int     `json:"unmatched" yaml:"unmatched"`
	Coverage   float64 `json:"coverage" yaml:"coverage"`
}

// Build creates a report from an index and its classification
func (b *Builder) Build(source string, idx *catalog.Index, cls *catalog.Classified) Report {
	now := b.now()
	r := Report{
		ID:          ulid.MustNew(ulid.Timestamp(now), b.entropy).String(),
		Source:      source,
		GeneratedAt: now.UTC(),
		Families:    make([]Family, 0, cls.Len()),
		Unmatched:   cls.Unmatched(),
	}

	for _, marker := range cls.Markers() {
		r.Families = append(r.Families, Family{
			Marker:  marker,
			Entries: cls.Entries(marker),
			Points:  Points(cls.Triples(marker)),
		})
	}

	r.Totals = Totals{
		Families:   idx.Len(),
		Plotted:    cls.Len(),
		Names:      idx.NameCount(),
		Classified: cls.EntryCount(),
		Unmatched:  len(r.Unmatched),
	}
	if r.Totals.Names > 0 {
		r.Totals.Coverage = float64(r.Totals.Classified) / float64(r.Totals.Names)
	}
	return r
}

// Points converts triples to scatter points sorted by X, then Y
func Points(triples []classify.Triple) []Point {
	pts := make([]Point, len(triples))
	for i, t := range triples {
		pts[i] = Point{X: t.X(), Y: t.Level}
	}
	sort.SliceStable(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	return pts
}
