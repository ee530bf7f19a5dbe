package catalog

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/chipmap/internal/logging"
	"github.com/cognicore/chipmap/pkg/chipmap/expand"
	"github.com/cognicore/chipmap/pkg/chipmap/internalerr"
)

// Marker line patterns. Group 1 is the family code, group 2 the name list.
const (
	// DefaultMarkerPattern accepts any alphanumeric family code.
	DefaultMarkerPattern = `^([A-Za-z0-9]+)[^\t]*\t(.*)$`
	// NVIDIAMarkerPattern accepts NVxx and NVxxx chip codes only.
	NVIDIAMarkerPattern = `^(NV.{2,3})[^\t]*\t(.*)$`
)

const maxLineSize = 1 << 20

// CompileMarker compiles a marker line pattern. An empty pattern selects
// DefaultMarkerPattern.
func CompileMarker(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		pattern = DefaultMarkerPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("marker pattern %q: %v: %w", pattern, err, internalerr.ErrInvalidConfig)
	}
	if n := re.NumSubexp(); n != 2 {
		return nil, fmt.Errorf("marker pattern %q has %d capture groups, want 2: %w", pattern, n, internalerr.ErrInvalidConfig)
	}
	return re, nil
}

// LineError locates a structural error in the catalog.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("catalog: line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Reader builds an Index from catalog lines.
type Reader struct {
	expander *expand.Expander
	marker   *regexp.Regexp
	log      logging.Logger
}

// NewReader creates a reader. A nil marker uses DefaultMarkerPattern.
func NewReader(e *expand.Expander, marker *regexp.Regexp, log logging.Logger) *Reader {
	if e == nil {
		e = expand.New("")
	}
	if marker == nil {
		marker = regexp.MustCompile(DefaultMarkerPattern)
	}
	return &Reader{expander: e, marker: marker, log: logging.OrNop(log)}
}

// fold is the state carried from one line to the next.
type fold struct {
	idx    *Index
	open   bool
	marker string
	lead   string
}

// Read consumes src line by line.
func (r *Reader) Read(src io.Reader) (*Index, error) {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	f := &fold{idx: NewIndex()}
	n := 0
	for scanner.Scan() {
		n++
		if err := r.step(f, n, scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}
	return f.idx, nil
}

// ReadLines is Read over lines already in memory.
func (r *Reader) ReadLines(lines []string) (*Index, error) {
	f := &fold{idx: NewIndex()}
	for i, line := range lines {
		if err := r.step(f, i+1, line); err != nil {
			return nil, err
		}
	}
	return f.idx, nil
}

func (r *Reader) step(f *fold, n int, raw string) error {
	line := NormalizeLine(raw)
	if strings.TrimSpace(line) == "" {
		return nil
	}

	if m := r.marker.FindStringSubmatch(line); m != nil {
		marker, text := strings.TrimSpace(m[1]), m[2]
		if !f.open || marker != f.marker {
			f.lead = ""
		}
		f.open, f.marker = true, marker
		f.idx.Declare(marker)
		r.log.Debug("family marker", logging.String("marker", marker), logging.Int("line", n))
		return r.expand(f, n, text)
	}

	if !f.open {
		return &LineError{Line: n, Text: line, Err: internalerr.ErrUngroupedContinuation}
	}
	return r.expand(f, n, line)
}

func (r *Reader) expand(f *fold, n int, text string) error {
	if f.lead != "" && !strings.HasPrefix(strings.TrimSpace(text), r.expander.Brand()) &&
		!strings.ContainsFunc(text, unicode.IsDigit) {
		r.log.Debug("lead applied to line without model number",
			logging.Int("line", n), logging.String("lead", f.lead), logging.String("text", text))
	}
	names, lead, err := r.expander.Continue(f.lead, text)
	if err != nil {
		return &LineError{Line: n, Text: text, Err: err}
	}
	if len(names) == 0 {
		r.log.Debug("line expands to no names", logging.Int("line", n), logging.String("text", text))
	}
	f.lead = lead
	f.idx.Add(f.marker, names...)
	return nil
}

// NormalizeLine applies NFKC, drops control characters other than tab and
// trims surrounding spaces. Tabs are kept since they separate markers.
func NormalizeLine(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if r != '\t' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.Trim(s, " ")
}
