// Package expand turns one raw catalog line into the canonical product names
// it denotes.
//
// A line is a comma separated list of names in which repeated brand and tier
// words are elided and variants are grouped in parentheses:
//
//	GeForce FX 5100 Go, 5200 (Ultra, Go), 5300, GeForce PCX 5300
//
// expands to GeForce FX 5100 Go, GeForce FX 5200 Ultra, GeForce FX 5200 Go,
// GeForce FX 5300 and GeForce PCX 5300.
package expand

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cognicore/chipmap/pkg/chipmap/internalerr"
)

// DefaultBrand is the product-family prefix token used when none is configured.
const DefaultBrand = "GeForce"

// Expander expands catalog lines for one brand. It holds no mutable state and
// is safe for concurrent use.
type Expander struct {
	brand string
}

// New creates an expander for brand. An empty brand selects DefaultBrand.
func New(brand string) *Expander {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		brand = DefaultBrand
	}
	return &Expander{brand: brand}
}

// Brand returns the prefix token lines must start with.
func (e *Expander) Brand() string {
	return e.brand
}

// SyntaxError reports malformed grouping in a line.
type SyntaxError struct {
	Text   string
	Offset int
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expand: %v at offset %d in %q", e.Err, e.Offset, e.Text)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Expand returns the canonical names denoted by line, in order. A line that
// does not start with the brand yields no names and no error.
func (e *Expander) Expand(line string) ([]string, error) {
	names, _, err := e.Continue("", line)
	return names, err
}

// Continue expands line with lead as the brand-and-tier head restored onto
// elided names. It returns the names and the lead in effect after the line,
// so callers can carry it to the next line of the same family.
//
// A segment that carries its own tier, such as "GTX 760" or "Quadro 600"
// after "GeForce GT 630", gets only the brand and sets the new lead. Any other
// segment gets the whole lead, even when it does not look like a model name.
//
// With an empty lead, Continue behaves like Expand.
func (e *Expander) Continue(lead, line string) ([]string, string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, lead, nil
	}
	if lead == "" && !strings.HasPrefix(line, e.brand) {
		return nil, lead, nil
	}
	if err := checkGroups(line); err != nil {
		return nil, lead, err
	}

	var names []string
	for _, seg := range splitTopLevel(line) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		switch {
		case strings.HasPrefix(seg, e.brand):
			lead = leadOf(seg)
		case hasTier(seg):
			seg = e.brand + " " + seg
			lead = leadOf(seg)
		default:
			seg = lead + seg
		}
		for _, name := range expandGroups(seg) {
			if name != "" {
				names = append(names, name)
			}
		}
	}
	return names, lead, nil
}

// checkGroups accepts lines whose parentheses are balanced and at most one
// level deep.
func checkGroups(line string) error {
	depth, open := 0, 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '(':
			if depth == 1 {
				return &SyntaxError{Text: line, Offset: i, Err: internalerr.ErrNestedGroup}
			}
			depth, open = 1, i
		case ')':
			if depth == 0 {
				return &SyntaxError{Text: line, Offset: i, Err: internalerr.ErrUnbalancedGroup}
			}
			depth = 0
		}
	}
	if depth != 0 {
		return &SyntaxError{Text: line, Offset: open, Err: internalerr.ErrUnbalancedGroup}
	}
	return nil
}

// splitTopLevel splits on commas outside parentheses.
func splitTopLevel(line string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, line[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, line[start:])
}

// leadOf returns the words of seg that precede the model number, with a
// trailing space: "GeForce GT 630" leads with "GeForce GT ". The first word
// always belongs to the lead. Without a model number every word but the last
// does.
func leadOf(seg string) string {
	words := strings.Fields(seg)
	n := 1
	for n < len(words) && !isModelWord(words[n]) {
		n++
	}
	if n == len(words) {
		n = max(1, len(words)-1)
	}
	return strings.Join(words[:n], " ") + " "
}

// hasTier reports whether seg opens with a tier word and goes on to a model
// number, so it needs the brand but not the lead.
func hasTier(seg string) bool {
	words := strings.Fields(seg)
	if len(words) < 2 || isModelWord(words[0]) {
		return false
	}
	for _, w := range words[1:] {
		if isModelWord(w) {
			return true
		}
	}
	return false
}

func isModelWord(w string) bool {
	if strings.ContainsRune(w, '(') {
		return true
	}
	return strings.IndexFunc(w, unicode.IsDigit) >= 0
}

// expandGroups expands the parenthetical groups of one segment, left to
// right. A single alternative is optional: it expands to the name without it
// and to the name with it appended directly to the preceding text.
func expandGroups(seg string) []string {
	open := strings.IndexByte(seg, '(')
	if open < 0 {
		return []string{strings.TrimSpace(seg)}
	}
	end := open + strings.IndexByte(seg[open:], ')')
	prefix, inner, suffix := seg[:open], seg[open+1:end], seg[end+1:]

	alts := strings.Split(inner, ",")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	var forms []string
	switch {
	case len(alts) == 1 && alts[0] == "":
		forms = []string{strings.TrimRight(prefix, " ") + suffix}
	case len(alts) == 1:
		head := strings.TrimRight(prefix, " ")
		forms = []string{head + suffix, head + alts[0] + suffix}
	default:
		forms = make([]string, 0, len(alts))
		for _, alt := range alts {
			forms = append(forms, prefix+alt+suffix)
		}
	}

	var out []string
	for _, f := range forms {
		out = append(out, expandGroups(f)...)
	}
	return out
}
