package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/chipmap/pkg/chipmap/internalerr"
)

// Output formats accepted by Write.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// Write encodes r to w in the named format.
func Write(w io.Writer, r Report, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML, "yml":
		return WriteYAML(w, r)
	case FormatText, "":
		return WriteText(w, r)
	}
	return fmt.Errorf("report format %q: %w", format, internalerr.ErrInvalidInput)
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// WriteYAML writes r as YAML.
func WriteYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// WriteText writes a table of families followed by the unmatched names.
// Styling is dropped when w is not a terminal.
func WriteText(w io.Writer, r Report) error {
	re := lipgloss.NewRenderer(w)
	title := re.NewStyle().Bold(true)
	head := re.NewStyle().Bold(true).Underline(true)
	dim := re.NewStyle().Faint(true)
	warn := re.NewStyle().Foreground(lipgloss.Color("208"))

	width := len("family")
	for _, f := range r.Families {
		width = max(width, len(f.Marker))
	}
	col := re.NewStyle().Width(width + 2)
	num := re.NewStyle().Width(7)

	var b strings.Builder
	b.WriteString(title.Render("chipmap report "+r.ID) + "\n")
	if r.Source != "" {
		b.WriteString(dim.Render(r.Source) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(col.Render(head.Render("family")) + num.Render(head.Render("names")) + head.Render("triples") + "\n")
	for _, f := range r.Families {
		triples := make([]string, len(f.Entries))
		for i, e := range f.Entries {
			triples[i] = e.Triple.String()
		}
		b.WriteString(col.Render(f.Marker) + num.Render(fmt.Sprint(len(f.Entries))) + strings.Join(triples, " ") + "\n")
	}

	t := r.Totals
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s of %s names classified (%s%%) across %s of %s families\n",
		humanize.Comma(int64(t.Classified)), humanize.Comma(int64(t.Names)),
		humanize.FormatFloat("#,###.#", t.Coverage*100),
		humanize.Comma(int64(t.Plotted)), humanize.Comma(int64(t.Families)))

	if len(r.Unmatched) > 0 {
		b.WriteString("\n" + warn.Render(fmt.Sprintf("unclassifiable (%s)", humanize.Comma(int64(len(r.Unmatched))))) + "\n")
		for _, m := range r.Unmatched {
			b.WriteString("  " + col.Render(m.Marker) + m.Name + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
