package catalog

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ReadHTML converts the table rows of an HTML document into catalog lines.
//
// A row with two or more data cells becomes a marker line: the first cell is
// the family marker and the last cell the name list. Parts of the name cell
// separated by <br> or block elements become continuation lines. A row with
// one cell becomes continuation lines. Header-only rows are skipped, as are
// footnote markers in <sup>.
func ReadHTML(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse html: %w", err)
	}

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			lines = append(lines, rowLines(n)...)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return lines, nil
}

func rowLines(tr *html.Node) []string {
	var cells [][]string
	data := false
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Td:
			data = true
		case atom.Th:
		default:
			continue
		}
		cells = append(cells, cellParts(c))
	}
	if !data || len(cells) == 0 {
		return nil
	}

	if len(cells) == 1 {
		return cells[0]
	}

	marker := strings.Join(cells[0], " ")
	names := cells[len(cells)-1]
	if marker == "" {
		return names
	}
	if len(names) == 0 {
		return []string{marker + "\t"}
	}
	lines := []string{marker + "\t" + names[0]}
	return append(lines, names[1:]...)
}

// cellParts returns the text of a cell split at line breaks, with runs of
// whitespace collapsed and empty parts dropped.
func cellParts(cell *html.Node) []string {
	var parts []string
	var cur strings.Builder
	flush := func() {
		if s := strings.Join(strings.Fields(cur.String()), " "); s != "" {
			parts = append(parts, s)
		}
		cur.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			cur.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Sup, atom.Script, atom.Style:
				return
			case atom.Br:
				flush()
				return
			case atom.P, atom.Li, atom.Div:
				flush()
				defer flush()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(cell)
	flush()
	return parts
}
