package catalog

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cognicore/chipmap/pkg/chipmap/classify"
	"github.com/cognicore/chipmap/pkg/chipmap/internalerr"
)

// Format is the encoding of a catalog source.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ParseFormat accepts "text", "txt", "html" and "htm". Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("catalog format %q: %w", s, internalerr.ErrInvalidInput)
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML
	}
	return FormatText
}

// Pipeline orchestrates the catalog flow:
// source → lines → expansion → index → classification
type Pipeline struct {
	reader     *Reader
	classifier *classify.Classifier
}

// NewPipeline creates a pipeline with the given components
func NewPipeline(reader *Reader, classifier *classify.Classifier) *Pipeline {
	return &Pipeline{reader: reader, classifier: classifier}
}

// Index reads src into a catalog index.
func (p *Pipeline) Index(src io.Reader, format Format) (*Index, error) {
	switch format {
	case FormatHTML:
		lines, err := ReadHTML(src)
		if err != nil {
			return nil, err
		}
		return p.reader.ReadLines(lines)
	case FormatText, "":
		return p.reader.Read(src)
	}
	return nil, fmt.Errorf("catalog format %q: %w", format, internalerr.ErrInvalidInput)
}

// Process reads and classifies src.
func (p *Pipeline) Process(src io.Reader, format Format) (*Index, *Classified, error) {
	idx, err := p.Index(src, format)
	if err != nil {
		return nil, nil, err
	}
	cls, err := Classify(idx, p.classifier)
	if err != nil {
		return nil, nil, err
	}
	return idx, cls, nil
}
