package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cognicore/chipmap/internal/logging"
	"github.com/cognicore/chipmap/pkg/chipmap/catalog"
	"github.com/cognicore/chipmap/pkg/chipmap/classify"
	"github.com/cognicore/chipmap/pkg/chipmap/expand"
)

// Loader loads the rule table and constructs components
type Loader struct {
	RulesPath     string
	Brand         string
	MarkerPattern string
	Logger        logging.Logger
}

// Components holds all loaded configuration components
type Components struct {
	Expander   *expand.Expander
	Classifier *classify.Classifier
	Marker     *regexp.Regexp
	Reader     *catalog.Reader
	Pipeline   *catalog.Pipeline
}

// Load reads the rule table, if any, and returns initialized components.
// An explicit Brand wins over the rule table's brand.
func (l *Loader) Load() (*Components, error) {
	log := logging.OrNop(l.Logger).Named("config")

	rs := DefaultRuleSet()
	if l.RulesPath != "" {
		loaded, err := LoadRules(l.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		rs = loaded
		log.Debug("rule table loaded", logging.String("path", l.RulesPath), logging.Int("rules", len(rs.Rules)))
	}

	rules, err := rs.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}

	brand := strings.TrimSpace(l.Brand)
	if brand == "" {
		brand = rs.Brand
	}

	marker, err := catalog.CompileMarker(l.MarkerPattern)
	if err != nil {
		return nil, err
	}

	comp := &Components{
		Expander: expand.New(brand),
		Marker:   marker,
	}
	comp.Classifier, err = classify.New(rules, l.Logger)
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}
	comp.Reader = catalog.NewReader(comp.Expander, marker, l.Logger)
	comp.Pipeline = catalog.NewPipeline(comp.Reader, comp.Classifier)
	return comp, nil
}
