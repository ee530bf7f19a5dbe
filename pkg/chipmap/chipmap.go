// Package chipmap indexes GPU model catalogs: it expands compressed name
// lists into canonical names, groups them by chip family and classifies each
// name into an (epoch, series, level) triple.
package chipmap

import (
	"fmt"
	"io"

	"github.com/cognicore/chipmap/internal/logging"
	"github.com/cognicore/chipmap/pkg/chipmap/catalog"
	"github.com/cognicore/chipmap/pkg/chipmap/classify"
	"github.com/cognicore/chipmap/pkg/chipmap/report"
)

// Chipmap is the catalog indexing facade
type Chipmap struct {
	pipeline *catalog.Pipeline
	reports  *report.Builder
	log      logging.Logger
}

// Options configures a Chipmap instance. Nil fields get defaults: the
// GeForce expander, the default rule table and a fresh report builder.
type Options struct {
	Pipeline *catalog.Pipeline
	Reports  *report.Builder
	Logger   logging.Logger
}

// New creates a Chipmap instance with the given dependencies
func New(opts Options) *Chipmap {
	log := logging.OrNop(opts.Logger)
	c := &Chipmap{
		pipeline: opts.Pipeline,
		reports:  opts.Reports,
		log:      log,
	}
	if c.pipeline == nil {
		c.pipeline = catalog.NewPipeline(catalog.NewReader(nil, nil, log), classify.Default(log))
	}
	if c.reports == nil {
		c.reports = report.New()
	}
	return c
}

// Index reads a catalog into its family index without classifying it
func (c *Chipmap) Index(r io.Reader, format catalog.Format) (*catalog.Index, error) {
	return c.pipeline.Index(r, format)
}

// Run indexes and classifies the catalog read from r and builds its report.
// source names the catalog in the report.
func (c *Chipmap) Run(source string, r io.Reader, format catalog.Format) (report.Report, *catalog.Classified, error) {
	idx, cls, err := c.pipeline.Process(r, format)
	if err != nil {
		return report.Report{}, nil, fmt.Errorf("chipmap: %s: %w", source, err)
	}

	rep := c.reports.Build(source, idx, cls)
	c.log.Info("catalog indexed",
		logging.String("source", source),
		logging.String("report", rep.ID),
		logging.Int("families", rep.Totals.Families),
		logging.Int("names", rep.Totals.Names),
		logging.Int("classified", rep.Totals.Classified),
		logging.Int("unmatched", rep.Totals.Unmatched),
	)
	return rep, cls, nil
}
