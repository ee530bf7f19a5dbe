package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/cognicore/chipmap/internal/logging"
	"github.com/cognicore/chipmap/pkg/chipmap/catalog"
	"github.com/cognicore/chipmap/pkg/chipmap/internalerr"
	"github.com/cognicore/chipmap/pkg/chipmap/report"
)

// envPrefix maps settings to CHIPMAP_* variables, e.g. report.format to
// CHIPMAP_REPORT_FORMAT.
const envPrefix = "CHIPMAP"

// Settings are the run options of the chipmap CLI. An empty Brand defers to
// the rule table's brand, then to expand.DefaultBrand.
type Settings struct {
	Brand         string            `mapstructure:"brand"`
	MarkerPattern string            `mapstructure:"marker_pattern"`
	RulesPath     string            `mapstructure:"rules_path"`
	Report        ReportSettings    `mapstructure:"report"`
	Log           logging.LogConfig `mapstructure:"log"`
}

// ReportSettings control report output
type ReportSettings struct {
	Format string `mapstructure:"format"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("brand", "")
	v.SetDefault("marker_pattern", catalog.DefaultMarkerPattern)
	v.SetDefault("rules_path", "")
	v.SetDefault("report.format", report.FormatText)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	return v
}

// LoadSettings reads the YAML file at path, if any, applies CHIPMAP_*
// overrides and defaults, and validates the result. A relative rules_path in
// the file is resolved against the file's directory.
func LoadSettings(path string) (*Settings, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if path != "" && s.RulesPath != "" && !filepath.IsAbs(s.RulesPath) && v.InConfig("rules_path") {
		s.RulesPath = filepath.Join(filepath.Dir(path), s.RulesPath)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return s, nil
}

// Validate checks settings that would otherwise fail late
func (s *Settings) Validate() error {
	var errs []error
	if _, err := catalog.CompileMarker(s.MarkerPattern); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(s.Report.Format) {
	case report.FormatJSON, report.FormatYAML, report.FormatText:
	default:
		errs = append(errs, fmt.Errorf("report format %q: %w", s.Report.Format, internalerr.ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// Loader returns a component loader for these settings
func (s *Settings) Loader(log logging.Logger) Loader {
	return Loader{
		RulesPath:     s.RulesPath,
		Brand:         s.Brand,
		MarkerPattern: s.MarkerPattern,
		Logger:        log,
	}
}
