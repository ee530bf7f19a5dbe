package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/chipmap/internal/logging"
	"github.com/cognicore/chipmap/pkg/chipmap"
	"github.com/cognicore/chipmap/pkg/chipmap/catalog"
	"github.com/cognicore/chipmap/pkg/chipmap/config"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	RulesPath  string
	Brand      string
	Marker     string
}

// appContext carries initialized dependencies through the command tree.
type appContext struct {
	Settings   *config.Settings
	Logger     logging.Logger
	Components *config.Components
	Chipmap    *chipmap.Chipmap
}

type appContextKey struct{}

var errNoContext = errors.New("command context not initialized")

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "chipmap",
		Short: "Index GPU model catalogs by chip family",
		Long: "chipmap expands compressed GPU model lists into canonical names, groups them\n" +
			"by chip family and classifies each name into an (epoch, series, level) triple.",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (YAML)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.LogFormat, "log-format", "", "log format (console, json)")
	pf.StringVar(&opts.RulesPath, "rules", "", "classification rule table (YAML)")
	pf.StringVar(&opts.Brand, "brand", "", "brand prefix of model lists (default GeForce)")
	pf.StringVar(&opts.Marker, "marker", "", `family marker pattern, or "nvidia" for NVxx codes only`)

	cmd.AddCommand(
		newExpandCmd(),
		newClassifyCmd(),
		newIndexCmd(),
		newReportCmd(),
	)
	return cmd
}

// persistentPreRun loads settings with priority flags > env > file > defaults,
// then builds the logger and the components.
func persistentPreRun(cmd *cobra.Command, opts *rootOptions) error {
	settings, err := config.LoadSettings(opts.ConfigPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, settings, opts)
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := logging.NewLogger(settings.Log)
	if err != nil {
		return err
	}
	logger = logger.Named("chipmap")

	loader := settings.Loader(logger)
	comp, err := loader.Load()
	if err != nil {
		return err
	}

	app := &appContext{
		Settings:   settings,
		Logger:     logger,
		Components: comp,
		Chipmap:    chipmap.New(chipmap.Options{Pipeline: comp.Pipeline, Logger: logger}),
	}
	cmd.SetContext(context.WithValue(cmd.Context(), appContextKey{}, app))
	return nil
}

func applyFlags(cmd *cobra.Command, s *config.Settings, opts *rootOptions) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		s.Log.Level = opts.LogLevel
	}
	if flags.Changed("log-format") {
		s.Log.Format = opts.LogFormat
	}
	if flags.Changed("rules") {
		s.RulesPath = opts.RulesPath
	}
	if flags.Changed("brand") {
		s.Brand = opts.Brand
	}
	if flags.Changed("marker") {
		s.MarkerPattern = markerPattern(opts.Marker)
	}
}

func markerPattern(s string) string {
	switch strings.ToLower(s) {
	case "nvidia":
		return catalog.NVIDIAMarkerPattern
	case "default", "":
		return catalog.DefaultMarkerPattern
	}
	return s
}

func getAppContext(cmd *cobra.Command) (*appContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errNoContext
	}
	app, ok := ctx.Value(appContextKey{}).(*appContext)
	if !ok || app == nil {
		return nil, errNoContext
	}
	return app, nil
}
