package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/chipmap/internal/logging"
	"github.com/cognicore/chipmap/pkg/chipmap/catalog"
	"github.com/cognicore/chipmap/pkg/chipmap/internalerr"
	"github.com/cognicore/chipmap/pkg/chipmap/report"
)

func newExpandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expand <line>...",
		Short: "Expand compressed model lists into canonical names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getAppContext(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range args {
				names, err := app.Components.Expander.Expand(line)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
			}
			return nil
		},
	}
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <name>...",
		Short: "Classify canonical model names into (epoch, series, level)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getAppContext(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range args {
				t, err := app.Components.Classifier.Classify(name)
				switch {
				case errors.Is(err, internalerr.ErrUnclassifiable):
					fmt.Fprintf(out, "%s\tunclassifiable\n", name)
				case err != nil:
					return err
				default:
					fmt.Fprintf(out, "%s\t%d %d %d\n", name, t.Epoch, t.Series, t.Level)
				}
			}
			return nil
		},
	}
}

func newIndexCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "index <file>",
		Short: "Print the classified family index of a catalog as JSON",
		Long:  "Print the classified family index of a catalog as JSON. Families without a\nclassifiable name are left out. Use - to read standard input.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getAppContext(cmd)
			if err != nil {
				return err
			}
			_, cls, err := runCatalog(cmd, app, args[0], input)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(cls.Map(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal index: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "catalog format: text|html (default from file extension)")
	return cmd
}

func newReportCmd() *cobra.Command {
	var input, format string

	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Print a classification report for a catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getAppContext(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				format = app.Settings.Report.Format
			}
			rep, _, err := runCatalog(cmd, app, args[0], input)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), rep, format)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "catalog format: text|html (default from file extension)")
	cmd.Flags().StringVarP(&format, "format", "f", report.FormatText, "report format: json|yaml|text")
	return cmd
}

// runCatalog opens path, or stdin for "-", and runs it through the facade.
func runCatalog(cmd *cobra.Command, app *appContext, path, input string) (report.Report, *catalog.Classified, error) {
	format := catalog.FormatFromPath(path)
	if input != "" {
		f, err := catalog.ParseFormat(input)
		if err != nil {
			return report.Report{}, nil, err
		}
		format = f
	}

	var src io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return report.Report{}, nil, fmt.Errorf("open catalog: %w", err)
		}
		defer f.Close()
		src = f
	}

	app.Logger.Debug("reading catalog", logging.String("path", path), logging.String("format", string(format)))
	return app.Chipmap.Run(path, src, format)
}
