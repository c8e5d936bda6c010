package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/workflow-templates/templatelint/pkg/config"
	"github.com/workflow-templates/templatelint/pkg/console"
	"github.com/workflow-templates/templatelint/pkg/constants"
	"github.com/workflow-templates/templatelint/pkg/logger"
	"github.com/workflow-templates/templatelint/pkg/report"
	"github.com/workflow-templates/templatelint/pkg/schema"
	"github.com/workflow-templates/templatelint/pkg/validator"
	"github.com/workflow-templates/templatelint/pkg/watch"
)

var validateLog = logger.New("cli:validate_command")

// NewValidateCommand creates the validation command. It is the root command
// of the CLI: the template root is its only argument.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   constants.CLIName + " [dir]",
		Short: "Validate a workflow template index and its files",
		Long: `Validate the template index of a template root and the files it references.

The index document is checked against the field contract, every template must
have its workflow file and first thumbnail, template names must be unique and
follow the naming convention, and files no template references are reported.

If no directory is given, ./` + constants.DefaultTemplatesDir + ` is validated. Settings are read from
` + constants.DefaultConfigFile + ` in the template root; flags override them.

Exit status is 0 on PASS or PASS WITH WARNINGS, 1 on FAIL and 2 when the input
cannot be read.

Examples:
  ` + constants.CLIName + `                          # Validate ./templates
  ` + constants.CLIName + ` path/to/templates        # Validate another root
  ` + constants.CLIName + ` --strict                 # Treat warnings as errors
  ` + constants.CLIName + ` --json                   # Output the report as JSON
  ` + constants.CLIName + ` --format github          # Output GitHub Actions annotations
  ` + constants.CLIName + ` --engine jsonschema      # Validate with the JSON Schema document
  ` + constants.CLIName + ` --watch                  # Re-validate on every change`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := constants.DefaultTemplatesDir
			if len(args) == 1 {
				dir = args[0]
			}

			settings, err := resolveSettings(cmd, dir)
			if err != nil {
				return fatal(err)
			}
			watchMode, _ := cmd.Flags().GetBool("watch")
			noColor, _ := cmd.Flags().GetBool("no-color")

			validateLog.Printf("Running validate command: dir=%s format=%s engine=%s strict=%v watch=%v",
				dir, settings.Format, settings.Engine, settings.Strict, watchMode)

			run := &validationRun{
				dir:      dir,
				fs:       afero.NewOsFs(),
				settings: settings,
				out:      cmd.OutOrStdout(),
				render: report.RenderOptions{
					Quiet:   settings.Quiet,
					Verbose: settings.Verbose,
					Color:   console.ColorEnabled(noColor),
				},
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if watchMode {
				return run.watch(ctx)
			}
			return run.once(ctx)
		},
	}

	cmd.Flags().Bool("strict", false, "Promote warnings to errors")
	cmd.Flags().BoolP("quiet", "q", false, "Print errors only, and the summary only on failure")
	cmd.Flags().BoolP("verbose", "v", false, "Also print the thumbnail count of every template")
	cmd.Flags().StringP("format", "f", string(report.FormatText), "Output format: text, json or github")
	cmd.Flags().BoolP("json", "j", false, "Output the report in JSON format (same as --format json)")
	cmd.Flags().String("engine", string(schema.EngineContract), "Schema engine: contract or jsonschema")
	cmd.Flags().String("index", constants.DefaultIndexFile, "Index document, relative to the template root")
	cmd.Flags().String("schema", constants.DefaultSchemaFile, "Schema document, relative to the template root")
	cmd.Flags().String("config", "", "Config file (default: <dir>/"+constants.DefaultConfigFile+")")
	cmd.Flags().Bool("no-orphans", false, "Do not report files that no template references")
	cmd.Flags().Bool("allow-unknown-fields", false, "Tolerate index fields the contract does not declare")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	cmd.Flags().BoolP("watch", "w", false, "Re-validate whenever a file in the template root changes")
	cmd.MarkFlagsMutuallyExclusive("json", "format")

	return cmd
}

// resolveSettings layers defaults, the config file and explicitly set flags.
func resolveSettings(cmd *cobra.Command, dir string) (config.Settings, error) {
	settings := config.Defaults()

	configPath, _ := cmd.Flags().GetString("config")
	explicit := cmd.Flags().Changed("config")
	if !explicit {
		configPath = filepath.Join(dir, constants.DefaultConfigFile)
	}
	cfg, err := config.Load(afero.NewOsFs(), configPath, explicit)
	if err != nil {
		return settings, err
	}
	cfg.Apply(&settings)
	settings.ConfigFile = configNameInRoot(dir, configPath)

	flags := cmd.Flags()
	if flags.Changed("strict") {
		settings.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("quiet") {
		settings.Quiet, _ = flags.GetBool("quiet")
	}
	settings.Verbose, _ = flags.GetBool("verbose")
	if flags.Changed("allow-unknown-fields") {
		settings.AllowUnknownFields, _ = flags.GetBool("allow-unknown-fields")
	}
	if flags.Changed("no-orphans") {
		noOrphans, _ := flags.GetBool("no-orphans")
		settings.CheckOrphans = !noOrphans
	}
	if flags.Changed("index") {
		settings.IndexFile, _ = flags.GetString("index")
	}
	if flags.Changed("schema") {
		settings.SchemaFile, _ = flags.GetString("schema")
	}
	if flags.Changed("engine") {
		raw, _ := flags.GetString("engine")
		if settings.Engine, err = schema.ParseEngine(raw); err != nil {
			return settings, err
		}
	}
	if flags.Changed("format") {
		raw, _ := flags.GetString("format")
		if settings.Format, err = report.ParseFormat(raw); err != nil {
			return settings, err
		}
	}
	if jsonOutput, _ := flags.GetBool("json"); jsonOutput {
		settings.Format = report.FormatJSON
	}
	return settings, nil
}

// configNameInRoot returns the config file name relative to dir, or "" when
// it lives elsewhere.
func configNameInRoot(dir, configPath string) string {
	rel, err := filepath.Rel(dir, configPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.ToSlash(rel)
}

type validationRun struct {
	dir      string
	fs       afero.Fs
	settings config.Settings
	out      io.Writer
	render   report.RenderOptions
}

// once validates and renders a single report.
func (r *validationRun) once(ctx context.Context) error {
	v := validator.New(r.fs, r.dir, r.settings.ValidatorOptions())
	rep, err := v.Validate(ctx)
	if err != nil {
		return fatal(err)
	}
	if err := writeReport(r.out, rep, r.settings.Format, r.render); err != nil {
		return fatal(err)
	}
	if code := rep.ExitCode(); code != constants.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}

// watch validates once and then again after every change until ctx ends.
func (r *validationRun) watch(ctx context.Context) error {
	r.runAndPrint(ctx)

	w, err := watch.New(r.dir, watch.DebounceFromEnv(), r.runAndPrint)
	if err != nil {
		return fatal(err)
	}
	fmt.Fprintln(r.out, console.FormatInfoMessage(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", r.dir), r.render.Color))
	if err := w.Run(ctx); err != nil {
		return fatal(err)
	}
	return nil
}

// runAndPrint runs once and prints fatal errors instead of returning them, so
// watching continues after a broken edit.
func (r *validationRun) runAndPrint(ctx context.Context) {
	if err := r.once(ctx); err != nil && !IsSilent(err) {
		fmt.Fprintln(r.out, FormatValidationError(err))
	}
}
