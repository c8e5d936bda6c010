// Package validator runs the full validation pipeline over a template root
// and returns a structured report. It never writes to stdout and never
// decides the process exit status.
package validator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"

	"github.com/workflow-templates/templatelint/pkg/checks"
	"github.com/workflow-templates/templatelint/pkg/constants"
	"github.com/workflow-templates/templatelint/pkg/fileutil"
	"github.com/workflow-templates/templatelint/pkg/index"
	"github.com/workflow-templates/templatelint/pkg/logger"
	"github.com/workflow-templates/templatelint/pkg/report"
	"github.com/workflow-templates/templatelint/pkg/schema"
)

var log = logger.New("validator:validator")

// ErrRootNotFound is returned when the template root is not a directory.
var ErrRootNotFound = errors.New("template root not found")

// Options configure a validation run.
type Options struct {
	IndexFile  string
	SchemaFile string
	// ConfigFile is excluded from the orphan scan.
	ConfigFile         string
	Engine             schema.Engine
	Strict             bool
	AllowUnknownFields bool
	CheckOrphans       bool
	// Ignore holds doublestar globs excluded from the orphan scan.
	Ignore []string
	// Contract overrides schema.DefaultContract.
	Contract *schema.Contract
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		IndexFile:    constants.DefaultIndexFile,
		SchemaFile:   constants.DefaultSchemaFile,
		ConfigFile:   constants.DefaultConfigFile,
		Engine:       schema.EngineContract,
		CheckOrphans: true,
	}
}

// Validator validates one template root.
type Validator struct {
	root string
	tfs  *fileutil.TemplateFS
	opts Options
}

// New creates a validator for root on fs. fs is only ever read.
func New(fs afero.Fs, root string, opts Options) *Validator {
	if opts.IndexFile == "" {
		opts.IndexFile = constants.DefaultIndexFile
	}
	if opts.Engine == "" {
		opts.Engine = schema.EngineContract
	}
	return &Validator{
		root: root,
		tfs:  fileutil.NewTemplateFS(fs, root),
		opts: opts,
	}
}

// Validate runs every stage and returns the report. Findings are issues in
// the report; the returned error is reserved for fatal input problems such as
// a missing root or index document, and for cancellation.
func (v *Validator) Validate(ctx context.Context) (*report.Report, error) {
	start := time.Now()
	log.Printf("Validating %s: index=%s engine=%s strict=%v", v.root, v.opts.IndexFile, v.opts.Engine, v.opts.Strict)

	if !v.tfs.RootExists() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, v.root)
	}

	agg := report.NewAggregator(v.opts.Strict)
	base := &report.Report{Root: v.root, IndexFile: v.opts.IndexFile}

	idx, syntaxIssues, err := index.Load(v.tfs, v.opts.IndexFile)
	if err != nil {
		return nil, err
	}
	if len(syntaxIssues) > 0 {
		agg.Add(syntaxIssues...)
		return agg.Finalize(base), nil
	}
	base.Categories = len(idx.Categories)
	base.Templates = idx.TemplateCount()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schemaIssues, err := schema.Run(v.tfs, idx, schema.Options{
		Engine:       v.opts.Engine,
		SchemaFile:   v.opts.SchemaFile,
		AllowUnknown: v.opts.AllowUnknownFields,
		Contract:     v.opts.Contract,
	})
	if err != nil {
		return nil, err
	}
	agg.Add(schemaIssues...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		wg           conc.WaitGroup
		fileResult   checks.FileResult
		dupIssues    []report.Issue
		orphanIssues []report.Issue
		orphanErr    error
	)
	templates := idx.Templates()
	wg.Go(func() {
		fileResult = checks.CheckFiles(v.tfs, templates)
	})
	wg.Go(func() {
		dupIssues = checks.FindDuplicates(idx)
	})
	if v.opts.CheckOrphans {
		wg.Go(func() {
			orphanIssues, orphanErr = checks.FindOrphans(v.tfs, idx, checks.OrphanOptions{
				Exclude: v.excludedFiles(),
				Ignore:  v.opts.Ignore,
			})
		})
	}
	wg.Wait()
	if orphanErr != nil {
		return nil, orphanErr
	}

	agg.Add(fileResult.Issues...)
	agg.Add(dupIssues...)
	agg.Add(orphanIssues...)
	base.Summaries = fileResult.Summaries

	r := agg.Finalize(base)
	log.Printf("Validation finished in %s: verdict=%s", time.Since(start), r.Verdict())
	return r, nil
}

func (v *Validator) excludedFiles() []string {
	var out []string
	for _, f := range []string{v.opts.IndexFile, v.opts.SchemaFile, v.opts.ConfigFile} {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
