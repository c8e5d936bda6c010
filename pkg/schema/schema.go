package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/workflow-templates/templatelint/pkg/fileutil"
	"github.com/workflow-templates/templatelint/pkg/index"
	"github.com/workflow-templates/templatelint/pkg/logger"
	"github.com/workflow-templates/templatelint/pkg/report"
)

var log = logger.New("schema:schema")

// Engine selects how records are checked.
type Engine string

const (
	// EngineContract checks records against DefaultContract.
	EngineContract Engine = "contract"
	// EngineJSONSchema checks the document against a JSON Schema.
	EngineJSONSchema Engine = "jsonschema"
)

// ParseEngine validates a user-supplied engine name.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(s))); e {
	case EngineContract, EngineJSONSchema:
		return e, nil
	case "":
		return EngineContract, nil
	default:
		return "", fmt.Errorf("unknown schema engine %q (expected contract or jsonschema)", s)
	}
}

// Checker reports the schema violations of an index.
type Checker interface {
	Check(idx *index.Index) []report.Issue
}

// Options configure the schema stage.
type Options struct {
	Engine Engine
	// SchemaFile names the schema document relative to the template root.
	// It may be absent on disk.
	SchemaFile   string
	AllowUnknown bool
	// Contract overrides DefaultContract when non-nil.
	Contract *Contract
}

// Run loads the schema document when present, picks the checker for
// opts.Engine and checks idx. Problems with the schema document are
// reported as InvalidSyntax issues on that document. The contract engine is
// used whenever the document is unusable.
func Run(tfs *fileutil.TemplateFS, idx *index.Index, opts Options) ([]report.Issue, error) {
	compiled, issues, err := loadDocument(tfs, opts.SchemaFile)
	if err != nil {
		return nil, err
	}

	checker, err := selectChecker(opts, compiled, len(issues) > 0)
	if err != nil {
		return nil, err
	}
	return append(issues, checker.Check(idx)...), nil
}

func selectChecker(opts Options, compiled *jsonschema.Schema, documentBroken bool) (Checker, error) {
	if opts.Engine == EngineJSONSchema && !documentBroken {
		if compiled == nil {
			log.Print("No schema document found, using the embedded default schema")
			sch, err := CompileDefault()
			if err != nil {
				return nil, err
			}
			compiled = sch
		}
		return NewSchemaValidator(compiled, opts.AllowUnknown), nil
	}

	contract := DefaultContract
	if opts.Contract != nil {
		contract = *opts.Contract
	}
	log.Printf("Using field contract: allowUnknown=%v", opts.AllowUnknown)
	return NewContractValidator(contract.WithAllowUnknown(opts.AllowUnknown))
}

// loadDocument returns the compiled schema document, nil when there is none,
// or an InvalidSyntax issue when it cannot be parsed or compiled.
func loadDocument(tfs *fileutil.TemplateFS, name string) (*jsonschema.Schema, []report.Issue, error) {
	if name == "" {
		return nil, nil, nil
	}
	data, err := tfs.ReadFile(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("Schema document %s not present", name)
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read schema document: %w", err)
	}

	doc, issue := index.Parse(name, data)
	if issue != nil {
		return nil, []report.Issue{*issue}, nil
	}
	sch, err := Compile(name, doc)
	if err != nil {
		log.Printf("Schema document %s does not compile: %v", name, err)
		return nil, []report.Issue{report.NewIssue(report.KindInvalidSyntax, report.AtFile(name), "schema document is not a valid JSON Schema: %s", firstLine(err.Error()))}, nil
	}
	return sch, nil, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
