package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/workflow-templates/templatelint/pkg/constants"
	"github.com/workflow-templates/templatelint/pkg/index"
	"github.com/workflow-templates/templatelint/pkg/logger"
	"github.com/workflow-templates/templatelint/pkg/report"
)

var jsonschemaLog = logger.New("schema:jsonschema")

// DefaultSchema is the JSON Schema used when the template root has no
// schema document of its own.
//
//go:embed index.schema.json
var DefaultSchema []byte

const schemaBaseURL = "https://templatelint.local/"

var printer = message.NewPrinter(language.English)

// Compile compiles a decoded JSON Schema document. name only identifies the
// resource.
func Compile(name string, doc any) (*jsonschema.Schema, error) {
	url := schemaBaseURL + name
	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource %s: %w", name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return sch, nil
}

// CompileDefault compiles DefaultSchema.
func CompileDefault() (*jsonschema.Schema, error) {
	doc, issue := index.Parse(constants.DefaultSchemaFile, DefaultSchema)
	if issue != nil {
		return nil, fmt.Errorf("embedded schema: %s", issue.Message)
	}
	return Compile(constants.DefaultSchemaFile, doc)
}

// SchemaValidator checks an index against a compiled JSON Schema.
type SchemaValidator struct {
	schema       *jsonschema.Schema
	allowUnknown bool
}

// NewSchemaValidator wraps a compiled schema. With allowUnknown set,
// violations of additionalProperties are dropped.
func NewSchemaValidator(sch *jsonschema.Schema, allowUnknown bool) *SchemaValidator {
	return &SchemaValidator{schema: sch, allowUnknown: allowUnknown}
}

// Check validates the raw document and returns one SchemaViolation per leaf
// validation error.
func (v *SchemaValidator) Check(idx *index.Index) []report.Issue {
	err := v.schema.Validate(idx.Raw)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []report.Issue{report.NewIssue(report.KindSchemaViolation, report.AtFile(idx.Path), "%s", err.Error())}
	}

	var issues []report.Issue
	for _, leaf := range leaves(verr) {
		issues = append(issues, v.leafIssues(idx, leaf)...)
	}
	jsonschemaLog.Printf("JSON Schema check found %d violations", len(issues))
	return issues
}

func (v *SchemaValidator) leafIssues(idx *index.Index, leaf *jsonschema.ValidationError) []report.Issue {
	loc := locate(idx, leaf.InstanceLocation)

	switch k := leaf.ErrorKind.(type) {
	case *kind.Required:
		issues := make([]report.Issue, 0, len(k.Missing))
		for _, field := range k.Missing {
			issues = append(issues, report.NewIssue(report.KindSchemaViolation, withSubField(loc, field), "missing required field %q", field))
		}
		return issues
	case *kind.AdditionalProperties:
		if v.allowUnknown {
			return nil
		}
		props := slices.Clone(k.Properties)
		slices.Sort(props)
		issues := make([]report.Issue, 0, len(props))
		for _, field := range props {
			issues = append(issues, report.NewIssue(report.KindSchemaViolation, withSubField(loc, field), "unexpected field %q", field))
		}
		return issues
	case *kind.FalseSchema:
		if v.allowUnknown {
			return nil
		}
	}
	return []report.Issue{report.NewIssue(report.KindSchemaViolation, loc, "%s", leaf.ErrorKind.LocalizedString(printer))}
}

// leaves flattens the error tree to the errors without causes.
func leaves(verr *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(verr.Causes) == 0 {
		return []*jsonschema.ValidationError{verr}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range verr.Causes {
		out = append(out, leaves(cause)...)
	}
	return out
}

// locate maps an instance location such as ["0","templates","1","mediaType"]
// to a report location.
func locate(idx *index.Index, instance []string) report.Location {
	if len(instance) == 0 {
		return report.AtFile(idx.Path).WithField("$")
	}
	ci, err := strconv.Atoi(instance[0])
	if err != nil || ci < 0 || ci >= len(idx.Categories) {
		return report.AtFile(idx.Path).WithField("/" + strings.Join(instance, "/"))
	}
	category := idx.Categories[ci]
	rest := instance[1:]

	if len(rest) >= 2 && rest[0] == "templates" {
		if ti, err := strconv.Atoi(rest[1]); err == nil && ti >= 0 && ti < len(category.Templates) {
			loc := category.Templates[ti].Location()
			if field := fieldPath(rest[2:]); field != "" {
				loc = loc.WithField(field)
			}
			return loc
		}
	}

	loc := category.Location()
	if field := fieldPath(rest); field != "" {
		loc = loc.WithField(field)
	}
	return loc
}

// fieldPath renders ["tags","0"] as tags[0].
func fieldPath(parts []string) string {
	var sb strings.Builder
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err == nil && sb.Len() > 0 {
			sb.WriteString("[" + p + "]")
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(".")
		}
		sb.WriteString(p)
	}
	return sb.String()
}

func withSubField(loc report.Location, field string) report.Location {
	if loc.Field == "" || loc.Field == "$" {
		return loc.WithField(field)
	}
	return loc.WithField(loc.Field + "." + field)
}
