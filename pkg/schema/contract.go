// Package schema checks index records against the field contract of the
// template index, either the built-in Contract or a JSON Schema document.
package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/workflow-templates/templatelint/pkg/constants"
	"github.com/workflow-templates/templatelint/pkg/index"
	"github.com/workflow-templates/templatelint/pkg/logger"
	"github.com/workflow-templates/templatelint/pkg/report"
	"github.com/workflow-templates/templatelint/pkg/stringutil"
)

var contractLog = logger.New("schema:contract")

// FieldType is the JSON type a field must have.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeBoolean FieldType = "boolean"
	TypeNumber  FieldType = "number"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Format is a named string format.
type Format string

const (
	FormatURL  Format = "url"
	FormatDate Format = "date"
)

// Field declares the constraints on one record field.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	// MinLength applies to strings and counts runes.
	MinLength int
	// Enum lists the accepted string values. Comparison is exact.
	Enum    []string
	Pattern string
	Format  Format
	// Items is the element type of an array field.
	Items       FieldType
	Description string
}

// Contract is the set of fields known on categories and templates.
type Contract struct {
	Category []Field
	Template []Field
	// AllowUnknown tolerates fields the contract does not declare.
	AllowUnknown bool
}

// DefaultContract describes the template index format.
var DefaultContract = Contract{
	Category: []Field{
		{Name: "moduleName", Type: TypeString, Required: true, MinLength: 1, Pattern: `^[A-Za-z0-9_-]+$`, Description: "module identifier"},
		{Name: "title", Type: TypeString, Required: true, MinLength: 1},
		{Name: "type", Type: TypeString, Enum: constants.MediaTypes},
		{Name: "category", Type: TypeString},
		{Name: "icon", Type: TypeString},
		{Name: "isEssential", Type: TypeBoolean},
		{Name: "templates", Type: TypeArray, Required: true},
	},
	Template: []Field{
		{Name: "name", Type: TypeString, Required: true, MinLength: 1, Description: "file stem of the workflow and thumbnails"},
		{Name: "title", Type: TypeString},
		{Name: "description", Type: TypeString, Required: true, MinLength: 1},
		{Name: "mediaType", Type: TypeString, Required: true, Enum: constants.MediaTypes},
		{Name: "mediaSubtype", Type: TypeString, Required: true, MinLength: 1, Description: "thumbnail extension"},
		{Name: "thumbnailVariant", Type: TypeString, Enum: constants.ThumbnailVariants},
		{Name: "tutorialUrl", Type: TypeString, Format: FormatURL},
		{Name: "tags", Type: TypeArray, Items: TypeString},
		{Name: "models", Type: TypeArray, Items: TypeString},
		{Name: "date", Type: TypeString, Format: FormatDate},
	},
}

// WithAllowUnknown returns a copy of c with AllowUnknown set.
func (c Contract) WithAllowUnknown(allow bool) Contract {
	c.AllowUnknown = allow
	return c
}

// ContractValidator checks an index against a Contract.
type ContractValidator struct {
	contract Contract
	patterns map[string]*regexp.Regexp
}

// NewContractValidator compiles the patterns of c.
func NewContractValidator(c Contract) (*ContractValidator, error) {
	v := &ContractValidator{contract: c, patterns: make(map[string]*regexp.Regexp)}
	for _, f := range slices.Concat(c.Category, c.Template) {
		if f.Pattern == "" {
			continue
		}
		if _, ok := v.patterns[f.Pattern]; ok {
			continue
		}
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern for field %q: %w", f.Name, err)
		}
		v.patterns[f.Pattern] = re
	}
	return v, nil
}

// Check validates every category and every template and returns one
// SchemaViolation per violated constraint.
func (v *ContractValidator) Check(idx *index.Index) []report.Issue {
	if _, ok := idx.Raw.([]any); !ok {
		return []report.Issue{report.NewIssue(report.KindSchemaViolation, report.AtFile(idx.Path).WithField("$"),
			"index must be an array of categories, got %s", typeName(idx.Raw))}
	}

	var issues []report.Issue
	for _, c := range idx.Categories {
		loc := c.Location()
		if c.Raw == nil {
			issues = append(issues, report.NewIssue(report.KindSchemaViolation, loc, "category must be an object"))
			continue
		}
		issues = append(issues, v.checkRecord(c.Raw, v.contract.Category, loc)...)

		for _, t := range c.Templates {
			if t.Raw == nil {
				issues = append(issues, report.NewIssue(report.KindSchemaViolation, t.Location(), "template must be an object"))
				continue
			}
			issues = append(issues, v.checkRecord(t.Raw, v.contract.Template, t.Location())...)
		}
	}
	contractLog.Printf("Contract check found %d violations", len(issues))
	return issues
}

func (v *ContractValidator) checkRecord(raw map[string]any, fields []Field, loc report.Location) []report.Issue {
	var issues []report.Issue
	violation := func(field, format string, args ...any) {
		issues = append(issues, report.NewIssue(report.KindSchemaViolation, loc.WithField(field), format, args...))
	}

	for _, f := range fields {
		value, present := raw[f.Name]
		if !present {
			if f.Required {
				violation(f.Name, "missing required field %q", f.Name)
			}
			continue
		}
		if got := typeName(value); got != string(f.Type) {
			violation(f.Name, "field %q must be %s, got %s", f.Name, withArticle(string(f.Type)), got)
			continue
		}
		switch f.Type {
		case TypeString:
			v.checkString(f, value.(string), violation)
		case TypeArray:
			checkItems(f, value.([]any), violation)
		}
	}

	if !v.contract.AllowUnknown {
		for _, key := range unknownKeys(raw, fields) {
			violation(key, "unexpected field %q", key)
		}
	}
	return issues
}

func (v *ContractValidator) checkString(f Field, s string, violation func(field, format string, args ...any)) {
	if f.MinLength > 0 && len([]rune(s)) < f.MinLength {
		if f.MinLength == 1 {
			violation(f.Name, "field %q must not be empty", f.Name)
		} else {
			violation(f.Name, "field %q must be at least %d characters", f.Name, f.MinLength)
		}
		return
	}
	if len(f.Enum) > 0 && !slices.Contains(f.Enum, s) {
		violation(f.Name, "field %q has value %q, allowed values: %s", f.Name, s, strings.Join(f.Enum, ", "))
		return
	}
	if f.Pattern != "" && !v.patterns[f.Pattern].MatchString(s) {
		violation(f.Name, "field %q value %q does not match pattern %s", f.Name, s, f.Pattern)
		return
	}
	switch f.Format {
	case FormatURL:
		if !stringutil.IsURLShaped(s) {
			violation(f.Name, "field %q value %q is not an http(s) URL", f.Name, s)
		}
	case FormatDate:
		if _, err := time.Parse(time.DateOnly, s); err != nil {
			violation(f.Name, "field %q value %q is not a date (YYYY-MM-DD)", f.Name, s)
		}
	}
}

func checkItems(f Field, items []any, violation func(field, format string, args ...any)) {
	if f.Items == "" {
		return
	}
	for i, item := range items {
		if got := typeName(item); got != string(f.Items) {
			violation(fmt.Sprintf("%s[%d]", f.Name, i), "field %q items must be %s, got %s", f.Name, withArticle(string(f.Items)), got)
		}
	}
}

func unknownKeys(raw map[string]any, fields []Field) []string {
	var unknown []string
	for key := range raw {
		if !slices.ContainsFunc(fields, func(f Field) bool { return f.Name == key }) {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)
	return unknown
}

// typeName returns the JSON type of a decoded value.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return string(TypeString)
	case bool:
		return string(TypeBoolean)
	case json.Number, float64, int, int64:
		return string(TypeNumber)
	case []any:
		return string(TypeArray)
	case map[string]any:
		return string(TypeObject)
	default:
		return fmt.Sprintf("%T", v)
	}
}

func withArticle(noun string) string {
	switch noun[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + noun
	default:
		return "a " + noun
	}
}
