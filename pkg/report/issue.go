// Package report defines validation issues and aggregates them into an
// ordered report with a verdict.
//
// Issues are values. No stage mutates an issue after creating it; strict
// promotion in the Aggregator produces copies.
package report

import (
	"fmt"
	"strconv"
	"strings"
)

// Severity of an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind classifies an issue.
type Kind string

const (
	KindInvalidSyntax       Kind = "InvalidSyntax"
	KindSchemaViolation     Kind = "SchemaViolation"
	KindMissingWorkflowFile Kind = "MissingWorkflowFile"
	KindMissingThumbnail    Kind = "MissingThumbnail"
	KindInvalidName         Kind = "InvalidName"
	KindDuplicateName       Kind = "DuplicateName"
	KindDuplicateModuleName Kind = "DuplicateModuleName"
	KindThumbnailGap        Kind = "ThumbnailGap"
	KindOrphanWorkflowFile  Kind = "OrphanWorkflowFile"
	KindOrphanMediaFile     Kind = "OrphanMediaFile"
)

// kinds lists every kind in report order.
var kinds = []Kind{
	KindInvalidSyntax,
	KindSchemaViolation,
	KindMissingWorkflowFile,
	KindMissingThumbnail,
	KindInvalidName,
	KindDuplicateName,
	KindDuplicateModuleName,
	KindThumbnailGap,
	KindOrphanWorkflowFile,
	KindOrphanMediaFile,
}

var defaultSeverity = map[Kind]Severity{
	KindInvalidSyntax:       SeverityError,
	KindSchemaViolation:     SeverityError,
	KindMissingWorkflowFile: SeverityError,
	KindMissingThumbnail:    SeverityError,
	KindInvalidName:         SeverityWarning,
	KindDuplicateName:       SeverityError,
	KindDuplicateModuleName: SeverityWarning,
	KindThumbnailGap:        SeverityWarning,
	KindOrphanWorkflowFile:  SeverityWarning,
	KindOrphanMediaFile:     SeverityWarning,
}

// Kinds returns every kind in report order.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// DefaultSeverity is the severity a kind carries outside strict mode.
func (k Kind) DefaultSeverity() Severity {
	if s, ok := defaultSeverity[k]; ok {
		return s
	}
	return SeverityError
}

func (k Kind) rank() int {
	for i, known := range kinds {
		if known == k {
			return i
		}
	}
	return len(kinds)
}

// Location points at the place an issue was found. Category and Template are
// zero-based positions in the index; -1 means "not applicable". An issue
// with Category -1 is file-level and is identified by Path.
type Location struct {
	Category     int    `json:"category"`
	Template     int    `json:"template"`
	ModuleName   string `json:"moduleName,omitempty"`
	TemplateName string `json:"templateName,omitempty"`
	Field        string `json:"field,omitempty"`
	Path         string `json:"path,omitempty"`
}

// AtFile locates an issue on a file relative to the template root.
func AtFile(path string) Location {
	return Location{Category: -1, Template: -1, Path: path}
}

// AtCategory locates an issue on a category record.
func AtCategory(category int, moduleName string) Location {
	return Location{Category: category, Template: -1, ModuleName: moduleName}
}

// AtTemplate locates an issue on a template record.
func AtTemplate(category, template int, name string) Location {
	return Location{Category: category, Template: template, TemplateName: name}
}

// WithField returns a copy of l narrowed to field.
func (l Location) WithField(field string) Location {
	l.Field = field
	return l
}

// WithPath returns a copy of l that also names a file.
func (l Location) WithPath(path string) Location {
	l.Path = path
	return l
}

// IsFileLevel reports whether the location has no index position.
func (l Location) IsFileLevel() bool {
	return l.Category < 0
}

// String renders the location as categories[0].templates[2].field (name),
// or as the file path for file-level locations.
func (l Location) String() string {
	if l.IsFileLevel() {
		if l.Field != "" {
			return l.Path + ": " + l.Field
		}
		return l.Path
	}

	var sb strings.Builder
	sb.WriteString("categories[" + strconv.Itoa(l.Category) + "]")
	if l.Template >= 0 {
		sb.WriteString(".templates[" + strconv.Itoa(l.Template) + "]")
	}
	if l.Field != "" {
		sb.WriteString("." + l.Field)
	}

	label := l.ModuleName
	if l.Template >= 0 {
		label = l.TemplateName
	}
	if label != "" {
		sb.WriteString(" (" + label + ")")
	}
	return sb.String()
}

// Issue is a single validation finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	Location Location `json:"location"`
	Message  string   `json:"message"`
}

// NewIssue creates an issue with the kind's default severity.
func NewIssue(kind Kind, loc Location, format string, args ...any) Issue {
	return Issue{
		Severity: kind.DefaultSeverity(),
		Kind:     kind,
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
	}
}

// String renders the issue on one line without styling.
func (i Issue) String() string {
	return fmt.Sprintf("%s: %s [%s]", i.Location, i.Message, i.Kind)
}
