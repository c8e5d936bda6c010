// Package index loads the template index document into category and
// template records.
//
// Records are built leniently: every element of the document gets a record
// at its position, and fields holding a value of the wrong type read as the
// zero value. The raw decoded values are kept on each record so the schema
// stage can still see and report them.
package index

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/workflow-templates/templatelint/pkg/fileutil"
	"github.com/workflow-templates/templatelint/pkg/logger"
	"github.com/workflow-templates/templatelint/pkg/report"
)

var log = logger.New("index:index")

// ErrIndexNotFound is returned when the index document does not exist.
var ErrIndexNotFound = errors.New("index document not found")

// Index is a loaded index document.
type Index struct {
	// Path is the document name relative to the template root.
	Path string
	// Raw is the decoded document. Numbers are json.Number.
	Raw        any
	Categories []Category
}

// Category is one element of the index document.
type Category struct {
	Index      int
	ModuleName string
	Title      string
	Type       string
	Templates  []Template
	// Raw is nil when the element is not an object.
	Raw map[string]any
}

// Template is one element of a category's templates.
type Template struct {
	Category         int
	Index            int
	Name             string
	Title            string
	Description      string
	MediaType        string
	MediaSubtype     string
	ThumbnailVariant string
	TutorialURL      string
	// Raw is nil when the element is not an object.
	Raw map[string]any
}

// Location returns the report location of the template record.
func (t Template) Location() report.Location {
	return report.AtTemplate(t.Category, t.Index, t.Name)
}

// Location returns the report location of the category record.
func (c Category) Location() report.Location {
	return report.AtCategory(c.Index, c.ModuleName)
}

// TemplateCount returns the number of template records across all categories.
func (idx *Index) TemplateCount() int {
	n := 0
	for _, c := range idx.Categories {
		n += len(c.Templates)
	}
	return n
}

// Templates returns every template record in index order.
func (idx *Index) Templates() []Template {
	out := make([]Template, 0, idx.TemplateCount())
	for _, c := range idx.Categories {
		out = append(out, c.Templates...)
	}
	return out
}

// Load reads and decodes the index document name from tfs.
//
// A missing document is returned as an error wrapping ErrIndexNotFound. A
// document that is not valid JSON yields a nil Index and exactly one
// InvalidSyntax issue.
func Load(tfs *fileutil.TemplateFS, name string) (*Index, []report.Issue, error) {
	log.Printf("Loading index document: root=%s name=%s", tfs.Root(), name)

	data, err := tfs.ReadFile(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrIndexNotFound, name)
		}
		return nil, nil, fmt.Errorf("failed to read index document: %w", err)
	}

	doc, issue := Parse(name, data)
	if issue != nil {
		log.Printf("Index document is not valid JSON: %s", issue.Message)
		return nil, []report.Issue{*issue}, nil
	}

	idx := Build(name, doc)
	log.Printf("Loaded %d categories with %d templates", len(idx.Categories), idx.TemplateCount())
	return idx, nil, nil
}

// Parse decodes a JSON document. On failure it returns an InvalidSyntax
// issue located on name, with line and column when the decoder reports an
// offset.
func Parse(name string, data []byte) (any, *report.Issue) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err == nil {
		return doc, nil
	}
	issue := report.NewIssue(report.KindInvalidSyntax, report.AtFile(name), "%s", describeSyntaxError(data, err))
	return nil, &issue
}

func describeSyntaxError(data []byte, err error) string {
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		line, col := position(data, syntaxErr.Offset)
		return fmt.Sprintf("%s (line %d, column %d)", syntaxErr.Error(), line, col)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		line, col := position(data, int64(len(data)))
		return fmt.Sprintf("unexpected end of JSON input (line %d, column %d)", line, col)
	default:
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			line, col := position(data, typeErr.Offset)
			return fmt.Sprintf("%s (line %d, column %d)", typeErr.Error(), line, col)
		}
		return err.Error()
	}
}

// position converts a byte offset into a 1-based line and column. The
// decoder reports the offset just past the offending byte.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	if offset < 1 {
		return 1, 1
	}
	prefix := data[:offset-1]
	line = bytes.Count(prefix, []byte("\n")) + 1
	col = len(prefix) - bytes.LastIndexByte(prefix, '\n')
	return line, col
}

// Build turns a decoded document into records. A document that is not an
// array yields no categories.
func Build(name string, doc any) *Index {
	idx := &Index{Path: name, Raw: doc}
	elems, ok := doc.([]any)
	if !ok {
		return idx
	}
	idx.Categories = make([]Category, len(elems))
	for i, elem := range elems {
		idx.Categories[i] = buildCategory(i, elem)
	}
	return idx
}

func buildCategory(pos int, elem any) Category {
	c := Category{Index: pos}
	raw, ok := elem.(map[string]any)
	if !ok {
		return c
	}
	c.Raw = raw
	c.ModuleName = stringField(raw, "moduleName")
	c.Title = stringField(raw, "title")
	c.Type = stringField(raw, "type")

	templates, _ := raw["templates"].([]any)
	c.Templates = make([]Template, len(templates))
	for j, t := range templates {
		c.Templates[j] = buildTemplate(pos, j, t)
	}
	return c
}

func buildTemplate(category, pos int, elem any) Template {
	t := Template{Category: category, Index: pos}
	raw, ok := elem.(map[string]any)
	if !ok {
		return t
	}
	t.Raw = raw
	t.Name = stringField(raw, "name")
	t.Title = stringField(raw, "title")
	t.Description = stringField(raw, "description")
	t.MediaType = stringField(raw, "mediaType")
	t.MediaSubtype = stringField(raw, "mediaSubtype")
	t.ThumbnailVariant = stringField(raw, "thumbnailVariant")
	t.TutorialURL = stringField(raw, "tutorialUrl")
	return t
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
