//go:build !integration

package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_Verdict(t *testing.T) {
	tests := []struct {
		name     string
		issues   []Issue
		strict   bool
		verdict  Verdict
		exitCode int
	}{
		{
			name:     "no issues passes",
			verdict:  VerdictPass,
			exitCode: 0,
		},
		{
			name:     "warnings only pass with warnings",
			issues:   []Issue{NewIssue(KindInvalidName, AtTemplate(0, 0, "Bad"), "bad")},
			verdict:  VerdictPassWithWarnings,
			exitCode: 0,
		},
		{
			name: "any error fails",
			issues: []Issue{
				NewIssue(KindInvalidName, AtTemplate(0, 0, "Bad"), "bad"),
				NewIssue(KindMissingThumbnail, AtTemplate(0, 0, "Bad"), "missing"),
			},
			verdict:  VerdictFail,
			exitCode: 1,
		},
		{
			name:     "strict promotes warnings",
			issues:   []Issue{NewIssue(KindInvalidName, AtTemplate(0, 0, "Bad"), "bad")},
			strict:   true,
			verdict:  VerdictFail,
			exitCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(tt.strict)
			agg.Add(tt.issues...)
			r := agg.Finalize(&Report{})

			assert.Equal(t, tt.verdict, r.Verdict())
			assert.Equal(t, tt.exitCode, r.ExitCode())
			assert.Equal(t, tt.strict, r.Strict)
		})
	}
}

func TestAggregator_StrictDoesNotMutateInput(t *testing.T) {
	collected := NewIssue(KindThumbnailGap, AtFile("a-3.webp"), "gap")
	agg := NewAggregator(true)
	agg.Add(collected)
	r := agg.Finalize(&Report{})

	require.Len(t, r.Issues, 1)
	assert.Equal(t, SeverityError, r.Issues[0].Severity, "report copy should be promoted")
	assert.Equal(t, SeverityWarning, collected.Severity, "the collected issue must stay untouched")
}

func TestSort_Order(t *testing.T) {
	issues := []Issue{
		NewIssue(KindOrphanWorkflowFile, AtFile("z.json"), "orphan"),
		NewIssue(KindOrphanMediaFile, AtFile("a-1.png"), "orphan"),
		NewIssue(KindDuplicateName, AtTemplate(1, 0, "x"), "dup"),
		NewIssue(KindMissingThumbnail, AtTemplate(0, 2, "c"), "thumb"),
		NewIssue(KindSchemaViolation, AtTemplate(0, 2, "c").WithField("mediaType"), "enum"),
		NewIssue(KindSchemaViolation, AtTemplate(0, 2, "c").WithField("description"), "missing"),
		NewIssue(KindSchemaViolation, AtCategory(1, "video").WithField("title"), "missing"),
		NewIssue(KindMissingWorkflowFile, AtTemplate(0, 0, "a"), "workflow"),
	}

	Sort(issues)

	got := make([]string, len(issues))
	for i, issue := range issues {
		got[i] = issue.String()
	}
	want := []string{
		"categories[0].templates[0] (a): workflow [MissingWorkflowFile]",
		"categories[0].templates[2].description (c): missing [SchemaViolation]",
		"categories[0].templates[2].mediaType (c): enum [SchemaViolation]",
		"categories[0].templates[2] (c): thumb [MissingThumbnail]",
		"categories[1].title (video): missing [SchemaViolation]",
		"categories[1].templates[0] (x): dup [DuplicateName]",
		"a-1.png: orphan [OrphanMediaFile]",
		"z.json: orphan [OrphanWorkflowFile]",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestReport_FatalAndGrouping(t *testing.T) {
	agg := NewAggregator(false)
	agg.Add(
		NewIssue(KindInvalidSyntax, AtFile("index.json"), "unexpected end of JSON input"),
		NewIssue(KindInvalidSyntax, AtFile("index.schema.json"), "bad schema"),
		NewIssue(KindOrphanMediaFile, AtFile("x-1.png"), "orphan"),
	)
	r := agg.Finalize(&Report{IndexFile: "index.json"})

	assert.True(t, r.Fatal(), "InvalidSyntax on the index document is fatal")
	groups := r.BySeverity()
	assert.Len(t, groups[SeverityError], 2)
	assert.Len(t, groups[SeverityWarning], 1)
	assert.Len(t, r.OfKind(KindInvalidSyntax), 2)

	schemaOnly := NewAggregator(false)
	schemaOnly.Add(NewIssue(KindInvalidSyntax, AtFile("index.schema.json"), "bad schema"))
	assert.False(t, schemaOnly.Finalize(&Report{IndexFile: "index.json"}).Fatal(), "a broken schema document is not fatal for the index")
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		want string
	}{
		{name: "file", loc: AtFile("flux-1.webp"), want: "flux-1.webp"},
		{name: "file with field", loc: AtFile("index.json").WithField("$"), want: "index.json: $"},
		{name: "category", loc: AtCategory(2, "video"), want: "categories[2] (video)"},
		{name: "category without module", loc: AtCategory(2, ""), want: "categories[2]"},
		{name: "category field", loc: AtCategory(0, "default").WithField("type"), want: "categories[0].type (default)"},
		{name: "template", loc: AtTemplate(0, 3, "flux"), want: "categories[0].templates[3] (flux)"},
		{name: "template field", loc: AtTemplate(1, 0, "").WithField("name"), want: "categories[1].templates[0].name"},
		{name: "template path is not shown", loc: AtTemplate(0, 0, "flux").WithPath("flux.json"), want: "categories[0].templates[0] (flux)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.String())
		})
	}
}

func TestKind_DefaultSeverity(t *testing.T) {
	warnings := map[Kind]bool{
		KindInvalidName:         true,
		KindDuplicateModuleName: true,
		KindThumbnailGap:        true,
		KindOrphanWorkflowFile:  true,
		KindOrphanMediaFile:     true,
	}
	for _, kind := range Kinds() {
		want := SeverityError
		if warnings[kind] {
			want = SeverityWarning
		}
		assert.Equal(t, want, kind.DefaultSeverity(), "default severity of %s", kind)
	}
	assert.Equal(t, SeverityError, Kind("Unknown").DefaultSeverity(), "unknown kinds default to error")
}
