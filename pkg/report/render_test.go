//go:build !integration

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/x/exp/golden"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mixedIssues is deliberately unordered; the aggregator sorts it.
func mixedIssues() []Issue {
	return []Issue{
		NewIssue(KindOrphanMediaFile, AtFile("stray-1.png"), "media file is not referenced by any template"),
		NewIssue(KindInvalidName, AtTemplate(1, 0, "Video_Gen"), "name %q must use lowercase letters, digits and underscores", "Video_Gen"),
		NewIssue(KindSchemaViolation, AtTemplate(0, 1, "sd_basic").WithField("mediaType"), "value %q is not one of: image, video, audio, 3d", "picture"),
		NewIssue(KindDuplicateName, AtTemplate(0, 0, "flux_dev"), "template name %q is used 2 times: categories[0].templates[0], categories[1].templates[1]", "flux_dev"),
		NewIssue(KindSchemaViolation, AtCategory(1, "video").WithField("title"), "required field is missing"),
		NewIssue(KindMissingWorkflowFile, AtTemplate(0, 1, "sd_basic").WithPath("sd_basic.json"), "workflow file %q not found", "sd_basic.json"),
	}
}

func mixedReport(strict bool) *Report {
	agg := NewAggregator(strict)
	agg.Add(mixedIssues()...)
	return agg.Finalize(&Report{
		Root:       "templates",
		IndexFile:  "index.json",
		Categories: 2,
		Templates:  4,
		Summaries: []TemplateSummary{
			{Category: 0, Template: 0, Name: "flux_dev", Thumbnails: 2},
			{Category: 0, Template: 1, Name: "sd_basic", Thumbnails: 0},
			{Category: 1, Template: 0, Name: "Video_Gen", Thumbnails: 1},
			{Category: 1, Template: 1, Name: "flux_dev", Thumbnails: 1},
		},
	})
}

// TestGolden_RenderText snapshots the plain text report.
func TestGolden_RenderText(t *testing.T) {
	tests := []struct {
		name   string
		report *Report
		opts   RenderOptions
	}{
		{
			name:   "pass",
			report: NewAggregator(false).Finalize(&Report{IndexFile: "index.json", Categories: 1, Templates: 1}),
		},
		{
			name: "missing_thumbnail",
			report: func() *Report {
				agg := NewAggregator(false)
				agg.Add(NewIssue(KindMissingThumbnail, AtTemplate(0, 0, "flux_dev_example").WithPath("flux_dev_example-1.webp"),
					"required thumbnail %q not found", "flux_dev_example-1.webp"))
				return agg.Finalize(&Report{IndexFile: "index.json", Categories: 1, Templates: 1})
			}(),
		},
		{
			name:   "mixed_verbose",
			report: mixedReport(false),
			opts:   RenderOptions{Verbose: true},
		},
		{
			name:   "mixed_quiet",
			report: mixedReport(false),
			opts:   RenderOptions{Quiet: true, Verbose: true},
		},
		{
			name:   "mixed_strict",
			report: mixedReport(true),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderText(&buf, tt.report, tt.opts))
			golden.RequireEqual(t, buf.Bytes())
		})
	}
}

func TestRenderText_IsDeterministic(t *testing.T) {
	var first, second bytes.Buffer
	require.NoError(t, RenderText(&first, mixedReport(false), RenderOptions{Verbose: true}))
	require.NoError(t, RenderText(&second, mixedReport(false), RenderOptions{Verbose: true}))
	assert.Equal(t, first.String(), second.String(), "identical input must render identical bytes")
}

func TestRenderText_QuietPassPrintsNothing(t *testing.T) {
	agg := NewAggregator(false)
	agg.Add(NewIssue(KindInvalidName, AtTemplate(0, 0, "Bad"), "bad name"))
	r := agg.Finalize(&Report{Categories: 1, Templates: 1})

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, r, RenderOptions{Quiet: true}))
	assert.Empty(t, buf.String(), "quiet mode should suppress warnings and a passing summary")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, mixedReport(false)))

	var decoded struct {
		Verdict  string `json:"verdict"`
		Errors   int    `json:"errors"`
		Warnings int    `json:"warnings"`
		Issues   []struct {
			Kind     string `json:"kind"`
			Severity string `json:"severity"`
			Location struct {
				Category int    `json:"category"`
				Template int    `json:"template"`
				Field    string `json:"field"`
			} `json:"location"`
		} `json:"issues"`
		Thumbnails []TemplateSummary `json:"thumbnails"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded), "output should be valid JSON")

	assert.Equal(t, "FAIL", decoded.Verdict)
	assert.Equal(t, 4, decoded.Errors)
	assert.Equal(t, 2, decoded.Warnings)
	require.Len(t, decoded.Issues, 6)
	assert.Equal(t, "DuplicateName", decoded.Issues[0].Kind, "issues should be in report order")
	assert.Equal(t, "mediaType", decoded.Issues[1].Location.Field)
	assert.Equal(t, -1, decoded.Issues[5].Location.Category, "file-level issues carry no category")
	assert.Len(t, decoded.Thumbnails, 4)
}

func TestRenderJSON_EmptyArrays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, NewAggregator(false).Finalize(&Report{})))
	assert.Contains(t, buf.String(), `"issues": []`, "no issues should render as an empty array")
	assert.Contains(t, buf.String(), `"thumbnails": []`)
}

func TestRenderGitHub(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderGitHub(&buf, mixedReport(false)))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "::error file=templates/index.json,title=DuplicateName::"), "got %q", lines[0])
	assert.True(t, strings.HasPrefix(lines[4], "::warning file=templates/index.json,title=InvalidName::"), "got %q", lines[4])
	assert.True(t, strings.HasPrefix(lines[5], "::warning file=templates/stray-1.png,title=OrphanMediaFile::"), "file-level issues point at their file, got %q", lines[5])
}

func TestEscapeData(t *testing.T) {
	assert.Equal(t, "100%25 done%0Anext", escapeData("100% done\nnext"))
	assert.Equal(t, "a%3Ab%2Cc", escapeProperty("a:b,c"))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatText},
		{input: "text", want: FormatText},
		{input: "JSON", want: FormatJSON},
		{input: " github ", want: FormatGitHub},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "ParseFormat(%q)", tt.input)
			continue
		}
		require.NoError(t, err, "ParseFormat(%q)", tt.input)
		assert.Equal(t, tt.want, got)
	}
}
