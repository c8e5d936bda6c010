//go:build !integration

package checks

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/workflow-templates/templatelint/pkg/fileutil"
	"github.com/workflow-templates/templatelint/pkg/index"
	"github.com/workflow-templates/templatelint/pkg/report"
)

// newTemplateFS seeds an in-memory template root with empty files.
func newTemplateFS(t *testing.T, files ...string) *fileutil.TemplateFS {
	t.Helper()
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/templates", 0o755))
	for _, f := range files {
		require.NoError(t, afero.WriteFile(mem, "/templates/"+f, nil, 0o644), "seeding %s", f)
	}
	return fileutil.NewTemplateFS(mem, "/templates")
}

func mustIndex(t *testing.T, content string) *index.Index {
	t.Helper()
	doc, issue := index.Parse("index.json", []byte(content))
	require.Nil(t, issue, "test fixture must be valid JSON")
	return index.Build("index.json", doc)
}

func kindsOf(issues []report.Issue) []report.Kind {
	out := make([]report.Kind, len(issues))
	for i, issue := range issues {
		out[i] = issue.Kind
	}
	return out
}
