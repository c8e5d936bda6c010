//go:build !integration

package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workflow-templates/templatelint/pkg/report"
	"github.com/workflow-templates/templatelint/pkg/schema"
)

func TestLoad_MissingFile(t *testing.T) {
	mem := afero.NewMemMapFs()

	cfg, err := Load(mem, "/templates/.templatelint.yaml", false)
	require.NoError(t, err, "an absent default config file is not an error")
	assert.Equal(t, &Config{}, cfg)

	_, err = Load(mem, "/custom.yaml", true)
	assert.Error(t, err, "an explicitly requested config file must exist")
}

func TestLoad_AppliesValues(t *testing.T) {
	mem := afero.NewMemMapFs()
	content := `strict: true
allowUnknownFields: true
engine: jsonschema
checkOrphans: false
ignore:
  - "*.txt"
  - drafts-*
indexFile: catalog.json
schemaFile: catalog.schema.json
format: github
`
	require.NoError(t, afero.WriteFile(mem, "/t/.templatelint.yaml", []byte(content), 0o644))

	cfg, err := Load(mem, "/t/.templatelint.yaml", false)
	require.NoError(t, err)

	settings := Defaults()
	cfg.Apply(&settings)

	assert.True(t, settings.Strict)
	assert.False(t, settings.Quiet, "unset keys keep their defaults")
	assert.True(t, settings.AllowUnknownFields)
	assert.False(t, settings.CheckOrphans)
	assert.Equal(t, schema.EngineJSONSchema, settings.Engine)
	assert.Equal(t, report.FormatGitHub, settings.Format)
	assert.Equal(t, []string{"*.txt", "drafts-*"}, settings.Ignore)
	assert.Equal(t, "catalog.json", settings.IndexFile)
	assert.Equal(t, "catalog.schema.json", settings.SchemaFile)

	opts := settings.ValidatorOptions()
	assert.Equal(t, "catalog.json", opts.IndexFile)
	assert.True(t, opts.Strict)
	assert.False(t, opts.CheckOrphans)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "unknown key", content: "strictness: true\n", wantErr: "strictness"},
		{name: "wrong type", content: "strict: [1]\n", wantErr: "invalid config file"},
		{name: "bad engine", content: "engine: xml\n", wantErr: "unknown schema engine"},
		{name: "bad format", content: "format: html\n", wantErr: "unknown output format"},
		{name: "bad glob", content: "ignore: ['[x']\n", wantErr: "invalid ignore pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(".templatelint.yaml", []byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaults(t *testing.T) {
	s := Defaults()
	assert.Equal(t, "index.json", s.IndexFile)
	assert.Equal(t, "index.schema.json", s.SchemaFile)
	assert.True(t, s.CheckOrphans)
	assert.Equal(t, schema.EngineContract, s.Engine)
	assert.Equal(t, report.FormatText, s.Format)
}
