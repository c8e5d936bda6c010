// Package config loads the optional .templatelint.yaml file and resolves the
// effective settings of a run from defaults, the file and the command line.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"

	"github.com/workflow-templates/templatelint/pkg/checks"
	"github.com/workflow-templates/templatelint/pkg/constants"
	"github.com/workflow-templates/templatelint/pkg/logger"
	"github.com/workflow-templates/templatelint/pkg/report"
	"github.com/workflow-templates/templatelint/pkg/schema"
	"github.com/workflow-templates/templatelint/pkg/validator"
)

var log = logger.New("config:config")

// Config mirrors the config file. Unset keys are nil or empty and leave the
// defaults alone.
type Config struct {
	Strict             *bool    `yaml:"strict"`
	Quiet              *bool    `yaml:"quiet"`
	AllowUnknownFields *bool    `yaml:"allowUnknownFields"`
	Engine             string   `yaml:"engine"`
	CheckOrphans       *bool    `yaml:"checkOrphans"`
	Ignore             []string `yaml:"ignore"`
	IndexFile          string   `yaml:"indexFile"`
	SchemaFile         string   `yaml:"schemaFile"`
	Format             string   `yaml:"format"`
}

// Load reads the config file at path. A missing file yields an empty Config
// unless required is set, which is the case when the path was given
// explicitly.
func Load(fsys afero.Fs, path string, required bool) (*Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			log.Printf("No config file at %s", path)
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes and validates config file content. Unknown keys are errors.
func Parse(path string, data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %s", path, yaml.FormatError(err, false, true))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	log.Printf("Loaded config file %s", path)
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Engine != "" {
		if _, err := schema.ParseEngine(c.Engine); err != nil {
			return err
		}
	}
	if c.Format != "" {
		if _, err := report.ParseFormat(c.Format); err != nil {
			return err
		}
	}
	return checks.ValidateIgnorePatterns(c.Ignore)
}

// Settings are the effective options of a run.
type Settings struct {
	Strict             bool
	Quiet              bool
	Verbose            bool
	AllowUnknownFields bool
	CheckOrphans       bool
	Engine             schema.Engine
	Format             report.Format
	Ignore             []string
	IndexFile          string
	SchemaFile         string
	ConfigFile         string
}

// Defaults returns the settings of a run without config file or flags.
func Defaults() Settings {
	return Settings{
		CheckOrphans: true,
		Engine:       schema.EngineContract,
		Format:       report.FormatText,
		IndexFile:    constants.DefaultIndexFile,
		SchemaFile:   constants.DefaultSchemaFile,
		ConfigFile:   constants.DefaultConfigFile,
	}
}

// Apply overlays the keys set in c onto s. c must have been validated by
// Parse.
func (c *Config) Apply(s *Settings) {
	if c.Strict != nil {
		s.Strict = *c.Strict
	}
	if c.Quiet != nil {
		s.Quiet = *c.Quiet
	}
	if c.AllowUnknownFields != nil {
		s.AllowUnknownFields = *c.AllowUnknownFields
	}
	if c.CheckOrphans != nil {
		s.CheckOrphans = *c.CheckOrphans
	}
	if c.Engine != "" {
		s.Engine, _ = schema.ParseEngine(c.Engine)
	}
	if c.Format != "" {
		s.Format, _ = report.ParseFormat(c.Format)
	}
	if len(c.Ignore) > 0 {
		s.Ignore = append([]string(nil), c.Ignore...)
	}
	if c.IndexFile != "" {
		s.IndexFile = c.IndexFile
	}
	if c.SchemaFile != "" {
		s.SchemaFile = c.SchemaFile
	}
}

// ValidatorOptions converts the settings for validator.New.
func (s Settings) ValidatorOptions() validator.Options {
	return validator.Options{
		IndexFile:          s.IndexFile,
		SchemaFile:         s.SchemaFile,
		ConfigFile:         s.ConfigFile,
		Engine:             s.Engine,
		Strict:             s.Strict,
		AllowUnknownFields: s.AllowUnknownFields,
		CheckOrphans:       s.CheckOrphans,
		Ignore:             s.Ignore,
	}
}
