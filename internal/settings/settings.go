// Package settings loads the YAML settings file that drives the CLI.
//
// A settings file names the database to gather from and where generated
// code goes:
//
//	database: app.db
//	package: models
//	output_dir: ./models
//	language: go
//	tables: [customers, orders]
//
// Files are decoded strictly (unknown keys are errors), defaults are
// filled in, and the result is validated against an embedded CUE schema.
package settings

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Defaults for optional settings.
const (
	DefaultPackage   = "models"
	DefaultOutputDir = "."
	DefaultLanguage  = "go"
)

// Settings configures gathering and generation.
type Settings struct {
	Database  string   `yaml:"database" json:"database"`
	Package   string   `yaml:"package" json:"package"`
	OutputDir string   `yaml:"output_dir" json:"output_dir"`
	Language  string   `yaml:"language" json:"language"`
	Tables    []string `yaml:"tables" json:"tables"`
}

// Load reads and validates the settings file at path. Relative database
// and output paths are resolved against the file's directory.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read settings")
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	base := filepath.Dir(path)
	s.Database = resolvePath(base, s.Database)
	s.OutputDir = resolvePath(base, s.OutputDir)
	return s, nil
}

// Parse decodes and validates settings from YAML.
func Parse(data []byte) (*Settings, error) {
	var s Settings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks s against the settings schema.
func (s *Settings) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return errors.Wrap(err, "settings schema")
	}
	def := schema.LookupPath(cue.ParsePath("#Settings"))

	v := def.Unify(ctx.Encode(s))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return errors.Wrap(err, "invalid settings")
	}
	return nil
}

func (s *Settings) applyDefaults() {
	if s.Package == "" {
		s.Package = DefaultPackage
	}
	if s.OutputDir == "" {
		s.OutputDir = DefaultOutputDir
	}
	if s.Language == "" {
		s.Language = DefaultLanguage
	}
	if s.Tables == nil {
		s.Tables = []string{}
	}
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
