// Package config loads releasy configuration files.
// This file contains parsing, schema unification and file discovery.
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/chokrifaysal/releasy/errors"
	"github.com/chokrifaysal/releasy/fs"
)

// DefaultPath is the project-local configuration file.
const DefaultPath = "config/releasy.json"

// Format is the encoding of a configuration document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatOf picks the format from a file extension. Anything other than
// .yaml or .yml is JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// SearchPaths returns the default discovery order: DefaultPath, then
// releasy/releasy.json under the XDG config home and config dirs.
func SearchPaths() []string {
	paths := []string{DefaultPath}
	for _, dir := range append([]string{xdg.ConfigHome}, xdg.ConfigDirs...) {
		if dir == "" {
			continue
		}
		paths = append(paths, filepath.Join(dir, "releasy", "releasy.json"))
	}
	return paths
}

// Find returns explicit when set, or the first existing path in search.
func Find(fsys fs.Filesystem, explicit string, search []string) (string, error) {
	if explicit != "" {
		ok, err := fsys.Exists(explicit)
		if err != nil {
			return "", fmt.Errorf("%w %s: %w", ErrNotFound, explicit, err)
		}
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrNotFound, explicit)
		}
		return explicit, nil
	}

	for _, p := range search {
		if ok, err := fsys.Exists(p); err == nil && ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (searched %s)", ErrNotFound, strings.Join(search, ", "))
}

// Load reads and parses the configuration at path.
func Load(ctx context.Context, fsys fs.Filesystem, path string) (*Config, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeIO,
			"failed to read configuration",
			map[string]interface{}{"path": path},
		)
	}

	cfg, err := Parse(ctx, data, FormatOf(path), path)
	if err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeInvalidConfig,
			"failed to load configuration",
			map[string]interface{}{"path": path},
		)
	}
	return cfg, nil
}

// Parse decodes a configuration document, applying schema defaults.
// filename is used in error positions only.
func Parse(_ context.Context, data []byte, format Format, filename string) (*Config, error) {
	cueCtx := cuecontext.New()

	schema := cueCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to compile configuration schema")
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	doc, err := build(cueCtx, data, format, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	value := def.Unify(doc)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func build(cueCtx *cue.Context, data []byte, format Format, filename string) (cue.Value, error) {
	switch format {
	case FormatYAML:
		var doc map[string]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return cue.Value{}, err
		}
		if doc == nil {
			doc = map[string]interface{}{}
		}
		v := cueCtx.Encode(doc)
		return v, v.Err()
	default:
		expr, err := cuejson.Extract(filename, data)
		if err != nil {
			return cue.Value{}, err
		}
		v := cueCtx.BuildExpr(expr)
		return v, v.Err()
	}
}
