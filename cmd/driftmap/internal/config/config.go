// Package config resolves the optional driftmap.yaml of a project.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/driftmap/pkg/raster"
)

// FileName is the project configuration file.
const FileName = "driftmap.yaml"

// DefaultOutput is where icons are written, relative to the project root.
const DefaultOutput = "assets/markers"

// Config represents driftmap.yaml.
type Config struct {
	Icons IconsConfig `yaml:"icons"`
}

// IconsConfig configures icon generation. Style fields left out keep their
// defaults.
type IconsConfig struct {
	Prefix string          `yaml:"prefix,omitempty"`
	Output string          `yaml:"output,omitempty"`
	Style  raster.PinStyle `yaml:"style"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string          `yaml:"root"`
	ModulePath string          `yaml:"module,omitempty"`
	Prefix     string          `yaml:"prefix"`
	OutputDir  string          `yaml:"output"`
	Style      raster.PinStyle `yaml:"style"`
}

// LoadOptional reads driftmap.yaml from dir if present, on top of the
// defaults.
func LoadOptional(dir string) (*Config, error) {
	cfg := &Config{Icons: IconsConfig{Style: raster.DefaultPinStyle()}}

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return cfg, nil
}

// Resolve loads driftmap.yaml from dir and fills in defaults. The image
// prefix defaults to the last element of the module path in dir/go.mod, or
// to raster.DefaultImagePrefix outside a module.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Icons.Style.Validate(); err != nil {
		return nil, fmt.Errorf("%s: icons.style: %w", FileName, err)
	}

	modPath, err := modulePath(dir)
	if err != nil {
		return nil, err
	}

	prefix := strings.TrimSpace(cfg.Icons.Prefix)
	if prefix == "" {
		prefix = defaultPrefix(modPath)
	}
	if err := validatePrefix(prefix); err != nil {
		return nil, err
	}

	out := strings.TrimSpace(cfg.Icons.Output)
	if out == "" {
		out = DefaultOutput
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(dir, out)
	}

	return &Resolved{
		Root:       dir,
		ModulePath: modPath,
		Prefix:     prefix,
		OutputDir:  out,
		Style:      cfg.Icons.Style,
	}, nil
}

// FindProjectRoot walks up from the working directory to the first directory
// holding driftmap.yaml or go.mod, falling back to the working directory.
func FindProjectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for dir := wd; ; {
		for _, name := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return wd, nil
		}
		dir = parent
	}
}

// modulePath returns the module path of dir/go.mod, or "" without one.
func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultPrefix(modPath string) string {
	if modPath == "" {
		return raster.DefaultImagePrefix
	}
	base := modPath
	if prefix, _, ok := module.SplitPathVersion(modPath); ok {
		base = prefix
	}
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if p := sanitize(base); p != "" {
		return p
	}
	return raster.DefaultImagePrefix
}

// sanitize lowercases s and keeps only characters valid in an image id prefix.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validatePrefix(prefix string) error {
	if sanitize(prefix) != prefix {
		return fmt.Errorf("icons.prefix may only contain a-z, 0-9, '-' and '_' (got %q)", prefix)
	}
	return nil
}
