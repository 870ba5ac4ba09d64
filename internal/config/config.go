// Package config loads tukun.toml, the optional project file that supplies
// defaults for the tukun command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"tukun/internal/module"
	"tukun/internal/trace"
)

// FileName is the project file looked up by Discover.
const FileName = "tukun.toml"

// File mirrors the TOML document.
type File struct {
	Run   RunSection   `toml:"run"`
	Asm   AsmSection   `toml:"asm"`
	Trace TraceSection `toml:"trace"`
}

type RunSection struct {
	Entry       string   `toml:"entry"`
	Modules     []string `toml:"modules"`
	OmitCorelib bool     `toml:"omit_corelib"`
	MaxDepth    int      `toml:"max_depth"`
}

type AsmSection struct {
	Format string `toml:"format"`
}

type TraceSection struct {
	Level    string `toml:"level"`
	Mode     string `toml:"mode"`
	Format   string `toml:"format"`
	Output   string `toml:"output"`
	RingSize int    `toml:"ring_size"`
}

// Project is a loaded tukun.toml. Root is the directory holding it; relative
// paths in the file are resolved against Root.
type Project struct {
	Path string
	Root string
	File File

	meta toml.MetaData
}

// IsSet reports whether key was written in the file, e.g.
// IsSet("run", "max_depth").
func (p *Project) IsSet(key ...string) bool {
	return p != nil && p.meta.IsDefined(key...)
}

// Find walks from startDir up to the filesystem root looking for
// tukun.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the nearest tukun.toml. ok is false when there
// is none.
func Discover(startDir string) (p *Project, ok bool, err error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	p, err = Load(path)
	if err != nil {
		return nil, true, err
	}
	return p, true, nil
}

// Load reads and validates the file at path.
func Load(path string) (*Project, error) {
	var f File
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	p := &Project{Path: path, Root: filepath.Dir(path), File: f, meta: meta}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func (p *Project) validate() error {
	if p.IsSet("run", "entry") && !strings.Contains(p.File.Run.Entry, ".") {
		return fmt.Errorf("[run].entry %q is not a qualified function name", p.File.Run.Entry)
	}
	if p.File.Run.MaxDepth < 0 {
		return fmt.Errorf("[run].max_depth must not be negative")
	}
	if p.IsSet("asm", "format") {
		if _, err := module.ParseFormat(p.File.Asm.Format); err != nil {
			return fmt.Errorf("[asm].format: %w", err)
		}
	}
	if _, err := trace.ParseLevel(p.File.Trace.Level); p.IsSet("trace", "level") && err != nil {
		return fmt.Errorf("[trace].level: %w", err)
	}
	if _, err := trace.ParseMode(p.File.Trace.Mode); p.IsSet("trace", "mode") && err != nil {
		return fmt.Errorf("[trace].mode: %w", err)
	}
	if _, err := trace.ParseFormat(p.File.Trace.Format); p.IsSet("trace", "format") && err != nil {
		return fmt.Errorf("[trace].format: %w", err)
	}
	return nil
}

// ModulePaths returns [run].modules resolved against Root.
func (p *Project) ModulePaths() []string {
	out := make([]string, len(p.File.Run.Modules))
	for i, m := range p.File.Run.Modules {
		out[i] = p.Resolve(m)
	}
	return out
}

// Resolve makes a path from the file absolute.
func (p *Project) Resolve(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Root, filepath.FromSlash(rel))
}
