package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/signadot/luagen/luabind/codegen"
)

// DefaultConfigFile is looked up in -dir when -config is not given.
const DefaultConfigFile = "luagen.yaml"

// FileConfig is the contents of a luagen.yaml file.
type FileConfig struct {
	Output    string   `yaml:"output"`
	Recursive bool     `yaml:"recursive"`
	NoVerify  bool     `yaml:"no-verify"`
	Color     bool     `yaml:"color"`
	Verbose   bool     `yaml:"verbose"`
	Exclude   []string `yaml:"exclude"`
}

// LoadFileConfig reads path. A missing file yields a nil config when
// optional is set.
func LoadFileConfig(path string, optional bool) (*FileConfig, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	fc := &FileConfig{}
	if err := yaml.Unmarshal(d, fc); err != nil {
		return nil, fmt.Errorf("failed to decode config %q: %w", path, err)
	}
	return fc, nil
}

// applyFile fills the options not given on the command line from the
// config file.
func (cfg *Config) applyFile() error {
	path := cfg.ConfigFile
	optional := path == ""
	if optional {
		path = filepath.Join(cfg.Dir, DefaultConfigFile)
	}
	fc, err := LoadFileConfig(path, optional)
	if err != nil {
		return err
	}
	if fc == nil {
		return nil
	}
	cfg.merge(fc, cfg.flagSet)
	return nil
}

// merge copies the values of fc into cfg for every option isSet reports
// as not given.
func (cfg *Config) merge(fc *FileConfig, isSet func(string) bool) {
	if !isSet("o") {
		cfg.OutputFile = fc.Output
	}
	if !isSet("recursive") {
		cfg.Recursive = fc.Recursive
	}
	if !isSet("no-verify") {
		cfg.NoVerify = fc.NoVerify
	}
	if !isSet("color") {
		cfg.Color = fc.Color
	}
	if !isSet("v") {
		cfg.Verbose = fc.Verbose
	}
	cfg.exclude = fc.Exclude
}

func (cfg *Config) flagSet(name string) bool {
	if cfg.Command == nil {
		return false
	}
	for _, opt := range cfg.Opts {
		if opt.Name == name {
			return opt.Value != nil
		}
	}
	return false
}

// filter drops the packages whose directory, relative to dir, is listed in
// the config file's exclude list.
func (cfg *Config) filter(dir string, pkgs []*codegen.PackageInfo) []*codegen.PackageInfo {
	if len(cfg.exclude) == 0 {
		return pkgs
	}
	skip := make(map[string]bool, len(cfg.exclude))
	for _, e := range cfg.exclude {
		skip[filepath.Clean(e)] = true
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return pkgs
	}
	res := pkgs[:0]
	for _, pkg := range pkgs {
		rel, err := filepath.Rel(absDir, pkg.Dir)
		if err == nil && skip[rel] {
			theLog.Debug("excluded package", "dir", rel)
			continue
		}
		res = append(res, pkg)
	}
	return res
}
