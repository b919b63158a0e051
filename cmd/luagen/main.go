package main

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/scott-cotton/cli"
	"github.com/signadot/luagen/luabind/codegen"
)

func main() {
	cli.MainContext(context.Background(), MainCommand())
}

func MainCommand() *cli.Command {
	cfg := &Config{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}

	return cli.NewCommandAt(&cfg.Command, "luagen").
		WithSynopsis("luagen [opts]").
		WithDescription("Generate gopher-lua bindings (Register<T>, encoders and decoders) from types carrying //luagen: directives.").
		WithOpts(sOpts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return run(cfg, cc, args)
		})
}

type Config struct {
	*cli.Command

	OutputFile string `cli:"name=o desc='output file for generated Go code (default: <package>_luagen.go)'"`
	Dir        string `cli:"name=dir desc='directory to scan for Go files (default: current directory)'"`
	Recursive  bool   `cli:"name=recursive desc='scan subdirectories recursively'"`
	ConfigFile string `cli:"name=config desc='yaml config file (default: luagen.yaml in -dir when present)'"`
	NoVerify   bool   `cli:"name=no-verify desc='do not check impl signatures against the type checked package'"`
	Check      bool   `cli:"name=check desc='report stale generated files instead of writing them'"`
	Color      bool   `cli:"name=color desc='color diagnostics even when stdout is not a terminal'"`
	Verbose    bool   `cli:"name=v desc='log debug messages'"`

	exclude []string
}

var errStale = errors.New("generated files are out of date")

func run(cfg *Config, cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: unexpected arguments %v", cli.ErrUsage, args)
	}
	if err := cfg.applyFile(); err != nil {
		return err
	}
	if cfg.OutputFile != "" && cfg.Recursive {
		return fmt.Errorf("%w: cannot specify both -o and -recursive", cli.ErrUsage)
	}
	if cfg.Verbose {
		theLog = newLog(os.Stdout, slog.LevelDebug)
	}

	diag := newDiagnostics(cc.Out, useColor(cfg.Color, os.Stdout))
	err = generate(cfg, diag, theLog)
	switch {
	case errors.Is(err, errStale):
		return cli.ExitCodeErr(1)
	case err != nil:
		diag.Error(err)
		return cli.ExitCodeErr(1)
	}
	return nil
}

// generate processes every package found under cfg.Dir. In check mode it
// reports each stale file and returns errStale when any was found.
func generate(cfg *Config, diag *diagnostics, log *slog.Logger) error {
	dir := cfg.Dir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	packages, err := codegen.DiscoverPackages(dir, cfg.Recursive)
	if err != nil {
		return fmt.Errorf("failed to discover packages: %w", err)
	}
	packages = cfg.filter(dir, packages)
	if len(packages) == 0 {
		return fmt.Errorf("no Go packages found in %q", dir)
	}

	loader := codegen.NewPackageLoader()
	stale := false
	for _, pkg := range packages {
		log.Debug("processing package", "name", pkg.Name, "dir", pkg.Dir)
		code, outputFile, err := processPackage(cfg, loader, pkg, log)
		if err != nil {
			return fmt.Errorf("failed to process package %q: %w", pkg.Name, err)
		}
		if code == "" {
			continue
		}
		if cfg.Check {
			changed, err := checkFile(diag, outputFile, code)
			if err != nil {
				return err
			}
			stale = stale || changed
			continue
		}
		if err := os.WriteFile(outputFile, []byte(code), 0644); err != nil {
			return fmt.Errorf("failed to write output file %q: %w", outputFile, err)
		}
		log.Info("wrote bindings", "file", outputFile)
	}
	if stale {
		return errStale
	}
	return nil
}

// processPackage returns the generated source of pkg and the file it
// belongs in. The source is empty when no type carries a directive.
func processPackage(cfg *Config, loader *codegen.PackageLoader, pkg *codegen.PackageInfo, log *slog.Logger) (string, string, error) {
	config := &codegen.CodegenConfig{
		OutputFile: cfg.OutputFile,
		Dir:        pkg.Dir,
		Verify:     !cfg.NoVerify,
		Package:    pkg,
		Logger:     log,
	}
	if config.OutputFile == "" {
		config.OutputFile = filepath.Join(pkg.Dir, codegen.OutputName(pkg.Name))
	}

	specs, err := extractSpecs(pkg)
	if err != nil {
		return "", "", err
	}
	if len(specs) == 0 {
		return "", "", nil
	}

	if config.Verify {
		loaded, err := loader.LoadDir(pkg.Dir)
		if err != nil {
			return "", "", fmt.Errorf("failed to load package: %w", err)
		}
		if err := codegen.ResolveSignatures(specs, loaded.Types, log); err != nil {
			return "", "", err
		}
	}

	code, err := codegen.GenerateCode(specs, config)
	if err != nil {
		return "", "", err
	}
	return code, config.OutputFile, nil
}

func extractSpecs(pkg *codegen.PackageInfo) ([]*codegen.TypeSpec, error) {
	fset := token.NewFileSet()
	files := make([]*ast.File, 0, len(pkg.Files))
	for _, filePath := range pkg.Files {
		file, err := codegen.ParseFile(fset, filePath)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	specs, err := codegen.ExtractPackage(fset, files, pkg.Files)
	if err != nil {
		return nil, err
	}
	for _, ts := range specs {
		ts.Package = pkg.Name
	}
	return specs, nil
}
