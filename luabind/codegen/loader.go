package codegen

import (
	"fmt"
	"go/types"
	"path/filepath"
	"sync"

	"golang.org/x/tools/go/packages"
)

// PackageLoader loads and caches type checked Go packages.
type PackageLoader struct {
	cache map[string]*packages.Package
	mu    sync.RWMutex
}

// NewPackageLoader creates a new PackageLoader.
func NewPackageLoader() *PackageLoader {
	return &PackageLoader{
		cache: make(map[string]*packages.Package),
	}
}

// LoadDir loads the package in dir.
func (l *PackageLoader) LoadDir(dir string) (*packages.Package, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %q: %w", dir, err)
	}
	return l.load("dir:"+abs, abs, ".")
}

func (l *PackageLoader) load(key, dir, pattern string) (*packages.Package, error) {
	l.mu.RLock()
	if pkg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return pkg, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Check again in case it was loaded while we were waiting for the lock
	if pkg, ok := l.cache[key]; ok {
		return pkg, nil
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedImports | packages.NeedTypes | packages.NeedTypesSizes | packages.NeedTypesInfo,
		Dir:  dir,
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to load package %q: %w", pattern, err)
	}

	if len(pkgs) == 0 {
		return nil, fmt.Errorf("package %q not found", pattern)
	}

	// Errors are tolerated: a stale generated file must not prevent
	// regenerating it, and the declarations we check are still typed.
	pkg := pkgs[0]
	if pkg.Types == nil {
		return nil, fmt.Errorf("package %q has no type information", pattern)
	}
	l.cache[key] = pkg
	return pkg, nil
}

// FindObject looks up a package level object of pkg.
func FindObject(pkg *types.Package, name string) (types.Object, error) {
	obj := pkg.Scope().Lookup(name)
	if obj == nil {
		return nil, fmt.Errorf("%q not found in package %s", name, pkg.Path())
	}
	return obj, nil
}

// FindNamedType finds a defined type of pkg.
func FindNamedType(pkg *types.Package, typeName string) (*types.Named, error) {
	obj, err := FindObject(pkg, typeName)
	if err != nil {
		return nil, err
	}

	typeNameObj, ok := obj.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("%q is not a type name", typeName)
	}

	named, ok := typeNameObj.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("%q is not a named type", typeName)
	}

	return named, nil
}
