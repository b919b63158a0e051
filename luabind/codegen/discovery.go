package codegen

import (
	"fmt"
	"go/build"
	"os"
	"path/filepath"
	"strings"
)

// DiscoverPackages discovers Go packages in the given directory.
// If recursive is true, it scans subdirectories recursively. Generated
// binding files are left out of PackageInfo.Files.
func DiscoverPackages(dir string, recursive bool) ([]*PackageInfo, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %q: %w", dir, err)
	}

	var packages []*PackageInfo
	visited := make(map[string]bool)

	err = filepath.Walk(absDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			return nil
		}

		// Skip hidden, underscore, testdata and vendor directories
		base := filepath.Base(path)
		if path != absDir && (strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") || base == "vendor" || base == "testdata") {
			return filepath.SkipDir
		}

		if !recursive && path != absDir {
			return filepath.SkipDir
		}

		pkg, err := build.ImportDir(path, 0)
		if err != nil {
			// Not a valid Go package, skip
			return nil
		}

		if len(pkg.GoFiles) == 0 {
			return nil
		}

		key := pkg.ImportPath
		if key == "." {
			key = path
		}
		if visited[key] {
			return nil
		}
		visited[key] = true

		files := make([]string, 0, len(pkg.GoFiles))
		for _, f := range pkg.GoFiles {
			if strings.HasSuffix(f, "_luagen.go") {
				continue
			}
			files = append(files, filepath.Join(path, f))
		}

		packages = append(packages, &PackageInfo{
			Path:  pkg.ImportPath,
			Dir:   path,
			Name:  pkg.Name,
			Files: files,
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", dir, err)
	}

	return packages, nil
}
