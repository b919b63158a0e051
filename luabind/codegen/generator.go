package codegen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"path"
	"sort"

	"github.com/signadot/luagen/debug"
	"golang.org/x/tools/imports"
)

// Header is the first line of every generated file.
const Header = "// Code generated by luagen. DO NOT EDIT."

const (
	luabindImport = "github.com/signadot/luagen/luabind"
	luaImport     = "github.com/yuin/gopher-lua"
)

// Bind produces the binding descriptor of ts.
func Bind(ts *TypeSpec, cfg *CodegenConfig) (*BindingDescriptor, error) {
	if ts.Kind == KindSum {
		return BindSum(ts, cfg.logger())
	}
	return BindRecord(ts, cfg.logger())
}

// GenerateCode generates the bindings of specs as the source of one Go file.
// All specs must belong to the same package.
func GenerateCode(specs []*TypeSpec, cfg *CodegenConfig) (string, error) {
	if len(specs) == 0 {
		return "", fmt.Errorf("no types to generate")
	}
	pkgName := specs[0].Package
	if cfg != nil && cfg.Package != nil && cfg.Package.Name != "" {
		pkgName = cfg.Package.Name
	}

	var body bytes.Buffer
	imps := map[string]string{}
	for _, ts := range specs {
		if ts.Package != pkgName {
			return "", genErrorf(ts.Pos, "%s belongs to package %s, not %s", ts.Name, ts.Package, pkgName)
		}
		bd, err := Bind(ts, cfg)
		if err != nil {
			return "", err
		}
		if err := collectImports(ts, imps); err != nil {
			return "", err
		}
		body.WriteString("\n")
		body.WriteString(bd.Code())
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n\npackage %s\n\n", Header, pkgName)
	buf.WriteString("import (\n")
	fmt.Fprintf(&buf, "\tlua %q\n", luaImport)
	fmt.Fprintf(&buf, "\t%q\n", luabindImport)
	for _, name := range sortedKeys(imps) {
		p := imps[name]
		if p == luaImport || p == luabindImport {
			continue
		}
		if path.Base(p) == name {
			fmt.Fprintf(&buf, "\t%q\n", p)
		} else {
			fmt.Fprintf(&buf, "\t%s %q\n", name, p)
		}
	}
	buf.WriteString(")\n")
	buf.Write(body.Bytes())

	if debug.Emit() {
		debug.Logf("unformatted output for %s:\n%s\n", pkgName, buf.String())
	}
	filename := OutputName(pkgName)
	if cfg != nil && cfg.OutputFile != "" {
		filename = cfg.OutputFile
	}
	out, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format generated code: %w", err)
	}
	return string(out), nil
}

// collectImports adds to imps the packages referenced by the type
// expressions of ts, resolved through the imports of the declaring files.
func collectImports(ts *TypeSpec, imps map[string]string) error {
	add := func(owner *TypeSpec, expr string) error {
		names, err := qualifiers(expr)
		if err != nil {
			return genErrorf(owner.Pos, "%s: bad type expression %q: %v", owner.Name, expr, err)
		}
		for _, n := range names {
			if n == "lua" || n == "luabind" {
				continue
			}
			imp, ok := owner.Imports[n]
			if !ok {
				return genErrorf(owner.Pos, "%s: package %s of %q is not imported", owner.Name, n, expr)
			}
			if prev, ok := imps[n]; ok && prev != imp {
				return genErrorf(owner.Pos, "%s: package name %s refers to both %s and %s", owner.Name, n, prev, imp)
			}
			imps[n] = imp
		}
		return nil
	}
	exprs := func(owner *TypeSpec) []string {
		var res []string
		for _, f := range owner.Fields {
			res = append(res, f.Type)
		}
		for _, p := range owner.TypeParams {
			res = append(res, p.Constraint)
		}
		return res
	}

	owners := []*TypeSpec{ts}
	for _, v := range ts.Variants {
		owners = append(owners, v.Spec)
	}
	for _, owner := range owners {
		for _, e := range exprs(owner) {
			if err := add(owner, e); err != nil {
				return err
			}
		}
	}
	for _, m := range ts.Attrs.Impl {
		for _, p := range m.Params {
			if err := add(ts, p.Type); err != nil {
				return err
			}
		}
		if !m.ResultsKnown {
			continue
		}
		for _, r := range m.Results {
			if err := add(ts, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// qualifiers returns the package names selected in the type expression.
func qualifiers(expr string) ([]string, error) {
	e, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var res []string
	ast.Inspect(e, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if id, ok := sel.X.(*ast.Ident); ok && !seen[id.Name] {
			seen[id.Name] = true
			res = append(res, id.Name)
		}
		return false
	})
	return res, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OutputName returns the default generated file name of a package.
func OutputName(pkgName string) string {
	return pkgName + "_luagen.go"
}
