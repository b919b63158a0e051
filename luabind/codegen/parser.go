package codegen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"reflect"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/signadot/luagen/debug"
)

// ParseFile parses a Go source file and returns its AST.
func ParseFile(fset *token.FileSet, filename string) (*ast.File, error) {
	file, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %q: %w", filename, err)
	}
	return file, nil
}

type declared struct {
	spec *ast.TypeSpec
	doc  *ast.CommentGroup
	file *ast.File
	path string
}

type markerImpl struct {
	typeName string
	pointer  bool
}

type declIndex struct {
	types   map[string]*declared
	order   []string
	markers map[string][]markerImpl
}

func indexFiles(files []*ast.File, paths []string) *declIndex {
	idx := &declIndex{
		types:   map[string]*declared{},
		markers: map[string][]markerImpl{},
	}
	for i, file := range files {
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}
				for _, spec := range d.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					doc := ts.Doc
					if doc == nil && len(d.Specs) == 1 {
						doc = d.Doc
					}
					idx.types[ts.Name.Name] = &declared{spec: ts, doc: doc, file: file, path: paths[i]}
					idx.order = append(idx.order, ts.Name.Name)
				}
			case *ast.FuncDecl:
				if m, name, ok := markerDecl(d); ok {
					idx.markers[name] = append(idx.markers[name], m)
				}
			}
		}
	}
	return idx
}

// markerDecl recognizes an unexported method with no parameters and no
// results, the form of a sum type marker implementation.
func markerDecl(fd *ast.FuncDecl) (markerImpl, string, bool) {
	if fd.Recv == nil || len(fd.Recv.List) != 1 || ast.IsExported(fd.Name.Name) {
		return markerImpl{}, "", false
	}
	if fd.Type.Params.NumFields() != 0 || fd.Type.Results.NumFields() != 0 {
		return markerImpl{}, "", false
	}
	var m markerImpl
	expr := fd.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		m.pointer = true
		expr = star.X
	}
	switch x := expr.(type) {
	case *ast.IndexExpr:
		expr = x.X
	case *ast.IndexListExpr:
		expr = x.X
	}
	id, ok := expr.(*ast.Ident)
	if !ok {
		return markerImpl{}, "", false
	}
	m.typeName = id.Name
	return m, fd.Name.Name, true
}

// ExtractTypes extracts all type declarations carrying luagen directives
// from one file.
func ExtractTypes(fset *token.FileSet, file *ast.File, filePath string) ([]*TypeSpec, error) {
	return ExtractPackage(fset, []*ast.File{file}, []string{filePath})
}

// ExtractPackage extracts the directive carrying declarations of a package,
// in file then source order. Sum type variants may be declared in any of
// the files. A variant whose only directive is the tuple flag is bound
// through its sum type alone.
func ExtractPackage(fset *token.FileSet, files []*ast.File, paths []string) ([]*TypeSpec, error) {
	idx := indexFiles(files, paths)
	var specs []*TypeSpec
	for _, name := range idx.order {
		d := idx.types[name]
		text, ok := DirectiveText(d.doc)
		if !ok {
			continue
		}
		pos := fset.Position(d.spec.Name.Pos())
		attrs, err := ParseAttributes(text, name, pos)
		if err != nil {
			return nil, err
		}
		ts, err := buildSpec(fset, idx, d, attrs)
		if err != nil {
			return nil, err
		}
		if debug.Parse() {
			debug.Logf("parsed %s %s: %d fields, %d variants, %d impls\n",
				ts.Kind, ts.Name, len(ts.Fields), len(ts.Variants), len(attrs.Impl))
		}
		specs = append(specs, ts)
	}
	return dropShapeOnly(specs), nil
}

// dropShapeOnly removes the sum type variants whose directive only marks
// them as tuples.
func dropShapeOnly(specs []*TypeSpec) []*TypeSpec {
	variants := map[string]bool{}
	for _, ts := range specs {
		for _, v := range ts.Variants {
			variants[v.TypeName] = true
		}
	}
	res := specs[:0]
	for _, ts := range specs {
		if variants[ts.Name] && shapeOnly(ts.Attrs) {
			continue
		}
		res = append(res, ts)
	}
	return res
}

func shapeOnly(a *Attributes) bool {
	return a.Tuple && !a.Bind && a.Alias == "" && len(a.Impl) == 0 &&
		a.CustomFields == "" && a.CustomImpls == "" && len(a.Variants) == 0 &&
		a.Get.IsDefault() && a.Set.IsDefault()
}

func buildSpec(fset *token.FileSet, idx *declIndex, d *declared, attrs *Attributes) (*TypeSpec, error) {
	name := d.spec.Name.Name
	ts := &TypeSpec{
		Name:     name,
		Package:  d.file.Name.Name,
		FilePath: d.path,
		Pos:      fset.Position(d.spec.Name.Pos()),
		Attrs:    attrs,
		Imports:  ExtractImports(d.file),
		Comments: ExtractComments(d.doc),
	}
	if d.spec.Assign.IsValid() {
		return nil, genErrorf(ts.Pos, "%s: type aliases cannot be bound", name)
	}
	ts.TypeParams = typeParams(d.spec)

	if it, ok := d.spec.Type.(*ast.InterfaceType); ok {
		if err := buildSum(fset, idx, ts, it); err != nil {
			return nil, err
		}
		return ts, nil
	}
	if len(attrs.Variants) > 0 {
		return nil, genErrorf(ts.Pos, "%s: variants applies to sum types only", name)
	}
	if err := shapeOf(fset, ts, d.spec.Type, attrs.Tuple); err != nil {
		return nil, err
	}
	return ts, nil
}

func shapeOf(fset *token.FileSet, ts *TypeSpec, expr ast.Expr, tuple bool) error {
	switch t := expr.(type) {
	case *ast.StructType:
		fields, err := extractFields(fset, t)
		if err != nil {
			return fmt.Errorf("failed to extract fields from struct %q: %w", ts.Name, err)
		}
		ts.Fields = fields
		switch {
		case len(fields) == 0:
			ts.Kind = KindUnit
		case tuple:
			ts.Kind = KindTuple
		default:
			ts.Kind = KindRecord
		}
	case *ast.InterfaceType:
		return genErrorf(ts.Pos, "%s: an interface cannot be a variant payload", ts.Name)
	case *ast.FuncType, *ast.ChanType:
		return genErrorf(ts.Pos, "%s: %s types cannot be bound", ts.Name, kindWord(t))
	default:
		ts.Kind = KindTuple
		ts.Newtype = true
		ts.Fields = []*Field{{
			Index:  0,
			Type:   types.ExprString(expr),
			Access: AccessExported,
			Pos:    fset.Position(expr.Pos()),
		}}
	}
	return nil
}

func kindWord(expr ast.Expr) string {
	if _, ok := expr.(*ast.FuncType); ok {
		return "function"
	}
	return "channel"
}

func buildSum(fset *token.FileSet, idx *declIndex, ts *TypeSpec, it *ast.InterfaceType) error {
	marker := markerMethod(it)
	if marker == "" {
		return genErrorf(ts.Pos, "%s: an interface is bound as a sum type only when sealed by an unexported marker method", ts.Name)
	}
	if ts.Attrs.Tuple {
		return genErrorf(ts.Pos, "%s: tuple applies to structs only", ts.Name)
	}
	ts.Kind = KindSum
	ts.Marker = marker

	impls := map[string]markerImpl{}
	var names []string
	for _, m := range idx.markers[marker] {
		if _, ok := idx.types[m.typeName]; !ok {
			continue
		}
		impls[m.typeName] = m
		names = append(names, m.typeName)
	}
	if len(ts.Attrs.Variants) > 0 {
		for _, n := range ts.Attrs.Variants {
			if _, ok := impls[n]; !ok {
				return genErrorf(ts.Pos, "%s: variant %s does not implement %s", ts.Name, n, marker)
			}
		}
		names = ts.Attrs.Variants
	}
	if len(names) == 0 {
		return genErrorf(ts.Pos, "%s: no types implement %s", ts.Name, marker)
	}

	keys := map[string]string{}
	for _, n := range names {
		vd := idx.types[n]
		vs := &TypeSpec{
			Name:     n,
			Package:  vd.file.Name.Name,
			FilePath: vd.path,
			Pos:      fset.Position(vd.spec.Name.Pos()),
			Imports:  ExtractImports(vd.file),
		}
		vs.TypeParams = typeParams(vd.spec)
		if !sameTypeParams(ts.TypeParams, vs.TypeParams) {
			if len(ts.TypeParams) == 0 {
				return genErrorf(vs.Pos, "%s: variant %s cannot be generic", ts.Name, n)
			}
			return genErrorf(vs.Pos, "%s: variant %s must declare the type parameters %s", ts.Name, n, ts.TypeParamList())
		}
		if err := shapeOf(fset, vs, vd.spec.Type, variantIsTuple(vd.doc)); err != nil {
			return err
		}
		vname := n
		if rest, ok := strings.CutPrefix(n, ts.Name); ok && rest != "" {
			vname = rest
		}
		v := &Variant{
			Name:     vname,
			Key:      strings.ToLower(vname),
			TypeName: n,
			Pointer:  impls[n].pointer,
			Spec:     vs,
		}
		if other, ok := keys[v.Key]; ok {
			return genErrorf(ts.Pos, "%s: variants %s and %s share the key %q", ts.Name, other, n, v.Key)
		}
		keys[v.Key] = n
		ts.Variants = append(ts.Variants, v)
	}
	return nil
}

// sameTypeParams reports whether a variant declares exactly the type
// parameters of its sum type, so that both are instantiated together.
func sameTypeParams(sum, variant []*TypeParam) bool {
	if len(sum) != len(variant) {
		return false
	}
	for i, p := range sum {
		if p.Name != variant[i].Name || p.Constraint != variant[i].Constraint {
			return false
		}
	}
	return true
}

func variantIsTuple(doc *ast.CommentGroup) bool {
	text, ok := DirectiveText(doc)
	if !ok {
		return false
	}
	items, err := SplitAttributes(text, token.Position{})
	if err != nil {
		return false
	}
	for _, item := range items {
		if item == "tuple" {
			return true
		}
	}
	return false
}

func markerMethod(it *ast.InterfaceType) string {
	for _, m := range it.Methods.List {
		ft, ok := m.Type.(*ast.FuncType)
		if !ok || len(m.Names) != 1 {
			continue
		}
		name := m.Names[0].Name
		if ast.IsExported(name) || ft.Params.NumFields() != 0 || ft.Results.NumFields() != 0 {
			continue
		}
		return name
	}
	return ""
}

func typeParams(spec *ast.TypeSpec) []*TypeParam {
	if spec.TypeParams == nil {
		return nil
	}
	var res []*TypeParam
	for _, f := range spec.TypeParams.List {
		constraint := types.ExprString(f.Type)
		for _, n := range f.Names {
			res = append(res, &TypeParam{Name: n.Name, Constraint: constraint})
		}
	}
	return res
}

func extractFields(fset *token.FileSet, st *ast.StructType) ([]*Field, error) {
	var fields []*Field
	if st.Fields == nil {
		return fields, nil
	}
	for _, f := range st.Fields.List {
		tag, err := luaTag(f)
		if err != nil {
			return nil, &ParseError{Pos: fset.Position(f.Pos()), Msg: "malformed lua tag", Err: err}
		}
		if _, omit := tag["-"]; omit {
			continue
		}
		typ := types.ExprString(f.Type)
		names := make([]string, 0, len(f.Names))
		for _, n := range f.Names {
			names = append(names, n.Name)
		}
		embedded := len(names) == 0
		if embedded {
			name, err := embeddedName(f.Type)
			if err != nil {
				return nil, genErrorf(fset.Position(f.Pos()), "%v", err)
			}
			names = append(names, name)
		}
		for _, name := range names {
			if name == "_" {
				continue
			}
			pos := fset.Position(f.Pos())
			access, err := accessOf(name, tag["access"], pos)
			if err != nil {
				return nil, err
			}
			key := tag["name"]
			if key == "" {
				key = strcase.ToSnake(name)
			}
			fields = append(fields, &Field{
				Name:     name,
				Index:    len(fields),
				Key:      key,
				Type:     typ,
				Access:   access,
				Embedded: embedded,
				Pos:      pos,
			})
		}
	}
	return fields, nil
}

func luaTag(f *ast.Field) (map[string]string, error) {
	if f.Tag == nil {
		return map[string]string{}, nil
	}
	raw, err := strconv.Unquote(f.Tag.Value)
	if err != nil {
		return nil, err
	}
	return ParseLuaTag(reflect.StructTag(raw).Get("lua"))
}

func accessOf(name, declared string, pos token.Position) (AccessLevel, error) {
	if ast.IsExported(name) {
		return AccessExported, nil
	}
	switch declared {
	case "", "private":
		return AccessPrivate, nil
	case "internal", "crate":
		return AccessInternal, nil
	case "parent", "super":
		return AccessParent, nil
	}
	return 0, parseErrorf(pos, "field %s: unrecognized access %q", name, declared)
}

func embeddedName(expr ast.Expr) (string, error) {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, nil
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name, nil
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	}
	return "", fmt.Errorf("unsupported embedded field type %s", types.ExprString(expr))
}

// ExtractImports extracts imports from an AST file.
// Returns a map of package name -> import path.
func ExtractImports(file *ast.File) map[string]string {
	imports := make(map[string]string)
	for _, imp := range file.Imports {
		var name string
		path := strings.Trim(imp.Path.Value, "\"")

		if imp.Name != nil {
			name = imp.Name.Name
		} else {
			name = assumedName(path)
		}
		if name == "_" || name == "." {
			continue
		}
		imports[name] = path
	}
	return imports
}

// assumedName guesses the package name of an import path the way goimports
// does: the last element, skipping a major version, without a "go-" prefix
// or anything after a dot or dash.
func assumedName(path string) string {
	parts := strings.Split(path, "/")
	name := parts[len(parts)-1]
	if len(parts) > 1 && isMajorVersion(name) {
		name = parts[len(parts)-2]
	}
	name = strings.TrimPrefix(name, "go-")
	if i := strings.IndexAny(name, ".-"); i > 0 {
		name = name[:i]
	}
	return name
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}

// ExtractComments returns the lines of a doc comment, without comment
// markers and directive lines.
func ExtractComments(doc *ast.CommentGroup) []string {
	var comments []string
	if doc == nil {
		return comments
	}
	for _, c := range doc.List {
		if strings.HasPrefix(c.Text, DirectivePrefix) {
			continue
		}
		text := strings.TrimPrefix(c.Text, "//")
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				comments = append(comments, line)
			}
		}
	}
	return comments
}
