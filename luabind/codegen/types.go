package codegen

import (
	"go/token"
	"log/slog"
	"strings"
)

// Kind is the shape of a bound declaration.
type Kind int

const (
	// KindRecord is a struct with named fields.
	KindRecord Kind = iota
	// KindTuple is a struct bound positionally, or a defined non-struct type.
	KindTuple
	// KindUnit is a struct with no fields.
	KindUnit
	// KindSum is a sealed interface whose variants are package types.
	KindSum
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindTuple:
		return "tuple"
	case KindUnit:
		return "unit"
	case KindSum:
		return "sum"
	}
	return "unknown"
}

// AccessLevel is the declared access of a field, from most to least visible.
type AccessLevel int

const (
	AccessExported AccessLevel = iota
	AccessInternal
	AccessParent
	AccessPrivate
)

func (a AccessLevel) String() string {
	switch a {
	case AccessExported:
		return "exported"
	case AccessInternal:
		return "internal"
	case AccessParent:
		return "parent"
	case AccessPrivate:
		return "private"
	}
	return "unknown"
}

// ReceiverKind is how a method spec receives its instance.
type ReceiverKind int

const (
	// ReceiverNone binds a package function.
	ReceiverNone ReceiverKind = iota
	// ReceiverImmutable binds a method called on a copy of the instance.
	ReceiverImmutable
	// ReceiverMutable binds a method called on the instance itself.
	ReceiverMutable
)

func (r ReceiverKind) String() string {
	switch r {
	case ReceiverNone:
		return "none"
	case ReceiverImmutable:
		return "immutable"
	case ReceiverMutable:
		return "mutable"
	}
	return "unknown"
}

// TypeSpec holds a parsed declaration carrying luagen directives.
type TypeSpec struct {
	// Name is the declared type name
	Name string

	// Package is the package name this type belongs to
	Package string

	// FilePath is the path to the source file containing this type
	FilePath string

	// Pos is the position of the type name
	Pos token.Position

	Kind Kind

	// TypeParams are the generic parameters, in order
	TypeParams []*TypeParam

	// Fields of a record or tuple, in declaration order
	Fields []*Field

	// Newtype is set for a defined non-struct type bound as a one field tuple
	Newtype bool

	// Variants of a sum type, in declaration order
	Variants []*Variant

	// Marker is the unexported method sealing a sum type
	Marker string

	// Attrs holds the parsed directives
	Attrs *Attributes

	// Imports maps package names to import paths for the declaring file
	Imports map[string]string

	// Comments contains the doc comment lines without directives
	Comments []string
}

// TypeParam is one generic parameter of a TypeSpec.
type TypeParam struct {
	Name       string
	Constraint string
}

// Instance returns the type as written inside its own generic scope, for
// example "Optional[T]".
func (ts *TypeSpec) Instance() string {
	if len(ts.TypeParams) == 0 {
		return ts.Name
	}
	return ts.Name + "[" + ts.typeArgs() + "]"
}

// TypeParamList returns the declaration form of the type parameters, for
// example "[T any]", or "".
func (ts *TypeSpec) TypeParamList() string {
	if len(ts.TypeParams) == 0 {
		return ""
	}
	parts := make([]string, len(ts.TypeParams))
	for i, p := range ts.TypeParams {
		parts[i] = p.Name + " " + p.Constraint
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// TypeArgList returns "[T]" for a generic type and "" otherwise.
func (ts *TypeSpec) TypeArgList() string {
	if len(ts.TypeParams) == 0 {
		return ""
	}
	return "[" + ts.typeArgs() + "]"
}

func (ts *TypeSpec) typeArgs() string {
	names := make([]string, len(ts.TypeParams))
	for i, p := range ts.TypeParams {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

// GlobalName returns the default Lua global of the type.
func (ts *TypeSpec) GlobalName() string {
	if ts.Attrs != nil && ts.Attrs.Alias != "" {
		return ts.Attrs.Alias
	}
	return ts.Name
}

// Field holds one field of a record or tuple.
type Field struct {
	// Name is the Go field name, empty for the field of a newtype
	Name string

	// Index is the position among bound fields
	Index int

	// Key is the Lua key of a named field
	Key string

	// Type is the Go type expression of the field
	Type string

	Access AccessLevel

	// Embedded indicates if this is an embedded field
	Embedded bool

	Pos token.Position
}

// Variant is one alternative of a sum type.
type Variant struct {
	// Name is the variant type name with the sum type name stripped
	Name string

	// Key is the reserved Lua key of the variant
	Key string

	// TypeName is the Go type implementing the marker
	TypeName string

	// Pointer is set when the marker has a pointer receiver
	Pointer bool

	// Spec is the payload declaration
	Spec *TypeSpec
}

// Shape returns the payload shape of the variant.
func (v *Variant) Shape() Kind {
	return v.Spec.Kind
}

// GoType returns the type stored in the sum interface, instantiated with
// the sum type's parameters.
func (v *Variant) GoType() string {
	if v.Pointer {
		return "*" + v.Spec.Instance()
	}
	return v.Spec.Instance()
}

// Attributes holds the directives of one declaration.
type Attributes struct {
	Bind         bool
	Alias        string
	Get          *VisibilitySpec
	Set          *VisibilitySpec
	Impl         []*MethodSpec
	CustomFields string
	CustomImpls  string
	Tuple        bool
	Variants     []string
	Pos          token.Position
}

// Param is one parameter of a MethodSpec.
type Param struct {
	Name string
	Type string
}

// MethodSpec describes one bound call.
type MethodSpec struct {
	// Name is the Go method or function name
	Name string

	// LuaName is the name the call is bound under
	LuaName string

	Params []*Param

	// Results holds the result types, valid when ResultsKnown
	Results      []string
	ResultsKnown bool

	Receiver ReceiverKind

	// Generic is set for package functions with type parameters, which are
	// called instantiated with the type's own parameters
	Generic bool

	Pos token.Position
}

// ReturnsError reports whether the last result is an error.
func (m *MethodSpec) ReturnsError() bool {
	return m.ResultsKnown && len(m.Results) > 0 && m.Results[len(m.Results)-1] == "error"
}

// Snippet is one named piece of generated code.
type Snippet struct {
	Key  string
	Code string
}

// BindingDescriptor holds the generated code for one TypeSpec.
type BindingDescriptor struct {
	Type *TypeSpec

	// Getters, Setters, Trampolines and Statics are statements inside the
	// register function, keyed by Lua name
	Getters     []Snippet
	Setters     []Snippet
	Trampolines []Snippet
	Statics     []Snippet

	// Register is the body of the register functions
	Register string

	// Helpers are top level declarations: encoders, decoders, constructors
	Helpers []Snippet
}

// Code returns the top level declarations of the descriptor.
func (bd *BindingDescriptor) Code() string {
	var b strings.Builder
	b.WriteString(bd.Register)
	for _, h := range bd.Helpers {
		b.WriteString("\n")
		b.WriteString(h.Code)
	}
	return b.String()
}

// PackageInfo holds information about a Go package
type PackageInfo struct {
	// Path is the package import path (e.g., "github.com/user/project/models")
	Path string

	// Dir is the directory containing the package
	Dir string

	// Name is the package name (e.g., "models")
	Name string

	// Files contains paths to all .go files in the package
	Files []string
}

// CodegenConfig holds configuration for code generation
type CodegenConfig struct {
	// OutputFile is the output file for generated Go code (default: <package>_luagen.go)
	OutputFile string

	// Dir is the directory to scan for Go files (default: current directory)
	Dir string

	// Recursive indicates whether to scan subdirectories recursively
	Recursive bool

	// Verify checks method specs against the type checked package
	Verify bool

	// Package is the current package being processed
	Package *PackageInfo

	// Logger receives warnings; nil means slog.Default()
	Logger *slog.Logger
}

func (c *CodegenConfig) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
