package codegen

import (
	"bytes"
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const resolveSrc = `package p

//luagen:impl=[Age(self), SetAge(&mut self, uint8), Rename(mut self, string), NewHuman(string), Pick(self, int) -> int]
type Human struct {
	Name string
	age  uint8
}

func (h Human) Age() (string, error) { return "", nil }
func (h *Human) SetAge(a uint8)     { h.age = a }
func (h Human) Rename(n string)     { h.Name = n }
func (h Human) Pick(i int) int      { return i }

func NewHuman(name string) *Human { return &Human{Name: name} }

//luagen:impl=[Some(T) -> Optional[T]]
type Optional[T any] struct {
	Value T
}

func Some[T any](v T) Optional[T] { return Optional[T]{Value: v} }

//luagen:impl=[Sound(self)]
type Animal interface {
	animal()
	Sound() string
}

type AnimalPig struct{}

func (AnimalPig) animal()       {}
func (AnimalPig) Sound() string { return "oink" }
`

func typeCheck(t *testing.T, src string) ([]*TypeSpec, *types.Package) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "p.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	pkg, err := (&types.Config{}).Check("example.com/p", fset, []*ast.File{file}, nil)
	if err != nil {
		t.Fatalf("type check failed: %v", err)
	}
	specs, err := ExtractTypes(fset, file, "p.go")
	if err != nil {
		t.Fatalf("ExtractTypes failed: %v", err)
	}
	return specs, pkg
}

func TestResolveSignatures(t *testing.T) {
	specs, pkg := typeCheck(t, resolveSrc)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	if err := ResolveSignatures(specs, pkg, log); err != nil {
		t.Fatalf("ResolveSignatures failed: %v", err)
	}

	human := specs[0].Attrs.Impl
	if diff := cmp.Diff([]string{"string", "error"}, human[0].Results); diff != "" {
		t.Errorf("Age results mismatch (-want +got):\n%s", diff)
	}
	if !human[0].ReturnsError() {
		t.Error("Age returns an error")
	}
	if !human[1].ResultsKnown || len(human[1].Results) != 0 {
		t.Errorf("SetAge results = %v", human[1].Results)
	}
	if diff := cmp.Diff([]string{"*Human"}, human[3].Results); diff != "" {
		t.Errorf("NewHuman results mismatch (-want +got):\n%s", diff)
	}
	if human[3].Generic {
		t.Error("NewHuman is not generic")
	}

	some := specs[1].Attrs.Impl[0]
	if !some.Generic {
		t.Error("Some must be marked generic")
	}

	sound := specs[2].Attrs.Impl[0]
	if diff := cmp.Diff([]string{"string"}, sound.Results); diff != "" {
		t.Errorf("Sound results mismatch (-want +got):\n%s", diff)
	}

	out := buf.String()
	if !strings.Contains(out, "mutable self on a value receiver") || !strings.Contains(out, "method=Rename") {
		t.Errorf("expected a warning for Rename, got %q", out)
	}
	if strings.Contains(out, "method=SetAge") {
		t.Errorf("SetAge has a pointer receiver, got %q", out)
	}
}

func TestResolveSignatures_Errors(t *testing.T) {
	tests := []struct {
		name string
		impl string
	}{
		{"Missing method", "Fly(self)"},
		{"Method bound as function", "Age()"},
		{"Function bound as method", "NewHuman(self, string)"},
		{"Argument count", "SetAge(&mut self)"},
		{"Result count", "Pick(self, int) -> (int, error)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := strings.Replace(resolveSrc,
				"//luagen:impl=[Age(self), SetAge(&mut self, uint8), Rename(mut self, string), NewHuman(string), Pick(self, int) -> int]",
				"//luagen:impl=["+tt.impl+"]", 1)
			specs, pkg := typeCheck(t, src)
			err := ResolveSignatures(specs, pkg, slog.New(slog.DiscardHandler))
			var ge *GenerationError
			if !errors.As(err, &ge) {
				t.Fatalf("expected GenerationError, got %v", err)
			}
		})
	}
}

func TestResolveSignatures_UnknownType(t *testing.T) {
	specs, pkg := typeCheck(t, resolveSrc)
	specs[0].Name = "Ghost"
	err := ResolveSignatures(specs, pkg, slog.New(slog.DiscardHandler))
	var ge *GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if !strings.Contains(err.Error(), `"Ghost" not found in package example.com/p`) {
		t.Errorf("unexpected error %v", err)
	}
}
