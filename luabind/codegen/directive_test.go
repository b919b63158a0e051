package codegen

import (
	"errors"
	"go/ast"
	"go/token"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDirectiveText(t *testing.T) {
	doc := &ast.CommentGroup{List: []*ast.Comment{
		{Text: "// Human is a person."},
		{Text: "//luagen:get=*"},
		{Text: "//luagen:set=[name]"},
	}}
	got, ok := DirectiveText(doc)
	if !ok {
		t.Fatal("expected directives")
	}
	if want := "get=*,set=[name]"; got != want {
		t.Errorf("DirectiveText() = %q, want %q", got, want)
	}

	if _, ok := DirectiveText(&ast.CommentGroup{List: []*ast.Comment{{Text: "// luagen:get=*"}}}); ok {
		t.Error("a spaced comment is not a directive")
	}
	if _, ok := DirectiveText(nil); ok {
		t.Error("nil doc has no directives")
	}
}

func TestSplitAttributes(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{
			name: "Simple",
			in:   "bind, name=Person",
			want: []string{"bind", "name=Person"},
		},
		{
			name: "Brackets",
			in:   "get=[a, b], impl=[F(self, int) -> (int, error), G()]",
			want: []string{"get=[a, b]", "impl=[F(self, int) -> (int, error), G()]"},
		},
		{
			name: "Empty items",
			in:   ",get=*,,",
			want: []string{"get=*"},
		},
		{
			name:    "Unbalanced",
			in:      "get=[a, b",
			wantErr: true,
		},
		{
			name:    "Extra close",
			in:      "get=a]",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitAttributes(tt.in, token.Position{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitAttributes() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitAttributes() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseAttributes(t *testing.T) {
	a, err := ParseAttributes("name=Person, get=pub, set=[name], impl=[Age(self) -> string, NewHuman(string) as create]", "Human", token.Position{})
	if err != nil {
		t.Fatalf("ParseAttributes failed: %v", err)
	}
	if a.Alias != "Person" {
		t.Errorf("Alias = %q, want Person", a.Alias)
	}
	if a.Get.Level != VisExported {
		t.Errorf("Get = %v, want exported", a.Get.Level)
	}
	if a.Set.Level != VisExplicit || len(a.Set.Allow) != 1 || a.Set.Allow[0] != "name" {
		t.Errorf("Set = %+v, want [name]", a.Set)
	}
	if len(a.Impl) != 2 {
		t.Fatalf("expected 2 impls, got %d", len(a.Impl))
	}
	if a.Impl[0].Receiver != ReceiverImmutable || a.Impl[0].LuaName != "age" {
		t.Errorf("impl 0 = %+v", a.Impl[0])
	}
	if a.Impl[1].Receiver != ReceiverNone || a.Impl[1].LuaName != "create" {
		t.Errorf("impl 1 = %+v", a.Impl[1])
	}
}

func TestParseAttributes_Defaults(t *testing.T) {
	a, err := ParseAttributes("bind", "T", token.Position{})
	if err != nil {
		t.Fatalf("ParseAttributes failed: %v", err)
	}
	if !a.Bind {
		t.Error("expected bind flag")
	}
	if a.Get.Level != VisParent || a.Set.Level != VisParent {
		t.Errorf("default visibility = %v/%v, want parent", a.Get.Level, a.Set.Level)
	}
}

func TestParseAttributes_ImplRepeats(t *testing.T) {
	a, err := ParseAttributes("impl=[A(self)],impl=B()", "T", token.Position{})
	if err != nil {
		t.Fatalf("ParseAttributes failed: %v", err)
	}
	if len(a.Impl) != 2 {
		t.Errorf("expected impl lists to accumulate, got %d", len(a.Impl))
	}
}

func TestParseAttributes_Errors(t *testing.T) {
	tests := []string{
		"get=sometimes",
		"bogus=1",
		"bind=yes",
		"name=not an identifier",
		"name",
		"get=*, get=none",
		"custom_fields=1fields",
		"variants=A",
		"impl=[F(self, ))]",
		"impl=[F(int, self)]",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParseAttributes(in, "T", token.Position{Filename: "t.go", Line: 3, Column: 6})
			if err == nil {
				t.Fatalf("expected an error for %q", in)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected a ParseError, got %T: %v", err, err)
			}
			if pe.Pos.Line != 3 {
				t.Errorf("error position = %v, want line 3", pe.Pos)
			}
		})
	}
}
