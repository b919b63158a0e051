package codegen

import (
	"errors"
	"go/token"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseImpl(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []*Call
	}{
		{
			name: "Single call",
			src:  "Age(self)",
			want: []*Call{{Name: "Age", Args: []string{"self"}}},
		},
		{
			name: "List with results and alias",
			src:  "[Age(self) -> string, SetAge(&mut self, uint8), NewHuman(name string) -> (Human, error) as create]",
			want: []*Call{
				{Name: "Age", Args: []string{"self"}, Results: []string{"string"}, HasResults: true},
				{Name: "SetAge", Args: []string{"&mut self", "uint8"}},
				{Name: "NewHuman", Args: []string{"name string"}, Results: []string{"Human", "error"}, HasResults: true, Alias: "create"},
			},
		},
		{
			name: "Composite types",
			src:  "[Merge(self, map[string][]int, func(int) error) -> ()]",
			want: []*Call{
				{Name: "Merge", Args: []string{"self", "map[string][]int", "func(int) error"}, HasResults: true},
			},
		},
		{
			name: "Generic result",
			src:  "[Get(self) -> Optional[T] as get]",
			want: []*Call{
				{Name: "Get", Args: []string{"self"}, Results: []string{"Optional[T]"}, HasResults: true, Alias: "get"},
			},
		},
		{
			name: "Extra commas",
			src:  "[, A(), , B(),]",
			want: []*Call{{Name: "A"}, {Name: "B"}},
		},
		{
			name: "Empty list",
			src:  "[]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseImpl(tt.src, token.Position{})
			if err != nil {
				t.Fatalf("ParseImpl(%q) failed: %v", tt.src, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseImpl(%q) mismatch (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func TestParseImpl_Errors(t *testing.T) {
	for _, src := range []string{
		"Age",
		"Age(self",
		"[Age(self)",
		"Age(self) Name()",
		"[Age(self) -]",
		"[Age(self) ->]",
		"[Age(self) as]",
		"[Age(self,)]",
		"Age(self)]",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := ParseImpl(src, token.Position{})
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("ParseImpl(%q) error = %v, want ParseError", src, err)
			}
		})
	}
}

func TestNewMethodSpec_Receivers(t *testing.T) {
	tests := []struct {
		arg  string
		want ReceiverKind
	}{
		{"self", ReceiverImmutable},
		{"&self", ReceiverImmutable},
		{"& self", ReceiverImmutable},
		{"mut self", ReceiverMutable},
		{"&mut self", ReceiverMutable},
		{"& mut  self", ReceiverMutable},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			m, err := NewMethodSpec(&Call{Name: "Touch", Args: []string{tt.arg, "int"}}, "Human")
			if err != nil {
				t.Fatalf("NewMethodSpec failed: %v", err)
			}
			if m.Receiver != tt.want {
				t.Errorf("receiver = %v, want %v", m.Receiver, tt.want)
			}
			if len(m.Params) != 1 || m.Params[0].Type != "int" {
				t.Errorf("self must be consumed, params = %v", m.Params)
			}
		})
	}
}

func TestNewMethodSpec_Free(t *testing.T) {
	m, err := NewMethodSpec(&Call{Name: "NewHuman", Args: []string{"name: string", "uint8"}}, "Human")
	if err != nil {
		t.Fatalf("NewMethodSpec failed: %v", err)
	}
	if m.Receiver != ReceiverNone {
		t.Errorf("receiver = %v, want none", m.Receiver)
	}
	want := []*Param{{Name: "name", Type: "string"}, {Type: "uint8"}}
	if diff := cmp.Diff(want, m.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if m.LuaName != "new" {
		t.Errorf("LuaName = %q, want new", m.LuaName)
	}
}

func TestNewMethodSpec_Errors(t *testing.T) {
	for _, args := range [][]string{
		{"int", "self"},
		{"int)"},
		{"map[string"},
	} {
		_, err := NewMethodSpec(&Call{Name: "F", Args: args}, "T")
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("NewMethodSpec(%v) error = %v, want ParseError", args, err)
		}
	}
}

func TestLuaName(t *testing.T) {
	tests := []struct {
		call *Call
		rk   ReceiverKind
		want string
	}{
		{&Call{Name: "SetAge"}, ReceiverMutable, "set_age"},
		{&Call{Name: "NewHuman"}, ReceiverNone, "new"},
		{&Call{Name: "HumanFromJSON"}, ReceiverNone, "from_json"},
		{&Call{Name: "Human"}, ReceiverNone, "human"},
		{&Call{Name: "HumanName"}, ReceiverImmutable, "human_name"},
		{&Call{Name: "NewHuman", Alias: "make"}, ReceiverNone, "make"},
	}
	for _, tt := range tests {
		if got := luaName(tt.call, "Human", tt.rk); got != tt.want {
			t.Errorf("luaName(%s, %v) = %q, want %q", tt.call.Name, tt.rk, got, tt.want)
		}
	}
}
