package luabind

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	lua "github.com/yuin/gopher-lua"
)

type point struct {
	X      int
	Y      int `lua:"name=why"`
	Label  string
	hidden int
	Skip   bool `lua:"-"`
}

func TestEncodeScalars(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	tests := []struct {
		name string
		in   any
		want lua.LValue
	}{
		{name: "nil", in: nil, want: lua.LNil},
		{name: "bool", in: true, want: lua.LTrue},
		{name: "int", in: 42, want: lua.LNumber(42)},
		{name: "uint8", in: uint8(7), want: lua.LNumber(7)},
		{name: "float", in: 1.5, want: lua.LNumber(1.5)},
		{name: "string", in: "hi", want: lua.LString("hi")},
		{name: "bytes", in: []byte("raw"), want: lua.LString("raw")},
		{name: "nil pointer", in: (*int)(nil), want: lua.LNil},
		{name: "lua value", in: lua.LString("as is"), want: lua.LString("as is")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(L, tt.in)
			if err != nil {
				t.Fatalf("Encode(%v): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Encode(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeNumbers(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if v, err := Decode[uint8](L, lua.LNumber(200)); err != nil || v != 200 {
		t.Errorf("Decode[uint8](200) = %d, %v", v, err)
	}
	if v, err := Decode[int64](L, lua.LNumber(-12)); err != nil || v != -12 {
		t.Errorf("Decode[int64](-12) = %d, %v", v, err)
	}
	if v, err := Decode[float32](L, lua.LNumber(0.5)); err != nil || v != 0.5 {
		t.Errorf("Decode[float32](0.5) = %v, %v", v, err)
	}

	bad := []struct {
		name string
		fn   func() error
		want string
	}{
		{"fraction", func() error { _, err := Decode[int](L, lua.LNumber(1.5)); return err }, "expected int, got number"},
		{"overflow", func() error { _, err := Decode[uint8](L, lua.LNumber(300)); return err }, "out of range"},
		{"negative", func() error { _, err := Decode[uint](L, lua.LNumber(-1)); return err }, "out of range"},
		{"string", func() error { _, err := Decode[int](L, lua.LString("1")); return err }, "got string"},
		{"nil", func() error { _, err := Decode[uint32](L, lua.LNil); return err }, "got nil"},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			var ce *ConversionError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConversionError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestDecodeStringAndBool(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	s, err := Decode[string](L, lua.LNumber(42))
	if err != nil || s != "42" {
		t.Errorf("Decode[string](42) = %q, %v", s, err)
	}
	if _, err := Decode[bool](L, lua.LNumber(1)); err == nil {
		t.Error("expected error decoding a number as bool")
	}
	b, err := Decode[bool](L, lua.LFalse)
	if err != nil || b {
		t.Errorf("Decode[bool](false) = %v, %v", b, err)
	}
}

func TestCollections(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	lv, err := Encode(L, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	tbl, ok := lv.(*lua.LTable)
	if !ok || tbl.Len() != 3 || tbl.RawGetInt(2) != lua.LString("b") {
		t.Fatalf("unexpected sequence %v", lv)
	}
	got, err := Decode[[]string](L, tbl)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("slice round trip (-want +got):\n%s", diff)
	}

	m := map[string]int{"one": 1, "two": 2}
	lv, err = Encode(L, m)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Decode[map[string]int](L, lv)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(m, back); diff != "" {
		t.Errorf("map round trip (-want +got):\n%s", diff)
	}

	arr, err := Decode[[2]int](L, tbl)
	if err == nil {
		t.Errorf("expected length error decoding 3 values into [2]int, got %v", arr)
	}

	bad := L.NewTable()
	bad.Append(lua.LNumber(1))
	bad.Append(lua.LString("x"))
	_, err = Decode[[]int](L, bad)
	if err == nil || !strings.Contains(err.Error(), "[2]") {
		t.Errorf("expected error at element [2], got %v", err)
	}
}

func TestStructFallback(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	p := point{X: 1, Y: 2, Label: "p", hidden: 3, Skip: true}
	lv, err := Encode(L, p)
	if err != nil {
		t.Fatal(err)
	}
	tbl := lv.(*lua.LTable)
	if tbl.RawGetString("x") != lua.LNumber(1) {
		t.Errorf("x = %v", tbl.RawGetString("x"))
	}
	if tbl.RawGetString("why") != lua.LNumber(2) {
		t.Errorf("why = %v", tbl.RawGetString("why"))
	}
	if tbl.RawGetString("skip") != lua.LNil || tbl.RawGetString("hidden") != lua.LNil {
		t.Error("omitted fields were encoded")
	}

	back, err := Decode[point](L, tbl)
	if err != nil {
		t.Fatal(err)
	}
	want := point{X: 1, Y: 2, Label: "p"}
	if diff := cmp.Diff(want, back, cmp.AllowUnexported(point{})); diff != "" {
		t.Errorf("struct round trip (-want +got):\n%s", diff)
	}

	tbl.RawSetString("x", lua.LString("one"))
	_, err = Decode[point](L, tbl)
	if err == nil || !strings.Contains(err.Error(), "conversion error at x") {
		t.Errorf("expected error at x, got %v", err)
	}
}

func TestDecodeAny(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(`v = {name = "n", tags = {"a", "b"}, n = 2}`); err != nil {
		t.Fatal(err)
	}
	got, err := Decode[any](L, L.GetGlobal("v"))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"name": "n",
		"tags": []any{"a", "b"},
		"n":    float64(2),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode[any] (-want +got):\n%s", diff)
	}
}

func TestPointers(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	p, err := Decode[*int](L, lua.LNil)
	if err != nil || p != nil {
		t.Errorf("Decode[*int](nil) = %v, %v", p, err)
	}
	p, err = Decode[*int](L, lua.LNumber(5))
	if err != nil || p == nil || *p != 5 {
		t.Errorf("Decode[*int](5) = %v, %v", p, err)
	}
	n := 9
	lv, err := Encode(L, &n)
	if err != nil || lv != lua.LNumber(9) {
		t.Errorf("Encode(&9) = %v, %v", lv, err)
	}
}
