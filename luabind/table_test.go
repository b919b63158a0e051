package luabind

import (
	"errors"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestSequence(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	tbl := L.NewTable()
	tbl.Append(lua.LString("a"))
	tbl.Append(lua.LNumber(1))

	vals, err := Sequence(tbl, "Unnamed", 2)
	if err != nil {
		t.Fatal(err)
	}
	if vals[0] != lua.LString("a") || vals[1] != lua.LNumber(1) {
		t.Errorf("unexpected values %v", vals)
	}

	_, err = Sequence(tbl, "Unnamed", 3)
	var ae *ArityError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ArityError, got %v", err)
	}
	if ae.Expected != 3 || ae.Received != 2 || ae.Context != "Unnamed" {
		t.Errorf("unexpected arity error %+v", ae)
	}
}

func TestVariantKey(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	if err := L.DoString(`v = {pig = true, off = false, dog = {"x"}, bad = 3}`); err != nil {
		t.Fatal(err)
	}
	tbl := L.GetGlobal("v").(*lua.LTable)

	tests := []struct {
		key       string
		shape     Shape
		wantOK    bool
		malformed bool
	}{
		{key: "pig", shape: ShapeUnit, wantOK: true},
		{key: "off", shape: ShapeUnit, wantOK: true},
		{key: "missing", shape: ShapeNamed},
		{key: "dog", shape: ShapePositional, wantOK: true},
		{key: "dog", shape: ShapeUnit, malformed: true},
		{key: "bad", shape: ShapeNamed, malformed: true},
		{key: "pig", shape: ShapePositional, malformed: true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"/"+tt.shape.String(), func(t *testing.T) {
			_, ok, err := VariantKey(tbl, "Animal", "V", tt.key, tt.shape)
			var me *MalformedVariantError
			if tt.malformed {
				if !errors.As(err, &me) {
					t.Fatalf("expected MalformedVariantError, got %v", err)
				}
				if me.Key != tt.key {
					t.Errorf("key = %q", me.Key)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestArgsArity(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	call := func(script string, fn func(L *lua.LState) error) error {
		L.SetGlobal("f", L.NewFunction(func(L *lua.LState) int {
			if err := fn(L); err != nil {
				raise(L, err)
			}
			return 0
		}))
		return L.DoString(script)
	}

	var (
		none  Unit
		one   string
		two   Tuple2[string, int]
		three Tuple3[string, int, bool]
	)
	err := call(`f()`, func(L *lua.LState) (err error) {
		none, err = Args[Unit](L, 1)
		return err
	})
	if err != nil || none != (Unit{}) {
		t.Errorf("unit: %v", err)
	}
	err = call(`f("x")`, func(L *lua.LState) (err error) {
		one, err = Args[string](L, 1)
		return err
	})
	if err != nil || one != "x" {
		t.Errorf("one: %q %v", one, err)
	}
	err = call(`f("x", 2)`, func(L *lua.LState) (err error) {
		two, err = Args[Tuple2[string, int]](L, 1)
		return err
	})
	if err != nil || two.V0 != "x" || two.V1 != 2 {
		t.Errorf("two: %+v %v", two, err)
	}
	err = call(`f("x", 2, true)`, func(L *lua.LState) (err error) {
		three, err = Args[Tuple3[string, int, bool]](L, 1)
		return err
	})
	if err != nil || three.V0 != "x" || three.V1 != 2 || !three.V2 {
		t.Errorf("three: %+v %v", three, err)
	}
	err = call(`f("x", 2)`, func(L *lua.LState) (err error) {
		three, err = Args[Tuple3[string, int, bool]](L, 1)
		return err
	})
	if err == nil {
		t.Error("expected arity error for 2 of 3 arguments")
	}
}

func TestTableLiteral(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	var got []bool
	L.SetGlobal("f", L.NewFunction(func(L *lua.LState) int {
		_, ok := TableLiteral(L, 1, 2)
		got = append(got, ok)
		return 0
	}))
	L.SetGlobal("g", L.NewFunction(func(L *lua.LState) int {
		_, ok := TableLiteral(L, 1, 1)
		got = append(got, ok)
		return 0
	}))
	if err := L.DoString(`f({"a", 1}); f("a", 1); f({"a", 1}, 2); g({20}); g(20); g()`); err != nil {
		t.Fatal(err)
	}
	want := []bool{true, false, false, true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: TableLiteral = %v, want %v", i, got[i], want[i])
		}
	}
}
