package luabind

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// TableOf returns lv as a table, or a ConversionError naming ctx.
func TableOf(lv lua.LValue, ctx string) (*lua.LTable, error) {
	tbl, ok := lv.(*lua.LTable)
	if !ok {
		return nil, &ConversionError{FieldPath: ctx, Expected: "table", Received: Describe(lv)}
	}
	return tbl, nil
}

// TableArg returns the call argument at base as a table.
func TableArg(L *lua.LState, base int, ctx string) (*lua.LTable, error) {
	return TableOf(L.Get(base), ctx)
}

// Sequence returns the first n values of the sequence part of tbl. It fails
// with an ArityError at the first missing value.
func Sequence(tbl *lua.LTable, ctx string, n int) ([]lua.LValue, error) {
	vals := make([]lua.LValue, n)
	for i := range vals {
		lv := tbl.RawGetInt(i + 1)
		if lv == lua.LNil {
			return nil, &ArityError{Context: ctx, Expected: n, Received: i}
		}
		vals[i] = lv
	}
	return vals, nil
}

// Shape is the payload shape of a sum type variant.
type Shape int

const (
	ShapeUnit Shape = iota
	ShapePositional
	ShapeNamed
)

func (s Shape) String() string {
	switch s {
	case ShapeUnit:
		return "unit"
	case ShapePositional:
		return "positional"
	case ShapeNamed:
		return "named"
	}
	return "unknown"
}

func (s Shape) expected() string {
	switch s {
	case ShapeUnit:
		return "boolean"
	case ShapePositional:
		return "sequence table"
	}
	return "table"
}

// VariantKey looks up the reserved key of one variant in tbl. A missing (nil)
// key is absent. A unit variant is selected by any boolean. A key that is
// present with a payload of the wrong shape fails with a MalformedVariantError.
func VariantKey(tbl *lua.LTable, typ, variant, key string, shape Shape) (lua.LValue, bool, error) {
	lv := tbl.RawGetString(key)
	if lv == lua.LNil {
		return lua.LNil, false, nil
	}
	ok := false
	switch shape {
	case ShapeUnit:
		_, ok = lv.(lua.LBool)
	default:
		_, ok = lv.(*lua.LTable)
	}
	if !ok {
		return nil, false, &MalformedVariantError{
			Type:     typ,
			Variant:  variant,
			Key:      key,
			Expected: shape.expected(),
			Received: Describe(lv),
		}
	}
	return lv, true, nil
}

// NamedTable builds a table mapping keys[i] to the encoding of vals[i].
func NamedTable(L *lua.LState, keys []string, vals ...any) (*lua.LTable, error) {
	if len(keys) != len(vals) {
		return nil, &ArityError{Context: "named table", Expected: len(keys), Received: len(vals)}
	}
	tbl := L.CreateTable(0, len(keys))
	for i, key := range keys {
		lv, err := encodeValue(L, reflectValue(vals[i]), key)
		if err != nil {
			return nil, err
		}
		tbl.RawSetString(key, lv)
	}
	return tbl, nil
}

// SequenceTable builds a sequence holding the encodings of vals.
func SequenceTable(L *lua.LState, vals ...any) (*lua.LTable, error) {
	tbl := L.CreateTable(len(vals), 0)
	for i, v := range vals {
		lv, err := encodeValue(L, reflectValue(v), fmt.Sprintf("[%d]", i+1))
		if err != nil {
			return nil, err
		}
		tbl.RawSetInt(i+1, lv)
	}
	return tbl, nil
}
