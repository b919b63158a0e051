package luabind

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
	lua "github.com/yuin/gopher-lua"
)

// Encoder is implemented by types with a generated (or hand written) Lua
// representation.
type Encoder interface {
	EncodeLua(L *lua.LState) (lua.LValue, error)
}

// Decoder is implemented by pointers to types that decode themselves from a
// Lua value.
type Decoder interface {
	DecodeLua(L *lua.LState, lv lua.LValue) error
}

// converter pairs the encode and decode functions registered for a type
// that cannot carry methods (sum interfaces).
type converter struct {
	name   string
	encode func(L *lua.LState, v reflect.Value) (lua.LValue, error)
	decode func(L *lua.LState, lv lua.LValue) (reflect.Value, error)
}

var (
	encoderType = reflect.TypeOf((*Encoder)(nil)).Elem()
	decoderType = reflect.TypeOf((*Decoder)(nil)).Elem()
	lvalueType  = reflect.TypeOf((*lua.LValue)(nil)).Elem()
)

// Encode converts a Go value to a Lua value. Bound types go through their
// class; other values are converted structurally, always producing a copy.
func Encode(L *lua.LState, v any) (lua.LValue, error) {
	if v == nil {
		return lua.LNil, nil
	}
	return encodeValue(L, reflect.ValueOf(v), "")
}

func reflectValue(v any) reflect.Value {
	if v == nil {
		return reflect.Value{}
	}
	return reflect.ValueOf(v)
}

// Decode converts a Lua value to a T.
func Decode[T any](L *lua.LState, lv lua.LValue) (T, error) {
	var v T
	err := DecodeInto(L, lv, &v)
	return v, err
}

// DecodeInto converts a Lua value into *dst.
func DecodeInto[T any](L *lua.LState, lv lua.LValue, dst *T) error {
	return decodeValue(L, lv, reflect.ValueOf(dst).Elem(), "")
}

// DecodeField is DecodeInto with path used in error messages.
func DecodeField[T any](L *lua.LState, lv lua.LValue, path string, dst *T) error {
	return decodeValue(L, lv, reflect.ValueOf(dst).Elem(), path)
}

func registryOf(L *lua.LState) *Registry {
	r, err := FromState(L)
	if err != nil {
		return nil
	}
	return r
}

func encodeValue(L *lua.LState, val reflect.Value, path string) (lua.LValue, error) {
	if !val.IsValid() {
		return lua.LNil, nil
	}
	typ := val.Type()
	if val.Kind() == reflect.Interface && val.IsNil() {
		return lua.LNil, nil
	}
	if typ.Implements(lvalueType) && val.CanInterface() {
		return val.Interface().(lua.LValue), nil
	}
	if r := registryOf(L); r != nil {
		if c, ok := r.encoders[typ]; ok {
			return c.encode(L, val)
		}
	}
	if typ.Implements(encoderType) && val.CanInterface() {
		if (val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface) && val.IsNil() {
			return lua.LNil, nil
		}
		return val.Interface().(Encoder).EncodeLua(L)
	}
	if typ.Kind() != reflect.Pointer && reflect.PointerTo(typ).Implements(encoderType) && val.CanInterface() {
		p := reflect.New(typ)
		p.Elem().Set(val)
		return p.Interface().(Encoder).EncodeLua(L)
	}

	switch typ.Kind() {
	case reflect.Bool:
		return lua.LBool(val.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(float64(val.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return lua.LNumber(float64(val.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(val.Float()), nil
	case reflect.String:
		return lua.LString(val.String()), nil
	case reflect.Slice:
		if val.IsNil() {
			return lua.LNil, nil
		}
		if typ.Elem().Kind() == reflect.Uint8 {
			return lua.LString(val.Bytes()), nil
		}
		return encodeSequence(L, val, path)
	case reflect.Array:
		return encodeSequence(L, val, path)
	case reflect.Map:
		if val.IsNil() {
			return lua.LNil, nil
		}
		tbl := L.CreateTable(0, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			k, err := encodeValue(L, iter.Key(), path)
			if err != nil {
				return nil, err
			}
			if k == lua.LNil {
				continue
			}
			v, err := encodeValue(L, iter.Value(), fmt.Sprintf("%s[%v]", path, iter.Key()))
			if err != nil {
				return nil, err
			}
			tbl.RawSet(k, v)
		}
		return tbl, nil
	case reflect.Pointer, reflect.Interface:
		if val.IsNil() {
			return lua.LNil, nil
		}
		return encodeValue(L, val.Elem(), path)
	case reflect.Struct:
		tbl := L.NewTable()
		for i := 0; i < typ.NumField(); i++ {
			sf := typ.Field(i)
			key, ok := structKey(sf)
			if !ok {
				continue
			}
			v, err := encodeValue(L, val.Field(i), joinPath(path, key))
			if err != nil {
				return nil, err
			}
			tbl.RawSetString(key, v)
		}
		return tbl, nil
	}
	return nil, &ConversionError{
		FieldPath: path,
		Expected:  "a Lua-convertible value",
		Received:  typ.String(),
	}
}

func encodeSequence(L *lua.LState, val reflect.Value, path string) (lua.LValue, error) {
	n := val.Len()
	tbl := L.CreateTable(n, 0)
	for i := 0; i < n; i++ {
		v, err := encodeValue(L, val.Index(i), fmt.Sprintf("%s[%d]", path, i+1))
		if err != nil {
			return nil, err
		}
		tbl.RawSetInt(i+1, v)
	}
	return tbl, nil
}

func decodeValue(L *lua.LState, lv lua.LValue, val reflect.Value, path string) error {
	if lv == nil {
		lv = lua.LNil
	}
	typ := val.Type()
	if r := registryOf(L); r != nil {
		if c, ok := r.decoders[typ]; ok {
			v, err := c.decode(L, lv)
			if err != nil {
				return err
			}
			val.Set(v)
			return nil
		}
	}
	if val.CanAddr() && reflect.PointerTo(typ).Implements(decoderType) {
		return val.Addr().Interface().(Decoder).DecodeLua(L, lv)
	}
	if typ.Kind() == reflect.Interface && typ.NumMethod() == 0 {
		if x := toAny(lv); x != nil {
			val.Set(reflect.ValueOf(x))
		} else {
			val.Set(reflect.Zero(typ))
		}
		return nil
	}
	if reflect.TypeOf(lv).AssignableTo(typ) {
		val.Set(reflect.ValueOf(lv))
		return nil
	}

	switch typ.Kind() {
	case reflect.Bool:
		b, ok := lv.(lua.LBool)
		if !ok {
			return mismatch(path, "boolean", lv)
		}
		val.SetBool(bool(b))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := integral(lv)
		if !ok {
			return mismatch(path, typ.String(), lv)
		}
		if f < math.MinInt64 || f >= math.MaxInt64 || val.OverflowInt(int64(f)) {
			return outOfRange(path, typ, lv)
		}
		val.SetInt(int64(f))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		f, ok := integral(lv)
		if !ok {
			return mismatch(path, typ.String(), lv)
		}
		if f < 0 || f >= math.MaxUint64 || val.OverflowUint(uint64(f)) {
			return outOfRange(path, typ, lv)
		}
		val.SetUint(uint64(f))
		return nil
	case reflect.Float32, reflect.Float64:
		n, ok := lv.(lua.LNumber)
		if !ok {
			return mismatch(path, typ.String(), lv)
		}
		if val.OverflowFloat(float64(n)) {
			return outOfRange(path, typ, lv)
		}
		val.SetFloat(float64(n))
		return nil
	case reflect.String:
		switch x := lv.(type) {
		case lua.LString:
			val.SetString(string(x))
		case lua.LNumber:
			val.SetString(x.String())
		default:
			return mismatch(path, "string", lv)
		}
		return nil
	case reflect.Slice:
		if lv == lua.LNil {
			val.Set(reflect.Zero(typ))
			return nil
		}
		if s, ok := lv.(lua.LString); ok && typ.Elem().Kind() == reflect.Uint8 {
			val.Set(reflect.ValueOf([]byte(s)).Convert(typ))
			return nil
		}
		tbl, ok := lv.(*lua.LTable)
		if !ok {
			return mismatch(path, "table", lv)
		}
		n := tbl.Len()
		s := reflect.MakeSlice(typ, n, n)
		for i := 0; i < n; i++ {
			if err := decodeValue(L, tbl.RawGetInt(i+1), s.Index(i), fmt.Sprintf("%s[%d]", path, i+1)); err != nil {
				return err
			}
		}
		val.Set(s)
		return nil
	case reflect.Array:
		tbl, ok := lv.(*lua.LTable)
		if !ok {
			return mismatch(path, "table", lv)
		}
		if tbl.Len() != typ.Len() {
			return &ConversionError{
				FieldPath: path,
				Expected:  fmt.Sprintf("sequence of %d values", typ.Len()),
				Received:  fmt.Sprintf("sequence of %d values", tbl.Len()),
			}
		}
		for i := 0; i < typ.Len(); i++ {
			if err := decodeValue(L, tbl.RawGetInt(i+1), val.Index(i), fmt.Sprintf("%s[%d]", path, i+1)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		if lv == lua.LNil {
			val.Set(reflect.Zero(typ))
			return nil
		}
		tbl, ok := lv.(*lua.LTable)
		if !ok {
			return mismatch(path, "table", lv)
		}
		m := reflect.MakeMapWithSize(typ, 0)
		var err error
		tbl.ForEach(func(k, v lua.LValue) {
			if err != nil {
				return
			}
			kv := reflect.New(typ.Key()).Elem()
			if err = decodeValue(L, k, kv, path); err != nil {
				return
			}
			vv := reflect.New(typ.Elem()).Elem()
			if err = decodeValue(L, v, vv, fmt.Sprintf("%s[%s]", path, k.String())); err != nil {
				return
			}
			m.SetMapIndex(kv, vv)
		})
		if err != nil {
			return err
		}
		val.Set(m)
		return nil
	case reflect.Pointer:
		if lv == lua.LNil {
			val.Set(reflect.Zero(typ))
			return nil
		}
		p := reflect.New(typ.Elem())
		if err := decodeValue(L, lv, p.Elem(), path); err != nil {
			return err
		}
		val.Set(p)
		return nil
	case reflect.Interface:
		if lv == lua.LNil {
			val.Set(reflect.Zero(typ))
			return nil
		}
		return &ConversionError{
			FieldPath: path,
			Message:   fmt.Sprintf("no Lua converter registered for %s", typ),
		}
	case reflect.Struct:
		if ud, ok := lv.(*lua.LUserData); ok {
			p := reflect.ValueOf(ud.Value)
			if p.Kind() == reflect.Pointer && p.Type().Elem() == typ && !p.IsNil() {
				val.Set(p.Elem())
				return nil
			}
		}
		tbl, ok := lv.(*lua.LTable)
		if !ok {
			return mismatch(path, "table", lv)
		}
		for i := 0; i < typ.NumField(); i++ {
			key, ok := structKey(typ.Field(i))
			if !ok {
				continue
			}
			if err := decodeValue(L, tbl.RawGetString(key), val.Field(i), joinPath(path, key)); err != nil {
				return err
			}
		}
		return nil
	}
	return &ConversionError{
		FieldPath: path,
		Message:   fmt.Sprintf("unsupported Go type %s", typ),
	}
}

func integral(lv lua.LValue) (float64, bool) {
	n, ok := lv.(lua.LNumber)
	if !ok {
		return 0, false
	}
	f := float64(n)
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	return f, true
}

func mismatch(path, expected string, lv lua.LValue) error {
	return &ConversionError{
		FieldPath: path,
		Expected:  expected,
		Received:  Describe(lv),
	}
}

func outOfRange(path string, typ reflect.Type, lv lua.LValue) error {
	return &ConversionError{
		FieldPath: path,
		Expected:  typ.String(),
		Received:  fmt.Sprintf("%s (out of range)", lv.String()),
	}
}

// Describe names the type of a Lua value for error messages. Userdata is
// described by the Go type it holds.
func Describe(lv lua.LValue) string {
	if ud, ok := lv.(*lua.LUserData); ok {
		return fmt.Sprintf("userdata(%T)", ud.Value)
	}
	return lv.Type().String()
}

func toAny(lv lua.LValue) any {
	switch x := lv.(type) {
	case lua.LBool:
		return bool(x)
	case lua.LNumber:
		return float64(x)
	case lua.LString:
		return string(x)
	case *lua.LTable:
		if n := x.Len(); n > 0 {
			s := make([]any, n)
			for i := range s {
				s[i] = toAny(x.RawGetInt(i + 1))
			}
			return s
		}
		m := map[string]any{}
		x.ForEach(func(k, v lua.LValue) {
			m[k.String()] = toAny(v)
		})
		return m
	case *lua.LUserData:
		return x.Value
	}
	if lv == lua.LNil {
		return nil
	}
	return lv
}

// structKey returns the Lua key of an exported struct field, honouring the
// `lua:"name=..."` and `lua:"-"` tags.
func structKey(sf reflect.StructField) (string, bool) {
	if !sf.IsExported() {
		return "", false
	}
	tag := sf.Tag.Get("lua")
	if tag == "-" {
		return "", false
	}
	for _, part := range strings.Split(tag, ",") {
		if name, ok := strings.CutPrefix(strings.TrimSpace(part), "name="); ok && name != "" {
			return name, true
		}
	}
	return strcase.ToSnake(sf.Name), true
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
