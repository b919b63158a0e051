package luabind

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Unit is the argument type of calls that take no values.
type Unit struct{}

// Tuple2 through Tuple6 carry the decoded arguments of calls taking several
// values. The largest supported arity is MaxTuple.
type Tuple2[A, B any] struct {
	V0 A
	V1 B
}

type Tuple3[A, B, C any] struct {
	V0 A
	V1 B
	V2 C
}

type Tuple4[A, B, C, D any] struct {
	V0 A
	V1 B
	V2 C
	V3 D
}

type Tuple5[A, B, C, D, E any] struct {
	V0 A
	V1 B
	V2 C
	V3 D
	V4 E
}

type Tuple6[A, B, C, D, E, F any] struct {
	V0 A
	V1 B
	V2 C
	V3 D
	V4 E
	V5 F
}

// MaxTuple is the largest number of values a Tuple type carries.
const MaxTuple = 6

type tuple interface {
	arity() int
	decodeFrom(L *lua.LState, vals []lua.LValue) error
}

func argPath(i int) string {
	return fmt.Sprintf("argument %d", i+1)
}

func (t *Tuple2[A, B]) arity() int { return 2 }

func (t *Tuple2[A, B]) decodeFrom(L *lua.LState, vals []lua.LValue) error {
	if err := DecodeField(L, vals[0], argPath(0), &t.V0); err != nil {
		return err
	}
	return DecodeField(L, vals[1], argPath(1), &t.V1)
}

func (t *Tuple3[A, B, C]) arity() int { return 3 }

func (t *Tuple3[A, B, C]) decodeFrom(L *lua.LState, vals []lua.LValue) error {
	if err := DecodeField(L, vals[0], argPath(0), &t.V0); err != nil {
		return err
	}
	if err := DecodeField(L, vals[1], argPath(1), &t.V1); err != nil {
		return err
	}
	return DecodeField(L, vals[2], argPath(2), &t.V2)
}

func (t *Tuple4[A, B, C, D]) arity() int { return 4 }

func (t *Tuple4[A, B, C, D]) decodeFrom(L *lua.LState, vals []lua.LValue) error {
	if err := DecodeField(L, vals[0], argPath(0), &t.V0); err != nil {
		return err
	}
	if err := DecodeField(L, vals[1], argPath(1), &t.V1); err != nil {
		return err
	}
	if err := DecodeField(L, vals[2], argPath(2), &t.V2); err != nil {
		return err
	}
	return DecodeField(L, vals[3], argPath(3), &t.V3)
}

func (t *Tuple5[A, B, C, D, E]) arity() int { return 5 }

func (t *Tuple5[A, B, C, D, E]) decodeFrom(L *lua.LState, vals []lua.LValue) error {
	if err := DecodeField(L, vals[0], argPath(0), &t.V0); err != nil {
		return err
	}
	if err := DecodeField(L, vals[1], argPath(1), &t.V1); err != nil {
		return err
	}
	if err := DecodeField(L, vals[2], argPath(2), &t.V2); err != nil {
		return err
	}
	if err := DecodeField(L, vals[3], argPath(3), &t.V3); err != nil {
		return err
	}
	return DecodeField(L, vals[4], argPath(4), &t.V4)
}

func (t *Tuple6[A, B, C, D, E, F]) arity() int { return 6 }

func (t *Tuple6[A, B, C, D, E, F]) decodeFrom(L *lua.LState, vals []lua.LValue) error {
	if err := DecodeField(L, vals[0], argPath(0), &t.V0); err != nil {
		return err
	}
	if err := DecodeField(L, vals[1], argPath(1), &t.V1); err != nil {
		return err
	}
	if err := DecodeField(L, vals[2], argPath(2), &t.V2); err != nil {
		return err
	}
	if err := DecodeField(L, vals[3], argPath(3), &t.V3); err != nil {
		return err
	}
	if err := DecodeField(L, vals[4], argPath(4), &t.V4); err != nil {
		return err
	}
	return DecodeField(L, vals[5], argPath(5), &t.V5)
}

// Args decodes the call arguments starting at stack index base into a T.
// Several arguments decode into a Tuple type, a single one into its own
// type.
func Args[T any](L *lua.LState, base int) (T, error) {
	var v T
	if _, ok := any(v).(Unit); ok {
		return v, nil
	}
	if t, ok := any(&v).(tuple); ok {
		vals, err := Stack(L, base, t.arity())
		if err != nil {
			return v, err
		}
		return v, t.decodeFrom(L, vals)
	}
	vals, err := Stack(L, base, 1)
	if err != nil {
		return v, err
	}
	return v, DecodeField(L, vals[0], argPath(0), &v)
}

// Stack returns the n values starting at stack index base, or an ArityError
// if fewer were passed.
func Stack(L *lua.LState, base, n int) ([]lua.LValue, error) {
	got := max(L.GetTop()-base+1, 0)
	if got < n {
		return nil, &ArityError{Context: "call arguments", Expected: n, Received: got}
	}
	vals := make([]lua.LValue, n)
	for i := range vals {
		vals[i] = L.Get(base + i)
	}
	return vals, nil
}

// TableLiteral reports whether a call of n positional values was written
// as a single table, as in T{a, b}. For n == 1 the table is ambiguous with
// an argument that is itself a table; generated constructors try it only
// after the argument failed to decode.
func TableLiteral(L *lua.LState, base, n int) (*lua.LTable, bool) {
	if n < 1 || L.GetTop() != base {
		return nil, false
	}
	tbl, ok := L.Get(base).(*lua.LTable)
	return tbl, ok
}

// Return encodes vs and pushes them as the results of a Go function.
func Return(L *lua.LState, vs ...any) (int, error) {
	for _, v := range vs {
		lv, err := Encode(L, v)
		if err != nil {
			return 0, err
		}
		L.Push(lv)
	}
	return len(vs), nil
}
