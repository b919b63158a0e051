package luabind

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	lua "github.com/yuin/gopher-lua"
)

// Getter reads a Lua value out of an instance. Getters return copies.
type Getter[T any] func(L *lua.LState, this *T) (lua.LValue, error)

// Setter writes a Lua value into an instance in place.
type Setter[T any] func(L *lua.LState, this *T, lv lua.LValue) error

// Method is the Go side of a method called as obj:name(...). The method's
// own arguments start at stack index 2.
type Method[T any] func(L *lua.LState, this *T) (int, error)

// Function is a static function; its arguments start at stack index 1.
type Function func(L *lua.LState) (int, error)

// Constructor builds a T from the call arguments starting at base.
type Constructor[T any] func(L *lua.LState, base int) (T, error)

// Class is the Lua class of the Go type T. Instances are userdata holding a
// *T with the class metatable.
type Class[T any] struct {
	reg  *Registry
	name string
	typ  reflect.Type
	meta *lua.LTable

	Fields  *Fields[T]
	Methods *Methods[T]
	Statics *Statics

	variants []variant[T]
}

type variant[T any] struct {
	name string
	ctor Constructor[T]
	unit func() T
}

// NewClass creates the class of T in r, replacing any earlier one.
func NewClass[T any](r *Registry, name string) *Class[T] {
	L := r.L
	c := &Class[T]{
		reg:  r,
		name: name,
		typ:  typeOf[T](),
		meta: L.NewTable(),
		Fields: &Fields[T]{
			getters:  map[string]Getter[T]{},
			setters:  map[string]Setter[T]{},
			igetters: map[int]Getter[T]{},
			isetters: map[int]Setter[T]{},
		},
		Statics: &Statics{L: L, tbl: L.NewTable()},
	}
	c.Methods = &Methods[T]{class: c, fns: map[string]*lua.LFunction{}}
	c.meta.RawSetString("__name", lua.LString(name))
	c.meta.RawSetString("__index", L.NewFunction(c.index))
	c.meta.RawSetString("__newindex", L.NewFunction(c.newindex))
	c.meta.RawSetString("__tostring", L.NewFunction(c.tostring))
	r.classes[c.typ] = c
	return c
}

// ClassOf returns the class of T registered in r.
func ClassOf[T any](r *Registry) (*Class[T], bool) {
	c, ok := r.classes[typeOf[T]()].(*Class[T])
	return c, ok
}

func classFor[T any](L *lua.LState) (*Class[T], error) {
	r, err := FromState(L)
	if err != nil {
		return nil, err
	}
	c, ok := ClassOf[T](r)
	if !ok {
		return nil, &ConversionError{Message: fmt.Sprintf("type %s is not registered", typeOf[T]())}
	}
	return c, nil
}

// Name returns the class name used in error messages.
func (c *Class[T]) Name() string {
	return c.name
}

// NewInstance wraps a copy of v in a userdata of T's class.
func NewInstance[T any](L *lua.LState, v T) (lua.LValue, error) {
	c, err := classFor[T](L)
	if err != nil {
		return nil, err
	}
	return c.instance(L, v), nil
}

// InstanceOf returns the Go value held by a userdata of T's class.
func InstanceOf[T any](lv lua.LValue) (*T, bool) {
	ud, ok := lv.(*lua.LUserData)
	if !ok {
		return nil, false
	}
	p, ok := ud.Value.(*T)
	return p, ok && p != nil
}

func (c *Class[T]) instance(L *lua.LState, v T) *lua.LUserData {
	p := new(T)
	*p = v
	ud := L.NewUserData()
	ud.Value = p
	L.SetMetatable(ud, c.meta)
	return ud
}

func (c *Class[T]) self(L *lua.LState, what string) (*T, error) {
	lv := L.Get(1)
	p, ok := InstanceOf[T](lv)
	if !ok {
		return nil, &ConversionError{
			FieldPath: c.name + "." + what,
			Expected:  "userdata(" + c.name + ")",
			Received:  Describe(lv),
		}
	}
	return p, nil
}

func (c *Class[T]) index(L *lua.LState) int {
	switch k := L.Get(2).(type) {
	case lua.LString:
		key := string(k)
		if fn, ok := c.Methods.fns[key]; ok {
			L.Push(fn)
			return 1
		}
		if g, ok := c.Fields.getters[key]; ok {
			return c.get(L, key, g)
		}
		L.Push(c.Statics.tbl.RawGetString(key))
		return 1
	case lua.LNumber:
		if g, ok := c.Fields.igetters[int(k)]; ok && lua.LNumber(int(k)) == k {
			return c.get(L, k.String(), g)
		}
		if c.Fields.indexed() {
			raise(L, fmt.Errorf("%s: invalid index %s", c.name, k))
		}
	}
	L.Push(lua.LNil)
	return 1
}

func (c *Class[T]) get(L *lua.LState, key string, g Getter[T]) int {
	p, err := c.self(L, key)
	if err != nil {
		raise(L, err)
		return 0
	}
	lv, err := g(L, p)
	if err != nil {
		raise(L, err)
		return 0
	}
	L.Push(lv)
	return 1
}

func (c *Class[T]) newindex(L *lua.LState) int {
	var (
		s   Setter[T]
		ok  bool
		key = L.Get(2)
	)
	switch k := key.(type) {
	case lua.LString:
		s, ok = c.Fields.setters[string(k)]
	case lua.LNumber:
		s, ok = c.Fields.isetters[int(k)]
		if !ok && c.Fields.indexed() {
			raise(L, fmt.Errorf("%s: invalid index %s", c.name, k))
			return 0
		}
	}
	if !ok {
		raise(L, fmt.Errorf("field %s of %s is not settable", key.String(), c.name))
		return 0
	}
	p, err := c.self(L, key.String())
	if err != nil {
		raise(L, err)
		return 0
	}
	if err := s(L, p, L.Get(3)); err != nil {
		raise(L, err)
	}
	return 0
}

func (c *Class[T]) tostring(L *lua.LState) int {
	p, err := c.self(L, "__tostring")
	if err != nil {
		raise(L, err)
		return 0
	}
	L.Push(lua.LString(fmt.Sprintf("%s(%+v)", c.name, *p)))
	return 1
}

func (c *Class[T]) call(ctor Constructor[T], base int) lua.LGFunction {
	return func(L *lua.LState) int {
		v, err := ctor(L, base)
		if err != nil {
			raise(L, err)
			return 0
		}
		L.Push(c.instance(L, v))
		return 1
	}
}

// Publish sets the global name. Without statics the global is the
// constructor. With statics it is the statics table, callable through
// __call, and the same table is also published as the companion name.
func (c *Class[T]) Publish(name string, ctor Constructor[T]) error {
	if name == "" {
		return fmt.Errorf("luabind: empty global name for %s", c.name)
	}
	if ctor == nil {
		return fmt.Errorf("luabind: nil constructor for %s", c.name)
	}
	L := c.reg.L
	if c.Statics.Len() == 0 {
		c.reg.SetGlobal(name, L.NewFunction(c.call(ctor, 1)))
		return nil
	}
	ns := c.Statics.Table()
	mt := L.NewTable()
	mt.RawSetString("__call", L.NewFunction(c.call(ctor, 2)))
	L.SetMetatable(ns, mt)
	c.reg.SetGlobal(name, ns)
	c.reg.SetGlobal(name+CompanionSuffix, ns)
	return nil
}

// PublishUnit sets the global name to the singleton instance of a unit type.
// Statics, if any, live only in the companion name.
func (c *Class[T]) PublishUnit(name string) error {
	if name == "" {
		return fmt.Errorf("luabind: empty global name for %s", c.name)
	}
	var zero T
	c.reg.SetGlobal(name, c.instance(c.reg.L, zero))
	if c.Statics.Len() > 0 {
		c.reg.SetGlobal(name+CompanionSuffix, c.Statics.Table())
	}
	return nil
}

// Variant adds a constructor function to the namespace table of a sum type.
func (c *Class[T]) Variant(name string, ctor Constructor[T]) {
	c.variants = append(c.variants, variant[T]{name: name, ctor: ctor})
}

// UnitVariant adds a unit variant; each read of the namespace key yields a
// fresh instance.
func (c *Class[T]) UnitVariant(name string, mk func() T) {
	c.variants = append(c.variants, variant[T]{name: name, unit: mk})
}

// PublishSum sets the global name to the namespace table of a sum type: its
// variant constructors and statics, with unit variants served by __index.
func (c *Class[T]) PublishSum(name string) error {
	if name == "" {
		return fmt.Errorf("luabind: empty global name for %s", c.name)
	}
	L := c.reg.L
	ns := L.NewTable()
	units := map[string]func() T{}
	for _, v := range c.variants {
		if v.unit != nil {
			units[v.name] = v.unit
			continue
		}
		ns.RawSetString(v.name, L.NewFunction(c.call(v.ctor, 1)))
	}
	c.Statics.tbl.ForEach(func(k, v lua.LValue) {
		ns.RawSet(k, v)
	})
	if len(units) > 0 {
		mt := L.NewTable()
		mt.RawSetString("__index", L.NewFunction(func(L *lua.LState) int {
			if k, ok := L.Get(2).(lua.LString); ok {
				if mk, ok := units[string(k)]; ok {
					L.Push(c.instance(L, mk()))
					return 1
				}
			}
			L.Push(lua.LNil)
			return 1
		}))
		L.SetMetatable(ns, mt)
	}
	c.reg.SetGlobal(name, ns)
	return nil
}

// Convert registers enc and dec as the converters of T. It is used for
// interface types, which cannot implement Encoder and Decoder themselves.
// Each sample's dynamic type is also routed to enc.
func (c *Class[T]) Convert(
	enc func(L *lua.LState, v T) (lua.LValue, error),
	dec func(L *lua.LState, lv lua.LValue) (T, error),
	samples ...T,
) {
	cv := &converter{
		name: c.name,
		encode: func(L *lua.LState, rv reflect.Value) (lua.LValue, error) {
			v, ok := rv.Interface().(T)
			if !ok {
				return nil, &ConversionError{Expected: c.name, Received: rv.Type().String()}
			}
			return enc(L, v)
		},
		decode: func(L *lua.LState, lv lua.LValue) (reflect.Value, error) {
			v, err := dec(L, lv)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(&v).Elem(), nil
		},
	}
	c.reg.decoders[c.typ] = cv
	c.reg.encoders[c.typ] = cv
	for _, s := range samples {
		c.reg.encoders[reflect.TypeOf(s)] = cv
	}
}

// Fields holds the per-key accessors of a class. Numeric keys index
// positional fields from 1.
type Fields[T any] struct {
	getters  map[string]Getter[T]
	setters  map[string]Setter[T]
	igetters map[int]Getter[T]
	isetters map[int]Setter[T]
}

// Get installs (or replaces) the getter of key.
func (f *Fields[T]) Get(key string, g Getter[T]) {
	f.getters[key] = g
}

// Set installs (or replaces) the setter of key.
func (f *Fields[T]) Set(key string, s Setter[T]) {
	f.setters[key] = s
}

// GetIndex installs the getter of position i (1-based).
func (f *Fields[T]) GetIndex(i int, g Getter[T]) {
	f.igetters[i] = g
}

// SetIndex installs the setter of position i (1-based).
func (f *Fields[T]) SetIndex(i int, s Setter[T]) {
	f.isetters[i] = s
}

// Keys returns the keys with a getter, sorted.
func (f *Fields[T]) Keys() []string {
	return slices.Sorted(maps.Keys(f.getters))
}

func (f *Fields[T]) indexed() bool {
	return len(f.igetters) > 0 || len(f.isetters) > 0
}

// Methods holds the methods of a class.
type Methods[T any] struct {
	class *Class[T]
	fns   map[string]*lua.LFunction
}

// Method installs a method that receives a copy of the instance.
func (m *Methods[T]) Method(name string, fn Method[T]) {
	m.install(name, fn, false)
}

// MethodMut installs a method that receives the instance itself.
func (m *Methods[T]) MethodMut(name string, fn Method[T]) {
	m.install(name, fn, true)
}

// Function installs a static function in the class statics.
func (m *Methods[T]) Function(name string, fn Function) {
	m.class.Statics.Function(name, fn)
}

// Names returns the installed method names, sorted.
func (m *Methods[T]) Names() []string {
	return slices.Sorted(maps.Keys(m.fns))
}

func (m *Methods[T]) install(name string, fn Method[T], mut bool) {
	c := m.class
	m.fns[name] = c.reg.L.NewFunction(func(L *lua.LState) int {
		p, err := c.self(L, name)
		if err != nil {
			raise(L, err)
			return 0
		}
		if !mut {
			cp := *p
			p = &cp
		}
		n, err := fn(L, p)
		if err != nil {
			raise(L, err)
			return 0
		}
		return n
	})
}

// Statics is the table of a class's static functions.
type Statics struct {
	L   *lua.LState
	tbl *lua.LTable
}

// Function installs (or replaces) the static function name.
func (s *Statics) Function(name string, fn Function) {
	s.tbl.RawSetString(name, s.L.NewFunction(func(L *lua.LState) int {
		n, err := fn(L)
		if err != nil {
			raise(L, err)
			return 0
		}
		return n
	}))
}

// Len returns the number of static functions.
func (s *Statics) Len() int {
	n := 0
	s.tbl.ForEach(func(lua.LValue, lua.LValue) { n++ })
	return n
}

// Table returns the statics table.
func (s *Statics) Table() *lua.LTable {
	return s.tbl
}

func raise(L *lua.LState, err error) {
	L.RaiseError("%s", err.Error())
}
