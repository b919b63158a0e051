// Package bindtest holds types bound with luagen. Its tests run Lua scripts
// against the generated bindings in bindtest_luagen.go.
package bindtest

import (
	"fmt"
	"strings"

	"github.com/signadot/luagen/luabind"
	lua "github.com/yuin/gopher-lua"
)

//go:generate go run github.com/signadot/luagen/cmd/luagen

// Human is a record with a private field exposed through get=* and set=*.
//
//luagen:get=*, set=*, custom_impls=humanExtras
//luagen:impl=[Default() -> Human, Age(self) -> string, SetAge(&mut self, uint8)]
//luagen:impl=[Greet(self, string, string, uint8) -> string, Befriend(self, Human) -> string]
type Human struct {
	Name string
	age  uint8
}

func Default() Human {
	return Human{Name: "Nobody"}
}

func (h Human) Age() string {
	return fmt.Sprintf("%d years old", h.age)
}

func (h *Human) SetAge(age uint8) {
	h.age = age
}

func (h Human) Greet(greeting, punct string, times uint8) string {
	return strings.Repeat(greeting+" "+h.Name+punct, int(times))
}

func (h Human) Befriend(other Human) string {
	return h.Name + " and " + other.Name
}

func humanExtras(m *luabind.Methods[Human]) {
	m.Method("shout", func(L *lua.LState, this *Human) (int, error) {
		return luabind.Return(L, strings.ToUpper(this.Name))
	})
}

// Unnamed is a positional record indexed from 1 in Lua.
//
//luagen:tuple, get=*, set=*, custom_fields=unnamedFields
type Unnamed struct {
	A string
	B uint32
}

func unnamedFields(f *luabind.Fields[Unnamed]) {
	f.Get("len", func(L *lua.LState, this *Unnamed) (lua.LValue, error) {
		return luabind.Encode(L, len(this.A))
	})
}

// Marker is a unit type, published as a singleton.
//
//luagen:impl=[Hello() -> string]
type Marker struct{}

func Hello() string {
	return "hello"
}

// Celsius is a newtype bound as a one element tuple.
//
//luagen:bind, impl=[Fahrenheit(self) -> float64]
type Celsius float64

func (c Celsius) Fahrenheit() float64 {
	return float64(c)*9/5 + 32
}

// Optional is bound per instantiation.
//
//luagen:impl=[Some(T) -> Optional[T], Get(self) -> (T, error)]
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func (o Optional[T]) Get() (T, error) {
	if !o.Set {
		var zero T
		return zero, fmt.Errorf("optional value is not set")
	}
	return o.Value, nil
}

// Animal is a sum type. Its variants are the types implementing animal,
// in the order of their marker methods.
//
//luagen:impl=[Sound(self) -> string]
type Animal interface {
	animal()
	Sound() string
}

type AnimalPig struct{}

type AnimalDog string

type AnimalCat struct {
	Name string
	Age  uint8
}

func (AnimalPig) animal()  {}
func (AnimalDog) animal()  {}
func (*AnimalCat) animal() {}

func (AnimalPig) Sound() string { return "oink" }
func (d AnimalDog) Sound() string {
	return string(d) + " says woof"
}
func (c *AnimalCat) Sound() string {
	return c.Name + " says meow"
}

// Zoo holds a sum typed field and a record typed field.
//
//luagen:impl=[Loudest(self) -> Animal]
type Zoo struct {
	Keeper Human
	Star   Animal
}

func (z Zoo) Loudest() Animal {
	return z.Star
}

// Maybe is a generic sum type, bound once per instantiation.
//
//luagen:impl=[IsJust(self) -> bool]
type Maybe[T any] interface {
	maybe()
	IsJust() bool
}

type MaybeNone[T any] struct{}

//luagen:tuple
type MaybeJust[T any] struct {
	Value T
}

func (MaybeNone[T]) maybe()  {}
func (*MaybeJust[T]) maybe() {}

func (MaybeNone[T]) IsJust() bool  { return false }
func (*MaybeJust[T]) IsJust() bool { return true }
