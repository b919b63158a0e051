package luabind

import (
	"errors"
	"log/slog"
	"reflect"
	"slices"

	lua "github.com/yuin/gopher-lua"
)

// CompanionSuffix is appended to a type's global name to form the companion
// namespace holding its static functions.
const CompanionSuffix = "_"

const registryKey = "luabind.registry"

var errNoRegistry = errors.New("luabind: no registry attached to this Lua state")

// Registry is the binding view of one Lua state's global namespace. Classes
// and converters registered through it are private to that state.
type Registry struct {
	L   *lua.LState
	log *slog.Logger

	classes  map[reflect.Type]any
	decoders map[reflect.Type]*converter
	encoders map[reflect.Type]*converter
	globals  []string
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration events.
func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// NewRegistry attaches a new Registry to L. A state holds at most one
// registry; a second call replaces the first.
func NewRegistry(L *lua.LState, opts ...Option) *Registry {
	r := &Registry{
		L:        L,
		log:      slog.Default(),
		classes:  map[reflect.Type]any{},
		decoders: map[reflect.Type]*converter{},
		encoders: map[reflect.Type]*converter{},
	}
	for _, opt := range opts {
		opt(r)
	}
	ud := L.NewUserData()
	ud.Value = r
	L.G.Registry.RawSetString(registryKey, ud)
	return r
}

// FromState returns the Registry attached to L (or to the main thread of a
// coroutine L).
func FromState(L *lua.LState) (*Registry, error) {
	ud, ok := L.G.Registry.RawGetString(registryKey).(*lua.LUserData)
	if !ok {
		return nil, errNoRegistry
	}
	r, ok := ud.Value.(*Registry)
	if !ok {
		return nil, errNoRegistry
	}
	return r, nil
}

// SetGlobal sets a global value and records its name.
func (r *Registry) SetGlobal(name string, v lua.LValue) {
	r.L.SetGlobal(name, v)
	if !slices.Contains(r.globals, name) {
		r.globals = append(r.globals, name)
	}
	r.log.Debug("registered lua global", "name", name, "type", v.Type().String())
}

// Globals returns the names set through SetGlobal, sorted.
func (r *Registry) Globals() []string {
	res := slices.Clone(r.globals)
	slices.Sort(res)
	return res
}

// RegisterFunc is the signature of the generated Register<T> functions.
type RegisterFunc func(*Registry) error

// RegisterAll calls each register function in order and stops at the first
// error.
func RegisterAll(r *Registry, fns ...RegisterFunc) error {
	for _, fn := range fns {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
