// Package codegen generates gopher-lua bindings for Go types.
//
// Types opt in with directive comments:
//
//	//luagen:get=*, set=[name], impl=[Age(self) -> string, SetAge(mut self, uint8)]
//	type Human struct {
//		Name string
//		age  uint8
//	}
//
// Structs become records (or tuples with the tuple flag, or units when
// they have no fields), defined non-struct types become one field tuples,
// and interfaces sealed by an unexported marker method become sum types
// whose variants are the package types implementing the marker. A generic
// sum type requires its variants to declare the same type parameters:
//
//	//luagen:bind
//	type Maybe[T any] interface{ maybe() }
//
//	type MaybeNone[T any] struct{}
//
//	//luagen:tuple
//	type MaybeJust[T any] struct{ Value T }
//
// A variant whose only directive is tuple is not bound on its own.
//
// Generated code appears in <package>_luagen.go files with Register<T>
// and Register<T>As functions, EncodeLua, DecodeLua and LuaTable methods,
// and for sum types the package functions Encode<T>, Decode<T> and
// <T>LuaTable.
//
// # Related Packages
//
//   - github.com/signadot/luagen/luabind - Runtime used by generated code
//   - github.com/signadot/luagen/cmd/luagen - Command line generator
package codegen
