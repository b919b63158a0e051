// Package luabind is the runtime used by code generated by luagen to expose
// Go types to a gopher-lua state.
//
// # Usage
//
//	L := lua.NewState()
//	defer L.Close()
//	r := luabind.NewRegistry(L)
//	if err := luabind.RegisterAll(r, bindtest.RegisterHuman, bindtest.RegisterAnimal); err != nil {
//	    return err
//	}
//	err := L.DoString(`h = Human.default(); h:set_age(42)`)
//
// A bound type gets a Class: a metatable whose __index consults, in order,
// methods, field getters and static functions. Instances are userdata
// holding a *T, so mutating methods and setters act in place while getters,
// encoders and immutable methods work on copies.
//
// Conversions between Go and Lua values go through Encode and Decode. Types
// implementing Encoder and Decoder (all generated records) convert
// themselves; sum interfaces register converters with Class.Convert; every
// other value is converted structurally.
//
// Errors at the Lua boundary are ConversionError, ArityError,
// NoMatchingVariantError and MalformedVariantError values raised as Lua
// errors.
//
// # Related Packages
//
//   - github.com/signadot/luagen/luabind/codegen - Code generation
//   - github.com/signadot/luagen/cmd/luagen - Command line generator
package luabind
