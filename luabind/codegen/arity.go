package codegen

import (
	"fmt"
	"go/token"
	"strings"
)

// MaxArgs is the largest arity the runtime has a tuple type for.
const MaxArgs = 6

// ArgAdapter is how generated code decodes N call arguments: the type
// passed to luabind.Args and one Go expression per argument.
type ArgAdapter struct {
	DecodeType string
	Access     []string
}

// AdaptArgs returns the adapter for arguments of the given types. No
// arguments decode as luabind.Unit, one as its own type, several as a
// luabind tuple.
func AdaptArgs(types []string, pos token.Position) (*ArgAdapter, error) {
	switch n := len(types); {
	case n == 0:
		return &ArgAdapter{DecodeType: "luabind.Unit"}, nil
	case n == 1:
		return &ArgAdapter{DecodeType: types[0], Access: []string{"args"}}, nil
	case n <= MaxArgs:
		access := make([]string, n)
		for i := range access {
			access[i] = fmt.Sprintf("args.V%d", i)
		}
		return &ArgAdapter{
			DecodeType: fmt.Sprintf("luabind.Tuple%d[%s]", n, strings.Join(types, ", ")),
			Access:     access,
		}, nil
	default:
		return nil, genErrorf(pos, "%d arguments exceed the maximum of %d", n, MaxArgs)
	}
}

// paramTypes returns the types of a method's parameters.
func paramTypes(m *MethodSpec) []string {
	res := make([]string, len(m.Params))
	for i, p := range m.Params {
		res[i] = p.Type
	}
	return res
}

// fieldTypes returns the types of fields.
func fieldTypes(fields []*Field) []string {
	res := make([]string, len(fields))
	for i, f := range fields {
		res[i] = f.Type
	}
	return res
}
