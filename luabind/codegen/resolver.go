package codegen

import (
	"go/types"
	"log/slog"

	"github.com/signadot/luagen/debug"
)

// ResolveSignatures checks the method specs of specs against the type
// checked package pkg and fills in result types that were not annotated.
//
// Receiver specs must name a method of the type, receiverless specs a
// package function; parameter counts must agree. Generic package functions
// are marked to be called instantiated with the type's parameters.
func ResolveSignatures(specs []*TypeSpec, pkg *types.Package, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	qual := func(p *types.Package) string {
		if p == pkg {
			return ""
		}
		return p.Name()
	}
	for _, ts := range specs {
		named, err := FindNamedType(pkg, ts.Name)
		if err != nil {
			return genErrorf(ts.Pos, "%s: %v", ts.Name, err)
		}
		for _, m := range ts.Attrs.Impl {
			if err := resolveMethod(ts, named, pkg, m, qual, log); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolveMethod(ts *TypeSpec, named *types.Named, pkg *types.Package, m *MethodSpec, qual types.Qualifier, log *slog.Logger) error {
	var recv types.Type = types.NewPointer(named)
	if types.IsInterface(named) {
		recv = named
	}
	var method *types.Func
	if sel := types.NewMethodSet(recv).Lookup(pkg, m.Name); sel != nil {
		method, _ = sel.Obj().(*types.Func)
	}
	var fn *types.Func
	if obj, err := FindObject(pkg, m.Name); err == nil {
		fn, _ = obj.(*types.Func)
	}

	var sig *types.Signature
	switch {
	case m.Receiver != ReceiverNone && method == nil && fn != nil:
		return genErrorf(m.Pos, "%s: %s is a package function; drop the self argument", ts.Name, m.Name)
	case m.Receiver != ReceiverNone && method == nil:
		return genErrorf(m.Pos, "%s: no method %s", ts.Name, m.Name)
	case m.Receiver == ReceiverNone && fn == nil && method != nil:
		return genErrorf(m.Pos, "%s: %s is a method; add a self argument", ts.Name, m.Name)
	case m.Receiver == ReceiverNone && fn == nil:
		return genErrorf(m.Pos, "%s: no package function %s", ts.Name, m.Name)
	case m.Receiver != ReceiverNone:
		sig = method.Type().(*types.Signature)
		if m.Receiver == ReceiverMutable && !types.IsInterface(named) {
			if _, ptr := sig.Recv().Type().(*types.Pointer); !ptr {
				log.Warn("mutable self on a value receiver; changes are lost", "type", ts.Name, "method", m.Name, "pos", m.Pos.String())
			}
		}
	default:
		sig = fn.Type().(*types.Signature)
		if n := sig.TypeParams().Len(); n > 0 {
			if n != len(ts.TypeParams) {
				return genErrorf(m.Pos, "%s: %s has %d type parameters, want %d", ts.Name, m.Name, n, len(ts.TypeParams))
			}
			m.Generic = true
		}
	}

	if sig.Variadic() {
		return genErrorf(m.Pos, "%s: variadic %s cannot be bound", ts.Name, m.Name)
	}
	params := sig.Params()
	if params.Len() != len(m.Params) {
		return genErrorf(m.Pos, "%s: %s takes %d arguments, the binding declares %d", ts.Name, m.Name, params.Len(), len(m.Params))
	}
	for i, p := range m.Params {
		if got := types.TypeString(params.At(i).Type(), qual); got != p.Type {
			log.Warn("argument type differs from declaration", "type", ts.Name, "method", m.Name, "index", i, "declared", p.Type, "actual", got)
		}
	}

	results := sig.Results()
	if m.ResultsKnown {
		if results.Len() != len(m.Results) {
			return genErrorf(m.Pos, "%s: %s returns %d values, the binding declares %d", ts.Name, m.Name, results.Len(), len(m.Results))
		}
		return nil
	}
	m.Results = make([]string, results.Len())
	for i := range m.Results {
		m.Results[i] = types.TypeString(results.At(i).Type(), qual)
	}
	m.ResultsKnown = true
	if debug.Resolve() {
		debug.Logf("resolved %s.%s: %v -> %v\n", ts.Name, m.Name, paramTypes(m), m.Results)
	}
	return nil
}
