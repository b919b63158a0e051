package codegen

import (
	"fmt"
	"log/slog"
	"strings"
)

// BindRecord produces the bindings of a record, tuple or unit type.
func BindRecord(ts *TypeSpec, log *slog.Logger) (*BindingDescriptor, error) {
	if ts.Kind == KindSum {
		return nil, genErrorf(ts.Pos, "%s: BindRecord called on a sum type", ts.Name)
	}
	if log == nil {
		log = slog.Default()
	}
	getFields, err := ts.Attrs.Get.Resolve(ts.Kind, ts.Fields)
	if err != nil {
		return nil, err
	}
	setFields, err := ts.Attrs.Set.Resolve(ts.Kind, ts.Fields)
	if err != nil {
		return nil, err
	}

	bd := &BindingDescriptor{Type: ts}
	inst := ts.Instance()
	for _, f := range getFields {
		bd.Getters = append(bd.Getters, Snippet{
			Key:  accessorKey(ts, f),
			Code: getterCode(ts, f, inst, valueExpr(ts, f, "this", "*this")),
		})
	}
	for _, f := range setFields {
		bd.Setters = append(bd.Setters, Snippet{
			Key:  accessorKey(ts, f),
			Code: setterCode(ts, f, inst, fieldPath(ts.Name, ts, f), refExpr(ts, f, "this")),
		})
	}
	if err := bindImpls(bd, ts, inst, "this", log); err != nil {
		return nil, err
	}

	bd.Register = registerCode(bd, publishCode(ts))
	bd.Helpers = recordHelpers(ts)
	return bd, nil
}

func accessorKey(ts *TypeSpec, f *Field) string {
	if ts.Kind == KindTuple {
		return fmt.Sprintf("%d", f.Index+1)
	}
	return f.Key
}

func getterCode(ts *TypeSpec, f *Field, inst, value string) string {
	if ts.Kind == KindTuple {
		return fmt.Sprintf("c.Fields.GetIndex(%d, func(L *lua.LState, this *%s) (lua.LValue, error) {\nreturn luabind.Encode(L, %s)\n})\n",
			f.Index+1, inst, value)
	}
	return fmt.Sprintf("c.Fields.Get(%q, func(L *lua.LState, this *%s) (lua.LValue, error) {\nreturn luabind.Encode(L, %s)\n})\n",
		f.Key, inst, value)
}

func setterCode(ts *TypeSpec, f *Field, inst, path, ref string) string {
	if ts.Kind == KindTuple {
		return fmt.Sprintf("c.Fields.SetIndex(%d, func(L *lua.LState, this *%s, lv lua.LValue) error {\nreturn luabind.DecodeField(L, lv, %q, %s)\n})\n",
			f.Index+1, inst, path, ref)
	}
	return fmt.Sprintf("c.Fields.Set(%q, func(L *lua.LState, this *%s, lv lua.LValue) error {\nreturn luabind.DecodeField(L, lv, %q, %s)\n})\n",
		f.Key, inst, path, ref)
}

// valueExpr is the Go expression of field f. sel is an expression the
// field is selected from; deref is the value of the whole instance.
func valueExpr(ts *TypeSpec, f *Field, sel, deref string) string {
	if ts.Newtype {
		return fmt.Sprintf("(%s)(%s)", f.Type, deref)
	}
	return sel + "." + f.Name
}

// refExpr is a pointer to field f given ptr, a pointer to the instance.
func refExpr(ts *TypeSpec, f *Field, ptr string) string {
	if ts.Newtype {
		return fmt.Sprintf("(*%s)(%s)", f.Type, ptr)
	}
	return "&" + ptr + "." + f.Name
}

// fieldPath names a field in conversion errors: "Human.name" or
// "Unnamed[1]".
func fieldPath(ctx string, ts *TypeSpec, f *Field) string {
	if ts.Kind == KindTuple {
		return fmt.Sprintf("%s[%d]", ctx, f.Index+1)
	}
	return ctx + "." + f.Key
}

// bindImpls adds the trampolines and statics of ts.Attrs.Impl. this is
// the receiver expression methods are called on.
func bindImpls(bd *BindingDescriptor, ts *TypeSpec, inst, this string, log *slog.Logger) error {
	getters := map[string]bool{}
	for _, g := range bd.Getters {
		getters[g.Key] = true
	}
	methods := map[string]bool{}
	statics := map[string]bool{}
	for _, m := range ts.Attrs.Impl {
		if m.Receiver == ReceiverNone {
			if statics[m.LuaName] {
				return genErrorf(m.Pos, "%s: static function %q is bound twice", ts.Name, m.LuaName)
			}
			statics[m.LuaName] = true
			callee := m.Name
			if m.Generic {
				callee += ts.TypeArgList()
			}
			body, err := callBody(m, callee, 1)
			if err != nil {
				return err
			}
			bd.Statics = append(bd.Statics, Snippet{
				Key:  m.LuaName,
				Code: fmt.Sprintf("c.Statics.Function(%q, func(L *lua.LState) (int, error) {\n%s})\n", m.LuaName, body),
			})
			continue
		}
		if methods[m.LuaName] {
			return genErrorf(m.Pos, "%s: method %q is bound twice", ts.Name, m.LuaName)
		}
		methods[m.LuaName] = true
		if getters[m.LuaName] {
			log.Warn("method shadows field getter", "type", ts.Name, "name", m.LuaName, "pos", m.Pos.String())
		}
		body, err := callBody(m, this+"."+m.Name, 2)
		if err != nil {
			return err
		}
		install := "Method"
		if m.Receiver == ReceiverMutable {
			install = "MethodMut"
		}
		bd.Trampolines = append(bd.Trampolines, Snippet{
			Key:  m.LuaName,
			Code: fmt.Sprintf("c.Methods.%s(%q, func(L *lua.LState, this *%s) (int, error) {\n%s})\n", install, m.LuaName, inst, body),
		})
	}
	for name := range statics {
		if methods[name] {
			log.Warn("method shadows static function on instances", "type", ts.Name, "name", name)
		}
	}
	return nil
}

// callBody is the body of a trampoline calling callee with the arguments
// found from stack index base.
func callBody(m *MethodSpec, callee string, base int) (string, error) {
	ad, err := AdaptArgs(paramTypes(m), m.Pos)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	args := ""
	if len(m.Params) > 0 {
		fmt.Fprintf(&b, "args, err := luabind.Args[%s](L, %d)\nif err != nil {\nreturn 0, err\n}\n", ad.DecodeType, base)
		args = strings.Join(ad.Access, ", ")
	}
	call := fmt.Sprintf("%s(%s)", callee, args)

	if !m.ResultsKnown || len(m.Results) == 0 {
		fmt.Fprintf(&b, "%s\nreturn 0, nil\n", call)
		return b.String(), nil
	}
	vals := len(m.Results)
	if m.ReturnsError() {
		vals--
	}
	if vals == 0 {
		fmt.Fprintf(&b, "if err := %s; err != nil {\nreturn 0, err\n}\nreturn 0, nil\n", call)
		return b.String(), nil
	}
	rs := make([]string, vals)
	for i := range rs {
		rs[i] = fmt.Sprintf("r%d", i)
	}
	lhs := rs
	if m.ReturnsError() {
		lhs = append(append([]string{}, rs...), "err")
	}
	fmt.Fprintf(&b, "%s := %s\n", strings.Join(lhs, ", "), call)
	if m.ReturnsError() {
		b.WriteString("if err != nil {\nreturn 0, err\n}\n")
	}
	fmt.Fprintf(&b, "return luabind.Return(L, %s)\n", strings.Join(rs, ", "))
	return b.String(), nil
}

func publishCode(ts *TypeSpec) string {
	if ts.Kind == KindUnit {
		return "return c.PublishUnit(name)\n"
	}
	return fmt.Sprintf("return c.Publish(name, construct%s%s)\n", ts.Name, ts.TypeArgList())
}

// registerCode renders Register<T> and Register<T>As around the snippets
// of bd, ending with publish.
func registerCode(bd *BindingDescriptor, publish string) string {
	ts := bd.Type
	tp, ta := ts.TypeParamList(), ts.TypeArgList()
	var b strings.Builder
	fmt.Fprintf(&b, "// Register%s registers %s as the Lua global %q.\n", ts.Name, ts.Name, ts.GlobalName())
	fmt.Fprintf(&b, "func Register%s%s(r *luabind.Registry) error {\nreturn Register%sAs%s(r, %q)\n}\n\n",
		ts.Name, tp, ts.Name, ta, ts.GlobalName())
	fmt.Fprintf(&b, "// Register%sAs registers %s as the Lua global name.\n", ts.Name, ts.Name)
	fmt.Fprintf(&b, "func Register%sAs%s(r *luabind.Registry, name string) error {\n", ts.Name, tp)
	fmt.Fprintf(&b, "c := luabind.NewClass[%s](r, %q)\n", ts.Instance(), ts.Name)
	for _, group := range [][]Snippet{bd.Getters, bd.Setters, bd.Trampolines, bd.Statics} {
		for _, s := range group {
			b.WriteString(s.Code)
		}
	}
	if ts.Attrs.CustomFields != "" {
		fmt.Fprintf(&b, "%s(c.Fields)\n", ts.Attrs.CustomFields)
	}
	if ts.Attrs.CustomImpls != "" {
		fmt.Fprintf(&b, "%s(c.Methods)\n", ts.Attrs.CustomImpls)
	}
	b.WriteString(publish)
	b.WriteString("}\n")
	return b.String()
}

func recordHelpers(ts *TypeSpec) []Snippet {
	inst, tp, ta := ts.Instance(), ts.TypeParamList(), ts.TypeArgList()
	var helpers []Snippet

	helpers = append(helpers, Snippet{Key: "EncodeLua", Code: fmt.Sprintf(
		"// EncodeLua wraps a copy of v in a %[1]s userdata.\nfunc (v %[2]s) EncodeLua(L *lua.LState) (lua.LValue, error) {\nreturn luabind.NewInstance(L, v)\n}\n",
		ts.Name, inst)})

	var dec strings.Builder
	fmt.Fprintf(&dec, "// DecodeLua sets v from a %s userdata or a table.\n", ts.Name)
	fmt.Fprintf(&dec, "func (v *%s) DecodeLua(L *lua.LState, lv lua.LValue) error {\n", inst)
	fmt.Fprintf(&dec, "if p, ok := luabind.InstanceOf[%s](lv); ok {\n*v = *p\nreturn nil\n}\n", inst)
	if ts.Kind == KindUnit {
		fmt.Fprintf(&dec, "if _, err := luabind.TableOf(lv, %q); err != nil {\nreturn err\n}\n*v = %s{}\nreturn nil\n}\n", ts.Name, inst)
	} else {
		fmt.Fprintf(&dec, "tbl, err := luabind.TableOf(lv, %q)\nif err != nil {\nreturn err\n}\n", ts.Name)
		fmt.Fprintf(&dec, "return decode%sTable(L, tbl, v)\n}\n", ts.Name)
	}
	helpers = append(helpers, Snippet{Key: "DecodeLua", Code: dec.String()})

	var tbl strings.Builder
	fmt.Fprintf(&tbl, "// LuaTable returns v as a plain Lua table.\nfunc (v %s) LuaTable(L *lua.LState) (*lua.LTable, error) {\n", inst)
	tbl.WriteString(tableCode(ts, "v"))
	tbl.WriteString("}\n")
	helpers = append(helpers, Snippet{Key: "LuaTable", Code: tbl.String()})

	if ts.Kind == KindUnit {
		return helpers
	}

	var dt strings.Builder
	fmt.Fprintf(&dt, "func decode%sTable%s(L *lua.LState, tbl *lua.LTable, v *%s) error {\n", ts.Name, tp, inst)
	dt.WriteString(fieldDecodes(ts, ts.Name, "v", "return err"))
	dt.WriteString("return nil\n}\n")
	helpers = append(helpers, Snippet{Key: "decodeTable", Code: dt.String()})

	helpers = append(helpers, Snippet{Key: "construct", Code: constructCode(ts, inst, tp, ta)})
	return helpers
}

// tableCode returns statements building the plain table of the value v.
func tableCode(ts *TypeSpec, v string) string {
	switch ts.Kind {
	case KindUnit:
		return "return L.NewTable(), nil\n"
	case KindTuple:
		vals := make([]string, len(ts.Fields))
		for i, f := range ts.Fields {
			vals[i] = valueExpr(ts, f, v, v)
		}
		return fmt.Sprintf("return luabind.SequenceTable(L, %s)\n", strings.Join(vals, ", "))
	}
	keys := make([]string, len(ts.Fields))
	vals := make([]string, len(ts.Fields))
	for i, f := range ts.Fields {
		keys[i] = fmt.Sprintf("%q", f.Key)
		vals[i] = valueExpr(ts, f, v, v)
	}
	return fmt.Sprintf("return luabind.NamedTable(L, []string{%s}, %s)\n", strings.Join(keys, ", "), strings.Join(vals, ", "))
}

// fieldDecodes returns statements decoding every field of ts from the
// table tbl into the pointer ptr. onErr is the statement run on failure.
func fieldDecodes(ts *TypeSpec, ctx, ptr, onErr string) string {
	var b strings.Builder
	if ts.Kind == KindTuple {
		fmt.Fprintf(&b, "vals, err := luabind.Sequence(tbl, %q, %d)\nif err != nil {\n%s\n}\n", ctx, len(ts.Fields), onErr)
		for _, f := range ts.Fields {
			fmt.Fprintf(&b, "if err := luabind.DecodeField(L, vals[%d], %q, %s); err != nil {\n%s\n}\n",
				f.Index, fieldPath(ctx, ts, f), refExpr(ts, f, ptr), onErr)
		}
		return b.String()
	}
	for _, f := range ts.Fields {
		fmt.Fprintf(&b, "if err := luabind.DecodeField(L, tbl.RawGetString(%q), %q, %s); err != nil {\n%s\n}\n",
			f.Key, fieldPath(ctx, ts, f), refExpr(ts, f, ptr), onErr)
	}
	return b.String()
}

// positionalArgs returns statements decoding the call arguments from base
// into the value v, for a tuple with n fields.
func positionalArgs(ts *TypeSpec, v, inst, onErr string) (string, error) {
	ad, err := AdaptArgs(fieldTypes(ts.Fields), ts.Pos)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "args, err := luabind.Args[%s](L, base)\nif err != nil {\n%s\n}\n", ad.DecodeType, onErr)
	if ts.Newtype {
		fmt.Fprintf(&b, "%s = %s(args)\n", v, inst)
		return b.String(), nil
	}
	for i, f := range ts.Fields {
		fmt.Fprintf(&b, "%s.%s = %s\n", v, f.Name, ad.Access[i])
	}
	return b.String(), nil
}

func constructCode(ts *TypeSpec, inst, tp, ta string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "func construct%s%s(L *lua.LState, base int) (%s, error) {\nvar v %s\n", ts.Name, tp, inst, inst)
	if ts.Kind == KindRecord {
		b.WriteString("err := v.DecodeLua(L, L.Get(base))\nreturn v, err\n}\n")
		return b.String()
	}
	fmt.Fprintf(&b, "if p, ok := luabind.InstanceOf[%s](L.Get(base)); ok {\nreturn *p, nil\n}\n", inst)
	if n := len(ts.Fields); n >= 2 {
		fmt.Fprintf(&b, "if tbl, ok := luabind.TableLiteral(L, base, %d); ok {\nerr := decode%sTable%s(L, tbl, &v)\nreturn v, err\n}\n", n, ts.Name, ta)
	}
	onErr := "return v, err"
	if len(ts.Fields) == 1 {
		// T{x} is a one element sequence, tried once x itself did not decode
		onErr = fmt.Sprintf("if tbl, ok := luabind.TableLiteral(L, base, 1); ok {\nerr = decode%sTable%s(L, tbl, &v)\n}\nreturn v, err", ts.Name, ta)
	}
	body, err := positionalArgs(ts, "v", inst, onErr)
	if err != nil {
		// arity beyond the runtime tuples: accept only tables
		fmt.Fprintf(&b, "tbl, err := luabind.TableArg(L, base, %q)\nif err != nil {\nreturn v, err\n}\nerr = decode%sTable%s(L, tbl, &v)\nreturn v, err\n}\n", ts.Name, ts.Name, ta)
		return b.String()
	}
	b.WriteString(body)
	b.WriteString("return v, nil\n}\n")
	return b.String()
}
