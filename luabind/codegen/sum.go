package codegen

import (
	"fmt"
	"log/slog"
	"strings"
)

// BindSum produces the bindings of a sum type: per variant a getter under
// its reserved key, a setter for variants with a payload, a constructor in
// the namespace table, and the package level converters of the interface.
func BindSum(ts *TypeSpec, log *slog.Logger) (*BindingDescriptor, error) {
	if ts.Kind != KindSum {
		return nil, genErrorf(ts.Pos, "%s: BindSum called on a %s type", ts.Name, ts.Kind)
	}
	if log == nil {
		log = slog.Default()
	}
	if !ts.Attrs.Get.IsDefault() || !ts.Attrs.Set.IsDefault() {
		return nil, genErrorf(ts.Pos, "%s: get and set do not apply to sum types", ts.Name)
	}

	bd := &BindingDescriptor{Type: ts}
	for _, v := range ts.Variants {
		bd.Getters = append(bd.Getters, Snippet{Key: v.Key, Code: variantGetter(ts, v)})
		if v.Shape() != KindUnit {
			bd.Setters = append(bd.Setters, Snippet{Key: v.Key, Code: variantSetter(ts, v)})
		}
	}
	if err := bindImpls(bd, ts, ts.Instance(), "(*this)", log); err != nil {
		return nil, err
	}
	for _, s := range bd.Statics {
		for _, v := range ts.Variants {
			if s.Key == v.Name {
				return nil, genErrorf(ts.Pos, "%s: static function %q collides with variant %s", ts.Name, s.Key, v.TypeName)
			}
		}
	}

	var publish strings.Builder
	for _, v := range ts.Variants {
		code, err := variantConstructor(ts, v)
		if err != nil {
			return nil, err
		}
		publish.WriteString(code)
	}
	samples := make([]string, len(ts.Variants))
	for i, v := range ts.Variants {
		if v.Pointer {
			samples[i] = fmt.Sprintf("(%s)(nil)", v.GoType())
		} else {
			samples[i] = fmt.Sprintf("*new(%s)", v.GoType())
		}
	}
	ta := ts.TypeArgList()
	fmt.Fprintf(&publish, "c.Convert(Encode%s%s, Decode%s%s, %s)\n", ts.Name, ta, ts.Name, ta, strings.Join(samples, ", "))
	publish.WriteString("return c.PublishSum(name)\n")
	bd.Register = registerCode(bd, publish.String())
	bd.Helpers = sumHelpers(ts)
	return bd, nil
}

func variantGetter(ts *TypeSpec, v *Variant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "c.Fields.Get(%q, func(L *lua.LState, this *%s) (lua.LValue, error) {\n", v.Key, ts.Instance())
	if v.Pointer {
		fmt.Fprintf(&b, "if x, ok := (*this).(%s); ok && x != nil {\nreturn encode%s%s(L, *x)\n}\n", v.GoType(), ts.Name, v.Name)
	} else {
		fmt.Fprintf(&b, "if x, ok := (*this).(%s); ok {\nreturn encode%s%s(L, x)\n}\n", v.GoType(), ts.Name, v.Name)
	}
	b.WriteString("return lua.LNil, nil\n})\n")
	return b.String()
}

func variantSetter(ts *TypeSpec, v *Variant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "c.Fields.Set(%q, func(L *lua.LState, this *%s, lv lua.LValue) error {\n", v.Key, ts.Instance())
	fmt.Fprintf(&b, "x, err := decode%s%s%s(L, lv)\nif err != nil {\nreturn err\n}\n", ts.Name, v.Name, ts.TypeArgList())
	if v.Pointer {
		b.WriteString("*this = &x\nreturn nil\n})\n")
	} else {
		b.WriteString("*this = x\nreturn nil\n})\n")
	}
	return b.String()
}

func variantConstructor(ts *TypeSpec, v *Variant) (string, error) {
	inst, ta, vinst := ts.Instance(), ts.TypeArgList(), v.Spec.Instance()
	amp := ""
	if v.Pointer {
		amp = "&"
	}
	if v.Shape() == KindUnit {
		return fmt.Sprintf("c.UnitVariant(%q, func() %s {\nreturn %s%s{}\n})\n", v.Name, inst, amp, vinst), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "c.Variant(%q, func(L *lua.LState, base int) (%s, error) {\n", v.Name, inst)
	if v.Shape() == KindRecord {
		fmt.Fprintf(&b, "x, err := decode%s%s%s(L, L.Get(base))\nif err != nil {\nreturn nil, err\n}\nreturn %sx, nil\n})\n", ts.Name, v.Name, ta, amp)
		return b.String(), nil
	}
	fmt.Fprintf(&b, "var x %s\n", vinst)
	if n := len(v.Spec.Fields); n >= 2 {
		fmt.Fprintf(&b, "if tbl, ok := luabind.TableLiteral(L, base, %d); ok {\nx, err := decode%s%s%s(L, tbl)\nif err != nil {\nreturn nil, err\n}\nreturn %sx, nil\n}\n",
			n, ts.Name, v.Name, ta, amp)
	}
	onErr := "return nil, err"
	if len(v.Spec.Fields) == 1 {
		onErr = fmt.Sprintf("if tbl, ok := luabind.TableLiteral(L, base, 1); ok {\nif x, err = decode%s%s%s(L, tbl); err == nil {\nreturn %sx, nil\n}\n}\nreturn nil, err",
			ts.Name, v.Name, ta, amp)
	}
	body, err := positionalArgs(v.Spec, "x", vinst, onErr)
	if err != nil {
		return "", err
	}
	b.WriteString(body)
	fmt.Fprintf(&b, "return %sx, nil\n})\n", amp)
	return b.String(), nil
}

func sumHelpers(ts *TypeSpec) []Snippet {
	inst, tp, ta := ts.Instance(), ts.TypeParamList(), ts.TypeArgList()
	var helpers []Snippet

	helpers = append(helpers, Snippet{Key: "Encode", Code: fmt.Sprintf(
		"// Encode%[1]s wraps v in a %[1]s userdata.\nfunc Encode%[1]s%[2]s(L *lua.LState, v %[3]s) (lua.LValue, error) {\nif v == nil {\nreturn lua.LNil, nil\n}\nreturn luabind.NewInstance(L, v)\n}\n",
		ts.Name, tp, inst)})

	var dec strings.Builder
	keys := make([]string, len(ts.Variants))
	for i, v := range ts.Variants {
		keys[i] = fmt.Sprintf("%q", v.Key)
	}
	fmt.Fprintf(&dec, "// Decode%[1]s converts a %[1]s userdata, or a table holding one variant\n// key, to a %[1]s. Keys are tried in declaration order.\n", ts.Name)
	fmt.Fprintf(&dec, "func Decode%s%s(L *lua.LState, lv lua.LValue) (%s, error) {\n", ts.Name, tp, inst)
	fmt.Fprintf(&dec, "if p, ok := luabind.InstanceOf[%s](lv); ok {\nreturn *p, nil\n}\n", inst)
	fmt.Fprintf(&dec, "tbl, err := luabind.TableOf(lv, %q)\nif err != nil {\nreturn nil, err\n}\n", ts.Name)
	for _, v := range ts.Variants {
		amp := ""
		if v.Pointer {
			amp = "&"
		}
		if v.Shape() == KindUnit {
			fmt.Fprintf(&dec, "if _, ok, err := luabind.VariantKey(tbl, %q, %q, %q, luabind.ShapeUnit); err != nil {\nreturn nil, err\n} else if ok {\nreturn %s%s{}, nil\n}\n",
				ts.Name, v.Name, v.Key, amp, v.Spec.Instance())
			continue
		}
		shape := "luabind.ShapeNamed"
		if v.Shape() == KindTuple {
			shape = "luabind.ShapePositional"
		}
		fmt.Fprintf(&dec, "if pv, ok, err := luabind.VariantKey(tbl, %q, %q, %q, %s); err != nil {\nreturn nil, err\n} else if ok {\n", ts.Name, v.Name, v.Key, shape)
		fmt.Fprintf(&dec, "x, err := decode%s%s%s(L, pv)\nif err != nil {\nreturn nil, err\n}\nreturn %sx, nil\n}\n", ts.Name, v.Name, ta, amp)
	}
	fmt.Fprintf(&dec, "return nil, &luabind.NoMatchingVariantError{Type: %q, Keys: []string{%s}, Received: \"table without a variant key\"}\n}\n",
		ts.Name, strings.Join(keys, ", "))
	helpers = append(helpers, Snippet{Key: "Decode", Code: dec.String()})

	var tbl strings.Builder
	fmt.Fprintf(&tbl, "// %[1]sLuaTable returns v as a plain table holding its variant key.\nfunc %[1]sLuaTable%[2]s(L *lua.LState, v %[3]s) (*lua.LTable, error) {\n", ts.Name, tp, inst)
	tbl.WriteString("var (\nkey string\nlv lua.LValue\nerr error\n)\n")
	payload := false
	for _, v := range ts.Variants {
		if v.Shape() != KindUnit {
			payload = true
		}
	}
	if payload {
		tbl.WriteString("switch x := v.(type) {\n")
	} else {
		tbl.WriteString("switch v.(type) {\n")
	}
	for _, v := range ts.Variants {
		fmt.Fprintf(&tbl, "case %s:\n", v.GoType())
		switch {
		case v.Shape() == KindUnit:
			fmt.Fprintf(&tbl, "key, lv = %q, lua.LTrue\n", v.Key)
		case v.Pointer:
			fmt.Fprintf(&tbl, "if x == nil {\nreturn nil, &luabind.ConversionError{Expected: %q, Received: \"nil %s\"}\n}\n", ts.Name, v.GoType())
			fmt.Fprintf(&tbl, "key = %q\nlv, err = encode%s%s(L, *x)\n", v.Key, ts.Name, v.Name)
		default:
			fmt.Fprintf(&tbl, "key = %q\nlv, err = encode%s%s(L, x)\n", v.Key, ts.Name, v.Name)
		}
	}
	fmt.Fprintf(&tbl, "default:\nreturn nil, &luabind.ConversionError{Expected: %q, Received: \"no variant\"}\n}\n", ts.Name)
	tbl.WriteString("if err != nil {\nreturn nil, err\n}\nres := L.NewTable()\nres.RawSetString(key, lv)\nreturn res, nil\n}\n")
	helpers = append(helpers, Snippet{Key: "LuaTable", Code: tbl.String()})

	for _, v := range ts.Variants {
		helpers = append(helpers, Snippet{Key: "encode" + v.Name, Code: variantEncoder(ts, v)})
		if v.Shape() != KindUnit {
			helpers = append(helpers, Snippet{Key: "decode" + v.Name, Code: variantDecoder(ts, v)})
		}
	}
	return helpers
}

// variantEncoder renders the payload encoder of v. Its type parameters are
// inferred from the argument at every call site.
func variantEncoder(ts *TypeSpec, v *Variant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "func encode%s%s%s(L *lua.LState, v %s) (lua.LValue, error) {\n", ts.Name, v.Name, ts.TypeParamList(), v.Spec.Instance())
	if v.Shape() == KindUnit {
		b.WriteString("return lua.LTrue, nil\n}\n")
		return b.String()
	}
	b.WriteString(tableCode(v.Spec, "v"))
	b.WriteString("}\n")
	return b.String()
}

func variantDecoder(ts *TypeSpec, v *Variant) string {
	ctx := ts.Name + "." + v.Name
	vinst := v.Spec.Instance()
	var b strings.Builder
	fmt.Fprintf(&b, "func decode%s%s%s(L *lua.LState, lv lua.LValue) (%s, error) {\nvar v %s\n", ts.Name, v.Name, ts.TypeParamList(), vinst, vinst)
	fmt.Fprintf(&b, "tbl, err := luabind.TableOf(lv, %q)\nif err != nil {\nreturn v, err\n}\n", ctx)
	ptr := "v"
	if v.Spec.Newtype {
		ptr = "&v"
	}
	b.WriteString(fieldDecodes(v.Spec, ctx, ptr, "return v, err"))
	b.WriteString("return v, nil\n}\n")
	return b.String()
}
