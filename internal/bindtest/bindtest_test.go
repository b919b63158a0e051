package bindtest

import (
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/luagen/luabind"
	"github.com/signadot/luagen/luabind/codegen"
	lua "github.com/yuin/gopher-lua"
)

func newState(t *testing.T) (*lua.LState, *luabind.Registry) {
	t.Helper()
	L := lua.NewState()
	t.Cleanup(L.Close)
	r := luabind.NewRegistry(L, luabind.WithLogger(slog.New(slog.DiscardHandler)))
	err := luabind.RegisterAll(r,
		RegisterHuman,
		RegisterUnnamed,
		RegisterMarker,
		RegisterCelsius,
		RegisterOptional[int],
		RegisterAnimal,
		RegisterZoo,
		RegisterMaybe[int],
		func(r *luabind.Registry) error {
			return RegisterMaybeAs[string](r, "MaybeString")
		},
	)
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	return L, r
}

func run(t *testing.T, L *lua.LState, script string) {
	t.Helper()
	if err := L.DoString(script); err != nil {
		t.Fatalf("script failed: %v", err)
	}
}

func runErr(t *testing.T, L *lua.LState, script, want string) {
	t.Helper()
	err := L.DoString(script)
	if err == nil {
		t.Fatalf("expected an error containing %q", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not contain %q", err, want)
	}
}

func TestHuman(t *testing.T) {
	L, _ := newState(t)
	run(t, L, `
		h = Human.default()
		h:set_age(42)
		h.name = "Martin"
		assert(h.name == "Martin")
		assert(h:age() == "42 years old")
	`)
	h, ok := luabind.InstanceOf[Human](L.GetGlobal("h"))
	if !ok {
		t.Fatal("h is not a Human")
	}
	if diff := cmp.Diff(Human{Name: "Martin", age: 42}, *h, cmp.AllowUnexported(Human{})); diff != "" {
		t.Errorf("Human mismatch (-want +got):\n%s", diff)
	}

	run(t, L, `
		ada = Human{name = "Ada", age = 36}
		assert(ada.name == "Ada")
		assert(ada:greet("hi", "!", 2) == "hi Ada!hi Ada!")
		assert(ada:befriend(Human{name = "Bob", age = 1}) == "Ada and Bob")
		assert(ada:befriend({name = "Eve", age = 2}) == "Ada and Eve")
		assert(ada:shout() == "ADA")
		assert(Human_ == Human)
		ada.age = 37
		assert(ada:age() == "37 years old")
	`)
}

func TestHuman_Errors(t *testing.T) {
	L, _ := newState(t)
	run(t, L, `ada = Human{name = "Ada", age = 36}`)
	runErr(t, L, `ada:greet("hi")`, "expected 3 values, got 1")
	runErr(t, L, `ada:set_age(300)`, "argument 1")
	runErr(t, L, `ada:set_age("old")`, "expected uint8")
	runErr(t, L, `ada.missing = 1`, "not settable")
	runErr(t, L, `Human{name = "Ada"}`, "conversion error at Human.age: expected uint8, got nil")
	runErr(t, L, `Human(5)`, "expected table")
}

func TestUnnamed(t *testing.T) {
	L, _ := newState(t)
	run(t, L, `
		u = Unnamed("a", 3)
		assert(u[1] == "a")
		assert(u[2] == 3)
		u[1] = "b"
		u[2] = 7
		assert(u.len == 1)
		v = Unnamed{"xy", 1}
		assert(v[1] == "xy" and v.len == 2)
	`)
	u, ok := luabind.InstanceOf[Unnamed](L.GetGlobal("u"))
	if !ok {
		t.Fatal("u is not an Unnamed")
	}
	if diff := cmp.Diff(Unnamed{A: "b", B: 7}, *u); diff != "" {
		t.Errorf("Unnamed mismatch (-want +got):\n%s", diff)
	}

	runErr(t, L, `return u[3]`, "invalid index 3")
	runErr(t, L, `u[0] = 1`, "invalid index 0")
	runErr(t, L, `Unnamed("a")`, "expected 2 values, got 1")
	runErr(t, L, `Unnamed{"a"}`, "expected 2 values, got 1")
}

func TestMarkerAndCelsius(t *testing.T) {
	L, _ := newState(t)
	run(t, L, `
		assert(Marker_.hello() == "hello")
		assert(type(Marker) == "userdata")
		c = Celsius(100)
		assert(c[1] == 100)
		assert(c:fahrenheit() == 212)
		c[1] = 0
		assert(c:fahrenheit() == 32)
		assert(Celsius{20}[1] == 20)
		assert(Celsius(Celsius{5})[1] == 5)
	`)
	c, ok := luabind.InstanceOf[Celsius](L.GetGlobal("c"))
	if !ok || *c != 0 {
		t.Errorf("c = %v, %v", c, ok)
	}

	runErr(t, L, `Celsius{"hot"}`, "Celsius[1]")
	runErr(t, L, `Celsius{}`, "expected 1 values, got 0")
}

func TestOptional(t *testing.T) {
	L, _ := newState(t)
	run(t, L, `
		o = Optional.some(5)
		assert(o.value == 5)
		assert(o.set == true)
		assert(o:get() == 5)
		e = Optional{value = 0, set = false}
		local ok, err = pcall(function() return e:get() end)
		assert(not ok)
		assert(string.find(err, "not set"))
	`)
	runErr(t, L, `Optional.some("five")`, "expected int")
}

func TestAnimal(t *testing.T) {
	L, _ := newState(t)
	run(t, L, `
		assert(Animal.Dog("Doggo").dog[1] == "Doggo")
		assert(Animal.Cat{name = "Neko", age = 8}.cat.age == 8)
		assert(Animal.Pig.pig == true)
		assert(Animal.Pig.dog == nil)
		assert(Animal.Pig:sound() == "oink")
		assert(Animal.Dog("Rex"):sound() == "Rex says woof")
		assert(Animal.Dog{"Rex"}.dog[1] == "Rex")
		assert(Animal.Cat{name = "Neko", age = 8}:sound() == "Neko says meow")

		a = Animal.Pig
		a.dog = {"Rex"}
		assert(a.pig == nil)
		assert(a.dog[1] == "Rex")
		a.cat = {name = "Tom", age = 3}
		assert(a.dog == nil)
		assert(a.cat.name == "Tom")
	`)
	a, ok := luabind.InstanceOf[Animal](L.GetGlobal("a"))
	if !ok {
		t.Fatal("a is not an Animal")
	}
	if diff := cmp.Diff(Animal(&AnimalCat{Name: "Tom", Age: 3}), *a); diff != "" {
		t.Errorf("Animal mismatch (-want +got):\n%s", diff)
	}

	runErr(t, L, `Animal.Pig.pig = true`, "not settable")
	runErr(t, L, `Animal.Dog()`, "expected 1 values, got 0")
	runErr(t, L, `Animal.Dog{{}}`, "Animal.Dog[1]")
	runErr(t, L, `Animal.Cat{name = "Tom"}`, "Animal.Cat.age")
}

func TestZoo(t *testing.T) {
	L, _ := newState(t)
	run(t, L, `
		z = Zoo{keeper = {name = "Kim", age = 30}, star = {dog = {"Rex"}}}
		assert(z.keeper.name == "Kim")
		assert(z.star.dog[1] == "Rex")
		assert(z:loudest():sound() == "Rex says woof")

		z.star = Animal.Cat{name = "Neko", age = 8}
		assert(z.star.cat.name == "Neko")

		both = Zoo{keeper = Human.default(), star = {pig = true, dog = {"Rex"}}}
		assert(both.star.pig == true)
		assert(both.star.dog == nil)
	`)
	z, ok := luabind.InstanceOf[Zoo](L.GetGlobal("z"))
	if !ok {
		t.Fatal("z is not a Zoo")
	}
	want := Zoo{Keeper: Human{Name: "Kim", age: 30}, Star: &AnimalCat{Name: "Neko", Age: 8}}
	if diff := cmp.Diff(want, *z, cmp.AllowUnexported(Human{})); diff != "" {
		t.Errorf("Zoo mismatch (-want +got):\n%s", diff)
	}

	runErr(t, L, `Zoo{keeper = Human.default(), star = {dog = "Rex"}}`, "malformed variant Animal.Dog")
	runErr(t, L, `Zoo{keeper = Human.default(), star = {}}`, "no matching variant for Animal")
	runErr(t, L, `Zoo{keeper = Human.default(), star = {pig = 1}}`, "malformed variant Animal.Pig")

	run(t, L, `
		off = Zoo{keeper = {name = "k", age = 1}, star = {pig = false}}
		assert(off.star.pig == true)
	`)
}

func TestDecodeAnimal(t *testing.T) {
	L, _ := newState(t)
	tbl := L.NewTable()
	tbl.RawSetString("pig", lua.LFalse)
	cat := L.NewTable()
	cat.RawSetString("name", lua.LString("Tom"))
	cat.RawSetString("age", lua.LNumber(3))
	tbl.RawSetString("cat", cat)

	a, err := DecodeAnimal(L, tbl)
	if err != nil {
		t.Fatalf("DecodeAnimal failed: %v", err)
	}
	if diff := cmp.Diff(Animal(AnimalPig{}), a); diff != "" {
		t.Errorf("Animal mismatch (-want +got):\n%s", diff)
	}

	tbl.RawSetString("pig", lua.LNil)
	a, err = DecodeAnimal(L, tbl)
	if err != nil {
		t.Fatalf("DecodeAnimal failed: %v", err)
	}
	if diff := cmp.Diff(Animal(&AnimalCat{Name: "Tom", Age: 3}), a); diff != "" {
		t.Errorf("Animal mismatch (-want +got):\n%s", diff)
	}

	_, err = DecodeAnimal(L, L.NewTable())
	var nm *luabind.NoMatchingVariantError
	if !errors.As(err, &nm) {
		t.Fatalf("expected NoMatchingVariantError, got %v", err)
	}
	if diff := cmp.Diff([]string{"pig", "dog", "cat"}, nm.Keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	lt, err := AnimalLuaTable(L, AnimalDog("Rex"))
	if err != nil {
		t.Fatalf("AnimalLuaTable failed: %v", err)
	}
	back, err := DecodeAnimal(L, lt)
	if err != nil || back != AnimalDog("Rex") {
		t.Errorf("round trip = %v, %v", back, err)
	}

	if _, err := AnimalLuaTable(L, (*AnimalCat)(nil)); err == nil {
		t.Error("expected an error for a nil pointer variant")
	}
	lv, err := EncodeAnimal(L, nil)
	if err != nil || lv != lua.LNil {
		t.Errorf("EncodeAnimal(nil) = %v, %v", lv, err)
	}
}

func TestMaybe(t *testing.T) {
	L, r := newState(t)
	run(t, L, `
		j = Maybe.Just(5)
		assert(j.just[1] == 5)
		assert(j.none == nil)
		assert(j:is_just())
		assert(Maybe.Just{6}.just[1] == 6)
		assert(Maybe.None.none == true)
		assert(Maybe.None.just == nil)
		assert(not Maybe.None:is_just())

		s = MaybeString.Just("x")
		assert(s.just[1] == "x")
		assert(MaybeString.Just{"y"}.just[1] == "y")

		n = Maybe.None
		n.just = {7}
		assert(n.none == nil)
		assert(n.just[1] == 7)
	`)
	n, ok := luabind.InstanceOf[Maybe[int]](L.GetGlobal("n"))
	if !ok {
		t.Fatal("n is not a Maybe[int]")
	}
	if diff := cmp.Diff(Maybe[int](&MaybeJust[int]{Value: 7}), *n); diff != "" {
		t.Errorf("Maybe mismatch (-want +got):\n%s", diff)
	}
	if _, ok := luabind.InstanceOf[Maybe[int]](L.GetGlobal("s")); ok {
		t.Error("s is a Maybe[int], want Maybe[string]")
	}

	runErr(t, L, `Maybe.Just("x")`, "argument 1")
	runErr(t, L, `MaybeString.Just{{}}`, "Maybe.Just[1]: expected string")
	runErr(t, L, `n.just = {"x"}`, "Maybe.Just[1]")

	tbl := L.NewTable()
	tbl.RawSetString("none", lua.LFalse)
	m, err := DecodeMaybe[string](L, tbl)
	if err != nil {
		t.Fatalf("DecodeMaybe failed: %v", err)
	}
	if diff := cmp.Diff(Maybe[string](MaybeNone[string]{}), m); diff != "" {
		t.Errorf("Maybe mismatch (-want +got):\n%s", diff)
	}
	lt, err := MaybeLuaTable[int](L, &MaybeJust[int]{Value: 3})
	if err != nil {
		t.Fatalf("MaybeLuaTable failed: %v", err)
	}
	back, err := DecodeMaybe[int](L, lt)
	if err != nil {
		t.Fatalf("DecodeMaybe failed: %v", err)
	}
	if diff := cmp.Diff(Maybe[int](&MaybeJust[int]{Value: 3}), back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	if _, ok := luabind.ClassOf[Maybe[string]](r); !ok {
		t.Error("Maybe[string] has no class")
	}
}

func TestClassMembers(t *testing.T) {
	_, r := newState(t)
	u, ok := luabind.ClassOf[Unnamed](r)
	if !ok {
		t.Fatal("Unnamed has no class")
	}
	if diff := cmp.Diff([]string{"len"}, u.Fields.Keys()); diff != "" {
		t.Errorf("Unnamed field keys mismatch (-want +got):\n%s", diff)
	}
	h, ok := luabind.ClassOf[Human](r)
	if !ok {
		t.Fatal("Human has no class")
	}
	if diff := cmp.Diff([]string{"age", "befriend", "greet", "set_age", "shout"}, h.Methods.Names()); diff != "" {
		t.Errorf("Human method names mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	L, _ := newState(t)
	h := Human{Name: "Ada", age: 36}
	lv, err := h.EncodeLua(L)
	if err != nil {
		t.Fatalf("EncodeLua failed: %v", err)
	}
	var got Human
	if err := got.DecodeLua(L, lv); err != nil {
		t.Fatalf("DecodeLua failed: %v", err)
	}
	if diff := cmp.Diff(h, got, cmp.AllowUnexported(Human{})); diff != "" {
		t.Errorf("userdata round trip mismatch (-want +got):\n%s", diff)
	}

	tbl, err := h.LuaTable(L)
	if err != nil {
		t.Fatalf("LuaTable failed: %v", err)
	}
	got = Human{}
	if err := got.DecodeLua(L, tbl); err != nil {
		t.Fatalf("DecodeLua of table failed: %v", err)
	}
	if diff := cmp.Diff(h, got, cmp.AllowUnexported(Human{})); diff != "" {
		t.Errorf("table round trip mismatch (-want +got):\n%s", diff)
	}

	u := Unnamed{A: "a", B: 2}
	utbl, err := u.LuaTable(L)
	if err != nil {
		t.Fatalf("LuaTable failed: %v", err)
	}
	var ugot Unnamed
	if err := ugot.DecodeLua(L, utbl); err != nil || ugot != u {
		t.Errorf("Unnamed round trip = %v, %v", ugot, err)
	}
}

// TestBindingsUpToDate checks that bindtest_luagen.go declares what the
// generator produces for bindtest.go.
func TestBindingsUpToDate(t *testing.T) {
	fset := token.NewFileSet()
	file, err := codegen.ParseFile(fset, "bindtest.go")
	if err != nil {
		t.Fatal(err)
	}
	specs, err := codegen.ExtractTypes(fset, file, "bindtest.go")
	if err != nil {
		t.Fatalf("ExtractTypes failed: %v", err)
	}
	code, err := codegen.GenerateCode(specs, &codegen.CodegenConfig{Logger: slog.New(slog.DiscardHandler)})
	if err != nil {
		t.Fatalf("GenerateCode failed: %v", err)
	}
	generated, err := parser.ParseFile(token.NewFileSet(), "generated.go", code, 0)
	if err != nil {
		t.Fatalf("generated code does not parse: %v", err)
	}
	committed, err := parser.ParseFile(token.NewFileSet(), codegen.OutputName("bindtest"), nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(declNames(generated), declNames(committed)); diff != "" {
		t.Errorf("bindtest_luagen.go is stale (-generated +committed):\n%s", diff)
	}
}

func declNames(f *ast.File) []string {
	var names []string
	for _, decl := range f.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		name := fd.Name.Name
		if fd.Recv != nil && len(fd.Recv.List) == 1 {
			name = recvName(fd.Recv.List[0].Type) + "." + name
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func recvName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return "*" + recvName(t.X)
	case *ast.IndexExpr:
		return recvName(t.X)
	case *ast.Ident:
		return t.Name
	}
	return "?"
}
