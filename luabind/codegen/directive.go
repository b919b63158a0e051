package codegen

import (
	"go/ast"
	"go/token"
	"strings"
)

// DirectivePrefix starts a directive comment line.
const DirectivePrefix = "//luagen:"

// DirectiveText returns the directive lines of doc joined with commas, and
// whether there were any.
func DirectiveText(doc *ast.CommentGroup) (string, bool) {
	if doc == nil {
		return "", false
	}
	var parts []string
	for _, c := range doc.List {
		if rest, ok := strings.CutPrefix(c.Text, DirectivePrefix); ok {
			parts = append(parts, strings.TrimSpace(rest))
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ","), true
}

// SplitAttributes splits a directive on commas outside brackets,
// parentheses, braces and quotes. Empty items are dropped.
func SplitAttributes(s string, pos token.Position) ([]string, error) {
	var (
		items []string
		cur   strings.Builder
		depth int
		quote rune
	)
	push := func() {
		if item := strings.TrimSpace(cur.String()); item != "" {
			items = append(items, item)
		}
		cur.Reset()
	}
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '`':
			quote = r
		case r == '[' || r == '(' || r == '{':
			depth++
		case r == ']' || r == ')' || r == '}':
			depth--
			if depth < 0 {
				return nil, parseErrorf(pos, "unbalanced %q in directive", r)
			}
		case r == ',' && depth == 0:
			push()
			continue
		}
		cur.WriteRune(r)
	}
	if quote != 0 {
		return nil, parseErrorf(pos, "unterminated quote in directive")
	}
	if depth != 0 {
		return nil, parseErrorf(pos, "unbalanced brackets in directive")
	}
	push()
	return items, nil
}

// ParseAttributes parses the directive text of the type typeName.
func ParseAttributes(s, typeName string, pos token.Position) (*Attributes, error) {
	items, err := SplitAttributes(s, pos)
	if err != nil {
		return nil, err
	}
	a := &Attributes{Pos: pos}
	seen := map[string]bool{}
	for _, item := range items {
		key, val, hasVal := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if seen[key] && key != "impl" {
			return nil, parseErrorf(pos, "duplicate attribute %q", key)
		}
		seen[key] = true

		switch key {
		case "bind", "tuple":
			if hasVal {
				return nil, parseErrorf(pos, "attribute %q takes no value", key)
			}
			if key == "bind" {
				a.Bind = true
			} else {
				a.Tuple = true
			}
			continue
		}
		if !hasVal || val == "" {
			return nil, parseErrorf(pos, "attribute %q requires a value", key)
		}
		switch key {
		case "name":
			if !token.IsIdentifier(val) {
				return nil, parseErrorf(pos, "name %q is not an identifier", val)
			}
			a.Alias = val
		case "get":
			if a.Get, err = ParseVisibility(val, pos); err != nil {
				return nil, err
			}
		case "set":
			if a.Set, err = ParseVisibility(val, pos); err != nil {
				return nil, err
			}
		case "impl":
			calls, err := ParseImpl(val, pos)
			if err != nil {
				return nil, err
			}
			for _, c := range calls {
				m, err := NewMethodSpec(c, typeName)
				if err != nil {
					return nil, err
				}
				a.Impl = append(a.Impl, m)
			}
		case "custom_fields", "custom_impls":
			if !isFuncRef(val) {
				return nil, parseErrorf(pos, "%s value %q is not a function name", key, val)
			}
			if key == "custom_fields" {
				a.CustomFields = val
			} else {
				a.CustomImpls = val
			}
		case "variants":
			names, err := parseNameList(val, pos)
			if err != nil {
				return nil, err
			}
			a.Variants = names
		default:
			return nil, parseErrorf(pos, "unexpected attribute name %q", key)
		}
	}
	if a.Get == nil {
		a.Get = DefaultVisibility()
	}
	if a.Set == nil {
		a.Set = DefaultVisibility()
	}
	return a, nil
}

func isFuncRef(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if !token.IsIdentifier(part) {
			return false
		}
	}
	return true
}

func parseNameList(s string, pos token.Position) ([]string, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, parseErrorf(pos, "expected [A, B] list, got %q", s)
	}
	var names []string
	for _, n := range strings.Split(s[1:len(s)-1], ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if !token.IsIdentifier(n) {
			return nil, parseErrorf(pos, "%q is not a type name", n)
		}
		names = append(names, n)
	}
	if len(names) == 0 {
		return nil, parseErrorf(pos, "empty variants list")
	}
	return names, nil
}
