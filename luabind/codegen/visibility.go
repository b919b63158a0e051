package codegen

import (
	"go/token"
	"strconv"
	"strings"
)

// Visibility selects the fields exposed through get or set.
type Visibility int

const (
	VisNone Visibility = iota
	VisExported
	VisInternal
	VisParent
	VisAll
	// VisExplicit selects exactly the fields named in an allow-list.
	VisExplicit
)

func (v Visibility) String() string {
	switch v {
	case VisNone:
		return "none"
	case VisExported:
		return "exported"
	case VisInternal:
		return "internal"
	case VisParent:
		return "parent"
	case VisAll:
		return "all"
	case VisExplicit:
		return "explicit"
	}
	return "unknown"
}

var visibilityTokens = map[string]Visibility{
	"none":     VisNone,
	"pub":      VisExported,
	"exported": VisExported,
	"internal": VisInternal,
	"crate":    VisInternal,
	"parent":   VisParent,
	"super":    VisParent,
	"*":        VisAll,
	"all":      VisAll,
}

// admits[v][a] reports whether threshold v exposes a field of access a.
var admits = [...][4]bool{
	VisNone:     {false, false, false, false},
	VisExported: {true, false, false, false},
	VisInternal: {true, true, false, false},
	VisParent:   {true, true, true, false},
	VisAll:      {true, true, true, true},
}

// Admits reports whether the threshold level exposes a field of access a.
// Explicit specs are not thresholds and admit nothing here.
func Admits(level Visibility, a AccessLevel) bool {
	if level < VisNone || level > VisAll || a < AccessExported || a > AccessPrivate {
		return false
	}
	return admits[level][a]
}

// VisibilitySpec is a parsed get or set value.
type VisibilitySpec struct {
	Level Visibility
	Allow []string
	Pos   token.Position
}

// DefaultVisibility is used when get or set is not given.
func DefaultVisibility() *VisibilitySpec {
	return &VisibilitySpec{Level: VisParent}
}

// IsDefault reports whether vs selects what DefaultVisibility does.
func (vs *VisibilitySpec) IsDefault() bool {
	return vs == nil || (vs.Level == VisParent && vs.Allow == nil)
}

// ParseVisibility parses a visibility token or an allow-list "[a, b]".
func ParseVisibility(s string, pos token.Position) (*VisibilitySpec, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return nil, parseErrorf(pos, "unterminated visibility list %q", s)
		}
		vs := &VisibilitySpec{Level: VisExplicit, Pos: pos}
		inner := strings.TrimSpace(s[1 : len(s)-1])
		if inner == "" {
			return vs, nil
		}
		for _, entry := range strings.Split(inner, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				return nil, parseErrorf(pos, "empty entry in visibility list %q", s)
			}
			vs.Allow = append(vs.Allow, entry)
		}
		return vs, nil
	}
	level, ok := visibilityTokens[s]
	if !ok {
		return nil, parseErrorf(pos, "unrecognized visibility %q", s)
	}
	return &VisibilitySpec{Level: level, Pos: pos}, nil
}

// Resolve returns the fields selected by vs, in declaration order.
func (vs *VisibilitySpec) Resolve(kind Kind, fields []*Field) ([]*Field, error) {
	if vs.Level != VisExplicit {
		var res []*Field
		for _, f := range fields {
			if Admits(vs.Level, f.Access) {
				res = append(res, f)
			}
		}
		return res, nil
	}

	allowed := make(map[*Field]bool, len(vs.Allow))
	for _, entry := range vs.Allow {
		_, err := strconv.Atoi(entry)
		positional := err == nil
		switch {
		case kind == KindTuple && !positional:
			return nil, parseErrorf(vs.Pos, "named specifier %q on a positional record", entry)
		case kind != KindTuple && positional:
			return nil, parseErrorf(vs.Pos, "positional specifier %q on a named record", entry)
		}
		f := findField(fields, entry, positional)
		if f == nil {
			return nil, parseErrorf(vs.Pos, "visibility entry %q names no field", entry)
		}
		allowed[f] = true
	}
	var res []*Field
	for _, f := range fields {
		if allowed[f] {
			res = append(res, f)
		}
	}
	return res, nil
}

func findField(fields []*Field, entry string, positional bool) *Field {
	for _, f := range fields {
		if positional {
			if strconv.Itoa(f.Index) == entry {
				return f
			}
			continue
		}
		if f.Name == entry || f.Key == entry {
			return f
		}
	}
	return nil
}
