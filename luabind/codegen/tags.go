package codegen

import (
	"fmt"
	"strings"
)

// ParseStructTag parses the content of a struct tag value into a map.
// It handles key-value pairs (key=value) and boolean flags (key), quoted
// values (key="value with spaces") and comma separated items.
func ParseStructTag(tag string) (map[string]string, error) {
	result := make(map[string]string)

	var key, value strings.Builder
	inKey := true
	inQuote := false
	quoted := false

	tag = strings.TrimSpace(tag)
	if tag == "" {
		return result, nil
	}

	flush := func() {
		k := strings.TrimSpace(key.String())
		v := value.String()
		if !quoted {
			v = strings.TrimSpace(v)
		}
		if k != "" {
			result[k] = v
		}
		key.Reset()
		value.Reset()
		inKey = true
		quoted = false
	}

	for _, r := range tag {
		switch {
		case inKey && r == '=':
			inKey = false
		case inKey && r == ',':
			flush()
		case inKey:
			key.WriteRune(r)
		case inQuote && r == '"':
			inQuote = false
		case inQuote:
			value.WriteRune(r)
		case r == '"' && strings.TrimSpace(value.String()) == "":
			value.Reset()
			inQuote = true
			quoted = true
		case r == ',':
			flush()
		default:
			value.WriteRune(r)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote in tag %q", tag)
	}
	flush()
	return result, nil
}

// ParseLuaTag parses the content of a "lua" struct tag.
// Example: `lua:"name=full_name,access=internal"`.
// The single value "-" omits the field.
func ParseLuaTag(tagContent string) (map[string]string, error) {
	if strings.TrimSpace(tagContent) == "-" {
		return map[string]string{"-": ""}, nil
	}
	return ParseStructTag(tagContent)
}
