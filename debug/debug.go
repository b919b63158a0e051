package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Parse   bool
	Emit    bool
	Resolve bool
}

var d *debug

func init() {
	d = &debug{}
	d.Parse = boolEnv("LUAGEN_DEBUG_PARSE")
	d.Emit = boolEnv("LUAGEN_DEBUG_EMIT")
	d.Resolve = boolEnv("LUAGEN_DEBUG_RESOLVE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Parse() bool {
	return d.Parse
}
func Emit() bool {
	return d.Emit
}
func Resolve() bool {
	return d.Resolve
}
