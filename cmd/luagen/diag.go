package main

import (
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/signadot/luagen/luabind/codegen"
)

func useColor(force bool, f *os.File) bool {
	if force {
		return true
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// diagnostics prints errors as file:line:col: message.
type diagnostics struct {
	w io.Writer

	pos, err, del, ins *color.Color
}

func newDiagnostics(w io.Writer, colored bool) *diagnostics {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return &diagnostics{
		w:   w,
		pos: mk(color.Bold),
		err: mk(color.FgRed),
		del: mk(color.FgRed),
		ins: mk(color.FgGreen),
	}
}

// Error prints err. A positioned ParseError or GenerationError is printed
// without the context it was wrapped in.
func (d *diagnostics) Error(err error) {
	pos, msg := split(err)
	if pos.IsValid() {
		fmt.Fprintf(d.w, "%s %s\n", d.pos.Sprintf("%s:", pos), d.err.Sprint(msg))
		return
	}
	fmt.Fprintln(d.w, d.err.Sprint(err.Error()))
}

// Stale reports that path does not match the generated code.
func (d *diagnostics) Stale(path, diff string) {
	fmt.Fprintf(d.w, "%s %s\n", d.pos.Sprintf("%s:", path), d.err.Sprint("out of date"))
	io.WriteString(d.w, diff)
}

func split(err error) (token.Position, string) {
	var pe *codegen.ParseError
	if errors.As(err, &pe) {
		return pe.Pos, detail("parse error: "+pe.Msg, pe.Err)
	}
	var ge *codegen.GenerationError
	if errors.As(err, &ge) {
		return ge.Pos, detail(ge.Msg, ge.Err)
	}
	return token.Position{}, err.Error()
}

func detail(msg string, err error) string {
	if err != nil {
		return msg + ": " + err.Error()
	}
	return msg
}
