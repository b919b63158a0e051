package codegen

import (
	"fmt"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"

	"github.com/iancoleman/strcase"
)

// Call is one entry of an impl list, before receiver detection.
type Call struct {
	Name string

	// Args holds the source text of each argument
	Args []string

	// Results holds the source text of each result type
	Results    []string
	HasResults bool

	Alias string
	Pos   token.Position
}

type lexeme struct {
	tok token.Token
	lit string
	off int
}

func (l lexeme) String() string {
	if l.lit != "" {
		return l.lit
	}
	return l.tok.String()
}

func lex(src string) ([]lexeme, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))
	var (
		s    scanner.Scanner
		errs scanner.ErrorList
	)
	s.Init(file, []byte(src), func(pos token.Position, msg string) {
		errs.Add(pos, msg)
	}, 0)
	var res []lexeme
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		res = append(res, lexeme{tok: tok, lit: lit, off: file.Offset(pos)})
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return append(res, lexeme{tok: token.EOF, off: len(src)}), nil
}

type implParser struct {
	src  string
	toks []lexeme
	i    int
	pos  token.Position
}

func (p *implParser) peek() lexeme {
	return p.toks[p.i]
}

func (p *implParser) next() lexeme {
	t := p.toks[p.i]
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return t
}

func (p *implParser) errorf(format string, args ...any) error {
	return parseErrorf(p.pos, "malformed impl: "+format, args...)
}

// ParseImpl parses an impl value: one call, or a bracketed list of calls
// of the form Name(args) -> result as alias, where "-> ..." and "as ..."
// are optional and the result may be a parenthesized list.
func ParseImpl(src string, pos token.Position) ([]*Call, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, &ParseError{Pos: pos, Msg: "malformed impl", Err: err}
	}
	p := &implParser{src: src, toks: toks, pos: pos}

	bracketed := p.peek().tok == token.LBRACK
	if bracketed {
		p.next()
	}
	var calls []*Call
loop:
	for {
		// directive lines are joined with commas, so empty entries are legal
		for bracketed && p.peek().tok == token.COMMA {
			p.next()
		}
		if bracketed && p.peek().tok == token.RBRACK {
			p.next()
			break
		}
		c, err := p.call()
		if err != nil {
			return nil, err
		}
		calls = append(calls, c)
		switch t := p.next(); {
		case t.tok == token.COMMA:
		case t.tok == token.RBRACK && bracketed:
			break loop
		case t.tok == token.EOF && !bracketed:
			break loop
		case t.tok == token.EOF:
			return nil, p.errorf("missing ]")
		default:
			return nil, p.errorf("unexpected %s after %s", t, c.Name)
		}
	}
	if t := p.peek(); t.tok != token.EOF {
		return nil, p.errorf("unexpected %s after impl list", t)
	}
	return calls, nil
}

func (p *implParser) call() (*Call, error) {
	name := p.next()
	if name.tok != token.IDENT {
		return nil, p.errorf("expected function name, got %s", name)
	}
	if t := p.next(); t.tok != token.LPAREN {
		return nil, p.errorf("expected ( after %s, got %s", name.lit, t)
	}
	c := &Call{Name: name.lit, Pos: p.pos}
	if p.peek().tok == token.RPAREN {
		p.next()
	} else {
		args, err := p.list(name.lit)
		if err != nil {
			return nil, err
		}
		c.Args = args
	}

	if p.peek().tok == token.SUB {
		p.next()
		if t := p.next(); t.tok != token.GTR {
			return nil, p.errorf("expected -> in %s, got -%s", name.lit, t)
		}
		c.HasResults = true
		if p.peek().tok == token.LPAREN {
			p.next()
			if p.peek().tok == token.RPAREN {
				p.next()
			} else {
				res, err := p.list(name.lit)
				if err != nil {
					return nil, err
				}
				c.Results = res
			}
		} else {
			res, err := p.result(name.lit)
			if err != nil {
				return nil, err
			}
			c.Results = []string{res}
		}
	}

	if t := p.peek(); t.tok == token.IDENT && t.lit == "as" {
		p.next()
		alias := p.next()
		if alias.tok != token.IDENT {
			return nil, p.errorf("expected name after as in %s, got %s", name.lit, alias)
		}
		c.Alias = alias.lit
	}
	return c, nil
}

// list consumes comma separated source texts up to and including the
// closing parenthesis.
func (p *implParser) list(ctx string) ([]string, error) {
	var res []string
	for {
		start := p.peek().off
		depth := 0
		for {
			t := p.peek()
			switch t.tok {
			case token.LPAREN, token.LBRACK, token.LBRACE:
				depth++
			case token.RPAREN, token.RBRACK, token.RBRACE:
				depth--
			case token.EOF:
				return nil, p.errorf("unterminated argument list in %s", ctx)
			}
			if depth < 0 || (depth == 0 && t.tok == token.COMMA) {
				break
			}
			p.next()
		}
		end := p.next()
		text := strings.TrimSpace(p.src[start:end.off])
		if text == "" {
			return nil, p.errorf("empty entry in %s", ctx)
		}
		res = append(res, text)
		if end.tok == token.RPAREN {
			return res, nil
		}
		if end.tok != token.COMMA {
			return nil, p.errorf("unexpected %s in %s", end, ctx)
		}
	}
}

// result consumes a single unparenthesized result type.
func (p *implParser) result(ctx string) (string, error) {
	start := p.peek().off
	depth := 0
	for {
		t := p.peek()
		if depth == 0 {
			stop := t.tok == token.COMMA || t.tok == token.RBRACK || t.tok == token.EOF ||
				(t.tok == token.IDENT && t.lit == "as")
			if stop {
				break
			}
		}
		switch t.tok {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			depth--
		case token.EOF:
			return "", p.errorf("unterminated result in %s", ctx)
		}
		p.next()
	}
	text := strings.TrimSpace(p.src[start:p.peek().off])
	if text == "" {
		return "", p.errorf("missing result type after -> in %s", ctx)
	}
	return text, nil
}

// NewMethodSpec builds the MethodSpec of call bound on the type typeName.
// A first argument of the form self, mut self, &self or &mut self makes
// the MethodSpec a method; every other argument must be a Go type, optionally
// preceded by a parameter name.
func NewMethodSpec(call *Call, typeName string) (*MethodSpec, error) {
	m := &MethodSpec{
		Name:         call.Name,
		Pos:          call.Pos,
		Results:      call.Results,
		ResultsKnown: call.HasResults,
	}
	for i, arg := range call.Args {
		if rk, ok := selfForm(arg); ok {
			if i != 0 {
				return nil, parseErrorf(call.Pos, "%s: %q must be the first argument", call.Name, arg)
			}
			m.Receiver = rk
			continue
		}
		name, typ := splitParam(arg)
		if _, err := parser.ParseExpr(typ); err != nil {
			return nil, &ParseError{Pos: call.Pos, Msg: fmt.Sprintf("%s: argument %q is not a Go type", call.Name, arg), Err: err}
		}
		m.Params = append(m.Params, &Param{Name: name, Type: typ})
	}
	for _, r := range call.Results {
		if _, err := parser.ParseExpr(r); err != nil {
			return nil, &ParseError{Pos: call.Pos, Msg: fmt.Sprintf("%s: result %q is not a Go type", call.Name, r), Err: err}
		}
	}
	m.LuaName = luaName(call, typeName, m.Receiver)
	return m, nil
}

func selfForm(arg string) (ReceiverKind, bool) {
	norm := strings.Join(strings.Fields(strings.ReplaceAll(arg, "&", " & ")), " ")
	switch norm {
	case "self", "& self":
		return ReceiverImmutable, true
	case "mut self", "& mut self":
		return ReceiverMutable, true
	}
	return ReceiverNone, false
}

func splitParam(arg string) (string, string) {
	if name, typ, ok := strings.Cut(arg, ":"); ok {
		name = strings.TrimSpace(name)
		if token.IsIdentifier(name) {
			return name, strings.TrimSpace(typ)
		}
	}
	if fs := strings.Fields(arg); len(fs) >= 2 && token.IsIdentifier(fs[0]) {
		return fs[0], strings.TrimSpace(strings.TrimPrefix(arg, fs[0]))
	}
	return "", arg
}

func luaName(call *Call, typeName string, rk ReceiverKind) string {
	if call.Alias != "" {
		return call.Alias
	}
	name := call.Name
	if rk == ReceiverNone {
		if s := strings.TrimSuffix(name, typeName); s != "" && s != name {
			name = s
		} else if s := strings.TrimPrefix(name, typeName); s != "" && s != name {
			name = s
		}
	}
	return strcase.ToSnake(name)
}
