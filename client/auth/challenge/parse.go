package challenge

import (
	"fmt"
	"strings"
)

// Parse tokenizes a WWW-Authenticate header value into its challenges.
//
//	challenge  = auth-scheme [ 1*SP ( token68 / #auth-param ) ]
//	auth-param = token BWS "=" BWS ( token / quoted-string )
//
// Several challenges may share one header, separated by commas.
func Parse(header string) ([]*Challenge, error) {
	p := &parser{input: header}
	p.skipSeparators()
	if p.eof() {
		return nil, p.fail("empty header")
	}
	var result []*Challenge
	for {
		p.skipSeparators()
		if p.eof() {
			return result, nil
		}
		scheme := p.token()
		if scheme == "" {
			return nil, p.fail(fmt.Sprintf("expected auth-scheme, found %q", p.peek()))
		}
		current := &Challenge{Scheme: scheme, Params: map[string]string{}}
		result = append(result, current)
		if p.eof() {
			return result, nil
		}
		if p.peek() == ',' {
			continue
		}
		if !isSpace(p.peek()) {
			return nil, p.fail(fmt.Sprintf("unexpected %q after auth-scheme", p.peek()))
		}
		p.skipSpace()
		if p.token68(current) {
			continue
		}
		if err := p.params(current); err != nil {
			return nil, err
		}
	}
}

type parser struct {
	input string
	pos   int
}

func (p *parser) eof() bool { return p.pos >= len(p.input) }

func (p *parser) peek() byte { return p.input[p.pos] }

func (p *parser) fail(reason string) error {
	return &ParseError{Header: p.input, Offset: p.pos, Err: fmt.Errorf("%w: %s", ErrMalformed, reason)}
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.peek()) {
		p.pos++
	}
}

// skipSeparators skips whitespace and empty list elements.
func (p *parser) skipSeparators() {
	for !p.eof() && (isSpace(p.peek()) || p.peek() == ',') {
		p.pos++
	}
}

func (p *parser) token() string {
	start := p.pos
	for !p.eof() && isTokenChar(p.peek()) {
		p.pos++
	}
	return p.input[start:p.pos]
}

// token68 consumes a token68 credential when the first item after the scheme is
// one; it rewinds and returns false otherwise.
func (p *parser) token68(target *Challenge) bool {
	mark := p.pos
	for !p.eof() && isToken68Char(p.peek()) {
		p.pos++
	}
	if p.pos == mark {
		return false
	}
	for !p.eof() && p.peek() == '=' {
		p.pos++
	}
	end := p.pos
	p.skipSpace()
	if p.eof() || p.peek() == ',' {
		target.Token68 = p.input[mark:end]
		return true
	}
	p.pos = mark
	return false
}

// params consumes the auth-param list of the current challenge. It stops, leaving
// the position at the next auth-scheme, when a list element is not an auth-param.
func (p *parser) params(target *Challenge) error {
	for {
		p.skipSeparators()
		if p.eof() {
			return nil
		}
		mark := p.pos
		name := p.token()
		if name == "" {
			return p.fail(fmt.Sprintf("expected auth-param, found %q", p.peek()))
		}
		p.skipSpace()
		if p.eof() || p.peek() != '=' {
			if len(target.Params) == 0 {
				return p.fail(fmt.Sprintf("expected '=' after %q", name))
			}
			p.pos = mark
			return nil
		}
		p.pos++
		p.skipSpace()
		if p.eof() {
			return p.fail(fmt.Sprintf("missing value for %q", name))
		}
		var value string
		if p.peek() == '"' {
			var err error
			if value, err = p.quoted(); err != nil {
				return err
			}
		} else if value = p.token(); value == "" {
			return p.fail(fmt.Sprintf("invalid value for %q", name))
		}
		key := strings.ToLower(name)
		if _, ok := target.Params[key]; ok {
			return p.fail(fmt.Sprintf("duplicate auth-param %q", name))
		}
		target.Params[key] = value
		p.skipSpace()
		if p.eof() {
			return nil
		}
		if p.peek() != ',' {
			return p.fail(fmt.Sprintf("expected ',' after %q, found %q", name, p.peek()))
		}
	}
}

func (p *parser) quoted() (string, error) {
	start := p.pos
	p.pos++
	var value strings.Builder
	for !p.eof() {
		c := p.peek()
		switch c {
		case '\\':
			if p.pos+1 >= len(p.input) {
				p.pos = start
				return "", p.fail("unterminated quoted-string")
			}
			value.WriteByte(p.input[p.pos+1])
			p.pos += 2
		case '"':
			p.pos++
			return value.String(), nil
		default:
			value.WriteByte(c)
			p.pos++
		}
	}
	p.pos = start
	return "", p.fail("unterminated quoted-string")
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0
}

func isToken68Char(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("-._~+/", c) >= 0
}
