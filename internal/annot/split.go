package annot

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"bridgeir/internal/source"
)

// SyntaxError reports annotation text that is not a list of
// `key = "literal"` entries. Unlike Invalid results it is structural: the
// text never reached the point where individual pairs could be judged.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("annotation syntax error at offset %d: %s", e.Offset, e.Msg)
}

// SplitGroup scans the textual form of an annotation group,
//
//	representation = "class", exposedName = "FfiFoo"
//
// into pairs. base is the span of text inside its file; pair spans are
// derived from it. A trailing comma is accepted, an empty group yields no pairs.
func SplitGroup(text string, base source.Span) ([]Pair, error) {
	sc := scanner{text: text, base: base}
	var pairs []Pair
	sc.skipSpace()
	for !sc.eof() {
		p, err := sc.pair()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)

		sc.skipSpace()
		if sc.eof() {
			break
		}
		if sc.peek() != ',' {
			return nil, sc.errorf("expected ',' between annotations, found %q", sc.peek())
		}
		sc.pos++
		sc.skipSpace()
	}
	return pairs, nil
}

type scanner struct {
	text string
	pos  int
	base source.Span
}

func (s *scanner) eof() bool  { return s.pos >= len(s.text) }
func (s *scanner) peek() byte { return s.text[s.pos] }

func (s *scanner) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Offset: s.pos, Msg: fmt.Sprintf(format, args...)}
}

func (s *scanner) skipSpace() {
	for !s.eof() {
		switch s.peek() {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) span(from, to int) source.Span {
	if s.base.IsZero() {
		return source.Span{}
	}
	f, err1 := safecast.Conv[uint32](from)
	t, err2 := safecast.Conv[uint32](to)
	if err1 != nil || err2 != nil {
		return s.base
	}
	return s.base.Sub(f, t)
}

func (s *scanner) pair() (Pair, error) {
	keyStart := s.pos
	key, err := s.ident()
	if err != nil {
		return Pair{}, err
	}
	keySpan := s.span(keyStart, s.pos)

	s.skipSpace()
	if s.eof() || s.peek() != '=' {
		return Pair{}, s.errorf("expected '=' after %q", key)
	}
	s.pos++
	s.skipSpace()

	lit, err := s.literal()
	if err != nil {
		return Pair{}, err
	}
	return Pair{Key: key, KeySpan: keySpan, Value: lit}, nil
}

func (s *scanner) ident() (string, error) {
	start := s.pos
	for !s.eof() {
		c := s.peek()
		if c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || s.pos > start && '0' <= c && c <= '9' {
			s.pos++
			continue
		}
		break
	}
	if s.pos == start {
		if s.eof() {
			return "", s.errorf("expected annotation key")
		}
		return "", s.errorf("expected annotation key, found %q", s.peek())
	}
	return s.text[start:s.pos], nil
}

func (s *scanner) literal() (Literal, error) {
	if s.eof() || s.peek() != '"' {
		return Literal{}, s.errorf("expected string literal")
	}
	start := s.pos
	s.pos++
	for {
		if s.eof() {
			return Literal{}, &SyntaxError{Offset: start, Msg: "unterminated string literal"}
		}
		c := s.peek()
		s.pos++
		if c == '\\' {
			if s.eof() {
				return Literal{}, &SyntaxError{Offset: start, Msg: "unterminated string literal"}
			}
			s.pos++
			continue
		}
		if c == '"' {
			break
		}
	}
	raw := s.text[start:s.pos]
	value, err := strconv.Unquote(raw)
	if err != nil {
		return Literal{}, &SyntaxError{Offset: start, Msg: fmt.Sprintf("malformed string literal %s", raw)}
	}
	return Literal{Value: value, Span: s.span(start, s.pos)}, nil
}
