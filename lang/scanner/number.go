package scanner

import (
	"strconv"

	"github.com/kaon-lang/kaon/lang/token"
)

// scanNumber scans a NUMBER token: an integer or floating-point literal,
// optionally with a fractional part and/or an exponent. Kaon's Value model
// has a single Number(f64) variant (spec.md §3.3), so both forms decode to
// a float64.
func (s *Scanner) scanNumber(start int) Token {
	for isDigit(s.ch) {
		s.next()
	}
	if s.ch == '.' && isDigit(rune(s.peek())) {
		s.next()
		for isDigit(s.ch) {
			s.next()
		}
	}
	if s.ch == 'e' || s.ch == 'E' {
		save, saveRd := s.offset, s.rdOff
		s.next()
		if s.ch == '+' || s.ch == '-' {
			s.next()
		}
		if isDigit(s.ch) {
			for isDigit(s.ch) {
				s.next()
			}
		} else {
			// not actually an exponent, back out
			s.offset, s.rdOff = save, saveRd
			s.ch = 'e'
		}
	}

	lit := s.src.Text[start:s.offset]
	val, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		s.errorf(start, "invalid number literal %q", lit)
	}
	return Token{Kind: token.NUMBER, Span: s.span(start), Lit: lit, Num: val}
}
