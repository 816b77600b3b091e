package scanner

import (
	"strings"

	"github.com/kaon-lang/kaon/lang/token"
)

// scanString scans a STRING token delimited by quote (either `"` or `'`),
// processing backslash escapes (\n \t \r \\ \" \' \0) and decoding the
// escaped text into Lit.
func (s *Scanner) scanString(start int, quote byte) Token {
	s.next() // consume opening quote
	var sb strings.Builder
	for {
		if s.ch == eof {
			s.errorf(start, "unterminated string literal")
			break
		}
		if byte(s.ch) == quote && s.ch < utf8RuneSelf {
			s.next()
			break
		}
		if s.ch == '\n' {
			s.errorf(start, "unterminated string literal")
			break
		}
		if s.ch == '\\' {
			s.next()
			switch s.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '\'':
				sb.WriteByte('\'')
			case eof:
				s.errorf(start, "unterminated string literal")
				return Token{Kind: token.STRING, Span: s.span(start), Lit: sb.String()}
			default:
				s.errorf(s.offset, "invalid escape sequence \\%c", s.ch)
				sb.WriteRune(s.ch)
			}
			s.next()
			continue
		}
		sb.WriteRune(s.ch)
		s.next()
	}
	return Token{Kind: token.STRING, Span: s.span(start), Lit: sb.String()}
}

const utf8RuneSelf = 0x80
