package scanner

import (
	"testing"

	"github.com/kaon-lang/kaon/lang/token"
)

func scanAll(t *testing.T, src string) []Token {
	t.Helper()
	s := &Scanner{}
	var errs []string
	s.Init(token.NewSource("test", src), func(span token.Span, msg string) {
		errs = append(errs, msg)
	})
	var toks []Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	if len(errs) > 0 {
		t.Fatalf("unexpected scan errors: %v", errs)
	}
	return toks
}

func kinds(toks []Token) []token.Token {
	out := make([]token.Token, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScanOperators(t *testing.T) {
	toks := scanAll(t, "+ - * / % > >= < <= == != & | ^ !")
	want := []token.Token{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.GT, token.GTEQ, token.LT, token.LTEQ, token.EQEQ, token.BANGEQ,
		token.AMPERSAND, token.PIPE, token.CARET, token.BANG, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScanLessThanDistinctFromLessEqual(t *testing.T) {
	// regression test for spec.md §9's noted lexer bug: `<` and `<=` must
	// decode to distinct token kinds, not both map to a `>`-family token.
	toks := scanAll(t, "a < b <= c")
	lt := toks[1]
	lte := toks[3]
	if lt.Kind != token.LT {
		t.Errorf("`<` scanned as %s, want %s", lt.Kind, token.LT)
	}
	if lte.Kind != token.LTEQ {
		t.Errorf("`<=` scanned as %s, want %s", lte.Kind, token.LTEQ)
	}
	if lt.Kind == token.GT || lte.Kind == token.GTEQ {
		t.Error("`<`/`<=` must not be scanned as `>`-family tokens")
	}
}

func TestScanNumber(t *testing.T) {
	toks := scanAll(t, "42 3.14 1e3 2.5e-2")
	want := []float64{42, 3.14, 1000, 0.025}
	for i, w := range want {
		if toks[i].Kind != token.NUMBER {
			t.Fatalf("token %d: kind = %s, want NUMBER", i, toks[i].Kind)
		}
		if toks[i].Num != w {
			t.Errorf("token %d: num = %v, want %v", i, toks[i].Num, w)
		}
	}
}

func TestScanStringEscapes(t *testing.T) {
	toks := scanAll(t, `"hello\nworld" 'it''s'`)
	if toks[0].Lit != "hello\nworld" {
		t.Errorf("got %q, want %q", toks[0].Lit, "hello\nworld")
	}
}

func TestScanKeywordsAndIdents(t *testing.T) {
	toks := scanAll(t, "fun class self notakeyword")
	want := []token.Token{token.FUN, token.CLASS, token.SELF, token.IDENT, token.EOF}
	for i, w := range want {
		if toks[i].Kind != w {
			t.Errorf("token %d = %s, want %s", i, toks[i].Kind, w)
		}
	}
}

func TestScanUnterminatedString(t *testing.T) {
	s := &Scanner{}
	var gotErr bool
	s.Init(token.NewSource("test", `"unterminated`), func(token.Span, string) {
		gotErr = true
	})
	s.Scan()
	if !gotErr {
		t.Error("expected an unterminated string error")
	}
}
