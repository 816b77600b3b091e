package token

import "testing"

func TestSourceLineCol(t *testing.T) {
	src := NewSource("test.kaon", "var x = 1\nvar y = 2\nz\n")
	cases := []struct {
		offset   int
		line, col int
	}{
		{0, 1, 1},
		{9, 1, 10},
		{10, 2, 1},
		{20, 3, 1},
	}
	for _, c := range cases {
		line, col := src.LineCol(c.offset)
		if line != c.line || col != c.col {
			t.Errorf("LineCol(%d) = (%d,%d), want (%d,%d)", c.offset, line, col, c.line, c.col)
		}
	}
}

func TestSourceLine(t *testing.T) {
	src := NewSource("test.kaon", "aaa\nbb\nc")
	if got := src.Line(1); got != "aaa" {
		t.Errorf("Line(1) = %q, want %q", got, "aaa")
	}
	if got := src.Line(2); got != "bb" {
		t.Errorf("Line(2) = %q, want %q", got, "bb")
	}
	if got := src.Line(3); got != "c" {
		t.Errorf("Line(3) = %q, want %q", got, "c")
	}
	if got := src.Line(99); got != "" {
		t.Errorf("Line(99) = %q, want empty", got)
	}
}

func TestSpanUnion(t *testing.T) {
	src := NewSource("t", "0123456789")
	a := MakeSpan(src, 2, 4)
	b := MakeSpan(src, 6, 8)
	u := a.Union(b)
	if u.Offset != 2 || u.End() != 8 {
		t.Errorf("Union = [%d,%d), want [2,8)", u.Offset, u.End())
	}
}
