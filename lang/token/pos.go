package token

import "fmt"

// A Source is an immutable handle to a named chunk of source text. It
// corresponds to the embedder API's Source::new(text, path) of spec.md §6.
type Source struct {
	Name string
	Text string

	lineStarts []int // byte offsets of the start of each line, lineStarts[0] == 0
}

// NewSource builds an immutable Source handle for text, recording line
// start offsets so that spans can be rendered with line/column information.
func NewSource(name, text string) *Source {
	s := &Source{Name: name, Text: text, lineStarts: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			s.lineStarts = append(s.lineStarts, i+1)
		}
	}
	return s
}

// LineCol converts a byte offset into a 1-based line and column.
func (s *Source) LineCol(offset int) (line, col int) {
	// binary search for the last line start <= offset
	lo, hi := 0, len(s.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line = lo + 1
	col = offset - s.lineStarts[lo] + 1
	return line, col
}

// Line returns the text of the given 1-based line number, without its
// trailing newline.
func (s *Source) Line(line int) string {
	if line < 1 || line > len(s.lineStarts) {
		return ""
	}
	start := s.lineStarts[line-1]
	end := len(s.Text)
	if line < len(s.lineStarts) {
		end = s.lineStarts[line] - 1
	}
	if end < start {
		end = start
	}
	return s.Text[start:end]
}

// A Span anchors a node or diagnostic to a region of a Source: a byte
// offset and a length, per spec.md §3.1.
type Span struct {
	Source *Source
	Offset int
	Len    int
}

// MakeSpan builds a Span from a Source and a pair of byte offsets.
func MakeSpan(src *Source, start, end int) Span {
	if end < start {
		end = start
	}
	return Span{Source: src, Offset: start, Len: end - start}
}

// End returns the byte offset one past the end of the span.
func (s Span) End() int { return s.Offset + s.Len }

// Union returns the smallest span covering both s and other. Both must
// share the same Source.
func (s Span) Union(other Span) Span {
	if s.Source == nil {
		return other
	}
	if other.Source == nil {
		return s
	}
	start := s.Offset
	if other.Offset < start {
		start = other.Offset
	}
	end := s.End()
	if other.End() > end {
		end = other.End()
	}
	return Span{Source: s.Source, Offset: start, Len: end - start}
}

func (s Span) String() string {
	if s.Source == nil {
		return "<no source>"
	}
	line, col := s.Source.LineCol(s.Offset)
	return fmt.Sprintf("%s:%d:%d", s.Source.Name, line, col)
}
