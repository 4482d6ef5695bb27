package app

import "unicode"

// Span marks one matched substring as [Start, End) byte offsets into the
// message content.
type Span struct {
	Start int
	End   int
}

// Highlight pairs a message with the spans matching a search query.
type Highlight struct {
	Message Message
	Spans   []Span
}

// HighlightTimeline projects a case-insensitive substring search over a
// timeline without mutating it. An empty query returns every message with an
// empty span list; non-matching messages stay visible either way.
func HighlightTimeline(t *Timeline, query string) []Highlight {
	msgs := t.Messages()
	out := make([]Highlight, 0, len(msgs))
	q := foldRunes(query)
	for _, m := range msgs {
		h := Highlight{Message: m}
		if len(q) > 0 {
			h.Spans = findSpans(m.Content, q)
		}
		out = append(out, h)
	}
	return out
}

func foldRunes(s string) []rune {
	rs := []rune(s)
	for i, r := range rs {
		rs[i] = unicode.ToLower(r)
	}
	return rs
}

// findSpans locates non-overlapping folded matches of q in content. Folding is
// rune by rune and spans carry original byte offsets, so characters whose
// lowercase form has a different encoded length ("İ", the Kelvin sign) can
// neither shift a span nor split a rune.
func findSpans(content string, q []rune) []Span {
	runes := make([]rune, 0, len(content))
	offsets := make([]int, 0, len(content)+1)
	for i, r := range content {
		runes = append(runes, unicode.ToLower(r))
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(content))

	var spans []Span
	for i := 0; i+len(q) <= len(runes); {
		if matchAt(runes, q, i) {
			spans = append(spans, Span{Start: offsets[i], End: offsets[i+len(q)]})
			i += len(q)
		} else {
			i++
		}
	}
	return spans
}

func matchAt(runes, q []rune, at int) bool {
	for j, r := range q {
		if runes[at+j] != r {
			return false
		}
	}
	return true
}
