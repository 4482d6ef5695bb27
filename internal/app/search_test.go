package app

import "testing"

func buildTimeline(contents ...string) *Timeline {
	tl := &Timeline{}
	for i, c := range contents {
		origin := OriginUser
		if i%2 == 1 {
			origin = OriginAssistant
		}
		tl.Append(Message{ID: NewLocalID(), Origin: origin, Kind: KindText, Content: c, State: StateConfirmed})
	}
	return tl
}

func TestHighlightEmptyQueryKeepsAllMessages(t *testing.T) {
	tl := buildTimeline("hello there", "hi!", "what's new")
	got := HighlightTimeline(tl, "")
	if len(got) != 3 {
		t.Fatalf("expected all 3 messages, got %d", len(got))
	}
	for i, h := range got {
		if len(h.Spans) != 0 {
			t.Errorf("message %d: empty query produced spans %v", i, h.Spans)
		}
	}
}

func TestHighlightCaseInsensitive(t *testing.T) {
	tl := buildTimeline("Hello World", "nothing here")
	got := HighlightTimeline(tl, "world")

	if len(got) != 2 {
		t.Fatalf("highlighting must not filter; got %d messages", len(got))
	}
	if len(got[0].Spans) != 1 {
		t.Fatalf("expected 1 span, got %v", got[0].Spans)
	}
	span := got[0].Spans[0]
	content := got[0].Message.Content
	if span.Start < 0 || span.End > len(content) || span.Start >= span.End {
		t.Fatalf("span %v out of content range", span)
	}
	if content[span.Start:span.End] != "World" {
		t.Errorf("span covers %q, want %q", content[span.Start:span.End], "World")
	}
	if len(got[1].Spans) != 0 {
		t.Errorf("non-matching message has spans %v", got[1].Spans)
	}
}

func TestHighlightMultipleMatchesInOneMessage(t *testing.T) {
	tl := buildTimeline("go go go")
	got := HighlightTimeline(tl, "go")
	if len(got[0].Spans) != 3 {
		t.Fatalf("expected 3 spans, got %v", got[0].Spans)
	}
	wantStarts := []int{0, 3, 6}
	for i, s := range got[0].Spans {
		if s.Start != wantStarts[i] || s.End != wantStarts[i]+2 {
			t.Errorf("span %d = %v, want start %d", i, s, wantStarts[i])
		}
	}
}

func TestHighlightMultibyteCaseFolding(t *testing.T) {
	// "İ" and the Kelvin sign shrink when lowercased; spans must still land on
	// original byte offsets.
	tl := buildTimeline("5K warm İstanbul")
	content := tl.Messages()[0].Content

	got := HighlightTimeline(tl, "istanbul")
	if len(got[0].Spans) != 1 {
		t.Fatalf("expected 1 span, got %v", got[0].Spans)
	}
	span := got[0].Spans[0]
	if content[span.Start:span.End] != "İstanbul" {
		t.Errorf("span covers %q, want %q", content[span.Start:span.End], "İstanbul")
	}

	got = HighlightTimeline(tl, "k")
	if len(got[0].Spans) != 1 {
		t.Fatalf("expected the Kelvin sign to match 'k', got %v", got[0].Spans)
	}
	span = got[0].Spans[0]
	if content[span.Start:span.End] != "K" {
		t.Errorf("span covers %q, want the Kelvin sign", content[span.Start:span.End])
	}
}

func TestHighlightDoesNotMutateTimeline(t *testing.T) {
	tl := buildTimeline("alpha", "beta")
	before := tl.Messages()
	_ = HighlightTimeline(tl, "a")
	after := tl.Messages()
	if len(before) != len(after) {
		t.Fatal("highlight changed timeline length")
	}
	for i := range before {
		if before[i].Content != after[i].Content || before[i].Seq != after[i].Seq {
			t.Errorf("message %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}
