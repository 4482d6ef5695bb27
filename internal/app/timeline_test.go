package app

import "testing"

func TestTimelineAppendAssignsIncreasingSeq(t *testing.T) {
	tl := &Timeline{}
	a := tl.Append(Message{ID: "a", Origin: OriginUser, Content: "one"})
	b := tl.Append(Message{ID: "b", Origin: OriginAssistant, Content: "two"})
	c := tl.Append(Message{ID: "c", Origin: OriginUser, Content: "three"})

	if a.Seq != 1 || b.Seq != 2 || c.Seq != 3 {
		t.Errorf("expected seq 1,2,3 got %d,%d,%d", a.Seq, b.Seq, c.Seq)
	}
	msgs := tl.Messages()
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Seq <= msgs[i-1].Seq {
			t.Errorf("seq not strictly increasing at %d: %d then %d", i, msgs[i-1].Seq, msgs[i].Seq)
		}
	}
}

func TestTimelineReplaceRenumbers(t *testing.T) {
	tl := &Timeline{}
	tl.Append(Message{ID: "old", Content: "stale"})
	tl.Replace([]Message{
		{ID: "x", Content: "fresh-1"},
		{ID: "y", Content: "fresh-2"},
	})

	msgs := tl.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages after replace, got %d", len(msgs))
	}
	if msgs[0].Seq != 1 || msgs[1].Seq != 2 {
		t.Errorf("expected renumbered seq 1,2 got %d,%d", msgs[0].Seq, msgs[1].Seq)
	}
	if msgs[0].Content != "fresh-1" {
		t.Errorf("old content survived replace: %q", msgs[0].Content)
	}
}

func TestTimelineMarkState(t *testing.T) {
	tl := &Timeline{}
	m := tl.Append(Message{ID: "m1", State: StatePending})

	if !tl.MarkState(m.ID, StateConfirmed) {
		t.Fatal("MarkState did not find the message")
	}
	got := tl.Messages()[0]
	if got.State != StateConfirmed {
		t.Errorf("expected confirmed, got %s", got.State)
	}
	if tl.MarkState("nope", StateFailed) {
		t.Error("MarkState matched an unknown id")
	}
}

func TestTimelineMessagesIsACopy(t *testing.T) {
	tl := &Timeline{}
	tl.Append(Message{ID: "m1", Content: "original"})

	msgs := tl.Messages()
	msgs[0].Content = "mutated"

	if got := tl.Messages()[0].Content; got != "original" {
		t.Errorf("timeline mutated through snapshot: %q", got)
	}
}

func TestTimelineLast(t *testing.T) {
	tl := &Timeline{}
	if _, ok := tl.Last(); ok {
		t.Error("Last on empty timeline reported ok")
	}
	tl.Append(Message{ID: "a"})
	tl.Append(Message{ID: "b"})
	last, ok := tl.Last()
	if !ok || last.ID != "b" {
		t.Errorf("expected last=b, got %v ok=%v", last.ID, ok)
	}
}
