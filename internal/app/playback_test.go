package app

import "testing"

func TestPlaybackStepRevealsOneRunePerTick(t *testing.T) {
	c := &PlaybackController{}
	c.Start("1", ReplyPayload{Kind: KindText, Content: "héllo"})

	job, done := c.Step()
	if done {
		t.Fatal("completed after one tick of a five-rune reply")
	}
	if got := job.Prefix(); got != "h" {
		t.Errorf("expected prefix %q, got %q", "h", got)
	}
	job, done = c.Step()
	if got := job.Prefix(); got != "hé" {
		t.Errorf("expected prefix %q, got %q", "hé", got)
	}
	for !done {
		job, done = c.Step()
	}
	if job.FullText() != "héllo" {
		t.Errorf("completed text mismatch: %q", job.FullText())
	}
	if c.Live() {
		t.Error("controller still live after completion")
	}
}

func TestPlaybackImagePayloadIsAtomic(t *testing.T) {
	c := &PlaybackController{}
	c.Start("1", ReplyPayload{Kind: KindImage, Content: "https://img.example/cat.png"})

	job, done := c.Step()
	if !done {
		t.Fatal("image payload should complete in a single tick")
	}
	if job.FullText() != "https://img.example/cat.png" {
		t.Errorf("image reference mismatch: %q", job.FullText())
	}
}

func TestPlaybackCancelMidReveal(t *testing.T) {
	c := &PlaybackController{}
	c.Start("1", ReplyPayload{Kind: KindText, Content: "a long reply"})
	c.Step()
	c.Step()

	c.Cancel("1")
	if c.Live() {
		t.Error("job still live after cancel")
	}
	if job, done := c.Step(); job != nil || done {
		t.Error("cancelled job produced a step result")
	}
	if c.CancelledJobs() != 1 {
		t.Errorf("expected 1 cancelled job, got %d", c.CancelledJobs())
	}
}

func TestPlaybackCancelIsIdempotent(t *testing.T) {
	c := &PlaybackController{}
	c.Cancel("1")
	c.Cancel("1")
	if c.CancelledJobs() != 0 {
		t.Errorf("cancel with no live job counted: %d", c.CancelledJobs())
	}

	c.Start("1", ReplyPayload{Kind: KindText, Content: "x"})
	c.Cancel("other")
	if !c.Live() {
		t.Error("cancel for another session must not touch the live job")
	}
}

func TestPlaybackStartPreemptsLiveJob(t *testing.T) {
	c := &PlaybackController{}
	c.Start("1", ReplyPayload{Kind: KindText, Content: "first"})
	c.Step()

	c.Start("1", ReplyPayload{Kind: KindText, Content: "second"})
	if c.CancelledJobs() != 1 {
		t.Errorf("preempted job not counted as cancelled: %d", c.CancelledJobs())
	}
	job, done := c.Step()
	if done {
		t.Fatal("fresh job completed on first tick")
	}
	if got := job.Prefix(); got != "s" {
		t.Errorf("new job should reveal from scratch, got prefix %q", got)
	}
}

func TestPlaybackEmptyTextCompletesImmediately(t *testing.T) {
	c := &PlaybackController{}
	c.Start("1", ReplyPayload{Kind: KindText, Content: ""})
	job, done := c.Step()
	if !done {
		t.Fatal("empty reply should complete on the first tick")
	}
	if job.FullText() != "" {
		t.Errorf("unexpected text %q", job.FullText())
	}
}
