package app

// PlaybackJob is the ephemeral state of revealing one assistant reply. At most
// one live job exists at a time.
type PlaybackJob struct {
	SessionID string
	Kind      PayloadKind

	full      []rune
	revealed  int
	cancelled bool
}

// Prefix returns the currently revealed portion of the reply.
func (j *PlaybackJob) Prefix() string {
	if j.revealed >= len(j.full) {
		return string(j.full)
	}
	return string(j.full[:j.revealed])
}

// FullText returns the complete reply content.
func (j *PlaybackJob) FullText() string { return string(j.full) }

func (j *PlaybackJob) done() bool { return j.revealed >= len(j.full) }

// PlaybackController drives the incremental reveal of assistant replies.
// Appending the completed message to a timeline is the engine's job; the
// controller only owns the job lifecycle.
type PlaybackController struct {
	job *PlaybackJob

	cancelledJobs int
}

// Start creates a new job for the session. A live job is cancelled first: a
// new reply always preempts an unfinished reveal, and the preempted partial
// text is discarded.
func (c *PlaybackController) Start(sessionID string, payload ReplyPayload) *PlaybackJob {
	if c.job != nil {
		c.Cancel(c.job.SessionID)
	}
	c.job = &PlaybackJob{
		SessionID: sessionID,
		Kind:      payload.Kind,
		full:      []rune(payload.Content),
	}
	return c.job
}

// Step advances the live job by one unit: one rune for text, the whole
// payload for anything else. It returns the job and whether this step
// completed it; a completed or cancelled job is cleared so a reply can only
// ever complete once.
func (c *PlaybackController) Step() (*PlaybackJob, bool) {
	j := c.job
	if j == nil {
		return nil, false
	}
	if j.cancelled {
		c.job = nil
		return nil, false
	}
	if j.Kind == KindText {
		j.revealed++
	} else {
		j.revealed = len(j.full)
	}
	if j.done() {
		c.job = nil
		return j, true
	}
	return j, false
}

// Cancel marks the job for sessionID cancelled. A cancelled job never appends
// its partial text anywhere. Idempotent when no job is live.
func (c *PlaybackController) Cancel(sessionID string) {
	if c.job == nil || c.job.SessionID != sessionID {
		return
	}
	c.job.cancelled = true
	c.job = nil
	c.cancelledJobs++
}

// Live reports whether a reveal is in progress.
func (c *PlaybackController) Live() bool { return c.job != nil }

// LiveSession returns the session id of the live job, or "".
func (c *PlaybackController) LiveSession() string {
	if c.job == nil {
		return ""
	}
	return c.job.SessionID
}

// CancelledJobs counts reveals that were cancelled before completing.
func (c *PlaybackController) CancelledJobs() int { return c.cancelledJobs }
