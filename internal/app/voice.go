package app

import (
	"context"
	"errors"
)

// SpeechCapability is the platform speech engine: capture turns microphone
// input into text on the returned channel, Speak plays a reply aloud. The
// engine invokes it but does not implement it.
type SpeechCapability interface {
	StartCapture(ctx context.Context) (<-chan string, error)
	StopCapture() error
	Speak(ctx context.Context, text string) error
}

// ErrSpeechUnavailable is returned when no platform speech engine is wired in.
var ErrSpeechUnavailable = errors.New("speech capability not available")

// NoopSpeech is the default capability on platforms without speech support.
type NoopSpeech struct{}

func (NoopSpeech) StartCapture(context.Context) (<-chan string, error) {
	return nil, ErrSpeechUnavailable
}

func (NoopSpeech) StopCapture() error { return nil }

func (NoopSpeech) Speak(context.Context, string) error { return nil }

// VoiceManager enforces single-flight capture: at most one live capture,
// keyed by the session that started it. Starting a new capture stops the live
// one first.
type VoiceManager struct {
	cap SpeechCapability

	capturing     bool
	activeSession string
}

func NewVoiceManager(cap SpeechCapability) *VoiceManager {
	if cap == nil {
		cap = NoopSpeech{}
	}
	return &VoiceManager{cap: cap}
}

// StartCapture begins capturing for sessionID, stopping any live capture.
func (m *VoiceManager) StartCapture(ctx context.Context, sessionID string) (<-chan string, error) {
	if m.capturing {
		_ = m.cap.StopCapture()
		m.capturing = false
		m.activeSession = ""
	}
	ch, err := m.cap.StartCapture(ctx)
	if err != nil {
		return nil, err
	}
	m.capturing = true
	m.activeSession = sessionID
	return ch, nil
}

// StopCapture stops the live capture if sessionID owns it. Idempotent.
func (m *VoiceManager) StopCapture(sessionID string) {
	if !m.capturing || m.activeSession != sessionID {
		return
	}
	_ = m.cap.StopCapture()
	m.capturing = false
	m.activeSession = ""
}

// Capturing returns the owning session id of the live capture, if any.
func (m *VoiceManager) Capturing() (string, bool) {
	return m.activeSession, m.capturing
}

// Speak plays text aloud, best-effort.
func (m *VoiceManager) Speak(ctx context.Context, text string) error {
	return m.cap.Speak(ctx, text)
}
