// Package voicemanager is the polyphonic heart of the instrument: a
// mutex-guarded table of active voices keyed by pitch, with a
// context.CancelFunc-guarded watchdog goroutine per voice, the way
// internal/midiplayer managed its per-instrument NoteState map, but
// generalised to per-voice ADSR envelopes (internal/voice) and a
// sounding-voice cap with stealing, which the teacher never needed
// because outboard MIDI hardware handled its own polyphony.
package voicemanager

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/schollz/chordcore/internal/transport"
	"github.com/schollz/chordcore/internal/voice"
)

// MaxVoices is the soft polyphony cap. Exceeding it steals the oldest
// releasing voice, or failing that the oldest sustaining voice, and
// forces it through a fast release so the incoming note is never
// dropped.
const MaxVoices = 32

// fastStealRelease is the shortened release time forced on a stolen
// voice so it clears quickly rather than competing for the same slot.
const fastStealRelease = 0.02

// entry pairs a voice with the bookkeeping needed to cancel its
// scheduled release and to pick a steal candidate.
type entry struct {
	v         *voice.Voice
	triggered float64
	cancel    context.CancelFunc
}

// Manager owns every currently active voice and the Sender it drives.
type Manager struct {
	mu       sync.Mutex
	voices   map[int]*entry // keyed by pitch
	sender   transport.Sender
	envelope voice.Envelope
	now      func() float64
}

// New builds a Manager targeting sender, using env for every newly
// triggered voice and nowFunc to timestamp events against (ordinarily
// an audioclock.Clock's Now method).
func New(sender transport.Sender, env voice.Envelope, nowFunc func() float64) *Manager {
	return &Manager{
		voices:   make(map[int]*entry),
		sender:   sender,
		envelope: env,
		now:      nowFunc,
	}
}

// NoteOn triggers pitch at velocity. A re-strike of a pitch already
// sounding is ignored: the existing voice keeps playing undisturbed,
// mirroring the teacher's overlapping-note behaviour but without
// cutting the prior note, since chordal playback depends on sustained
// tones not chattering under repeated triggers.
func (m *Manager) NoteOn(pitch int, velocity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, already := m.voices[pitch]; already {
		return nil
	}

	if len(m.voices) >= MaxVoices {
		m.stealOneLocked()
	}

	v, err := voice.New(pitch, m.envelope)
	if err != nil {
		return err
	}

	t := m.now()
	v.Trigger(velocity, t)

	if err := m.sender.NoteOn(pitch, velocity); err != nil {
		log.Printf("[VOICEMANAGER] sender NoteOn failed for pitch=%d: %v", pitch, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.voices[pitch] = &entry{v: v, triggered: t, cancel: cancel}

	releaseAt := t + envelopeSoundingSeconds(v.Envelope)
	go m.watchSustain(ctx, pitch, releaseAt)

	return nil
}

// watchSustain is a placeholder timer analogous to midiplayer's
// duration-based note-off goroutine; callers invoke NoteOff explicitly
// once playback decides a note should end (scheduler owns that
// timing). It only waits until deadline or until the voice's context
// is cancelled; it issues no note-off of its own, so a note that never
// receives NoteOff keeps sounding.
func (m *Manager) watchSustain(ctx context.Context, pitch int, deadline float64) {
	maxSeconds := deadline - m.now()
	if maxSeconds <= 0 {
		return
	}
	timer := time.NewTimer(time.Duration(maxSeconds * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// NoteOff releases the voice sounding at pitch, if any, ramping its
// envelope down rather than cutting it, and cancels its sustain
// watchdog.
func (m *Manager) NoteOff(pitch int) error {
	m.mu.Lock()
	e, ok := m.voices[pitch]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.voices, pitch)
	m.mu.Unlock()

	e.cancel()
	e.v.Release(m.now())
	if err := m.sender.NoteOff(pitch); err != nil {
		log.Printf("[VOICEMANAGER] sender NoteOff failed for pitch=%d: %v", pitch, err)
		return err
	}
	return nil
}

// AllActiveNotes returns the pitches currently sounding, sorted is not
// guaranteed; callers needing a stable order should sort the result.
func (m *Manager) AllActiveNotes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, 0, len(m.voices))
	for p := range m.voices {
		out = append(out, p)
	}
	return out
}

// StopAll releases every sounding voice immediately.
func (m *Manager) StopAll() {
	m.mu.Lock()
	pitches := make([]int, 0, len(m.voices))
	for p := range m.voices {
		pitches = append(pitches, p)
	}
	m.mu.Unlock()

	for _, p := range pitches {
		if err := m.NoteOff(p); err != nil {
			log.Printf("[VOICEMANAGER] StopAll: error releasing pitch=%d: %v", p, err)
		}
	}
}

// stealOneLocked evicts a voice to make room for a new one. It must be
// called with m.mu held. Preference order: the oldest voice already in
// Release (it is on its way out anyway), else the oldest sustaining
// voice by trigger time.
func (m *Manager) stealOneLocked() {
	var oldestReleasing, oldestSustaining int
	haveReleasing, haveSustaining := false, false
	var oldestReleasingTime, oldestSustainingTime float64

	for pitch, e := range m.voices {
		if e.v.Stage == voice.Release {
			if !haveReleasing || e.triggered < oldestReleasingTime {
				oldestReleasing, oldestReleasingTime, haveReleasing = pitch, e.triggered, true
			}
		} else {
			if !haveSustaining || e.triggered < oldestSustainingTime {
				oldestSustaining, oldestSustainingTime, haveSustaining = pitch, e.triggered, true
			}
		}
	}

	var victim int
	switch {
	case haveReleasing:
		victim = oldestReleasing
	case haveSustaining:
		victim = oldestSustaining
	default:
		return
	}

	e := m.voices[victim]
	e.cancel()
	e.v.Envelope.ReleaseSeconds = fastStealRelease
	e.v.Release(m.now())
	delete(m.voices, victim)
	if err := m.sender.NoteOff(victim); err != nil {
		log.Printf("[VOICEMANAGER] steal: error releasing pitch=%d: %v", victim, err)
	}
}

// envelopeSoundingSeconds is a generous upper bound on how long a
// triggered voice could still be meaningfully sounding before an
// explicit NoteOff, used only to size the safety-net watchdog timer.
func envelopeSoundingSeconds(e voice.Envelope) float64 {
	return e.AttackSeconds + e.DecaySeconds + 3600
}
