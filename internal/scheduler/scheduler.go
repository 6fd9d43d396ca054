// Package scheduler drives a realised chord progression against the
// audio clock: schedule each chord's note-on/note-off pair a fixed
// number of seconds apart, loop back to the start if asked, and stop
// cleanly on demand. Grounded on internal/midiplayer's goroutine-timer
// plus context.CancelFunc pattern, generalised from per-note timers to
// whole-progression scheduling with cooperative cancellation, and on
// the teacher's tea.Tick re-scheduling idiom in main.go
// (tickWaveform/tickSplash) for the loop-rescheduling wakeup, adapted
// here into a plain time.AfterFunc chain since this package has no
// bubbletea dependency of its own.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/schollz/chordcore/internal/chord"
	"github.com/schollz/chordcore/internal/voicemanager"
)

// smallLeadInSeconds delays the first chord slightly so scheduling a
// play call from within an event handler still has time to land
// before audio needs to start.
const smallLeadInSeconds = 0.05

// smallGapSeconds is the articulation gap subtracted from a chord's
// note-off so successive chords never legato into one another.
const smallGapSeconds = 0.02

// Status is the scheduler's play/idle state.
type Status int

const (
	Idle Status = iota
	Playing
)

func (s Status) String() string {
	if s == Playing {
		return "playing"
	}
	return "idle"
}

// defaultVelocity is used for every scheduled note-on; the scheduler
// has no dynamics model of its own (spec scopes velocity curves out of
// progression playback).
const defaultVelocity = 100

// Scheduler plays a realised progression by scheduling note-on/off
// pairs against a clock, one chord at a time, optionally looping.
type Scheduler struct {
	mu            sync.Mutex
	status        Status
	cursorIndex   int
	stopRequested bool
	voices        *voicemanager.Manager
	now           func() float64
	cancelPending context.CancelFunc
	issuedNotOff  map[int]bool // pitches issued a noteOn not yet released, for stop()
}

// New builds a scheduler driving voices, timestamping scheduled events
// against nowFunc (ordinarily an audioclock.Clock's Now method).
func New(voices *voicemanager.Manager, nowFunc func() float64) *Scheduler {
	return &Scheduler{
		voices:       voices,
		now:          nowFunc,
		issuedNotOff: make(map[int]bool),
	}
}

// Status reports the scheduler's current play/idle state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Play begins scheduling realised's chords, spaced chordDurationBeats
// apart at tempoBPM, optionally looping. It rejects a second Play call
// while already playing; callers must Stop first.
func (s *Scheduler) Play(realised []chord.Chord, tempoBPM float64, chordDurationBeats float64, loop bool) error {
	s.mu.Lock()
	if s.status == Playing {
		s.mu.Unlock()
		return fmt.Errorf("scheduler: already playing, call Stop first")
	}
	if len(realised) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("scheduler: empty progression")
	}
	if tempoBPM <= 0 {
		s.mu.Unlock()
		return fmt.Errorf("scheduler: tempoBPM must be positive, got %f", tempoBPM)
	}

	s.status = Playing
	s.stopRequested = false
	s.cursorIndex = 0
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelPending = cancel
	s.mu.Unlock()

	secondsPerChord := 60 * chordDurationBeats / tempoBPM
	t0 := s.now() + smallLeadInSeconds

	s.scheduleRound(ctx, realised, t0, secondsPerChord, tempoBPM, chordDurationBeats, loop)
	return nil
}

// scheduleRound fires one full pass over realised, then either
// reschedules itself (loop && !stopRequested) or returns to idle.
func (s *Scheduler) scheduleRound(ctx context.Context, realised []chord.Chord, t0 float64, secondsPerChord float64, tempoBPM float64, chordDurationBeats float64, loop bool) {
	n := len(realised)
	for i, c := range realised {
		onAt := t0 + float64(i)*secondsPerChord
		offAt := t0 + float64(i+1)*secondsPerChord - smallGapSeconds
		s.scheduleChord(ctx, c, onAt, offAt, i)
	}

	roundEnd := t0 + float64(n)*secondsPerChord
	delay := roundEnd - s.now()
	if delay < 0 {
		delay = 0
	}

	time.AfterFunc(time.Duration(delay*float64(time.Second)), func() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.mu.Lock()
		stop := s.stopRequested
		s.mu.Unlock()

		if stop {
			return
		}
		if !loop {
			s.mu.Lock()
			s.status = Idle
			s.mu.Unlock()
			return
		}
		s.scheduleRound(ctx, realised, roundEnd, secondsPerChord, tempoBPM, chordDurationBeats, loop)
	})
}

// scheduleChord times a single chord's note-on and note-off pair,
// checking stopRequested cooperatively before each emission so a Stop
// call between scheduling and firing is honoured.
func (s *Scheduler) scheduleChord(ctx context.Context, c chord.Chord, onAt, offAt float64, index int) {
	onDelay := onAt - s.now()
	if onDelay < 0 {
		onDelay = 0
	}
	time.AfterFunc(time.Duration(onDelay*float64(time.Second)), func() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.mu.Lock()
		stop := s.stopRequested
		if !stop {
			s.cursorIndex = index
		}
		s.mu.Unlock()
		if stop {
			return
		}
		for _, p := range c.VoicedPitches {
			if err := s.voices.NoteOn(p, defaultVelocity); err != nil {
				log.Printf("[SCHEDULER] noteOn failed for pitch=%d: %v", p, err)
				continue
			}
			s.mu.Lock()
			s.issuedNotOff[p] = true
			s.mu.Unlock()
		}
	})

	offDelay := offAt - s.now()
	if offDelay < 0 {
		offDelay = 0
	}
	time.AfterFunc(time.Duration(offDelay*float64(time.Second)), func() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.mu.Lock()
		stop := s.stopRequested
		s.mu.Unlock()
		if stop {
			return
		}
		for _, p := range c.VoicedPitches {
			if err := s.voices.NoteOff(p); err != nil {
				log.Printf("[SCHEDULER] noteOff failed for pitch=%d: %v", p, err)
			}
			s.mu.Lock()
			delete(s.issuedNotOff, p)
			s.mu.Unlock()
		}
	})
}

// Stop requests cancellation: every pitch the scheduler has issued and
// not yet released gets an immediate noteOff, every pending timer is
// cancelled via context, and status returns to idle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopRequested = true
	if s.cancelPending != nil {
		s.cancelPending()
	}
	pending := make([]int, 0, len(s.issuedNotOff))
	for p := range s.issuedNotOff {
		pending = append(pending, p)
	}
	s.issuedNotOff = make(map[int]bool)
	s.status = Idle
	s.mu.Unlock()

	for _, p := range pending {
		if err := s.voices.NoteOff(p); err != nil {
			log.Printf("[SCHEDULER] Stop: error releasing pitch=%d: %v", p, err)
		}
	}
}

// CursorIndex reports which chord the scheduler is currently on (or
// most recently started), for UI display.
func (s *Scheduler) CursorIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursorIndex
}
