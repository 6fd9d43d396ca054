// Package paramstore is the single reactive parameter tree the UI
// layer reads and writes: a flat path->value map with Update and
// Subscribe, fanning changes out to the voice/effects setters the
// moment they land, at the owning clock's current time. Grounded on
// the teacher's model.go, where every settable field on the giant
// Model struct is paired with an immediate OSC send on change;
// generalised here from one struct-field-per-parameter into a single
// dispatch table keyed by dotted path, since spec.md's parameter set
// is considerably smaller and more uniform than the tracker's.
package paramstore

import (
	"fmt"
	"sync"

	"github.com/schollz/chordcore/internal/effects"
	"github.com/schollz/chordcore/internal/transport"
)

// ErrUnknownPath is returned by Update/Subscribe for a path with no
// registered setter.
type ErrUnknownPath struct{ Path string }

func (e ErrUnknownPath) Error() string {
	return fmt.Sprintf("paramstore: unknown path %q", e.Path)
}

// ChordSelection mirrors spec.md's chord-generator selection fields;
// Store keeps the authoritative copy and fans out changes to whatever
// listener (normally the scheduler/voicing glue in cmd/chordcoredemo)
// cares about a new root, scale, template or tempo.
type ChordSelection struct {
	RootPitch             int
	ScaleID               string
	ProgressionTemplateID string
	TempoBPM              float64
	ChordDurationBeats    float64
	LoopEnabled           bool
}

// Store is the paramstore itself: one instance per running instrument.
type Store struct {
	mu        sync.RWMutex
	effects   *effects.Chain
	envelope  map[string]*transport.Param // attackSec, decaySec, sustainLevel, releaseSec
	chord     ChordSelection
	listeners map[string][]func(any)
	now       func() float64

	activeNotes       []int
	cursorIndex       int
	progressionStatus string
}

// setters maps a dotted path to the function that actually applies a
// validated value; every Update call looks the path up here after the
// type assertion for that path's expected Go type succeeds.
type setterFunc func(s *Store, value any) error

var rampSeconds = 0.02 // a short default smoothing window for UI-driven changes

// New builds a store wired to chain (for effects.* and master.level
// paths) and to envelope params named attackSec/decaySec/sustainLevel/
// releaseSec, timestamping every automated change against nowFunc.
func New(chain *effects.Chain, envelope map[string]*transport.Param, nowFunc func() float64) *Store {
	return &Store{
		effects:           chain,
		envelope:          envelope,
		listeners:         make(map[string][]func(any)),
		now:               nowFunc,
		progressionStatus: "idle",
	}
}

var pathSetters = map[string]setterFunc{
	"master.level": func(s *Store, v any) error {
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("paramstore: master.level wants float64")
		}
		s.effects.MasterGain.Set(f, s.now(), rampSeconds, transport.Linear)
		return nil
	},
	"envelope.attackSec":    envelopeSetter("attackSec"),
	"envelope.decaySec":     envelopeSetter("decaySec"),
	"envelope.sustainLevel": envelopeSetter("sustainLevel"),
	"envelope.releaseSec":   envelopeSetter("releaseSec"),

	"effects.saturation.amount":      effectsSetter(func(c *effects.Chain) *transport.Param { return c.SaturationAmount }),
	"effects.saturation.tone":        effectsSetter(func(c *effects.Chain) *transport.Param { return c.SaturationTone }),
	"effects.compressor.thresholdDb": effectsSetter(func(c *effects.Chain) *transport.Param { return c.CompressorThresholdDb }),
	"effects.compressor.ratio":       effectsSetter(func(c *effects.Chain) *transport.Param { return c.CompressorRatio }),
	"effects.compressor.attackSec":   effectsSetter(func(c *effects.Chain) *transport.Param { return c.CompressorAttackSec }),
	"effects.compressor.releaseSec":  effectsSetter(func(c *effects.Chain) *transport.Param { return c.CompressorReleaseSec }),
	"effects.reverb.roomMix":         effectsSetter(func(c *effects.Chain) *transport.Param { return c.ReverbRoomMix }),
	"effects.reverb.decaySec":        effectsSetter(func(c *effects.Chain) *transport.Param { return c.ReverbDecaySec }),
	"effects.reverb.preDelaySec":     effectsSetter(func(c *effects.Chain) *transport.Param { return c.ReverbPreDelaySec }),
	"effects.age.amount": func(s *Store, v any) error {
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("paramstore: effects.age.amount wants float64")
		}
		s.effects.ApplyAge(f, s.now(), rampSeconds)
		return nil
	},
	"effects.reverb.feedback": func(s *Store, v any) error {
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("paramstore: effects.reverb.feedback wants float64")
		}
		s.effects.SetReverbFeedback(f)
		return nil
	},

	"chord.rootPitch": func(s *Store, v any) error {
		i, ok := v.(int)
		if !ok {
			return fmt.Errorf("paramstore: chord.rootPitch wants int")
		}
		s.chord.RootPitch = i
		return nil
	},
	"chord.scaleId": func(s *Store, v any) error {
		str, ok := v.(string)
		if !ok {
			return fmt.Errorf("paramstore: chord.scaleId wants string")
		}
		s.chord.ScaleID = str
		return nil
	},
	"chord.progressionTemplateId": func(s *Store, v any) error {
		str, ok := v.(string)
		if !ok {
			return fmt.Errorf("paramstore: chord.progressionTemplateId wants string")
		}
		s.chord.ProgressionTemplateID = str
		return nil
	},
	"chord.tempoBpm": func(s *Store, v any) error {
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("paramstore: chord.tempoBpm wants float64")
		}
		s.chord.TempoBPM = clamp(f, 30, 240)
		return nil
	},
	"chord.chordDurationBeats": func(s *Store, v any) error {
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("paramstore: chord.chordDurationBeats wants float64")
		}
		s.chord.ChordDurationBeats = f
		return nil
	},
	"chord.loopEnabled": func(s *Store, v any) error {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("paramstore: chord.loopEnabled wants bool")
		}
		s.chord.LoopEnabled = b
		return nil
	},
}

// clamp bounds v to [min,max], the silent-clamp behaviour spec.md §7
// requires for out-of-range parameter inputs (never an error).
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func envelopeSetter(field string) setterFunc {
	return func(s *Store, v any) error {
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("paramstore: envelope.%s wants float64", field)
		}
		p, ok := s.envelope[field]
		if !ok {
			return fmt.Errorf("paramstore: envelope.%s has no wired param", field)
		}
		p.Set(f, s.now(), rampSeconds, transport.Linear)
		return nil
	}
}

func effectsSetter(pick func(*effects.Chain) *transport.Param) setterFunc {
	return func(s *Store, v any) error {
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("paramstore: wants float64")
		}
		pick(s.effects).Set(f, s.now(), rampSeconds, transport.Linear)
		return nil
	}
}

// Update applies value at path: validates it against the registered
// setter, applies it, then notifies every subscriber of that path.
func (s *Store) Update(path string, value any) error {
	setter, ok := pathSetters[path]
	if !ok {
		return ErrUnknownPath{Path: path}
	}

	s.mu.Lock()
	err := setter(s, value)
	var listeners []func(any)
	if err == nil {
		listeners = append(listeners, s.listeners[path]...)
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	for _, fn := range listeners {
		fn(value)
	}
	return nil
}

// Subscribe registers fn to be called after every successful Update to
// path. It returns ErrUnknownPath for a path with no setter, so typos
// fail immediately rather than silently listening forever.
func (s *Store) Subscribe(path string, fn func(value any)) error {
	if _, ok := pathSetters[path]; !ok {
		return ErrUnknownPath{Path: path}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[path] = append(s.listeners[path], fn)
	return nil
}

// ChordSelection returns a copy of the current chord-generator
// selection fields.
func (s *Store) ChordSelection() ChordSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chord
}

// SetActiveNotes updates the read-only activeNotes observable, called
// by whatever owns the voicemanager after each NoteOn/NoteOff.
func (s *Store) SetActiveNotes(notes []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeNotes = append([]int(nil), notes...)
}

// ActiveNotes reads the activeNotes observable.
func (s *Store) ActiveNotes() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.activeNotes...)
}

// SetProgressionState updates the read-only progression.cursorIndex
// and progression.status observables together, since they change in
// lockstep as the scheduler advances.
func (s *Store) SetProgressionState(cursorIndex int, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursorIndex = cursorIndex
	s.progressionStatus = status
}

// ProgressionState reads the progression.cursorIndex and
// progression.status observables.
func (s *Store) ProgressionState() (cursorIndex int, status string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursorIndex, s.progressionStatus
}
