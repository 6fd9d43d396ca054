// Package transport is the thin boundary between the music-theory/
// playback core and the external sound engine: an OSC sender grounded
// on the teacher's SuperCollider control messages, a MIDI sender
// grounded on its MIDI-out device layer, and the Param automation type
// shared by every scheduled parameter in the voice and effects graphs.
package transport

import (
	"log"
	"math"
)

// Sender is the minimal interface both OSC and MIDI backends satisfy;
// voice and effects components depend on this, never on a concrete
// transport, so tests can supply an in-memory fake.
type Sender interface {
	NoteOn(pitch int, velocity int) error
	NoteOff(pitch int) error
	SetParam(address string, value float64) error
}

// NullSender discards everything. Useful for audioclock-unlock testing
// and for running the theory layer with no sound engine attached.
type NullSender struct{}

func (NullSender) NoteOn(int, int) error          { return nil }
func (NullSender) NoteOff(int) error               { return nil }
func (NullSender) SetParam(string, float64) error { return nil }

// RampKind selects how a scheduled Param transitions between values.
type RampKind int

const (
	// Linear ramps are used for gain-like parameters.
	Linear RampKind = iota
	// Exponential ramps are used for frequency-like parameters.
	Exponential
)

// ParamEvent is one entry in a Param's automation schedule: either an
// instantaneous anchor (SetValueAtTime) or a ramp endpoint.
type ParamEvent struct {
	Time  float64
	Value float64
	Kind  RampKind
	// Anchor is true for a SetValueAtTime entry (no interpolation before
	// it); false for a ramp endpoint interpolated from the prior event.
	Anchor bool
}

// Param models one automatable scalar (an oscillator frequency, an
// envelope gain stage, an effect's dry/wet mix...). It enforces the
// no-instantaneous-jump discipline required everywhere in this module:
// every Set call cancels future schedule entries, anchors the current
// value at the call time, then appends a ramp to the target.
type Param struct {
	Name     string
	Min, Max float64
	schedule []ParamEvent
	current  float64
}

// NewParam creates a parameter clamped to [min,max], initialised to
// value (itself clamped).
func NewParam(name string, min, max, value float64) *Param {
	p := &Param{Name: name, Min: min, Max: max}
	p.current = clamp(value, min, max)
	p.schedule = []ParamEvent{{Time: 0, Value: p.current, Anchor: true}}
	return p
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Read returns the parameter's last scheduled target value.
func (p *Param) Read() float64 {
	return p.current
}

// CancelScheduled drops every schedule entry at or after atTime.
func (p *Param) CancelScheduled(atTime float64) {
	kept := p.schedule[:0:0]
	for _, e := range p.schedule {
		if e.Time < atTime {
			kept = append(kept, e)
		}
	}
	p.schedule = kept
}

// Set clamps value, cancels any scheduled automation from atTime
// onward, anchors the parameter's current value at atTime, then ramps
// to the clamped target over rampSeconds using kind. rampSeconds of 0
// still emits an anchor-then-anchor pair so the schedule always
// contains an explicit SetValueAtTime before any jump, satisfying the
// "no instantaneous jumps" invariant even for an immediate change.
func (p *Param) Set(value float64, atTime float64, rampSeconds float64, kind RampKind) {
	target := clamp(value, p.Min, p.Max)

	p.CancelScheduled(atTime)
	p.schedule = append(p.schedule, ParamEvent{Time: atTime, Value: p.current, Anchor: true})

	if rampSeconds <= 0 {
		p.schedule = append(p.schedule, ParamEvent{Time: atTime, Value: target, Anchor: true})
	} else {
		p.schedule = append(p.schedule, ParamEvent{Time: atTime + rampSeconds, Value: target, Kind: kind})
	}
	p.current = target
}

// ValueAt interpolates the schedule at time t for test assertions:
// sampling the automation should show a monotone transition between the
// anchor and the ramp endpoint with no discontinuity.
func (p *Param) ValueAt(t float64) float64 {
	if len(p.schedule) == 0 {
		return p.current
	}
	var prev ParamEvent
	havePrev := false
	for _, e := range p.schedule {
		if e.Time > t {
			break
		}
		prev = e
		havePrev = true
	}
	if !havePrev {
		return p.schedule[0].Value
	}

	// find the next event after prev to interpolate toward
	for _, e := range p.schedule {
		if e.Time <= prev.Time {
			continue
		}
		if e.Time < t {
			continue
		}
		if e.Anchor {
			return prev.Value
		}
		if e.Time == prev.Time {
			return e.Value
		}
		frac := (t - prev.Time) / (e.Time - prev.Time)
		switch e.Kind {
		case Exponential:
			if prev.Value <= 0 || e.Value <= 0 {
				return prev.Value + (e.Value-prev.Value)*frac
			}
			return prev.Value * math.Pow(e.Value/prev.Value, frac)
		default:
			return prev.Value + (e.Value-prev.Value)*frac
		}
	}
	return prev.Value
}

// logNoteEvent is the shared log line shape used by both transports,
// matching the teacher's "[COMPONENT] action: detail=value" style.
func logNoteEvent(component, action string, pitch, velocity int) {
	if velocity >= 0 {
		log.Printf("[%s] %s: pitch=%d velocity=%d", component, action, pitch, velocity)
	} else {
		log.Printf("[%s] %s: pitch=%d", component, action, pitch)
	}
}
