// Package voice models a single polyphonic synth voice: a pitched
// oscillator carrier and an ADSR-shaped gain envelope, each exposed as
// a transport.Param so the cancel-anchor-ramp discipline applies to
// every change in frequency or amplitude alike. Grounded on
// internal/midiplayer's NoteState, generalised from a note+velocity
// pair into a full envelope with independent attack, decay, sustain
// and release stages.
package voice

import (
	"fmt"

	"github.com/schollz/chordcore/internal/pitch"
	"github.com/schollz/chordcore/internal/transport"
)

// Stage is where a voice sits in its envelope lifecycle.
type Stage int

const (
	Idle Stage = iota
	Attack
	Decay
	Sustain
	Release
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case Attack:
		return "attack"
	case Decay:
		return "decay"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// Envelope holds the four ADSR stage durations/levels in seconds and
// [0,1] gain units; Sustain is a level, the other three are durations.
type Envelope struct {
	AttackSeconds  float64
	DecaySeconds   float64
	SustainLevel   float64
	ReleaseSeconds float64
}

// DefaultEnvelope is a gentle pad-like shape suited to sustained chord
// tones, the kind of envelope a lo-fi piano instrument leans on.
var DefaultEnvelope = Envelope{
	AttackSeconds:  0.01,
	DecaySeconds:   0.25,
	SustainLevel:   0.6,
	ReleaseSeconds: 0.4,
}

// Voice is one sounding note: a frequency Param driving the
// oscillator, a gain Param driven by the envelope, and the pitch and
// velocity it was triggered with.
type Voice struct {
	Pitch    int
	Velocity int
	Envelope Envelope
	Stage    Stage

	Frequency *transport.Param
	Gain      *transport.Param

	triggeredAt float64
	releasedAt  float64
}

// New builds an idle voice for the given MIDI pitch, its oscillator
// frequency parked at the pitch's equal-tempered frequency and gain at
// zero.
func New(p int, env Envelope) (*Voice, error) {
	freq, err := pitch.Frequency(p)
	if err != nil {
		return nil, fmt.Errorf("voice: %w", err)
	}
	return &Voice{
		Pitch:     p,
		Envelope:  env,
		Stage:     Idle,
		Frequency: transport.NewParam("voice.frequency", 0, 20000, freq),
		Gain:      transport.NewParam("voice.gain", 0, 1, 0),
	}, nil
}

// Trigger starts the attack/decay/sustain ramp at atTime using the
// given note-on velocity (0-127, scaled to a peak gain).
func (v *Voice) Trigger(velocity int, atTime float64) {
	v.Velocity = velocity
	v.triggeredAt = atTime
	peak := clampUnit(float64(velocity) / 127.0)

	v.Gain.Set(peak, atTime, v.Envelope.AttackSeconds, transport.Linear)
	decayStart := atTime + v.Envelope.AttackSeconds
	sustain := peak * v.Envelope.SustainLevel
	v.Gain.Set(sustain, decayStart, v.Envelope.DecaySeconds, transport.Exponential)

	v.Stage = Attack
}

// Release begins the release ramp to zero at atTime, regardless of
// which stage the voice is currently in, so a note released mid-decay
// still ramps smoothly rather than jumping.
func (v *Voice) Release(atTime float64) {
	v.releasedAt = atTime
	v.Gain.Set(0, atTime, v.Envelope.ReleaseSeconds, transport.Linear)
	v.Stage = Release
}

// SetPitch re-tunes the oscillator to a new pitch over a short ramp
// rather than jumping, used for legato/glide style re-voicing without
// retriggering the envelope.
func (v *Voice) SetPitch(newPitch int, atTime float64, rampSeconds float64) error {
	freq, err := pitch.Frequency(newPitch)
	if err != nil {
		return fmt.Errorf("voice: %w", err)
	}
	v.Frequency.Set(freq, atTime, rampSeconds, transport.Exponential)
	v.Pitch = newPitch
	return nil
}

// IsSilentAt reports whether the voice's gain envelope has reached
// (or will have reached, by t) zero following a Release, meaning the
// voice can be reclaimed.
func (v *Voice) IsSilentAt(t float64) bool {
	if v.Stage != Release {
		return false
	}
	releaseEnd := v.releasedAt + v.Envelope.ReleaseSeconds
	return t >= releaseEnd
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
