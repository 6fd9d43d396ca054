// Package effects models the instrument's fixed-topology master
// chain: voices -> saturation -> compressor -> parallel(dry, reverb)
// mixed back together -> master gain -> destination. Chain holds no
// reference to the analyser (internal/analysis) and pushes no frames to
// it. Every scalar except the internal reverb feedback coefficient is
// a transport.Param, so every change goes through the cancel-anchor-ramp
// discipline rather than jumping; the feedback coefficient is a plain
// value set immediately by SetReverbFeedback. Grounded on the teacher's dB-style
// OSC parameter senders in model.go (SendOSCPregainMessage,
// SendOSCSaturationMessage, SendOSCDriveMessage), generalised from
// fire-and-forget sends into scheduled automation.
package effects

import "github.com/schollz/chordcore/internal/transport"

// maxReverbFeedback bounds the reverb's internal feedback coefficient
// so the chain's output is always bounded regardless of user input.
const maxReverbFeedback = 0.8

// Chain holds every automatable parameter of the master effects graph.
type Chain struct {
	SaturationAmount *transport.Param
	SaturationTone   *transport.Param

	CompressorThresholdDb *transport.Param
	CompressorRatio       *transport.Param
	CompressorAttackSec   *transport.Param
	CompressorReleaseSec  *transport.Param

	ReverbRoomMix     *transport.Param
	ReverbDecaySec    *transport.Param
	ReverbPreDelaySec *transport.Param
	reverbFeedback    float64

	MasterGain *transport.Param

	AgeAmount *transport.Param

	sender transport.Sender
}

// New builds a chain at sensible resting values and wires it to
// sender, mirroring the teacher's pattern of pairing each parameter
// field with an immediate OSC send on change.
func New(sender transport.Sender) *Chain {
	return &Chain{
		SaturationAmount:      transport.NewParam("effects.saturation.amount", 0, 1, 0),
		SaturationTone:        transport.NewParam("effects.saturation.tone", 0, 1, 0.5),
		CompressorThresholdDb: transport.NewParam("effects.compressor.thresholdDb", -60, 0, -18),
		CompressorRatio:       transport.NewParam("effects.compressor.ratio", 1, 20, 4),
		CompressorAttackSec:   transport.NewParam("effects.compressor.attackSec", 0, 1, 0.01),
		CompressorReleaseSec:  transport.NewParam("effects.compressor.releaseSec", 0, 2, 0.15),
		ReverbRoomMix:         transport.NewParam("effects.reverb.roomMix", 0, 1, 0.2),
		ReverbDecaySec:        transport.NewParam("effects.reverb.decaySec", 0.1, 10, 2),
		ReverbPreDelaySec:     transport.NewParam("effects.reverb.preDelaySec", 0, 0.2, 0.02),
		reverbFeedback:        0.5,
		MasterGain:            transport.NewParam("master.level", 0, 1, 0.8),
		AgeAmount:             transport.NewParam("effects.age.amount", 0, 1, 0),
		sender:                sender,
	}
}

// SetReverbFeedback clamps to maxReverbFeedback before storing, so the
// reverb tail can never run away regardless of what a caller requests.
func (c *Chain) SetReverbFeedback(v float64) {
	if v > maxReverbFeedback {
		v = maxReverbFeedback
	}
	if v < 0 {
		v = 0
	}
	c.reverbFeedback = v
}

// ReverbFeedback returns the clamped feedback coefficient currently in
// effect.
func (c *Chain) ReverbFeedback() float64 {
	return c.reverbFeedback
}

// ageCurve is the fixed monotone mapping from the AGE meta-parameter
// to coordinated offsets: saturation amount rises, a high-shelf
// attenuation darkens the tone control, and a slow modulation depth
// (folded into reverb pre-delay here, the nearest available knob in
// this simplified topology) increases, together producing a "vintage
// amount" feel as age increases from 0 to 1.
func ageCurve(age float64) (saturation, tone, preDelay float64) {
	age = clampUnit(age)
	saturation = age * 0.6
	tone = 0.5 - age*0.35
	preDelay = 0.02 + age*0.05
	return
}

// ApplyAge sets AgeAmount and cascades its curve to the dependent
// parameters, all ramped from atTime over rampSeconds so engaging
// "vintage" character never pops.
func (c *Chain) ApplyAge(age float64, atTime float64, rampSeconds float64) {
	c.AgeAmount.Set(age, atTime, rampSeconds, transport.Linear)
	saturation, tone, preDelay := ageCurve(age)
	c.SaturationAmount.Set(saturation, atTime, rampSeconds, transport.Linear)
	c.SaturationTone.Set(tone, atTime, rampSeconds, transport.Linear)
	c.ReverbPreDelaySec.Set(preDelay, atTime, rampSeconds, transport.Linear)
}

// PushAll re-sends every parameter's current value to the sender,
// used after a transport reconnects (OSC target restarted, MIDI device
// replugged) to restore engine state without retriggering voices.
func (c *Chain) PushAll() error {
	params := map[string]*transport.Param{
		"effects.saturation.amount":      c.SaturationAmount,
		"effects.saturation.tone":        c.SaturationTone,
		"effects.compressor.thresholdDb": c.CompressorThresholdDb,
		"effects.compressor.ratio":       c.CompressorRatio,
		"effects.compressor.attackSec":   c.CompressorAttackSec,
		"effects.compressor.releaseSec":  c.CompressorReleaseSec,
		"effects.reverb.roomMix":         c.ReverbRoomMix,
		"effects.reverb.decaySec":        c.ReverbDecaySec,
		"effects.reverb.preDelaySec":     c.ReverbPreDelaySec,
		"master.level":                   c.MasterGain,
		"effects.age.amount":             c.AgeAmount,
	}
	for address, p := range params {
		if err := c.sender.SetParam(address, p.Read()); err != nil {
			return err
		}
	}
	return nil
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
