// Package input adapts the three native event sources spec.md names
// -- pointer, physical keyboard, MIDI-in -- down to the single
// noteOn(pitch, velocity)/noteOff(pitch) surface voicemanager exposes.
// The physical-keyboard mapping is grounded on the teacher's
// internal/input key-dispatch idiom (a lookup table from key
// identifier to an action), generalised here from tracker editing
// commands to a one-octave piano mapping over two QWERTY rows; the
// MIDI-in adapter
// is grounded on internal/midiconnector's device layer, read in
// reverse (listening for incoming status bytes instead of sending
// them).
package input

import (
	"log"

	"github.com/schollz/chordcore/internal/voicemanager"
)

// defaultVelocity is substituted whenever a source event carries no
// velocity of its own (a mouse click, a keyboard key-down).
const defaultVelocity = 100

// NoteSink is the C9 surface every adapter drives; voicemanager.Manager
// satisfies it directly, and tests can supply a recording fake.
type NoteSink interface {
	NoteOn(pitch int, velocity int) error
	NoteOff(pitch int) error
}

var _ NoteSink = (*voicemanager.Manager)(nil)

// PointerAdapter turns pointer-down/up events at a given (x, y) into
// notes via a caller-supplied pitch mapping function, mirroring a
// clickable on-screen keyboard.
type PointerAdapter struct {
	sink      NoteSink
	pitchFrom func(x, y float64) (int, bool)
}

// NewPointerAdapter builds an adapter that maps pointer coordinates to
// a pitch via pitchFrom, which returns ok=false for a coordinate that
// hits no playable region.
func NewPointerAdapter(sink NoteSink, pitchFrom func(x, y float64) (int, bool)) *PointerAdapter {
	return &PointerAdapter{sink: sink, pitchFrom: pitchFrom}
}

// Down handles a pointer press at (x, y) with the given button.
func (p *PointerAdapter) Down(x, y float64, button int) {
	pitch, ok := p.pitchFrom(x, y)
	if !ok {
		return
	}
	if err := p.sink.NoteOn(pitch, defaultVelocity); err != nil {
		log.Printf("[INPUT] pointer noteOn failed for pitch=%d: %v", pitch, err)
	}
}

// Up handles a pointer release at (x, y).
func (p *PointerAdapter) Up(x, y float64) {
	pitch, ok := p.pitchFrom(x, y)
	if !ok {
		return
	}
	if err := p.sink.NoteOff(pitch); err != nil {
		log.Printf("[INPUT] pointer noteOff failed for pitch=%d: %v", pitch, err)
	}
}

// KeyboardMapping is a configuration record mapping a physical key
// identifier (e.g. "a", "w", "s") to a MIDI pitch, the way the teacher
// keeps its key->action tables as plain data rather than switch
// statements.
type KeyboardMapping map[string]int

// DefaultKeyboardMapping lays out one octave starting at middle C
// across a QWERTY home row plus the row above, the common
// "piano-style" computer-keyboard layout.
var DefaultKeyboardMapping = KeyboardMapping{
	"a": 60, "w": 61, "s": 62, "e": 63, "d": 64,
	"f": 65, "t": 66, "g": 67, "y": 68, "h": 69,
	"u": 70, "j": 71, "k": 72,
}

// KeyboardAdapter translates physical key identifiers into notes using
// a KeyboardMapping, tracking which keys are currently held so a
// key-repeat event never re-fires noteOn.
type KeyboardAdapter struct {
	sink    NoteSink
	mapping KeyboardMapping
	held    map[string]bool
}

// NewKeyboardAdapter builds an adapter over mapping.
func NewKeyboardAdapter(sink NoteSink, mapping KeyboardMapping) *KeyboardAdapter {
	return &KeyboardAdapter{sink: sink, mapping: mapping, held: make(map[string]bool)}
}

// KeyDown handles a physical key press; a key already held is ignored
// so OS key-repeat does not retrigger the note.
func (k *KeyboardAdapter) KeyDown(key string) {
	if k.held[key] {
		return
	}
	pitch, ok := k.mapping[key]
	if !ok {
		return
	}
	k.held[key] = true
	if err := k.sink.NoteOn(pitch, defaultVelocity); err != nil {
		log.Printf("[INPUT] keyboard noteOn failed for key=%q pitch=%d: %v", key, pitch, err)
	}
}

// KeyUp handles a physical key release.
func (k *KeyboardAdapter) KeyUp(key string) {
	pitch, ok := k.mapping[key]
	if !ok {
		return
	}
	delete(k.held, key)
	if err := k.sink.NoteOff(pitch); err != nil {
		log.Printf("[INPUT] keyboard noteOff failed for key=%q pitch=%d: %v", key, pitch, err)
	}
}

// midiStatus constants for the subset of channel-voice messages this
// adapter cares about, high nibble of the MIDI status byte.
const (
	midiNoteOffStatus = 0x8
	midiNoteOnStatus  = 0x9
)

// MIDIInAdapter translates raw (status, data1, data2) MIDI-in events
// into notes, filtering to a single channel the way the teacher's
// midiconnector opens one device:channel pair at a time. A note-on
// with velocity 0 is treated as a note-off, per the MIDI spec's
// running-status convention.
type MIDIInAdapter struct {
	sink    NoteSink
	channel uint8 // 0-indexed; events on other channels are ignored
}

// NewMIDIInAdapter builds an adapter listening only to channel
// (0-indexed).
func NewMIDIInAdapter(sink NoteSink, channel int) *MIDIInAdapter {
	return &MIDIInAdapter{sink: sink, channel: uint8(channel)}
}

// HandleMessage processes one raw MIDI channel-voice message.
func (m *MIDIInAdapter) HandleMessage(status, data1, data2 byte) {
	msgType := status >> 4
	ch := status & 0x0f
	if ch != m.channel {
		return
	}

	pitch := int(data1)
	velocity := int(data2)

	switch msgType {
	case midiNoteOnStatus:
		if velocity == 0 {
			if err := m.sink.NoteOff(pitch); err != nil {
				log.Printf("[INPUT] midi-in noteOff failed for pitch=%d: %v", pitch, err)
			}
			return
		}
		if err := m.sink.NoteOn(pitch, velocity); err != nil {
			log.Printf("[INPUT] midi-in noteOn failed for pitch=%d: %v", pitch, err)
		}
	case midiNoteOffStatus:
		if err := m.sink.NoteOff(pitch); err != nil {
			log.Printf("[INPUT] midi-in noteOff failed for pitch=%d: %v", pitch, err)
		}
	}
}
