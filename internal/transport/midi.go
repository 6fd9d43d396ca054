package transport

import (
	"log"

	"github.com/schollz/chordcore/internal/midiconnector"
)

// MIDISender drives an external MIDI instrument, grounded on the
// teacher's midiconnector device layer. Parameter changes have no
// MIDI representation here: SetParam sends nothing, logs every call
// and returns nil.
type MIDISender struct {
	device  *midiconnector.Device
	channel uint8
}

// NewMIDISender opens (by fuzzy name match, as midiconnector.New does)
// a MIDI output device on the given 0-indexed channel.
func NewMIDISender(deviceName string, channel int) (*MIDISender, error) {
	d, err := midiconnector.New(deviceName)
	if err != nil {
		return nil, err
	}
	if err := d.Open(); err != nil {
		return nil, err
	}
	return &MIDISender{device: d, channel: uint8(channel)}, nil
}

func (m *MIDISender) NoteOn(pitch int, velocity int) error {
	err := m.device.NoteOn(m.channel, uint8(pitch), uint8(velocity))
	if err != nil {
		log.Printf("[MIDI] error sending noteOn pitch=%d: %v", pitch, err)
		return err
	}
	logNoteEvent("MIDI", "noteOn", pitch, velocity)
	return nil
}

func (m *MIDISender) NoteOff(pitch int) error {
	err := m.device.NoteOff(m.channel, uint8(pitch))
	if err != nil {
		log.Printf("[MIDI] error sending noteOff pitch=%d: %v", pitch, err)
		return err
	}
	logNoteEvent("MIDI", "noteOff", pitch, -1)
	return nil
}

func (m *MIDISender) SetParam(address string, value float64) error {
	log.Printf("[MIDI] SetParam %s=%f has no direct MIDI mapping; ignored", address, value)
	return nil
}

// Close releases the underlying MIDI device.
func (m *MIDISender) Close() error {
	return m.device.Close()
}
