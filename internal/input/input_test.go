package input

import "testing"

type recordingSink struct {
	ons  []int
	offs []int
}

func (r *recordingSink) NoteOn(pitch int, velocity int) error {
	r.ons = append(r.ons, pitch)
	return nil
}

func (r *recordingSink) NoteOff(pitch int) error {
	r.offs = append(r.offs, pitch)
	return nil
}

func TestPointerAdapterDownUp(t *testing.T) {
	sink := &recordingSink{}
	a := NewPointerAdapter(sink, func(x, y float64) (int, bool) {
		if x < 0 {
			return 0, false
		}
		return 60 + int(x), true
	})

	a.Down(4, 0, 0)
	a.Up(4, 0)
	a.Down(-1, 0, 0)

	if len(sink.ons) != 1 || sink.ons[0] != 64 {
		t.Errorf("ons = %v, want [64]", sink.ons)
	}
	if len(sink.offs) != 1 || sink.offs[0] != 64 {
		t.Errorf("offs = %v, want [64]", sink.offs)
	}
}

func TestKeyboardAdapterIgnoresRepeat(t *testing.T) {
	sink := &recordingSink{}
	a := NewKeyboardAdapter(sink, DefaultKeyboardMapping)

	a.KeyDown("a")
	a.KeyDown("a") // repeat, should be ignored
	a.KeyUp("a")

	if len(sink.ons) != 1 {
		t.Fatalf("expected 1 noteOn despite repeat, got %d", len(sink.ons))
	}
	if sink.ons[0] != 60 || sink.offs[0] != 60 {
		t.Errorf("ons=%v offs=%v, want pitch 60", sink.ons, sink.offs)
	}
}

func TestKeyboardAdapterUnmappedKeyIgnored(t *testing.T) {
	sink := &recordingSink{}
	a := NewKeyboardAdapter(sink, DefaultKeyboardMapping)
	a.KeyDown("1")
	if len(sink.ons) != 0 {
		t.Errorf("expected no notes for unmapped key, got %v", sink.ons)
	}
}

func TestMIDIInAdapterChannelFiltering(t *testing.T) {
	sink := &recordingSink{}
	a := NewMIDIInAdapter(sink, 0)

	a.HandleMessage(0x90, 60, 100) // channel 0 note-on
	a.HandleMessage(0x91, 64, 100) // channel 1, ignored
	a.HandleMessage(0x80, 60, 0)   // channel 0 note-off

	if len(sink.ons) != 1 || sink.ons[0] != 60 {
		t.Errorf("ons = %v, want [60]", sink.ons)
	}
	if len(sink.offs) != 1 || sink.offs[0] != 60 {
		t.Errorf("offs = %v, want [60]", sink.offs)
	}
}

func TestMIDIInAdapterZeroVelocityNoteOnIsNoteOff(t *testing.T) {
	sink := &recordingSink{}
	a := NewMIDIInAdapter(sink, 0)

	a.HandleMessage(0x90, 60, 100)
	a.HandleMessage(0x90, 60, 0) // note-on velocity 0 == note-off

	if len(sink.offs) != 1 || sink.offs[0] != 60 {
		t.Errorf("offs = %v, want [60] from zero-velocity note-on", sink.offs)
	}
}
