package paramstore

import (
	"testing"

	"github.com/schollz/chordcore/internal/effects"
	"github.com/schollz/chordcore/internal/transport"
)

func fixedClock() func() float64 {
	return func() float64 { return 0 }
}

func newTestStore() *Store {
	chain := effects.New(transport.NullSender{})
	envelope := map[string]*transport.Param{
		"attackSec":    transport.NewParam("envelope.attackSec", 0.001, 2, 0.01),
		"decaySec":     transport.NewParam("envelope.decaySec", 0.001, 4, 0.25),
		"sustainLevel": transport.NewParam("envelope.sustainLevel", 0, 1, 0.6),
		"releaseSec":   transport.NewParam("envelope.releaseSec", 0.001, 8, 0.4),
	}
	return New(chain, envelope, fixedClock())
}

func TestUpdateUnknownPath(t *testing.T) {
	s := newTestStore()
	if err := s.Update("nonsense.path", 1.0); err == nil {
		t.Fatal("expected error for unknown path")
	}
}

func TestUpdateMasterLevel(t *testing.T) {
	s := newTestStore()
	if err := s.Update("master.level", 0.5); err != nil {
		t.Fatal(err)
	}
	if got := s.effects.MasterGain.Read(); got != 0.5 {
		t.Errorf("MasterGain.Read() = %f, want 0.5", got)
	}
}

func TestUpdateWrongTypeRejected(t *testing.T) {
	s := newTestStore()
	if err := s.Update("master.level", "not a float"); err == nil {
		t.Fatal("expected type error")
	}
}

func TestUpdateTempoRangeValidation(t *testing.T) {
	s := newTestStore()
	if err := s.Update("chord.tempoBpm", 500.0); err != nil {
		t.Fatalf("out-of-range tempo should clamp silently, not error: %v", err)
	}
	if got := s.ChordSelection().TempoBPM; got != 240 {
		t.Errorf("TempoBPM = %f, want clamped to 240", got)
	}

	if err := s.Update("chord.tempoBpm", 1.0); err != nil {
		t.Fatalf("out-of-range tempo should clamp silently, not error: %v", err)
	}
	if got := s.ChordSelection().TempoBPM; got != 30 {
		t.Errorf("TempoBPM = %f, want clamped to 30", got)
	}

	if err := s.Update("chord.tempoBpm", 120.0); err != nil {
		t.Fatal(err)
	}
	if got := s.ChordSelection().TempoBPM; got != 120 {
		t.Errorf("TempoBPM = %f, want 120", got)
	}
}

func TestUpdateReverbFeedbackClamps(t *testing.T) {
	s := newTestStore()
	if err := s.Update("effects.reverb.feedback", 5.0); err != nil {
		t.Fatal(err)
	}
	if got := s.effects.ReverbFeedback(); got != 0.8 {
		t.Errorf("ReverbFeedback() = %f, want clamped to 0.8", got)
	}
}

func TestSubscribeFiresOnUpdate(t *testing.T) {
	s := newTestStore()
	var seen float64
	if err := s.Subscribe("master.level", func(v any) {
		seen = v.(float64)
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Update("master.level", 0.3); err != nil {
		t.Fatal(err)
	}
	if seen != 0.3 {
		t.Errorf("listener saw %f, want 0.3", seen)
	}
}

func TestSubscribeUnknownPath(t *testing.T) {
	s := newTestStore()
	if err := s.Subscribe("nonsense.path", func(any) {}); err == nil {
		t.Fatal("expected error subscribing to unknown path")
	}
}

func TestActiveNotesRoundTrip(t *testing.T) {
	s := newTestStore()
	s.SetActiveNotes([]int{60, 64, 67})
	got := s.ActiveNotes()
	if len(got) != 3 {
		t.Fatalf("ActiveNotes() = %v, want 3 entries", got)
	}
}

func TestProgressionStateRoundTrip(t *testing.T) {
	s := newTestStore()
	s.SetProgressionState(2, "playing")
	idx, status := s.ProgressionState()
	if idx != 2 || status != "playing" {
		t.Errorf("ProgressionState() = (%d, %s), want (2, playing)", idx, status)
	}
}
