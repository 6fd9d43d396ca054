package effects

import (
	"testing"

	"github.com/schollz/chordcore/internal/transport"
)

func TestNewChainDefaults(t *testing.T) {
	c := New(transport.NullSender{})
	if c.MasterGain.Read() != 0.8 {
		t.Errorf("MasterGain = %f, want 0.8", c.MasterGain.Read())
	}
	if c.ReverbFeedback() != 0.5 {
		t.Errorf("ReverbFeedback = %f, want 0.5", c.ReverbFeedback())
	}
}

func TestSetReverbFeedbackClampsToBound(t *testing.T) {
	c := New(transport.NullSender{})
	c.SetReverbFeedback(0.95)
	if c.ReverbFeedback() != maxReverbFeedback {
		t.Errorf("ReverbFeedback = %f, want clamped to %f", c.ReverbFeedback(), maxReverbFeedback)
	}
	c.SetReverbFeedback(-1)
	if c.ReverbFeedback() != 0 {
		t.Errorf("ReverbFeedback = %f, want clamped to 0", c.ReverbFeedback())
	}
}

func TestApplyAgeCascadesMonotonically(t *testing.T) {
	c := New(transport.NullSender{})
	c.ApplyAge(0, 0, 0)
	satLow := c.SaturationAmount.Read()
	toneLow := c.SaturationTone.Read()

	c.ApplyAge(1, 1, 0)
	satHigh := c.SaturationAmount.Read()
	toneHigh := c.SaturationTone.Read()

	if satHigh <= satLow {
		t.Errorf("saturation did not increase with age: %f -> %f", satLow, satHigh)
	}
	if toneHigh >= toneLow {
		t.Errorf("tone did not darken with age: %f -> %f", toneLow, toneHigh)
	}
}

func TestApplyAgeClampsInput(t *testing.T) {
	c := New(transport.NullSender{})
	c.ApplyAge(5, 0, 0)
	if v := c.AgeAmount.Read(); v != 1 {
		t.Errorf("AgeAmount.Read() = %f, want clamped to 1", v)
	}
}

func TestPushAllSendsEveryParameter(t *testing.T) {
	sender := &recordingParamSender{}
	c := New(sender)
	if err := c.PushAll(); err != nil {
		t.Fatal(err)
	}
	if len(sender.params) != 11 {
		t.Errorf("PushAll sent %d params, want 11", len(sender.params))
	}
}

type recordingParamSender struct {
	params map[string]float64
}

func (r *recordingParamSender) NoteOn(int, int) error { return nil }
func (r *recordingParamSender) NoteOff(int) error     { return nil }
func (r *recordingParamSender) SetParam(address string, value float64) error {
	if r.params == nil {
		r.params = make(map[string]float64)
	}
	r.params[address] = value
	return nil
}
