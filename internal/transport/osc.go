package transport

import (
	"log"

	"github.com/hypebeast/go-osc/osc"
)

// OSCSender drives a SuperCollider-style synth engine over OSC, the way
// the teacher's model.go sends /instrument, /sampler and parameter
// messages to sclang. Note events go to a fixed synth-control address;
// parameter changes go to "/param/<address>".
type OSCSender struct {
	client  *osc.Client
	synth   string
	channel int
}

// NewOSCSender builds a sender targeting host:port, controlling the
// named synth definition.
func NewOSCSender(host string, port int, synth string) *OSCSender {
	return &OSCSender{
		client: osc.NewClient(host, port),
		synth:  synth,
	}
}

func (s *OSCSender) NoteOn(pitch int, velocity int) error {
	msg := osc.NewMessage("/" + s.synth + "/noteOn")
	msg.Append(int32(pitch))
	msg.Append(int32(velocity))
	err := s.client.Send(msg)
	if err != nil {
		log.Printf("[OSC] error sending noteOn pitch=%d: %v", pitch, err)
		return err
	}
	logNoteEvent("OSC", "noteOn", pitch, velocity)
	return nil
}

func (s *OSCSender) NoteOff(pitch int) error {
	msg := osc.NewMessage("/" + s.synth + "/noteOff")
	msg.Append(int32(pitch))
	err := s.client.Send(msg)
	if err != nil {
		log.Printf("[OSC] error sending noteOff pitch=%d: %v", pitch, err)
		return err
	}
	logNoteEvent("OSC", "noteOff", pitch, -1)
	return nil
}

func (s *OSCSender) SetParam(address string, value float64) error {
	msg := osc.NewMessage("/param/" + address)
	msg.Append(float32(value))
	err := s.client.Send(msg)
	if err != nil {
		log.Printf("[OSC] error sending param %s=%f: %v", address, value, err)
		return err
	}
	return nil
}
