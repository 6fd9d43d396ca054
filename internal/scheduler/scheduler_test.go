package scheduler

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/schollz/chordcore/internal/analysis"
	"github.com/schollz/chordcore/internal/chord"
	"github.com/schollz/chordcore/internal/transport"
	"github.com/schollz/chordcore/internal/voice"
	"github.com/schollz/chordcore/internal/voicemanager"
)

type countingSender struct {
	mu       sync.Mutex
	noteOns  int
	noteOffs int
}

func (c *countingSender) NoteOn(int, int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.noteOns++
	return nil
}
func (c *countingSender) NoteOff(int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.noteOffs++
	return nil
}
func (c *countingSender) SetParam(string, float64) error { return nil }

func (c *countingSender) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.noteOns, c.noteOffs
}

func wallClock() func() float64 {
	start := time.Now()
	return func() float64 { return time.Since(start).Seconds() }
}

func progressionIVIV(t *testing.T) []chord.Chord {
	t.Helper()
	i, err := chord.Build(60, chord.Major, 0)
	if err != nil {
		t.Fatal(err)
	}
	v, err := chord.Build(69, chord.Minor, 0)
	if err != nil {
		t.Fatal(err)
	}
	return []chord.Chord{i, v}
}

func TestPlayRejectsWhileAlreadyPlaying(t *testing.T) {
	sender := &countingSender{}
	vm := voicemanager.New(sender, voice.DefaultEnvelope, wallClock())
	s := New(vm, wallClock())

	prog := progressionIVIV(t)
	if err := s.Play(prog, 600, 0.25, false); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	if err := s.Play(prog, 600, 0.25, false); err == nil {
		t.Fatal("expected second Play to be rejected while already playing")
	}
}

func TestPlayRejectsEmptyProgression(t *testing.T) {
	sender := &countingSender{}
	vm := voicemanager.New(sender, voice.DefaultEnvelope, wallClock())
	s := New(vm, wallClock())

	if err := s.Play(nil, 120, 1, false); err == nil {
		t.Fatal("expected error for empty progression")
	}
}

func TestStopReleasesOutstandingNotes(t *testing.T) {
	sender := &countingSender{}
	vm := voicemanager.New(sender, voice.DefaultEnvelope, wallClock())
	s := New(vm, wallClock())

	prog := progressionIVIV(t)
	// Very slow tempo (10 BPM, 8 beats: 48s per chord) so the first
	// chord's noteOn fires after the short lead-in but its scheduled
	// noteOff is still far in the future.
	if err := s.Play(prog, 10, 8, false); err != nil {
		t.Fatal(err)
	}

	time.Sleep(150 * time.Millisecond)
	s.Stop()

	if s.Status() != Idle {
		t.Errorf("Status() after Stop = %v, want Idle", s.Status())
	}

	time.Sleep(50 * time.Millisecond)
	_, offs := sender.counts()
	if offs == 0 {
		t.Error("expected Stop to have released at least one outstanding note")
	}
}

// writeMinimalWAV hand-builds a 44-byte-header PCM WAV file (no
// encoder dependency needed for writing, only internal/analysis's
// go-audio/wav decoder for reading it back) with numFrames silent
// samples at sampleRate/bitDepth/channels, for tests that need a
// sample-accurate duration fixture.
func writeMinimalWAV(t *testing.T, dir string, sampleRate, bitDepth, channels, numFrames int) string {
	t.Helper()

	bytesPerSample := bitDepth / 8
	dataSize := numFrames * channels * bytesPerSample
	byteRate := sampleRate * channels * bytesPerSample
	blockAlign := channels * bytesPerSample

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitDepth))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))

	path := filepath.Join(dir, "fixture.wav")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writeMinimalWAV: %v", err)
	}
	return path
}

// TestSampleAccurateFixtureFromWAV decodes a WAV fixture's duration via
// internal/analysis.LoadSampleDurationSeconds, then drives the
// scheduler with a tempo/beat pairing sized exactly to that duration so
// the chord's note-off lands on the sample's own boundary rather than
// an arbitrary constant.
func TestSampleAccurateFixtureFromWAV(t *testing.T) {
	path := writeMinimalWAV(t, t.TempDir(), 44100, 16, 1, 44100/4) // 0.25s
	dur, err := analysis.LoadSampleDurationSeconds(path)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(dur-0.25) > 0.001 {
		t.Fatalf("LoadSampleDurationSeconds = %f, want ~0.25", dur)
	}

	sender := &countingSender{}
	vm := voicemanager.New(sender, voice.DefaultEnvelope, wallClock())
	s := New(vm, wallClock())

	prog := progressionIVIV(t)[:1]
	// One beat at 60 BPM is one second, so a chordDurationBeats equal to
	// dur gives secondsPerChord == dur: the chord's scheduled window
	// matches the sample's decoded length exactly.
	if err := s.Play(prog, 60, dur, false); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	time.Sleep(time.Duration((dur + 0.1) * float64(time.Second)))
	ons, offs := sender.counts()
	if ons == 0 {
		t.Error("expected at least one noteOn within the sample's window")
	}
	if offs == 0 {
		t.Error("expected the chord's noteOff to fire at the sample-accurate boundary")
	}
}

func TestNoNoteOnAfterStop(t *testing.T) {
	sender := &countingSender{}
	vm := voicemanager.New(sender, voice.DefaultEnvelope, wallClock())
	s := New(vm, wallClock())

	prog := progressionIVIV(t)
	if err := s.Play(prog, 600, 0.25, true); err != nil {
		t.Fatal(err)
	}

	time.Sleep(20 * time.Millisecond)
	s.Stop()
	onsAtStop, _ := sender.counts()

	time.Sleep(200 * time.Millisecond)
	onsLater, _ := sender.counts()

	if onsLater != onsAtStop {
		t.Errorf("noteOn count grew after Stop: %d -> %d", onsAtStop, onsLater)
	}
}
