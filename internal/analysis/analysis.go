// Package analysis is the master-path side tap spec.md's C14 names: a
// lazy, restartable sequence of frequency-domain magnitude frames and
// a lazy sequence of time-domain peak-level samples, both polled
// non-blockingly by readers at their own rate. Grounded on the
// teacher's PushWaveformSample/WaveformBuf ring-buffer pattern
// (internal/model/model.go) for the time-domain tap, and on
// internal/getbpm's go-audio/wav decoding for the sample-file duration
// helper used by scheduler test fixtures.
package analysis

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-audio/wav"
)

// ringSize bounds how many frames/samples are retained; older entries
// are overwritten, matching the teacher's fixed-capacity waveform
// buffer rather than an unbounded slice.
const ringSize = 256

// Tap is the analyser node: writers push frames from the (simulated)
// audio thread, readers poll from the UI/event loop. All operations
// are non-blocking; a reader that polls faster than frames arrive just
// sees ok=false.
type Tap struct {
	mu sync.Mutex

	timeDomain     []float64
	timeDomainHead int
	timeDomainLen  int

	spectrum     [][]float64
	spectrumHead int
	spectrumLen  int
}

// New builds an empty Tap.
func New() *Tap {
	return &Tap{
		timeDomain: make([]float64, ringSize),
		spectrum:   make([][]float64, ringSize),
	}
}

// PushPeakSample appends a time-domain peak-level sample (0..1,
// clamped), called from the voice/effects side whenever a new block of
// audio has been rendered.
func (t *Tap) PushPeakSample(level float64) {
	level = clampUnit(level)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeDomain[t.timeDomainHead] = level
	t.timeDomainHead = (t.timeDomainHead + 1) % ringSize
	if t.timeDomainLen < ringSize {
		t.timeDomainLen++
	}
}

// PushSpectrumFrame appends one frequency-domain magnitude frame.
func (t *Tap) PushSpectrumFrame(frame []float64) {
	cp := append([]float64(nil), frame...)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spectrum[t.spectrumHead] = cp
	t.spectrumHead = (t.spectrumHead + 1) % ringSize
	if t.spectrumLen < ringSize {
		t.spectrumLen++
	}
}

// PollTimeDomain returns the most recently pushed peak-level sample,
// or ok=false if nothing has been pushed since the last Reset.
func (t *Tap) PollTimeDomain() (level float64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timeDomainLen == 0 {
		return 0, false
	}
	idx := (t.timeDomainHead - 1 + ringSize) % ringSize
	return t.timeDomain[idx], true
}

// PollSpectrum returns the most recently pushed magnitude frame, or
// ok=false if none is available.
func (t *Tap) PollSpectrum() (frame []float64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.spectrumLen == 0 {
		return nil, false
	}
	idx := (t.spectrumHead - 1 + ringSize) % ringSize
	return append([]float64(nil), t.spectrum[idx]...), true
}

// Reset restarts both sequences, discarding buffered history; readers
// polling afterward see ok=false until new frames arrive.
func (t *Tap) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeDomainHead, t.timeDomainLen = 0, 0
	t.spectrumHead, t.spectrumLen = 0, 0
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

// LoadSampleDurationSeconds decodes a WAV file's header to determine
// its duration, generalising internal/getbpm's Length helper (which
// also inferred tempo from a filename, irrelevant here) down to the
// one number scheduler tests need to build sample-accurate fixtures.
func LoadSampleDurationSeconds(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("analysis: open %s: %w", path, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return 0, fmt.Errorf("analysis: %s is not a valid WAV file", path)
	}
	d.ReadInfo()

	const wavFormatPCM = 1
	const wavFormatExtensible = 65534
	if int(d.WavAudioFormat) != wavFormatPCM && int(d.WavAudioFormat) != wavFormatExtensible {
		dur, err := d.Duration()
		if err != nil {
			return 0, fmt.Errorf("analysis: duration: %w", err)
		}
		return dur.Seconds(), nil
	}

	if d.SampleRate == 0 {
		return 0, fmt.Errorf("analysis: %s has zero sample rate", path)
	}

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("analysis: stat: %w", err)
	}
	bytesPerSample := int64(d.BitDepth / 8)
	channels := int64(d.NumChans)
	if bytesPerSample == 0 || channels == 0 {
		return 0, fmt.Errorf("analysis: %s has invalid PCM format", path)
	}
	approxDataBytes := info.Size()
	totalSamples := approxDataBytes / (bytesPerSample * channels)
	return time.Duration(float64(totalSamples) / float64(d.SampleRate) * float64(time.Second)).Seconds(), nil
}
