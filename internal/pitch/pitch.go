// Package pitch converts between MIDI pitch numbers, note names and
// frequencies. It holds no state and fails only on out-of-range pitches
// (an explicit sentinel error rather than a panic) and on note names
// FromName cannot parse.
package pitch

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrOutOfRange is returned whenever a pitch falls outside [0, 127].
var ErrOutOfRange = fmt.Errorf("pitch out of range [0,127]")

// Min and Max bound the valid MIDI pitch space.
const (
	Min = 0
	Max = 127
)

var sharpNames = []string{"c", "c#", "d", "d#", "e", "f", "f#", "g", "g#", "a", "a#", "b"}

var flatToSharp = map[string]string{
	"db": "c#", "eb": "d#", "gb": "f#", "ab": "g#", "bb": "a#",
}

// InRange reports whether p is a valid MIDI pitch.
func InRange(p int) bool {
	return p >= Min && p <= Max
}

// Frequency returns the frequency in Hz of MIDI pitch p using equal
// temperament with A440 at pitch 69. f(p) = 440 * 2^((p-69)/12).
func Frequency(p int) (float64, error) {
	if !InRange(p) {
		return 0, ErrOutOfRange
	}
	return 440 * math.Pow(2, float64(p-69)/12), nil
}

// ToName renders MIDI pitch p as a note name such as "c4" or "c#4",
// sharps preferred. Octave numbering follows MIDI note 60 == "c4"; an
// octave below zero renders with Go's ordinary minus sign, e.g. MIDI
// note 0 is "c-1".
func ToName(p int) (string, error) {
	if !InRange(p) {
		return "", ErrOutOfRange
	}
	octave := (p / 12) - 1
	name := sharpNames[p%12]
	return fmt.Sprintf("%s%d", name, octave), nil
}

// FromName parses a note name back into a MIDI pitch. It accepts the
// canonical sharps-preferred form produced by ToName ("c#4", "d3") as
// well as flats on input ("db4", "eb-1"), and is a left inverse of
// ToName: FromName(ToName(p)) == p for every p in [0,127].
func FromName(name string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid note name %q", name)
	}

	letter := s[:1]
	rest := s[1:]

	accidental := ""
	if strings.HasPrefix(rest, "#") {
		accidental = "#"
		rest = rest[1:]
	} else if strings.HasPrefix(rest, "b") {
		accidental = "b"
		rest = rest[1:]
	}

	if rest == "" {
		return 0, fmt.Errorf("invalid note name %q: missing octave", name)
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid note name %q: %v", name, err)
	}

	pitchClass := letter + accidental
	if sharp, ok := flatToSharp[pitchClass]; ok {
		pitchClass = sharp
	}

	idx := -1
	for i, n := range sharpNames {
		if n == pitchClass {
			idx = i
			break
		}
	}
	if idx == -1 {
		return 0, fmt.Errorf("invalid note name %q: unknown pitch class %q", name, pitchClass)
	}

	p := (octave+1)*12 + idx
	if !InRange(p) {
		return 0, ErrOutOfRange
	}
	return p, nil
}

// LinearToFrequency maps a unit interval x in [0,1] to a frequency in
// [20, 20000] Hz on an exponential curve, for UI controls such as filter
// cutoff knobs: linearToFrequency(x) = 20 * 1000^x.
func LinearToFrequency(x float64) float64 {
	return 20 * math.Pow(1000, x)
}

// FrequencyToLinear is the inverse of LinearToFrequency.
func FrequencyToLinear(freq float64) float64 {
	if freq <= 20 {
		return 0
	}
	return math.Log(freq/20) / math.Log(1000)
}
