// Package harmony derives the seven diatonic triads of a scale: their
// voicing, Roman-numeral label, and harmonic function.
package harmony

import (
	"fmt"
	"strings"

	"github.com/schollz/chordcore/internal/chord"
	"github.com/schollz/chordcore/internal/scale"
)

// Function names a chord's role in a progression.
type Function string

const (
	Tonic           Function = "tonic"
	PreDominant     Function = "pre-dominant"
	Subdominant     Function = "subdominant"
	Dominant        Function = "dominant"
	Relative        Function = "relative"
	TonicSubstitute Function = "tonic-substitute"
	Other           Function = "other"
)

// DiatonicChord extends chord.Chord with its Roman-numeral label, scale
// degree and harmonic function.
type DiatonicChord struct {
	chord.Chord
	Roman        string
	ScaleDegree  int
	HarmonicFunc Function
}

var romanNumerals = []string{"I", "II", "III", "IV", "V", "VI", "VII"}

// majorFamilyFunctions gives the S1 scenario's exact ordering for a
// seven-degree major-mode scale (major, lydian, mixolydian).
var majorFamilyFunctions = [7]Function{
	Tonic, PreDominant, TonicSubstitute, Subdominant, Dominant, Relative, Dominant,
}

// minorFamilyFunctions covers the minor forms (natural/harmonic/melodic
// minor, dorian, phrygian, aeolian, locrian) analogously to the major
// table: i is tonic, ii/iv are pre-dominant/subdominant, v/VII supply
// dominant motion, III is the relative major, VI substitutes for tonic.
var minorFamilyFunctions = [7]Function{
	Tonic, PreDominant, Relative, Subdominant, Dominant, TonicSubstitute, Dominant,
}

func isMajorFamily(scaleID string) bool {
	switch scaleID {
	case "major", "lydian", "mixolydian":
		return true
	}
	return false
}

func functionFor(scaleID string, degree int) Function {
	idx := degree - 1
	if idx < 0 || idx > 6 {
		return Other
	}
	if isMajorFamily(scaleID) {
		return majorFamilyFunctions[idx]
	}
	return minorFamilyFunctions[idx]
}

// classify identifies a triad's quality from the semitone gaps between
// its three stacked-third tones.
func classify(lowerGap, upperGap int) (chord.Quality, error) {
	switch {
	case lowerGap == 4 && upperGap == 3:
		return chord.Major, nil
	case lowerGap == 3 && upperGap == 4:
		return chord.Minor, nil
	case lowerGap == 3 && upperGap == 3:
		return chord.Diminished, nil
	case lowerGap == 4 && upperGap == 4:
		return chord.Augmented, nil
	default:
		return "", fmt.Errorf("irregular triad interval stack (%d,%d)", lowerGap, upperGap)
	}
}

func romanLabel(degree int, quality chord.Quality) string {
	label := romanNumerals[degree-1]
	switch quality {
	case chord.Major, chord.Augmented:
		// already uppercase
	case chord.Minor, chord.Diminished:
		label = strings.ToLower(label)
	}
	if quality == chord.Diminished {
		label += "°"
	}
	return label
}

// DiatonicChords builds the scale's diatonic triads for degrees 1..7 by
// taking scale tones at positions i, i+2, i+4 (mod scale length,
// wrapping octaves), classifying the resulting interval stack, and
// labelling it with a Roman numeral and harmonic function. Only
// seven-degree scales have a full diatonic set; for other scales
// (pentatonic, blues, chromatic) a degree is returned only when its
// stacked tones form a major, minor, diminished or augmented triad, and
// every other degree is skipped, so such a scale may return no chords.
func DiatonicChords(root int, scaleID string) ([]DiatonicChord, error) {
	n, err := scale.Len(scaleID)
	if err != nil {
		return nil, err
	}

	out := make([]DiatonicChord, 0, n)
	for degree := 1; degree <= n; degree++ {
		p1, err := scale.DegreePitch(root, scaleID, degree)
		if err != nil {
			return nil, err
		}
		p2, err := scale.DegreePitch(root, scaleID, degree+2)
		if err != nil {
			return nil, err
		}
		p3, err := scale.DegreePitch(root, scaleID, degree+4)
		if err != nil {
			return nil, err
		}

		quality, err := classify(p2-p1, p3-p2)
		if err != nil {
			// Non-tertian scales (pentatonic, blues, chromatic) can produce
			// stacks that aren't a plain triad; skip rather than fail the
			// whole catalogue.
			continue
		}

		c := chord.Chord{
			RootPitch:     p1,
			Quality:       quality,
			Inversion:     0,
			VoicedPitches: []int{p1, p2, p3},
		}

		dc := DiatonicChord{
			Chord:        c,
			ScaleDegree:  degree,
			HarmonicFunc: Other,
		}
		if n == 7 {
			dc.Roman = romanLabel(degree, quality)
			dc.HarmonicFunc = functionFor(scaleID, degree)
		} else {
			dc.Roman = fmt.Sprintf("(%d)", degree)
		}
		out = append(out, dc)
	}
	return out, nil
}
