// Package voicing selects inversions and octave placements for a chord
// sequence that minimise inter-chord voice motion, and rates the result.
package voicing

import (
	"fmt"
	"sort"

	"github.com/schollz/chordcore/internal/chord"
)

// Rating buckets the average per-transition voice motion of a progression.
type Rating string

const (
	Excellent Rating = "excellent"
	Good      Rating = "good"
	Fair      Rating = "fair"
	Poor      Rating = "poor"
)

// Rating thresholds on averageDistance, per spec.
const (
	excellentMax = 3.0
	goodMax      = 6.0
	fairMax      = 10.0
)

// octaveShifts and the inversions tried per chord when searching for the
// lowest-motion successor voicing. Every inversion of the chord (three
// for a triad, four for a seventh) times three octave offsets, as
// spec.md's default variant set suggests; implementers may
// grow this set freely as long as property (6) — optimise never
// increases total distance — still holds.
var octaveShifts = []int{-12, 0, 12}

// Optimise returns a new sequence where chords[0] keeps its given
// voicing unchanged (see defaultVoicing) and every
// subsequent chord is re-voiced to the inversion/octave variant that
// minimises total L1 semitone distance from the previous realised
// voicing, measured voice-by-voice in sorted order. Ties break first by
// smaller maximum single-voice leap, then by lowest bass note.
func Optimise(chords []chord.Chord) []chord.Chord {
	if len(chords) == 0 {
		return nil
	}

	out := make([]chord.Chord, len(chords))
	out[0] = defaultVoicing(chords[0])

	for i := 1; i < len(chords); i++ {
		out[i] = bestVariant(out[i-1], chords[i])
	}
	return out
}

// defaultVoicing centres the first chord's root-position voicing near
// the octave containing its root pitch; chord.Build already produces a
// root-position voicing rooted there, so this is a pass-through kept as
// a named step for clarity and future tuning.
func defaultVoicing(c chord.Chord) chord.Chord {
	return c.Clone()
}

func bestVariant(prev, next chord.Chord) chord.Chord {
	size, err := chord.ChordSize(next.Quality)
	if err != nil {
		return next.Clone()
	}

	var best chord.Chord
	bestDist := -1
	bestMaxLeap := 0
	bestBass := 0
	found := false

	for inv := 0; inv < size; inv++ {
		for _, shift := range octaveShifts {
			candidate, err := chord.Build(next.RootPitch+shift, next.Quality, inv)
			if err != nil {
				continue
			}
			dist, maxLeap := distance(prev.VoicedPitches, candidate.VoicedPitches)
			bass := candidate.VoicedPitches[0]

			better := !found ||
				dist < bestDist ||
				(dist == bestDist && maxLeap < bestMaxLeap) ||
				(dist == bestDist && maxLeap == bestMaxLeap && bass < bestBass)

			if better {
				found = true
				best = candidate
				bestDist = dist
				bestMaxLeap = maxLeap
				bestBass = bass
			}
		}
	}

	if !found {
		return next.Clone()
	}
	return best
}

// distance matches voices by sorted order (both inputs are already
// sorted ascending) and returns the total L1 semitone motion and the
// single largest per-voice leap. Unequal voice counts match the shared
// prefix; when next has extra voices, each adds its distance from
// next's highest matched voice to the total (not to maxLeap), and extra
// voices in prev are not counted.
func distance(prevPitches, nextPitches []int) (total int, maxLeap int) {
	n := len(prevPitches)
	if len(nextPitches) < n {
		n = len(nextPitches)
	}
	for i := 0; i < n; i++ {
		d := abs(nextPitches[i] - prevPitches[i])
		total += d
		if d > maxLeap {
			maxLeap = d
		}
	}
	// Any extra voices in next are counted against next's highest
	// matched voice, so they still contribute motion rather than being
	// ignored.
	if len(nextPitches) > n {
		for _, p := range nextPitches[n:] {
			d := abs(p - nextPitches[n-1])
			total += d
		}
	}
	return
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Report summarises the voice-leading quality of a realised progression.
type Report struct {
	TotalDistance   int
	AverageDistance float64
	QualityRating   Rating
	Suggestions     []string
}

// Analyse computes the total and average per-transition voice motion of
// a realised progression (as already voiced — it does not re-optimise)
// and rates it, with short advisory strings for rough transitions.
func Analyse(chords []chord.Chord) Report {
	if len(chords) < 2 {
		return Report{QualityRating: Excellent}
	}

	total := 0
	transitions := len(chords) - 1
	var suggestions []string

	for i := 1; i < len(chords); i++ {
		d, maxLeap := distance(chords[i-1].VoicedPitches, chords[i].VoicedPitches)
		total += d
		if maxLeap > 7 {
			suggestions = append(suggestions, fmt.Sprintf(
				"transition %d->%d has a %d-semitone leap in one voice; consider a closer inversion", i, i+1, maxLeap))
		}
	}

	avg := float64(total) / float64(transitions)
	rating := rate(avg)
	if rating == Poor {
		suggestions = append(suggestions, "overall voice leading is rough; re-run Optimise on this progression")
	}

	return Report{
		TotalDistance:   total,
		AverageDistance: avg,
		QualityRating:   rating,
		Suggestions:     suggestions,
	}
}

func rate(avg float64) Rating {
	switch {
	case avg <= excellentMax:
		return Excellent
	case avg <= goodMax:
		return Good
	case avg <= fairMax:
		return Fair
	default:
		return Poor
	}
}

// sortedCopy is a small helper kept for callers that build chords with
// unsorted voicings before handing them to Optimise/Analyse.
func sortedCopy(pitches []int) []int {
	out := append([]int(nil), pitches...)
	sort.Ints(out)
	return out
}
