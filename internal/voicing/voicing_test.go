package voicing

import (
	"testing"

	"github.com/schollz/chordcore/internal/chord"
)

func build(t *testing.T, root int, q chord.Quality, inv int) chord.Chord {
	t.Helper()
	c, err := chord.Build(root, q, inv)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestOptimiseNeverIncreasesDistance(t *testing.T) {
	progressions := [][]chord.Chord{
		{build(t, 60, chord.Major, 0), build(t, 65, chord.Major, 0)},
		{build(t, 60, chord.Major, 0), build(t, 67, chord.Dominant7, 0)},
		{build(t, 60, chord.Minor, 0), build(t, 65, chord.Minor7, 0)},
	}

	for _, progression := range progressions {
		before := Analyse(progression)
		after := Analyse(Optimise(progression))
		if after.TotalDistance > before.TotalDistance {
			t.Errorf("optimise increased distance: before=%d after=%d", before.TotalDistance, after.TotalDistance)
		}
	}
}

func TestOptimiseIMajorIVV(t *testing.T) {
	progression := []chord.Chord{
		build(t, 60, chord.Major, 0), // I
		build(t, 65, chord.Major, 0), // IV
		build(t, 67, chord.Major, 0), // V
		build(t, 60, chord.Major, 0), // I
	}
	optimised := Optimise(progression)
	report := Analyse(optimised)

	if report.QualityRating != Excellent && report.QualityRating != Good {
		t.Errorf("expected good/excellent rating, got %s (avg=%f)", report.QualityRating, report.AverageDistance)
	}

	_, ivToVLeap := distance(optimised[1].VoicedPitches, optimised[2].VoicedPitches)
	if ivToVLeap > 2 {
		t.Errorf("IV->V max leap = %d, want <= 2", ivToVLeap)
	}
}

func TestAnalyseSingleChordIsExcellent(t *testing.T) {
	report := Analyse([]chord.Chord{build(t, 60, chord.Major, 0)})
	if report.QualityRating != Excellent {
		t.Errorf("single chord rating = %s, want excellent", report.QualityRating)
	}
}

func TestRatingThresholds(t *testing.T) {
	tests := []struct {
		avg  float64
		want Rating
	}{
		{0, Excellent}, {3, Excellent}, {3.1, Good}, {6, Good},
		{6.1, Fair}, {10, Fair}, {10.1, Poor},
	}
	for _, tt := range tests {
		if got := rate(tt.avg); got != tt.want {
			t.Errorf("rate(%f) = %s, want %s", tt.avg, got, tt.want)
		}
	}
}
