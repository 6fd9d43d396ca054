package chord

import (
	"reflect"
	"testing"
)

func TestBuildRootPosition(t *testing.T) {
	c, err := Build(60, Major, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{60, 64, 67}
	if !reflect.DeepEqual(c.VoicedPitches, want) {
		t.Errorf("got %v, want %v", c.VoicedPitches, want)
	}
}

func TestBuildInversion(t *testing.T) {
	c, err := Build(60, Major, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{64, 67, 72}
	if !reflect.DeepEqual(c.VoicedPitches, want) {
		t.Errorf("first inversion: got %v, want %v", c.VoicedPitches, want)
	}

	c2, err := Build(60, Major, 2)
	if err != nil {
		t.Fatal(err)
	}
	want2 := []int{67, 72, 76}
	if !reflect.DeepEqual(c2.VoicedPitches, want2) {
		t.Errorf("second inversion: got %v, want %v", c2.VoicedPitches, want2)
	}
}

func TestBuildInversionModulo(t *testing.T) {
	c, err := Build(60, Major, 3)
	if err != nil {
		t.Fatal(err)
	}
	c0, _ := Build(60, Major, 0)
	if !reflect.DeepEqual(c.VoicedPitches, c0.VoicedPitches) {
		t.Errorf("inversion 3 should equal inversion 0 for a triad: got %v, want %v", c.VoicedPitches, c0.VoicedPitches)
	}
}

func TestBuildUnsupportedQuality(t *testing.T) {
	_, err := Build(60, Quality("nonexistent"), 0)
	if err == nil {
		t.Fatal("expected error for unsupported quality")
	}
}

func TestVoicedPitchesSortedAscending(t *testing.T) {
	for _, q := range []Quality{Major, Minor, Diminished, Augmented, Dominant7, Major7, Minor7, HalfDiminished, FullyDiminished} {
		size, _ := ChordSize(q)
		for inv := 0; inv < size; inv++ {
			c, err := Build(60, q, inv)
			if err != nil {
				t.Fatal(err)
			}
			for i := 1; i < len(c.VoicedPitches); i++ {
				if c.VoicedPitches[i] < c.VoicedPitches[i-1] {
					t.Errorf("quality %s inversion %d not sorted: %v", q, inv, c.VoicedPitches)
				}
			}
		}
	}
}
