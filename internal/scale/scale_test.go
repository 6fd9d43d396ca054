package scale

import "testing"

func TestListScalesMinimumCount(t *testing.T) {
	scales := ListScales()
	if len(scales) < 13 {
		t.Fatalf("expected at least 13 scales, got %d", len(scales))
	}
}

func TestGetUnknownScale(t *testing.T) {
	if _, err := Get("nonexistent"); err == nil {
		t.Fatal("expected error for unknown scale")
	}
}

func TestPitchesOfLengthAndMembership(t *testing.T) {
	for _, d := range ListScales() {
		pitches, err := PitchesOf(60, d.ID, 1)
		if err != nil {
			t.Fatalf("PitchesOf(%s): %v", d.ID, err)
		}
		if len(pitches) != len(d.AscendingIntervals) {
			t.Errorf("scale %s: got %d pitches, want %d", d.ID, len(pitches), len(d.AscendingIntervals))
		}
		for _, p := range pitches {
			ok, err := Contains(p, 60, d.ID)
			if err != nil {
				t.Fatalf("Contains: %v", err)
			}
			if !ok {
				t.Errorf("scale %s: pitch %d not reported as member", d.ID, p)
			}
		}
	}
}

func TestDegreePitchWraps(t *testing.T) {
	p, err := DegreePitch(60, "major", 8)
	if err != nil {
		t.Fatal(err)
	}
	if p != 72 {
		t.Errorf("DegreePitch(60,major,8) = %d, want 72", p)
	}
}

func TestQuantizeStaysInScale(t *testing.T) {
	for note := 48; note < 72; note++ {
		q, err := Quantize(note, 60, "major")
		if err != nil {
			t.Fatal(err)
		}
		ok, _ := Contains(q, 60, "major")
		if !ok {
			t.Errorf("Quantize(%d) = %d, not in C major", note, q)
		}
	}
}
