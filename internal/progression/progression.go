// Package progression holds the named Roman-numeral progression
// catalogue and expands a Roman-numeral sequence into realised chords
// against a chosen (root, scale) pair.
package progression

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/schollz/chordcore/internal/chord"
	"github.com/schollz/chordcore/internal/harmony"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:embed templates.json
var embeddedTemplates []byte

// Template is an immutable catalogue entry naming a Roman-numeral
// pattern.
type Template struct {
	ID            string   `json:"id"`
	DisplayName   string   `json:"displayName"`
	RomanSequence []string `json:"romanSequence"`
	Genre         string   `json:"genre"`
	Description   string   `json:"description"`
}

var catalogue []Template
var byID map[string]Template

func init() {
	if err := json.Unmarshal(embeddedTemplates, &catalogue); err != nil {
		panic(fmt.Sprintf("progression: malformed embedded template catalogue: %v", err))
	}
	byID = make(map[string]Template, len(catalogue))
	for _, t := range catalogue {
		byID[t.ID] = t
	}
}

// ErrUnknownTemplate is returned by GetTemplate for an unrecognised id.
type ErrUnknownTemplate struct{ ID string }

func (e ErrUnknownTemplate) Error() string {
	return fmt.Sprintf("unknown progression template %q", e.ID)
}

// ErrUnknownRoman is returned by Expand when a Roman numeral can't be
// parsed against the scale's diatonic vocabulary.
type ErrUnknownRoman struct{ Input string }

func (e ErrUnknownRoman) Error() string {
	return fmt.Sprintf("unknown roman numeral %q", e.Input)
}

// ListTemplates returns the progression catalogue in declared order.
func ListTemplates() []Template {
	out := make([]Template, len(catalogue))
	copy(out, catalogue)
	return out
}

// GetTemplate looks up a catalogue entry by id.
func GetTemplate(id string) (Template, error) {
	t, ok := byID[id]
	if !ok {
		return Template{}, ErrUnknownTemplate{ID: id}
	}
	return t, nil
}

var romanPattern = regexp.MustCompile(`^([ivxIVX]+)(°)?$`)

var romanToDegree = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5, "vi": 6, "vii": 7,
}

// parseRoman returns the scale degree a Roman-numeral token names. Case
// is ignored — the realised quality always comes from the scale's own
// diatonic triad at that degree, so a label whose case disagrees with
// the diatonic quality is accepted and the realised chord still
// reflects the scale's quality.
func parseRoman(token string) (degree int, err error) {
	m := romanPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, ErrUnknownRoman{Input: token}
	}
	degree, ok := romanToDegree[strings.ToLower(m[1])]
	if !ok {
		return 0, ErrUnknownRoman{Input: token}
	}
	return degree, nil
}

// Expand resolves each Roman numeral against the diatonic-harmoniser
// output for (root, scaleID) and emits the resulting chord in root
// position, in order.
func Expand(root int, scaleID string, romanSequence []string) ([]chord.Chord, error) {
	diatonic, err := harmony.DiatonicChords(root, scaleID)
	if err != nil {
		return nil, err
	}
	byDegree := make(map[int]harmony.DiatonicChord, len(diatonic))
	for _, dc := range diatonic {
		byDegree[dc.ScaleDegree] = dc
	}

	out := make([]chord.Chord, 0, len(romanSequence))
	for _, token := range romanSequence {
		degree, err := parseRoman(token)
		if err != nil {
			return nil, err
		}
		dc, ok := byDegree[degree]
		if !ok {
			return nil, ErrUnknownRoman{Input: token}
		}
		out = append(out, dc.Chord.Clone())
	}
	return out, nil
}

// LabelsOf maps a realised chord sequence back to the Roman numerals
// that would reproduce it for (root, scaleID) — the left-inverse
// relationship required of Expand.
func LabelsOf(root int, scaleID string, chords []chord.Chord) ([]string, error) {
	diatonic, err := harmony.DiatonicChords(root, scaleID)
	if err != nil {
		return nil, err
	}
	byRoot := make(map[int]harmony.DiatonicChord, len(diatonic))
	for _, dc := range diatonic {
		byRoot[dc.RootPitch] = dc
	}

	out := make([]string, 0, len(chords))
	for _, c := range chords {
		dc, ok := byRoot[c.RootPitch]
		if !ok {
			return nil, fmt.Errorf("chord rooted at %d is not diatonic to %s at root %d", c.RootPitch, scaleID, root)
		}
		out = append(out, dc.Roman)
	}
	return out, nil
}
