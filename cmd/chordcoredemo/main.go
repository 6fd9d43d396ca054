// Command chordcoredemo is the one permitted "UI" surface over the
// core: a minimal bubbletea status readout of the audio clock, active
// voices and progression cursor, analogous to the teacher's splash/
// status line rather than a full tracker view. It is not a widget or
// theming system; it exists to give bubbletea, lipgloss, termenv and
// go-colorful a real caller.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"github.com/schollz/chordcore/internal/audioclock"
	"github.com/schollz/chordcore/internal/effects"
	"github.com/schollz/chordcore/internal/pitch"
	"github.com/schollz/chordcore/internal/progression"
	"github.com/schollz/chordcore/internal/scale"
	"github.com/schollz/chordcore/internal/scheduler"
	"github.com/schollz/chordcore/internal/transport"
	"github.com/schollz/chordcore/internal/voice"
	"github.com/schollz/chordcore/internal/voicemanager"
	"github.com/schollz/chordcore/internal/voicing"
)

type tickMsg time.Time

func tickStatus() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type demoModel struct {
	clock     *audioclock.Clock
	voices    *voicemanager.Manager
	scheduler *scheduler.Scheduler
	chain     *effects.Chain
	closer    io.Closer // non-nil only when the sender owns a real device (MIDI-out)

	rootPitch   int
	scaleID     string
	templateID  string
	tempoBPM    float64
	beatsPerBar float64
	err         error

	spinner spinner.Model
}

func newDemoModel(oscHost string, oscPort int, synth string, midiOutDevice string, midiOutChannel int, rootPitch int, scaleID, templateID string, tempoBPM float64) (*demoModel, error) {
	clock, err := audioclock.New(true)
	if err != nil {
		return nil, fmt.Errorf("audioclock: %w", err)
	}
	if err := clock.Unlock(); err != nil {
		return nil, fmt.Errorf("unlock: %w", err)
	}

	var sender transport.Sender
	var closer io.Closer
	switch {
	case midiOutDevice != "":
		midiSender, err := transport.NewMIDISender(midiOutDevice, midiOutChannel)
		if err != nil {
			return nil, fmt.Errorf("midi-out: %w", err)
		}
		sender = midiSender
		closer = midiSender
	case oscPort > 0:
		sender = transport.NewOSCSender(oscHost, oscPort, synth)
	default:
		sender = transport.NullSender{}
	}

	chain := effects.New(sender)
	voices := voicemanager.New(sender, voice.DefaultEnvelope, clock.Now)
	sched := scheduler.New(voices, clock.Now)

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	return &demoModel{
		clock:       clock,
		voices:      voices,
		scheduler:   sched,
		chain:       chain,
		closer:      closer,
		rootPitch:   rootPitch,
		scaleID:     scaleID,
		templateID:  templateID,
		tempoBPM:    tempoBPM,
		beatsPerBar: 2,
		spinner:     sp,
	}, nil
}

func (m *demoModel) playProgression() error {
	tmpl, err := progression.GetTemplate(m.templateID)
	if err != nil {
		return err
	}
	chords, err := progression.Expand(m.rootPitch, m.scaleID, tmpl.RomanSequence)
	if err != nil {
		return err
	}
	chords = voicing.Optimise(chords)
	return m.scheduler.Play(chords, m.tempoBPM, m.beatsPerBar, true)
}

func (m *demoModel) Init() tea.Cmd {
	if err := m.playProgression(); err != nil {
		m.err = err
	}
	return tea.Batch(tickStatus(), m.spinner.Tick)
}

func (m *demoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.scheduler.Stop()
			m.voices.StopAll()
			if m.closer != nil {
				if err := m.closer.Close(); err != nil {
					log.Printf("[DEMO] error closing MIDI-out device: %v", err)
				}
			}
			return m, tea.Quit
		}
	case tickMsg:
		return m, tickStatus()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	errorStyle = lipgloss.NewStyle().Background(lipgloss.Color("1")).Foreground(lipgloss.Color("15"))
)

// activeNotesBar renders one Unicode block per active voice, colour
// graded by pitch height, in the same termenv/go-colorful idiom the
// teacher's mixer meter uses for its level bars.
func activeNotesBar(pitches []int) string {
	if len(pitches) == 0 {
		return labelStyle.Render("(silent)")
	}
	profile := termenv.ColorProfile()
	var b strings.Builder
	for _, p := range pitches {
		t := clampUnit(float64(p-36) / 84.0)
		lo, _ := colorful.Hex("#404040")
		hi, _ := colorful.Hex("#FFFFFF")
		c := lo.BlendLuv(hi, t)
		termColor := profile.Color(c.Hex())
		b.WriteString(termenv.String("█").Foreground(termColor).String())
	}
	return b.String()
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

func (m *demoModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf(" chordcore error: %v ", m.err)) + "\n"
	}

	status := m.scheduler.Status()
	cursor := m.scheduler.CursorIndex()
	active := m.voices.AllActiveNotes()

	var b strings.Builder
	if status == scheduler.Playing {
		b.WriteString(m.spinner.View() + " ")
	}
	b.WriteString(labelStyle.Render("clock ") + valueStyle.Render(fmt.Sprintf("%.2fs", m.clock.Now())) + "   ")
	b.WriteString(labelStyle.Render("status ") + valueStyle.Render(status.String()) + "   ")
	b.WriteString(labelStyle.Render("chord ") + valueStyle.Render(fmt.Sprintf("%d", cursor)) + "\n")
	b.WriteString(labelStyle.Render("voices ") + activeNotesBar(active) + "\n")
	b.WriteString(labelStyle.Render("(q to quit)"))
	return b.String()
}

func rootPitchFromFlag(name string) (int, error) {
	return pitch.FromName(name)
}

func main() {
	oscHost := flag.String("osc-host", "127.0.0.1", "OSC host to send note/param events to")
	oscPort := flag.Int("osc-port", 0, "OSC port to send note/param events to (0 disables OSC output)")
	synth := flag.String("synth", "chordcore", "OSC synth address prefix")
	midiOutDevice := flag.String("midi-out", "", "MIDI output device name (fuzzy-matched); empty disables MIDI output and falls back to OSC/null")
	midiOutChannel := flag.Int("midi-out-channel", 0, "0-indexed MIDI output channel, used only with -midi-out")
	rootFlag := flag.String("root", "c4", "progression root pitch name, e.g. c4")
	scaleFlag := flag.String("scale", "major", "scale id, see internal/scale for the catalogue")
	progressionFlag := flag.String("progression", "pop-i-v-vi-iv", "progression template id")
	tempoFlag := flag.Float64("tempo", 90, "tempo in BPM")
	debugLog := flag.String("debug", "", "if set, write debug logs to this file; empty disables logging")
	flag.Parse()

	if *debugLog != "" {
		f, err := tea.LogToFile(*debugLog, "debug")
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetOutput(io.Discard)
	}

	if _, err := scale.Get(*scaleFlag); err != nil {
		fmt.Fprintf(os.Stderr, "chordcoredemo: %v\n", err)
		os.Exit(1)
	}

	rootPitchValue, err := rootPitchFromFlag(*rootFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chordcoredemo: %v\n", err)
		os.Exit(1)
	}

	model, err := newDemoModel(*oscHost, *oscPort, *synth, *midiOutDevice, *midiOutChannel, rootPitchValue, *scaleFlag, *progressionFlag, *tempoFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chordcoredemo: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "chordcoredemo: %v\n", err)
		os.Exit(1)
	}
}
