package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"flowtop/collector"
	"flowtop/engine"
	"flowtop/model"
)

const promptLabel = "New interval (seconds, e.g., 0.5 or 2): "

// tickMsg drives the sampling cadence. gen identifies the chain that sent
// it, so a chain orphaned by the interval prompt dies instead of doubling
// the sampling rate.
type tickMsg struct {
	at  time.Time
	gen int
}

type collectMsg struct {
	frame *model.Frame
	err   error
}

func tick(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg{at: t, gen: gen}
	})
}

func collectOnce(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		frame, err := eng.Tick()
		return collectMsg{frame: frame, err: err}
	}
}

// Model is the bubbletea model for the interactive session.
type Model struct {
	eng  *engine.Engine
	sess *model.Session
	bg   string

	frame     *model.Frame
	notice    string // transient fetch problem or replay-end marker
	endOfData bool   // replay exhausted, stop sampling
	warmed    bool   // counter store has a baseline sample
	gen       int    // current tick chain generation

	input  textinput.Model
	width  int
	height int
}

// NewModel builds the interactive model around a prepared engine and
// session.
func NewModel(eng *engine.Engine, sess *model.Session, bg string) Model {
	ti := textinput.New()
	ti.Prompt = promptLabel
	ti.PromptStyle = promptStyle
	ti.CharLimit = 16
	ti.Width = 12
	return Model{
		eng:   eng,
		sess:  sess,
		bg:    bg,
		input: ti,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(m.sess.Interval, m.gen), collectOnce(m.eng))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		// Opening the prompt bumps the generation, so sampling stays
		// suspended until closePrompt starts a fresh chain. A finished
		// replay stops the chain for good.
		if msg.gen != m.gen || m.endOfData {
			return m, nil
		}
		return m, tea.Batch(tick(m.sess.Interval, m.gen), collectOnce(m.eng))

	case collectMsg:
		if msg.err != nil {
			if errors.Is(msg.err, collector.ErrEndOfRecording) {
				m.endOfData = true
				m.notice = "end of recording, press q to quit"
			} else {
				// Keep the previous table; counters were left untouched.
				m.notice = fmt.Sprintf("fetch failed: %v", msg.err)
			}
			return m, nil
		}
		m.notice = ""
		if !m.warmed {
			// The first sample only seeds the counter store, so the
			// first displayed frame carries real rates.
			m.warmed = true
			return m, nil
		}
		m.frame = msg.frame
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.sess.State == model.StatePrompt {
		switch key {
		case "q", "ctrl+c":
			m.sess.Apply(key)
			return m, tea.Quit
		case "enter":
			m.sess.CompletePrompt(m.input.Value())
			return m, m.closePrompt()
		case "esc":
			m.sess.CancelPrompt()
			return m, m.closePrompt()
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}

	switch m.sess.Apply(key) {
	case model.KeyQuit:
		return m, tea.Quit
	case model.KeyPrompt:
		m.gen++
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

// closePrompt restarts sampling after the prompt resolves. The cadence
// anchor resets to now, so the next sample is immediate no matter how
// long the prompt sat open.
func (m *Model) closePrompt() tea.Cmd {
	m.input.Blur()
	m.input.SetValue("")
	if m.endOfData {
		return nil
	}
	return tea.Batch(tick(m.sess.Interval, m.gen), collectOnce(m.eng))
}
