package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SessionState tracks the interactive lifecycle.
type SessionState int

const (
	StateRunning SessionState = iota
	StatePrompt               // interval prompt open, sampling suspended
	StateTerminating
)

func (s SessionState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePrompt:
		return "prompt"
	case StateTerminating:
		return "terminating"
	}
	return "unknown"
}

// KeyAction is what the caller must do after a key is applied.
type KeyAction int

const (
	KeyNone   KeyAction = iota // ignored or handled internally
	KeyPrompt                  // interval prompt opened
	KeyQuit                    // session is terminating
)

// Session is the live view configuration plus the key state machine.
// It has no persistence; it exists for the lifetime of one run.
type Session struct {
	Mode        GroupMode
	Sort        SortKey
	Metric      MetricCol
	Interval    time.Duration
	Top         int
	ThresholdKB float64 // highlight threshold in KB/s, 0 disables
	ShowHelp    bool
	State       SessionState
}

// Validate reports the first invalid session parameter.
func (s *Session) Validate() error {
	if !s.Mode.Valid() {
		return fmt.Errorf("invalid group mode %q (want process or remote)", s.Mode)
	}
	if s.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", s.Interval)
	}
	if s.Top <= 0 {
		return fmt.Errorf("top must be positive, got %d", s.Top)
	}
	if s.ThresholdKB < 0 {
		return fmt.Errorf("threshold must not be negative, got %g", s.ThresholdKB)
	}
	return nil
}

// Apply feeds one key press into the state machine. Unrecognized keys are
// ignored. While the prompt is open only quit is honored here; prompt input
// is resolved through CompletePrompt and CancelPrompt.
func (s *Session) Apply(key string) KeyAction {
	if s.State == StateTerminating {
		return KeyNone
	}
	if key == "q" || key == "ctrl+c" {
		s.State = StateTerminating
		return KeyQuit
	}
	if s.State == StatePrompt {
		return KeyNone
	}
	switch key {
	case "h":
		s.ShowHelp = !s.ShowHelp
	case "i":
		s.Sort = SortIn
	case "o":
		s.Sort = SortOut
	case "d":
		s.Sort = SortDelta
	case "m":
		s.Metric = s.Metric.Toggle()
	case "t":
		s.State = StatePrompt
		return KeyPrompt
	}
	return KeyNone
}

// CompletePrompt closes the prompt with the typed input. A parseable
// positive number becomes the new interval; anything else is discarded and
// the prior interval stays. Either way the session resumes running.
func (s *Session) CompletePrompt(input string) bool {
	s.State = StateRunning
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || v <= 0 {
		return false
	}
	s.Interval = time.Duration(v * float64(time.Second))
	return true
}

// CancelPrompt closes the prompt without changes.
func (s *Session) CancelPrompt() {
	s.State = StateRunning
}
