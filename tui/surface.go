package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

type (
	imageSourceMsg    string
	imageAltMsg       string
	errorTextMsg      string
	errorVisibleMsg   bool
	triggerEnabledMsg bool
	triggerLabelMsg   string
)

// Sender delivers messages into a running program; *tea.Program is one.
type Sender interface {
	Send(msg tea.Msg)
}

// Surface forwards display and trigger updates from the controller into the
// Bubble Tea program. Calls made before Attach are dropped.
type Surface struct {
	mu     sync.RWMutex
	sender Sender
}

// NewSurface returns a detached surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Attach routes subsequent updates to s.
func (s *Surface) Attach(sender Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = sender
}

func (s *Surface) SetImageSource(url string)    { s.dispatch(imageSourceMsg(url)) }
func (s *Surface) SetImageAlt(text string)      { s.dispatch(imageAltMsg(text)) }
func (s *Surface) SetErrorText(text string)     { s.dispatch(errorTextMsg(text)) }
func (s *Surface) SetErrorVisible(visible bool) { s.dispatch(errorVisibleMsg(visible)) }
func (s *Surface) SetEnabled(enabled bool)      { s.dispatch(triggerEnabledMsg(enabled)) }
func (s *Surface) SetLabel(label string)        { s.dispatch(triggerLabelMsg(label)) }

func (s *Surface) dispatch(msg tea.Msg) {
	s.mu.RLock()
	sender := s.sender
	s.mu.RUnlock()
	if sender != nil {
		sender.Send(msg)
	}
}
