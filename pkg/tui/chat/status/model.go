package status

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/killallgit/liftchat/pkg/process"
	"github.com/killallgit/liftchat/pkg/tui/theme"
)

// StatusModel represents the status bar component
type StatusModel struct {
	spinner   spinner.Model
	state     process.State
	timer     time.Duration
	startTime time.Time
	isActive  bool
	session   string
	width     int
	styles    *theme.Styles
}

// NewStatusModel creates a new status bar model
func NewStatusModel(styles *theme.Styles) StatusModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = s.Style.Foreground(theme.ColorViolet)

	return StatusModel{
		spinner: s,
		styles:  styles,
	}
}

// State returns the state currently displayed
func (m StatusModel) State() process.State {
	return m.state
}

// Active reports whether an exchange is being shown
func (m StatusModel) Active() bool {
	return m.isActive
}
