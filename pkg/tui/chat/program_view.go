package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	core "github.com/killallgit/liftchat/pkg/chat"
	"github.com/killallgit/liftchat/pkg/process"
)

// ProgramView implements chat.View by forwarding every call into the
// bubbletea event loop. The controller runs outside the loop, so the model
// is only ever changed by Update.
type ProgramView struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

// NewProgramView returns a view that drops calls until Attach is called
func NewProgramView() *ProgramView {
	return &ProgramView{}
}

// Attach routes calls to the program
func (v *ProgramView) Attach(p *tea.Program) {
	v.AttachFunc(p.Send)
}

// AttachFunc routes calls to send
func (v *ProgramView) AttachFunc(send func(tea.Msg)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.send = send
}

func (v *ProgramView) dispatch(msg tea.Msg) {
	v.mu.RLock()
	send := v.send
	v.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (v *ProgramView) AddMessage(msg core.Message) { v.dispatch(addMessageMsg{message: msg}) }
func (v *ProgramView) ShowThinking()                { v.dispatch(showThinkingMsg{}) }
func (v *ProgramView) UpdateThinking(elapsed time.Duration) {
	v.dispatch(thinkingElapsedMsg{elapsed: elapsed})
}
func (v *ProgramView) RemoveThinking()                     { v.dispatch(removeThinkingMsg{}) }
func (v *ProgramView) BeginAssistant()                     { v.dispatch(beginAssistantMsg{}) }
func (v *ProgramView) UpdateAssistant(text string)         { v.dispatch(updateAssistantMsg{text: text}) }
func (v *ProgramView) FinishAssistant(text string)         { v.dispatch(finishAssistantMsg{text: text}) }
func (v *ProgramView) DisplaySources(sources []core.Source) { v.dispatch(sourcesMsg{sources: sources}) }
func (v *ProgramView) SetState(state process.State)        { v.dispatch(stateMsg{state: state}) }

var _ core.View = (*ProgramView)(nil)
