package headless

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/killallgit/liftchat/pkg/chat"
	"github.com/killallgit/liftchat/pkg/logger"
	"github.com/killallgit/liftchat/pkg/process"
	"github.com/killallgit/liftchat/pkg/render"
	"github.com/mattn/go-isatty"
)

// Console is a chat.View for one-shot runs. Replies go to out; the thinking
// indicator goes to status, and only when status is a terminal.
//
// In text format a streaming reply is printed as it arrives. Output cannot be
// taken back, so only the part of the reply that later chunks cannot change
// is printed until the reply is finished. Other formats print the finished
// reply once.
type Console struct {
	mu sync.Mutex

	out         io.Writer
	status      io.Writer
	statusTTY   bool
	renderer    render.Renderer
	incremental bool
	showSources bool

	printed  int
	thinking bool
}

// ConsoleOptions configures a Console
type ConsoleOptions struct {
	Out    io.Writer
	Status io.Writer
	Format string
	Render render.Options
	// ShowSources prints the source list after each reply
	ShowSources bool
}

func NewConsole(opts ConsoleOptions) (*Console, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Status == nil {
		opts.Status = os.Stderr
	}
	if opts.Format == "" {
		opts.Format = render.FormatText
	}

	renderer, err := render.New(opts.Format, opts.Render)
	if err != nil {
		return nil, err
	}

	return &Console{
		out:         opts.Out,
		status:      opts.Status,
		statusTTY:   isTerminal(opts.Status),
		renderer:    renderer,
		incremental: opts.Format == render.FormatText,
		showSources: opts.ShowSources,
	}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// AddMessage prints complete bot messages; the user already sees their own
// prompt on the command line
func (c *Console) AddMessage(msg chat.Message) {
	if msg.Sender != chat.SenderBot {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearThinkingLocked()
	fmt.Fprintln(c.out, c.renderer.Message(msg))
}

func (c *Console) ShowThinking() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.thinking = true
	if c.statusTTY {
		fmt.Fprint(c.status, "Thinking...")
	}
}

func (c *Console) UpdateThinking(elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.thinking && c.statusTTY {
		fmt.Fprintf(c.status, "\r\033[KThinking... %ds", int(elapsed.Seconds()))
	}
}

func (c *Console) RemoveThinking() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearThinkingLocked()
}

func (c *Console) clearThinkingLocked() {
	if !c.thinking {
		return
	}
	c.thinking = false
	if c.statusTTY {
		fmt.Fprint(c.status, "\r\033[K")
	}
}

func (c *Console) BeginAssistant() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printed = 0
}

func (c *Console) UpdateAssistant(text string) {
	if !c.incremental {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	stable := chat.StablePrefix(text)
	if len(stable) > c.printed {
		io.WriteString(c.out, stable[c.printed:])
		c.printed = len(stable)
	}
}

func (c *Console) FinishAssistant(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearThinkingLocked()

	if !c.incremental {
		fmt.Fprintln(c.out, c.renderer.Message(chat.Message{Sender: chat.SenderBot, Text: text}))
		return
	}

	if c.printed <= len(text) {
		io.WriteString(c.out, text[c.printed:])
	} else {
		logger.WithComponent("headless").Warnw("final text shorter than printed output", "printed", c.printed, "final_length", len(text))
	}
	fmt.Fprintln(c.out)
	c.printed = 0
}

func (c *Console) DisplaySources(sources []chat.Source) {
	if !c.showSources {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.renderer.Sources(sources))
}

func (c *Console) SetState(state process.State) {
	logger.WithComponent("headless").Debugw("state", "state", state.String())
}

var _ chat.View = (*Console)(nil)
