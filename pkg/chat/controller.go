package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/killallgit/liftchat/pkg/logger"
	"github.com/killallgit/liftchat/pkg/process"
	"golang.org/x/time/rate"
)

var (
	// ErrBusy is returned when a message is submitted while another exchange
	// is in flight. The submission is dropped, not queued.
	ErrBusy = errors.New("an exchange is already in flight")
	// ErrEmptyMessage is returned for blank submissions
	ErrEmptyMessage = errors.New("message is empty")
	// ErrAttemptTimeout is the cancellation cause of an attempt that ran out
	// of time
	ErrAttemptTimeout = errors.New("attempt timed out")
)

// CancelledMessage is shown when the user abandons an exchange before any reply
const CancelledMessage = "Request cancelled."

// ExhaustedError reports that every candidate failed
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d attempts failed: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Timeouts bounds each attempt
type Timeouts struct {
	// StreamStart is how long a stream may take to send its headers
	StreamStart time.Duration
	// StreamIdle is the longest gap between events; zero disables it
	StreamIdle time.Duration
	// Buffered is the total time for a buffered request
	Buffered time.Duration
}

// DefaultTimeouts returns the stock per-attempt limits
func DefaultTimeouts() Timeouts {
	return Timeouts{
		StreamStart: 30 * time.Second,
		StreamIdle:  60 * time.Second,
		Buffered:    45 * time.Second,
	}
}

// Options configures a Controller
type Options struct {
	BaseURLs []string
	Timeouts Timeouts
	// Limiter spaces attempts; nil means unlimited
	Limiter *rate.Limiter
	// ThinkingInterval is the refresh rate of the elapsed time; zero disables it
	ThinkingInterval time.Duration
}

// Result describes a completed exchange
type Result struct {
	ExchangeID string
	Text       string
	Sources    []Source
	Candidate  Candidate
	Attempts   int
	// Partial is set when a stream broke after some content arrived
	Partial bool
}

// Controller runs exchanges one at a time against the candidate backends and
// keeps a View in sync with each of them
type Controller struct {
	transport Transport
	view      View
	sessionID string
	opts      Options

	busy atomic.Bool
	// preferred is the base URL index that last succeeded; only touched
	// while busy is held
	preferred int
}

func NewController(transport Transport, view View, sessionID string, opts Options) (*Controller, error) {
	if transport == nil {
		return nil, errors.New("transport is required")
	}
	if view == nil {
		return nil, errors.New("view is required")
	}
	if len(opts.BaseURLs) == 0 {
		return nil, errors.New("at least one base URL is required")
	}
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}
	defaults := DefaultTimeouts()
	if opts.Timeouts.StreamStart <= 0 {
		opts.Timeouts.StreamStart = defaults.StreamStart
	}
	if opts.Timeouts.Buffered <= 0 {
		opts.Timeouts.Buffered = defaults.Buffered
	}
	if opts.Timeouts.StreamIdle < 0 {
		opts.Timeouts.StreamIdle = 0
	}
	return &Controller{
		transport: transport,
		view:      view,
		sessionID: sessionID,
		opts:      opts,
	}, nil
}

// Busy reports whether an exchange is in flight
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

// SessionID returns the session the controller sends with every query
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Send runs one exchange for text. The view receives the user message, a
// thinking placeholder and exactly one terminal assistant message: the
// reply, the failure wording, or the cancellation notice. Blank text and
// submissions while busy are rejected before anything is shown.
func (c *Controller) Send(ctx context.Context, text string) (*Result, error) {
	log := logger.WithComponent("chat")

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if !c.busy.CompareAndSwap(false, true) {
		log.Infow("submission dropped while busy")
		return nil, ErrBusy
	}
	defer c.busy.Store(false)

	exchangeID := uuid.NewString()
	log = log.With("exchange_id", exchangeID)
	log.Infow("exchange started", "session_id", c.sessionID, "query_length", len(text))

	c.view.AddMessage(Message{Sender: SenderUser, Text: text})
	c.view.SetState(process.StateSending)
	c.view.ShowThinking()

	ticker := startThinkingTicker(ctx, c.view, c.opts.ThinkingInterval)
	defer ticker.stop()

	query := Query{Text: text, SessionID: c.sessionID}
	plan := newFallback(c.opts.BaseURLs, c.preferred)

	var lastErr error
	for {
		candidate, index, ok := plan.next()
		if !ok {
			break
		}

		if c.opts.Limiter != nil {
			if err := c.opts.Limiter.Wait(ctx); err != nil {
				lastErr = err
				break
			}
		}
		if ctx.Err() != nil {
			lastErr = context.Cause(ctx)
			break
		}

		log.Debugw("attempt", "candidate", candidate.BaseURL, "mode", candidate.Mode.String(), "attempt", plan.attempts())

		var (
			result *Result
			err    error
		)
		switch candidate.Mode {
		case ModeStreaming:
			result, err = c.attemptStream(ctx, candidate, query, ticker)
		case ModeBuffered:
			result, err = c.attemptBuffered(ctx, candidate, query, ticker)
		}

		if result != nil {
			c.preferred = index
			result.ExchangeID = exchangeID
			result.Candidate = candidate
			result.Attempts = plan.attempts()
			c.view.SetState(process.StateIdle)
			log.Infow("exchange completed",
				"candidate", candidate.BaseURL,
				"mode", candidate.Mode.String(),
				"attempts", result.Attempts,
				"partial", result.Partial,
				"source_count", len(result.Sources),
			)
			return result, nil
		}

		lastErr = err
		log.Warnw("attempt failed", "candidate", candidate.BaseURL, "mode", candidate.Mode.String(), "error", err)

		if ctx.Err() != nil {
			lastErr = context.Cause(ctx)
			break
		}
	}

	ticker.stop()
	c.view.RemoveThinking()

	if ctx.Err() != nil {
		c.view.AddMessage(Message{Sender: SenderBot, Text: CancelledMessage})
		c.view.SetState(process.StateIdle)
		log.Infow("exchange cancelled", "attempts", plan.attempts())
		return nil, context.Cause(ctx)
	}

	c.view.AddMessage(Message{Sender: SenderBot, Text: FailureWording(lastErr)})
	c.view.SetState(process.StateFailed)
	log.Errorw("all candidates failed", "attempts", plan.attempts(), "error", lastErr)
	return nil, &ExhaustedError{Attempts: plan.attempts(), Last: lastErr}
}

// attemptStream runs one streaming attempt. It returns a result when the
// stream finished or broke after delivering content, and the attempt error
// otherwise.
func (c *Controller) attemptStream(parent context.Context, candidate Candidate, query Query, ticker *thinkingTicker) (*Result, error) {
	log := logger.WithComponent("chat")

	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	timeouts := c.opts.Timeouts
	startTimer := time.AfterFunc(timeouts.StreamStart, func() {
		cancel(fmt.Errorf("%w: stream did not open within %s", ErrAttemptTimeout, timeouts.StreamStart))
	})
	defer startTimer.Stop()

	var idleTimer *time.Timer
	defer func() {
		if idleTimer != nil {
			idleTimer.Stop()
		}
	}()
	resetIdle := func() {
		if timeouts.StreamIdle <= 0 {
			return
		}
		if idleTimer == nil {
			idleTimer = time.AfterFunc(timeouts.StreamIdle, func() {
				cancel(fmt.Errorf("%w: stream idle for %s", ErrAttemptTimeout, timeouts.StreamIdle))
			})
			return
		}
		idleTimer.Reset(timeouts.StreamIdle)
	}

	consumer := newStreamConsumer(c.view, ticker.stop, log)
	err := c.transport.Stream(ctx, candidate.BaseURL, query, func(event StreamEvent) error {
		if event.Kind == EventOpen {
			startTimer.Stop()
		}
		resetIdle()
		return consumer.handle(event)
	})

	if err != nil && !consumer.hasContent() {
		return nil, err
	}
	if !consumer.hasContent() {
		// Done without any content is still a reply, just an empty one
		ticker.stop()
		c.view.RemoveThinking()
		c.view.BeginAssistant()
	}
	if err != nil {
		log.Warnw("stream broke after content, keeping partial reply", "error", err, "content_length", len(consumer.raw()))
	}

	presented := Present(consumer.raw())
	c.view.FinishAssistant(presented.Text)
	c.view.DisplaySources(presented.Sources)

	return &Result{
		Text:    presented.Text,
		Sources: presented.Sources,
		Partial: err != nil,
	}, nil
}

// attemptBuffered runs one buffered attempt bounded by the total timeout
func (c *Controller) attemptBuffered(parent context.Context, candidate Candidate, query Query, ticker *thinkingTicker) (*Result, error) {
	timeout := c.opts.Timeouts.Buffered
	ctx, cancel := context.WithTimeoutCause(parent, timeout,
		fmt.Errorf("%w: no reply within %s", ErrAttemptTimeout, timeout))
	defer cancel()

	reply, err := c.transport.Buffered(ctx, candidate.BaseURL, query)
	if err != nil {
		return nil, err
	}

	presented := Present(reply.Text)
	sources := presented.Sources
	if len(reply.Sources) > 0 {
		sources = reply.Sources
	}

	ticker.stop()
	c.view.RemoveThinking()
	c.view.AddMessage(Message{Sender: SenderBot, Text: presented.Text, Sources: sources})
	c.view.DisplaySources(sources)

	return &Result{Text: presented.Text, Sources: sources}, nil
}
