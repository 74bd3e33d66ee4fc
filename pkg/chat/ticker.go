package chat

import (
	"context"
	"sync"
	"time"
)

// thinkingTicker refreshes the thinking placeholder with the elapsed time
// until stopped. stop is idempotent and returns only after the goroutine has
// exited, so no update can land after the placeholder is removed.
type thinkingTicker struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func startThinkingTicker(ctx context.Context, view View, interval time.Duration) *thinkingTicker {
	ctx, cancel := context.WithCancel(ctx)
	t := &thinkingTicker{cancel: cancel, done: make(chan struct{})}

	if interval <= 0 {
		close(t.done)
		return t
	}

	go func() {
		defer close(t.done)

		started := time.Now()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				view.UpdateThinking(now.Sub(started))
			}
		}
	}()
	return t
}

func (t *thinkingTicker) stop() {
	t.once.Do(func() {
		t.cancel()
		<-t.done
	})
}
