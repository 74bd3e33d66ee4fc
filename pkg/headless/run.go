package headless

import (
	"context"
	"errors"
	"fmt"

	"github.com/killallgit/liftchat/pkg/chat"
	"github.com/killallgit/liftchat/pkg/logger"
)

// Run sends a single prompt through the controller. The reply, or the
// failure wording, has already been written by the console when it returns;
// the error only tells the caller how the exchange ended.
func Run(ctx context.Context, controller *chat.Controller, prompt string) error {
	if controller == nil {
		return errors.New("controller is required")
	}

	result, err := controller.Send(ctx, prompt)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			return fmt.Errorf("prompt cannot be empty in headless mode")
		}
		return fmt.Errorf("failed to execute prompt: %w", err)
	}

	logger.WithComponent("headless").Infow("prompt answered",
		"exchange_id", result.ExchangeID,
		"candidate", result.Candidate.String(),
		"attempts", result.Attempts,
		"partial", result.Partial,
	)
	return nil
}
