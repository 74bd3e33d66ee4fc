package cmd

import (
	"fmt"

	"github.com/killallgit/liftchat/pkg/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show the chat session id",
	Long: `session prints the id sent with every question. The backend keys its
conversation memory on it; --reset starts a fresh conversation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		reset, _ := cmd.Flags().GetBool("reset")
		if reset {
			if err := session.Reset(ctx, a.store); err != nil {
				return errors.Wrap(err, "failed to reset session")
			}
		}

		id, err := session.GetOrCreateSessionID(ctx, a.store)
		if err != nil {
			return errors.Wrap(err, "failed to get session id")
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	sessionCmd.Flags().Bool("reset", false, "discard the current id and start a new session")
}
