package cmd

import (
	"fmt"

	"github.com/killallgit/liftchat/pkg/storage"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.store.Delete(cmd.Context(), storage.KeyToken); err != nil {
			return errors.Wrap(err, "failed to remove token")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}
