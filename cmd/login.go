package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/killallgit/liftchat/pkg/auth"
	"github.com/killallgit/liftchat/pkg/storage"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	input "github.com/tcnksm/go-input"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store an access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		passwordStdin, _ := cmd.Flags().GetBool("password-stdin")

		creds, err := promptCredentials(cmd.InOrStdin(), cmd.ErrOrStderr(), username, passwordStdin)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := signalContext(cmd)
		defer cancel()

		client := auth.NewClient(a.cfg.API.AuthURL, a.cfg.API.UserAgent)
		token, err := client.Login(ctx, creds.username, creds.password)
		if err != nil {
			var loginErr *auth.LoginError
			if errors.As(err, &loginErr) {
				return loginErr
			}
			return errors.Wrap(err, "login request failed")
		}

		if err := a.store.Set(ctx, storage.KeyToken, token.AccessToken); err != nil {
			return errors.Wrap(err, "failed to store token")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Logged in.")
		if !token.ExpiresAt.IsZero() {
			fmt.Fprintf(out, "Token expires %s\n", token.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringP("username", "u", "", "username, prompted for when empty")
	loginCmd.Flags().Bool("password-stdin", false, "read the password from stdin")
}

type credentials struct {
	username string
	password string
}

func promptCredentials(in io.Reader, out io.Writer, username string, passwordStdin bool) (credentials, error) {
	if passwordStdin {
		if username == "" {
			return credentials{}, errors.New("--password-stdin requires --username")
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return credentials{}, errors.Wrap(err, "failed to read password from stdin")
		}
		password := strings.TrimRight(string(data), "\r\n")
		if password == "" {
			return credentials{}, errors.New("empty password on stdin")
		}
		return credentials{username: username, password: password}, nil
	}

	ui := &input.UI{
		Writer: out,
		Reader: in,
	}

	if username == "" {
		answer, err := ui.Ask("Username", &input.Options{
			Required:  true,
			Loop:      true,
			HideOrder: true,
		})
		if err != nil {
			return credentials{}, errors.Wrap(err, "failed to read username")
		}
		username = strings.TrimSpace(answer)
	}

	password, err := ui.Ask("Password", &input.Options{
		Required:  true,
		Loop:      true,
		Mask:      true,
		HideOrder: true,
	})
	if err != nil {
		return credentials{}, errors.Wrap(err, "failed to read password")
	}
	return credentials{username: username, password: password}, nil
}
