package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/killallgit/liftchat/pkg/headless"
	"github.com/killallgit/liftchat/pkg/render"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask one question and print the answer",
	Long: `ask sends a single question and prints the reply to stdout.
When no question is given on the command line it is read from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, err := readPrompt(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		noSources, _ := cmd.Flags().GetBool("no-sources")
		return runAsk(cmd, prompt, !noSources)
	},
}

func init() {
	askCmd.Flags().Bool("no-sources", false, "do not print the source list")
}

// readPrompt joins the arguments, or reads stdin when there are none.
// An interactive stdin is refused rather than waited on.
func readPrompt(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return "", errors.New("no question given: pass it as arguments or pipe it on stdin")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", errors.Wrap(err, "failed to read question from stdin")
	}
	return strings.TrimSpace(string(data)), nil
}

func runAsk(cmd *cobra.Command, prompt string, showSources bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	console, err := headless.NewConsole(headless.ConsoleOptions{
		Out:    cmd.OutOrStdout(),
		Status: cmd.ErrOrStderr(),
		Format: a.cfg.UI.Format,
		Render: render.Options{
			Style:    a.cfg.UI.Style,
			WordWrap: a.cfg.UI.WordWrap,
		},
		ShowSources: showSources,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create console")
	}

	controller, err := a.newController(ctx, console)
	if err != nil {
		return err
	}
	return headless.Run(ctx, controller, prompt)
}
