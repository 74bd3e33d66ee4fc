package cmd

import (
	"fmt"
	"os"

	"github.com/killallgit/liftchat/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "liftchat",
	Short: "Chat with the lifting assistant from your terminal",
	Long: `liftchat asks the lifting assistant backend questions about training,
nutrition and technique. Without arguments it opens a full screen chat;
with --prompt it answers once and exits.`,
	Version:       config.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, _ := cmd.Flags().GetString("prompt")
		if prompt != "" {
			noSources, _ := cmd.Flags().GetBool("no-sources")
			return runAsk(cmd, prompt, !noSources)
		}
		return runInteractive(cmd)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.liftchat/settings.yaml)")

	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().StringSlice("api-url", nil, "backend base URL, repeat for fallbacks")
	viper.BindPFlag("api.base_urls", rootCmd.PersistentFlags().Lookup("api-url"))

	rootCmd.PersistentFlags().Bool("ephemeral", false, "keep the session and token in memory only")
	viper.BindPFlag("storage.ephemeral", rootCmd.PersistentFlags().Lookup("ephemeral"))

	rootCmd.PersistentFlags().String("format", "text", "reply format for one-shot answers: text, markdown or html")
	viper.BindPFlag("ui.format", rootCmd.PersistentFlags().Lookup("format"))

	rootCmd.Flags().StringP("prompt", "p", "", "ask a single question without entering the TUI")
	rootCmd.Flags().Bool("no-sources", false, "do not print the source list after a one-shot answer")

	rootCmd.AddCommand(askCmd, loginCmd, logoutCmd, sessionCmd, probeCmd)
}
