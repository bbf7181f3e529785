package cli

import (
	"fmt"

	"github.com/existflow/focusboard/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board over HTTP",
	Long: `Serve the JSON API on the configured address, with reminders and
scheduled calendar sync running in the background.

Set api_token in the config (or FOCUSBOARD_API_TOKEN) to require a bearer token.

Examples:
  focusboard serve
  focusboard serve --listen :9090`,
	RunE: runServe,
}

var serveListen string

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Address to listen on (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer closeApp(a)

	addr := serveListen
	if addr == "" {
		addr = cfg.Listen
	}
	fmt.Printf("🚀 FocusBoard API on http://%s\n", addr)
	return server.Run(cmd.Context(), a, addr, cfg.APIToken)
}
