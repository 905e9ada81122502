package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var tokenPort int

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print the dashboard link for the running server",
	Long: `Print the dashboard link, including the access token written by
'liftreport serve'. Pass --port if the server was started on a custom port.

Example:
  liftreport token
  liftreport token --port 8080`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().IntVarP(&tokenPort, "port", "p", 0, "port the server listens on (default from config)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	token, err := readToken(tokenFilePath())
	if err != nil {
		return err
	}

	p := cfg.Port
	if cmd.Flags().Changed("port") {
		p = tokenPort
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Dashboard: http://localhost:%d/dashboard?token=%s\n\n", p, token)
	fmt.Fprintln(out, "The token changes every time the server restarts.")
	return nil
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", errors.New("no server running. Start with: liftreport serve")
	case err != nil:
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", errors.New("token file is empty. Restart the server with: liftreport serve")
	}
	return token, nil
}
