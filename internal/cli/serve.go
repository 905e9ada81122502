package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/liftreport/liftreport/internal/config"
	"github.com/liftreport/liftreport/internal/dataset"
	"github.com/liftreport/liftreport/internal/logger"
	"github.com/liftreport/liftreport/internal/server"
)

var (
	port       int
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Start the liftreport HTTP server.

The server provides:
  - Dashboard with charts, settings and export
  - JSON results and export API
  - Health check endpoint

Example:
  liftreport serve --port 8080 --watch`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	defaultPort := config.Default().Port
	if p := os.Getenv("LIFTREPORT_PORT"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			defaultPort = parsed
		}
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", defaultPort, "port to listen on")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "reload the CSV dataset when it changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}

	source, closeSource, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := dataset.NewCache(source)
	if serveWatch {
		if cfg.Source != config.SourceCSV {
			logger.Warn("--watch only applies to the csv source", "source", cfg.Source)
		} else if err := cache.Watch(ctx, cfg.DataPath); err != nil {
			return fmt.Errorf("failed to watch dataset: %w", err)
		}
	}

	srv := server.New(cache, cfg, tokenFilePath())
	return srv.Start(ctx, true)
}
