package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/guiyumin/linkbot/internal/core/config"
	"github.com/guiyumin/linkbot/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server that resolves titles on request.

Examples:
  linkbot serve              # Start server on port 8080
  linkbot serve -p 9000      # Start server on port 9000

API Endpoints:
  GET  /api/health           # Health check
  POST /api/titles           # {"text": "..."} -> reply lines
  POST /api/title            # {"url": "..."} -> one title result`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		return runServe(cmd.Context(), config.LoadOrDefault(path))
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP listen port (default: 8080)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := newLogger(cfg.LogLevel)

	// Resolve port (flag > config)
	port := servePort
	if port == 0 {
		port = cfg.HTTP.Port
	}

	srv := server.NewServer(port, cfg.HTTP.APIKey, newResolver(cfg), log)

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Shutdown failed")
		}
	}()

	return srv.Start()
}
