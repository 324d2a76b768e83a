package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/guiyumin/linkbot/internal/bot"
	"github.com/guiyumin/linkbot/internal/core/config"
	"github.com/guiyumin/linkbot/internal/core/extractor"
	"github.com/guiyumin/linkbot/internal/core/version"
	"github.com/guiyumin/linkbot/internal/core/webs"
	"github.com/guiyumin/linkbot/internal/irc"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "linkbot",
	Short: "Chat bot that answers links with their titles",
	Long: `linkbot joins the configured channels and replies to every message
containing http(s) links with one line per link: the page title, or a
summary from the image, post, video or music service it points at.

Run 'linkbot init' to create a config file first.`,
	Version:       version.Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return runBot(cmd.Context(), cfg, newLogger(cfg.LogLevel))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ~/.config/linkbot/config.yml)")
}

// Execute runs the command line until it finishes or is interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func runBot(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	srv := cfg.Server
	conn, err := irc.Dial(ctx, srv.Hostname, srv.Port, srv.UseTLS(), log.With().Str("component", "irc").Logger())
	if err != nil {
		return err
	}

	b := bot.New(conn, newResolver(cfg), bot.Identity{
		Nick:     srv.Nick,
		User:     srv.User,
		RealName: srv.RealName,
		Channels: srv.Channels,
	}, log)

	err = b.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("Shutting down")
		return nil
	}
	return err
}

// configPath returns the --config override or the default location
func configPath() (string, error) {
	return config.Resolve(configFile)
}

func loadConfig() (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	if !config.Exists(path) {
		return nil, fmt.Errorf("%s not found. Run 'linkbot init'", path)
	}
	return config.Load(path)
}

func newResolver(cfg *config.Config) *extractor.Resolver {
	w := webs.New(webs.Options{
		Keys:      cfg.Keys.Webs(),
		Timeout:   cfg.Titles.FetchTimeout,
		UserAgent: "linkbot/" + version.Version,
	})
	return extractor.NewResolver(w, extractor.Options{
		PreviewBytes: cfg.Titles.PreviewBytes,
		FetchTimeout: cfg.Titles.FetchTimeout,
		MaxParallel:  cfg.Titles.MaxParallel,
	})
}

// newLogger writes human-readable lines to a terminal and JSON otherwise.
// An unknown level falls back to info.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = os.Stderr
	if term.IsTerminal(int(os.Stderr.Fd())) {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
