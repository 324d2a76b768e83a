package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/guiyumin/linkbot/internal/core/config"
)

var titlesCmd = &cobra.Command{
	Use:   "titles <text>...",
	Short: "Print the reply lines the bot would send for some text",
	Example: `  linkbot titles https://example.com
  linkbot titles "look at https://i.imgur.com/ZbIiLa9.mp4 and https://youtu.be/dQw4w9WgXcQ"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		cfg := config.LoadOrDefault(path)
		log := newLogger(cfg.LogLevel)

		ctx := log.WithContext(cmd.Context())
		return printTitles(ctx, cmd.OutOrStdout(), newResolver(cfg), strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(titlesCmd)
}

type titler interface {
	TitlesFor(ctx context.Context, text string) []string
}

func printTitles(ctx context.Context, out io.Writer, r titler, text string) error {
	lines := r.TitlesFor(ctx, text)
	if len(lines) == 0 {
		return fmt.Errorf("no titles found")
	}

	cyan := color.New(color.FgCyan)
	for _, line := range lines {
		cyan.Fprintln(out, line)
	}
	return nil
}
