package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guiyumin/linkbot/internal/core/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create linkbot config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if err := config.Init(path); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\nEdit server.hostname and server.channels, then run 'linkbot'.\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
