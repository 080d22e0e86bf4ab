package cmd

import (
	"github.com/julianfbeck/plex-cli/internal/config"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored Plex token",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, dir, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Token = ""
		if err := config.Save(dir, cfg); err != nil {
			return err
		}
		printInfo("Logged out\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
