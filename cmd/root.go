package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "asana-swit",
	Short: "Asana for Swit",
	Long:  `Webhook bridge that lets Swit users create and share Asana tasks. Configuration is read from the environment.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}
