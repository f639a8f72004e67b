package main

import (
	"github.com/spf13/cobra"

	"github.com/linkdapi/leads-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage leads-cli configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		cmd.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().String("path", "config.yaml", "where to write the starter config")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
