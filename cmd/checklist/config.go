package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shift-checklist/internal/config"
)

var initForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the checklist configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Writes the built-in defaults to the --config path so they can be edited.
An existing file is left alone unless --force is given.`,
	RunE: configInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}

func configInit(cmd *cobra.Command, args []string) error {
	if err := config.DefaultConfig().Save(configPath, initForce); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
	return nil
}
