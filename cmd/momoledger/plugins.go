package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPluginsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List the available reader and writer plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlugins()
		},
	}
}

func runPlugins() error {
	registry, err := buildRegistry()
	if err != nil {
		return err
	}

	fmt.Println("Readers:")
	for _, plugin := range registry.ListReaders() {
		fmt.Printf("  %-10s %s\n", plugin.Name(), plugin.Description())
	}
	fmt.Println()
	fmt.Println("Writers:")
	for _, plugin := range registry.ListWriters() {
		fmt.Printf("  %-10s %s\n", plugin.Name(), plugin.Description())
	}

	return nil
}
