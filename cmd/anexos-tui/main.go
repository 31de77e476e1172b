package main

import (
	"fmt"
	"os"

	"github.com/perini/anexos-downloader/internal/config"
	"github.com/perini/anexos-downloader/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "anexos-tui",
		Short:         "Interactive annex downloader",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := config.DefaultSettings()
			if configPath != "" {
				var err error
				settings, err = config.Load(configPath)
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
			}
			return tui.Run(settings)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a JSON or YAML config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
