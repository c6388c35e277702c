package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dukkea/pokeapi-go/cmd/serve"
	"github.com/dukkea/pokeapi-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pokeapi-go",
		Short: "Caching proxy for the public PokeAPI",
	}

	rootCmd.PersistentFlags().StringVar(&settings.Main.LogLevel, "log-level", settings.Main.LogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&settings.Main.Debug, "debug", settings.Main.Debug, "enable debug output")

	rootCmd.AddCommand(serve.Command(settings))

	return rootCmd
}
