package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/kinopoisk-trailer-grabber/internal/app"
)

var (
	apiKeyCmd = &cobra.Command{
		Use:   "apikey",
		Short: "API key management commands",
		Long: `Manage the Kinopoisk API key.

Use 'apikey set' to store a new key in the configuration file.`,
	}

	apiKeySetCmd = &cobra.Command{
		Use:   "set {key}",
		Short: "Store a Kinopoisk API key in the configuration file",
		Long: `Stores the given Kinopoisk API key in the configuration file,
preserving the order and comments of the remaining settings.

Keys are issued by the API backends themselves:
- https://kinopoiskapiunofficial.tech for the "unofficial" flavor
- https://kinopoisk.dev for the "dev" flavor

After saving the key you can download trailers:
kinopoisk-trailer-grabber https://www.kinopoisk.ru/film/326/`,
		Args:             cobra.ExactArgs(1),
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, args []string) {
			app.ExecuteAPIKeySetCommand(cmd.Context(), appConfig, args[0])
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	// Add set subcommand to apikey command.
	apiKeyCmd.AddCommand(apiKeySetCmd)

	// Add apikey command to root command.
	rootCmd.AddCommand(apiKeyCmd)
}
