package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/kinopoisk-trailer-grabber/internal/app"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/config"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/logger"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "kinopoisk-trailer-grabber [flags] {film URLs or IDs}",
		Short: "Download trailers of Kinopoisk films.",
		Long: `Kinopoisk Trailer Grabber is a CLI tool for downloading film trailers.
Given Kinopoisk film URLs (or bare numeric film IDs) it fetches the trailer
list from the Kinopoisk API, resolves each trailer to a stream source,
downloads it and merges the parts into a playable file.

The application supports quality preferences, two resolution strategies,
and a duration gate that filters out teasers and film fragments.`,
		Args:             cobra.MinimumNArgs(1),
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, filmInputs []string) {
			if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
			}

			app.ExecuteRootCommand(cmd.Context(), appConfig, filmInputs)
		},
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	rootCmdFlags := rootCmd.Flags()

	rootCmdFlags.IntP(
		"quality",
		"q",
		0,
		"preferred video height in pixels, for example: 480, 720, 1080.")

	rootCmdFlags.StringP(
		"output",
		"o",
		"",
		"directory to save downloaded trailers (the path will be created if it doesn’t exist).")

	rootCmdFlags.StringP(
		"resolver",
		"r",
		"",
		"trailer source resolution strategy: 'page' or 'convert'.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("quality"); flag != nil && flag.Changed {
		cfg.Quality, _ = flags.GetInt("quality")
	}

	if flag := flags.Lookup("output"); flag != nil && flag.Changed {
		cfg.OutputPath, _ = flags.GetString("output")
	}

	if flag := flags.Lookup("resolver"); flag != nil && flag.Changed {
		cfg.Resolver, _ = flags.GetString("resolver")
	}

	return config.ValidateConfig(cfg)
}
