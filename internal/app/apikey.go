package app

import (
	"context"

	"github.com/oshokin/kinopoisk-trailer-grabber/internal/config"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/logger"
)

// ExecuteAPIKeySetCommand stores a new Kinopoisk API key in the configuration file.
func ExecuteAPIKeySetCommand(ctx context.Context, cfg *config.Config, apiKey string) {
	cfg.APIKey = apiKey

	if err := config.SaveConfig(cfg); err != nil {
		logger.Fatalf(ctx, "Failed to save configuration: %v", err)
		return
	}

	logger.Info(ctx, "Configuration updated successfully!")
	logger.Info(ctx, "You can now download trailers:")
	logger.Info(ctx, "kinopoisk-trailer-grabber https://www.kinopoisk.ru/film/326/")
}
