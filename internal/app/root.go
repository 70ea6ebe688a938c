package app

import (
	"context"
	"net/http"

	kinopoisk_client "github.com/oshokin/kinopoisk-trailer-grabber/internal/client/kinopoisk"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/config"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/logger"
	trailer_service "github.com/oshokin/kinopoisk-trailer-grabber/internal/service/trailer"
	http_transport "github.com/oshokin/kinopoisk-trailer-grabber/internal/transport/http"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/utils"
)

// ExecuteRootCommand is the entry point for the application.
// It initializes the Kinopoisk client, wires the resolver and transcoder into
// the trailer service, and starts the download process for the provided films.
func ExecuteRootCommand(ctx context.Context, cfg *config.Config, filmInputs []string) {
	kinopoiskClient, err := kinopoisk_client.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize Kinopoisk client: %v", err)
	}

	httpClient := newStreamingHTTPClient(cfg)
	resolver := newResolver(cfg, httpClient)
	transcoder := trailer_service.NewFFmpegTranscoder(cfg)

	s := trailer_service.NewService(cfg, kinopoiskClient, httpClient, resolver, transcoder)

	// Ensure statistics are ALWAYS printed, even on panic or os.Exit bypass.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Panic recovered: %v", r)
		}

		s.PrintDownloadSummary(ctx)
	}()

	s.DownloadFilmTrailers(ctx, filmInputs)
}

// newStreamingHTTPClient builds the HTTP client used for player pages,
// playlists and segments: user-agent injection plus debug request dumps,
// with the configured per-call timeout.
func newStreamingHTTPClient(cfg *config.Config) *http.Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = http_transport.DefaultUserAgent
	}

	var transport http.RoundTripper = http.DefaultTransport
	transport = http_transport.NewUserAgentInjector(transport, utils.NewSimpleUserAgentProvider(userAgent))
	transport = http_transport.NewLogTransport(transport, config.DefaultMaxLogLength)

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.ParsedNetworkTimeout,
	}
}

// newResolver picks the resolution strategy configured at startup.
// The configuration layer guarantees the kind is one of the known values.
func newResolver(cfg *config.Config, httpClient *http.Client) trailer_service.Resolver {
	if cfg.ParsedResolver == config.ResolverKindConvert {
		return trailer_service.NewConvertResolver(httpClient)
	}

	return trailer_service.NewPageResolver(httpClient)
}
