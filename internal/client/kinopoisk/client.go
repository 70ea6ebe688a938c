package kinopoisk

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/oshokin/kinopoisk-trailer-grabber/internal/config"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/logger"
	http_transport "github.com/oshokin/kinopoisk-trailer-grabber/internal/transport/http"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/utils"
)

// Client defines the interface for fetching Kinopoisk metadata.
type Client interface {
	// GetFilm retrieves film metadata for the specified film ID.
	GetFilm(ctx context.Context, filmID string) (*Film, error)
	// GetFilmTrailers retrieves the trailer references attached to a film.
	GetFilmTrailers(ctx context.Context, filmID string) ([]*Trailer, error)
}

// ClientImpl implements the Client interface against one of the two REST backends.
type ClientImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// flavor is the API backend selected once at startup.
	flavor config.APIFlavor
	// baseURL is the base URL of the selected backend.
	baseURL string
	// httpClient is the HTTP client for making requests.
	httpClient *http.Client
	// filmsCache caches film metadata to reduce duplicate API calls for the same films.
	filmsCache *lru.Cache[string, *Film]
	// trailersCache caches trailer lists to reduce duplicate API calls for the same films.
	trailersCache *lru.Cache[string, []*Trailer]
}

const (
	// unofficialBaseURL is the base URL of the kinopoiskapiunofficial.tech backend.
	unofficialBaseURL = "https://kinopoiskapiunofficial.tech"
	// unofficialFilmURI is the URI path template for film metadata.
	unofficialFilmURI = "api/v2.2/films"
	// devBaseURL is the base URL of the api.kinopoisk.dev backend.
	devBaseURL = "https://api.kinopoisk.dev"
	// devMovieURI is the URI path template for movie documents.
	devMovieURI = "v1.4/movie"

	// apiKeyHeader carries the API key on both backends.
	apiKeyHeader = "X-API-KEY"

	// rateLimitRetryPause is the fixed pause before the single retry of a
	// rate-limited request. Both backends throttle free keys aggressively.
	rateLimitRetryPause = 2 * time.Second

	// filmsCacheSize defines the maximum number of film entries to cache.
	filmsCacheSize = 1000
	// trailersCacheSize defines the maximum number of trailer list entries to cache.
	trailersCacheSize = 1000

	// devTrailerType is the video type the dev backend uses for actual trailers.
	devTrailerType = "TRAILER"
)

// Static error definitions for better error handling.
var (
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrUnsupportedAPIFlavor indicates the configured API backend is not supported.
	ErrUnsupportedAPIFlavor = errors.New("unsupported API flavor")
)

// NewClient creates and returns a new instance of ClientImpl.
// The API backend is fixed here, from the validated configuration enum,
// so an unrecognized flavor can never surface later as a runtime lookup failure.
func NewClient(cfg *config.Config) (Client, error) {
	var baseURL string

	switch cfg.ParsedAPIFlavor {
	case config.APIFlavorUnofficial:
		baseURL = unofficialBaseURL
	case config.APIFlavorDev:
		baseURL = devBaseURL
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAPIFlavor, cfg.ParsedAPIFlavor)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = http_transport.DefaultUserAgent
	}

	// Initialize the HTTP client with custom transport and timeout.
	httpClient := &http.Client{
		Transport: http_transport.NewUserAgentInjector(
			http_transport.NewLogTransport(http.DefaultTransport, 0),
			utils.NewSimpleUserAgentProvider(userAgent)),
		Timeout: cfg.ParsedNetworkTimeout,
	}

	// Initialize LRU caches for metadata to reduce redundant API calls.
	filmsCache, err := lru.New[string, *Film](filmsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create films cache: %w", err)
	}

	trailersCache, err := lru.New[string, []*Trailer](trailersCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create trailers cache: %w", err)
	}

	return &ClientImpl{
		cfg:           cfg,
		flavor:        cfg.ParsedAPIFlavor,
		baseURL:       baseURL,
		httpClient:    httpClient,
		filmsCache:    filmsCache,
		trailersCache: trailersCache,
	}, nil
}

// GetFilm retrieves film metadata for the specified film ID.
// Uses an LRU cache to avoid redundant API calls for the same films.
func (c *ClientImpl) GetFilm(ctx context.Context, filmID string) (*Film, error) {
	if cached, ok := c.filmsCache.Get(filmID); ok {
		logger.Debugf(ctx, "Film cache hit for ID: %s", filmID)

		return cached, nil
	}

	var (
		film *Film
		err  error
	)

	switch c.flavor {
	case config.APIFlavorUnofficial:
		film, err = c.getFilmUnofficial(ctx, filmID)
	case config.APIFlavorDev:
		film, err = c.getFilmDev(ctx, filmID)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAPIFlavor, c.flavor)
	}

	if err != nil {
		return nil, err
	}

	c.filmsCache.Add(filmID, film)

	return film, nil
}

// GetFilmTrailers retrieves the trailer references attached to a film.
// Uses an LRU cache to avoid redundant API calls for the same films.
func (c *ClientImpl) GetFilmTrailers(ctx context.Context, filmID string) ([]*Trailer, error) {
	if cached, ok := c.trailersCache.Get(filmID); ok {
		logger.Debugf(ctx, "Trailers cache hit for film ID: %s", filmID)

		return cached, nil
	}

	film, err := c.GetFilm(ctx, filmID)
	if err != nil {
		return nil, fmt.Errorf("failed to get film metadata: %w", err)
	}

	var trailers []*Trailer

	switch c.flavor {
	case config.APIFlavorUnofficial:
		trailers, err = c.getTrailersUnofficial(ctx, filmID, film)
	case config.APIFlavorDev:
		trailers, err = c.getTrailersDev(ctx, filmID, film)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAPIFlavor, c.flavor)
	}

	if err != nil {
		return nil, err
	}

	c.trailersCache.Add(filmID, trailers)

	return trailers, nil
}

// getFilmUnofficial fetches film metadata from the unofficial backend.
func (c *ClientImpl) getFilmUnofficial(ctx context.Context, filmID string) (*Film, error) {
	response, err := fetchJSON[unofficialFilmResponse](c, ctx, unofficialFilmURI+"/"+filmID)
	if err != nil {
		return nil, err
	}

	return &Film{
		ID:           strconv.FormatInt(response.KinopoiskID, 10),
		NameRu:       response.NameRu,
		NameOriginal: response.NameOriginal,
		Year:         response.Year,
	}, nil
}

// getTrailersUnofficial fetches the trailer list from the unofficial backend's videos endpoint.
func (c *ClientImpl) getTrailersUnofficial(ctx context.Context, filmID string, film *Film) ([]*Trailer, error) {
	response, err := fetchJSON[unofficialVideosResponse](c, ctx, unofficialFilmURI+"/"+filmID+"/videos")
	if err != nil {
		return nil, err
	}

	trailers := make([]*Trailer, 0, len(response.Items))

	for _, item := range response.Items {
		if item.URL == "" {
			continue
		}

		trailers = append(trailers, &Trailer{
			FilmName: film.DisplayName(),
			Name:     item.Name,
			URL:      item.URL,
			Site:     item.Site,
			Year:     film.Year,
		})
	}

	return trailers, nil
}

// getFilmDev fetches film metadata from the dev backend.
func (c *ClientImpl) getFilmDev(ctx context.Context, filmID string) (*Film, error) {
	response, err := fetchJSON[devMovieResponse](c, ctx, devMovieURI+"/"+filmID)
	if err != nil {
		return nil, err
	}

	return &Film{
		ID:           strconv.FormatInt(response.ID, 10),
		NameRu:       response.Name,
		NameOriginal: response.AlternativeName,
		Year:         response.Year,
	}, nil
}

// getTrailersDev extracts trailer references embedded in the dev backend's movie document.
func (c *ClientImpl) getTrailersDev(ctx context.Context, filmID string, film *Film) ([]*Trailer, error) {
	response, err := fetchJSON[devMovieResponse](c, ctx, devMovieURI+"/"+filmID)
	if err != nil {
		return nil, err
	}

	trailers := make([]*Trailer, 0, len(response.Videos.Trailers))

	for _, item := range response.Videos.Trailers {
		if item.URL == "" || item.Type != devTrailerType {
			continue
		}

		trailers = append(trailers, &Trailer{
			FilmName: film.DisplayName(),
			Name:     item.Name,
			URL:      item.URL,
			Site:     item.Site,
			Year:     film.Year,
		})
	}

	return trailers, nil
}

// DisplayName returns the film's preferred display name:
// the Russian title when present, otherwise the original title.
func (f *Film) DisplayName() string {
	if f.NameRu != "" {
		return f.NameRu
	}

	return f.NameOriginal
}

//nolint:revive // Has no sense, it's cause Go doesn't allow struct methods to be generic.
func fetchJSON[T any](c *ClientImpl, ctx context.Context, uri string) (*T, error) {
	route, err := url.JoinPath(c.baseURL, uri)
	if err != nil {
		return nil, err
	}

	// Rate-limited requests get one blind retry after a fixed pause.
	// This is the only place in the application that retries the same URL.
	result, statusCode, err := doJSONRequest[T](c, ctx, route)
	if statusCode == http.StatusTooManyRequests {
		logger.Infof(ctx, "Rate limited by %s, retrying once in %s", c.baseURL, rateLimitRetryPause)
		time.Sleep(rateLimitRetryPause)

		result, _, err = doJSONRequest[T](c, ctx, route)
	}

	return result, err
}

//nolint:revive // Has no sense, it's cause Go doesn't allow struct methods to be generic.
func doJSONRequest[T any](c *ClientImpl, ctx context.Context, route string) (*T, int, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, route, http.NoBody)
	if err != nil {
		return nil, 0, err
	}

	request.Header.Set(apiKeyHeader, c.cfg.APIKey)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, 0, err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, response.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	var result T
	if err = json.NewDecoder(response.Body).Decode(&result); err != nil {
		return nil, response.StatusCode, err
	}

	return &result, response.StatusCode, nil
}
