package trailer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/oshokin/kinopoisk-trailer-grabber/internal/logger"
)

const (
	// playerPageURLTemplate is the bare player page for one trailer,
	// rendered without the surrounding site chrome.
	playerPageURLTemplate = "https://widgets.kinopoisk.ru/discovery/trailer/%s?onlyPlayer=1&autoplay=false&cover=1"
	// playerStateMarker precedes the URL-encoded JSON state blob embedded in the player page.
	playerStateMarker = `data-state="`
)

// playerState mirrors the slice of the player page's state blob the resolver
// navigates. Everything else in the blob is ignored.
type playerState struct {
	// Models holds per-entity model maps keyed by entity id.
	Models struct {
		// Trailers maps a video identifier to its playback model.
		Trailers map[string]struct {
			// StreamURL is the HLS master playlist URL for the trailer.
			StreamURL string `json:"streamUrl"`
		} `json:"trailers"`
	} `json:"models"`
}

// PageResolver resolves a video identifier by scraping the hosting site's
// player page for the embedded state blob and reading the master playlist URL
// out of it. The preferred height plays no role here: rendition choice
// happens later, when the master playlist is parsed.
type PageResolver struct {
	// httpClient performs the page fetch.
	httpClient *http.Client
}

// NewPageResolver creates a page-scrape resolver on top of the given HTTP client.
func NewPageResolver(httpClient *http.Client) Resolver {
	return &PageResolver{httpClient: httpClient}
}

// Resolve fetches the player page for the video and extracts its master
// playlist URL. Any structural miss (marker absent, blob undecodable, id not
// in the model map) is a NotFound resolution, never an error.
func (r *PageResolver) Resolve(ctx context.Context, videoID string, _ int) (*Resolution, error) {
	pageURL := fmt.Sprintf(playerPageURLTemplate, url.PathEscape(videoID))

	page, err := fetchText(ctx, r.httpClient, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player page: %w", err)
	}

	streamURL := extractStreamURL(page, videoID)
	if streamURL == "" {
		logger.Debugf(ctx, "Player page for video '%s' carries no stream URL", videoID)

		return &Resolution{Status: ResolutionStatusNotFound}, nil
	}

	return &Resolution{
		Status: ResolutionStatusFound,
		Kind:   ResolutionKindPlaylist,
		URL:    streamURL,
	}, nil
}

// extractStreamURL locates the state blob in the page, decodes it and reads
// the stream URL for the given video. Returns "" on any miss.
func extractStreamURL(page, videoID string) string {
	_, rest, found := strings.Cut(page, playerStateMarker)
	if !found {
		return ""
	}

	encoded, _, found := strings.Cut(rest, `"`)
	if !found {
		return ""
	}

	decoded, err := url.QueryUnescape(encoded)
	if err != nil {
		return ""
	}

	var state playerState
	if err = json.Unmarshal([]byte(decoded), &state); err != nil {
		return ""
	}

	return state.Models.Trailers[videoID].StreamURL
}
