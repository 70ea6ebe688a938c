package trailer

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/oshokin/kinopoisk-trailer-grabber/internal/logger"
)

// watchPageURLTemplate is the public page of a video on its origin host,
// used both as the conversion services' input and for the existence probe.
const watchPageURLTemplate = "https://www.youtube.com/watch?v=%s"

// conversionEnvelopeStatusOK is the status value a healthy conversion response carries.
const conversionEnvelopeStatusOK = "ok"

// conversionBackend describes one third-party conversion service.
// Both known services speak the same envelope, so one flow serves both.
type conversionBackend struct {
	// Name identifies the backend in logs.
	Name string
	// AnalyzeURL receives the source URL and answers with available qualities.
	AnalyzeURL string
	// ConvertURL receives a chosen format key and answers with a download link.
	ConvertURL string
}

// conversionEnvelope is the response shape shared by the analyze and convert
// calls of both backends. Analyze fills Formats, convert fills DownloadLink.
type conversionEnvelope struct {
	// Status is "ok" on success.
	Status string `json:"status"`
	// Mess carries the service's error message; empty on success.
	Mess string `json:"mess"`
	// Formats lists the renditions the service can produce.
	Formats []conversionFormat `json:"links"`
	// DownloadLink is the final direct download URL.
	DownloadLink string `json:"dlink"`
}

// conversionFormat is one rendition offered by the analyze call.
type conversionFormat struct {
	// Quality is a human label like "720p".
	Quality string `json:"q"`
	// Key is the opaque format descriptor the convert call expects back.
	Key string `json:"k"`
}

// defaultConversionBackends lists the known conversion services in preference order.
//
//nolint:gochecknoglobals // This is an immutable list of service endpoints.
var defaultConversionBackends = []conversionBackend{
	{
		Name:       "flvto",
		AnalyzeURL: "https://www.flvto.biz/ajax/ajax.php?action=analyze",
		ConvertURL: "https://www.flvto.biz/ajax/ajax.php?action=convert",
	},
	{
		Name:       "2conv",
		AnalyzeURL: "https://www.2conv.com/ajax/ajax.php?action=analyze",
		ConvertURL: "https://www.2conv.com/ajax/ajax.php?action=convert",
	},
}

// videoUnavailableMarkers are the strings whose presence on the origin page
// confirms the video is permanently gone rather than merely unconvertible.
//
//nolint:gochecknoglobals // This is an immutable list used as a constant.
var videoUnavailableMarkers = []string{
	"Video unavailable",
	"This video isn't available any more",
	`"status":"ERROR"`,
}

// ConvertResolver resolves a video identifier through a third-party
// conversion service: an analyze call lists available qualities, a convert
// call turns the chosen one into a direct download link. When analysis yields
// nothing, the origin page is probed to tell "gone forever" from "try later".
type ConvertResolver struct {
	// httpClient performs the service calls and the existence probe.
	httpClient *http.Client
	// backends are tried in order until one produces a link.
	backends []conversionBackend
}

// NewConvertResolver creates a conversion-service resolver on top of the given HTTP client.
func NewConvertResolver(httpClient *http.Client) Resolver {
	return &ConvertResolver{
		httpClient: httpClient,
		backends:   defaultConversionBackends,
	}
}

// Resolve runs the analyze-then-convert flow against each backend in turn.
// A backend that reports zero usable qualities triggers the existence probe;
// a confirmed-gone video resolves as Gone so callers stop retrying it.
func (r *ConvertResolver) Resolve(ctx context.Context, videoID string, preferredHeight int) (*Resolution, error) {
	var (
		sawEmptyAnalysis  bool
		sawTransientFault bool
	)

	for _, backend := range r.backends {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resolution, err := r.resolveWith(ctx, backend, videoID, preferredHeight)
		if err != nil {
			logger.Warnf(ctx, "Conversion backend '%s' failed for video '%s': %v", backend.Name, videoID, err)

			sawTransientFault = true

			continue
		}

		switch resolution.Status {
		case ResolutionStatusFound:
			return resolution, nil
		case ResolutionStatusNotFound:
			sawEmptyAnalysis = true
		case ResolutionStatusTransient:
			sawTransientFault = true
		case ResolutionStatusGone:
		}
	}

	if sawEmptyAnalysis && r.isGoneUpstream(ctx, videoID) {
		return &Resolution{Status: ResolutionStatusGone}, nil
	}

	if sawTransientFault {
		return &Resolution{Status: ResolutionStatusTransient}, nil
	}

	return &Resolution{Status: ResolutionStatusNotFound}, nil
}

// resolveWith runs the two-phase flow against a single backend.
func (r *ConvertResolver) resolveWith(
	ctx context.Context,
	backend conversionBackend,
	videoID string,
	preferredHeight int,
) (*Resolution, error) {
	sourceURL := fmt.Sprintf(watchPageURLTemplate, url.QueryEscape(videoID))

	analysis, err := r.callService(ctx, backend.AnalyzeURL, url.Values{"url": {sourceURL}})
	if err != nil {
		return nil, fmt.Errorf("analyze call failed: %w", err)
	}

	if analysis == nil {
		return &Resolution{Status: ResolutionStatusNotFound}, nil
	}

	if analysis.Status != conversionEnvelopeStatusOK || analysis.Mess != "" {
		logger.Debugf(ctx, "Backend '%s' declined video '%s': status '%s', message '%s'",
			backend.Name, videoID, analysis.Status, analysis.Mess)

		return &Resolution{Status: ResolutionStatusTransient}, nil
	}

	keysByHeight := collectQualities(analysis.Formats)
	if len(keysByHeight) == 0 {
		return &Resolution{Status: ResolutionStatusNotFound}, nil
	}

	formatKey := selectQualityKey(keysByHeight, preferredHeight)

	conversion, err := r.callService(ctx, backend.ConvertURL, url.Values{
		"vid": {videoID},
		"k":   {formatKey},
	})
	if err != nil {
		return nil, fmt.Errorf("convert call failed: %w", err)
	}

	if conversion == nil ||
		conversion.Status != conversionEnvelopeStatusOK ||
		conversion.Mess != "" ||
		conversion.DownloadLink == "" {
		return &Resolution{Status: ResolutionStatusTransient}, nil
	}

	return &Resolution{
		Status: ResolutionStatusFound,
		Kind:   ResolutionKindDirectLink,
		URL:    conversion.DownloadLink,
	}, nil
}

// callService posts a form to a backend endpoint and decodes the shared
// envelope. An undecodable body is a structural miss and decodes to nil.
func (r *ConvertResolver) callService(
	ctx context.Context,
	endpoint string,
	form url.Values,
) (*conversionEnvelope, error) {
	body, err := postForm(ctx, r.httpClient, endpoint, form)
	if err != nil {
		return nil, err
	}

	var envelope conversionEnvelope
	if err = json.Unmarshal(body, &envelope); err != nil {
		return nil, nil //nolint:nilnil // A garbled body is a miss, not a transport fault.
	}

	return &envelope, nil
}

// isGoneUpstream probes the video's public page on the origin host for the
// known unavailability markers. A failed probe confirms nothing.
func (r *ConvertResolver) isGoneUpstream(ctx context.Context, videoID string) bool {
	page, err := fetchText(ctx, r.httpClient, fmt.Sprintf(watchPageURLTemplate, url.QueryEscape(videoID)))
	if err != nil {
		logger.Debugf(ctx, "Existence probe for video '%s' failed: %v", videoID, err)

		return false
	}

	for _, marker := range videoUnavailableMarkers {
		if strings.Contains(page, marker) {
			return true
		}
	}

	return false
}

// collectQualities turns the analyze formats into a height-keyed map of
// format descriptors. Labels that don't parse as "<height>p" are dropped,
// duplicate heights keep the first descriptor seen.
func collectQualities(formats []conversionFormat) map[int]string {
	keysByHeight := make(map[int]string, len(formats))

	for _, format := range formats {
		label, found := strings.CutSuffix(strings.ToLower(strings.TrimSpace(format.Quality)), "p")
		if !found || format.Key == "" {
			continue
		}

		height, err := strconv.Atoi(label)
		if err != nil || height <= 0 {
			continue
		}

		if _, exists := keysByHeight[height]; exists {
			continue
		}

		keysByHeight[height] = format.Key
	}

	return keysByHeight
}

// selectQualityKey scans available heights from best to worst and takes the
// first at or below the preference. When every height exceeds the preference,
// the scan runs off the end and the lowest height wins.
func selectQualityKey(keysByHeight map[int]string, preferredHeight int) string {
	heights := make([]int, 0, len(keysByHeight))
	for height := range keysByHeight {
		heights = append(heights, height)
	}

	slices.SortFunc(heights, func(a, b int) int { return cmp.Compare(b, a) })

	var chosen int

	for _, height := range heights {
		chosen = height
		if height <= preferredHeight {
			break
		}
	}

	return keysByHeight[chosen]
}
