package hls

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/grafov/m3u8"
)

const (
	// minTrailerDuration is the lower bound of the media playlist duration gate.
	// Anything shorter is a teaser or a fragment, not a trailer.
	minTrailerDuration = time.Minute

	// targetDurationTag declares the per-segment duration in a media playlist.
	targetDurationTag = "#EXT-X-TARGETDURATION:"

	// commentPrefix marks tag and comment lines in M3U8 playlists.
	commentPrefix = "#"
)

// Static error definitions for better error handling.
var (
	// ErrNotMasterPlaylist indicates that the content is not a master playlist.
	ErrNotMasterPlaylist = errors.New("content is not a master playlist")
	// ErrInvalidBaseURL indicates that the playlist base URL cannot be parsed.
	ErrInvalidBaseURL = errors.New("invalid playlist base URL")
)

// ParseMasterPlaylist parses a master playlist and returns the stream variants at the
// height closest to preferredHeight plus all alternate media variants.
//
// Height selection picks the smallest height that is greater than or equal to the
// preference, falling back to the largest height below it when nothing qualifies.
// When no variant advertises a resolution at all, every parsed stream is returned
// unfiltered and the caller must cope with a multi-resolution bundle.
func ParseMasterPlaylist(baseURL, content string, preferredHeight int) ([]StreamVariant, []MediaVariant, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, nil, fmt.Errorf("%w: '%s'", ErrInvalidBaseURL, baseURL)
	}

	playlist, listType, err := m3u8.DecodeFrom(strings.NewReader(content), false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode master playlist: %w", err)
	}

	master, ok := playlist.(*m3u8.MasterPlaylist)
	if !ok || listType != m3u8.MASTER {
		return nil, nil, ErrNotMasterPlaylist
	}

	var (
		streams   []StreamVariant
		media     []MediaVariant
		seenMedia = make(map[MediaVariant]struct{})
	)

	for _, variant := range master.Variants {
		if variant == nil || variant.URI == "" {
			// A stream tag without a following URL line is discarded, not
			// emitted with an empty URL.
			continue
		}

		width, height := parseResolution(variant.Resolution)

		streams = append(streams, StreamVariant{
			Bandwidth:        int(variant.Bandwidth),
			AverageBandwidth: int(variant.AverageBandwidth),
			Codecs:           variant.Codecs,
			Width:            width,
			Height:           height,
			AudioGroup:       variant.Audio,
			URL:              resolveAgainstHost(base, variant.URI),
		})

		for _, alternative := range variant.Alternatives {
			if alternative == nil || alternative.URI == "" {
				continue
			}

			mediaVariant := MediaVariant{
				Type:         alternative.Type,
				GroupID:      alternative.GroupId,
				Name:         alternative.Name,
				IsDefault:    alternative.Default,
				IsAutoselect: strings.EqualFold(alternative.Autoselect, "yes"),
				Language:     alternative.Language,
				URL:          resolveAgainstHost(base, alternative.URI),
			}

			// The decoder attaches the same alternative to every variant
			// in its group, so deduplicate by value.
			if _, exists := seenMedia[mediaVariant]; exists {
				continue
			}

			seenMedia[mediaVariant] = struct{}{}

			media = append(media, mediaVariant)
		}
	}

	return selectByHeight(streams, preferredHeight), media, nil
}

// ParseMediaPlaylist extracts the ordered segment URL list from a media playlist.
//
// With a non-positive maxDuration every non-comment, non-blank line is returned
// verbatim, in order. With a positive maxDuration the playlist's target duration is
// used to estimate the total length: playlists shorter than one minute or longer than
// maxDuration return nil, rejecting teasers and full features masquerading as
// trailers. A playlist without a target-duration tag cannot be gated and is returned
// unchecked.
func ParseMediaPlaylist(content string, maxDuration time.Duration) []string {
	var (
		segments       []string
		targetDuration time.Duration
	)

	for line := range strings.Lines(content) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, commentPrefix) {
			if value, found := strings.CutPrefix(line, targetDurationTag); found {
				if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
					targetDuration = time.Duration(seconds) * time.Second
				}
			}

			continue
		}

		segments = append(segments, line)
	}

	if maxDuration <= 0 || targetDuration == 0 {
		return segments
	}

	totalDuration := time.Duration(len(segments)) * targetDuration
	if totalDuration < minTrailerDuration || totalDuration > maxDuration {
		return nil
	}

	return segments
}

// parseResolution parses a "WxH" resolution attribute.
// Both dimensions default to 0 when the attribute is absent or malformed,
// meaning "resolution unknown".
func parseResolution(resolution string) (width, height int) {
	dimensions := strings.SplitN(strings.ToLower(resolution), "x", 2)
	if len(dimensions) != 2 {
		return 0, 0
	}

	width, widthErr := strconv.Atoi(strings.TrimSpace(dimensions[0]))
	height, heightErr := strconv.Atoi(strings.TrimSpace(dimensions[1]))

	if widthErr != nil || heightErr != nil || width < 0 || height < 0 {
		return 0, 0
	}

	return width, height
}

// resolveAgainstHost turns a playlist URI into an absolute URL.
// Fully-qualified URIs pass through; anything else is prefixed with the
// playlist's scheme and host.
func resolveAgainstHost(base *url.URL, uri string) string {
	if strings.Contains(uri, "://") {
		return uri
	}

	if !strings.HasPrefix(uri, "/") {
		uri = "/" + uri
	}

	return base.Scheme + "://" + base.Host + uri
}

// selectByHeight returns the streams at the height closest to preferredHeight.
// Streams without a known height never participate in the selection; when no stream
// advertises a height at all, the whole list is returned unfiltered.
func selectByHeight(streams []StreamVariant, preferredHeight int) []StreamVariant {
	var heights []int

	for _, stream := range streams {
		if stream.Height > 0 && !slices.Contains(heights, stream.Height) {
			heights = append(heights, stream.Height)
		}
	}

	if len(heights) == 0 {
		return streams
	}

	slices.Sort(heights)

	// Smallest height meeting the preference wins; otherwise the largest
	// height below it (closest-from-below).
	selectedHeight := heights[len(heights)-1]

	for _, height := range heights {
		if height >= preferredHeight {
			selectedHeight = height

			break
		}
	}

	selected := make([]StreamVariant, 0, len(streams))

	for _, stream := range streams {
		if stream.Height == selectedHeight {
			selected = append(selected, stream)
		}
	}

	return selected
}
