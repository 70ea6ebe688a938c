package trailer

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/oshokin/kinopoisk-trailer-grabber/internal/client/kinopoisk"
)

// TrailerReference is one downloadable trailer, normalized from the metadata API.
type TrailerReference struct {
	// FilmName is the display name of the film.
	FilmName string
	// TrailerName is the trailer's own display name.
	TrailerName string
	// Year is the film's premiere year, 0 when unknown.
	Year int
	// URL is the canonical playback URL on the hosting site.
	URL string
	// SourceID is the opaque video identifier extracted from URL.
	SourceID string
}

// DownloadOutcome is the terminal state of one trailer's pipeline run.
type DownloadOutcome uint8

const (
	// DownloadOutcomeUnknown - pipeline did not reach a terminal state.
	DownloadOutcomeUnknown DownloadOutcome = iota
	// DownloadOutcomeDone - trailer file written to the destination folder.
	DownloadOutcomeDone
	// DownloadOutcomeFailed - pipeline failed; no file produced.
	DownloadOutcomeFailed
	// DownloadOutcomeSkipped - trailer intentionally skipped (gone upstream, invalid, or already present).
	DownloadOutcomeSkipped
)

// String returns a human-readable representation of the DownloadOutcome.
func (o DownloadOutcome) String() string {
	switch o {
	case DownloadOutcomeDone:
		return "done"
	case DownloadOutcomeFailed:
		return "failed"
	case DownloadOutcomeSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("unknown: %d", o)
	}
}

// SkipReason represents why a trailer was skipped.
type SkipReason uint8

const (
	// SkipReasonExists - output file already exists from an earlier run.
	SkipReasonExists SkipReason = iota
	// SkipReasonGone - upstream confirmed the video no longer exists.
	SkipReasonGone
	// SkipReasonInvalid - the reference failed input validation.
	SkipReasonInvalid
)

// String returns a human-readable representation of the SkipReason.
func (sr SkipReason) String() string {
	switch sr {
	case SkipReasonExists:
		return "already exists"
	case SkipReasonGone:
		return "gone upstream"
	case SkipReasonInvalid:
		return "invalid reference"
	default:
		return fmt.Sprintf("unknown reason: %d", sr)
	}
}

// DownloadStatistics tracks metrics for a download session.
type DownloadStatistics struct {
	// StartTime is when the download session began.
	StartTime time.Time
	// EndTime is when the download session completed.
	EndTime time.Time
	// TotalTrailersProcessed is the total number of trailers attempted.
	TotalTrailersProcessed int64
	// TrailersDownloaded is the number of trailers successfully downloaded.
	TrailersDownloaded int64
	// TrailersSkipped is the total number of trailers skipped for any reason.
	TrailersSkipped int64
	// TrailersSkippedExists is the number of trailers skipped because they already exist.
	TrailersSkippedExists int64
	// TrailersSkippedGone is the number of trailers skipped because upstream confirmed them gone.
	TrailersSkippedGone int64
	// TrailersSkippedInvalid is the number of references rejected by input validation.
	TrailersSkippedInvalid int64
	// TrailersFailed is the number of trailers that failed to download.
	TrailersFailed int64
	// TotalBytesDownloaded is the total size of downloaded content in bytes.
	TotalBytesDownloaded int64
}

// trailerNameStopWords are suffixes that mark a video as something other than a
// trailer when combined with the film name (fragments, interviews, promo spots).
//
//nolint:gochecknoglobals // This is an immutable list used as a constant for validation purposes.
var trailerNameStopWords = []string{
	"фрагмент",
	"интервью",
	"тв-ролик",
	"реклама",
	"о съёмках",
	"fragment",
	"interview",
	"featurette",
}

// NewTrailerReference normalizes an API trailer into a pipeline reference.
func NewTrailerReference(t *kinopoisk.Trailer) *TrailerReference {
	return &TrailerReference{
		FilmName:    t.FilmName,
		TrailerName: t.Name,
		Year:        t.Year,
		URL:         t.URL,
		SourceID:    videoIDFromURL(t.URL),
	}
}

// IsValid reports whether the reference is worth downloading.
// A reference is valid only if both names are present, a source ID could be
// derived, and the trailer name is not just the film name glued to a stop word
// (those are fragments and interviews, not trailers).
func (r *TrailerReference) IsValid() bool {
	if r.FilmName == "" || r.TrailerName == "" || r.SourceID == "" {
		return false
	}

	remainder := strings.ToLower(r.TrailerName)
	remainder = strings.TrimPrefix(remainder, strings.ToLower(r.FilmName))
	remainder = strings.Trim(remainder, " \t-–—:().,«»\"")

	for _, stopWord := range trailerNameStopWords {
		if remainder == stopWord {
			return false
		}
	}

	return true
}

// videoIDFromURL extracts the opaque video identifier from a playback URL:
// the "v" query parameter when present (YouTube-style links),
// otherwise the last path segment.
func videoIDFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	if id := parsed.Query().Get("v"); id != "" {
		return id
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")

	last := segments[len(segments)-1]
	if last == "" {
		return ""
	}

	return last
}
