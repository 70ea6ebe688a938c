package trailer

//go:generate $MOCKGEN -source=resolver.go -destination=mocks/resolver_mock.go

import (
	"context"
	"fmt"
)

// ResolutionStatus classifies the outcome of resolving a video identifier,
// so callers branch on meaning instead of inspecting error text.
type ResolutionStatus uint8

const (
	// ResolutionStatusNotFound - the source could not be resolved; try another strategy or give up.
	ResolutionStatusNotFound ResolutionStatus = iota
	// ResolutionStatusFound - a usable stream source was resolved.
	ResolutionStatusFound
	// ResolutionStatusGone - upstream confirmed the video no longer exists; never retry.
	ResolutionStatusGone
	// ResolutionStatusTransient - a temporary upstream failure; the trailer may succeed on a later run.
	ResolutionStatusTransient
)

// String returns a human-readable representation of the ResolutionStatus.
func (s ResolutionStatus) String() string {
	switch s {
	case ResolutionStatusFound:
		return "found"
	case ResolutionStatusNotFound:
		return "not found"
	case ResolutionStatusGone:
		return "gone upstream"
	case ResolutionStatusTransient:
		return "transient failure"
	default:
		return fmt.Sprintf("unknown: %d", s)
	}
}

// ResolutionKind tells the orchestrator how to treat a resolved URL.
type ResolutionKind uint8

const (
	// ResolutionKindPlaylist - the URL is an HLS master playlist.
	ResolutionKindPlaylist ResolutionKind = iota
	// ResolutionKindDirectLink - the URL is a direct download link for the whole file.
	ResolutionKindDirectLink
)

// Resolution is the outcome of resolving one video identifier.
type Resolution struct {
	// Status classifies the outcome.
	Status ResolutionStatus
	// Kind tells how to treat URL; meaningful only when Status is Found.
	Kind ResolutionKind
	// URL is the resolved master playlist URL or direct download link.
	URL string
}

// Resolver turns an opaque video identifier into a downloadable stream source.
// Implementations never propagate structural parse failures as errors;
// those collapse into a NotFound resolution. Errors are reserved for
// transport-level faults the caller may want to log.
type Resolver interface {
	// Resolve obtains a stream source for the video with the given identifier,
	// preferring renditions at preferredHeight pixels.
	Resolve(ctx context.Context, videoID string, preferredHeight int) (*Resolution, error)
}
