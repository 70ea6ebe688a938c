package hls

// StreamVariant represents one video rendition advertised by a master playlist.
// Variants are constructed once during parsing and are immutable afterwards.
type StreamVariant struct {
	// Bandwidth is the peak bitrate of the rendition in bits per second.
	Bandwidth int
	// AverageBandwidth is the average bitrate of the rendition, 0 when absent.
	AverageBandwidth int
	// Codecs is the comma-separated codec string of the rendition.
	Codecs string
	// Width is the horizontal resolution in pixels, 0 when the playlist omits it.
	Width int
	// Height is the vertical resolution in pixels, 0 when the playlist omits it.
	Height int
	// AudioGroup is the group ID of the associated alternate audio renditions.
	AudioGroup string
	// URL is the absolute URL of the rendition's media playlist.
	URL string
}

// MediaVariant represents one alternate audio or subtitle rendition.
type MediaVariant struct {
	// Type is the rendition type (AUDIO, SUBTITLES, ...).
	Type string
	// GroupID is the rendition group this variant belongs to.
	GroupID string
	// Name is the human-readable rendition name.
	Name string
	// IsDefault reports whether the playlist marks this rendition as default.
	IsDefault bool
	// IsAutoselect reports whether the playlist allows automatic selection.
	IsAutoselect bool
	// Language is the rendition language tag.
	Language string
	// URL is the absolute URL of the rendition's media playlist.
	URL string
}
