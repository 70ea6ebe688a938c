// Package hls provides parsing and variant selection for HTTP Live Streaming playlists.
// It decodes master playlists into stream and media variants, selects the variant set
// closest to a preferred video height, and extracts ordered segment URLs from media
// playlists with an optional total-duration gate.
package hls
