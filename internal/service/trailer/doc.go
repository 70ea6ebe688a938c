// Package trailer implements the trailer acquisition pipeline: resolving a
// Kinopoisk trailer reference to a stream source, downloading and parsing HLS
// playlists, fetching media segments, and merging them into a playable file
// through an external transcoder. Failures are contained per trailer; a batch
// run always continues with the next reference.
package trailer
