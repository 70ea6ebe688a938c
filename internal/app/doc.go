// Package app provides the main application logic for downloading Kinopoisk trailers.
// It initializes the necessary components, such as the Kinopoisk metadata client,
// the stream source resolver, and the ffmpeg transcoder, and orchestrates the
// download process.
package app
