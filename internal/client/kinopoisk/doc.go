// Package kinopoisk provides a client for fetching film and trailer metadata
// from the Kinopoisk film database through one of two alternative REST APIs.
// The API backend is chosen once at startup from configuration; responses are
// normalized into a shared model so the rest of the application never sees
// backend-specific shapes.
package kinopoisk
