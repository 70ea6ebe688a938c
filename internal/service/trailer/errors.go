package trailer

import "errors"

// Static error definitions for better error handling.
var (
	// ErrNoStreamsResolved indicates that resolution produced no usable stream source.
	ErrNoStreamsResolved = errors.New("no stream source resolved")
	// ErrAllStreamsFailed indicates that every candidate stream failed to download.
	ErrAllStreamsFailed = errors.New("all candidate streams failed")
	// ErrEmptySegmentList indicates that a media playlist yielded no acceptable segments.
	ErrEmptySegmentList = errors.New("media playlist yielded no acceptable segments")
	// ErrSegmentDownloadFailed indicates that downloading a segment batch failed.
	ErrSegmentDownloadFailed = errors.New("segment download failed")
	// ErrTranscoderFailed indicates that the external transcoder exited with a failure.
	ErrTranscoderFailed = errors.New("transcoder exited with a failure")
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrResolutionFailed indicates that the source resolver could not produce a link.
	ErrResolutionFailed = errors.New("source resolution failed")
)
