package trailer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/oshokin/kinopoisk-trailer-grabber/internal/constants"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/logger"
	http_transport "github.com/oshokin/kinopoisk-trailer-grabber/internal/transport/http"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/utils"
)

// segmentIndexPaddingWidth keeps segment file names lexicographically ordered
// for playlists of any realistic length.
const segmentIndexPaddingWidth = 5

// fetchSegments downloads every segment URL to workDir, strictly sequentially
// and in input order, which later concatenation depends on. Each destination
// name embeds a zero-padded sequence counter plus the last path segment of its
// source URL, so names are unique and sort in download order.
//
// Any single failed segment aborts the whole batch: a partial segment set
// concatenates into a truncated trailer, so it is treated as a full failure
// and nothing is returned.
func (s *ServiceImpl) fetchSegments(ctx context.Context, segmentURLs []string, workDir string) ([]string, error) {
	if len(segmentURLs) == 0 {
		return nil, ErrEmptySegmentList
	}

	var bar *progressbar.ProgressBar

	// The progress bar and debug dumps fight for the same terminal.
	if !logger.IsDebugLevel() {
		bar = progressbar.Default(int64(len(segmentURLs)), "Downloading segments")
	}

	paths := make([]string, 0, len(segmentURLs))

	for i, segmentURL := range segmentURLs {
		// Stop between segments as soon as cancellation is requested.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		destinationPath := filepath.Join(workDir,
			fmt.Sprintf("%0*d_%s", segmentIndexPaddingWidth, i, utils.SanitizeFilename(utils.LastURLPathSegment(segmentURL))))

		written, err := s.downloadToFile(ctx, segmentURL, destinationPath)
		if err != nil {
			logger.Errorf(ctx, "Segment %d of %d failed ('%s'): %v", i+1, len(segmentURLs), segmentURL, err)

			return nil, fmt.Errorf("%w: segment %d: %w", ErrSegmentDownloadFailed, i, err)
		}

		s.addBytesDownloaded(written)

		paths = append(paths, destinationPath)

		if bar != nil {
			//nolint:errcheck // Progress rendering errors are not actionable.
			_ = bar.Add(1)
		}
	}

	return paths, nil
}

// downloadToFile streams a single URL into destinationPath with the
// browser-mimicking header set and returns the number of bytes written.
func (s *ServiceImpl) downloadToFile(ctx context.Context, sourceURL, destinationPath string) (int64, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, http.NoBody)
	if err != nil {
		return 0, err
	}

	for key, value := range http_transport.BrowserHeaders() {
		request.Header.Set(key, value)
	}

	response, err := s.httpClient.Do(request)
	if err != nil {
		return 0, err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	file, err := os.OpenFile(filepath.Clean(destinationPath),
		os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.DefaultFilePermissions)
	if err != nil {
		return 0, err
	}

	defer file.Close()

	return io.Copy(file, response.Body)
}

// fetchTextContent fetches a text resource (playlist, player page) with the
// browser-mimicking header set and returns its body as a string.
func (s *ServiceImpl) fetchTextContent(ctx context.Context, sourceURL string) (string, error) {
	return fetchText(ctx, s.httpClient, sourceURL)
}
