package trailer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestService builds a minimal service for exercising the fetcher directly.
func newTestService(httpClient *http.Client) *ServiceImpl {
	return &ServiceImpl{
		httpClient: httpClient,
		stats:      new(DownloadStatistics),
	}
}

// TestFetchSegments_PreservesOrder tests that returned paths follow input
// order and sort lexicographically in that same order.
func TestFetchSegments_PreservesOrder(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Body echoes the path so content identifies the segment.
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer server.Close()

	segmentURLs := []string{
		server.URL + "/parts/zulu.ts",
		server.URL + "/parts/alpha.ts",
		server.URL + "/parts/mike.ts",
	}

	s := newTestService(server.Client())

	paths, err := s.fetchSegments(t.Context(), segmentURLs, t.TempDir())
	require.NoError(t, err)
	require.Len(t, paths, 3)

	// Same order as the input, regardless of the names' own ordering.
	for i, expectedBody := range []string{"/parts/zulu.ts", "/parts/alpha.ts", "/parts/mike.ts"} {
		content, readErr := os.ReadFile(paths[i])
		require.NoError(t, readErr)
		assert.Equal(t, expectedBody, string(content))
	}

	// And the on-disk names sort back into download order.
	sorted := slices.Clone(paths)
	slices.Sort(sorted)
	assert.Equal(t, paths, sorted)

	assert.Positive(t, s.stats.TotalBytesDownloaded)
}

// TestFetchSegments_PartialFailureDiscardsAll tests that one failed segment
// fails the whole batch with no partial result.
func TestFetchSegments_PartialFailureDiscardsAll(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/seg_2.ts" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		_, _ = w.Write([]byte("data"))
	}))
	defer server.Close()

	segmentURLs := []string{
		server.URL + "/seg_0.ts",
		server.URL + "/seg_1.ts",
		server.URL + "/seg_2.ts",
		server.URL + "/seg_3.ts",
		server.URL + "/seg_4.ts",
	}

	s := newTestService(server.Client())

	paths, err := s.fetchSegments(t.Context(), segmentURLs, t.TempDir())
	require.ErrorIs(t, err, ErrSegmentDownloadFailed)
	assert.Empty(t, paths)
}

// TestFetchSegments_EmptyList tests the empty batch edge case.
func TestFetchSegments_EmptyList(t *testing.T) {
	t.Parallel()

	s := newTestService(http.DefaultClient)

	paths, err := s.fetchSegments(t.Context(), nil, t.TempDir())
	require.ErrorIs(t, err, ErrEmptySegmentList)
	assert.Empty(t, paths)
}

// TestFetchSegments_Cancellation tests that a cancelled context stops the batch.
func TestFetchSegments_Cancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("data"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	s := newTestService(server.Client())

	paths, err := s.fetchSegments(ctx, []string{server.URL + "/seg_0.ts"}, t.TempDir())
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, paths)
}
