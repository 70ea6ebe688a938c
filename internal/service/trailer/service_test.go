package trailer_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/kinopoisk-trailer-grabber/internal/config"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/constants"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/service/trailer"
	mock_trailer "github.com/oshokin/kinopoisk-trailer-grabber/internal/service/trailer/mocks"
)

// testReference returns a valid reference used across the orchestrator tests.
func testReference() *trailer.TrailerReference {
	return &trailer.TrailerReference{
		FilmName:    "Film",
		TrailerName: "Teaser",
		Year:        2024,
		URL:         "https://www.youtube.com/watch?v=id123",
		SourceID:    "id123",
	}
}

// testConfig returns a configuration pointing at a per-test output folder.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Quality:                  720,
		OutputPath:               t.TempDir(),
		LogPath:                  t.TempDir(),
		ParsedMaxTrailerDuration: 5 * time.Minute,
		ParsedNetworkTimeout:     time.Minute,
		ParsedTranscoderTimeout:  time.Minute,
	}
}

// TestDownloadTrailer_GoneWritesMarker tests that a confirmed-gone video
// produces a zero-byte marker and never reaches the transcoder.
func TestDownloadTrailer_GoneWritesMarker(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cfg := testConfig(t)

	resolver := mock_trailer.NewMockResolver(ctrl)
	resolver.EXPECT().
		Resolve(gomock.Any(), "id123", 720).
		Return(&trailer.Resolution{Status: trailer.ResolutionStatusGone}, nil)

	// No expectations: any transcoder call fails the test.
	transcoder := mock_trailer.NewMockTranscoder(ctrl)

	s := trailer.NewService(cfg, nil, http.DefaultClient, resolver, transcoder)

	outputPath, err := s.DownloadTrailer(t.Context(), testReference())
	require.NoError(t, err)
	assert.Empty(t, outputPath)

	markerPath := filepath.Join(cfg.OutputPath, trailer.GetMarkerName("id123"))

	info, err := os.Stat(markerPath)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

// TestDownloadTrailer_MarkerShortCircuits tests that a marker from an earlier
// run skips the trailer without touching the resolver.
func TestDownloadTrailer_MarkerShortCircuits(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cfg := testConfig(t)

	markerPath := filepath.Join(cfg.OutputPath, trailer.GetMarkerName("id123"))
	require.NoError(t, os.WriteFile(markerPath, nil, constants.DefaultFilePermissions))

	resolver := mock_trailer.NewMockResolver(ctrl)
	transcoder := mock_trailer.NewMockTranscoder(ctrl)

	s := trailer.NewService(cfg, nil, http.DefaultClient, resolver, transcoder)

	outputPath, err := s.DownloadTrailer(t.Context(), testReference())
	require.NoError(t, err)
	assert.Empty(t, outputPath)
}

// TestDownloadTrailer_ExistingOutputSkips tests that an already-downloaded
// trailer is not downloaded again.
func TestDownloadTrailer_ExistingOutputSkips(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cfg := testConfig(t)
	ref := testReference()

	existingPath := filepath.Join(cfg.OutputPath,
		trailer.GetOutputName(ref.FilmName, ref.TrailerName, ref.Year, ref.SourceID, constants.ExtensionMP4))
	require.NoError(t, os.WriteFile(existingPath, []byte("previous"), constants.DefaultFilePermissions))

	resolver := mock_trailer.NewMockResolver(ctrl)
	transcoder := mock_trailer.NewMockTranscoder(ctrl)

	s := trailer.NewService(cfg, nil, http.DefaultClient, resolver, transcoder)

	outputPath, err := s.DownloadTrailer(t.Context(), ref)
	require.NoError(t, err)
	assert.Empty(t, outputPath)
}

// TestDownloadTrailer_NotFoundFails tests that an unresolvable video fails
// without producing any file.
func TestDownloadTrailer_NotFoundFails(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cfg := testConfig(t)

	resolver := mock_trailer.NewMockResolver(ctrl)
	resolver.EXPECT().
		Resolve(gomock.Any(), "id123", 720).
		Return(&trailer.Resolution{Status: trailer.ResolutionStatusNotFound}, nil)

	transcoder := mock_trailer.NewMockTranscoder(ctrl)

	s := trailer.NewService(cfg, nil, http.DefaultClient, resolver, transcoder)

	outputPath, err := s.DownloadTrailer(t.Context(), testReference())
	require.ErrorIs(t, err, trailer.ErrNoStreamsResolved)
	assert.Empty(t, outputPath)

	entries, err := os.ReadDir(cfg.OutputPath)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// TestDownloadTrailer_DirectLink tests the direct-link acquisition path end to end.
func TestDownloadTrailer_DirectLink(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("video-bytes"))
	}))
	defer server.Close()

	ctrl := gomock.NewController(t)
	cfg := testConfig(t)
	ref := testReference()

	resolver := mock_trailer.NewMockResolver(ctrl)
	resolver.EXPECT().
		Resolve(gomock.Any(), "id123", 720).
		Return(&trailer.Resolution{
			Status: trailer.ResolutionStatusFound,
			Kind:   trailer.ResolutionKindDirectLink,
			URL:    server.URL + "/trailer.mp4",
		}, nil)

	transcoder := mock_trailer.NewMockTranscoder(ctrl)

	s := trailer.NewService(cfg, nil, server.Client(), resolver, transcoder)

	outputPath, err := s.DownloadTrailer(t.Context(), ref)
	require.NoError(t, err)

	expectedPath := filepath.Join(cfg.OutputPath,
		trailer.GetOutputName(ref.FilmName, ref.TrailerName, ref.Year, ref.SourceID, constants.ExtensionMP4))
	assert.Equal(t, expectedPath, outputPath)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(content))
}

// TestDownloadTrailer_PlaylistPath tests the HLS acquisition path: master
// parsing, duration gating, segment fetching and both merge phases.
func TestDownloadTrailer_PlaylistPath(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/master.m3u8", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("#EXTM3U\n" +
			"#EXT-X-STREAM-INF:BANDWIDTH=1600000,RESOLUTION=1280x720\n" +
			"video_720.m3u8\n"))
	})
	mux.HandleFunc("/video_720.m3u8", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("#EXTM3U\n#EXT-X-TARGETDURATION:30\n" +
			"#EXTINF:30.0,\nseg_0.ts\n" +
			"#EXTINF:30.0,\nseg_1.ts\n" +
			"#EXTINF:30.0,\nseg_2.ts\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("segment-bytes"))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	ctrl := gomock.NewController(t)
	cfg := testConfig(t)
	ref := testReference()

	resolver := mock_trailer.NewMockResolver(ctrl)
	resolver.EXPECT().
		Resolve(gomock.Any(), "id123", 720).
		Return(&trailer.Resolution{
			Status: trailer.ResolutionStatusFound,
			Kind:   trailer.ResolutionKindPlaylist,
			URL:    server.URL + "/master.m3u8",
		}, nil)

	transcoder := mock_trailer.NewMockTranscoder(ctrl)
	transcoder.EXPECT().
		MergeSegments(gomock.Any(), gomock.Len(3), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ []string, outputPath string) error {
			return os.WriteFile(outputPath, []byte("concatenated"), constants.DefaultFilePermissions)
		})
	transcoder.EXPECT().
		MergeAudioVideo(gomock.Any(), "", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, outputPath string) error {
			return os.WriteFile(outputPath, []byte("muxed"), constants.DefaultFilePermissions)
		})

	s := trailer.NewService(cfg, nil, server.Client(), resolver, transcoder)

	outputPath, err := s.DownloadTrailer(t.Context(), ref)
	require.NoError(t, err)
	require.NotEmpty(t, outputPath)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "muxed", string(content))
}
