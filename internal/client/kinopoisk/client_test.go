package kinopoisk

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/kinopoisk-trailer-grabber/internal/config"
)

// newTestClient builds a client of the given flavor pointed at a fake backend.
func newTestClient(t *testing.T, flavor config.APIFlavor, server *httptest.Server) *ClientImpl {
	t.Helper()

	filmsCache, err := lru.New[string, *Film](filmsCacheSize)
	require.NoError(t, err)

	trailersCache, err := lru.New[string, []*Trailer](trailersCacheSize)
	require.NoError(t, err)

	return &ClientImpl{
		cfg:           &config.Config{APIKey: "test-key"},
		flavor:        flavor,
		baseURL:       server.URL,
		httpClient:    server.Client(),
		filmsCache:    filmsCache,
		trailersCache: trailersCache,
	}
}

// TestGetFilmTrailers_Unofficial tests the unofficial backend's two-endpoint flow.
func TestGetFilmTrailers_Unofficial(t *testing.T) {
	t.Parallel()

	var requestCount atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2.2/films/326", func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)

		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))

		_, _ = w.Write([]byte(`{"kinopoiskId":326,"nameRu":"Побег из Шоушенка",` +
			`"nameOriginal":"The Shawshank Redemption","year":1994}`))
	})
	mux.HandleFunc("/api/v2.2/films/326/videos", func(w http.ResponseWriter, _ *http.Request) {
		requestCount.Add(1)

		_, _ = w.Write([]byte(`{"total":3,"items":[` +
			`{"url":"https://www.youtube.com/watch?v=abc","name":"Трейлер","site":"YOUTUBE"},` +
			`{"url":"","name":"Broken","site":"YOUTUBE"},` +
			`{"url":"https://www.youtube.com/watch?v=def","name":"Teaser","site":"YOUTUBE"}]}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, config.APIFlavorUnofficial, server)

	trailers, err := client.GetFilmTrailers(t.Context(), "326")
	require.NoError(t, err)
	require.Len(t, trailers, 2)

	assert.Equal(t, "Побег из Шоушенка", trailers[0].FilmName)
	assert.Equal(t, "Трейлер", trailers[0].Name)
	assert.Equal(t, 1994, trailers[0].Year)
	assert.Equal(t, "https://www.youtube.com/watch?v=def", trailers[1].URL)

	// A second call is answered entirely from the cache.
	before := requestCount.Load()

	_, err = client.GetFilmTrailers(t.Context(), "326")
	require.NoError(t, err)
	assert.Equal(t, before, requestCount.Load())
}

// TestGetFilmTrailers_Dev tests the dev backend's embedded-videos flow,
// including the trailer type filter.
func TestGetFilmTrailers_Dev(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1.4/movie/435", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":435,"name":"Зелёная миля","alternativeName":"The Green Mile",` +
			`"year":1999,"videos":{"trailers":[` +
			`{"url":"https://www.youtube.com/watch?v=ghi","name":"Trailer","site":"youtube","type":"TRAILER"},` +
			`{"url":"https://www.youtube.com/watch?v=jkl","name":"Behind the scenes","site":"youtube","type":"VIDEO"}]}}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, config.APIFlavorDev, server)

	trailers, err := client.GetFilmTrailers(t.Context(), "435")
	require.NoError(t, err)
	require.Len(t, trailers, 1)

	assert.Equal(t, "Зелёная миля", trailers[0].FilmName)
	assert.Equal(t, "Trailer", trailers[0].Name)
	assert.Equal(t, 1999, trailers[0].Year)
}

// TestGetFilm_RateLimitRetry tests the single blind retry on a 429 response.
func TestGetFilm_RateLimitRetry(t *testing.T) {
	t.Parallel()

	var requestCount atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2.2/films/326", func(w http.ResponseWriter, _ *http.Request) {
		if requestCount.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		_, _ = w.Write([]byte(`{"kinopoiskId":326,"nameRu":"Побег из Шоушенка","year":1994}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, config.APIFlavorUnofficial, server)

	film, err := client.GetFilm(t.Context(), "326")
	require.NoError(t, err)

	assert.Equal(t, "Побег из Шоушенка", film.NameRu)
	assert.EqualValues(t, 2, requestCount.Load())
}

// TestGetFilm_ErrorStatus tests that non-retryable error statuses surface as errors.
func TestGetFilm_ErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, config.APIFlavorUnofficial, server)

	_, err := client.GetFilm(t.Context(), "999999")
	require.ErrorIs(t, err, ErrUnexpectedHTTPStatus)
}

// TestFilm_DisplayName tests the Russian-title preference.
func TestFilm_DisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		film     *Film
		expected string
	}{
		{
			name:     "russian title preferred",
			film:     &Film{NameRu: "Начало", NameOriginal: "Inception"},
			expected: "Начало",
		},
		{
			name:     "original title fallback",
			film:     &Film{NameOriginal: "Inception"},
			expected: "Inception",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.film.DisplayName())
		})
	}
}
