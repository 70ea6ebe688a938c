package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// validConfig returns a minimal configuration that passes validation.
func validConfig() *Config {
	return &Config{
		APIKey:     "test-key",
		OutputPath: "trailers",
	}
}

// TestParseAPIFlavor tests the closed API flavor enum parsing.
func TestParseAPIFlavor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected APIFlavor
	}{
		{
			name:     "unofficial",
			input:    "unofficial",
			expected: APIFlavorUnofficial,
		},
		{
			name:     "empty defaults to unofficial",
			input:    "",
			expected: APIFlavorUnofficial,
		},
		{
			name:     "dev",
			input:    "dev",
			expected: APIFlavorDev,
		},
		{
			name:     "case and whitespace tolerated",
			input:    "  Dev  ",
			expected: APIFlavorDev,
		},
		{
			name:     "unrecognized",
			input:    "official",
			expected: APIFlavorUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, ParseAPIFlavor(tt.input))
		})
	}
}

// TestParseResolverKind tests the closed resolver strategy enum parsing.
func TestParseResolverKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected ResolverKind
	}{
		{
			name:     "page",
			input:    "page",
			expected: ResolverKindPage,
		},
		{
			name:     "empty defaults to page",
			input:    "",
			expected: ResolverKindPage,
		},
		{
			name:     "convert",
			input:    "convert",
			expected: ResolverKindConvert,
		},
		{
			name:     "unrecognized",
			input:    "browser",
			expected: ResolverKindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, ParseResolverKind(tt.input))
		})
	}
}

// TestValidateConfig_Defaults tests that validation fills derived fields with defaults.
func TestValidateConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, APIFlavorUnofficial, cfg.ParsedAPIFlavor)
	assert.Equal(t, ResolverKindPage, cfg.ParsedResolver)
	assert.Equal(t, DefaultQuality, cfg.Quality)
	assert.Equal(t, DefaultFFmpegPath, cfg.FFmpegPath)
	assert.Equal(t, "logs", cfg.LogPath)
	assert.Equal(t, DefaultMinDownloadPause, cfg.ParsedMinDownloadPause)
	assert.Equal(t, DefaultMaxDownloadPause, cfg.ParsedMaxDownloadPause)
	assert.Equal(t, DefaultNetworkTimeout, cfg.ParsedNetworkTimeout)
	assert.Equal(t, DefaultTranscoderTimeout, cfg.ParsedTranscoderTimeout)
	assert.Equal(t, zapcore.InfoLevel, cfg.ParsedLogLevel)

	// No duration gate unless configured.
	assert.Zero(t, cfg.ParsedMaxTrailerDuration)
}

// TestValidateConfig_ParsesDurations tests explicit duration settings.
func TestValidateConfig_ParsesDurations(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.MaxTrailerDuration = "5m"
	cfg.MinDownloadPause = "1s"
	cfg.MaxDownloadPause = "2s"
	cfg.NetworkTimeout = "30s"
	cfg.TranscoderTimeout = "10m"

	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, 5*time.Minute, cfg.ParsedMaxTrailerDuration)
	assert.Equal(t, time.Second, cfg.ParsedMinDownloadPause)
	assert.Equal(t, 2*time.Second, cfg.ParsedMaxDownloadPause)
	assert.Equal(t, 30*time.Second, cfg.ParsedNetworkTimeout)
	assert.Equal(t, 10*time.Minute, cfg.ParsedTranscoderTimeout)
}

// TestValidateConfig_Errors tests the rejection paths.
func TestValidateConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(cfg *Config)
		expectedErr error
	}{
		{
			name:        "missing api key",
			mutate:      func(cfg *Config) { cfg.APIKey = "  " },
			expectedErr: ErrEmptyAPIKey,
		},
		{
			name:        "unknown api flavor",
			mutate:      func(cfg *Config) { cfg.APIFlavor = "official" },
			expectedErr: ErrUnknownAPIFlavor,
		},
		{
			name:        "unknown resolver",
			mutate:      func(cfg *Config) { cfg.Resolver = "browser" },
			expectedErr: ErrUnknownResolver,
		},
		{
			name:        "negative quality",
			mutate:      func(cfg *Config) { cfg.Quality = -1 },
			expectedErr: ErrInvalidQuality,
		},
		{
			name:        "missing output path",
			mutate:      func(cfg *Config) { cfg.OutputPath = "" },
			expectedErr: ErrEmptyOutputPath,
		},
		{
			name:        "negative trailer duration",
			mutate:      func(cfg *Config) { cfg.MaxTrailerDuration = "-5m" },
			expectedErr: ErrInvalidMaxTrailerDuration,
		},
		{
			name: "max pause below min pause",
			mutate: func(cfg *Config) {
				cfg.MinDownloadPause = "10s"
				cfg.MaxDownloadPause = "5s"
			},
			expectedErr: ErrMaxPauseBelowMinPause,
		},
		{
			name:        "unknown log level",
			mutate:      func(cfg *Config) { cfg.LogLevel = "loud" },
			expectedErr: ErrUnknownLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			require.ErrorIs(t, ValidateConfig(cfg), tt.expectedErr)
		})
	}
}
