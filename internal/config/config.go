package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/kinopoisk-trailer-grabber/internal/constants"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/logger"
)

// APIFlavor identifies which of the two alternative Kinopoisk REST APIs to use.
// The flavor is resolved once during validation; unknown strings fail fast
// instead of surfacing as a runtime lookup error later.
type APIFlavor uint8

const (
	// APIFlavorUnknown - unrecognized flavor.
	APIFlavorUnknown APIFlavor = iota
	// APIFlavorUnofficial - kinopoiskapiunofficial.tech.
	APIFlavorUnofficial
	// APIFlavorDev - api.kinopoisk.dev.
	APIFlavorDev
)

// String returns a human-readable representation of the APIFlavor.
func (f APIFlavor) String() string {
	switch f {
	case APIFlavorUnofficial:
		return "unofficial"
	case APIFlavorDev:
		return "dev"
	default:
		return fmt.Sprintf("unknown: %d", f)
	}
}

// ResolverKind identifies the trailer source resolution strategy.
type ResolverKind uint8

const (
	// ResolverKindUnknown - unrecognized resolver.
	ResolverKindUnknown ResolverKind = iota
	// ResolverKindPage - scrape the stream URL from the trailer host's player page.
	ResolverKindPage
	// ResolverKindConvert - resolve a direct link through a conversion service.
	ResolverKindConvert
)

// String returns a human-readable representation of the ResolverKind.
func (k ResolverKind) String() string {
	switch k {
	case ResolverKindPage:
		return "page"
	case ResolverKindConvert:
		return "convert"
	default:
		return fmt.Sprintf("unknown: %d", k)
	}
}

// Config holds all configuration settings.
type Config struct {
	// APIKey is the authentication key for the Kinopoisk API.
	APIKey string `mapstructure:"api_key"`
	// APIFlavor selects the Kinopoisk API backend ("unofficial" or "dev").
	APIFlavor string `mapstructure:"api_flavor"`
	// Resolver selects the trailer source resolution strategy ("page" or "convert").
	Resolver string `mapstructure:"resolver"`
	// Quality is the preferred video height in pixels (e.g., 720, 1080).
	Quality int `mapstructure:"quality"`
	// OutputPath is the directory path where downloaded trailers will be saved.
	OutputPath string `mapstructure:"output_path"`
	// LogPath is the directory where transcoder logs are preserved after failures.
	LogPath string `mapstructure:"log_path"`
	// FFmpegPath is the path to the ffmpeg binary used for merging.
	FFmpegPath string `mapstructure:"ffmpeg_path"`
	// MaxTrailerDuration is the maximum acceptable trailer duration (e.g., "5m").
	// Playlists longer than this are rejected as non-trailers. Empty string disables the gate.
	MaxTrailerDuration string `mapstructure:"max_trailer_duration"`
	// MinDownloadPause is the minimum pause before each trailer download.
	MinDownloadPause string `mapstructure:"min_download_pause"`
	// MaxDownloadPause is the maximum pause before each trailer download.
	MaxDownloadPause string `mapstructure:"max_download_pause"`
	// NetworkTimeout is the timeout for a single network call.
	NetworkTimeout string `mapstructure:"network_timeout"`
	// TranscoderTimeout is the timeout for a single ffmpeg invocation.
	TranscoderTimeout string `mapstructure:"transcoder_timeout"`
	// UserAgent overrides the User-Agent header sent to streaming hosts.
	UserAgent string `mapstructure:"user_agent"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`

	// ParsedAPIFlavor is the API backend resolved from APIFlavor.
	ParsedAPIFlavor APIFlavor
	// ParsedResolver is the strategy resolved from Resolver.
	ParsedResolver ResolverKind
	// ParsedMaxTrailerDuration is the parsed maximum trailer duration (0 = unbounded).
	ParsedMaxTrailerDuration time.Duration
	// ParsedMinDownloadPause is the parsed minimum download pause duration.
	ParsedMinDownloadPause time.Duration
	// ParsedMaxDownloadPause is the parsed maximum download pause duration.
	ParsedMaxDownloadPause time.Duration
	// ParsedNetworkTimeout is the parsed network call timeout.
	ParsedNetworkTimeout time.Duration
	// ParsedTranscoderTimeout is the parsed ffmpeg invocation timeout.
	ParsedTranscoderTimeout time.Duration
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".trailer-grabber.yaml"

	// DefaultMaxLogLength is the default maximum size (in bytes) for log dumps.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB

	// DefaultFFmpegPath is used when no explicit ffmpeg binary path is configured.
	DefaultFFmpegPath = "ffmpeg"

	// DefaultNetworkTimeout is used when no network timeout is configured.
	DefaultNetworkTimeout = 2 * time.Minute

	// DefaultTranscoderTimeout is used when no transcoder timeout is configured.
	DefaultTranscoderTimeout = 6 * time.Minute

	// DefaultMinDownloadPause is the lower bound of the anti-rate-limit jitter.
	DefaultMinDownloadPause = 5 * time.Second

	// DefaultMaxDownloadPause is the upper bound of the anti-rate-limit jitter.
	DefaultMaxDownloadPause = 15 * time.Second

	// DefaultQuality is the preferred video height when none is configured.
	DefaultQuality = 720
)

// Static error definitions for better error handling.
var (
	// ErrEmptyAPIKey indicates that the Kinopoisk API key is missing.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")
	// ErrUnknownAPIFlavor indicates that the API flavor is not recognized.
	ErrUnknownAPIFlavor = errors.New("unknown API flavor")
	// ErrUnknownResolver indicates that the resolver strategy is not recognized.
	ErrUnknownResolver = errors.New("unknown resolver strategy")
	// ErrInvalidQuality indicates that the quality setting is invalid.
	ErrInvalidQuality = errors.New("quality must be a positive height in pixels")
	// ErrInvalidMaxTrailerDuration indicates that the maximum trailer duration is invalid.
	ErrInvalidMaxTrailerDuration = errors.New("max_trailer_duration must be positive")
	// ErrInvalidMinDownloadPause indicates that the minimum download pause is invalid.
	ErrInvalidMinDownloadPause = errors.New("min_download_pause must be positive")
	// ErrInvalidMaxDownloadPause indicates that the maximum download pause is invalid.
	ErrInvalidMaxDownloadPause = errors.New("max_download_pause must be positive")
	// ErrMaxPauseBelowMinPause indicates that max_download_pause is below min_download_pause.
	ErrMaxPauseBelowMinPause = errors.New("max_download_pause cannot be below min_download_pause")
	// ErrInvalidNetworkTimeout indicates that the network timeout is invalid.
	ErrInvalidNetworkTimeout = errors.New("network_timeout must be positive")
	// ErrInvalidTranscoderTimeout indicates that the transcoder timeout is invalid.
	ErrInvalidTranscoderTimeout = errors.New("transcoder_timeout must be positive")
	// ErrEmptyOutputPath indicates that the output path is missing.
	ErrEmptyOutputPath = errors.New("output path cannot be empty")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
)

// LoadConfig loads configuration settings from a YAML file.
func LoadConfig(configFilename string) (*Config, error) {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	viper.SetConfigFile(configFilename)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ParseAPIFlavor maps a configuration string onto the closed APIFlavor enum.
func ParseAPIFlavor(flavor string) APIFlavor {
	switch strings.ToLower(strings.TrimSpace(flavor)) {
	case "unofficial", "":
		// The unofficial API is the default backend.
		return APIFlavorUnofficial
	case "dev":
		return APIFlavorDev
	default:
		return APIFlavorUnknown
	}
}

// ParseResolverKind maps a configuration string onto the closed ResolverKind enum.
func ParseResolverKind(resolver string) ResolverKind {
	switch strings.ToLower(strings.TrimSpace(resolver)) {
	case "page", "":
		// Page scraping is the default strategy.
		return ResolverKindPage
	case "convert":
		return ResolverKindConvert
	default:
		return ResolverKindUnknown
	}
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:funlen,gocognit,cyclop // Validation functions naturally have high complexity and length due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var err error

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return ErrEmptyAPIKey
	}

	cfg.ParsedAPIFlavor = ParseAPIFlavor(cfg.APIFlavor)
	if cfg.ParsedAPIFlavor == APIFlavorUnknown {
		return fmt.Errorf("%w: '%s'", ErrUnknownAPIFlavor, cfg.APIFlavor)
	}

	cfg.ParsedResolver = ParseResolverKind(cfg.Resolver)
	if cfg.ParsedResolver == ResolverKindUnknown {
		return fmt.Errorf("%w: '%s'", ErrUnknownResolver, cfg.Resolver)
	}

	if cfg.Quality == 0 {
		cfg.Quality = DefaultQuality
	}

	if cfg.Quality < 0 {
		return ErrInvalidQuality
	}

	if strings.TrimSpace(cfg.OutputPath) == "" {
		return ErrEmptyOutputPath
	}

	if cfg.LogPath == "" {
		cfg.LogPath = "logs"
	}

	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = DefaultFFmpegPath
	}

	// Parse max_trailer_duration if set (empty string means no duration gate).
	if cfg.MaxTrailerDuration != "" {
		cfg.ParsedMaxTrailerDuration, err = time.ParseDuration(cfg.MaxTrailerDuration)
		if err != nil {
			return fmt.Errorf("failed to parse max trailer duration: %w", err)
		}

		if cfg.ParsedMaxTrailerDuration <= 0 {
			return ErrInvalidMaxTrailerDuration
		}
	}

	cfg.ParsedMinDownloadPause, err = parseDurationOrDefault(cfg.MinDownloadPause, DefaultMinDownloadPause)
	if err != nil {
		return fmt.Errorf("failed to parse min download pause: %w", err)
	}

	if cfg.ParsedMinDownloadPause <= 0 {
		return ErrInvalidMinDownloadPause
	}

	cfg.ParsedMaxDownloadPause, err = parseDurationOrDefault(cfg.MaxDownloadPause, DefaultMaxDownloadPause)
	if err != nil {
		return fmt.Errorf("failed to parse max download pause: %w", err)
	}

	if cfg.ParsedMaxDownloadPause <= 0 {
		return ErrInvalidMaxDownloadPause
	}

	if cfg.ParsedMaxDownloadPause < cfg.ParsedMinDownloadPause {
		return ErrMaxPauseBelowMinPause
	}

	cfg.ParsedNetworkTimeout, err = parseDurationOrDefault(cfg.NetworkTimeout, DefaultNetworkTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse network timeout: %w", err)
	}

	if cfg.ParsedNetworkTimeout <= 0 {
		return ErrInvalidNetworkTimeout
	}

	cfg.ParsedTranscoderTimeout, err = parseDurationOrDefault(cfg.TranscoderTimeout, DefaultTranscoderTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse transcoder timeout: %w", err)
	}

	if cfg.ParsedTranscoderTimeout <= 0 {
		return ErrInvalidTranscoderTimeout
	}

	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !(isLogLevelCorrect) {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	return nil
}

// parseDurationOrDefault parses a duration string, substituting the fallback for empty input.
func parseDurationOrDefault(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}

	return time.ParseDuration(value)
}

// SaveConfig saves the configuration to the file while preserving the original format and order.
func SaveConfig(cfg *Config) error {
	configFile := getConfigFilePath()

	// Read the original file content.
	originalContent, err := os.ReadFile(configFile)
	if err != nil {
		return handleMissingConfigFile(configFile, cfg.APIKey, err)
	}

	// Parse YAML while preserving order using yaml.Node.
	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Update the api_key value in the node tree.
	updateAPIKeyInNode(&node, cfg.APIKey)

	// Marshal back to YAML (preserves order).
	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	// Write the file back with preserved order.
	if err = os.WriteFile(configFile, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigFilePath returns the config file path from viper or the default.
func getConfigFilePath() string {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return DefaultConfigFilename
	}

	return configFile
}

// handleMissingConfigFile creates a new config file if it doesn't exist.
func handleMissingConfigFile(configFile, apiKey string, err error) error {
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// File doesn't exist, create it with viper.
	viper.Set("api_key", apiKey)

	if err = viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// updateAPIKeyInNode updates the api_key value in the YAML node tree.
func updateAPIKeyInNode(node *yaml.Node, apiKey string) {
	// The root node is a document node, content[0] is the actual map.
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return
	}

	mapNode := node.Content[0]

	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i < len(mapNode.Content); i += 2 {
		keyNode := mapNode.Content[i]
		valueNode := mapNode.Content[i+1]

		if keyNode.Value == "api_key" {
			// Update the value while preserving style.
			valueNode.Value = apiKey

			// Ensure it's quoted if it contains special characters.
			if valueNode.Style == 0 {
				valueNode.Style = yaml.DoubleQuotedStyle
			}

			break
		}
	}
}
