package trailer

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/oshokin/kinopoisk-trailer-grabber/internal/client/kinopoisk"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/config"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/constants"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/hls"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/logger"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/utils"
)

// Service downloads trailers for Kinopoisk films into the destination folder.
type Service interface {
	// DownloadFilmTrailers fetches trailer references for each film and runs
	// the acquisition pipeline for every valid one.
	DownloadFilmTrailers(ctx context.Context, filmInputs []string)
	// DownloadTrailer runs the acquisition pipeline for one trailer reference
	// and returns the final file path, or "" on failure or intentional skip.
	DownloadTrailer(ctx context.Context, ref *TrailerReference) (string, error)
	// PrintDownloadSummary logs the session's accumulated statistics.
	PrintDownloadSummary(ctx context.Context)
}

// ServiceImpl implements Service. All collaborators are injected once at
// construction; the struct holds no other mutable state besides the
// mutex-guarded statistics.
type ServiceImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// kinopoiskClient fetches film and trailer metadata.
	kinopoiskClient kinopoisk.Client
	// httpClient performs playlist, page and segment fetches.
	httpClient *http.Client
	// resolver turns video identifiers into stream sources.
	resolver Resolver
	// transcoder merges downloaded media parts.
	transcoder Transcoder
	// stats accumulates session statistics.
	stats *DownloadStatistics
	// statsMutex guards stats.
	statsMutex sync.Mutex
}

// filmIDPattern extracts the numeric film identifier from a Kinopoisk film URL.
//
//nolint:gochecknoglobals // Immutable compiled pattern.
var filmIDPattern = regexp.MustCompile(`film/(?P<id>\d+)`)

// digitsOnlyPattern matches inputs that are already bare film identifiers.
//
//nolint:gochecknoglobals // Immutable compiled pattern.
var digitsOnlyPattern = regexp.MustCompile(`^\d+$`)

// NewService creates the trailer download service with its collaborators.
func NewService(
	cfg *config.Config,
	kinopoiskClient kinopoisk.Client,
	httpClient *http.Client,
	resolver Resolver,
	transcoder Transcoder,
) Service {
	return &ServiceImpl{
		cfg:             cfg,
		kinopoiskClient: kinopoiskClient,
		httpClient:      httpClient,
		resolver:        resolver,
		transcoder:      transcoder,
		stats:           new(DownloadStatistics),
	}
}

// DownloadFilmTrailers fetches trailer references for each film input
// (a Kinopoisk film URL or a bare numeric id) and downloads every valid
// trailer, one at a time. A failure inside one film or trailer never stops
// the rest of the batch; only cancellation does.
func (s *ServiceImpl) DownloadFilmTrailers(ctx context.Context, filmInputs []string) {
	s.markStarted()
	defer s.markFinished()

	for _, filmInput := range filmInputs {
		if ctx.Err() != nil {
			logger.Info(ctx, "Download cancelled")

			return
		}

		filmID := filmIDFromInput(filmInput)
		if filmID == "" {
			logger.Errorf(ctx, "'%s' is not a film URL or numeric film ID, skipping", filmInput)

			continue
		}

		references, err := s.collectTrailerReferences(ctx, filmID)
		if err != nil {
			logger.Errorf(ctx, "Failed to fetch trailers of film %s: %v", filmID, err)

			continue
		}

		if len(references) == 0 {
			logger.Infof(ctx, "Film %s has no trailers", filmID)

			continue
		}

		s.downloadTrailers(ctx, references)
	}
}

// collectTrailerReferences fetches the film's trailer list and normalizes it
// into pipeline references.
func (s *ServiceImpl) collectTrailerReferences(ctx context.Context, filmID string) ([]*TrailerReference, error) {
	trailers, err := s.kinopoiskClient.GetFilmTrailers(ctx, filmID)
	if err != nil {
		return nil, err
	}

	return utils.Map(trailers, NewTrailerReference), nil
}

// downloadTrailers runs the pipeline for each reference in order, pausing a
// random interval before each attempt to avoid tripping upstream
// bulk-download detection.
func (s *ServiceImpl) downloadTrailers(ctx context.Context, references []*TrailerReference) {
	for _, reference := range references {
		if ctx.Err() != nil {
			logger.Info(ctx, "Download cancelled")

			return
		}

		if !reference.IsValid() {
			logger.Infof(ctx, "Skipping '%s': not a trailer", reference.TrailerName)
			s.recordOutcome(DownloadOutcomeSkipped, SkipReasonInvalid)

			continue
		}

		utils.RandomPause(s.cfg.ParsedMinDownloadPause, s.cfg.ParsedMaxDownloadPause)

		outputPath, err := s.DownloadTrailer(ctx, reference)
		if err != nil {
			logger.Errorf(ctx, "Failed to download trailer '%s': %v", reference.TrailerName, err)

			continue
		}

		if outputPath != "" {
			logger.Infof(ctx, "Trailer saved to '%s'", outputPath)
		}
	}
}

// DownloadTrailer runs the full acquisition pipeline for one reference and
// records its terminal state in the statistics. The returned path is empty
// both on failure and on intentional skip; in the skip case the marker file
// in the destination folder tells the two apart.
func (s *ServiceImpl) DownloadTrailer(ctx context.Context, ref *TrailerReference) (string, error) {
	outputPath, outcome, reason, err := s.downloadTrailer(ctx, ref)
	s.recordOutcome(outcome, reason)

	return outputPath, err
}

// downloadTrailer is the per-trailer state machine: short-circuit on existing
// output or marker, resolve the source, acquire the media through the
// playlist or direct-link path, and land the result under its deterministic
// name. The temp working directory is removed on every exit path.
func (s *ServiceImpl) downloadTrailer(
	ctx context.Context,
	ref *TrailerReference,
) (string, DownloadOutcome, SkipReason, error) {
	if err := os.MkdirAll(s.cfg.OutputPath, constants.DefaultFolderPermissions); err != nil {
		return "", DownloadOutcomeFailed, 0, fmt.Errorf("failed to create output folder: %w", err)
	}

	outputPath := filepath.Join(s.cfg.OutputPath,
		GetOutputName(ref.FilmName, ref.TrailerName, ref.Year, ref.SourceID, constants.ExtensionMP4))

	if exists, _ := utils.IsFileExist(outputPath); exists {
		logger.Infof(ctx, "Trailer '%s' already exists, skipping", filepath.Base(outputPath))

		return "", DownloadOutcomeSkipped, SkipReasonExists, nil
	}

	markerPath := filepath.Join(s.cfg.OutputPath, GetMarkerName(ref.SourceID))
	if exists, _ := utils.IsFileExist(markerPath); exists {
		logger.Infof(ctx, "Trailer '%s' is known to be gone upstream, skipping", ref.TrailerName)

		return "", DownloadOutcomeSkipped, SkipReasonGone, nil
	}

	workDir := filepath.Join(os.TempDir(), "trailer_"+uuid.NewString())
	if err := os.MkdirAll(workDir, constants.DefaultFolderPermissions); err != nil {
		return "", DownloadOutcomeFailed, 0, fmt.Errorf("failed to create working folder: %w", err)
	}

	// The working directory goes away on every exit path,
	// taking any partial segment set with it.
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warnf(ctx, "Failed to remove working folder '%s': %v", workDir, err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return "", DownloadOutcomeFailed, 0, err
	}

	logger.Infof(ctx, "Resolving trailer '%s' (video %s)", ref.TrailerName, ref.SourceID)

	resolution, err := s.resolver.Resolve(ctx, ref.SourceID, s.cfg.Quality)
	if err != nil {
		return "", DownloadOutcomeFailed, 0, fmt.Errorf("%w: %w", ErrResolutionFailed, err)
	}

	switch resolution.Status {
	case ResolutionStatusFound:
	case ResolutionStatusGone:
		if err = s.writeGoneMarker(ctx, markerPath); err != nil {
			return "", DownloadOutcomeFailed, 0, err
		}

		return "", DownloadOutcomeSkipped, SkipReasonGone, nil
	case ResolutionStatusNotFound:
		return "", DownloadOutcomeFailed, 0, ErrNoStreamsResolved
	case ResolutionStatusTransient:
		return "", DownloadOutcomeFailed, 0, fmt.Errorf("%w: temporary upstream failure", ErrResolutionFailed)
	default:
		return "", DownloadOutcomeFailed, 0, fmt.Errorf("%w: unexpected status %s", ErrResolutionFailed, resolution.Status)
	}

	var mergedPath string

	switch resolution.Kind {
	case ResolutionKindPlaylist:
		mergedPath, err = s.acquireFromPlaylist(ctx, resolution.URL, workDir)
	case ResolutionKindDirectLink:
		mergedPath, err = s.acquireDirectLink(ctx, resolution.URL, workDir)
	}

	if err != nil {
		return "", DownloadOutcomeFailed, 0, err
	}

	if err = ctx.Err(); err != nil {
		return "", DownloadOutcomeFailed, 0, err
	}

	if err = moveFile(mergedPath, outputPath); err != nil {
		return "", DownloadOutcomeFailed, 0, fmt.Errorf("failed to move trailer into destination: %w", err)
	}

	return outputPath, DownloadOutcomeDone, 0, nil
}

// writeGoneMarker records a zero-byte marker so later runs skip this trailer
// without touching the network.
func (s *ServiceImpl) writeGoneMarker(ctx context.Context, markerPath string) error {
	logger.Infof(ctx, "Video is gone upstream, writing marker '%s'", filepath.Base(markerPath))

	if err := os.WriteFile(markerPath, nil, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write marker file: %w", err)
	}

	return nil
}

// acquireDirectLink downloads a fully-resolved file straight into the working
// directory.
func (s *ServiceImpl) acquireDirectLink(ctx context.Context, sourceURL, workDir string) (string, error) {
	destinationPath := filepath.Join(workDir, "trailer"+constants.ExtensionMP4)

	written, err := s.downloadToFile(ctx, sourceURL, destinationPath)
	if err != nil {
		return "", err
	}

	s.addBytesDownloaded(written)

	return destinationPath, nil
}

// acquireFromPlaylist runs the HLS path: parse the master playlist, build the
// video part from the best working stream, build the audio part from the
// stream's audio group when it has one, then mux the parts together.
func (s *ServiceImpl) acquireFromPlaylist(ctx context.Context, masterURL, workDir string) (string, error) {
	masterContent, err := s.fetchTextContent(ctx, masterURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch master playlist: %w", err)
	}

	streams, mediaVariants, err := hls.ParseMasterPlaylist(masterURL, masterContent, s.cfg.Quality)
	if err != nil {
		return "", fmt.Errorf("failed to parse master playlist: %w", err)
	}

	if len(streams) == 0 {
		return "", ErrNoStreamsResolved
	}

	sortStreamsBestFirst(streams)

	videoPath, audioGroup, err := s.prepareVideoPart(ctx, streams, workDir)
	if err != nil {
		return "", err
	}

	audioPath, err := s.prepareAudioPart(ctx, mediaVariants, audioGroup, workDir)
	if err != nil {
		return "", err
	}

	mergedPath := filepath.Join(workDir, "merged"+constants.ExtensionMP4)
	if err = s.transcoder.MergeAudioVideo(ctx, audioPath, videoPath, mergedPath); err != nil {
		return "", err
	}

	return mergedPath, nil
}

// prepareVideoPart tries candidate streams best-first until one yields a
// non-empty merged video file, and reports which audio group that stream
// references. Each candidate's playlist goes through the duration gate, so
// teaser-length and feature-length entries are rejected here.
func (s *ServiceImpl) prepareVideoPart(
	ctx context.Context,
	streams []hls.StreamVariant,
	workDir string,
) (videoPath, audioGroup string, err error) {
	for i, stream := range streams {
		if err = ctx.Err(); err != nil {
			return "", "", err
		}

		partPath := filepath.Join(workDir, fmt.Sprintf("video_%d%s", i, constants.ExtensionTS))

		if !s.buildPartFromPlaylist(ctx, stream.URL, partPath) {
			logger.Warnf(ctx, "Stream %dx%d (%d bps) failed, trying next candidate",
				stream.Width, stream.Height, stream.Bandwidth)

			continue
		}

		return partPath, stream.AudioGroup, nil
	}

	return "", "", ErrAllStreamsFailed
}

// prepareAudioPart builds the audio part for the chosen stream's audio group,
// default variants first. An empty group means the stream carries muxed
// audio, so there is nothing to do.
func (s *ServiceImpl) prepareAudioPart(
	ctx context.Context,
	mediaVariants []hls.MediaVariant,
	audioGroup string,
	workDir string,
) (string, error) {
	if audioGroup == "" {
		return "", nil
	}

	candidates := audioCandidates(mediaVariants, audioGroup)
	if len(candidates) == 0 {
		return "", nil
	}

	for i, variant := range candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		partPath := filepath.Join(workDir, fmt.Sprintf("audio_%d%s", i, constants.ExtensionTS))

		if !s.buildPartFromPlaylist(ctx, variant.URL, partPath) {
			logger.Warnf(ctx, "Audio variant '%s' (%s) failed, trying next candidate", variant.Name, variant.Language)

			continue
		}

		return partPath, nil
	}

	return "", ErrAllStreamsFailed
}

// buildPartFromPlaylist fetches one media playlist, downloads its segments
// and concatenates them into partPath. Any failure just reports false so the
// caller can move to the next candidate.
func (s *ServiceImpl) buildPartFromPlaylist(ctx context.Context, playlistURL, partPath string) bool {
	content, err := s.fetchTextContent(ctx, playlistURL)
	if err != nil {
		logger.Warnf(ctx, "Failed to fetch media playlist '%s': %v", playlistURL, err)

		return false
	}

	segmentURLs := hls.ParseMediaPlaylist(content, s.cfg.ParsedMaxTrailerDuration)
	if len(segmentURLs) == 0 {
		logger.Debugf(ctx, "Media playlist '%s' rejected: no segments within the duration bounds", playlistURL)

		return false
	}

	for i, segmentURL := range segmentURLs {
		segmentURLs[i] = resolveSegmentURL(playlistURL, segmentURL)
	}

	segmentPaths, err := s.fetchSegments(ctx, segmentURLs, filepath.Dir(partPath))
	if err != nil {
		logger.Warnf(ctx, "Segment batch for '%s' failed: %v", playlistURL, err)

		return false
	}

	if err = s.transcoder.MergeSegments(ctx, segmentPaths, partPath); err != nil {
		logger.Warnf(ctx, "Failed to concatenate segments of '%s': %v", playlistURL, err)

		return false
	}

	info, err := os.Stat(partPath)

	return err == nil && info.Size() > 0
}

// sortStreamsBestFirst orders streams by height, then bandwidth, descending.
func sortStreamsBestFirst(streams []hls.StreamVariant) {
	slices.SortFunc(streams, func(a, b hls.StreamVariant) int {
		if c := cmp.Compare(b.Height, a.Height); c != 0 {
			return c
		}

		return cmp.Compare(b.Bandwidth, a.Bandwidth)
	})
}

// audioCandidates picks the audio variants of one group, default tracks first.
func audioCandidates(mediaVariants []hls.MediaVariant, audioGroup string) []hls.MediaVariant {
	candidates := make([]hls.MediaVariant, 0, len(mediaVariants))

	for _, variant := range mediaVariants {
		if variant.Type == "AUDIO" && variant.GroupID == audioGroup && variant.URL != "" {
			candidates = append(candidates, variant)
		}
	}

	slices.SortStableFunc(candidates, func(a, b hls.MediaVariant) int {
		switch {
		case a.IsDefault == b.IsDefault:
			return 0
		case a.IsDefault:
			return -1
		default:
			return 1
		}
	})

	return candidates
}

// resolveSegmentURL makes a playlist's segment line absolute against the
// playlist's own URL. Already-absolute lines pass through untouched.
func resolveSegmentURL(playlistURL, segmentLine string) string {
	if strings.Contains(segmentLine, "://") {
		return segmentLine
	}

	base, err := url.Parse(playlistURL)
	if err != nil {
		return segmentLine
	}

	reference, err := url.Parse(segmentLine)
	if err != nil {
		return segmentLine
	}

	return base.ResolveReference(reference).String()
}

// filmIDFromInput accepts a Kinopoisk film URL or a bare numeric identifier
// and returns the numeric identifier, or "" when neither matches.
func filmIDFromInput(filmInput string) string {
	filmInput = strings.TrimSpace(filmInput)

	if digitsOnlyPattern.MatchString(filmInput) {
		return filmInput
	}

	return utils.ExtractNamedGroup(filmIDPattern, "id", filmInput)
}
