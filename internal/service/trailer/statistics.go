package trailer

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/kinopoisk-trailer-grabber/internal/logger"
)

// recordOutcome updates the counters for one finished trailer.
func (s *ServiceImpl) recordOutcome(outcome DownloadOutcome, reason SkipReason) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.TotalTrailersProcessed++

	switch outcome {
	case DownloadOutcomeDone:
		s.stats.TrailersDownloaded++
	case DownloadOutcomeFailed:
		s.stats.TrailersFailed++
	case DownloadOutcomeSkipped:
		s.stats.TrailersSkipped++

		switch reason {
		case SkipReasonExists:
			s.stats.TrailersSkippedExists++
		case SkipReasonGone:
			s.stats.TrailersSkippedGone++
		case SkipReasonInvalid:
			s.stats.TrailersSkippedInvalid++
		}
	case DownloadOutcomeUnknown:
	}
}

// addBytesDownloaded accumulates the size of fetched payloads.
func (s *ServiceImpl) addBytesDownloaded(count int64) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.TotalBytesDownloaded += count
}

// markStarted records the moment the batch began.
func (s *ServiceImpl) markStarted() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.StartTime = time.Now()
}

// markFinished records the moment the batch ended.
func (s *ServiceImpl) markFinished() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.EndTime = time.Now()
}

// PrintDownloadSummary logs the totals accumulated during the batch.
func (s *ServiceImpl) PrintDownloadSummary(ctx context.Context) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	elapsed := s.stats.EndTime.Sub(s.stats.StartTime)
	if s.stats.EndTime.IsZero() {
		elapsed = time.Since(s.stats.StartTime)
	}

	logger.Info(ctx, "Download summary:")
	logger.Infof(ctx, "  Trailers processed: %d", s.stats.TotalTrailersProcessed)
	logger.Infof(ctx, "  Downloaded: %d", s.stats.TrailersDownloaded)
	logger.Infof(ctx, "  Failed: %d", s.stats.TrailersFailed)
	logger.Infof(ctx, "  Skipped: %d (existing: %d, gone upstream: %d, not a trailer: %d)",
		s.stats.TrailersSkipped,
		s.stats.TrailersSkippedExists,
		s.stats.TrailersSkippedGone,
		s.stats.TrailersSkippedInvalid)
	logger.Infof(ctx, "  Total downloaded: %s", humanize.Bytes(uint64(max(s.stats.TotalBytesDownloaded, 0))))
	logger.Infof(ctx, "  Elapsed time: %s", formatDuration(elapsed))
}

// formatDuration renders a duration as hours, minutes and seconds,
// dropping leading components that are zero.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	hours := d / time.Hour
	d -= hours * time.Hour

	minutes := d / time.Minute
	d -= minutes * time.Minute

	seconds := d / time.Second

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
