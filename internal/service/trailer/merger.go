package trailer

//go:generate $MOCKGEN -source=merger.go -destination=mocks/merger_mock.go

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/oshokin/kinopoisk-trailer-grabber/internal/config"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/constants"
	"github.com/oshokin/kinopoisk-trailer-grabber/internal/logger"
)

// Transcoder merges downloaded media parts through an external tool.
type Transcoder interface {
	// MergeSegments concatenates ordered segment files into one stream file.
	MergeSegments(ctx context.Context, segmentPaths []string, outputPath string) error
	// MergeAudioVideo muxes separate audio and video files into the output container.
	// An empty audioPath means the video part is already complete and is simply
	// moved into place.
	MergeAudioVideo(ctx context.Context, audioPath, videoPath, outputPath string) error
}

// FFmpegTranscoder implements Transcoder by invoking ffmpeg with copied codecs,
// so merging never re-encodes. Every invocation writes its output to a
// uniquely-named log file; logs of failed invocations are moved to the
// persistent log directory before the temp directory is discarded.
type FFmpegTranscoder struct {
	// cfg contains the application configuration.
	cfg *config.Config
}

// NewFFmpegTranscoder creates a transcoder wrapper around the configured ffmpeg binary.
func NewFFmpegTranscoder(cfg *config.Config) Transcoder {
	return &FFmpegTranscoder{cfg: cfg}
}

// MergeSegments concatenates ordered segment files into one stream file using
// ffmpeg's concat demuxer.
func (t *FFmpegTranscoder) MergeSegments(ctx context.Context, segmentPaths []string, outputPath string) error {
	if len(segmentPaths) == 0 {
		return ErrEmptySegmentList
	}

	manifestPath, err := t.writeConcatManifest(segmentPaths, filepath.Dir(outputPath))
	if err != nil {
		return fmt.Errorf("failed to write concat manifest: %w", err)
	}

	return t.run(ctx,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-c", "copy",
		outputPath,
	)
}

// MergeAudioVideo muxes separate audio and video files into the output container.
func (t *FFmpegTranscoder) MergeAudioVideo(ctx context.Context, audioPath, videoPath, outputPath string) error {
	// Muxed and video-only variants carry no separate audio part.
	if audioPath == "" {
		return moveFile(videoPath, outputPath)
	}

	return t.run(ctx,
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v",
		"-map", "1:a",
		"-c", "copy",
		outputPath,
	)
}

// writeConcatManifest writes the concat-demuxer manifest next to the segments:
// one "file '<path>'" line per part, single quotes escaped per the demuxer's
// quoting rules.
func (t *FFmpegTranscoder) writeConcatManifest(segmentPaths []string, workDir string) (string, error) {
	var builder strings.Builder

	for _, segmentPath := range segmentPaths {
		escaped := strings.ReplaceAll(segmentPath, "'", `'\''`)
		builder.WriteString("file '" + escaped + "'\n")
	}

	manifestPath := filepath.Join(workDir, "concat_"+uuid.NewString()+".txt")

	err := os.WriteFile(manifestPath, []byte(builder.String()), constants.DefaultFilePermissions)
	if err != nil {
		return "", err
	}

	return manifestPath, nil
}

// run executes one ffmpeg invocation with the configured timeout.
// Output goes to a uniquely-named log file beside the invocation's output;
// on failure the log is preserved in the persistent log directory so the
// failure stays diagnosable after the temp directory is deleted.
func (t *FFmpegTranscoder) run(ctx context.Context, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.ParsedTranscoderTimeout)
	defer cancel()

	logPath := filepath.Join(os.TempDir(), "ffmpeg_"+uuid.NewString()+constants.ExtensionLog)

	logFile, err := os.OpenFile(filepath.Clean(logPath),
		os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to create transcoder log file: %w", err)
	}

	logger.Debugf(ctx, "Running transcoder: %s %s", t.cfg.FFmpegPath, strings.Join(args, " "))

	command := exec.CommandContext(ctx, t.cfg.FFmpegPath, args...)
	command.Stdout = logFile
	command.Stderr = logFile

	runErr := command.Run()

	//nolint:errcheck // Error on close is not critical here.
	logFile.Close()

	if runErr != nil {
		t.preserveLog(ctx, logPath)

		return fmt.Errorf("%w: %w", ErrTranscoderFailed, runErr)
	}

	//nolint:errcheck // Successful invocations don't need their logs kept.
	os.Remove(logPath)

	return nil
}

// preserveLog moves a failed invocation's log file into the persistent log directory.
func (t *FFmpegTranscoder) preserveLog(ctx context.Context, logPath string) {
	if err := os.MkdirAll(t.cfg.LogPath, constants.DefaultFolderPermissions); err != nil {
		logger.Warnf(ctx, "Failed to create transcoder log directory: %v", err)

		return
	}

	preservedPath := filepath.Join(t.cfg.LogPath, filepath.Base(logPath))
	if err := moveFile(logPath, preservedPath); err != nil {
		logger.Warnf(ctx, "Failed to preserve transcoder log '%s': %v", logPath, err)

		return
	}

	logger.Infof(ctx, "Transcoder log preserved at '%s'", preservedPath)
}

// moveFile renames a file, falling back to copy-and-delete when the source and
// destination live on different filesystems (temp directories often do).
func moveFile(sourcePath, destinationPath string) error {
	if err := os.Rename(sourcePath, destinationPath); err == nil {
		return nil
	}

	source, err := os.Open(filepath.Clean(sourcePath))
	if err != nil {
		return err
	}

	defer source.Close()

	destination, err := os.OpenFile(filepath.Clean(destinationPath),
		os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.DefaultFilePermissions)
	if err != nil {
		return err
	}

	defer destination.Close()

	if _, err = io.Copy(destination, source); err != nil {
		return err
	}

	return os.Remove(sourcePath)
}
