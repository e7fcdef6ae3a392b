package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/subtitools/internal/ffmpeg"
)

// container extensions that may carry subtitle streams, sorted
var containerExts = []string{"avi", "m4v", "mkv", "mov", "mp4", "ts", "webm"}

// defines interface for video processing operations
type Processor interface {
	// writes one embedded subtitle stream to outputPath as SubRip
	ExtractSubtitles(
		ctx context.Context,
		videoPath, outputPath string,
		opts ExtractSubtitleOptions,
	) error
}

// holds options for subtitle extraction
type ExtractSubtitleOptions struct {
	Stream int // Index among the file's subtitle streams (0 = first)
}

// default implementation using ffmpeg
type DefaultProcessor struct {
	ffmpegPath string
}

// NewProcessor uses ffmpegPath, or the located ffmpeg binary when empty.
func NewProcessor(ffmpegPath string) *DefaultProcessor {
	return &DefaultProcessor{
		ffmpegPath: ffmpegPath,
	}
}

// extracts a subtitle stream from a video file
func (p *DefaultProcessor) ExtractSubtitles(
	ctx context.Context,
	videoPath, outputPath string,
	opts ExtractSubtitleOptions,
) error {
	if _, err := os.Stat(videoPath); err != nil {
		return err
	}
	if opts.Stream < 0 {
		return fmt.Errorf("invalid subtitle stream index %d", opts.Stream)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath := p.ffmpegPath
	if ffmpegPath == "" {
		located, err := ffmpegbin.FFmpegPath()
		if err != nil {
			return err
		}
		ffmpegPath = located
	}

	kwargs := ffmpeg.KwArgs{
		"map": fmt.Sprintf("0:s:%d", opts.Stream), // Subtitle stream only
		"c:s": "srt",                              // Re-encode as SubRip
	}

	err := ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()

	if err != nil {
		return fmt.Errorf("ffmpeg subtitle extraction failed: %w", err)
	}

	return nil
}

// container extensions without the leading dot
func Extensions() []string {
	return append([]string(nil), containerExts...)
}
