package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/mgpai22/subtitools/internal/charset"
	"github.com/mgpai22/subtitools/internal/subtitle"
	"github.com/mgpai22/subtitools/internal/video"
)

// mediaConverter pulls a text subtitle stream out of a video container with
// ffmpeg and reads it back as SubRip.
type mediaConverter struct {
	processor video.Processor
}

func newMediaConverter() Converter {
	return &mediaConverter{processor: video.NewProcessor("")}
}

func (c *mediaConverter) Name() string { return "media" }

func (c *mediaConverter) Extensions() []string { return video.Extensions() }

func (c *mediaConverter) Convert(path string, opts Options) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &subtitle.IOError{Op: "open", Path: path, Err: err}
	}

	tempDir, err := os.MkdirTemp("", "subtitools-media-*")
	if err != nil {
		return nil, &subtitle.IOError{Op: "create temp dir for", Path: path, Err: err}
	}
	defer os.RemoveAll(tempDir)

	srtPath := filepath.Join(tempDir, "stream.srt")
	err = c.processor.ExtractSubtitles(
		context.Background(),
		path,
		srtPath,
		video.ExtractSubtitleOptions{Stream: opts.Stream},
	)
	if err != nil {
		return nil, &subtitle.ConversionError{
			File: path, Format: "media", Msg: "extract subtitle stream", Err: err,
		}
	}

	data, err := subtitle.ReadFile(srtPath)
	if err != nil {
		return nil, err
	}
	// ffmpeg always writes UTF-8
	text, err := charset.Decode(data, "utf-8")
	if err != nil {
		return nil, &subtitle.IOError{Op: "decode", Path: path, Err: err}
	}

	track, parseErrs := subtitle.ParseSRTLenient(text)
	errs := make([]error, 0, len(parseErrs))
	for _, pe := range parseErrs {
		ce := &subtitle.ConversionError{File: path, Format: "media", Err: pe}
		var perr *subtitle.ParseError
		if errors.As(pe, &perr) {
			ce.Cue = perr.Block
			ce.Line = perr.Line
			ce.Err = errors.New(perr.Msg)
		}
		errs = append(errs, ce)
	}

	return finish(track.Cues, errs), nil
}
