package cli

import (
	"github.com/mgpai22/subtitools/internal/subtitle"
	"github.com/spf13/cobra"
)

var shiftCmd = &cobra.Command{
	Use:   "shift [srt_file]",
	Short: "Move every timecode of a SubRip file by a fixed offset",
	Long: `Shift all start and end times of a SubRip (.srt) file.

The offset components add up and may be negative. Times that would fall
before zero are clamped to 00:00:00,000. Without --output the input file
is rewritten in place; use "-o -" to print the result.

Examples:
  subtitools shift movie.srt --seconds 2
  subtitools shift movie.srt --minutes -1 --milliseconds -250 -o fixed.srt
  subtitools shift movie.srt -s -90 -o -`,
	Args: cobra.ExactArgs(1),
	RunE: runShift,
}

func init() {
	rootCmd.AddCommand(shiftCmd)

	shiftCmd.Flags().
		StringP("output", "o", "", "Output file path (default: overwrite input)")
	shiftCmd.Flags().
		Int64("hours", 0, "Hours to shift by")
	shiftCmd.Flags().
		Int64P("minutes", "m", 0, "Minutes to shift by")
	shiftCmd.Flags().
		Int64P("seconds", "s", 0, "Seconds to shift by")
	shiftCmd.Flags().
		Int64("milliseconds", 0, "Milliseconds to shift by")
}

func runShift(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	hours, _ := cmd.Flags().GetInt64("hours")
	minutes, _ := cmd.Flags().GetInt64("minutes")
	seconds, _ := cmd.Flags().GetInt64("seconds")
	millis, _ := cmd.Flags().GetInt64("milliseconds")
	outputPath, _ := cmd.Flags().GetString("output")
	encoding, _ := cmd.Flags().GetString("encoding")
	skipInvalid, _ := cmd.Flags().GetBool("skip-invalid")

	delta, err := subtitle.Offset{
		Hours:        hours,
		Minutes:      minutes,
		Seconds:      seconds,
		Milliseconds: millis,
	}.Millis()
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = inputPath
	}

	track, err := loadTrack(inputPath, encoding, skipInvalid)
	if err != nil {
		return err
	}

	logger.Infow("Shifting subtitles",
		"input", inputPath,
		"output", outputPath,
		"cues", track.Len(),
		"offset_ms", delta,
	)

	shifted, err := subtitle.Shift(track, delta)
	if err != nil {
		return subtitle.WithFile(err, inputPath)
	}

	if err := subtitle.WriteFile(shifted, outputPath); err != nil {
		return err
	}

	logger.Debugw("Wrote shifted track", "output", outputPath)
	return nil
}

// loadTrack reads an .srt file, either failing on the first malformed block
// or dropping malformed blocks with a warning.
func loadTrack(path, encoding string, skipInvalid bool) (*subtitle.Track, error) {
	if !skipInvalid {
		return subtitle.Open(path, encoding)
	}

	track, errs, err := subtitle.OpenLenient(path, encoding)
	if err != nil {
		return nil, err
	}
	reportSkipped(errs)
	return track, nil
}

func reportSkipped(errs []error) {
	for _, err := range errs {
		logger.Warnw("Skipping cue", "error", err)
	}
	if len(errs) > 0 {
		logger.Warnw("Some cues were dropped", "skipped", len(errs))
	}
}
