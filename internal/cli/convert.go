package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subtitools/internal/convert"
	"github.com/mgpai22/subtitools/internal/subtitle"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert [input_file] [output_file]",
	Short: "Convert a subtitle file to SubRip",
	Long: `Convert a TTML/DFXP, MicroDVD, SAMI, WebVTT or ASS/SSA subtitle file,
or a subtitle stream inside a video container, to SubRip (.srt).

The input format is taken from --type or from the input file extension.
The output defaults to the input path with a .srt extension. An existing
output file is only replaced with --yes.

Examples:
  subtitools convert movie.ttml
  subtitools convert movie.sub movie.srt --fps 23.976
  subtitools convert movie.smi --class ENCC
  subtitools convert movie.mkv --stream 1 -o -
  subtitools convert captions.txt -t vtt -y`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().
		StringP("type", "t", "", "Input format (see 'subtitools formats'); inferred from extension when empty")
	convertCmd.Flags().
		StringP("output", "o", "", "Output file path (alternative to the second argument)")
	convertCmd.Flags().
		Float64P("fps", "f", 0, "Frame rate for frame-based formats such as MicroDVD")
	convertCmd.Flags().
		String("class", "", "SAMI caption class to keep (e.g. ENUSCC)")
	convertCmd.Flags().
		Int("stream", 0, "Subtitle stream index inside a video container")
	convertCmd.Flags().
		BoolP("yes", "y", false, "Overwrite the output file if it exists")
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	formatName, _ := cmd.Flags().GetString("type")
	outputPath, _ := cmd.Flags().GetString("output")
	fps, _ := cmd.Flags().GetFloat64("fps")
	class, _ := cmd.Flags().GetString("class")
	stream, _ := cmd.Flags().GetInt("stream")
	overwrite, _ := cmd.Flags().GetBool("yes")
	encoding, _ := cmd.Flags().GetString("encoding")
	skipInvalid, _ := cmd.Flags().GetBool("skip-invalid")

	if len(args) == 2 {
		if outputPath != "" && outputPath != args[1] {
			return fmt.Errorf(
				"output given twice: %q and --output %q",
				args[1],
				outputPath,
			)
		}
		outputPath = args[1]
	}
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath)
	}

	if fps < 0 {
		return fmt.Errorf("invalid fps %v: must be positive", fps)
	}
	if stream < 0 {
		return fmt.Errorf("invalid stream index %d", stream)
	}

	conv, err := resolveConverter(formatName, inputPath)
	if err != nil {
		return err
	}

	if sameFile(inputPath, outputPath) {
		return fmt.Errorf("output %s would overwrite the input", outputPath)
	}
	if err := checkOverwrite(outputPath, overwrite); err != nil {
		return err
	}

	logger.Infow("Converting subtitles",
		"input", inputPath,
		"output", outputPath,
		"format", conv.Name(),
	)

	opts := convert.Options{
		Encoding: encoding,
		FPS:      fps,
		Class:    class,
		Stream:   stream,
	}

	result, err := conv.Convert(inputPath, opts)
	if err != nil {
		return err
	}

	policy := convert.PolicyAbort
	if skipInvalid {
		policy = convert.PolicySkip
		reportSkipped(result.Errors)
	}

	track, err := result.Apply(policy)
	if err != nil {
		return err
	}
	if track.Len() == 0 {
		logger.Warnw("No cues converted", "input", inputPath)
	}

	if err := subtitle.WriteFile(track, outputPath); err != nil {
		return err
	}

	logger.Infow("Conversion complete",
		"output", outputPath,
		"cues", track.Len(),
	)
	return nil
}

func resolveConverter(formatName, inputPath string) (convert.Converter, error) {
	if formatName != "" {
		return convert.Lookup(formatName)
	}
	return convert.ForPath(inputPath)
}

// defaultOutputPath swaps the input extension for .srt.
func defaultOutputPath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".srt"
}

func checkOverwrite(path string, overwrite bool) error {
	if path == "-" || overwrite {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("output file %s already exists (use --yes to overwrite)", path)
	}
	return nil
}

func sameFile(a, b string) bool {
	if a == "-" || b == "-" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
