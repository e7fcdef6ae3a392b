package cli

import (
	"github.com/mgpai22/subtitools/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "subtitools",
	Short: "Shift and convert subtitle files",
	Long: `Subtitools is a CLI tool for fixing SubRip (.srt) subtitle timing
and converting other subtitle formats into SubRip.

It reads TTML/DFXP, MicroDVD, SAMI, WebVTT and ASS/SSA files, and can
pull text subtitle streams out of video containers with ffmpeg.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose, quiet)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Only report errors")
	rootCmd.PersistentFlags().
		StringP("encoding", "e", "", "Input character encoding (detected when empty)")
	rootCmd.PersistentFlags().
		Bool("skip-invalid", false, "Drop malformed cues with a warning instead of failing")
}
