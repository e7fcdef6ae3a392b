package cli

import (
	"fmt"
	"strings"

	"github.com/mgpai22/subtitools/internal/convert"
	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the input formats convert understands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, c := range convert.All() {
			exts := make([]string, 0, len(c.Extensions()))
			for _, ext := range c.Extensions() {
				exts = append(exts, "."+ext)
			}
			if _, err := fmt.Fprintf(out, "%-6s %s\n", c.Name(), strings.Join(exts, " ")); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
