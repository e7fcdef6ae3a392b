package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriteSRT serializes t as SubRip, numbering cues 1..N in their current order.
func WriteSRT(w io.Writer, t *Track) error {
	bw := bufio.NewWriter(w)
	for i, cue := range t.Cues {
		if i > 0 {
			// blank line between blocks
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}

		// index (1-based)
		if _, err := fmt.Fprintf(bw, "%d\n", i+1); err != nil {
			return err
		}

		// timestamps: 00:00:00,000 --> 00:00:00,000
		if _, err := fmt.Fprintf(bw, "%s %s %s\n", cue.Start, timingArrow, cue.End); err != nil {
			return err
		}

		for _, line := range cue.Lines {
			if _, err := bw.WriteString(line); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// FormatSRT returns the SubRip text for t.
func FormatSRT(t *Track) string {
	var sb strings.Builder
	_ = WriteSRT(&sb, t)
	return sb.String()
}

// WriteFile writes t to path, creating parent directories. A path of "-"
// writes to stdout.
func WriteFile(t *Track, path string) error {
	if path == "-" {
		return WriteSRT(os.Stdout, t)
	}

	if err := ensureDir(path); err != nil {
		return &IOError{Op: "create directory for", Path: path, Err: err}
	}

	file, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}

	if err := WriteSRT(file, t); err != nil {
		_ = file.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
