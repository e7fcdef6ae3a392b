package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/subtitools/internal/subtitle"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const twoCues = `1
00:00:03,000 --> 00:00:05,000
Hello

2
00:00:06,500 --> 00:00:08,000
Second line
with two rows
`

// execute runs the root command quietly with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "-q"))

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestShiftCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.srt", twoCues)
	output := filepath.Join(dir, "out.srt")

	if _, err := execute(t, "shift", input, "-s", "2", "-o", output); err != nil {
		t.Fatalf("shift failed: %v", err)
	}

	want := `1
00:00:05,000 --> 00:00:07,000
Hello

2
00:00:08,500 --> 00:00:10,000
Second line
with two rows
`
	if got := readFile(t, output); got != want {
		t.Errorf("unexpected output:\n%s", got)
	}
	if readFile(t, input) != twoCues {
		t.Error("input was modified when --output was given")
	}
}

func TestShiftCommandCombinesComponents(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.srt", twoCues)

	// -1m +58s +1500ms = -500ms; rewrites the input in place
	_, err := execute(t, "shift", input,
		"--minutes=-1", "--seconds=58", "--milliseconds=1500")
	if err != nil {
		t.Fatalf("shift failed: %v", err)
	}

	got := readFile(t, input)
	if !strings.Contains(got, "00:00:02,500 --> 00:00:04,500") {
		t.Errorf("first cue not shifted by -500ms:\n%s", got)
	}
	if !strings.Contains(got, "00:00:06,000 --> 00:00:07,500") {
		t.Errorf("second cue not shifted by -500ms:\n%s", got)
	}
}

func TestShiftCommandClampsAtZero(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.srt", twoCues)
	output := filepath.Join(dir, "out.srt")

	if _, err := execute(t, "shift", input, "--seconds=-5", "-o", output); err != nil {
		t.Fatalf("shift failed: %v", err)
	}

	got := readFile(t, output)
	if !strings.Contains(got, "1\n00:00:00,000 --> 00:00:00,000\nHello\n") {
		t.Errorf("first cue not clamped:\n%s", got)
	}
	if !strings.Contains(got, "00:00:01,500 --> 00:00:03,000") {
		t.Errorf("second cue wrong:\n%s", got)
	}
}

func TestShiftCommandMalformedInput(t *testing.T) {
	dir := t.TempDir()
	broken := twoCues + "\nthree\n00:00:09,000 --> 00:00:10,000\nBad index\n"
	input := writeFile(t, dir, "in.srt", broken)
	output := filepath.Join(dir, "out.srt")

	_, err := execute(t, "shift", input, "-s", "1", "-o", output)
	if !errors.Is(err, subtitle.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if !strings.Contains(err.Error(), "block 3") {
		t.Errorf("error should name block 3: %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Error("output written despite parse error")
	}

	if _, err := execute(t, "shift", input, "-s", "1", "-o", output, "--skip-invalid"); err != nil {
		t.Fatalf("shift --skip-invalid failed: %v", err)
	}
	got := readFile(t, output)
	if strings.Contains(got, "Bad index") {
		t.Errorf("malformed block should be dropped:\n%s", got)
	}
	if !strings.Contains(got, "00:00:04,000 --> 00:00:06,000") {
		t.Errorf("well-formed cues should be kept:\n%s", got)
	}
}

func TestShiftCommandOffsetOutOfRange(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.srt", twoCues)

	_, err := execute(t, "shift", input, "--hours=9999999999999")
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("expected out of range error, got %v", err)
	}
	if readFile(t, input) != twoCues {
		t.Error("input rewritten despite invalid offset")
	}
}

func TestShiftCommandMissingFile(t *testing.T) {
	_, err := execute(t, "shift", filepath.Join(t.TempDir(), "nope.srt"), "-s", "1")
	if !errors.Is(err, subtitle.ErrIO) {
		t.Fatalf("expected I/O error, got %v", err)
	}
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "movie.vtt", `WEBVTT

00:00:01.000 --> 00:00:02.500 align:start
<i>Hello</i> there

00:00:03.000 --> 00:00:04.000
Bye
`)

	if _, err := execute(t, "convert", input); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	want := `1
00:00:01,000 --> 00:00:02,500
Hello there

2
00:00:03,000 --> 00:00:04,000
Bye
`
	if got := readFile(t, filepath.Join(dir, "movie.srt")); got != want {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestConvertCommandExplicitType(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "movie.txt", "{0}{25}Hello|World\n{50}{75}Again\n")
	output := filepath.Join(dir, "result.srt")

	if _, err := execute(t, "convert", input, output, "-t", "sub", "-f", "25"); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	got := readFile(t, output)
	if !strings.Contains(got, "1\n00:00:00,000 --> 00:00:01,000\nHello\nWorld\n") {
		t.Errorf("unexpected output:\n%s", got)
	}
	if !strings.Contains(got, "2\n00:00:02,000 --> 00:00:03,000\nAgain\n") {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestConvertCommandRefusesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "movie.sub", "{0}{25}Hello\n")
	existing := writeFile(t, dir, "movie.srt", "keep me")

	_, err := execute(t, "convert", input, "-f", "25")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected refusal, got %v", err)
	}
	if readFile(t, existing) != "keep me" {
		t.Error("existing output was overwritten")
	}

	if _, err := execute(t, "convert", input, "-f", "25", "-y"); err != nil {
		t.Fatalf("convert -y failed: %v", err)
	}
	if readFile(t, existing) == "keep me" {
		t.Error("-y did not overwrite the output")
	}
}

func TestConvertCommandSkipInvalid(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "movie.sub", "{0}{25}Hello\ngarbage\n{50}{75}Again\n")

	_, err := execute(t, "convert", input, "-f", "25")
	if !errors.Is(err, subtitle.ErrConversion) {
		t.Fatalf("expected conversion error, got %v", err)
	}

	if _, err := execute(t, "convert", input, "-f", "25", "--skip-invalid"); err != nil {
		t.Fatalf("convert --skip-invalid failed: %v", err)
	}
	got := readFile(t, filepath.Join(dir, "movie.srt"))
	if !strings.Contains(got, "2\n00:00:02,000 --> 00:00:03,000\nAgain\n") {
		t.Errorf("cues should be renumbered after skipping:\n%s", got)
	}
}

func TestConvertCommandUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "movie.xyz", "data")

	_, err := execute(t, "convert", input)
	if err == nil || !strings.Contains(err.Error(), "unknown subtitle format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestFormatsCommand(t *testing.T) {
	out, err := execute(t, "formats")
	if err != nil {
		t.Fatalf("formats failed: %v", err)
	}
	for _, want := range []string{"ttml", ".dfxp", "sub", "sami", ".smi", "vtt", "ass", ".ssa", "media", ".mkv"} {
		if !strings.Contains(out, want) {
			t.Errorf("formats output missing %q:\n%s", want, out)
		}
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"movie.ttml", "movie.srt"},
		{"dir/movie.en.sub", "dir/movie.en.srt"},
		{"noext", "noext.srt"},
		{"movie.srt", "movie.srt"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := defaultOutputPath(tt.in); got != tt.want {
				t.Errorf("defaultOutputPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSameFile(t *testing.T) {
	if !sameFile("a/b.srt", "a/../a/b.srt") {
		t.Error("equivalent paths should match")
	}
	if sameFile("-", "-") {
		t.Error("stdout never collides")
	}
	if sameFile("a.srt", "b.srt") {
		t.Error("different files should not match")
	}
}
