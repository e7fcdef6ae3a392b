package convert

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mgpai22/subtitools/internal/subtitle"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

// checkCue compares one converted cue against its expected timing and text.
func checkCue(t *testing.T, track *subtitle.Track, i int, start, end subtitle.Timecode, text string) {
	t.Helper()
	if i >= track.Len() {
		t.Fatalf("cue %d missing: track has %d cues", i, track.Len())
	}
	c := track.Cues[i]
	if c.Index != i+1 {
		t.Errorf("cue %d: index %d, want %d", i, c.Index, i+1)
	}
	if c.Start != start || c.End != end {
		t.Errorf("cue %d: got %s --> %s, want %s --> %s", i, c.Start, c.End, start, end)
	}
	if c.Text() != text {
		t.Errorf("cue %d: got text %q, want %q", i, c.Text(), text)
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"ttml", "ttml"},
		{".DFXP", "ttml"},
		{"xml", "ttml"},
		{"sub", "sub"},
		{"smi", "sami"},
		{"SAMI", "sami"},
		{"vtt", "vtt"},
		{".ssa", "ass"},
		{"mkv", "media"},
		{" mp4 ", "media"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup(%q) error: %v", tt.name, err)
			}
			if c.Name() != tt.want {
				t.Errorf("Lookup(%q) = %s, want %s", tt.name, c.Name(), tt.want)
			}
		})
	}

	if _, err := Lookup("docx"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestForPath(t *testing.T) {
	c, err := ForPath("/tmp/Movie.SMI")
	if err != nil {
		t.Fatalf("ForPath error: %v", err)
	}
	if c.Name() != "sami" {
		t.Errorf("got %s, want sami", c.Name())
	}

	if _, err := ForPath("README"); err == nil {
		t.Error("expected error for path without extension")
	}
}

func TestRegistryUnique(t *testing.T) {
	names := map[string]bool{}
	exts := map[string]string{}
	for _, c := range All() {
		if names[c.Name()] {
			t.Errorf("duplicate converter name %q", c.Name())
		}
		names[c.Name()] = true
		for _, ext := range c.Extensions() {
			if owner, ok := exts[ext]; ok {
				t.Errorf("extension %q claimed by %s and %s", ext, owner, c.Name())
			}
			exts[ext] = c.Name()
		}
	}
}

func TestResultApply(t *testing.T) {
	cueErr := &subtitle.ConversionError{Format: "sub", Cue: 2, Msg: "bad line"}
	res := &Result{
		Track: subtitle.NewTrack([]subtitle.Cue{
			{Index: 1, Start: 0, End: 1000, Lines: []string{"ok"}},
		}),
		Errors: []error{cueErr},
	}

	if _, err := res.Apply(PolicyAbort); !errors.Is(err, subtitle.ErrConversion) {
		t.Errorf("abort: expected conversion error, got %v", err)
	}

	track, err := res.Apply(PolicySkip)
	if err != nil {
		t.Fatalf("skip: unexpected error: %v", err)
	}
	if track.Len() != 1 {
		t.Errorf("skip: expected 1 cue, got %d", track.Len())
	}

	clean := &Result{Track: subtitle.NewTrack(nil)}
	if _, err := clean.Apply(PolicyAbort); err != nil {
		t.Errorf("empty result should apply cleanly: %v", err)
	}
}

func TestTextConverterStampsFile(t *testing.T) {
	path := writeTemp(t, "broken.sub", "{0}{25}Hello\nnot a cue\n")

	c, err := Lookup("sub")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	res, err := c.Convert(path, Options{FPS: 25})
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 cue error, got %d", len(res.Errors))
	}

	var ce *subtitle.ConversionError
	if !errors.As(res.Errors[0], &ce) {
		t.Fatalf("expected *ConversionError, got %T", res.Errors[0])
	}
	if ce.File != path || ce.Cue != 2 || ce.Line != 2 {
		t.Errorf("unexpected location: file=%q cue=%d line=%d", ce.File, ce.Cue, ce.Line)
	}
}

func TestTextConverterMissingFile(t *testing.T) {
	c, _ := Lookup("vtt")
	_, err := c.Convert(filepath.Join(t.TempDir(), "missing.vtt"), Options{})
	if !errors.Is(err, subtitle.ErrIO) {
		t.Errorf("expected I/O error, got %v", err)
	}
}
