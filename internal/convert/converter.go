// Package convert turns foreign subtitle formats into subtitle.Track values.
//
// Each format is an independent Converter. Converters report cues they cannot
// map as *subtitle.ConversionError values in Result.Errors and leave the
// skip-or-abort decision to the caller through Result.Apply.
package convert

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mgpai22/subtitools/internal/charset"
	"github.com/mgpai22/subtitools/internal/subtitle"
)

// Options carries the per-format knobs; each converter reads only its own.
type Options struct {
	Encoding string  // source charset label; empty means detect
	FPS      float64 // frame rate for frame-based formats
	Class    string  // SAMI caption class (language) filter
	Stream   int     // subtitle stream index inside a media container
}

// Result of a conversion: every cue that could be mapped plus one error per
// cue that could not.
type Result struct {
	Track  *subtitle.Track
	Errors []error
}

// Policy decides what happens to cue-level conversion errors.
type Policy int

const (
	PolicyAbort Policy = iota // fail on the first cue error
	PolicySkip                // drop unconvertible cues
)

// Apply resolves the result under policy p.
func (r *Result) Apply(p Policy) (*subtitle.Track, error) {
	if p == PolicyAbort && len(r.Errors) > 0 {
		return nil, r.Errors[0]
	}
	if err := r.Track.Validate(); err != nil {
		return nil, err
	}
	return r.Track, nil
}

// Converter parses one foreign subtitle format.
type Converter interface {
	Name() string
	Extensions() []string
	Convert(path string, opts Options) (*Result, error)
}

var registry = []Converter{
	newTTMLConverter(),
	newMicroDVDConverter(),
	newSAMIConverter(),
	newVTTConverter(),
	newASSConverter(),
	newMediaConverter(),
}

// All returns the registered converters in display order.
func All() []Converter {
	out := make([]Converter, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a converter by name or by extension (with or without dot).
func Lookup(name string) (Converter, error) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	for _, c := range registry {
		if c.Name() == key {
			return c, nil
		}
	}
	for _, c := range registry {
		for _, ext := range c.Extensions() {
			if ext == key {
				return c, nil
			}
		}
	}
	return nil, fmt.Errorf("unknown subtitle format %q", name)
}

// ForPath infers the converter from the file extension.
func ForPath(path string) (Converter, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, fmt.Errorf("cannot infer subtitle format of %q: no file extension", path)
	}
	return Lookup(ext)
}

// textParser parses already-decoded text.
type textParser func(text string, opts Options) (*Result, error)

// textConverter adapts a textParser to a file-based Converter.
type textConverter struct {
	name  string
	exts  []string
	parse textParser
}

func (c *textConverter) Name() string { return c.name }

func (c *textConverter) Extensions() []string { return c.exts }

func (c *textConverter) Convert(path string, opts Options) (*Result, error) {
	data, err := subtitle.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text, err := charset.Decode(data, opts.Encoding)
	if err != nil {
		return nil, &subtitle.IOError{Op: "decode", Path: path, Err: err}
	}

	res, err := c.parse(text, opts)
	if err != nil {
		return nil, subtitle.WithFile(err, path)
	}
	for _, e := range res.Errors {
		subtitle.WithFile(e, path)
	}
	return res, nil
}

// finish orders cues by start time and renumbers them 1..N.
func finish(cues []subtitle.Cue, errs []error) *Result {
	sortCues(cues)
	track := subtitle.NewTrack(cues)
	track.Renumber()
	return &Result{Track: track, Errors: errs}
}

// sortCues orders by start, keeping source order for equal starts.
func sortCues(cues []subtitle.Cue) {
	sort.SliceStable(cues, func(i, j int) bool {
		return cues[i].Start < cues[j].Start
	})
}

// cleanLines trims each line and drops blank ones.
func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// newCue validates the mapped timing and text of one source cue.
func newCue(format string, pos, line int, start, end subtitle.Timecode, lines []string) (subtitle.Cue, error) {
	lines = cleanLines(lines)
	if len(lines) == 0 {
		return subtitle.Cue{}, &subtitle.ConversionError{
			Format: format, Cue: pos, Line: line, Msg: "cue has no text",
		}
	}
	if start < 0 {
		return subtitle.Cue{}, &subtitle.ConversionError{
			Format: format, Cue: pos, Line: line, Msg: "negative start " + start.String(),
		}
	}
	if end < start {
		return subtitle.Cue{}, &subtitle.ConversionError{
			Format: format,
			Cue:    pos,
			Line:   line,
			Msg:    fmt.Sprintf("end %s before start %s", end, start),
		}
	}
	return subtitle.Cue{Index: pos, Start: start, End: end, Lines: lines}, nil
}
