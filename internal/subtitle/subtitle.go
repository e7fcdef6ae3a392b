package subtitle

import (
	"fmt"
	"strings"
)

// single subtitle entry
type Cue struct {
	Index int
	Start Timecode
	End   Timecode
	Lines []string
}

// Text joins the display lines with newlines.
func (c Cue) Text() string {
	return strings.Join(c.Lines, "\n")
}

// ordered cues of one subtitle file
type Track struct {
	Cues []Cue
}

func NewTrack(cues []Cue) *Track {
	return &Track{Cues: cues}
}

func (t *Track) Len() int {
	return len(t.Cues)
}

// Clone deep-copies the track, including each cue's lines.
func (t *Track) Clone() *Track {
	cues := make([]Cue, len(t.Cues))
	for i, c := range t.Cues {
		c.Lines = append([]string(nil), c.Lines...)
		cues[i] = c
	}
	return &Track{Cues: cues}
}

// Renumber sets cue indices to 1..N in current order.
func (t *Track) Renumber() {
	for i := range t.Cues {
		t.Cues[i].Index = i + 1
	}
}

// Validate reports the first cue that breaks the track invariants.
func (t *Track) Validate() error {
	for i, c := range t.Cues {
		pos := i + 1
		if c.Index <= 0 {
			return &FormatError{Cue: pos, Msg: fmt.Sprintf("non-positive index %d", c.Index)}
		}
		if c.Start < 0 {
			return &FormatError{Cue: pos, Msg: "negative start " + c.Start.String()}
		}
		if c.End < c.Start {
			return &FormatError{
				Cue: pos,
				Msg: fmt.Sprintf("end %s before start %s", c.End, c.Start),
			}
		}
		if len(c.Lines) == 0 {
			return &FormatError{Cue: pos, Msg: "no text lines"}
		}
		for _, line := range c.Lines {
			if strings.TrimSpace(line) == "" || strings.ContainsAny(line, "\r\n") {
				return &FormatError{Cue: pos, Msg: fmt.Sprintf("unserializable text line %q", line)}
			}
		}
		if i > 0 && c.Start < t.Cues[i-1].Start {
			return &FormatError{
				Cue: pos,
				Msg: fmt.Sprintf(
					"start %s precedes previous cue start %s",
					c.Start,
					t.Cues[i-1].Start,
				),
			}
		}
	}
	return nil
}
