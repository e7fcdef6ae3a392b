package subtitle

import (
	"fmt"
	"strconv"
	"strings"
)

const timingArrow = "-->"

// ParseSRT parses decoded SubRip text. The first malformed block aborts
// parsing with a *ParseError.
func ParseSRT(text string) (*Track, error) {
	track, errs := parseSRT(text, true)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return track, nil
}

// ParseSRTLenient parses every block it can and returns one *ParseError
// per malformed block alongside the well-formed cues.
func ParseSRTLenient(text string) (*Track, []error) {
	return parseSRT(text, false)
}

type srtBlock struct {
	pos       int
	firstLine int
	lines     []string
}

func parseSRT(text string, stopEarly bool) (*Track, []error) {
	track := &Track{}
	var errs []error

	for _, b := range splitBlocks(text) {
		cue, err := parseBlock(b)
		if err != nil {
			errs = append(errs, err)
			if stopEarly {
				return nil, errs
			}
			continue
		}
		track.Cues = append(track.Cues, cue)
	}

	return track, errs
}

// splitBlocks groups non-blank lines separated by one or more blank lines.
func splitBlocks(text string) []srtBlock {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var blocks []srtBlock
	var current *srtBlock

	for i, line := range strings.Split(text, "\n") {
		lineNum := i + 1
		if strings.TrimSpace(line) == "" {
			if current != nil {
				blocks = append(blocks, *current)
				current = nil
			}
			continue
		}
		if current == nil {
			current = &srtBlock{pos: len(blocks) + 1, firstLine: lineNum}
		}
		current.lines = append(current.lines, line)
	}
	if current != nil {
		blocks = append(blocks, *current)
	}

	return blocks
}

func parseBlock(b srtBlock) (Cue, error) {
	fail := func(offset int, format string, args ...any) (Cue, error) {
		return Cue{}, &ParseError{
			Block: b.pos,
			Line:  b.firstLine + offset,
			Msg:   fmt.Sprintf(format, args...),
		}
	}

	index, err := strconv.Atoi(strings.TrimSpace(b.lines[0]))
	if err != nil {
		if strings.Contains(b.lines[0], timingArrow) {
			return fail(0, "missing index line")
		}
		return fail(0, "invalid index %q", strings.TrimSpace(b.lines[0]))
	}
	if index <= 0 {
		return fail(0, "index %d is not positive", index)
	}

	if len(b.lines) < 2 || !strings.Contains(b.lines[1], timingArrow) {
		return fail(1, "missing timing line")
	}

	start, end, err := parseTiming(b.lines[1])
	if err != nil {
		return fail(1, "%s", timingMsg(err))
	}
	if end < start {
		return fail(1, "end %s before start %s", end, start)
	}

	if len(b.lines) < 3 {
		return fail(2, "missing text")
	}

	lines := make([]string, len(b.lines)-2)
	copy(lines, b.lines[2:])

	return Cue{Index: index, Start: start, End: end, Lines: lines}, nil
}

// parseTiming reads "START --> END"; anything after END (cue settings) is ignored.
func parseTiming(line string) (Timecode, Timecode, error) {
	left, right, _ := strings.Cut(line, timingArrow)
	fields := strings.Fields(right)
	if len(fields) == 0 {
		return 0, 0, &ParseError{Msg: "missing end timecode"}
	}

	start, err := ParseTimecode(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimecode(fields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func timingMsg(err error) string {
	if pe, ok := err.(*ParseError); ok {
		return pe.Msg
	}
	return err.Error()
}
