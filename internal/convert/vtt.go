package convert

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/mgpai22/subtitools/internal/subtitle"
)

var (
	vttTimestampRegex = regexp.MustCompile(
		`^(\d{2,}:\d{2}:\d{2}\.\d{3})\s*-->\s*(\d{2,}:\d{2}:\d{2}\.\d{3})`,
	)
	vttShortTimestampRegex = regexp.MustCompile(
		`^(\d{2}:\d{2}\.\d{3})\s*-->\s*(\d{2}:\d{2}\.\d{3})`,
	)
	// <i>, </b>, <c.yellow>, <v Speaker>, <00:00:01.000>
	vttTagRegex = regexp.MustCompile(`<[^>]*>`)
)

func newVTTConverter() Converter {
	return &textConverter{
		name:  "vtt",
		exts:  []string{"vtt"},
		parse: ParseVTT,
	}
}

type vttCue struct {
	pos   int
	line  int
	start subtitle.Timecode
	end   subtitle.Timecode
	text  []string
}

// ParseVTT converts WebVTT. NOTE, STYLE and REGION blocks are skipped, cue
// settings after the end time are ignored and inline markup is stripped.
func ParseVTT(text string, _ Options) (*Result, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cues []subtitle.Cue
	var errs []error
	var current *vttCue
	skipping := false // inside a cue whose timing failed
	lineNum := 0
	pos := 0
	headerParsed := false

	closeCue := func() {
		if current == nil {
			return
		}
		cue, err := newCue("vtt", current.pos, current.line, current.start, current.end, current.text)
		if err != nil {
			errs = append(errs, err)
		} else {
			cues = append(cues, cue)
		}
		current = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		trimmed := strings.TrimSpace(line)

		if !headerParsed {
			if strings.HasPrefix(trimmed, "WEBVTT") {
				headerParsed = true
				skipBlock(scanner, &lineNum)
				continue
			}
		}

		if trimmed == "" {
			closeCue()
			skipping = false
			continue
		}

		if current == nil && !skipping {
			if strings.HasPrefix(trimmed, "NOTE") ||
				strings.HasPrefix(trimmed, "STYLE") ||
				strings.HasPrefix(trimmed, "REGION") {
				skipBlock(scanner, &lineNum)
				continue
			}
		}

		if strings.Contains(line, "-->") && current == nil {
			pos++
			start, end, err := parseVTTTiming(trimmed)
			if err != nil {
				errs = append(errs, &subtitle.ConversionError{
					Format: "vtt", Cue: pos, Line: lineNum, Err: err,
				})
				skipping = true
				continue
			}
			current = &vttCue{pos: pos, line: lineNum, start: start, end: end}
			continue
		}

		if current != nil {
			current.text = append(current.text, vttText(line))
		}
		// anything else outside a cue is a cue identifier
	}
	closeCue()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT text: %w", err)
	}

	return finish(cues, errs), nil
}

// skipBlock consumes lines up to and including the next blank line.
func skipBlock(scanner *bufio.Scanner, lineNum *int) {
	for scanner.Scan() {
		*lineNum++
		if strings.TrimSpace(scanner.Text()) == "" {
			break
		}
	}
}

func parseVTTTiming(line string) (subtitle.Timecode, subtitle.Timecode, error) {
	if m := vttTimestampRegex.FindStringSubmatch(line); m != nil {
		return parseVTTPair(m[1], m[2])
	}
	if m := vttShortTimestampRegex.FindStringSubmatch(line); m != nil {
		return parseVTTPair("00:"+m[1], "00:"+m[2])
	}
	return 0, 0, fmt.Errorf("invalid timing line %q", line)
}

func parseVTTPair(a, b string) (subtitle.Timecode, subtitle.Timecode, error) {
	start, err := subtitle.ParseTimecodeSep(a, '.')
	if err != nil {
		return 0, 0, err
	}
	end, err := subtitle.ParseTimecodeSep(b, '.')
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func vttText(line string) string {
	return html.UnescapeString(vttTagRegex.ReplaceAllString(line, ""))
}
