package convert

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mgpai22/subtitools/internal/subtitle"
)

// {start_frame}{stop_frame}text|more text
var microDVDLine = regexp.MustCompile(`^\{(\d+)\}\{(\d*)\}(.*)$`)

// formatting codes such as {y:i} or {c:$0000ff}
var microDVDCode = regexp.MustCompile(`\{[a-zA-Z]:[^}]*\}`)

func newMicroDVDConverter() Converter {
	return &textConverter{
		name:  "sub",
		exts:  []string{"sub"},
		parse: ParseMicroDVD,
	}
}

// ParseMicroDVD converts frame-based MicroDVD text. The frame rate comes
// from opts.FPS, or from a leading {1}{1}<fps> line when FPS is zero.
func ParseMicroDVD(text string, opts Options) (*Result, error) {
	fps := opts.FPS
	lines := strings.Split(text, "\n")

	var cues []subtitle.Cue
	var errs []error
	pos := 0

	for i, raw := range lines {
		lineNum := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		pos++

		m := microDVDLine.FindStringSubmatch(line)
		if m == nil {
			errs = append(errs, &subtitle.ConversionError{
				Format: "sub", Cue: pos, Line: lineNum,
				Msg: fmt.Sprintf("could not parse line %q", line),
			})
			continue
		}

		startFrame, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			errs = append(errs, frameError(pos, lineNum, m[1]))
			continue
		}
		stopFrame := startFrame
		if m[2] != "" {
			if stopFrame, err = strconv.ParseInt(m[2], 10, 64); err != nil {
				errs = append(errs, frameError(pos, lineNum, m[2]))
				continue
			}
		}

		// {1}{1}23.976 declares the frame rate
		if pos == 1 && startFrame == 1 && stopFrame == 1 {
			if declared, err := strconv.ParseFloat(strings.TrimSpace(m[3]), 64); err == nil {
				if fps == 0 {
					fps = declared
				}
				pos--
				continue
			}
		}

		if fps <= 0 {
			return nil, &subtitle.ConversionError{
				Format: "sub",
				Msg:    "frame rate required: pass --fps or add a {1}{1}<fps> header line",
			}
		}

		start, err := framesToTimecode(startFrame, fps)
		if err != nil {
			errs = append(errs, frameError(pos, lineNum, m[1]))
			continue
		}
		end, err := framesToTimecode(stopFrame, fps)
		if err != nil {
			errs = append(errs, frameError(pos, lineNum, m[2]))
			continue
		}

		body := microDVDCode.ReplaceAllString(m[3], "")
		cue, err := newCue("sub", pos, lineNum, start, end, strings.Split(body, "|"))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cues = append(cues, cue)
	}

	return finish(cues, errs), nil
}

// framesToTimecode rounds frame/fps to the nearest millisecond.
func framesToTimecode(frame int64, fps float64) (subtitle.Timecode, error) {
	ms := math.Round(float64(frame) * 1000 / fps)
	if ms >= float64(subtitle.MaxTimecode) || math.IsNaN(ms) {
		return 0, fmt.Errorf("frame %d at %v fps is out of range", frame, fps)
	}
	return subtitle.Timecode(ms), nil
}

func frameError(pos, line int, frame string) error {
	return &subtitle.ConversionError{
		Format: "sub", Cue: pos, Line: line,
		Msg: fmt.Sprintf("frame number %s out of range", frame),
	}
}
