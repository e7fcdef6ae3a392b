package convert

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mgpai22/subtitools/internal/subtitle"
)

// override blocks such as {\pos(100,200)} or {\i1}
var assTagRegex = regexp.MustCompile(`\{[^}]*\}`)

func newASSConverter() Converter {
	return &textConverter{
		name:  "ass",
		exts:  []string{"ass", "ssa"},
		parse: ParseASS,
	}
}

// ParseASS converts the Dialogue lines of an ASS/SSA script. Columns are
// located through the [Events] Format line; override tags are dropped and
// \N / \n become line breaks. Cues are ordered by start time since scripts
// are not required to be.
func ParseASS(text string, _ Options) (*Result, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cues []subtitle.Cue
	var errs []error
	var columns []string
	textIdx, startIdx, endIdx := -1, -1, -1
	inEvents := false
	lineNum := 0
	pos := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section := strings.ToLower(strings.Trim(trimmed, "[]"))
			inEvents = section == "events"
			continue
		}
		if !inEvents {
			continue
		}

		if strings.HasPrefix(trimmed, "Format:") {
			columns = strings.Split(strings.TrimPrefix(trimmed, "Format:"), ",")
			for i, col := range columns {
				col = strings.TrimSpace(col)
				columns[i] = col
				switch strings.ToLower(col) {
				case "text":
					textIdx = i
				case "start":
					startIdx = i
				case "end":
					endIdx = i
				}
			}
			if textIdx == -1 || startIdx == -1 || endIdx == -1 {
				return nil, &subtitle.ConversionError{
					Format: "ass", Line: lineNum,
					Msg: "Format line must name Start, End and Text columns",
				}
			}
			continue
		}

		if !strings.HasPrefix(trimmed, "Dialogue:") {
			continue
		}
		pos++

		if len(columns) == 0 {
			return nil, &subtitle.ConversionError{
				Format: "ass", Line: lineNum,
				Msg: "Dialogue before Format line in [Events] section",
			}
		}

		content := strings.TrimSpace(strings.TrimPrefix(trimmed, "Dialogue:"))
		parts := splitASSFields(content, len(columns))
		if len(parts) < len(columns) {
			errs = append(errs, &subtitle.ConversionError{
				Format: "ass", Cue: pos, Line: lineNum,
				Msg: fmt.Sprintf("expected %d fields, got %d", len(columns), len(parts)),
			})
			continue
		}

		start, err := parseASSTimestamp(parts[startIdx])
		if err != nil {
			errs = append(errs, &subtitle.ConversionError{Format: "ass", Cue: pos, Line: lineNum, Err: err})
			continue
		}
		end, err := parseASSTimestamp(parts[endIdx])
		if err != nil {
			errs = append(errs, &subtitle.ConversionError{Format: "ass", Cue: pos, Line: lineNum, Err: err})
			continue
		}

		cue, err := newCue("ass", pos, lineNum, start, end, assLines(parts[textIdx]))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cues = append(cues, cue)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS text: %w", err)
	}
	if columns == nil {
		return nil, &subtitle.ConversionError{
			Format: "ass", Msg: "missing Format line in [Events] section",
		}
	}

	return finish(cues, errs), nil
}

// splitASSFields splits on the first numFields-1 commas; the last field
// (Text) may itself contain commas.
func splitASSFields(content string, numFields int) []string {
	if numFields <= 0 {
		return nil
	}

	parts := make([]string, 0, numFields)
	remaining := content

	for i := 0; i < numFields-1; i++ {
		idx := strings.Index(remaining, ",")
		if idx == -1 {
			parts = append(parts, remaining)
			return parts
		}
		parts = append(parts, remaining[:idx])
		remaining = remaining[idx+1:]
	}

	return append(parts, remaining)
}

func assLines(text string) []string {
	text = assTagRegex.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\\N", "\n")
	text = strings.ReplaceAll(text, "\\n", "\n")
	text = strings.ReplaceAll(text, "\\h", " ")
	return strings.Split(text, "\n")
}

// parseASSTimestamp reads H:MM:SS.cc (centiseconds).
func parseASSTimestamp(ts string) (subtitle.Timecode, error) {
	ts = strings.TrimSpace(ts)
	bad := fmt.Errorf("invalid ASS timestamp %q", ts)

	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, bad
	}
	secParts := strings.Split(parts[2], ".")
	if len(secParts) != 2 {
		return 0, bad
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || int64(hours) > subtitle.MaxHours {
		return 0, bad
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, bad
	}
	seconds, err := strconv.Atoi(secParts[0])
	if err != nil || seconds < 0 || seconds > 59 {
		return 0, bad
	}
	frac := secParts[1]
	if frac == "" || len(frac) > 3 {
		return 0, bad
	}
	fracVal, err := strconv.Atoi(frac)
	if err != nil || fracVal < 0 {
		return 0, bad
	}
	// .5 -> 500ms, .50 -> 500ms, .500 -> 500ms
	for i := len(frac); i < 3; i++ {
		fracVal *= 10
	}

	return subtitle.NewTimecode(int64(hours), int64(minutes), int64(seconds), int64(fracVal)), nil
}
