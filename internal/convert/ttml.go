package convert

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/asticode/go-astisub"

	"github.com/mgpai22/subtitools/internal/subtitle"
)

var (
	// input is already UTF-8, so any declared encoding is rewritten to match
	xmlDeclEncoding = regexp.MustCompile(`(<\?xml[^>]*?encoding\s*=\s*)["'][^"']*["']`)

	// 00:00:01.500, 00:00:01:12 (frames)
	ttmlClockTime = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2})(?:\.(\d+)|:(\d+)(?:\.\d+)?)?$`)
	// 1.5s, 500ms, 2m, 1h, 30f, 10000000t
	ttmlOffsetTime = regexp.MustCompile(`^(\d+(?:\.\d+)?)(h|ms|m|s|f|t)$`)

	ttmlTimingAttr = regexp.MustCompile(`\s(?:begin|end|dur)\s*=\s*(?:"[^"]*"|'[^']*')`)
	xmlTagName     = regexp.MustCompile(`^<([^\s/>]+)`)
)

// timing handed to astisub, which is only asked for text
const ttmlPlaceholderTiming = ` begin="00:00:00.000" end="00:00:01.000"`

func newTTMLConverter() Converter {
	return &textConverter{
		name:  "ttml",
		exts:  []string{"ttml", "dfxp", "xml"},
		parse: ParseTTML,
	}
}

// ParseTTML converts a TTML/DFXP document. Every <p> becomes a cue; <br/>
// splits display lines and a paragraph holding several text runs (one per
// speaker span) is rendered as "- " dialogue lines. Paragraphs that share a
// start time are merged into one cue.
//
// A paragraph needs begin plus end or dur. Paragraphs with missing or
// unreadable timing are reported per cue and do not affect the others.
func ParseTTML(text string, _ Options) (*Result, error) {
	text = xmlDeclEncoding.ReplaceAllString(text, `${1}"UTF-8"`)

	doc, err := scanTTML(text)
	if err != nil {
		return nil, err
	}

	var cues []subtitle.Cue
	var errs []error

	for _, p := range doc.paragraphs {
		start, end, err := p.timing(doc.clock)
		if err != nil {
			errs = append(errs, &subtitle.ConversionError{
				Format: "ttml", Cue: p.pos, Line: p.line, Err: err,
			})
			continue
		}

		lines, err := doc.paragraphLines(p)
		if err != nil {
			errs = append(errs, &subtitle.ConversionError{
				Format: "ttml", Cue: p.pos, Line: p.line, Msg: "read paragraph", Err: err,
			})
			continue
		}

		cue, err := newCue("ttml", p.pos, p.line, start, end, lines)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cues = append(cues, cue)
	}

	sortCues(cues)
	return finish(mergeSameStart(cues), errs), nil
}

type ttmlClock struct {
	frameRate float64
	tickRate  float64
}

type ttmlParagraph struct {
	pos    int
	line   int
	offset int    // byte offset of the opening tag
	raw    string // <p ...>...</p> as written
	tagLen int    // length of the opening tag within raw
	attrs  map[string]string
}

type ttmlDocument struct {
	clock      ttmlClock
	rootTag    string
	rootName   string
	head       string
	paragraphs []ttmlParagraph
}

// scanTTML walks the document once, recording the timing attributes and
// source text of every paragraph inside <body>.
func scanTTML(text string) (*ttmlDocument, error) {
	d := xml.NewDecoder(strings.NewReader(text))
	d.Entity = xml.HTMLEntity

	doc := &ttmlDocument{}
	var stack []string
	var open *ttmlParagraph
	openDepth := 0
	headStart := -1

	for {
		offset := int(d.InputOffset())
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			ce := &subtitle.ConversionError{Format: "ttml", Msg: "read document", Err: err}
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				ce.Line = se.Line
			}
			return nil, ce
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case len(stack) == 0:
				if t.Name.Local != "tt" {
					return nil, &subtitle.ConversionError{
						Format: "ttml",
						Msg:    fmt.Sprintf("root element is <%s>, not <tt>", t.Name.Local),
					}
				}
				doc.rootTag = text[offset:int(d.InputOffset())]
				if m := xmlTagName.FindStringSubmatch(doc.rootTag); m != nil {
					doc.rootName = m[1]
				}
				doc.clock = readClock(t.Attr)
			case len(stack) == 1 && t.Name.Local == "head":
				headStart = offset
			case t.Name.Local == "p" && open == nil && contains(stack, "body"):
				open = &ttmlParagraph{
					pos:    len(doc.paragraphs) + 1,
					line:   1 + strings.Count(text[:offset], "\n"),
					offset: offset,
					tagLen: int(d.InputOffset()) - offset,
					attrs:  timingAttrs(t.Attr),
				}
				openDepth = len(stack)
			}
			stack = append(stack, t.Name.Local)

		case xml.EndElement:
			stack = stack[:len(stack)-1]
			end := int(d.InputOffset())
			switch {
			case open != nil && t.Name.Local == "p" && len(stack) == openDepth:
				open.raw = text[open.offset:end]
				doc.paragraphs = append(doc.paragraphs, *open)
				open = nil
			case len(stack) == 1 && t.Name.Local == "head" && headStart >= 0:
				doc.head = text[headStart:end]
			}
		}
	}

	if doc.rootTag == "" {
		return nil, &subtitle.ConversionError{Format: "ttml", Msg: "empty document"}
	}
	return doc, nil
}

func readClock(attrs []xml.Attr) ttmlClock {
	c := ttmlClock{frameRate: 30, tickRate: 1}
	for _, a := range attrs {
		v, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
		if err != nil || v <= 0 {
			continue
		}
		switch a.Name.Local {
		case "frameRate":
			c.frameRate = v
		case "tickRate":
			c.tickRate = v
		}
	}
	return c
}

func timingAttrs(attrs []xml.Attr) map[string]string {
	out := make(map[string]string)
	for _, a := range attrs {
		switch a.Name.Local {
		case "begin", "end", "dur":
			if a.Name.Space == "" {
				out[a.Name.Local] = a.Value
			}
		}
	}
	return out
}

func contains(stack []string, name string) bool {
	for _, s := range stack {
		if s == name {
			return true
		}
	}
	return false
}

// timing resolves begin and end; when both end and dur are given the
// earlier end wins.
func (p ttmlParagraph) timing(c ttmlClock) (subtitle.Timecode, subtitle.Timecode, error) {
	rawBegin, ok := p.attrs["begin"]
	if !ok {
		return 0, 0, errors.New("paragraph has no begin time")
	}
	start, err := c.parse(rawBegin)
	if err != nil {
		return 0, 0, fmt.Errorf("begin: %w", err)
	}

	rawEnd, hasEnd := p.attrs["end"]
	rawDur, hasDur := p.attrs["dur"]
	if !hasEnd && !hasDur {
		return 0, 0, errors.New("paragraph has neither end nor dur")
	}

	end := subtitle.MaxTimecode
	if hasEnd {
		if end, err = c.parse(rawEnd); err != nil {
			return 0, 0, fmt.Errorf("end: %w", err)
		}
	}
	if hasDur {
		dur, err := c.parse(rawDur)
		if err != nil {
			return 0, 0, fmt.Errorf("dur: %w", err)
		}
		if byDur := start.Shift(int64(dur)); byDur < end {
			end = byDur
		}
	}
	return start, end, nil
}

// parse reads a TTML time expression: clock time (with optional frames)
// or an offset time in h, m, s, ms, f or t units.
func (c ttmlClock) parse(expr string) (subtitle.Timecode, error) {
	expr = strings.TrimSpace(expr)
	outOfRange := fmt.Errorf("time %q out of range", expr)

	if m := ttmlClockTime.FindStringSubmatch(expr); m != nil {
		hours, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || hours > subtitle.MaxHours {
			return 0, outOfRange
		}
		minutes, _ := strconv.ParseInt(m[2], 10, 64)
		seconds, _ := strconv.ParseInt(m[3], 10, 64)
		if minutes > 59 || seconds > 59 {
			return 0, outOfRange
		}

		var millis int64
		switch {
		case m[4] != "":
			frac := (m[4] + "00")[:3]
			millis, _ = strconv.ParseInt(frac, 10, 64)
		case m[5] != "":
			frames, err := strconv.ParseInt(m[5], 10, 64)
			if err != nil {
				return 0, outOfRange
			}
			millis = int64(math.Round(float64(frames) * 1000 / c.frameRate))
			if millis > 999 {
				return 0, fmt.Errorf("time %q: frame count exceeds frame rate %v", expr, c.frameRate)
			}
		}
		return subtitle.NewTimecode(hours, minutes, seconds, millis), nil
	}

	if m := ttmlOffsetTime.FindStringSubmatch(expr); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, outOfRange
		}
		var unit float64
		switch m[2] {
		case "h":
			unit = 3600 * 1000
		case "m":
			unit = 60 * 1000
		case "s":
			unit = 1000
		case "ms":
			unit = 1
		case "f":
			unit = 1000 / c.frameRate
		case "t":
			unit = 1000 / c.tickRate
		}
		ms := math.Round(v * unit)
		if ms >= float64(subtitle.MaxTimecode) {
			return 0, outOfRange
		}
		return subtitle.Timecode(ms), nil
	}

	return 0, fmt.Errorf("invalid time expression %q", expr)
}

// paragraphLines has astisub read one paragraph, wrapped in the document's
// root and head so style and region references resolve.
func (doc *ttmlDocument) paragraphLines(p ttmlParagraph) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("astisub: %v", r)
		}
	}()

	tag := p.raw[:p.tagLen]
	closer := ">"
	if strings.HasSuffix(tag, "/>") {
		closer = "/>"
	}
	tag = ttmlTimingAttr.ReplaceAllString(strings.TrimSuffix(tag, closer), "")

	var sb strings.Builder
	sb.WriteString(doc.rootTag)
	sb.WriteString(doc.head)
	sb.WriteString("<body><div>")
	sb.WriteString(tag)
	sb.WriteString(ttmlPlaceholderTiming)
	sb.WriteString(closer)
	sb.WriteString(p.raw[p.tagLen:])
	sb.WriteString("</div></body></")
	sb.WriteString(doc.rootName)
	sb.WriteString(">")

	subs, err := astisub.ReadFromTTML(strings.NewReader(sb.String()))
	if err != nil {
		return nil, err
	}
	if len(subs.Items) == 0 {
		return nil, nil
	}
	return ttmlLines(subs.Items[0]), nil
}

func ttmlLines(item *astisub.Item) []string {
	var lines [][]string
	dialogue := false
	for _, l := range item.Lines {
		var runs []string
		for _, li := range l.Items {
			if t := strings.TrimSpace(li.Text); t != "" {
				runs = append(runs, t)
			}
		}
		if len(runs) > 1 {
			dialogue = true
		}
		lines = append(lines, runs)
	}

	var out []string
	for _, runs := range lines {
		if dialogue {
			for _, r := range runs {
				out = append(out, "- "+r)
			}
			continue
		}
		if len(runs) > 0 {
			out = append(out, strings.Join(runs, " "))
		}
	}
	return out
}

// mergeSameStart folds consecutive cues with equal start times into one,
// ending at the latest end.
func mergeSameStart(cues []subtitle.Cue) []subtitle.Cue {
	if len(cues) < 2 {
		return cues
	}

	merged := []subtitle.Cue{cues[0]}
	for _, c := range cues[1:] {
		last := &merged[len(merged)-1]
		if c.Start != last.Start {
			merged = append(merged, c)
			continue
		}
		if c.End > last.End {
			last.End = c.End
		}
		last.Lines = append(last.Lines, c.Lines...)
	}
	return merged
}
