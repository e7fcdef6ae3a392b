package convert

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/mgpai22/subtitools/internal/subtitle"
)

func newSAMIConverter() Converter {
	return &textConverter{
		name:  "sami",
		exts:  []string{"smi", "sami"},
		parse: ParseSAMI,
	}
}

type samiSync struct {
	pos   int
	start subtitle.Timecode
	lines []string
}

// ParseSAMI converts a SAMI document. Each <SYNC Start=ms> holds until the
// next SYNC; syncs without text only clear the screen. When opts.Class is
// set, only <P Class=...> paragraphs of that class contribute text.
func ParseSAMI(text string, opts Options) (*Result, error) {
	z := html.NewTokenizer(strings.NewReader(text))

	var syncs []*samiSync
	var errs []error
	var cur *samiSync
	var line strings.Builder
	classOK := true
	pos := 0

	flush := func() {
		if cur != nil && line.Len() > 0 {
			cur.lines = append(cur.lines, line.String())
		}
		line.Reset()
	}

loop:
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				break loop
			}
			return nil, &subtitle.ConversionError{Format: "sami", Msg: "read document", Err: z.Err()}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			attrs := readAttrs(z, hasAttr)

			switch string(name) {
			case "sync":
				flush()
				pos++
				classOK = opts.Class == ""
				raw, ok := attrs["start"]
				if !ok {
					errs = append(errs, &subtitle.ConversionError{
						Format: "sami", Cue: pos, Msg: "SYNC without Start attribute",
					})
					cur = nil
					continue
				}
				ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
				if err != nil || ms < 0 {
					errs = append(errs, &subtitle.ConversionError{
						Format: "sami", Cue: pos, Msg: fmt.Sprintf("invalid Start %q", raw),
					})
					cur = nil
					continue
				}
				cur = &samiSync{pos: pos, start: subtitle.Timecode(ms)}
				syncs = append(syncs, cur)
			case "p":
				flush()
				classOK = opts.Class == "" || strings.EqualFold(attrs["class"], opts.Class)
			case "br":
				flush()
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "p" {
				flush()
			}

		case html.TextToken:
			if cur != nil && classOK {
				line.Write(z.Text())
			}
		}
	}
	flush()

	var cues []subtitle.Cue
	for i, s := range syncs {
		if len(cleanLines(s.lines)) == 0 {
			continue
		}
		if i+1 >= len(syncs) {
			errs = append(errs, &subtitle.ConversionError{
				Format: "sami", Cue: s.pos, Msg: "no following SYNC to end the caption",
			})
			continue
		}
		cue, err := newCue("sami", s.pos, 0, s.start, syncs[i+1].start, s.lines)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cues = append(cues, cue)
	}

	return finish(cues, errs), nil
}

func readAttrs(z *html.Tokenizer, more bool) map[string]string {
	attrs := make(map[string]string)
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		attrs[string(key)] = string(val)
	}
	return attrs
}
