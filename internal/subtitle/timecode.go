package subtitle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// point in time within a track, in whole milliseconds
type Timecode int64

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
)

const (
	// MaxTimecode is the latest representable point in time.
	MaxTimecode Timecode = math.MaxInt64

	// MaxHours bounds the hour field so that a full HH:MM:SS.mmm value
	// still fits in a Timecode.
	MaxHours = math.MaxInt64/msPerHour - 1
)

// NewTimecode builds a Timecode from its components. Callers keep hours
// within MaxHours and the other fields within one hour.
func NewTimecode(hours, minutes, seconds, millis int64) Timecode {
	return Timecode(hours*msPerHour + minutes*msPerMinute + seconds*msPerSecond + millis)
}

// ParseTimecode parses the SubRip form HH:MM:SS,mmm.
func ParseTimecode(s string) (Timecode, error) {
	return ParseTimecodeSep(s, ',')
}

// ParseTimecodeSep parses HH:MM:SS<sep>mmm. Hours take two or more digits,
// minutes and seconds are 00-59 and milliseconds exactly three digits.
func ParseTimecodeSep(s string, sep byte) (Timecode, error) {
	bad := func(msg string) (Timecode, error) {
		return 0, &ParseError{Msg: fmt.Sprintf("invalid timecode %q: %s", s, msg)}
	}

	hms, millis, ok := strings.Cut(s, string(sep))
	if !ok {
		return bad(fmt.Sprintf("missing %q before milliseconds", sep))
	}
	parts := strings.Split(hms, ":")
	if len(parts) != 3 {
		return bad("expected HH:MM:SS")
	}
	if len(parts[0]) < 2 || len(parts[1]) != 2 || len(parts[2]) != 2 || len(millis) != 3 {
		return bad("wrong field width")
	}

	fields := [4]string{parts[0], parts[1], parts[2], millis}
	var vals [4]int64
	for i, f := range fields {
		if !isDigits(f) {
			return bad("non-numeric field")
		}
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return bad(err.Error())
		}
		vals[i] = v
	}
	if vals[0] > MaxHours {
		return bad("hours out of range")
	}
	if vals[1] > 59 {
		return bad("minutes out of range")
	}
	if vals[2] > 59 {
		return bad("seconds out of range")
	}

	return NewTimecode(vals[0], vals[1], vals[2], vals[3]), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Shift offsets t by delta milliseconds, pinning the result between zero
// and MaxTimecode.
func (t Timecode) Shift(delta int64) Timecode {
	if delta > 0 && int64(t) > math.MaxInt64-delta {
		return MaxTimecode
	}
	v := int64(t) + delta
	if v < 0 {
		return 0
	}
	return Timecode(v)
}

// String renders HH:MM:SS,mmm
func (t Timecode) String() string {
	return t.Format(',')
}

// Format renders HH:MM:SS<sep>mmm; hours widen past 99.
func (t Timecode) Format(sep byte) string {
	v := int64(t)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	hours := v / msPerHour
	minutes := (v % msPerHour) / msPerMinute
	seconds := (v % msPerMinute) / msPerSecond
	millis := v % msPerSecond

	return fmt.Sprintf("%s%02d:%02d:%02d%c%03d", sign, hours, minutes, seconds, sep, millis)
}
