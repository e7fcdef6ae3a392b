package subtitle

import (
	"errors"
	"fmt"
	"math"
)

// signed offset components as given on the command line
type Offset struct {
	Hours        int64
	Minutes      int64
	Seconds      int64
	Milliseconds int64
}

// Millis resolves the components into a single millisecond delta. It fails
// when the total does not fit in an int64.
func (o Offset) Millis() (int64, error) {
	parts := []struct {
		n    int64
		unit int64
		name string
	}{
		{o.Hours, msPerHour, "hours"},
		{o.Minutes, msPerMinute, "minutes"},
		{o.Seconds, msPerSecond, "seconds"},
		{o.Milliseconds, 1, "milliseconds"},
	}

	var total int64
	for _, p := range parts {
		if p.n > math.MaxInt64/p.unit || p.n < math.MinInt64/p.unit {
			return 0, fmt.Errorf("offset %d %s out of range", p.n, p.name)
		}
		v := p.n * p.unit
		if (v > 0 && total > math.MaxInt64-v) || (v < 0 && total < math.MinInt64-v) {
			return 0, errors.New("offset out of range")
		}
		total += v
	}
	return total, nil
}

// Shift returns a copy of t with every start and end moved by delta
// milliseconds, clamped at zero. The input track is left untouched.
// A track that is not in start order is rejected with a *FormatError.
func Shift(t *Track, delta int64) (*Track, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	out := t.Clone()
	for i := range out.Cues {
		out.Cues[i].Start = out.Cues[i].Start.Shift(delta)
		out.Cues[i].End = out.Cues[i].End.Shift(delta)
	}
	return out, nil
}
