package subtitle

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseTimecode(t *testing.T) {
	tests := []struct {
		input   string
		want    Timecode
		wantErr bool
	}{
		{input: "00:00:00,000", want: 0},
		{input: "00:00:01,000", want: 1000},
		{input: "01:02:03,004", want: 3723004},
		{input: "99:59:59,999", want: 359999999},
		{input: "100:00:00,000", want: 360000000},
		{input: "00:60:00,000", wantErr: true},
		{input: "00:00:60,000", wantErr: true},
		{input: "00:00:01.000", wantErr: true},
		{input: "00:00:01,00", wantErr: true},
		{input: "00:00:01,1000", wantErr: true},
		{input: "0:00:01,000", wantErr: true},
		{input: "00:01,000", wantErr: true},
		{input: "aa:00:01,000", wantErr: true},
		{input: "-1:00:01,000", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimecode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTimecode(%q) = %v, want error", tt.input, got)
				}
				if !errors.Is(err, ErrParse) {
					t.Errorf("expected ErrParse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimecode(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimecode(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTimecodeSep(t *testing.T) {
	got, err := ParseTimecodeSep("00:01:02.500", '.')
	if err != nil {
		t.Fatalf("ParseTimecodeSep error: %v", err)
	}
	if got != 62500 {
		t.Errorf("got %d, want 62500", got)
	}
}

func TestTimecodeStringRoundTrip(t *testing.T) {
	values := []Timecode{0, 1, 999, 1000, 59999, 60000, 3599999, 3600000, 86399999, 360000000}
	for _, v := range values {
		s := v.String()
		back, err := ParseTimecode(s)
		if err != nil {
			t.Fatalf("ParseTimecode(%q) error: %v", s, err)
		}
		if back != v {
			t.Errorf("round trip %d -> %q -> %d", v, s, back)
		}
	}
}

func TestTimecodeString(t *testing.T) {
	tests := []struct {
		tc   Timecode
		want string
	}{
		{0, "00:00:00,000"},
		{3723004, "01:02:03,004"},
		{360000000, "100:00:00,000"},
	}
	for _, tt := range tests {
		if got := tt.tc.String(); got != tt.want {
			t.Errorf("Timecode(%d).String() = %q, want %q", tt.tc, got, tt.want)
		}
	}
	if got := Timecode(62500).Format('.'); got != "00:01:02.500" {
		t.Errorf("Format('.') = %q", got)
	}
}

func TestTimecodeShift(t *testing.T) {
	tests := []struct {
		name  string
		tc    Timecode
		delta int64
		want  Timecode
	}{
		{"forward", 1000, 2000, 3000},
		{"backward", 3000, -1000, 2000},
		{"to zero", 3000, -3000, 0},
		{"clamped", 3000, -5000, 0},
		{"zero delta", 42, 0, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tc.Shift(tt.delta); got != tt.want {
				t.Errorf("Shift(%d) = %d, want %d", tt.delta, got, tt.want)
			}
		})
	}
}

func TestTimecodeShiftSaturates(t *testing.T) {
	near := MaxTimecode - 10
	if got := near.Shift(1000); got != MaxTimecode {
		t.Errorf("Shift past the top = %d, want MaxTimecode", got)
	}
	if got := Timecode(5).Shift(-1 << 62); got != 0 {
		t.Errorf("large negative shift = %d, want 0", got)
	}
}

func TestParseTimecodeHourBound(t *testing.T) {
	top := fmt.Sprintf("%d:59:59,999", int64(MaxHours))
	got, err := ParseTimecode(top)
	if err != nil {
		t.Fatalf("ParseTimecode(%q) error: %v", top, err)
	}
	if got < 0 {
		t.Fatalf("ParseTimecode(%q) = %d, wrapped negative", top, got)
	}
	if got.String() != top {
		t.Errorf("String() = %q, want %q", got.String(), top)
	}

	for _, s := range []string{
		fmt.Sprintf("%d:00:00,000", int64(MaxHours)+1),
		"9999999999999:00:00,000",
		"99999999999999999999:00:00,000",
	} {
		if _, err := ParseTimecode(s); !errors.Is(err, ErrParse) {
			t.Errorf("ParseTimecode(%q): expected ErrParse, got %v", s, err)
		}
	}
}
