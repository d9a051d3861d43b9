package checkin

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{name: "morning", in: "07:30", want: TimeOfDay(7*60 + 30)},
		{name: "with seconds", in: "16:45:12", want: TimeOfDay(16*60 + 45)},
		{name: "padded", in: " 08:00 ", want: TimeOfDay(8 * 60)},
		{name: "midnight", in: "00:00", want: 0},
		{name: "out of range", in: "25:00", wantErr: true},
		{name: "garbage", in: "soon", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeOfDay(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTimeOfDayOn(t *testing.T) {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tod, _ := ParseTimeOfDay("07:30")
	got := tod.On(date)
	want := time.Date(2025, 6, 1, 7, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("On() = %v, want %v", got, want)
	}
}

func TestTimeOfDayString(t *testing.T) {
	tod, _ := ParseTimeOfDay("07:05")
	if s := tod.String(); s != "07:05" {
		t.Errorf("String() = %q, want %q", s, "07:05")
	}
}
