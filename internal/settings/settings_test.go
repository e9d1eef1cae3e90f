package settings

import (
	"testing"
	"time"
)

func TestValidateCutoff(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{value: "10:00"},
		{value: "09:05"},
		{value: "00:00"},
		{value: "23:59"},
		{value: "24:00", wantErr: true},
		{value: "25:00", wantErr: true},
		{value: "10:60", wantErr: true},
		{value: "9:5", wantErr: true},
		{value: "9:05", wantErr: true},
		{value: "09:5", wantErr: true},
		{value: "aa:bb", wantErr: true},
		{value: "10-00", wantErr: true},
		{value: "", wantErr: true},
		{value: "10:00 ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := ValidateCutoff(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCutoff(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestCutoffInstant(t *testing.T) {
	loc := time.FixedZone("test", 3*3600)
	now := time.Date(2026, time.March, 14, 15, 26, 53, 0, loc)
	got := CutoffInstant(now, "10:00")
	want := time.Date(2026, time.March, 14, 10, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("CutoffInstant = %v, want %v", got, want)
	}
	if got.Location() != loc {
		t.Errorf("cutoff instant location = %v, want %v", got.Location(), loc)
	}
}

func TestCutoffInstantBoundary(t *testing.T) {
	loc := time.UTC
	cutoff := CutoffInstant(time.Date(2026, time.March, 14, 0, 0, 0, 0, loc), "10:00")

	before := time.Date(2026, time.March, 14, 9, 59, 59, 0, loc)
	exact := time.Date(2026, time.March, 14, 10, 0, 0, 0, loc)
	after := time.Date(2026, time.March, 14, 10, 0, 1, 0, loc)

	if before.After(cutoff) {
		t.Error("09:59:59 should not be after cutoff")
	}
	if exact.After(cutoff) {
		t.Error("10:00:00 must compare as not-after cutoff (boundary orders)")
	}
	if !after.After(cutoff) {
		t.Error("10:00:01 must be after cutoff")
	}
}
