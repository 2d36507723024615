package visit

import (
	"errors"
	"testing"
	"time"
)

func TestCanMarkNoShow(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		v    Visit
		want bool
	}{
		{"14 minutes late", Visit{Status: Approved, Scheduled: At(now.Add(-14 * time.Minute))}, false},
		{"14m59s late", Visit{Status: Approved, Scheduled: At(now.Add(-15*time.Minute + time.Second))}, false},
		{"exactly 15 minutes late", Visit{Status: Approved, Scheduled: At(now.Add(-15 * time.Minute))}, true},
		{"an hour late", Visit{Status: Approved, Scheduled: At(now.Add(-time.Hour))}, true},
		{"checked in", Visit{Status: Approved, CheckedIn: true, Scheduled: At(now.Add(-time.Hour))}, false},
		{"pending approval", Visit{Status: Pending, Scheduled: At(now.Add(-time.Hour))}, false},
		{"no schedule", Visit{Status: Approved}, false},
		{"early", Visit{Status: Approved, Scheduled: At(now.Add(time.Hour))}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.CanMarkNoShow(now); got != tt.want {
				t.Errorf("CanMarkNoShow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckInOutEligibility(t *testing.T) {
	tests := []struct {
		name        string
		v           Visit
		wantIn      bool
		wantOut     bool
		wantDisplay string
	}{
		{"approved waiting", Visit{Status: Approved}, true, false, "Pending"},
		{"pending approval", Visit{Status: Pending}, false, false, "Pending"},
		{"checked in", Visit{Status: Approved, CheckedIn: true}, false, true, "Checked In"},
		{"checked out", Visit{Status: Approved, CheckedIn: true, CheckedOut: true}, false, false, "Checked Out"},
		{"no show", Visit{Status: NoShow}, false, false, "No Show"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.CanCheckIn(); got != tt.wantIn {
				t.Errorf("CanCheckIn() = %v, want %v", got, tt.wantIn)
			}
			if got := tt.v.CanCheckOut(); got != tt.wantOut {
				t.Errorf("CanCheckOut() = %v, want %v", got, tt.wantOut)
			}
			if got := tt.v.DisplayStatus(); got != tt.wantDisplay {
				t.Errorf("DisplayStatus() = %q, want %q", got, tt.wantDisplay)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		v       Visit
		wantErr bool
	}{
		{"valid", Visit{ID: 1, Status: Approved, Type: Scheduled}, false},
		{"checked out without check-in", Visit{ID: 1, CheckedOut: true}, true},
		{"checked in no-show", Visit{ID: 1, Status: NoShow, CheckedIn: true}, true},
		{"unknown status", Visit{ID: 1, Status: "lost"}, true},
		{"unknown type", Visit{ID: 1, Type: "drive_by"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	v := Visit{ID: 9, CheckedOut: true}
	if err := v.Validate(); !errors.Is(err, ErrCheckedOutNotIn) {
		t.Errorf("err = %v, want ErrCheckedOutNotIn", err)
	}
}

func TestMinutesLate(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	v := Visit{Scheduled: At(now.Add(-20*time.Minute - 30*time.Second))}
	if got := v.MinutesLate(now); got != 20 {
		t.Errorf("MinutesLate() = %d, want 20", got)
	}
	if got := (&Visit{}).MinutesLate(now); got != 0 {
		t.Errorf("MinutesLate() without schedule = %d, want 0", got)
	}
}
