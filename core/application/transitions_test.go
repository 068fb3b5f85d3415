package application

import (
	"testing"
	"time"
)

func TestIsTransitionAllowed(t *testing.T) {
	all := []Status{StatusPending, StatusAccepted, StatusRejected, StatusWithdrawn}

	allowed := map[[2]Status]bool{
		{StatusPending, StatusAccepted}:  true,
		{StatusPending, StatusRejected}:  true,
		{StatusPending, StatusWithdrawn}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]Status{from, to}]
			if got := IsTransitionAllowed(from, to); got != want {
				t.Errorf("IsTransitionAllowed(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{in: "pending", want: StatusPending},
		{in: "accepted", want: StatusAccepted},
		{in: "rejected", want: StatusRejected},
		{in: "withdrawn", want: StatusWithdrawn},
		{in: "PENDING", wantErr: true},
		{in: "hired", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestResponseDays(t *testing.T) {
	app := Application{Status: StatusPending}
	if _, ok := app.ResponseDays(); ok {
		t.Error("undecided application should have no response time")
	}

	app.CreatedAt = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	app.RespondedAt = app.CreatedAt.Add(36 * time.Hour) // 1.5 days
	days, ok := app.ResponseDays()
	if !ok || days != 1.5 {
		t.Errorf("ResponseDays() = %v, %v; want 1.5, true", days, ok)
	}
}
