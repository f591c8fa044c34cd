package dates_test

import (
	"testing"
	"time"

	"dropwatch/internal/dates"
)

func TestTargetRendersSourceFormats(t *testing.T) {
	cases := []struct {
		name       string
		date       time.Time
		iso        string
		metacritic string
		genius     string
		wikipedia  string
		monthYear  string
	}{
		{
			name:       "double digit month and day",
			date:       time.Date(2026, time.November, 13, 0, 0, 0, 0, time.UTC),
			iso:        "2026-11-13",
			metacritic: "13 November 2026",
			genius:     "11/13",
			wikipedia:  "November 13",
			monthYear:  "November 2026",
		},
		{
			name:       "single digit month and day stay unpadded",
			date:       time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC),
			iso:        "2026-01-02",
			metacritic: "2 January 2026",
			genius:     "1/2",
			wikipedia:  "January 2",
			monthYear:  "January 2026",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := dates.NewTarget(tc.date)
			if got := target.ISO(); got != tc.iso {
				t.Errorf("ISO() = %q, want %q", got, tc.iso)
			}
			if got := target.Metacritic(); got != tc.metacritic {
				t.Errorf("Metacritic() = %q, want %q", got, tc.metacritic)
			}
			if got := target.Genius(); got != tc.genius {
				t.Errorf("Genius() = %q, want %q", got, tc.genius)
			}
			if got := target.Wikipedia(); got != tc.wikipedia {
				t.Errorf("Wikipedia() = %q, want %q", got, tc.wikipedia)
			}
			if got := target.MonthYear(); got != tc.monthYear {
				t.Errorf("MonthYear() = %q, want %q", got, tc.monthYear)
			}
		})
	}
}

func TestTomorrowAdvancesOneDay(t *testing.T) {
	now := time.Date(2026, time.August, 22, 23, 50, 0, 0, time.UTC)
	target := dates.Tomorrow(now)
	if got := target.ISO(); got != "2026-08-23" {
		t.Fatalf("Tomorrow() = %q, want 2026-08-23", got)
	}
	if target.Year() != 2026 {
		t.Fatalf("Year() = %d, want 2026", target.Year())
	}
}

func TestAddDaysCrossesMonthBoundary(t *testing.T) {
	target := dates.NewTarget(time.Date(2026, time.January, 28, 0, 0, 0, 0, time.UTC))
	end := target.AddDays(7)
	if got := end.ISO(); got != "2026-02-04" {
		t.Fatalf("AddDays(7) = %q, want 2026-02-04", got)
	}
	if got := end.Genius(); got != "2/4" {
		t.Fatalf("AddDays(7).Genius() = %q, want 2/4", got)
	}
}

func TestAcceptedCoversTargetAndEve(t *testing.T) {
	target := dates.NewTarget(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	accepted := target.Accepted()

	if !accepted.Contains("2026-03-01") {
		t.Error("accepted set must contain the target date")
	}
	if !accepted.Contains("2026-02-28") {
		t.Error("accepted set must contain the day before the target")
	}
	if accepted.Contains("2026-03-02") {
		t.Error("accepted set must not contain the day after the target")
	}
	if len(accepted) != 2 {
		t.Errorf("accepted set size = %d, want 2", len(accepted))
	}
}

func TestNewTargetTruncatesToDay(t *testing.T) {
	noon := time.Date(2026, time.July, 4, 12, 30, 45, 999, time.UTC)
	target := dates.NewTarget(noon)
	if got := target.Time(); got.Hour() != 0 || got.Minute() != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
	if target.ISO() != dates.Today(noon).ISO() {
		t.Fatal("Today must agree with NewTarget on the same instant")
	}
}

func TestParseISO(t *testing.T) {
	parsed, err := dates.ParseISO("2026-08-05")
	if err != nil {
		t.Fatalf("ParseISO returned error: %v", err)
	}
	if parsed.Year() != 2026 || parsed.Month() != time.August || parsed.Day() != 5 {
		t.Fatalf("unexpected parse result: %v", parsed)
	}

	if _, err := dates.ParseISO("2026-08"); err == nil {
		t.Fatal("expected error for month-precision value")
	}
}
