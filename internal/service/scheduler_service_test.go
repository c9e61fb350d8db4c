package service

import (
	"context"
	"testing"
	"time"
)

func TestBuildDailySpec(t *testing.T) {
	cases := map[string]string{
		"09:00": "0 0 9 * * *",
		"23:59": "0 59 23 * * *",
		" 7:05": "0 5 7 * * *",
	}
	for in, want := range cases {
		got, err := buildDailySpec(in)
		if err != nil {
			t.Fatalf("buildDailySpec(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("buildDailySpec(%q) = %q, want %q", in, got, want)
		}
	}

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd"} {
		if _, err := buildDailySpec(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestSchedulerRegistersJobs(t *testing.T) {
	s := NewSchedulerService(time.UTC, time.Second)
	noop := func(context.Context) error { return nil }

	if _, err := s.ScheduleDaily("daily", "08:30", noop); err != nil {
		t.Fatalf("schedule daily: %v", err)
	}
	if _, err := s.ScheduleInterval("interval", time.Hour, noop); err != nil {
		t.Fatalf("schedule interval: %v", err)
	}
	if _, err := s.ScheduleInterval("never", 0, noop); err == nil {
		t.Fatalf("expected non-positive interval to be rejected")
	}
	if got := s.Entries(); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}
}

func TestWrappedJobGetsDeadline(t *testing.T) {
	s := NewSchedulerService(time.UTC, time.Second)
	var hadDeadline bool
	s.wrap("probe", func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	})()
	if !hadDeadline {
		t.Fatalf("expected job context to carry a deadline")
	}
}
