package scheduler

import (
	"testing"
	"time"
)

func TestCronTriggerDaily(t *testing.T) {
	trigger := Daily(20, 0)

	morning := time.Date(2026, 3, 10, 8, 15, 30, 0, time.UTC)
	if got := trigger.Next(morning); !got.Equal(time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected same-day fire, got %v", got)
	}

	evening := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	if got := trigger.Next(evening); !got.Equal(time.Date(2026, 3, 11, 20, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected next-day fire, got %v", got)
	}

	justBefore := time.Date(2026, 3, 10, 19, 59, 10, 0, time.UTC)
	if got := trigger.Next(justBefore); !got.Equal(time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected fire at the next matching minute, got %v", got)
	}
}

func TestCronTriggerAllFieldsNilFiresEveryMinute(t *testing.T) {
	trigger := CronTrigger{}
	after := time.Date(2026, 3, 10, 8, 15, 30, 0, time.UTC)
	if got := trigger.Next(after); !got.Equal(time.Date(2026, 3, 10, 8, 16, 0, 0, time.UTC)) {
		t.Fatalf("expected next whole minute, got %v", got)
	}
}

func TestCronTriggerWeekday(t *testing.T) {
	monday := 1
	nine := 9
	zero := 0
	trigger := CronTrigger{Weekday: &monday, Hour: &nine, Minute: &zero}

	wednesday := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	got := trigger.Next(wednesday)
	want := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected next Monday 09:00, got %v", got)
	}
	if got.Weekday() != time.Monday {
		t.Fatalf("expected a Monday, got %v", got.Weekday())
	}
}

func TestCronTriggerImpossibleSpecGivesUp(t *testing.T) {
	day := 31
	month := 2
	trigger := CronTrigger{Day: &day, Month: &month}
	if got := trigger.Next(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)); !got.IsZero() {
		t.Fatalf("expected zero time for February 31st, got %v", got)
	}
}

func TestCronTriggerString(t *testing.T) {
	if got := Daily(20, 30).String(); got != "cron minute=30 hour=20" {
		t.Fatalf("unexpected description %q", got)
	}
	if got := (CronTrigger{}).String(); got != "cron every minute" {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestIntervalTrigger(t *testing.T) {
	after := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	if got := Every(time.Hour).Next(after); !got.Equal(after.Add(time.Hour)) {
		t.Fatalf("expected fire one period later, got %v", got)
	}
	if got := Every(0).Next(after); !got.IsZero() {
		t.Fatalf("expected zero time for nonpositive period, got %v", got)
	}
	if got := Every(30 * time.Minute).String(); got != "every 30m0s" {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestElapsedFires(t *testing.T) {
	trigger := Every(10 * time.Minute)
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	fires, upcoming := elapsedFires(trigger, start, start.Add(35*time.Minute))
	if fires != 4 {
		t.Fatalf("expected 4 elapsed fires, got %d", fires)
	}
	if !upcoming.Equal(start.Add(40 * time.Minute)) {
		t.Fatalf("expected next fire at +40m, got %v", upcoming)
	}

	fires, upcoming = elapsedFires(trigger, start, start)
	if fires != 1 {
		t.Fatalf("expected the due fire to count, got %d", fires)
	}
	if !upcoming.Equal(start.Add(10 * time.Minute)) {
		t.Fatalf("expected next fire at +10m, got %v", upcoming)
	}
}
