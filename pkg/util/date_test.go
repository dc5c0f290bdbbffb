package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2025-07-18T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2025, 7, 18, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2025-07-18")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected date %v", got)
	}
	if _, ok := ParseDate("18.07.2025"); ok {
		t.Fatalf("expected parse failure")
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)
	if got := ParseDateDefault("", def); !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestDayBounds(t *testing.T) {
	from, to := DayBounds(time.Date(2025, 7, 18, 13, 45, 0, 0, time.UTC))
	if from != time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected from %v", from)
	}
	if to.Sub(from) != 24*time.Hour {
		t.Fatalf("unexpected to %v", to)
	}
}

func TestPrevTradingDaySkipsWeekend(t *testing.T) {
	// 2025-07-21 is a Monday.
	mon := time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC)
	got := PrevTradingDay(mon)
	want := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected Friday %v, got %v", want, got)
	}
}
