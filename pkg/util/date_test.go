package util

import (
	"testing"
	"time"
)

func TestParseBirthDateTime(t *testing.T) {
	got, err := ParseBirthDateTime("1990-06-15", "14:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(1990, 6, 15, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseBirthDateTimeSeconds(t *testing.T) {
	got, err := ParseBirthDateTime("2000-02-29", "23:59:59")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Format(time.RFC3339) != "2000-02-29T23:59:59Z" {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseBirthDateTimeInvalid(t *testing.T) {
	cases := [][2]string{
		{"1990-13-01", "10:00"},
		{"1990/06/15", "10:00"},
		{"2001-02-29", "10:00"},
		{"1990-06-15", "24:00"},
		{"1990-06-15", "9am"},
		{"", ""},
	}
	for _, c := range cases {
		if _, err := ParseBirthDateTime(c[0], c[1]); err == nil {
			t.Fatalf("expected error for %q %q", c[0], c[1])
		}
	}
}

func TestParseClock(t *testing.T) {
	d, err := ParseClock("07:05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 7*time.Hour+5*time.Minute {
		t.Fatalf("unexpected offset %v", d)
	}
}
