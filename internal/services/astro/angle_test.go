package astro

import (
	"math"
	"testing"
	"time"
)

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{359.999999, 359.999999},
		{720.5, 0.5},
		{-30, 330},
		{-360, 0},
		{-725, 355},
		{1e-9, 1e-9},
	}
	for _, c := range cases {
		got := NormalizeAngle(c.in)
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("NormalizeAngle(%v) = %v, want %v", c.in, got, c.want)
		}
		if got < 0 || got >= 360 {
			t.Fatalf("NormalizeAngle(%v) = %v out of [0,360)", c.in, got)
		}
	}
}

func TestNormalizeAngleTinyNegative(t *testing.T) {
	got := NormalizeAngle(-1e-17)
	if got < 0 || got >= 360 {
		t.Fatalf("expected value in [0,360), got %v", got)
	}
}

func TestJulianDay(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want float64
	}{
		{"j2000 noon", time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC), 2451545.0},
		{"birth", time.Date(1990, 6, 15, 14, 30, 0, 0, time.UTC), 2448058.1041666665},
		{"february uses previous year", time.Date(1987, 2, 10, 0, 0, 0, 0, time.UTC), 2446836.5},
		{"seconds ignored", time.Date(1990, 6, 15, 14, 30, 59, 0, time.UTC), 2448058.1041666665},
	}
	for _, c := range cases {
		got := JulianDay(c.at)
		if math.Abs(got-c.want) > 1e-6 {
			t.Fatalf("%s: JulianDay = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestSeparation(t *testing.T) {
	cases := []struct {
		a, b, want float64
	}{
		{10, 20, 10},
		{350, 10, 20},
		{0, 180, 180},
		{90, 300, 150},
	}
	for _, c := range cases {
		if got := Separation(c.a, c.b); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("Separation(%v,%v) = %v, want %v", c.a, c.b, got, c.want)
		}
		if Separation(c.a, c.b) != Separation(c.b, c.a) {
			t.Fatalf("Separation not symmetric for %v,%v", c.a, c.b)
		}
	}
}
