package interpret

import (
	"strings"
	"testing"
	"time"

	"celestial/internal/domain/models"
	"celestial/internal/services/astro"
)

func TestHouse(t *testing.T) {
	for n := 1; n <= 12; n++ {
		h, ok := House(n)
		if !ok || h.House != n || h.Name == "" || h.Theme == "" {
			t.Fatalf("house %d: %+v", n, h)
		}
	}
	for _, n := range []int{0, 13, -1} {
		if _, ok := House(n); ok {
			t.Fatalf("house %d should not exist", n)
		}
	}
}

func TestSunAndMoonCoverEverySign(t *testing.T) {
	for _, s := range models.Signs() {
		sun, ok := Sun(s)
		if !ok || sun.Sign != s || sun.Title == "" || sun.LifePurpose == "" {
			t.Fatalf("sun %s: %+v", s, sun)
		}
		moon, ok := Moon(s)
		if !ok || moon.Sign != s {
			t.Fatalf("moon %s: %+v", s, moon)
		}
		if !strings.Contains(moon.Needs, strings.ToLower(string(s.Element()))) {
			t.Fatalf("moon %s needs text should mention its element: %q", s, moon.Needs)
		}
	}
	if _, ok := Sun(models.ZodiacSign(12)); ok {
		t.Fatalf("expected miss for invalid sign")
	}
}

func TestForChart(t *testing.T) {
	chart, err := astro.ComputeChart("Test", time.Date(1990, 6, 15, 14, 30, 0, 0, time.UTC), 40.7128, -74.0060)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	h := ForChart(chart)
	if h.Sun.Title != "The Communicator" {
		t.Fatalf("sun title = %q", h.Sun.Title)
	}
	if h.Rising != models.Leo {
		t.Fatalf("rising = %s", h.Rising)
	}
	if h.SunHouse.House != chart.Positions[models.Sun].House {
		t.Fatalf("sun house mismatch")
	}
	if h.MajorAspects == 0 || h.MajorAspects > len(chart.Aspects) {
		t.Fatalf("major aspects = %d of %d", h.MajorAspects, len(chart.Aspects))
	}
}
