package earth

import (
	"math"
	"testing"
	"time"
)

func TestSubsolarSolstice(t *testing.T) {
	// Near the June solstice the Sun sits over the Tropic of Cancer.
	ts := time.Date(2024, time.June, 20, 12, 0, 0, 0, time.UTC)
	lat, lon := Subsolar(ts)

	latDeg := lat * 180 / math.Pi
	if math.Abs(latDeg-23.44) > 0.5 {
		t.Fatalf("subsolar latitude = %.2f°, want ~23.44°", latDeg)
	}
	// At 12:00 UTC the Sun is close to the Greenwich meridian (equation of time < 4°).
	lonDeg := lon * 180 / math.Pi
	if math.Abs(lonDeg) > 4 {
		t.Fatalf("subsolar longitude = %.2f°, want near 0°", lonDeg)
	}
}

func TestSunDirectionIsUnit(t *testing.T) {
	v := SunDirectionECEF(time.Date(2025, time.March, 1, 3, 0, 0, 0, time.UTC))
	if math.Abs(v.Norm()-1) > 1e-9 {
		t.Fatalf("norm = %f, want 1", v.Norm())
	}
}

func TestDestination(t *testing.T) {
	// Due north by 10° along a meridian.
	lat, lon := Destination(0, 0.5, 10*math.Pi/180, 0)
	if math.Abs(lat-10*math.Pi/180) > 1e-9 || math.Abs(lon-0.5) > 1e-9 {
		t.Fatalf("north: got (%f,%f)", lat, lon)
	}
	// Due east on the equator.
	lat, lon = Destination(0, 0, 0.2, math.Pi/2)
	if math.Abs(lat) > 1e-9 || math.Abs(lon-0.2) > 1e-9 {
		t.Fatalf("east: got (%f,%f)", lat, lon)
	}
}

func TestWrapLongitude(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi + 0.1, -math.Pi + 0.1},
		{-math.Pi - 0.1, math.Pi - 0.1},
		{5 * math.Pi, -math.Pi},
	}
	for _, c := range cases {
		if got := WrapLongitude(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("WrapLongitude(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}
