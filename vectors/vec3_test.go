package vectors

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestFromLatLonRoundTrip(t *testing.T) {
	cases := []struct{ lat, lon float64 }{
		{0, 0},
		{math.Pi / 4, math.Pi / 3},
		{-1.2, -2.5},
		{0.3, math.Pi - 0.01},
	}
	for _, c := range cases {
		v := FromLatLon(c.lat, c.lon)
		if math.Abs(v.Norm()-1) > eps {
			t.Fatalf("norm of %v = %f, want 1", v, v.Norm())
		}
		lat, lon := v.LatLon()
		if math.Abs(lat-c.lat) > eps || math.Abs(lon-c.lon) > eps {
			t.Fatalf("round trip (%f,%f) -> (%f,%f)", c.lat, c.lon, lat, lon)
		}
	}
}

func TestIntersectUnitSphere(t *testing.T) {
	// From the center every direction hits at t = 1.
	if got := IntersectUnitSphere(Vec3{}, Vec3{Z: 1}); math.Abs(got-1) > eps {
		t.Fatalf("from center: t = %f, want 1", got)
	}

	// From below the center looking up, the far hit is the north pole.
	o := Vec3{Z: -0.5}
	d := Vec3{Z: 1}
	tHit := IntersectUnitSphere(o, d)
	p := o.Add(d.Scale(tHit))
	if math.Abs(p.Z-1) > eps {
		t.Fatalf("hit point %v, want north pole", p)
	}

	// Outside and pointing away misses.
	if got := IntersectUnitSphere(Vec3{X: 2}, Vec3{X: 1}); got != -1 {
		t.Fatalf("miss: t = %f, want -1", got)
	}
}
