package earth

import (
	"math"
	"time"

	"github.com/echoflaresat/snowglobe/vectors"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
)

const Radius = 6371.0 // Earth radius in km (spherical approximation)

// SunDirectionECEF returns the unit vector from the Earth's center towards the Sun
// in Earth-fixed coordinates at time t.
func SunDirectionECEF(t time.Time) vectors.Vec3 {
	t = t.UTC()
	jd := julian.TimeToJD(t)

	// Apparent RA/Dec of the Sun
	ra, dec := solar.ApparentEquatorial(jd)

	// Unit vector in ECI (Earth-centered inertial)
	x := dec.Cos() * ra.Cos()
	y := dec.Cos() * ra.Sin()
	z := dec.Sin()

	// Rotate ECI → ECEF by the apparent sidereal time at the instant
	gst := sidereal.Apparent(jd)
	cosGST := gst.Angle().Cos()
	sinGST := gst.Angle().Sin()

	xe := x*cosGST + y*sinGST
	ye := -x*sinGST + y*cosGST

	return vectors.Vec3{X: xe, Y: ye, Z: z}
}

// Subsolar returns the latitude and longitude (radians) where the Sun is at the zenith.
func Subsolar(t time.Time) (lat, lon float64) {
	return SunDirectionECEF(t).LatLon()
}

// Destination returns the point reached by travelling the central angle dist
// (radians) from (lat, lon) along the initial bearing (radians, clockwise from north).
func Destination(lat, lon, dist, bearing float64) (float64, float64) {
	sinLat := math.Sin(lat)*math.Cos(dist) + math.Cos(lat)*math.Sin(dist)*math.Cos(bearing)
	lat2 := math.Asin(sinLat)
	lon2 := lon + math.Atan2(
		math.Sin(bearing)*math.Sin(dist)*math.Cos(lat),
		math.Cos(dist)-math.Sin(lat)*sinLat,
	)
	return lat2, WrapLongitude(lon2)
}

// WrapLongitude folds lon (radians) into [-π, π).
func WrapLongitude(lon float64) float64 {
	lon = math.Mod(lon+math.Pi, 2*math.Pi)
	if lon < 0 {
		lon += 2 * math.Pi
	}
	return lon - math.Pi
}

// FootprintAngle converts a footprint diameter in km to its angular radius on the surface.
func FootprintAngle(diameterKm float64) float64 {
	return diameterKm / 2 / Radius
}
