package vectors

import "math"

// Vec3 is a simple 3D vector with float64 components.
type Vec3 struct {
	X, Y, Z float64
}

// FromLatLon returns the unit vector for a latitude/longitude pair in radians.
// X points at longitude 0 on the equator and Z at the north pole.
func FromLatLon(lat, lon float64) Vec3 {
	cl := math.Cos(lat)
	return Vec3{X: cl * math.Cos(lon), Y: cl * math.Sin(lon), Z: math.Sin(lat)}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product v · o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Norm returns the Euclidean length ||v||.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns the unit vector v / ||v||.
// If ||v|| == 0, it returns the zero vector (0,0,0).
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	inv := 1.0 / n
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}

// LatLon returns the latitude and longitude (radians) of the direction of v.
func (v Vec3) LatLon() (lat, lon float64) {
	return math.Atan2(v.Z, math.Hypot(v.X, v.Y)), math.Atan2(v.Y, v.X)
}

// IntersectUnitSphere returns the far positive t for which o + t*d lies on the
// unit sphere, or -1 when the ray misses. d must be normalized.
func IntersectUnitSphere(o, d Vec3) float64 {
	b := o.Dot(d)
	c := o.Dot(o) - 1
	disc := b*b - c
	if disc < 0 {
		return -1
	}
	t := -b + math.Sqrt(disc)
	if t <= 0 {
		return -1
	}
	return t
}
