package geo

import "math"

// Vec is a 3D world-space coordinate or direction.
type Vec struct {
	X, Y, Z float64
}

func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec) Sub(o Vec) Vec {
	return Vec{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec) Scale(s float64) Vec {
	return Vec{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec) Dot(o Vec) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Vec) float64 {
	return a.Sub(b).Len()
}

// Normalize returns a unit-length copy of v, or the zero vector if v is
// too short to normalize.
func (v Vec) Normalize() Vec {
	l := v.Len()
	if l < 1e-9 {
		return Vec{}
	}
	return v.Scale(1 / l)
}

// AngleBetween returns the angle between two directions in degrees.
// Zero-length inputs yield 180 so degenerate directions never pass a
// field-of-view gate.
func AngleBetween(a, b Vec) float64 {
	la, lb := a.Len(), b.Len()
	if la < 1e-9 || lb < 1e-9 {
		return 180
	}
	cos := a.Dot(b) / (la * lb)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi
}

// Lerp interpolates from a toward b by t in [0,1].
func Lerp(a, b Vec, t float64) Vec {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return a.Add(b.Sub(a).Scale(t))
}
