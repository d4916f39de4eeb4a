package common

// TickSeconds is the fixed simulation step. ebiten runs Update at 60 TPS.
const TickSeconds = 1.0 / 60.0

// Gravity is the world gravity in pixels per second squared (screen-down Y).
const Gravity = 900.0

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// InverseLerp returns where v sits between a and b, clamped to [0,1]. A
// degenerate range maps to 0.
func InverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return Clamp01((v - a) / (b - a))
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}
