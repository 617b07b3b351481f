package common

import "math"

const (
	BaseWidth  = 1280
	BaseHeight = 720

	// SubSteps is the number of physics steps per frame. Fast bodies (rockets)
	// can tunnel through a module with a single step.
	SubSteps = 3
	Dt       = 1.0 / 60.0
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Cap returns v limited to max.
func Cap(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}

// NormalizeAngle wraps rad into (-Pi, Pi].
func NormalizeAngle(rad float64) float64 {
	rad = math.Mod(rad, 2*math.Pi)
	if rad <= -math.Pi {
		rad += 2 * math.Pi
	} else if rad > math.Pi {
		rad -= 2 * math.Pi
	}
	return rad
}
