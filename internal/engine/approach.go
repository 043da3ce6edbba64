package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// ReferenceTick is the frame length the smoothing and pour constants were tuned at.
const ReferenceTick = time.Second / 60

// Approach moves current toward target by rate of the remaining distance.
// A rate of 1 snaps, 0 holds.
func Approach(current, target, rate float64) float64 {
	return current + (target-current)*rate
}

// ApproachVec is Approach applied to a position.
func ApproachVec(current, target mgl64.Vec3, rate float64) mgl64.Vec3 {
	return current.Add(target.Sub(current).Mul(rate))
}

// ApproachColor is Approach applied per RGB channel.
func ApproachColor(current, target colorful.Color, rate float64) colorful.Color {
	return current.BlendRgb(target, rate)
}

// Easing selects how per-tick constants scale with elapsed time.
type Easing int

const (
	// EaseTime scales every constant by elapsed time, so the result does not
	// depend on how often Tick is called.
	EaseTime Easing = iota
	// EaseFrame applies each constant once per Tick regardless of dt.
	EaseFrame
)

func (e Easing) String() string {
	if e == EaseFrame {
		return "frame"
	}
	return "time"
}

// ParseEasing accepts "time" or "frame". The empty string means time.
func ParseEasing(s string) (Easing, error) {
	switch s {
	case "", "time":
		return EaseTime, nil
	case "frame":
		return EaseFrame, nil
	default:
		return EaseTime, fmt.Errorf("unknown easing %q (want \"time\" or \"frame\")", s)
	}
}

// steps converts dt into a number of reference ticks.
func (e Easing) steps(dt time.Duration) float64 {
	if e == EaseFrame {
		return 1
	}
	if dt <= 0 {
		return 0
	}
	return float64(dt) / float64(ReferenceTick)
}

// scaleRate turns a per-reference-tick smoothing factor into the factor for
// the given number of ticks: 1-(1-k)^steps.
func scaleRate(k, steps float64) float64 {
	switch {
	case steps <= 0:
		return 0
	case steps == 1:
		return k
	case k >= 1:
		return 1
	}
	return 1 - math.Pow(1-k, steps)
}
