package lifecycle

import (
	"math"

	"adhok_platform/internal/models/deliverable"
)

type ProgressTier string

const (
	TierComplete     ProgressTier = "complete"
	TierNearComplete ProgressTier = "near_complete"
	TierInProgress   ProgressTier = "in_progress"
)

// RemainingHours is the estimate minus logged hours, floored at zero.
func RemainingHours(d deliverable.Deliverable) float64 {
	return math.Max(0, d.EstimatedHours-d.ActualHours)
}

// ProgressRatio divides logged hours by the estimate. A zero estimate is
// a caller error: estimates are validated positive at creation, so a
// record without one cannot exist here.
func ProgressRatio(d deliverable.Deliverable) float64 {
	if d.EstimatedHours <= 0 {
		panic("lifecycle: progress ratio undefined for non-positive estimate")
	}
	return d.ActualHours / d.EstimatedHours
}

// Progress maps the ratio onto the presentation tiers used by the
// board's progress bars.
func Progress(d deliverable.Deliverable) ProgressTier {
	switch ratio := ProgressRatio(d); {
	case ratio >= 1:
		return TierComplete
	case ratio >= 0.75:
		return TierNearComplete
	default:
		return TierInProgress
	}
}
