package grind

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/common"
	"github.com/milk9111/grindkit/feature"
)

const (
	weightDistance  = 0.4
	weightDirection = 0.3
	weightLength    = 0.2
	weightAngle     = 0.1

	fullScoreLength = 10.0
)

// ScoreEdge rates how good e is to grind for an agent at pos moving with
// vel. Edges running against the motion score the same as perpendicular
// ones.
func ScoreEdge(pos, vel mgl64.Vec3, radius float64, e feature.GrindEdge) float64 {
	distanceScore := 0.0
	if radius > 0 {
		distanceScore = math.Max(0, 1-e.Center().Sub(pos).Len()/radius)
	}

	directionScore := 0.0
	if v, ok := common.SafeNormalize(vel); ok {
		directionScore = math.Max(0, v.Dot(e.Direction))
	}

	lengthScore := math.Min(1, e.Length/fullScoreLength)
	angleScore := 1 - common.AngleToHorizontalDeg(e.Direction)/90

	return weightDistance*distanceScore +
		weightDirection*directionScore +
		weightLength*lengthScore +
		weightAngle*angleScore
}

// SelectBestCandidate returns the highest scoring edge. Ties keep the first
// edge found.
func SelectBestCandidate(pos, vel mgl64.Vec3, radius float64, edges []feature.GrindEdge) (feature.GrindEdge, float64, bool) {
	var best feature.GrindEdge
	bestScore := math.Inf(-1)
	found := false
	for _, e := range edges {
		score := ScoreEdge(pos, vel, radius, e)
		if score > bestScore {
			best, bestScore, found = e, score, true
		}
	}
	if !found {
		return feature.GrindEdge{}, 0, false
	}
	return best, bestScore, true
}
