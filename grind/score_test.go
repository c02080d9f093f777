package grind

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func straightEdge(start, end mgl64.Vec3) feature.GrindEdge {
	d := end.Sub(start)
	return feature.GrindEdge{
		Start:     start,
		End:       end,
		Direction: d.Normalize(),
		Normal:    d.Normalize().Cross(mgl64.Vec3{0, 1, 0}).Normalize(),
		Length:    d.Len(),
	}
}

func TestScoreEdgeAlignedRail(t *testing.T) {
	e := straightEdge(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, 15})
	score := ScoreEdge(mgl64.Vec3{}, mgl64.Vec3{0, 0, 10}, 20, e)
	// distance 0.5, direction 1, length 1, angle 1
	assert.InDelta(t, 0.4*0.5+0.3+0.2+0.1, score, 1e-9)

	best, bestScore, ok := SelectBestCandidate(mgl64.Vec3{}, mgl64.Vec3{0, 0, 10}, 20, []feature.GrindEdge{e})
	require.True(t, ok)
	assert.Equal(t, e, best)
	assert.InDelta(t, score, bestScore, 1e-12)
}

func TestScoreEdgeComponents(t *testing.T) {
	pos := mgl64.Vec3{}
	vel := mgl64.Vec3{0, 0, 10}

	cases := []struct {
		name string
		edge feature.GrindEdge
		want float64
	}{
		{"reverse_aligned", straightEdge(mgl64.Vec3{0, 0, 15}, mgl64.Vec3{0, 0, 5}), 0.4*0.5 + 0 + 0.2 + 0.1},
		{"sideways", straightEdge(mgl64.Vec3{-5, 0, 10}, mgl64.Vec3{5, 0, 10}), 0.4*0.5 + 0 + 0.2 + 0.1},
		{"short", straightEdge(mgl64.Vec3{0, 0, 9}, mgl64.Vec3{0, 0, 11}), 0.4*0.5 + 0.3 + 0.2*0.2 + 0.1},
		{"vertical", straightEdge(mgl64.Vec3{0, 5, 10}, mgl64.Vec3{0, 15, 10}), 0.4*(1-mgl64.Vec3{0, 10, 10}.Len()/20) + 0 + 0.2 + 0},
		{"out_of_range", straightEdge(mgl64.Vec3{0, 0, 35}, mgl64.Vec3{0, 0, 45}), 0 + 0.3 + 0.2 + 0.1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, ScoreEdge(pos, vel, 20, c.edge), 1e-9)
		})
	}
}

func TestScoreEdgeStationaryAgent(t *testing.T) {
	e := straightEdge(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, 15})
	assert.InDelta(t, 0.2+0.2+0.1, ScoreEdge(mgl64.Vec3{}, mgl64.Vec3{}, 20, e), 1e-9)
	assert.InDelta(t, 0.2+0.1+0.3, ScoreEdge(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}, 0, e), 1e-9)
}

func TestSelectBestCandidate(t *testing.T) {
	pos := mgl64.Vec3{}
	vel := mgl64.Vec3{0, 0, 10}
	near := straightEdge(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, 15})
	far := straightEdge(mgl64.Vec3{0, 0, 12}, mgl64.Vec3{0, 0, 22})
	twin := near
	twin.Index = 7

	_, _, ok := SelectBestCandidate(pos, vel, 20, nil)
	assert.False(t, ok)

	best, _, ok := SelectBestCandidate(pos, vel, 20, []feature.GrindEdge{far, near})
	require.True(t, ok)
	assert.Equal(t, near, best)

	best, _, _ = SelectBestCandidate(pos, vel, 20, []feature.GrindEdge{near, twin})
	assert.Equal(t, 0, best.Index, "ties keep the first edge")

	// deterministic for identical inputs
	a, sa, _ := SelectBestCandidate(pos, vel, 20, []feature.GrindEdge{far, near, twin})
	b, sb, _ := SelectBestCandidate(pos, vel, 20, []feature.GrindEdge{far, near, twin})
	assert.Equal(t, a, b)
	assert.Equal(t, sa, sb)
}
