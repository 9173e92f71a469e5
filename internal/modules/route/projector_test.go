// README: Projection and ordering tests (midpoint, clamping, tie-break, idempotence).
package route

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"codrive/internal/types"
)

func pt(x, y float64) types.Point { return types.Point{Lng: x, Lat: y} }

func TestProject_MidpointOfStraightRoute(t *testing.T) {
	line := types.Polyline{pt(0, 0), pt(1000, 0)}

	got := Project(pt(500, 0), line)

	assert.InDelta(t, 500, got.Distance, 1e-9)
	assert.Equal(t, 0, got.Segment)

	ordered := OrderByProjection([]types.Point{pt(500, 0)}, line, func(p types.Point) types.Point { return p })
	stops := append(append(types.Polyline{line[0]}, ordered...), line[1])
	assert.Equal(t, types.Polyline{pt(0, 0), pt(500, 0), pt(1000, 0)}, stops)
}

func TestProject_ClampsToEndpoints(t *testing.T) {
	line := types.Polyline{pt(0, 0), pt(10, 0), pt(10, 10)}

	cases := []struct {
		name string
		p    types.Point
		want float64
	}{
		{"before start", pt(-5, 0), 0},
		{"beyond end", pt(10, 25), 20},
		{"off to the side of first segment", pt(4, -3), 4},
		{"on second segment", pt(13, 6), 16},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, ProjectionDistance(tc.p, line), 1e-9)
		})
	}
}

func TestProject_TieResolvesToFirstSegment(t *testing.T) {
	// Route goes out along y=0 and comes back along y=2. A point at y=1 is equidistant
	// to both legs; the outbound leg is scanned first.
	line := types.Polyline{pt(0, 0), pt(10, 0), pt(10, 2), pt(0, 2)}

	got := Project(pt(5, 1), line)

	assert.Equal(t, 0, got.Segment)
	assert.InDelta(t, 5, got.Distance, 1e-9)
}

func TestProject_SharedVertexUsesFirstSegment(t *testing.T) {
	line := types.Polyline{pt(0, 0), pt(10, 0), pt(20, 0)}

	got := Project(pt(10, 0), line)

	assert.Equal(t, 0, got.Segment)
	assert.InDelta(t, 10, got.Distance, 1e-9)
}

func TestProject_DegenerateSegmentProjectsToStart(t *testing.T) {
	line := types.Polyline{pt(3, 3), pt(3, 3), pt(13, 3)}

	got := Project(pt(3, 8), line)

	assert.Equal(t, pt(3, 3), got.Point)
	assert.InDelta(t, 0, got.Distance, 1e-9)
}

func TestProject_ShortPolylines(t *testing.T) {
	assert.Equal(t, 0.0, ProjectionDistance(pt(1, 1), nil))
	assert.Equal(t, 0.0, ProjectionDistance(pt(1, 1), types.Polyline{pt(5, 5)}))
}

func TestProject_RangeAndIdempotence(t *testing.T) {
	line := types.Polyline{pt(0, 0), pt(3, 4), pt(3, 10), pt(-2, 12), pt(-2, 20)}
	total := Length(line)
	queries := []types.Point{pt(-7, -7), pt(1, 1), pt(4, 7), pt(0, 11), pt(-1, 30), pt(100, 100)}

	for _, q := range queries {
		first := Project(q, line)
		assert.GreaterOrEqual(t, first.Distance, 0.0)
		assert.LessOrEqual(t, first.Distance, total+1e-9)

		again := Project(first.Point, line)
		assert.InDelta(t, first.Distance, again.Distance, 1e-9, "query %v", q)
		assert.True(t, math.Abs(first.Point.Lng-again.Point.Lng) < 1e-9 && math.Abs(first.Point.Lat-again.Point.Lat) < 1e-9)
	}
}

func TestOrderByProjection_StableOnEqualDistance(t *testing.T) {
	line := types.Polyline{pt(0, 0), pt(100, 0)}
	type stop struct {
		name string
		p    types.Point
	}
	in := []stop{
		{"far", pt(80, 5)},
		{"twin-a", pt(40, 3)},
		{"near", pt(10, -2)},
		{"twin-b", pt(40, -3)},
	}

	out := OrderByProjection(in, line, func(s stop) types.Point { return s.p })

	var names []string
	for _, s := range out {
		names = append(names, s.name)
	}
	assert.Equal(t, []string{"near", "twin-a", "twin-b", "far"}, names)
	assert.Equal(t, "far", in[0].name, "input must not be reordered")
}
