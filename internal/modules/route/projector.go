// README: Projection of stops onto a route polyline and ordering by distance along it.
package route

import (
	"cmp"
	"math"
	"slices"

	"codrive/internal/types"
)

// Projection is the closest point of a polyline to some query point.
// Distance is measured along the polyline from its first point, in the polyline's own planar units.
type Projection struct {
	Point    types.Point
	Distance float64
	Segment  int
}

// Project treats coordinates as planar (x=Lng, y=Lat). On equal squared distance the
// earliest segment wins. A polyline with fewer than two points projects to distance 0.
func Project(p types.Point, line types.Polyline) Projection {
	switch len(line) {
	case 0:
		return Projection{Point: p}
	case 1:
		return Projection{Point: line[0]}
	}

	best := math.Inf(1)
	var out Projection
	var walked float64
	for i := 0; i+1 < len(line); i++ {
		a, b := line[i], line[i+1]
		dx, dy := b.Lng-a.Lng, b.Lat-a.Lat
		segLen2 := dx*dx + dy*dy

		t := 0.0
		if segLen2 > 0 {
			t = ((p.Lng-a.Lng)*dx + (p.Lat-a.Lat)*dy) / segLen2
			t = math.Max(0, math.Min(1, t))
		}
		q := types.Point{Lng: a.Lng + t*dx, Lat: a.Lat + t*dy}
		ex, ey := p.Lng-q.Lng, p.Lat-q.Lat
		d2 := ex*ex + ey*ey

		segLen := math.Sqrt(segLen2)
		if d2 < best {
			best = d2
			out = Projection{Point: q, Distance: walked + t*segLen, Segment: i}
		}
		walked += segLen
	}
	return out
}

// ProjectionDistance is the distance along line of p's closest point on it.
func ProjectionDistance(p types.Point, line types.Polyline) float64 {
	return Project(p, line).Distance
}

// Length is the planar length of line in coordinate units.
func Length(line types.Polyline) float64 {
	var total float64
	for i := 0; i+1 < len(line); i++ {
		dx, dy := line[i+1].Lng-line[i].Lng, line[i+1].Lat-line[i].Lat
		total += math.Sqrt(dx*dx + dy*dy)
	}
	return total
}

// OrderByProjection returns a copy of items sorted by ascending distance along line.
// Items with equal distance keep their input order.
func OrderByProjection[T any](items []T, line types.Polyline, point func(T) types.Point) []T {
	type keyed struct {
		item T
		dist float64
	}
	ks := make([]keyed, len(items))
	for i, it := range items {
		ks[i] = keyed{item: it, dist: ProjectionDistance(point(it), line)}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		return cmp.Compare(a.dist, b.dist)
	})
	out := make([]T, len(ks))
	for i, k := range ks {
		out[i] = k.item
	}
	return out
}
