package particlefield

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// Connection is a transient line between particles I and J (I < J) whose
// distance is below the connection threshold. Connections are recomputed
// every frame and never stored across frames.
type Connection struct {
	I, J     int
	Distance float64
	// Opacity falls linearly from maxOpacity at distance 0 to 0 at the threshold.
	Opacity float64
}

// connectionOpacity returns the line alpha for a pair at distance d.
func connectionOpacity(d, threshold, maxOpacity float64) float64 {
	if d >= threshold {
		return 0
	}
	return (1 - d/threshold) * maxOpacity
}

// FindConnections appends every unordered pair closer than threshold to
// dst[:0] and returns it. Pairs are ordered by I then J. The scan is O(n²).
func FindConnections(ps []Particle, threshold, maxOpacity float64, dst []Connection) []Connection {
	dst = dst[:0]
	for i := 0; i < len(ps); i++ {
		for j := i + 1; j < len(ps); j++ {
			dx := ps[i].X - ps[j].X
			dy := ps[i].Y - ps[j].Y
			d := math.Sqrt(dx*dx + dy*dy)
			if d < threshold {
				dst = append(dst, Connection{
					I: i, J: j,
					Distance: d,
					Opacity:  connectionOpacity(d, threshold, maxOpacity),
				})
			}
		}
	}
	return dst
}

// findConnectionsKD returns the same set and order as FindConnections using
// a kd-tree range query per particle.
func findConnectionsKD(ps []Particle, threshold, maxOpacity float64, dst []Connection) []Connection {
	dst = dst[:0]
	if len(ps) < 2 {
		return dst
	}
	pts := make(indexedPoints, len(ps))
	for i, p := range ps {
		pts[i] = indexedPoint{x: p.X, y: p.Y, index: i}
	}
	// kdtree.New reorders pts in place; queries use the ps order.
	tree := kdtree.New(pts, false)

	sq := threshold * threshold
	for i, p := range ps {
		keep := kdtree.NewDistKeeper(sq)
		tree.NearestSet(keep, indexedPoint{x: p.X, y: p.Y, index: i})
		for _, cd := range keep.Heap {
			q, ok := cd.Comparable.(indexedPoint)
			if !ok || q.index <= i {
				continue
			}
			d := math.Sqrt(cd.Dist)
			// DistKeeper keeps d <= threshold; connections need d < threshold.
			if d >= threshold {
				continue
			}
			dst = append(dst, Connection{
				I: i, J: q.index,
				Distance: d,
				Opacity:  connectionOpacity(d, threshold, maxOpacity),
			})
		}
	}
	sort.Slice(dst, func(a, b int) bool {
		if dst[a].I != dst[b].I {
			return dst[a].I < dst[b].I
		}
		return dst[a].J < dst[b].J
	})
	return dst
}

// connectionFinder picks the discovery strategy for n particles.
func connectionFinder(index Index, n int) func([]Particle, float64, float64, []Connection) []Connection {
	switch index {
	case IndexKDTree:
		return findConnectionsKD
	case IndexPairs:
		return FindConnections
	}
	if n >= autoIndexThreshold {
		return findConnectionsKD
	}
	return FindConnections
}

// --- kd-tree adapters ---

// indexedPoint is a particle position that remembers its slot in the
// particle slice.
type indexedPoint struct {
	x, y  float64
	index int
}

func (p indexedPoint) coord(d kdtree.Dim) float64 {
	if d == 0 {
		return p.x
	}
	return p.y
}

// Compare returns the signed distance of p from c along dimension d.
func (p indexedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexedPoint)
	return p.coord(d) - q.coord(d)
}

// Dims returns 2.
func (p indexedPoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance, as kdtree expects.
func (p indexedPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(indexedPoint)
	dx, dy := p.x-q.x, p.y-q.y
	return dx*dx + dy*dy
}

type indexedPoints []indexedPoint

func (p indexedPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p indexedPoints) Len() int                      { return len(p) }
func (p indexedPoints) Pivot(d kdtree.Dim) int {
	pl := pointPlane{dim: d, points: p}
	return kdtree.Partition(pl, kdtree.MedianOfMedians(pl))
}
func (p indexedPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// pointPlane sorts indexedPoints along one dimension for pivot selection.
type pointPlane struct {
	dim    kdtree.Dim
	points indexedPoints
}

func (p pointPlane) Len() int { return len(p.points) }
func (p pointPlane) Less(i, j int) bool {
	return p.points[i].coord(p.dim) < p.points[j].coord(p.dim)
}
func (p pointPlane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p pointPlane) Slice(start, end int) kdtree.SortSlicer {
	return pointPlane{dim: p.dim, points: p.points[start:end]}
}
