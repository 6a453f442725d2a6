package geometry

import (
	"slices"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

const (
	// Subsets this small always become leaves
	leafThreshold = 2

	// Surface area heuristic costs, relative to one primitive intersection
	traversalCost = 0.125
	intersectCost = 1.0
)

// BVHNode is one node of a flattened bounding volume hierarchy. A leaf covers
// Shapes[Start : Start+Count]; an internal node's left child is the next node in
// the array and its right child is at index Right.
type BVHNode struct {
	Bounds core.AABB
	Start  int
	Count  int // > 0 for leaves
	Right  int
	Axis   int
}

// IsLeaf reports whether the node holds shapes directly
func (n *BVHNode) IsLeaf() bool {
	return n.Count > 0
}

// BVH is a surface-area-heuristic bounding volume hierarchy over a fixed set of shapes
type BVH struct {
	Nodes  []BVHNode
	Shapes []Shape // Reordered so every leaf covers a contiguous range
}

// BVHStats summarizes the shape of a built hierarchy
type BVHStats struct {
	Nodes       int
	Leaves      int
	MaxDepth    int
	MaxLeafSize int
}

// bvhItem is a shape's build-time record
type bvhItem struct {
	shape    Shape
	bounds   core.AABB
	centroid core.Vec3
}

// NewBVH builds a BVH over shapes. The input slice is not modified.
func NewBVH(shapes []Shape) *BVH {
	bvh := &BVH{}
	if len(shapes) == 0 {
		return bvh
	}

	items := make([]bvhItem, len(shapes))
	for i, shape := range shapes {
		bounds := shape.BoundingBox()
		items[i] = bvhItem{shape: shape, bounds: bounds, centroid: bounds.Center()}
	}

	bvh.Nodes = make([]BVHNode, 0, 2*len(shapes))
	bvh.Shapes = make([]Shape, 0, len(shapes))
	bvh.build(items)
	return bvh
}

// build appends the subtree for items and returns its node index
func (bvh *BVH) build(items []bvhItem) int {
	bounds := core.EmptyAABB()
	centroidBounds := core.EmptyAABB()
	for _, item := range items {
		bounds = bounds.Union(item.bounds)
		centroidBounds = centroidBounds.Union(core.NewAABB(item.centroid, item.centroid))
	}

	index := len(bvh.Nodes)
	bvh.Nodes = append(bvh.Nodes, BVHNode{Bounds: bounds})

	axis, split, ok := bvh.findSplit(items, bounds, centroidBounds)
	if !ok {
		bvh.Nodes[index].Start = len(bvh.Shapes)
		bvh.Nodes[index].Count = len(items)
		for _, item := range items {
			bvh.Shapes = append(bvh.Shapes, item.shape)
		}
		return index
	}

	sortByCentroid(items, axis)
	bvh.build(items[:split])
	right := bvh.build(items[split:])

	bvh.Nodes[index].Axis = axis
	bvh.Nodes[index].Right = right
	return index
}

// findSplit evaluates every sorted-centroid split position on each axis and returns the
// cheapest one, or ok=false when a leaf is cheaper
func (bvh *BVH) findSplit(items []bvhItem, bounds, centroidBounds core.AABB) (axis, split int, ok bool) {
	n := len(items)
	if n <= leafThreshold {
		return 0, 0, false
	}

	extent := centroidBounds.Size()
	if extent.X <= 0 && extent.Y <= 0 && extent.Z <= 0 {
		return 0, 0, false
	}

	parentArea := bounds.SurfaceArea()
	if parentArea <= 0 {
		// Flat bounds: fall back to a median split on the widest centroid axis
		return centroidBounds.LongestAxis(), n / 2, true
	}

	bestCost := intersectCost * float64(n)
	suffix := make([]float64, n)
	sorted := make([]bvhItem, n)

	for a := 0; a < 3; a++ {
		if extent.Axis(a) <= 0 {
			continue
		}
		copy(sorted, items)
		sortByCentroid(sorted, a)

		// suffix[i] is the area of the box around sorted[i:]
		box := core.EmptyAABB()
		for i := n - 1; i > 0; i-- {
			box = box.Union(sorted[i].bounds)
			suffix[i] = box.SurfaceArea()
		}

		box = core.EmptyAABB()
		for i := 1; i < n; i++ {
			box = box.Union(sorted[i-1].bounds)
			cost := traversalCost + intersectCost*(float64(i)*box.SurfaceArea()+float64(n-i)*suffix[i])/parentArea
			if cost < bestCost {
				bestCost = cost
				axis = a
				split = i
				ok = true
			}
		}
	}
	return axis, split, ok
}

func sortByCentroid(items []bvhItem, axis int) {
	slices.SortStableFunc(items, func(a, b bvhItem) int {
		ca, cb := a.centroid.Axis(axis), b.centroid.Axis(axis)
		switch {
		case ca < cb:
			return -1
		case ca > cb:
			return 1
		default:
			return 0
		}
	})
}

// Hit returns the nearest intersection in (tMin, tMax)
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*material.HitRecord, bool) {
	if len(bvh.Nodes) == 0 {
		return nil, false
	}

	var closest *material.HitRecord
	closestSoFar := tMax

	stack := make([]int, 0, 64)
	stack = append(stack, 0)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &bvh.Nodes[idx]

		if !node.Bounds.Hit(ray, tMin, closestSoFar) {
			continue
		}

		if node.IsLeaf() {
			for _, shape := range bvh.Shapes[node.Start : node.Start+node.Count] {
				if hit, ok := shape.Hit(ray, tMin, closestSoFar, sampler); ok {
					closestSoFar = hit.T
					closest = hit
				}
			}
			continue
		}

		stack = bvh.pushChildren(stack, idx, ray)
	}

	return closest, closest != nil
}

// AnyHit reports whether anything intersects the ray in (tMin, tMax)
func (bvh *BVH) AnyHit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) bool {
	if len(bvh.Nodes) == 0 {
		return false
	}

	stack := make([]int, 0, 64)
	stack = append(stack, 0)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &bvh.Nodes[idx]

		if !node.Bounds.Hit(ray, tMin, tMax) {
			continue
		}

		if node.IsLeaf() {
			for _, shape := range bvh.Shapes[node.Start : node.Start+node.Count] {
				if _, ok := shape.Hit(ray, tMin, tMax, sampler); ok {
					return true
				}
			}
			continue
		}

		stack = bvh.pushChildren(stack, idx, ray)
	}

	return false
}

// pushChildren pushes the far child first so the near child is visited next
func (bvh *BVH) pushChildren(stack []int, idx int, ray core.Ray) []int {
	node := &bvh.Nodes[idx]
	left := idx + 1
	if ray.Direction.Axis(node.Axis) < 0 {
		return append(stack, left, node.Right)
	}
	return append(stack, node.Right, left)
}

// BoundingBox returns the bounds of the whole hierarchy
func (bvh *BVH) BoundingBox() core.AABB {
	if len(bvh.Nodes) == 0 {
		return core.EmptyAABB()
	}
	return bvh.Nodes[0].Bounds
}

// Stats walks the hierarchy and returns its size and depth
func (bvh *BVH) Stats() BVHStats {
	var stats BVHStats
	if len(bvh.Nodes) == 0 {
		return stats
	}
	stats.Nodes = len(bvh.Nodes)

	type entry struct{ index, depth int }
	stack := []entry{{0, 0}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &bvh.Nodes[e.index]
		stats.MaxDepth = max(stats.MaxDepth, e.depth)
		if node.IsLeaf() {
			stats.Leaves++
			stats.MaxLeafSize = max(stats.MaxLeafSize, node.Count)
			continue
		}
		stack = append(stack, entry{e.index + 1, e.depth + 1}, entry{node.Right, e.depth + 1})
	}
	return stats
}
