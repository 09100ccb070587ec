// Package line turns zone border points into chains of 4-adjacent cells.
// Border points within a zone are connected through short intra-zone paths
// found by bounded BFS, greedily stitched into segments, and ordered by the
// 32x32 chunk containing their first cell for positional compression.
package line

import (
	"sort"

	"github.com/pspoerri/mapcodec/internal/zone"
)

const (
	// maxPathSteps bounds the BFS between border points.
	maxPathSteps = 8
	// MaxSegmentCells is the longest chain a single line record can carry.
	MaxSegmentCells = 256
	// ChunkSize is the side length of the positional-compression chunks.
	ChunkSize = 32
)

// Segment is an ordered chain of 4-adjacent cells inside one zone, tagged
// with the zone's palette index. Consecutive cells differ by exactly one of
// +1, -1, +width, -width.
type Segment struct {
	Type  uint16
	Cells []int
}

// connection is a candidate link between two border points of one zone.
// from and to index the zone's border list, with to < from so each undirected
// link is recorded once. path holds the cells strictly between the two
// endpoints, ordered from "from" towards "to".
type connection struct {
	from, to int
	path     []int
}

// builder carries per-encode scratch state shared across zones. The visited
// generation counter lets consecutive BFS runs reuse the grid-sized arrays
// without clearing them.
type builder struct {
	width   int
	cellMap []uint16
	dist    []int32
	parent  []int
	gen     []uint32
	cur     uint32
	queue   []int
}

// BuildCandidates computes the two candidate line sets for the whole map:
// one stitched from each zone's left-entry borders (for left-to-right fill)
// and one from the top-entry borders (for top-to-bottom fill). Neither set is
// chunk-ordered yet; see SortByChunk.
func BuildCandidates(zones []*zone.Zone, cellMap []uint16, width int) (l2r, t2b []Segment) {
	b := &builder{
		width:   width,
		cellMap: cellMap,
		dist:    make([]int32, len(cellMap)),
		parent:  make([]int, len(cellMap)),
		gen:     make([]uint32, len(cellMap)),
	}

	for i, z := range zones {
		id := uint16(i + 1)
		for _, cells := range b.segmentsFor(z.Left, z.LeftIndex, id) {
			l2r = append(l2r, Segment{Type: z.Type, Cells: cells})
		}
		for _, cells := range b.segmentsFor(z.Top, z.TopIndex, id) {
			t2b = append(t2b, Segment{Type: z.Type, Cells: cells})
		}
	}
	return l2r, t2b
}

// segmentsFor runs the full per-zone pipeline for one border flavor:
// short-path graph, greedy stitching, cropping, and singleton emission.
func (b *builder) segmentsFor(border []int, index map[int]int, id uint16) [][]int {
	buckets := b.connections(border, index, id)
	return stitch(border, index, buckets)
}

// connections builds the short-path graph: for every border point, a BFS
// bounded to maxPathSteps finds the earlier border points reachable inside
// the zone. Results are bucketed by path distance (1..maxPathSteps) for the
// ascending-distance stitching pass.
func (b *builder) connections(border []int, index map[int]int, id uint16) [][]connection {
	buckets := make([][]connection, maxPathSteps+1)
	for fi, p := range border {
		b.bfs(p, id)
		// queue holds the visited cells in discovery order; skip the start.
		for _, q := range b.queue[1:] {
			ti, ok := index[q]
			if !ok || ti >= fi {
				continue
			}
			d := b.dist[q]
			buckets[d] = append(buckets[d], connection{from: fi, to: ti, path: b.pathTo(q)})
		}
	}
	return buckets
}

// bfs explores the zone with 4-connectivity from start, up to maxPathSteps
// steps, leaving distances and parent links for path reconstruction.
func (b *builder) bfs(start int, id uint16) {
	b.cur++
	b.queue = append(b.queue[:0], start)
	b.gen[start] = b.cur
	b.dist[start] = 0
	b.parent[start] = -1

	for head := 0; head < len(b.queue); head++ {
		c := b.queue[head]
		d := b.dist[c]
		if d == maxPathSteps {
			continue
		}
		x := c % b.width
		if x < b.width-1 {
			b.visit(c+1, c, d+1, id)
		}
		if x > 0 {
			b.visit(c-1, c, d+1, id)
		}
		if c+b.width < len(b.cellMap) {
			b.visit(c+b.width, c, d+1, id)
		}
		if c >= b.width {
			b.visit(c-b.width, c, d+1, id)
		}
	}
}

func (b *builder) visit(c, from int, d int32, id uint16) {
	if b.gen[c] == b.cur || b.cellMap[c] != id {
		return
	}
	b.gen[c] = b.cur
	b.dist[c] = d
	b.parent[c] = from
	b.queue = append(b.queue, c)
}

// pathTo reconstructs the cells strictly between the BFS start and q,
// ordered from the start towards q. For a BFS distance d the path has d-1
// cells.
func (b *builder) pathTo(q int) []int {
	n := int(b.dist[q]) - 1
	if n <= 0 {
		return nil
	}
	path := make([]int, n)
	c := b.parent[q]
	for i := n - 1; i >= 0; i-- {
		path[i] = c
		c = b.parent[c]
	}
	return path
}

// ChunkID returns the row-major index of the 32x32 chunk containing cell.
func ChunkID(cell, width int) int {
	chunkWidth := (width + ChunkSize - 1) / ChunkSize
	x := cell % width
	y := cell / width
	return x/ChunkSize + y/ChunkSize*chunkWidth
}

// SortByChunk orders segments by the chunk of their first cell. The sort is
// stable so zone order and intra-zone stitching order break ties.
func SortByChunk(segs []Segment, width int) {
	sort.SliceStable(segs, func(i, j int) bool {
		return ChunkID(segs[i].Cells[0], width) < ChunkID(segs[j].Cells[0], width)
	})
}

// Cost estimates the emitted size in bits of a chunk-ordered candidate set:
// per segment, two bits per step, a fixed 20-bit record overhead, the type
// field, and the unary chunk advance from the previous segment's chunk.
func Cost(segs []Segment, width, typeBits int) int {
	prev := 0
	total := 0
	for _, s := range segs {
		c := ChunkID(s.Cells[0], width)
		total += (len(s.Cells)-1)*2 + 20 + typeBits + (c - prev)
		prev = c
	}
	return total
}
