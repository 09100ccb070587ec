// Package zone partitions a tile grid into maximal 4-connected regions of
// equal tile type and records, for each region, the border cells a directional
// fill needs to reconstruct it.
package zone

// Zone is a maximal 4-connected region of cells sharing one tile type.
//
// Left holds the cells whose left neighbor lies outside the zone (or outside
// the map), in discovery order; LeftIndex maps each of those cells to its
// position in Left. Top and TopIndex are the same for the upward direction.
type Zone struct {
	Type      uint16
	Left      []int
	LeftIndex map[int]int
	Top       []int
	TopIndex  map[int]int
}

// Build assigns every cell of the grid to a zone and returns the zones in the
// order a row-major scan first encounters them, together with the shared cell
// map. cellMap[i] == 0 means unassigned (never the case on return); k means
// zone k-1.
func Build(tiles []uint16, width, height int) ([]*Zone, []uint16) {
	n := width * height
	cellMap := make([]uint16, n)
	var zones []*Zone
	stack := make([]int, 0, 64)

	for i := 0; i < n; i++ {
		if cellMap[i] != 0 {
			continue
		}
		id := uint16(len(zones) + 1)
		t := tiles[i]
		z := &Zone{
			Type:      t,
			LeftIndex: make(map[int]int),
			TopIndex:  make(map[int]int),
		}

		stack = append(stack[:0], i)
		for len(stack) > 0 {
			c := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if cellMap[c] != 0 {
				continue
			}
			cellMap[c] = id
			x := c % width

			// A same-type left neighbor is part of this zone; anything
			// else (different type or map edge) makes c a left-entry
			// border cell.
			if x > 0 && tiles[c-1] == t {
				stack = append(stack, c-1)
			} else if _, ok := z.LeftIndex[c]; !ok {
				z.LeftIndex[c] = len(z.Left)
				z.Left = append(z.Left, c)
			}

			if c >= width && tiles[c-width] == t {
				stack = append(stack, c-width)
			} else if _, ok := z.TopIndex[c]; !ok {
				z.TopIndex[c] = len(z.Top)
				z.Top = append(z.Top, c)
			}

			// Right and bottom neighbors extend the fill but never
			// contribute border cells.
			if x < width-1 && tiles[c+1] == t {
				stack = append(stack, c+1)
			}
			if c+width < n && tiles[c+width] == t {
				stack = append(stack, c+width)
			}
		}

		zones = append(zones, z)
	}

	return zones, cellMap
}
