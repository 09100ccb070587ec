package line

// stitch greedily joins border points into segments. Connections are
// consumed in ascending-distance buckets; within a bucket, insertion order.
// Every border point accepts at most two joins, so points are either free,
// a segment endpoint, or interior and unavailable.
func stitch(border []int, index map[int]int, buckets [][]connection) [][]int {
	degree := make([]int, len(border))
	segmentOf := make([]int, len(border))
	for i := range segmentOf {
		segmentOf[i] = -1
	}
	var segments [][]int

	for d := 1; d <= maxPathSteps; d++ {
		for _, cn := range buckets[d] {
			if degree[cn.from] >= 2 || degree[cn.to] >= 2 {
				continue
			}
			a, bc := border[cn.from], border[cn.to]
			sa, sb := segmentOf[cn.from], segmentOf[cn.to]

			switch {
			case sa < 0 && sb < 0:
				seg := make([]int, 0, len(cn.path)+2)
				seg = append(seg, a)
				seg = append(seg, cn.path...)
				seg = append(seg, bc)
				segments = append(segments, seg)
				segmentOf[cn.from] = len(segments) - 1
				segmentOf[cn.to] = len(segments) - 1

			case sa < 0:
				// from is free; attach it to whichever end of to's
				// segment holds to's cell.
				seg := segments[sb]
				if seg[len(seg)-1] == bc {
					seg = append(seg, reversed(cn.path)...)
					seg = append(seg, a)
				} else {
					seg = joined([]int{a}, cn.path, seg)
				}
				segments[sb] = seg
				segmentOf[cn.from] = sb

			case sb < 0:
				seg := segments[sa]
				if seg[len(seg)-1] == a {
					seg = append(seg, cn.path...)
					seg = append(seg, bc)
				} else {
					seg = joined([]int{bc}, reversed(cn.path), seg)
				}
				segments[sa] = seg
				segmentOf[cn.to] = sa

			case sa == sb:
				// Joining two ends of the same segment would close a cycle.
				continue

			default:
				// Splice the two segments through the path: orient A to
				// end at from's cell and B to start at to's cell.
				segA, segB := segments[sa], segments[sb]
				if segA[0] == a {
					reverse(segA)
				}
				if segB[len(segB)-1] == bc {
					reverse(segB)
				}
				merged := append(segA, cn.path...)
				merged = append(merged, segB...)
				segments[sa] = merged
				segments[sb] = nil // placeholder, filtered below
				if pi, ok := index[merged[0]]; ok {
					segmentOf[pi] = sa
				}
				if pi, ok := index[merged[len(merged)-1]]; ok {
					segmentOf[pi] = sa
				}
			}

			degree[cn.from]++
			degree[cn.to]++
		}
	}

	// Crop overlong segments. A single pass over the pre-crop count: a tail
	// longer than MaxSegmentCells is not re-cropped.
	n := len(segments)
	for i := 0; i < n; i++ {
		if len(segments[i]) > MaxSegmentCells {
			tail := segments[i][MaxSegmentCells:]
			segments[i] = segments[i][:MaxSegmentCells]
			segments = append(segments, tail)
		}
	}

	// Border points nothing joined still need an anchor.
	for i, dg := range degree {
		if dg == 0 {
			segments = append(segments, []int{border[i]})
		}
	}

	kept := make([][]int, 0, len(segments))
	for _, s := range segments {
		if len(s) > 0 {
			kept = append(kept, s)
		}
	}
	return kept
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reversed(s []int) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

// joined concatenates head, mid and tail into a fresh slice.
func joined(head, mid, tail []int) []int {
	out := make([]int, 0, len(head)+len(mid)+len(tail))
	out = append(out, head...)
	out = append(out, mid...)
	out = append(out, tail...)
	return out
}
