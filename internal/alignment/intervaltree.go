package alignment

import "sort"

// IntervalIndex answers overlap queries over read display spans using a
// sorted-slice approach. Reads are indexed once and never modified.
type IntervalIndex struct {
	intervals []interval
	maxEnd    []uint64 // maxEnd[i] = max(end) for intervals[:i+1]
}

type interval struct {
	start, end uint64
	read       int
}

// BuildIntervalIndex indexes the display spans of reads.
func BuildIntervalIndex(reads []Read) *IntervalIndex {
	if len(reads) == 0 {
		return &IntervalIndex{}
	}

	intervals := make([]interval, len(reads))
	for i := range reads {
		s, e := reads[i].DisplaySpan()
		intervals[i] = interval{start: s, end: e, read: i}
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	maxEnd := make([]uint64, len(intervals))
	maxEnd[0] = intervals[0].end
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = max(intervals[i].end, maxEnd[i-1])
	}

	return &IntervalIndex{intervals: intervals, maxEnd: maxEnd}
}

// Overlapping returns the indices of reads whose span intersects
// [start, end], in ascending order.
func (t *IntervalIndex) Overlapping(start, end uint64) []int {
	if len(t.intervals) == 0 || start > end {
		return nil
	}

	// Candidates are [0, hi): every interval starting at or before end.
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].start > end
	})

	var result []int
	for i := hi - 1; i >= 0; i-- {
		// maxEnd[i] covers intervals[:i+1], so nothing left can reach start.
		if t.maxEnd[i] < start {
			break
		}
		if t.intervals[i].end >= start {
			result = append(result, t.intervals[i].read)
		}
	}

	sort.Ints(result)
	return result
}
