package rangeutil

import "sort"

// Range is a half-open interval [Start, End).
type Range struct {
	Start int64
	End   int64
}

// ExtendTo returns a Range spanning from r.Start to other.End.
func (r Range) ExtendTo(other Range) Range {
	return Range{Start: r.Start, End: other.End}
}

// IsWraparound reports whether this range straddles the origin (its end
// coordinate is numerically before its start, as happens on a circular
// backbone wrapping past position 0).
func (r Range) IsWraparound() bool {
	return r.Start > r.End
}

// LeftAdjoins reports whether r's end coincides with other's start. When
// modulus is non-nil, both ends are taken mod *modulus first so adjacency
// across the origin of a circular coordinate system is detected too.
func (r Range) LeftAdjoins(other Range, modulus *int64) bool {
	selfEnd, otherStart := r.End, other.Start
	if modulus != nil {
		selfEnd %= *modulus
		otherStart %= *modulus
	}
	return selfEnd == otherStart
}

// Overlap returns the overlapping sub-ranges between r and other. A
// wraparound range is split into its pre-origin and post-origin segments
// before pairwise overlap is computed; if that produces more than one
// overlap, adjacent segments that meet at the origin are merged back into
// one, mirroring original_source's consolidate_overlaps_about_the_origin.
func (r Range) Overlap(other Range) []Range {
	selfSegments := splitAtOrigin(r)
	otherSegments := splitAtOrigin(other)

	overlaps := pairwiseOverlaps(selfSegments, otherSegments)
	if len(overlaps) > 1 {
		return consolidateAboutOrigin(overlaps)
	}
	return overlaps
}

func splitAtOrigin(r Range) []Range {
	if !r.IsWraparound() {
		return []Range{r}
	}
	return []Range{
		{Start: r.Start, End: maxInt64},
		{Start: 0, End: r.End},
	}
}

func pairwiseOverlaps(a, b []Range) []Range {
	var overlaps []Range
	for _, ra := range a {
		for _, rb := range b {
			if ra.End > rb.Start && ra.Start <= rb.End {
				overlaps = append(overlaps, Range{
					Start: maxOf(ra.Start, rb.Start),
					End:   minOf(ra.End, rb.End),
				})
			}
		}
	}
	return overlaps
}

func consolidateAboutOrigin(overlaps []Range) []Range {
	sorted := append([]Range(nil), overlaps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	first := sorted[0]
	last := sorted[len(sorted)-1]
	if first.Start == 0 && last.End == maxInt64 {
		sorted = append(sorted[1:len(sorted)-1], Range{Start: last.Start, End: first.End})
	}
	return sorted
}

const maxInt64 = int64(1<<63 - 1)

func maxOf(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minOf(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Mapping relates a sub-range on a source path to the corresponding
// sub-range on a target path, produced by comparing two paths' shared
// nodes (spec.md §4.9 / §4.11).
type Mapping struct {
	Source Range
	Target Range
}

// MergeContinuousMappings collapses runs of mappings whose source and
// target ranges both left-adjoin the next mapping's into a single
// mapping spanning the whole run. Input must already be sorted by
// Source.Start (as path.FindBlockMappings returns it).
func MergeContinuousMappings(mappings []Mapping) []Mapping {
	if len(mappings) == 0 {
		return nil
	}

	var groups [][]Mapping
	var current []Mapping
	for _, m := range mappings {
		if len(current) == 0 {
			current = append(current, m)
			continue
		}
		last := current[len(current)-1]
		if last.Source.LeftAdjoins(m.Source, nil) && last.Target.LeftAdjoins(m.Target, nil) {
			current = append(current, m)
		} else {
			groups = append(groups, current)
			current = []Mapping{m}
		}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	merged := make([]Mapping, 0, len(groups))
	for _, group := range groups {
		first, last := group[0], group[len(group)-1]
		merged = append(merged, Mapping{
			Source: first.Source.ExtendTo(last.Source),
			Target: first.Target.ExtendTo(last.Target),
		})
	}
	return merged
}
