package deck

import "sort"

// Merge weaves injected slides into the static deck.
//
// Injected slides are ordered by InjectedAt (ties by ID) and chunked into
// groups of two; a trailing odd slide forms its own group. Each group is
// inserted contiguously at the valid position closest to len(deck)/3, where a
// position is valid when neither neighbour is an injected slide. Ties go to
// the earlier position. With no valid position the group is appended.
// Neither input is modified.
func Merge(static, injected []Slide) []Slide {
	merged := make([]Slide, len(static), len(static)+len(injected))
	copy(merged, static)
	if len(injected) == 0 {
		return merged
	}

	ordered := make([]Slide, len(injected))
	copy(ordered, injected)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].InjectedAt != ordered[j].InjectedAt {
			return ordered[i].InjectedAt < ordered[j].InjectedAt
		}
		return ordered[i].ID < ordered[j].ID
	})

	for start := 0; start < len(ordered); start += 2 {
		end := min(start+2, len(ordered))
		group := ordered[start:end]
		pos := insertPosition(merged)
		merged = insertAt(merged, pos, group)
	}
	return merged
}

func insertPosition(deck []Slide) int {
	target := len(deck) / 3
	best := -1
	bestDistance := 0
	for pos := 0; pos <= len(deck); pos++ {
		if pos > 0 && deck[pos-1].IsInjected() {
			continue
		}
		if pos < len(deck) && deck[pos].IsInjected() {
			continue
		}
		distance := pos - target
		if distance < 0 {
			distance = -distance
		}
		if best < 0 || distance < bestDistance {
			best, bestDistance = pos, distance
		}
	}
	if best < 0 {
		return len(deck)
	}
	return best
}

func insertAt(deck []Slide, pos int, group []Slide) []Slide {
	out := make([]Slide, 0, len(deck)+len(group))
	out = append(out, deck[:pos]...)
	out = append(out, group...)
	out = append(out, deck[pos:]...)
	return out
}
