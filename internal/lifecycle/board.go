package lifecycle

import "adhok_platform/internal/models/deliverable"

// Move takes a deliverable out of the list, restamps its status with the
// destination column and reinserts it at the destination index. The input
// is never mutated. Out-of-range source indices return an unchanged copy;
// the destination index is clamped.
func Move(list []deliverable.Deliverable, sourceIndex int, destColumn deliverable.Status, destIndex int) []deliverable.Deliverable {
	out := make([]deliverable.Deliverable, len(list))
	copy(out, list)

	if sourceIndex < 0 || sourceIndex >= len(out) {
		return out
	}

	item := out[sourceIndex]
	out = append(out[:sourceIndex], out[sourceIndex+1:]...)

	item.Status = destColumn
	if destIndex < 0 {
		destIndex = 0
	}
	if destIndex > len(out) {
		destIndex = len(out)
	}

	out = append(out[:destIndex], append([]deliverable.Deliverable{item}, out[destIndex:]...)...)
	return out
}

// GroupByStatus buckets deliverables into board columns, preserving
// relative order within each column.
func GroupByStatus(list []deliverable.Deliverable) map[deliverable.Status][]deliverable.Deliverable {
	out := make(map[deliverable.Status][]deliverable.Deliverable, len(deliverable.Columns))
	for _, status := range deliverable.Columns {
		out[status] = make([]deliverable.Deliverable, 0)
	}
	for _, d := range list {
		out[d.Status] = append(out[d.Status], d)
	}
	return out
}
