package defects

import (
	"cmp"
	"slices"
)

var weights = map[Category]int{
	ExposedWiring:    3,
	DampWall:         3,
	Mold:             3,
	ElectricalWiring: 3,
	WaterLeak:        2,
	Crack:            2,
	None:             0,
}

// Weight returns the severity weight of c. Unknown categories weigh 0 and report false;
// callers log a warning and continue.
func Weight(c Category) (int, bool) {
	w, ok := weights[c]
	return w, ok
}

// MaxWeight is the highest weight in the table. Categories at this weight are high severity.
func MaxWeight() int {
	top := 0
	for _, w := range weights {
		top = max(top, w)
	}
	return top
}

// HighSeverity reports whether c carries the maximum severity weight.
func HighSeverity(c Category) bool {
	w, ok := weights[c]
	return ok && w > 0 && w == MaxWeight()
}

// Prioritize orders categories by weight descending, then by name ascending.
// The input slice is not modified.
func Prioritize(categories []Category) []Category {
	sorted := slices.Clone(categories)
	slices.SortFunc(sorted, func(a, b Category) int {
		wa, _ := Weight(a)
		wb, _ := Weight(b)
		if c := cmp.Compare(wb, wa); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return sorted
}
