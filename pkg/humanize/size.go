package humanize

import "fmt"

const unit = 1024

// Size scales i to the largest binary unit that keeps it at or above 1.
func Size(i int64) (float64, string) {
	switch {
	case i < unit:
		return float64(i), "B"
	case i < unit*unit:
		return float64(i) / unit, "KB"
	case i < unit*unit*unit:
		return float64(i) / (unit * unit), "MB"
	default:
		return float64(i) / (unit * unit * unit), "GB"
	}
}

// Format renders i the way list and inspect print sizes.
func Format(i int64) string {
	sz, u := Size(i)

	if u == "B" {
		return fmt.Sprintf("%d%s", i, u)
	}

	return fmt.Sprintf("%.2f%s", sz, u)
}
