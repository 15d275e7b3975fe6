package timestats

import (
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ColorSchema maps elapsed-time thresholds in seconds to severity
// colors. A node is styled with the color of the largest threshold
// less than or equal to its elapsed time; below the smallest
// threshold it gets no color. Each Profiler carries its own schema so
// multiple instances stay independently configurable.
type ColorSchema map[float64]lipgloss.Color

// DefaultColorSchema returns the built-in threshold table.
func DefaultColorSchema() ColorSchema {
	return ColorSchema{
		0.01: lipgloss.Color("3"),  // dark yellow
		0.05: lipgloss.Color("11"), // yellow
		0.1:  lipgloss.Color("1"),  // dark red
		0.5:  lipgloss.Color("9"),  // red
	}
}

// Color returns the severity color for an elapsed duration, and false
// when the duration falls below every threshold.
func (s ColorSchema) Color(elapsed time.Duration) (lipgloss.Color, bool) {
	thresholds := make([]float64, 0, len(s))
	for t := range s {
		thresholds = append(thresholds, t)
	}
	sort.Float64s(thresholds)

	secs := elapsed.Seconds()
	var (
		chosen lipgloss.Color
		found  bool
	)
	for _, t := range thresholds {
		if secs >= t {
			chosen = s[t]
			found = true
		}
	}
	return chosen, found
}
