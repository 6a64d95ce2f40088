package feedback

import (
	"fmt"
	"strconv"
)

// Stat is one labelled aggregate card.
type Stat struct {
	Label string
	Value string
}

// Stats returns the four headline cards in display order.
func (v View) Stats() []Stat {
	fb := v.feedback
	return []Stat{
		{Label: "Total Frames", Value: strconv.Itoa(fb.TotalFrames)},
		{Label: "Shots Attempted", Value: strconv.Itoa(fb.ShotCount)},
		{Label: "Shots Made", Value: strconv.Itoa(fb.MadeCount)},
		{Label: "Accuracy", Value: fb.Accuracy.String()},
	}
}

// Summary returns the closing summary lines.
func (v View) Summary() []string {
	fb := v.feedback
	return []string{
		fmt.Sprintf("Total Analysis: %d frames processed", fb.TotalFrames),
		fmt.Sprintf("Performance: %d shots attempted, %d made (%s accuracy)", fb.ShotCount, fb.MadeCount, fb.Accuracy),
		"Processing: Frame-by-frame AI analysis completed with feedback overlay",
	}
}

// Selection tracks at most one expanded frame. Selecting the expanded frame
// again collapses it.
type Selection struct {
	index int
	set   bool
}

// Toggle selects i, or clears the selection when i is already selected.
// Indices outside the view are ignored.
func (s *Selection) Toggle(v View, i int) {
	if i < 0 || i >= v.Len() {
		return
	}
	if s.set && s.index == i {
		s.Clear()
		return
	}
	s.index = i
	s.set = true
}

// Clear drops the selection.
func (s *Selection) Clear() {
	s.index = 0
	s.set = false
}

// Selected returns the selected index.
func (s Selection) Selected() (int, bool) {
	return s.index, s.set
}

// IsSelected reports whether i is the selected index.
func (s Selection) IsSelected(i int) bool {
	return s.set && s.index == i
}
