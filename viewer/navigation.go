// Package viewer implements the swipe navigation of the profile viewer.
package viewer

import (
	"errors"
	"slices"
)

// SwipeThreshold is the minimum horizontal travel, in pixels, for a gesture
// to count as a swipe.
const SwipeThreshold = 50

type Tab string

const (
	TabOverview   Tab = "overview"
	TabProjects   Tab = "projects"
	TabExperience Tab = "experience"
	TabSkills     Tab = "skills"
)

var Tabs = []Tab{TabOverview, TabProjects, TabExperience, TabSkills}

var ErrUnknownTab = errors.New("unknown tab")

// SwipeTab returns the tab shown after a touch gesture from touchStart to
// touchEnd. A nil coordinate means the gesture was incomplete.
func SwipeTab(current Tab, touchStart, touchEnd *float64) (Tab, error) {
	i := slices.Index(Tabs, current)
	if i < 0 {
		return current, ErrUnknownTab
	}
	if touchStart == nil || touchEnd == nil {
		return current, nil
	}

	distance := *touchStart - *touchEnd
	switch {
	case distance > SwipeThreshold && i < len(Tabs)-1:
		return Tabs[i+1], nil
	case distance < -SwipeThreshold && i > 0:
		return Tabs[i-1], nil
	}
	return current, nil
}

// PanProject returns the project index after a pan gesture. Dragging right
// goes back, dragging left goes forward, and the index never leaves
// [0, count-1].
func PanProject(index, count int, offsetX float64) int {
	if count <= 0 {
		return 0
	}
	index = max(0, min(index, count-1))
	switch {
	case offsetX > SwipeThreshold && index > 0:
		return index - 1
	case offsetX < -SwipeThreshold && index < count-1:
		return index + 1
	}
	return index
}
