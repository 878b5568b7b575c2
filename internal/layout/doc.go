// Package layout holds the pure computations of the participant grid:
// viewport sizing, per tile stream geometry, roster projection and the
// virtualization window. Nothing in here keeps state between calls except
// the Scroller, which remembers the scroll position of one panel.
package layout
