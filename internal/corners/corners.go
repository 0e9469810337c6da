// Package corners holds the four image-space points that outline a physical
// rectangle and puts them into canonical order once all are defined.
package corners

import (
	"errors"
	"sort"

	"orthoview/pkg/geometry"
)

// Canonical slot indices.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// NotEditing is the cursor value when no definition pass is active.
const NotEditing = -1

// ErrNotEditing is returned by SetCorner outside a definition pass.
var ErrNotEditing = errors.New("corner definition is not active")

// CompleteFunc receives the canonical corner list after the fourth point of
// a definition pass has been collected.
type CompleteFunc func(corners [4]geometry.PointInt)

// CornerSet stores up to four image-space corners.
type CornerSet struct {
	points [4]geometry.PointInt
	filled [4]bool
	cursor int

	onComplete CompleteFunc
}

// New creates an empty CornerSet.
func New() *CornerSet {
	return &CornerSet{cursor: NotEditing}
}

// OnComplete sets the callback invoked after canonicalization.
func (c *CornerSet) OnComplete(fn CompleteFunc) {
	c.onComplete = fn
}

// Restore replaces the stored slots without starting a definition pass.
// A nil entry leaves that slot empty; entries past the fourth are ignored.
// A fully restored set is canonicalized.
func (c *CornerSet) Restore(points []*geometry.PointInt) {
	c.points = [4]geometry.PointInt{}
	c.filled = [4]bool{}
	for i, p := range points {
		if i >= len(c.points) {
			break
		}
		if p != nil {
			c.points[i] = *p
			c.filled[i] = true
		}
	}
	c.cursor = NotEditing
	if c.IsComplete() {
		c.points = Canonicalize(c.points)
	}
}

// BeginDefinition places the cursor on the first empty slot, or on slot 0
// when every slot is filled.
func (c *CornerSet) BeginDefinition() {
	c.cursor = 0
	for i, ok := range c.filled {
		if !ok {
			c.cursor = i
			return
		}
	}
}

// Cancel leaves the definition pass; stored points are kept.
func (c *CornerSet) Cancel() {
	c.cursor = NotEditing
}

// Editing reports whether a definition pass is active.
func (c *CornerSet) Editing() bool {
	return c.cursor != NotEditing
}

// Active returns the slot that the next SetCorner call fills, or NotEditing.
func (c *CornerSet) Active() int {
	return c.cursor
}

// SetCorner assigns (x, y) to the active slot and advances the cursor. After
// slot 3 is written the set is canonicalized, the completion callback fires
// and the definition pass ends.
func (c *CornerSet) SetCorner(x, y int) error {
	if c.cursor == NotEditing {
		return ErrNotEditing
	}

	c.points[c.cursor] = geometry.PointInt{X: x, Y: y}
	c.filled[c.cursor] = true
	c.cursor++
	if c.cursor < len(c.points) {
		return nil
	}

	c.cursor = NotEditing
	c.points = Canonicalize(c.points)
	if c.onComplete != nil {
		c.onComplete(c.points)
	}
	return nil
}

// IsComplete reports whether every slot holds a point.
func (c *CornerSet) IsComplete() bool {
	for _, ok := range c.filled {
		if !ok {
			return false
		}
	}
	return true
}

// Slot returns the point in slot i and whether it is set.
func (c *CornerSet) Slot(i int) (geometry.PointInt, bool) {
	if i < 0 || i >= len(c.points) {
		return geometry.PointInt{}, false
	}
	return c.points[i], c.filled[i]
}

// Slots returns the stored points with nil for empty slots.
func (c *CornerSet) Slots() []*geometry.PointInt {
	out := make([]*geometry.PointInt, len(c.points))
	for i := range c.points {
		if c.filled[i] {
			p := c.points[i]
			out[i] = &p
		}
	}
	return out
}

// Points returns the four corners as floating-point image coordinates.
// The second result is false when the set is incomplete.
func (c *CornerSet) Points() ([4]geometry.Point2D, bool) {
	var out [4]geometry.Point2D
	if !c.IsComplete() {
		return out, false
	}
	for i, p := range c.points {
		out[i] = p.ToFloat()
	}
	return out, true
}

// Canonicalize orders four points as top-left, top-right, bottom-right,
// bottom-left. The two smallest y values form the top pair and smaller x is
// left within a pair. Both sorts are stable so ties keep their input order.
func Canonicalize(points [4]geometry.PointInt) [4]geometry.PointInt {
	sorted := append([]geometry.PointInt(nil), points[:]...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	top := sorted[:2]
	bottom := sorted[2:]
	sort.SliceStable(top, func(i, j int) bool { return top[i].X < top[j].X })
	sort.SliceStable(bottom, func(i, j int) bool { return bottom[i].X < bottom[j].X })

	return [4]geometry.PointInt{top[0], top[1], bottom[1], bottom[0]}
}
