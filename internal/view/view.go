// Package view implements the perspective/rectified viewing modes and the
// cursor readout shown for each.
package view

import (
	"errors"
	"fmt"

	"orthoview/internal/rectify"
	"orthoview/pkg/geometry"
)

var (
	// ErrNoPosition means the queried point has no image data under it.
	ErrNoPosition = errors.New("no position")

	// ErrModeUnavailable means rectified mode was requested without a
	// valid calibration.
	ErrModeUnavailable = errors.New("rectified mode requires a calibration")
)

// Mode selects how the frame is shown.
type Mode int

const (
	// ModePerspective shows the raw camera frame.
	ModePerspective Mode = iota
	// ModeRectified shows the frame warped by the display transform.
	ModeRectified
)

func (m Mode) String() string {
	switch m {
	case ModeRectified:
		return "rectified"
	default:
		return "perspective"
	}
}

// Readout is the position under a cursor.
type Readout struct {
	Mode Mode
	// Pixel is the queried point in the coordinates of the shown canvas.
	Pixel geometry.Point2D
	// Plate is the position in mm relative to the beam; valid when HasPlate.
	Plate    geometry.Point2D
	HasPlate bool
}

// String formats the readout for on-screen text.
func (r Readout) String() string {
	if !r.HasPlate {
		return fmt.Sprintf("image: x=%.1f, y=%.1f", r.Pixel.X, r.Pixel.Y)
	}
	if r.Mode == ModeRectified {
		return fmt.Sprintf("plate: x=%.2f mm, y=%.2f mm", r.Plate.X, r.Plate.Y)
	}
	return fmt.Sprintf("image: x=%.1f px, y=%.1f px\nplate: x=%.2f mm, y=%.2f mm",
		r.Pixel.X, r.Pixel.Y, r.Plate.X, r.Plate.Y)
}

// Viewer tracks the active mode against the current calibration.
type Viewer struct {
	mode   Mode
	cal    *rectify.Calibration
	width  int
	height int
}

// NewViewer creates a viewer in perspective mode for an image of the given size.
func NewViewer(width, height int) *Viewer {
	return &Viewer{width: width, height: height}
}

// Update installs a new calibration and image size. A nil calibration
// forces perspective mode.
func (v *Viewer) Update(cal *rectify.Calibration, width, height int) {
	v.cal = cal
	v.width = width
	v.height = height
	if cal == nil {
		v.mode = ModePerspective
	}
}

// Mode returns the active mode.
func (v *Viewer) Mode() Mode {
	return v.mode
}

// CanRectify reports whether rectified mode may be entered.
func (v *Viewer) CanRectify() bool {
	return v.cal != nil
}

// SetRectified switches modes. Entering rectified mode without a
// calibration fails with ErrModeUnavailable and leaves the mode unchanged.
func (v *Viewer) SetRectified(on bool) error {
	if !on {
		v.mode = ModePerspective
		return nil
	}
	if v.cal == nil {
		return ErrModeUnavailable
	}
	v.mode = ModeRectified
	return nil
}

// CanvasSize returns the size of the canvas shown in the active mode.
func (v *Viewer) CanvasSize() (int, int) {
	if v.mode == ModeRectified {
		return v.cal.BoundingBox.Width, v.cal.BoundingBox.Height
	}
	return v.width, v.height
}

// Query reports the position under canvas point (x, y).
func (v *Viewer) Query(x, y float64) (Readout, error) {
	w, h := v.CanvasSize()
	if x < 0 || y < 0 || x > float64(w) || y > float64(h) {
		return Readout{}, fmt.Errorf("(%.1f, %.1f) outside %dx%d canvas: %w", x, y, w, h, ErrNoPosition)
	}

	p := geometry.Point2D{X: x, Y: y}
	r := Readout{Mode: v.mode, Pixel: p}
	if v.cal == nil {
		return r, nil
	}

	r.HasPlate = true
	if v.mode == ModeRectified {
		r.Plate = v.cal.PlateFromCanvas(p)
	} else {
		r.Plate = v.cal.PlateFromImage(p)
	}
	return r, nil
}
