// Package rectify derives the projective mapping from camera image space to
// plate space from four canonical corners and the physical side lengths of
// the rectangle they outline.
package rectify

import (
	"errors"
	"fmt"
	"math"

	"orthoview/internal/corners"
	"orthoview/pkg/geometry"
)

var (
	// ErrNotCalibrated means corners are incomplete or a scale is not positive.
	ErrNotCalibrated = errors.New("calibration incomplete")

	// ErrDegenerate means the corners do not span a proper quadrilateral.
	ErrDegenerate = errors.New("degenerate rectangle")

	// ErrImageSize means the image has no positive extent.
	ErrImageSize = errors.New("invalid image size")
)

// ScaleSpec holds the physical lengths in mm of the rectangle's X side
// (top edge) and Y side (left edge). Zero means not calibrated.
type ScaleSpec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Valid reports whether both lengths are strictly positive.
func (s ScaleSpec) Valid() bool {
	return s.X > 0 && s.Y > 0
}

// CanTransform reports whether cs and scale are enough to derive a transform.
func CanTransform(cs *corners.CornerSet, scale ScaleSpec) bool {
	return cs != nil && cs.IsComplete() && scale.Valid()
}

// Input is a snapshot of everything a recompute depends on.
type Input struct {
	Corners     [4]geometry.Point2D // canonical order, image pixels
	Scale       ScaleSpec
	ImageWidth  int
	ImageHeight int
	Beam        geometry.Point2D // image pixels
}

// NewInput snapshots a corner set. It returns ErrNotCalibrated when
// CanTransform is false.
func NewInput(cs *corners.CornerSet, scale ScaleSpec, width, height int, beam geometry.PointInt) (Input, error) {
	if !CanTransform(cs, scale) {
		return Input{}, ErrNotCalibrated
	}
	pts, _ := cs.Points()
	return Input{
		Corners:     pts,
		Scale:       scale,
		ImageWidth:  width,
		ImageHeight: height,
		Beam:        beam.ToFloat(),
	}, nil
}

// Calibration is the derived mapping state for one input snapshot.
type Calibration struct {
	Input Input

	// Zoom is the number of rectified pixels per millimeter.
	Zoom float64

	TargetWidth  int
	TargetHeight int

	// Forward maps image pixels onto the rectangle with corner 0 at the origin.
	Forward geometry.Homography
	// Inverse maps rectified coordinates back to image pixels.
	Inverse geometry.Homography
	// Display maps image pixels onto the rendering canvas of size BoundingBox.
	Display geometry.Homography

	// BoundingBox encloses the full image after Forward.
	BoundingBox geometry.RectInt

	// TargetRect holds the rectangle corners on the canvas.
	TargetRect [4]geometry.Point2D

	// BeamMapped is the beam position on the canvas.
	BeamMapped geometry.Point2D
}

// Compute derives a calibration from in. Degenerate corners yield an error
// wrapping ErrDegenerate.
func Compute(in Input) (*Calibration, error) {
	if !in.Scale.Valid() {
		return nil, ErrNotCalibrated
	}
	if in.ImageWidth <= 0 || in.ImageHeight <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageSize, in.ImageWidth, in.ImageHeight)
	}

	if !geometry.IsConvex(in.Corners[:]) {
		return nil, fmt.Errorf("corners do not form a convex quadrilateral: %w", ErrDegenerate)
	}

	zoom := float64(in.ImageWidth) / in.Scale.X
	tw := int(math.Round(in.Scale.X * zoom))
	th := int(math.Round(in.Scale.Y * zoom))

	target := rectCorners(0, 0, float64(tw), float64(th))
	forward, err := solve(in.Corners, target)
	if err != nil {
		return nil, err
	}
	inverse, err := forward.Inverse()
	if err != nil {
		return nil, wrapSolveErr(err)
	}

	w, h := float64(in.ImageWidth), float64(in.ImageHeight)
	frame := rectCorners(0, 0, w, h)
	if err := checkHorizon(forward, in.Corners, frame); err != nil {
		return nil, err
	}
	mapped := forward.ApplyAll(frame[:])
	box := geometry.BoundingRectInt(mapped)

	shift := box.Origin()
	var shifted [4]geometry.Point2D
	for i, p := range target {
		shifted[i] = p.Sub(shift)
	}
	display, err := solve(in.Corners, shifted)
	if err != nil {
		return nil, err
	}

	return &Calibration{
		Input:        in,
		Zoom:         zoom,
		TargetWidth:  tw,
		TargetHeight: th,
		Forward:      forward,
		Inverse:      inverse,
		Display:      display,
		BoundingBox:  box,
		TargetRect:   shifted,
		BeamMapped:   forward.Apply(in.Beam).Sub(shift),
	}, nil
}

// horizonEps is the smallest homogeneous scale, relative to that of the
// rectangle corners, accepted for an image corner.
const horizonEps = 1e-9

// checkHorizon rejects a transform whose vanishing line crosses or touches
// the image. The image is convex, so it is enough that every image corner
// lies on the same side of the line as the rectangle.
func checkHorizon(forward geometry.Homography, rect, frame [4]geometry.Point2D) error {
	ref := forward.W(rect[0])
	for _, p := range rect[1:] {
		if forward.W(p)*ref <= 0 {
			return fmt.Errorf("rectangle straddles the vanishing line: %w", ErrDegenerate)
		}
	}
	for _, p := range frame {
		if forward.W(p)/ref <= horizonEps {
			return fmt.Errorf("plate horizon crosses the image at (%.0f, %.0f): %w", p.X, p.Y, ErrDegenerate)
		}
	}
	return nil
}

func solve(src, dst [4]geometry.Point2D) (geometry.Homography, error) {
	h, err := geometry.ComputeHomography(src, dst)
	if err != nil {
		return geometry.Homography{}, wrapSolveErr(err)
	}
	return h, nil
}

func wrapSolveErr(err error) error {
	if errors.Is(err, geometry.ErrDegenerate) {
		return fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	return err
}

func rectCorners(x, y, w, h float64) [4]geometry.Point2D {
	return [4]geometry.Point2D{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
}

// TransformPoint applies t to p.
func TransformPoint(p geometry.Point2D, t geometry.Homography) geometry.Point2D {
	return t.Apply(p)
}

// ToCanvas maps an image pixel onto the display canvas.
func (c *Calibration) ToCanvas(p geometry.Point2D) geometry.Point2D {
	return c.Forward.Apply(p).Sub(c.BoundingBox.Origin())
}

// PlateFromImage returns the plate position in mm of an image pixel,
// relative to the beam.
func (c *Calibration) PlateFromImage(p geometry.Point2D) geometry.Point2D {
	return c.ToCanvas(p).Sub(c.BeamMapped).Scale(1 / c.Zoom)
}

// PlateFromCanvas returns the plate position in mm of a canvas pixel,
// relative to the beam.
func (c *Calibration) PlateFromCanvas(p geometry.Point2D) geometry.Point2D {
	return p.Sub(c.BeamMapped).Scale(1 / c.Zoom)
}

// ImageFromPlate returns the image pixel showing the plate position p
// (mm, relative to the beam).
func (c *Calibration) ImageFromPlate(p geometry.Point2D) geometry.Point2D {
	canvas := p.Scale(c.Zoom).Add(c.BeamMapped)
	return c.Inverse.Apply(canvas.Add(c.BoundingBox.Origin()))
}

// Grid returns canvas positions of n vertical and n horizontal grid lines
// spaced stepMM apart, anchored at the top-left rectangle corner.
func (c *Calibration) Grid(stepMM float64, n int) (xs, ys []float64) {
	if stepMM <= 0 || n <= 0 {
		return nil, nil
	}
	origin := c.TargetRect[corners.TopLeft]
	step := stepMM * c.Zoom
	xs = make([]float64, n)
	ys = make([]float64, n)
	for i := 0; i < n; i++ {
		k := float64(i - n/2)
		xs[i] = origin.X + k*step
		ys[i] = origin.Y + k*step
	}
	return xs, ys
}

// Engine keeps the last valid calibration across recomputes.
type Engine struct {
	current *Calibration
}

// Current returns the last valid calibration, or nil.
func (e *Engine) Current() *Calibration {
	return e.current
}

// CanTransform reports whether a valid calibration is held.
func (e *Engine) CanTransform() bool {
	return e.current != nil
}

// Reset drops the held calibration.
func (e *Engine) Reset() {
	e.current = nil
}

// Recompute derives a new calibration from in. Incomplete or degenerate
// input clears the engine so that callers see "cannot transform"; any other
// failure leaves the previous calibration in place.
func (e *Engine) Recompute(in Input) (*Calibration, error) {
	cal, err := Compute(in)
	if err != nil {
		if errors.Is(err, ErrDegenerate) || errors.Is(err, ErrNotCalibrated) {
			e.current = nil
		}
		return nil, err
	}
	e.current = cal
	return cal, nil
}
