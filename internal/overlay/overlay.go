// Package overlay lays out the marks drawn over a frame: the plate grid,
// the beam mark and the rectangle corners.
package overlay

import (
	"image/color"
	"math"

	"orthoview/internal/config"
	"orthoview/internal/rectify"
	"orthoview/pkg/geometry"
)

// Filled is the thickness of a filled circle.
const Filled = -1

// markFraction is the mark size relative to the canvas height.
const markFraction = 0.02

// Line is a straight segment.
type Line struct {
	From, To  geometry.PointInt
	Thickness int
	Color     color.RGBA
}

// Circle is a ring, or a disc when Thickness is Filled.
type Circle struct {
	Center    geometry.PointInt
	Radius    int
	Thickness int
	Color     color.RGBA
}

// Overlay is the set of marks for one frame.
type Overlay struct {
	Lines   []Line
	Circles []Circle
	Alpha   float64
}

// Style selects what is drawn and how.
type Style struct {
	Beam          color.RGBA
	Corner        color.RGBA
	CurrentCorner color.RGBA
	Grid          color.RGBA
	Alpha         float64
	GridStepMM    float64
	GridLines     int
	ShowBeam      bool
	ShowRect      bool
}

// StyleFromConfig builds a Style from settings.
func StyleFromConfig(cfg *config.Config) Style {
	return Style{
		Beam:          cfg.Colors.Beam.RGBA(),
		Corner:        cfg.Colors.Corner.RGBA(),
		CurrentCorner: cfg.Colors.CurrentCorner.RGBA(),
		Grid:          cfg.Colors.Grid.RGBA(),
		Alpha:         cfg.Alpha,
		GridStepMM:    cfg.GridStepMM,
		GridLines:     cfg.GridLines,
		ShowBeam:      cfg.ShowBeam,
		ShowRect:      cfg.ShowRect,
	}
}

// Rectified lays out the marks for a rectified canvas of the given height.
func Rectified(cal *rectify.Calibration, canvasHeight int, st Style) Overlay {
	ps := float64(canvasHeight) * markFraction
	ov := Overlay{Alpha: st.Alpha}

	xs, ys := cal.Grid(st.GridStepMM, st.GridLines)
	if len(xs) > 0 {
		top, bottom := px(ys[0]), px(ys[len(ys)-1])
		left, right := px(xs[0]), px(xs[len(xs)-1])
		for _, x := range xs {
			ov.Lines = append(ov.Lines, Line{
				From:      geometry.PointInt{X: px(x), Y: top},
				To:        geometry.PointInt{X: px(x), Y: bottom},
				Thickness: 2,
				Color:     st.Grid,
			})
		}
		for _, y := range ys {
			ov.Lines = append(ov.Lines, Line{
				From:      geometry.PointInt{X: left, Y: px(y)},
				To:        geometry.PointInt{X: right, Y: px(y)},
				Thickness: 2,
				Color:     st.Grid,
			})
		}
	}

	if st.ShowBeam {
		ov.Circles = append(ov.Circles, Circle{
			Center:    cal.BeamMapped.Round(),
			Radius:    size(ps * 0.75),
			Thickness: size(ps / 3),
			Color:     st.Beam,
		})
	}

	if st.ShowRect {
		for _, c := range cal.TargetRect {
			ov.Circles = append(ov.Circles, Circle{
				Center:    c.Round(),
				Radius:    size(ps / 3),
				Thickness: Filled,
				Color:     st.Corner,
			})
		}
	}
	return ov
}

// Perspective lays out the marks for the raw frame. active is the slot
// awaiting a point, or a negative value when corners are not being defined.
func Perspective(imageHeight int, beam geometry.PointInt, slots []*geometry.PointInt, active int, st Style) Overlay {
	ps := float64(imageHeight) * markFraction
	ov := Overlay{Alpha: st.Alpha}

	if st.ShowBeam {
		ov.Circles = append(ov.Circles, Circle{
			Center:    beam,
			Radius:    size(ps),
			Thickness: size(ps / 3),
			Color:     st.Beam,
		})
	}

	if st.ShowRect {
		for i, p := range slots {
			if p == nil {
				continue
			}
			c := st.Corner
			if i == active {
				c = st.CurrentCorner
			}
			ov.Circles = append(ov.Circles, Circle{
				Center:    *p,
				Radius:    size(ps / 3),
				Thickness: Filled,
				Color:     c,
			})
		}
	}
	return ov
}

func px(v float64) int {
	return int(math.Round(v))
}

// size truncates a mark dimension, keeping it drawable on small frames.
func size(v float64) int {
	return max(1, int(v))
}
