// Package render draws frames with OpenCV: the rectifying warp and the
// overlay marks blended on top.
package render

import (
	"errors"
	"fmt"
	"image"

	"orthoview/internal/overlay"
	"orthoview/internal/rectify"
	"orthoview/pkg/geometry"

	"gocv.io/x/gocv"
)

// ErrCanvasTooLarge is returned when the rectified canvas exceeds the
// configured limit. A plate seen at a grazing angle can map the image to a
// very large region.
var ErrCanvasTooLarge = errors.New("rectified canvas too large")

// HomographyMat converts h to a 3x3 CV_64F matrix. The caller closes it.
func HomographyMat(h geometry.Homography) gocv.Mat {
	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m.SetDoubleAt(r, c, h[r*3+c])
		}
	}
	return m
}

// Warp resamples src onto the canvas described by cal. maxCanvas limits
// either canvas dimension; zero disables the check.
func Warp(src gocv.Mat, cal *rectify.Calibration, maxCanvas int) (gocv.Mat, error) {
	box := cal.BoundingBox
	if box.Width <= 0 || box.Height <= 0 {
		return gocv.NewMat(), fmt.Errorf("empty canvas %dx%d", box.Width, box.Height)
	}
	if maxCanvas > 0 && (box.Width > maxCanvas || box.Height > maxCanvas) {
		return gocv.NewMat(), fmt.Errorf("%w: %dx%d exceeds %d", ErrCanvasTooLarge, box.Width, box.Height, maxCanvas)
	}

	m := HomographyMat(cal.Display)
	defer m.Close()

	dst := gocv.NewMat()
	gocv.WarpPerspective(src, &dst, m, image.Pt(box.Width, box.Height))
	return dst, nil
}

// Rectified warps src and blends the plate grid, beam and corners on top.
func Rectified(src gocv.Mat, cal *rectify.Calibration, st overlay.Style, maxCanvas int) (gocv.Mat, error) {
	warped, err := Warp(src, cal, maxCanvas)
	if err != nil {
		return warped, err
	}
	defer warped.Close()

	ov := overlay.Rectified(cal, warped.Rows(), st)
	return Blend(warped, ov), nil
}

// Perspective blends the beam and rectangle corners onto the raw frame.
func Perspective(src gocv.Mat, beam geometry.PointInt, slots []*geometry.PointInt, active int, st overlay.Style) gocv.Mat {
	ov := overlay.Perspective(src.Rows(), beam, slots, active, st)
	return Blend(src, ov)
}

// Blend draws ov onto a copy of base and mixes it back with weight ov.Alpha.
func Blend(base gocv.Mat, ov overlay.Overlay) gocv.Mat {
	marks := base.Clone()
	defer marks.Close()

	for _, l := range ov.Lines {
		gocv.Line(&marks, pt(l.From), pt(l.To), l.Color, l.Thickness)
	}
	for _, c := range ov.Circles {
		gocv.CircleWithParams(&marks, pt(c.Center), c.Radius, c.Color, c.Thickness, gocv.LineAA, 0)
	}

	out := gocv.NewMat()
	gocv.AddWeighted(marks, ov.Alpha, base, 1-ov.Alpha, 0, &out)
	return out
}

// WriteImage encodes m to path; the format follows the file extension.
func WriteImage(path string, m gocv.Mat) error {
	if m.Empty() {
		return fmt.Errorf("write %s: empty image", path)
	}
	if !gocv.IMWrite(path, m) {
		return fmt.Errorf("write %s: encoder failed", path)
	}
	return nil
}

func pt(p geometry.PointInt) image.Point {
	return image.Pt(p.X, p.Y)
}
