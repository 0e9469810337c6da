package cli

import (
	"gocv.io/x/gocv"

	"orthoview/internal/overlay"
	"orthoview/internal/render"
	"orthoview/internal/view"
)

// drawFrame renders src in the session's current view mode.
func (s *session) drawFrame(src gocv.Mat) (gocv.Mat, error) {
	st := overlay.StyleFromConfig(s.cfg)
	if s.state.Mode() == view.ModeRectified {
		if cal := s.state.Calibration(); cal != nil {
			return render.Rectified(src, cal, st, s.cfg.MaxCanvas)
		}
	}
	slots, active := s.state.CornerSlots()
	return render.Perspective(src, s.state.Beam(), slots, active, st), nil
}
