// Package app ties the calibration pieces together: corners, scales, beam,
// the rectification engine and the view mode, with persistence and events.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"orthoview/internal/corners"
	"orthoview/internal/motion"
	"orthoview/internal/prefs"
	"orthoview/internal/rectify"
	"orthoview/internal/view"
	"orthoview/pkg/geometry"
)

// Preference keys.
const (
	KeyCorners = "rectangle.corners"
	KeyScaleX  = "rectangle.scalex"
	KeyScaleY  = "rectangle.scaley"
	KeyBeam    = "beam.pos"
)

// ErrBeamLocked is returned when the beam is redefined in rectified mode.
var ErrBeamLocked = errors.New("beam position cannot be changed in rectified mode")

// EventType identifies different application events.
type EventType int

const (
	EventCornersChanged EventType = iota
	EventScaleChanged
	EventBeamChanged
	EventCalibrationChanged
	EventModeChanged
	EventReloaded
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds the calibration inputs and everything derived from them.
type State struct {
	mu sync.RWMutex

	prefs   *prefs.Prefs
	corners *corners.CornerSet
	scale   rectify.ScaleSpec
	beam    geometry.PointInt
	width   int
	height  int

	engine rectify.Engine
	viewer *view.Viewer

	// persistErr holds the result of the last corner save triggered from
	// the completion callback.
	persistErr error

	listeners map[EventType][]EventListener
}

// NewState restores calibration inputs from p for an image of the given size
// and derives the calibration if they are complete.
func NewState(p *prefs.Prefs, width, height int) (*State, error) {
	s := &State{
		prefs:     p,
		corners:   corners.New(),
		width:     width,
		height:    height,
		viewer:    view.NewViewer(width, height),
		listeners: make(map[EventType][]EventListener),
	}
	s.corners.OnComplete(s.persistCorners)

	if err := s.restore(); err != nil {
		return nil, err
	}
	s.recompute()
	return s, nil
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// restore reads the persisted inputs. Caller must not hold s.mu.
func (s *State) restore() error {
	p := s.store()
	var slots []*geometry.PointInt
	if _, err := p.Decode(KeyCorners, &slots); err != nil {
		return err
	}
	var beam geometry.PointInt
	if _, err := p.Decode(KeyBeam, &beam); err != nil {
		return err
	}

	s.mu.Lock()
	s.corners.Restore(slots)
	s.scale = rectify.ScaleSpec{
		X: p.Float(KeyScaleX),
		Y: p.Float(KeyScaleY),
	}
	s.beam = beam
	s.mu.Unlock()
	return nil
}

// Reload re-reads the preference file, for example after another process
// changed the calibration.
func (s *State) Reload() error {
	p, err := prefs.Load(s.store().Path())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.prefs = p
	s.mu.Unlock()

	if err := s.restore(); err != nil {
		return err
	}
	cal := s.recompute()
	s.Emit(EventReloaded, cal)
	s.Emit(EventCalibrationChanged, cal)
	return nil
}

// store returns the preference store. Reload may replace it.
func (s *State) store() *prefs.Prefs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// PrefsPath returns the preference file path.
func (s *State) PrefsPath() string {
	return s.store().Path()
}

// recompute derives the calibration from the current inputs and updates the
// viewer. During a corner definition pass the held calibration is kept.
// Failures are logged; the engine decides whether the previous calibration
// survives.
func (s *State) recompute() *rectify.Calibration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.corners.Editing() {
		// Slots mix old and new points until the pass completes.
		cal := s.engine.Current()
		s.viewer.Update(cal, s.width, s.height)
		return cal
	}

	in, err := rectify.NewInput(s.corners, s.scale, s.width, s.height, s.beam)
	if err != nil {
		s.engine.Reset()
	} else if _, err = s.engine.Recompute(in); err != nil {
		log.Printf("recompute calibration: %v", err)
	}

	cal := s.engine.Current()
	s.viewer.Update(cal, s.width, s.height)
	return cal
}

// refresh recomputes and notifies listeners.
func (s *State) refresh(event EventType, data interface{}) {
	cal := s.recompute()
	s.Emit(event, data)
	s.Emit(EventCalibrationChanged, cal)
}

// persistCorners runs from the completion callback with s.mu held.
func (s *State) persistCorners(pts [4]geometry.PointInt) {
	slots := make([]*geometry.PointInt, len(pts))
	for i := range pts {
		p := pts[i]
		slots[i] = &p
	}
	if err := s.prefs.Set(KeyCorners, slots); err != nil {
		s.persistErr = err
		return
	}
	s.persistErr = s.prefs.Save()
}

// BeginCorners starts a corner definition pass.
func (s *State) BeginCorners() {
	s.mu.Lock()
	s.corners.BeginDefinition()
	active := s.corners.Active()
	s.mu.Unlock()
	s.Emit(EventCornersChanged, active)
}

// CancelCorners ends a definition pass without changing stored corners.
func (s *State) CancelCorners() {
	s.mu.Lock()
	s.corners.Cancel()
	s.mu.Unlock()
	s.Emit(EventCornersChanged, corners.NotEditing)
}

// SetCorner stores an image point in the active slot. The fourth point
// completes the pass: corners are canonicalized, saved and the calibration
// is recomputed.
func (s *State) SetCorner(x, y int) error {
	s.mu.Lock()
	s.persistErr = nil
	if err := s.corners.SetCorner(x, y); err != nil {
		s.mu.Unlock()
		return err
	}
	done := !s.corners.Editing()
	persistErr := s.persistErr
	active := s.corners.Active()
	s.mu.Unlock()

	if !done {
		s.Emit(EventCornersChanged, active)
		return nil
	}
	s.refresh(EventCornersChanged, active)
	if persistErr != nil {
		return fmt.Errorf("save corners: %w", persistErr)
	}
	return nil
}

// ClearCorners empties every slot and removes the stored corners.
func (s *State) ClearCorners() error {
	s.mu.Lock()
	s.corners.Restore(nil)
	s.mu.Unlock()

	p := s.store()
	p.Delete(KeyCorners)
	err := p.Save()
	s.refresh(EventCornersChanged, corners.NotEditing)
	return err
}

// CornerSlots returns the stored corners (nil for empty slots) and the slot
// awaiting a point.
func (s *State) CornerSlots() ([]*geometry.PointInt, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corners.Slots(), s.corners.Active()
}

// SetScale stores the rectangle side lengths in mm.
func (s *State) SetScale(x, y float64) error {
	s.mu.Lock()
	s.scale = rectify.ScaleSpec{X: x, Y: y}
	s.mu.Unlock()

	p := s.store()
	p.SetFloat(KeyScaleX, x)
	p.SetFloat(KeyScaleY, y)
	err := p.Save()
	s.refresh(EventScaleChanged, rectify.ScaleSpec{X: x, Y: y})
	return err
}

// SetScaleX stores the X side length in mm.
func (s *State) SetScaleX(x float64) error {
	return s.SetScale(x, s.Scale().Y)
}

// SetScaleY stores the Y side length in mm.
func (s *State) SetScaleY(y float64) error {
	return s.SetScale(s.Scale().X, y)
}

// Scale returns the rectangle side lengths.
func (s *State) Scale() rectify.ScaleSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scale
}

// SetBeam stores the beam position in image pixels. It is refused while the
// rectified view is active.
func (s *State) SetBeam(p geometry.PointInt) error {
	s.mu.Lock()
	if s.viewer.Mode() == view.ModeRectified {
		s.mu.Unlock()
		return ErrBeamLocked
	}
	s.beam = p
	s.mu.Unlock()

	store := s.store()
	err := store.Set(KeyBeam, p)
	if err == nil {
		err = store.Save()
	}
	s.refresh(EventBeamChanged, p)
	return err
}

// Beam returns the beam position in image pixels.
func (s *State) Beam() geometry.PointInt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.beam
}

// BeamDefined reports whether a beam position other than the origin is stored.
func (s *State) BeamDefined() bool {
	return !s.Beam().IsZero()
}

// SetImageSize records the frame dimensions and recomputes when they change.
func (s *State) SetImageSize(width, height int) {
	s.mu.Lock()
	changed := width != s.width || height != s.height
	s.width = width
	s.height = height
	s.mu.Unlock()

	if changed {
		cal := s.recompute()
		s.Emit(EventCalibrationChanged, cal)
	}
}

// ImageSize returns the frame dimensions.
func (s *State) ImageSize() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

// SetRectified switches between perspective and rectified views.
func (s *State) SetRectified(on bool) error {
	s.mu.Lock()
	err := s.viewer.SetRectified(on)
	mode := s.viewer.Mode()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Emit(EventModeChanged, mode)
	return nil
}

// Mode returns the active view mode.
func (s *State) Mode() view.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewer.Mode()
}

// Calibration returns the current calibration, or nil.
func (s *State) Calibration() *rectify.Calibration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.Current()
}

// CanTransform reports whether a calibration is available.
func (s *State) CanTransform() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.CanTransform()
}

// Query reports the position under canvas point (x, y) in the active view.
func (s *State) Query(x, y float64) (view.Readout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewer.Query(x, y)
}

// MoveToBeam drives stage so that the plate point under canvas point (x, y)
// ends up under the beam.
func (s *State) MoveToBeam(ctx context.Context, stage motion.Stage, x, y float64) (motion.Displacement, error) {
	r, err := s.Query(x, y)
	if err != nil {
		return motion.Displacement{}, err
	}
	d, err := motion.ToBeam(r)
	if err != nil {
		return motion.Displacement{}, err
	}
	if err := stage.Move(ctx, d); err != nil {
		return d, err
	}
	return d, nil
}
