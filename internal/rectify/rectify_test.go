package rectify

import (
	"errors"
	"math"
	"testing"

	"orthoview/internal/corners"
	"orthoview/pkg/geometry"
)

const tol = 1e-6

func near(a, b geometry.Point2D) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol
}

func scenarioInput() Input {
	return Input{
		Corners: [4]geometry.Point2D{
			{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 110, Y: 60}, {X: 10, Y: 60},
		},
		Scale:       ScaleSpec{X: 50, Y: 25},
		ImageWidth:  640,
		ImageHeight: 480,
		Beam:        geometry.Point2D{X: 60, Y: 35},
	}
}

func obliqueInput() Input {
	return Input{
		Corners: [4]geometry.Point2D{
			{X: 120, Y: 80}, {X: 520, Y: 110}, {X: 560, Y: 400}, {X: 90, Y: 370},
		},
		Scale:       ScaleSpec{X: 80, Y: 60},
		ImageWidth:  640,
		ImageHeight: 480,
		Beam:        geometry.Point2D{X: 300, Y: 250},
	}
}

func TestCanTransform(t *testing.T) {
	full := corners.New()
	full.Restore([]*geometry.PointInt{{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 110, Y: 60}, {X: 10, Y: 60}})
	partial := corners.New()
	partial.Restore([]*geometry.PointInt{{X: 10, Y: 10}, nil, {X: 110, Y: 60}, {X: 10, Y: 60}})

	tests := []struct {
		name  string
		cs    *corners.CornerSet
		scale ScaleSpec
		want  bool
	}{
		{name: "complete", cs: full, scale: ScaleSpec{X: 50, Y: 25}, want: true},
		{name: "missing corner", cs: partial, scale: ScaleSpec{X: 50, Y: 25}, want: false},
		{name: "zero x", cs: full, scale: ScaleSpec{X: 0, Y: 25}, want: false},
		{name: "negative y", cs: full, scale: ScaleSpec{X: 50, Y: -1}, want: false},
		{name: "nil set", cs: nil, scale: ScaleSpec{X: 50, Y: 25}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransform(tt.cs, tt.scale); got != tt.want {
				t.Errorf("CanTransform() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewInput_NotCalibrated(t *testing.T) {
	_, err := NewInput(corners.New(), ScaleSpec{X: 1, Y: 1}, 640, 480, geometry.PointInt{})
	if !errors.Is(err, ErrNotCalibrated) {
		t.Fatalf("expected ErrNotCalibrated, got %v", err)
	}
}

func TestCompute_Scenario(t *testing.T) {
	cal, err := Compute(scenarioInput())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if math.Abs(cal.Zoom-12.8) > 1e-12 {
		t.Errorf("Zoom = %v, want 12.8", cal.Zoom)
	}
	if cal.TargetWidth != 640 || cal.TargetHeight != 320 {
		t.Errorf("target = %dx%d, want 640x320", cal.TargetWidth, cal.TargetHeight)
	}

	wantBox := geometry.RectInt{X: -64, Y: -64, Width: 4096, Height: 3072}
	if cal.BoundingBox != wantBox {
		t.Errorf("BoundingBox = %+v, want %+v", cal.BoundingBox, wantBox)
	}

	wantRect := [4]geometry.Point2D{{X: 64, Y: 64}, {X: 704, Y: 64}, {X: 704, Y: 384}, {X: 64, Y: 384}}
	for i := range wantRect {
		if !near(cal.TargetRect[i], wantRect[i]) {
			t.Errorf("TargetRect[%d] = %v, want %v", i, cal.TargetRect[i], wantRect[i])
		}
	}

	if want := (geometry.Point2D{X: 384, Y: 224}); !near(cal.BeamMapped, want) {
		t.Errorf("BeamMapped = %v, want %v", cal.BeamMapped, want)
	}
}

func TestCompute_BeamIsPlateOrigin(t *testing.T) {
	for _, in := range []Input{scenarioInput(), obliqueInput()} {
		cal, err := Compute(in)
		if err != nil {
			t.Fatalf("Compute: %v", err)
		}
		if got := cal.PlateFromImage(in.Beam); !near(got, geometry.Point2D{}) {
			t.Errorf("PlateFromImage(beam) = %v, want origin", got)
		}
		if got := cal.PlateFromCanvas(cal.BeamMapped); !near(got, geometry.Point2D{}) {
			t.Errorf("PlateFromCanvas(beam) = %v, want origin", got)
		}
	}
}

func TestCompute_CornerFixpoints(t *testing.T) {
	for name, in := range map[string]Input{"scenario": scenarioInput(), "oblique": obliqueInput()} {
		t.Run(name, func(t *testing.T) {
			cal, err := Compute(in)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			target := rectCorners(0, 0, float64(cal.TargetWidth), float64(cal.TargetHeight))
			for i, c := range in.Corners {
				if got := TransformPoint(c, cal.Forward); !near(got, target[i]) {
					t.Errorf("Forward corner %d = %v, want %v", i, got, target[i])
				}
				if got := TransformPoint(c, cal.Display); !near(got, cal.TargetRect[i]) {
					t.Errorf("Display corner %d = %v, want %v", i, got, cal.TargetRect[i])
				}
			}
		})
	}
}

func TestCompute_RoundTrip(t *testing.T) {
	cal, err := Compute(obliqueInput())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	points := []geometry.Point2D{
		{X: 0, Y: 0}, {X: 320, Y: 240}, {X: 640, Y: 480},
		{X: -100, Y: 50}, {X: 700, Y: 600}, {X: 120, Y: 80},
	}
	for _, p := range points {
		back := TransformPoint(TransformPoint(p, cal.Forward), cal.Inverse)
		if back.Distance(p) > 1e-6 {
			t.Errorf("round trip of %v gave %v", p, back)
		}
		plate := cal.PlateFromImage(p)
		if img := cal.ImageFromPlate(plate); img.Distance(p) > 1e-6 {
			t.Errorf("plate round trip of %v gave %v", p, img)
		}
	}
}

func TestCompute_DisplayMatchesShiftedForward(t *testing.T) {
	cal, err := Compute(obliqueInput())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for _, p := range []geometry.Point2D{{X: 5, Y: 5}, {X: 333, Y: 111}, {X: 600, Y: 450}} {
		want := cal.ToCanvas(p)
		got := cal.Display.Apply(p)
		if got.Distance(want) > 1e-6 {
			t.Errorf("Display(%v) = %v, want %v", p, got, want)
		}
	}
}

func TestCompute_BoundingBoxContainment(t *testing.T) {
	for name, in := range map[string]Input{"scenario": scenarioInput(), "oblique": obliqueInput()} {
		t.Run(name, func(t *testing.T) {
			cal, err := Compute(in)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			w, h := float64(in.ImageWidth), float64(in.ImageHeight)
			frame := rectCorners(0, 0, w, h)
			mapped := cal.Forward.ApplyAll(frame[:])

			box := cal.BoundingBox.ToFloat()
			left, top := box.X, box.Y
			right, bottom := box.X+box.Width, box.Y+box.Height

			var onLeft, onTop, onRight, onBottom bool
			for _, p := range mapped {
				if p.X < left-tol || p.X > right+tol || p.Y < top-tol || p.Y > bottom+tol {
					t.Errorf("mapped corner %v outside box %+v", p, box)
				}
				onLeft = onLeft || p.X-left < 1
				onTop = onTop || p.Y-top < 1
				onRight = onRight || right-p.X < 1
				onBottom = onBottom || bottom-p.Y < 1
			}
			if !onLeft || !onTop || !onRight || !onBottom {
				t.Errorf("box %+v not tight: left=%v top=%v right=%v bottom=%v",
					box, onLeft, onTop, onRight, onBottom)
			}
		})
	}
}

func TestCompute_Degenerate(t *testing.T) {
	in := scenarioInput()
	in.Corners = [4]geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 5, Y: 40}}
	if _, err := Compute(in); !errors.Is(err, ErrDegenerate) {
		t.Fatalf("expected ErrDegenerate for collinear corners, got %v", err)
	}

	in.Corners = [4]geometry.Point2D{{X: 10, Y: 10}, {X: 10, Y: 10}, {X: 110, Y: 60}, {X: 10, Y: 60}}
	if _, err := Compute(in); !errors.Is(err, ErrDegenerate) {
		t.Fatalf("expected ErrDegenerate for duplicate corners, got %v", err)
	}
}

func TestCompute_HorizonCrossesImage(t *testing.T) {
	// A steep trapezoid: the plate's vanishing line runs through the top
	// of the frame, so the upper image corners fold back onto the plate.
	in := Input{
		Corners: [4]geometry.Point2D{
			{X: 300, Y: 100}, {X: 340, Y: 100}, {X: 640, Y: 480}, {X: 0, Y: 480},
		},
		Scale:       ScaleSpec{X: 50, Y: 50},
		ImageWidth:  640,
		ImageHeight: 480,
		Beam:        geometry.Point2D{X: 320, Y: 300},
	}
	if cal, err := Compute(in); !errors.Is(err, ErrDegenerate) {
		if cal != nil {
			t.Fatalf("expected ErrDegenerate, got box %+v beam %v", cal.BoundingBox, cal.BeamMapped)
		}
		t.Fatalf("expected ErrDegenerate, got %v", err)
	}

	var e Engine
	if _, err := e.Recompute(scenarioInput()); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Recompute(in); !errors.Is(err, ErrDegenerate) {
		t.Fatalf("Recompute = %v", err)
	}
	if e.CanTransform() {
		t.Error("horizon crossing should clear the engine")
	}
}

func TestCompute_CanvasHasNoNegativeCoordinates(t *testing.T) {
	for name, in := range map[string]Input{"scenario": scenarioInput(), "oblique": obliqueInput()} {
		t.Run(name, func(t *testing.T) {
			cal, err := Compute(in)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			w, h := float64(cal.BoundingBox.Width), float64(cal.BoundingBox.Height)
			for i, c := range cal.TargetRect {
				if c.X < -tol || c.Y < -tol || c.X > w+tol || c.Y > h+tol {
					t.Errorf("rectangle corner %d = %v outside %vx%v canvas", i, c, w, h)
				}
			}
			b := cal.BeamMapped
			if b.X < -tol || b.Y < -tol || b.X > w+tol || b.Y > h+tol {
				t.Errorf("beam %v outside %vx%v canvas", b, w, h)
			}
		})
	}
}

func TestCompute_ConcaveCorners(t *testing.T) {
	in := scenarioInput()
	in.Corners = [4]geometry.Point2D{{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 60, Y: 20}, {X: 10, Y: 60}}
	if _, err := Compute(in); !errors.Is(err, ErrDegenerate) {
		t.Fatalf("expected ErrDegenerate for a concave quadrilateral, got %v", err)
	}
}

func TestCompute_InvalidInput(t *testing.T) {
	in := scenarioInput()
	in.ImageWidth = 0
	if _, err := Compute(in); !errors.Is(err, ErrImageSize) {
		t.Errorf("expected ErrImageSize, got %v", err)
	}

	in = scenarioInput()
	in.Scale.Y = 0
	if _, err := Compute(in); !errors.Is(err, ErrNotCalibrated) {
		t.Errorf("expected ErrNotCalibrated, got %v", err)
	}
}

func TestEngine_Recompute(t *testing.T) {
	var e Engine
	if e.CanTransform() {
		t.Fatal("new engine should not transform")
	}

	cal, err := e.Recompute(scenarioInput())
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if e.Current() != cal {
		t.Fatal("engine should hold the new calibration")
	}

	in := scenarioInput()
	in.ImageHeight = -1
	if _, err := e.Recompute(in); err == nil {
		t.Fatal("expected error for invalid image size")
	}
	if e.Current() != cal {
		t.Error("non-geometric failure must keep the previous calibration")
	}

	in = scenarioInput()
	in.Corners[1] = in.Corners[0]
	if _, err := e.Recompute(in); !errors.Is(err, ErrDegenerate) {
		t.Fatalf("expected ErrDegenerate, got %v", err)
	}
	if e.CanTransform() {
		t.Error("degenerate corners must leave the engine unable to transform")
	}
}

func TestCalibration_Grid(t *testing.T) {
	cal, err := Compute(scenarioInput())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	xs, ys := cal.Grid(10, 20)
	if len(xs) != 20 || len(ys) != 20 {
		t.Fatalf("expected 20 lines each, got %d/%d", len(xs), len(ys))
	}
	// Line 10 sits on the rectangle's top-left corner.
	if math.Abs(xs[10]-64) > tol || math.Abs(ys[10]-64) > tol {
		t.Errorf("anchor line = (%v, %v), want (64, 64)", xs[10], ys[10])
	}
	if step := xs[11] - xs[10]; math.Abs(step-128) > tol {
		t.Errorf("grid step = %v px, want 128", step)
	}
	if xs, ys := cal.Grid(0, 20); xs != nil || ys != nil {
		t.Error("zero step should produce no grid")
	}
}
