package geometry

import (
	"errors"
	"math"
	"testing"
)

func quad(pts ...float64) [4]Point2D {
	var q [4]Point2D
	for i := range q {
		q[i] = Point2D{X: pts[2*i], Y: pts[2*i+1]}
	}
	return q
}

func TestComputeHomography_MapsCorners(t *testing.T) {
	tests := []struct {
		name string
		src  [4]Point2D
		dst  [4]Point2D
	}{
		{
			name: "axis aligned scale",
			src:  quad(10, 10, 110, 10, 110, 60, 10, 60),
			dst:  quad(0, 0, 640, 0, 640, 320, 0, 320),
		},
		{
			name: "oblique quad",
			src:  quad(120, 80, 520, 110, 560, 400, 90, 370),
			dst:  quad(0, 0, 640, 0, 640, 480, 0, 480),
		},
		{
			name: "keystone",
			src:  quad(200, 100, 440, 100, 600, 460, 40, 460),
			dst:  quad(0, 0, 300, 0, 300, 300, 0, 300),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ComputeHomography(tt.src, tt.dst)
			if err != nil {
				t.Fatalf("ComputeHomography: %v", err)
			}
			for i := range tt.src {
				got := h.Apply(tt.src[i])
				if got.Distance(tt.dst[i]) > 1e-6 {
					t.Errorf("corner %d: got %v, want %v", i, got, tt.dst[i])
				}
			}
		})
	}
}

func TestComputeHomography_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		src  [4]Point2D
	}{
		{name: "three collinear", src: quad(0, 0, 10, 0, 20, 0, 5, 30)},
		{name: "duplicate corner", src: quad(10, 10, 10, 10, 110, 60, 10, 60)},
		{name: "all same", src: quad(5, 5, 5, 5, 5, 5, 5, 5)},
	}

	dst := quad(0, 0, 100, 0, 100, 100, 0, 100)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeHomography(tt.src, dst)
			if !errors.Is(err, ErrDegenerate) {
				t.Fatalf("expected ErrDegenerate, got %v", err)
			}
		})
	}
}

func TestHomography_InverseRoundTrip(t *testing.T) {
	h, err := ComputeHomography(
		quad(120, 80, 520, 110, 560, 400, 90, 370),
		quad(0, 0, 640, 0, 640, 480, 0, 480),
	)
	if err != nil {
		t.Fatalf("ComputeHomography: %v", err)
	}
	inv, err := h.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}

	points := []Point2D{
		{X: 0, Y: 0},
		{X: 320, Y: 240},
		{X: 639, Y: 479},
		{X: -50, Y: 700},
		{X: 1000, Y: -200},
	}
	for _, p := range points {
		back := inv.Apply(h.Apply(p))
		if back.Distance(p) > 1e-6 {
			t.Errorf("round trip of %v gave %v", p, back)
		}
	}
}

func TestHomography_ProjectVanishingLine(t *testing.T) {
	h := Homography{1, 0, 0, 0, 1, 0, 1, 0, 0}
	if _, ok := h.Project(Point2D{X: 0, Y: 5}); ok {
		t.Error("expected point on vanishing line to be reported")
	}
	p, ok := h.Project(Point2D{X: 2, Y: 4})
	if !ok || math.Abs(p.X-1) > 1e-12 || math.Abs(p.Y-2) > 1e-12 {
		t.Errorf("Project = %v, %v; want (1,2), true", p, ok)
	}
}

func TestHomography_InverseSingular(t *testing.T) {
	h := Homography{1, 2, 0, 2, 4, 0, 0, 0, 1}
	if _, err := h.Inverse(); !errors.Is(err, ErrDegenerate) {
		t.Fatalf("expected ErrDegenerate, got %v", err)
	}
}

func TestBoundingRectInt(t *testing.T) {
	tests := []struct {
		name   string
		points []Point2D
		want   RectInt
	}{
		{
			name:   "integral",
			points: []Point2D{{X: -64, Y: -64}, {X: 4032, Y: -64}, {X: 4032, Y: 3008}, {X: -64, Y: 3008}},
			want:   RectInt{X: -64, Y: -64, Width: 4096, Height: 3072},
		},
		{
			name:   "fractional",
			points: []Point2D{{X: 0.5, Y: 1.2}, {X: 9.1, Y: 3.9}},
			want:   RectInt{X: 0, Y: 1, Width: 10, Height: 3},
		},
		{
			name:   "round-off absorbed",
			points: []Point2D{{X: -64.0000000001, Y: 0}, {X: 10.0000000001, Y: 5}},
			want:   RectInt{X: -64, Y: 0, Width: 74, Height: 5},
		},
		{
			name: "empty",
			want: RectInt{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BoundingRectInt(tt.points); got != tt.want {
				t.Errorf("BoundingRectInt() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHomography_W(t *testing.T) {
	h, err := ComputeHomography(
		quad(300, 100, 340, 100, 640, 480, 0, 480),
		quad(0, 0, 640, 0, 640, 640, 0, 640),
	)
	if err != nil {
		t.Fatalf("ComputeHomography: %v", err)
	}
	ref := h.W(Point2D{X: 300, Y: 100})
	if got := h.W(Point2D{X: 0, Y: 480}); got*ref <= 0 {
		t.Errorf("rectangle corners on opposite sides: %v vs %v", got, ref)
	}
	if got := h.W(Point2D{X: 0, Y: 0}); got*ref >= 0 {
		t.Errorf("image origin should lie beyond the vanishing line: w=%v, ref=%v", got, ref)
	}
}
