package cli

import (
	"os"
	"testing"

	"orthoview/pkg/geometry"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    geometry.Point2D
		wantErr bool
	}{
		{in: "10,20", want: geometry.Point2D{X: 10, Y: 20}},
		{in: " 1.5 , -2.25 ", want: geometry.Point2D{X: 1.5, Y: -2.25}},
		{in: "10", wantErr: true},
		{in: "a,2", wantErr: true},
		{in: "1,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePoint(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parsePoint(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePoint(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parsePoint(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParsePixel(t *testing.T) {
	got, err := parsePixel("10.4,19.6")
	if err != nil {
		t.Fatal(err)
	}
	if got != (geometry.PointInt{X: 10, Y: 20}) {
		t.Errorf("parsePixel = %v", got)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{in: "640x480", w: 640, h: 480},
		{in: "1920X1080", w: 1920, h: 1080},
		{in: "640", wantErr: true},
		{in: "0x480", wantErr: true},
		{in: "-1x2", wantErr: true},
		{in: "axb", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, err := parseSize(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseSize(%q) = %dx%d, want error", tt.in, w, h)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSize(%q): %v", tt.in, err)
			}
			if w != tt.w || h != tt.h {
				t.Errorf("parseSize(%q) = %dx%d", tt.in, w, h)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv("ORTHOVIEW_TEST_PATH", "/from/env")
	if got := resolvePath("/from/flag", "ORTHOVIEW_TEST_PATH", "/default"); got != "/from/flag" {
		t.Errorf("flag: got %q", got)
	}
	if got := resolvePath("", "ORTHOVIEW_TEST_PATH", "/default"); got != "/from/env" {
		t.Errorf("env: got %q", got)
	}
	os.Unsetenv("ORTHOVIEW_TEST_PATH")
	if got := resolvePath("", "ORTHOVIEW_TEST_PATH", "/default"); got != "/default" {
		t.Errorf("default: got %q", got)
	}
}
