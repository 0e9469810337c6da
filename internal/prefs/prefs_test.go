package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func TestLoad_MissingFile(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "none", "preferences.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := p.Float("rectangle.scalex"); got != 0 {
		t.Errorf("Float() = %v, want 0", got)
	}
	if ok, err := p.Decode("beam.pos", &point{}); ok || err != nil {
		t.Errorf("Decode() = %v, %v; want false, nil", ok, err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "preferences.json")
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p.SetFloat("rectangle.scalex", 50)
	p.SetBool("view.rectified", true)
	corners := []*point{{X: 10, Y: 10}, nil, {X: 110, Y: 60}, nil}
	if err := p.Set("rectangle.corners", corners); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := p.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	q, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := q.Float("rectangle.scalex"); got != 50 {
		t.Errorf("scalex = %v, want 50", got)
	}
	if !q.Bool("view.rectified", false) {
		t.Error("expected view.rectified to be true")
	}

	var got []*point
	ok, err := q.Decode("rectangle.corners", &got)
	if !ok || err != nil {
		t.Fatalf("Decode() = %v, %v", ok, err)
	}
	if len(got) != 4 || got[1] != nil || got[3] != nil {
		t.Fatalf("unexpected corners %v", got)
	}
	if *got[0] != (point{X: 10, Y: 10}) || *got[2] != (point{X: 110, Y: 60}) {
		t.Errorf("corners = %v, %v", *got[0], *got[2])
	}
}

func TestDecode_WrongShape(t *testing.T) {
	p, _ := Load(filepath.Join(t.TempDir(), "preferences.json"))
	p.SetFloat("beam.pos", 3)
	var pt point
	if ok, err := p.Decode("beam.pos", &pt); !ok || err == nil {
		t.Errorf("Decode() = %v, %v; want true, error", ok, err)
	}
}

func TestFloatWithFallback(t *testing.T) {
	p, _ := Load(filepath.Join(t.TempDir(), "preferences.json"))
	if got := p.FloatWithFallback("missing", 2.5); got != 2.5 {
		t.Errorf("FloatWithFallback() = %v, want 2.5", got)
	}
	p.SetFloat("present", 1)
	p.Delete("present")
	if got := p.FloatWithFallback("present", 7); got != 7 {
		t.Errorf("deleted key returned %v", got)
	}
}
