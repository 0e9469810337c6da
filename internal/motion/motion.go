// Package motion turns a clicked plate position into a stage displacement
// that brings it under the beam.
package motion

import (
	"context"
	"fmt"
	"log"

	"orthoview/internal/rectify"
	"orthoview/internal/view"
)

// Displacement is a relative stage move in mm.
type Displacement struct {
	DX float64
	DY float64
}

func (d Displacement) String() string {
	return fmt.Sprintf("dx=%.3f mm, dy=%.3f mm", d.DX, d.DY)
}

// ToBeam returns the move that brings the point of r under the beam.
// The stage X axis runs opposite to plate X, so DX is negated; DY is not.
func ToBeam(r view.Readout) (Displacement, error) {
	if !r.HasPlate {
		return Displacement{}, rectify.ErrNotCalibrated
	}
	return Displacement{DX: -r.Plate.X, DY: r.Plate.Y}, nil
}

// Axis is a single motorized stage axis with absolute positioning.
type Axis interface {
	Position(ctx context.Context) (float64, error)
	SetPosition(ctx context.Context, pos float64) error
}

// Stage groups the two plate axes. A nil axis is not driven.
type Stage struct {
	X Axis
	Y Axis
}

// Move applies d relative to the current axis positions, X first.
func (s Stage) Move(ctx context.Context, d Displacement) error {
	if err := moveAxis(ctx, "x", s.X, d.DX); err != nil {
		return err
	}
	return moveAxis(ctx, "y", s.Y, d.DY)
}

func moveAxis(ctx context.Context, name string, a Axis, delta float64) error {
	if a == nil {
		return nil
	}
	cur, err := a.Position(ctx)
	if err != nil {
		return fmt.Errorf("read %s position: %w", name, err)
	}
	if err := a.SetPosition(ctx, cur+delta); err != nil {
		return fmt.Errorf("move %s to %.3f: %w", name, cur+delta, err)
	}
	return nil
}

// DryRunAxis records moves in memory and logs them instead of driving hardware.
type DryRunAxis struct {
	Name   string
	Logger *log.Logger
	pos    float64
}

// Position returns the last commanded position.
func (a *DryRunAxis) Position(ctx context.Context) (float64, error) {
	return a.pos, ctx.Err()
}

// SetPosition records pos.
func (a *DryRunAxis) SetPosition(ctx context.Context, pos float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.Logger != nil {
		a.Logger.Printf("dry-run: axis %s %.3f -> %.3f mm", a.Name, a.pos, pos)
	}
	a.pos = pos
	return nil
}
