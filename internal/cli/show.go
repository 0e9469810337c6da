package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"orthoview/pkg/geometry"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current calibration",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}

	w, h := s.state.ImageSize()
	sc := s.state.Scale()
	b := s.state.Beam()
	fmt.Printf("Image:  %dx%d px\n", w, h)
	fmt.Printf("Scale:  x=%.3f mm, y=%.3f mm\n", sc.X, sc.Y)
	fmt.Printf("Beam:   %d, %d\n", b.X, b.Y)
	fmt.Println("Corners:")
	printCorners(s.state.CornerSlots())

	cal := s.state.Calibration()
	if cal == nil {
		fmt.Println("\nNot calibrated")
		return nil
	}

	box := cal.BoundingBox
	fmt.Printf("\nZoom:         %.4f px/mm\n", cal.Zoom)
	fmt.Printf("Target:       %dx%d px\n", cal.TargetWidth, cal.TargetHeight)
	fmt.Printf("Canvas:       %dx%d px at (%d, %d)\n", box.Width, box.Height, box.X, box.Y)
	fmt.Printf("Beam mapped:  %.2f, %.2f\n", cal.BeamMapped.X, cal.BeamMapped.Y)
	printMatrix("Forward", cal.Forward)
	printMatrix("Inverse", cal.Inverse)
	printMatrix("Display", cal.Display)
	return nil
}

func printMatrix(name string, h geometry.Homography) {
	fmt.Printf("\n%s:\n  %v\n", name, mat.Formatted(h.Matrix(), mat.Prefix("  "), mat.Squeeze()))
}
