package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"orthoview/pkg/geometry"
)

var cornerNames = [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}

var cornersCmd = &cobra.Command{
	Use:   "corners",
	Short: "Define or inspect the calibration rectangle",
}

var cornersSetCmd = &cobra.Command{
	Use:   "set <x,y> <x,y> <x,y> <x,y>",
	Short: "Define the four rectangle corners in image pixels",
	Long: `Define the four image-space corners of a rectangle of known size on the
plate. The corners may be given in any order; they are stored as top-left,
top-right, bottom-right, bottom-left.

Example:
  orthoview corners set 110,60 10,10 10,60 110,10`,
	Args: cobra.ExactArgs(4),
	RunE: runCornersSet,
}

var cornersShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored corners",
	Args:  cobra.NoArgs,
	RunE:  runCornersShow,
}

var cornersClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored corners",
	Args:  cobra.NoArgs,
	RunE:  runCornersClear,
}

func init() {
	cornersCmd.AddCommand(cornersSetCmd, cornersShowCmd, cornersClearCmd)
	rootCmd.AddCommand(cornersCmd)
}

func runCornersSet(cmd *cobra.Command, args []string) error {
	pts := make([]geometry.PointInt, len(args))
	for i, arg := range args {
		p, err := parsePixel(arg)
		if err != nil {
			return err
		}
		pts[i] = p
	}

	s, err := openSession()
	if err != nil {
		return err
	}

	s.state.BeginCorners()
	for _, p := range pts {
		if err := s.state.SetCorner(p.X, p.Y); err != nil {
			return fmt.Errorf("failed to set corner: %w", err)
		}
	}

	printCorners(s.state.CornerSlots())
	if !s.state.CanTransform() {
		fmt.Println("Calibration not available (check the scale and that no three corners are collinear)")
	}
	return nil
}

func runCornersShow(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	printCorners(s.state.CornerSlots())
	return nil
}

func runCornersClear(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	if err := s.state.ClearCorners(); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	fmt.Println("Corners cleared")
	return nil
}

func printCorners(slots []*geometry.PointInt, active int) {
	for i, p := range slots {
		marker := ""
		if i == active {
			marker = "  <- next"
		}
		if p == nil {
			fmt.Printf("  %-12s  (unset)%s\n", cornerNames[i], marker)
			continue
		}
		fmt.Printf("  %-12s  %d, %d%s\n", cornerNames[i], p.X, p.Y, marker)
	}
}
