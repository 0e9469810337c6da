package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scaleCmd = &cobra.Command{
	Use:   "scale",
	Short: "Set the physical side lengths of the calibration rectangle",
	Long: `Set the rectangle side lengths in millimeters. Flags that are not given
keep their stored value; zero marks the scale as unset.

Example:
  orthoview scale --x 50 --y 25`,
	Args: cobra.NoArgs,
	RunE: runScale,
}

func init() {
	scaleCmd.Flags().Float64("x", 0, "Length of the top/bottom side in mm")
	scaleCmd.Flags().Float64("y", 0, "Length of the left/right side in mm")
	rootCmd.AddCommand(scaleCmd)
}

func runScale(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}

	setX, setY := cmd.Flags().Changed("x"), cmd.Flags().Changed("y")
	x, y := mustGetFloat64(cmd, "x"), mustGetFloat64(cmd, "y")
	if (setX && x < 0) || (setY && y < 0) {
		return fmt.Errorf("side lengths must not be negative")
	}

	switch {
	case setX && setY:
		err = s.state.SetScale(x, y)
	case setX:
		err = s.state.SetScaleX(x)
	case setY:
		err = s.state.SetScaleY(y)
	}
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	sc := s.state.Scale()
	fmt.Printf("Scale: x=%.3f mm, y=%.3f mm\n", sc.X, sc.Y)
	return nil
}
