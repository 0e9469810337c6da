package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"orthoview/internal/capture"
	"orthoview/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a still frame with the calibration overlay",
	Long: `Render the frame given with --image, with the beam mark and corner dots,
or as a rectified plate view with a millimeter grid.

Example:
  orthoview --image frame.png render --rectified --out plate.png`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("out", "o", "orthoview.png", "Output image path")
	renderCmd.Flags().Bool("rectified", false, "Render the rectified view")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if imagePath == "" {
		return fmt.Errorf("--image is required")
	}
	out := mustGetString(cmd, "out")

	s, err := openSession()
	if err != nil {
		return err
	}
	if err := s.useMode(mustGetBool(cmd, "rectified")); err != nil {
		return err
	}

	src, err := capture.OpenStill(imagePath)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	defer src.Close()

	img := gocv.NewMat()
	defer img.Close()
	if err := src.Read(&img); err != nil {
		return err
	}

	drawn, err := s.drawFrame(img)
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	defer drawn.Close()

	if err := render.WriteImage(out, drawn); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%dx%d, %s view)\n", out, drawn.Cols(), drawn.Rows(), s.state.Mode())
	return nil
}
