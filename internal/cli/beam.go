package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var beamCmd = &cobra.Command{
	Use:   "beam [x,y]",
	Short: "Show or define the beam position in image pixels",
	Long: `Without arguments, print the beam position. With a point, store it as the
new beam position. An existing beam is only replaced with --force.

Example:
  orthoview beam 60,35`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBeam,
}

func init() {
	beamCmd.Flags().Bool("force", false, "Replace an existing beam position")
	rootCmd.AddCommand(beamCmd)
}

func runBeam(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if !s.state.BeamDefined() {
			fmt.Println("Beam: not defined")
			return nil
		}
		b := s.state.Beam()
		fmt.Printf("Beam: %d, %d\n", b.X, b.Y)
		return nil
	}

	p, err := parsePixel(args[0])
	if err != nil {
		return err
	}
	if s.state.BeamDefined() && !mustGetBool(cmd, "force") {
		b := s.state.Beam()
		return fmt.Errorf("beam already defined at %d, %d; use --force to replace it", b.X, b.Y)
	}
	if err := s.state.SetBeam(p); err != nil {
		return fmt.Errorf("failed to set beam: %w", err)
	}
	fmt.Printf("Beam: %d, %d\n", p.X, p.Y)
	return nil
}
