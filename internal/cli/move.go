package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"orthoview/internal/motion"
)

var moveCmd = &cobra.Command{
	Use:   "move <x,y>",
	Short: "Compute the stage move that brings a point under the beam",
	Long: `Compute the relative stage move that brings the plate point under the
given canvas point to the beam. Without a motor driver the move is applied
to a dry-run stage that logs the commanded positions.

Example:
  orthoview move 100,20`,
	Args: cobra.ExactArgs(1),
	RunE: runMove,
}

func init() {
	moveCmd.Flags().Bool("rectified", false, "Interpret the point on the rectified canvas")
	rootCmd.AddCommand(moveCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	p, err := parsePoint(args[0])
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	if err := s.useMode(mustGetBool(cmd, "rectified")); err != nil {
		return err
	}

	logger := log.New(os.Stdout, "", 0)
	stage := motion.Stage{
		X: &motion.DryRunAxis{Name: "x", Logger: logger},
		Y: &motion.DryRunAxis{Name: "y", Logger: logger},
	}

	d, err := s.state.MoveToBeam(cmd.Context(), stage, p.X, p.Y)
	if err != nil {
		return fmt.Errorf("failed to move to beam: %w", err)
	}
	fmt.Printf("Move: %s\n", d)
	return nil
}
