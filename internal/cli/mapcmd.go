package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mapCmd = &cobra.Command{
	Use:   "map <x,y>...",
	Short: "Map canvas points to plate coordinates",
	Long: `Print the readout for one or more canvas points. In the default
perspective view the points are raw image pixels; with --rectified they are
pixels of the rectified canvas.

Example:
  orthoview map 60,35 100,20
  orthoview map --rectified 384,224`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMap,
}

func init() {
	mapCmd.Flags().Bool("rectified", false, "Interpret points on the rectified canvas")
	rootCmd.AddCommand(mapCmd)
}

func runMap(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	if err := s.useMode(mustGetBool(cmd, "rectified")); err != nil {
		return err
	}

	for _, arg := range args {
		p, err := parsePoint(arg)
		if err != nil {
			return err
		}
		r, err := s.state.Query(p.X, p.Y)
		if err != nil {
			fmt.Printf("%s: %v\n", arg, err)
			continue
		}
		fmt.Println(r.String())
	}
	return nil
}
