// Package cli implements the orthoview command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	prefsPath  string
	configPath string
	imagePath  string
	imageSize  string
)

var rootCmd = &cobra.Command{
	Use:   "orthoview",
	Short: "Map camera pixels of an oblique sample plate onto plate millimeters",
	Long: `OrthoView calibrates a camera view of a planar sample plate from four
corners of a rectangle of known size, then maps image pixels to plate
coordinates relative to the beam, renders a rectified view and computes the
stage move that brings a point under the beam.

Calibration is stored in a JSON preference file; display settings come from
an optional YAML config file. Both paths may be set in a .env file through
ORTHOVIEW_PREFS and ORTHOVIEW_CONFIG.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs", "", "Calibration preference file (default $ORTHOVIEW_PREFS or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML settings file (default $ORTHOVIEW_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&imagePath, "image", "", "Still frame; its size is the image size")
	rootCmd.PersistentFlags().StringVar(&imageSize, "size", "640x480", "Image size as WIDTHxHEIGHT when no --image is given")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
