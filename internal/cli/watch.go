package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"orthoview/internal/app"
	"orthoview/internal/capture"
	"orthoview/internal/rectify"
	"orthoview/internal/render"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously render camera frames with the calibration overlay",
	Long: `Grab a frame from the camera (or the --image still) on every refresh
tick, render it and overwrite the output image. Calibration changes made by
other orthoview commands are picked up while running. Stop with Ctrl+C.

Example:
  orthoview watch --rectified --out /tmp/plate.png`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringP("out", "o", "orthoview.png", "Output image path")
	watchCmd.Flags().Bool("rectified", false, "Render the rectified view when calibrated")
	watchCmd.Flags().String("camera", "", "Camera device index or path (overrides the config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	out := mustGetString(cmd, "out")
	wantRectified := mustGetBool(cmd, "rectified")

	s, err := openSession()
	if err != nil {
		return err
	}

	var src capture.Source
	if imagePath != "" {
		src, err = capture.OpenStill(imagePath)
		if err != nil {
			return fmt.Errorf("failed to load image: %w", err)
		}
	} else {
		device := s.cfg.Camera
		if cmd.Flags().Changed("camera") {
			device = mustGetString(cmd, "camera")
		}
		src = capture.NewCamera(device)
	}
	defer src.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.logCalibrationEvents()

	watcher := app.NewFileWatcher(s.state.PrefsPath(), s.cfg.Refresh)
	watcher.OnChange(func() {
		if err := s.state.Reload(); err != nil {
			log.Printf("reload calibration: %v", err)
		}
	})
	watcher.Start()
	defer watcher.Stop()

	log.Printf("watching, refresh %v, writing %s", s.cfg.Refresh, out)
	return s.watchLoop(ctx, src, out, wantRectified)
}

// logCalibrationEvents logs reloads and changes in calibration availability.
func (s *session) logCalibrationEvents() {
	// Events arrive from both the frame loop and the file watcher.
	var mu sync.Mutex
	calibrated := s.state.CanTransform()
	s.state.On(app.EventReloaded, func(data interface{}) {
		log.Printf("calibration reloaded from %s", s.state.PrefsPath())
	})
	s.state.On(app.EventCalibrationChanged, func(data interface{}) {
		cal, _ := data.(*rectify.Calibration)
		mu.Lock()
		defer mu.Unlock()
		if now := cal != nil; now != calibrated {
			calibrated = now
			if now {
				log.Printf("calibration available: %.4f px/mm, canvas %dx%d",
					cal.Zoom, cal.BoundingBox.Width, cal.BoundingBox.Height)
			} else {
				log.Printf("calibration unavailable, showing the raw frame")
			}
		}
	})
}

func (s *session) watchLoop(ctx context.Context, src capture.Source, out string, wantRectified bool) error {
	ticker := time.NewTicker(s.cfg.Refresh)
	defer ticker.Stop()

	img := gocv.NewMat()
	defer img.Close()

	faulted := false
	for {
		select {
		case <-ctx.Done():
			log.Printf("watch stopped")
			return nil
		case <-ticker.C:
		}

		if err := src.Read(&img); err != nil {
			if !faulted {
				log.Printf("frame source fault: %v", err)
				faulted = true
			}
			continue
		}
		if faulted {
			log.Printf("frame source recovered")
			faulted = false
		}

		s.state.SetImageSize(img.Cols(), img.Rows())
		if wantRectified && s.state.CanTransform() {
			_ = s.state.SetRectified(true)
		}

		drawn, err := s.drawFrame(img)
		if err != nil {
			drawn.Close()
			log.Printf("render: %v", err)
			continue
		}
		if err := render.WriteImage(out, drawn); err != nil {
			log.Printf("%v", err)
		}
		drawn.Close()
	}
}
