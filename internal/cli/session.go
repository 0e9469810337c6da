package cli

import (
	"fmt"
	"os"

	"orthoview/internal/app"
	"orthoview/internal/config"
	"orthoview/internal/frame"
	"orthoview/internal/prefs"
)

// session is the state shared by all commands.
type session struct {
	cfg   *config.Config
	state *app.State
}

func resolvePath(flagVal, env, fallback string) string {
	if flagVal != "" {
		return flagVal
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}

func resolveImageSize() (int, int, error) {
	if imagePath != "" {
		return frame.Size(imagePath)
	}
	return parseSize(imageSize)
}

func openSession() (*session, error) {
	cfg, err := config.Load(resolvePath(configPath, "ORTHOVIEW_CONFIG", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	p, err := prefs.Load(resolvePath(prefsPath, "ORTHOVIEW_PREFS", prefs.DefaultPath()))
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	w, h, err := resolveImageSize()
	if err != nil {
		return nil, err
	}

	state, err := app.NewState(p, w, h)
	if err != nil {
		return nil, fmt.Errorf("failed to restore calibration: %w", err)
	}
	return &session{cfg: cfg, state: state}, nil
}

// useMode applies the --rectified flag.
func (s *session) useMode(rect bool) error {
	if err := s.state.SetRectified(rect); err != nil {
		return fmt.Errorf("cannot use the rectified view: %w", err)
	}
	return nil
}
