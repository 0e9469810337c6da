// Package capture provides frame sources backed by OpenCV: a still image
// served repeatedly, and a live camera that reopens itself on faults.
package capture

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strconv"

	"orthoview/internal/frame"

	"gocv.io/x/gocv"
)

var (
	// ErrReadFailed means the device returned no frame.
	ErrReadFailed = errors.New("failed to read frame")

	// ErrStaleFrame means the device returned the previous frame again,
	// which happens when a USB camera is unplugged while open.
	ErrStaleFrame = errors.New("camera delivered an unchanged frame")
)

// Source produces BGR frames.
type Source interface {
	// Read fills dst with the next frame.
	Read(dst *gocv.Mat) error
	Close() error
}

// Still serves the same decoded image on every Read.
type Still struct {
	mat gocv.Mat
}

// OpenStill decodes the image at path.
func OpenStill(path string) (*Still, error) {
	f, err := frame.Load(path)
	if err != nil {
		return nil, err
	}
	return &Still{mat: ImageToMat(f.Image)}, nil
}

// Read copies the image into dst.
func (s *Still) Read(dst *gocv.Mat) error {
	s.mat.CopyTo(dst)
	return nil
}

// Close releases the image.
func (s *Still) Close() error {
	return s.mat.Close()
}

// Camera reads frames from a video device.
type Camera struct {
	device interface{}
	cap    *gocv.VideoCapture
	prev   []byte
}

// NewCamera creates a camera for a device index ("0") or path. The device
// is opened on the first Read.
func NewCamera(device string) *Camera {
	var dev interface{} = device
	if n, err := strconv.Atoi(device); err == nil {
		dev = n
	}
	return &Camera{device: dev}
}

func (c *Camera) open() error {
	vc, err := gocv.OpenVideoCapture(c.device)
	if err != nil {
		return fmt.Errorf("open camera %v: %w", c.device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("open camera %v: device not ready", c.device)
	}
	log.Printf("camera %v opened", c.device)
	c.cap = vc
	c.prev = nil
	return nil
}

// reset closes the device so that the next Read reopens it.
func (c *Camera) reset(reason error) {
	log.Printf("camera %v fault: %v", c.device, reason)
	if c.cap != nil {
		c.cap.Close()
		c.cap = nil
	}
	c.prev = nil
}

// Read grabs the next frame. A failed or unchanged frame closes the device
// and returns an error; the following Read reopens it.
func (c *Camera) Read(dst *gocv.Mat) error {
	if c.cap == nil {
		if err := c.open(); err != nil {
			return err
		}
	}

	if ok := c.cap.Read(dst); !ok || dst.Empty() {
		c.reset(ErrReadFailed)
		return ErrReadFailed
	}

	cur := dst.ToBytes()
	if c.prev != nil && bytes.Equal(c.prev, cur) {
		c.reset(ErrStaleFrame)
		return ErrStaleFrame
	}
	c.prev = cur
	return nil
}

// Close releases the device.
func (c *Camera) Close() error {
	if c.cap == nil {
		return nil
	}
	err := c.cap.Close()
	c.cap = nil
	return err
}
