package capture

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"gocv.io/x/gocv"
)

// CameraGrabber reads frames from a local video device.
type CameraGrabber struct {
	mu       sync.Mutex
	deviceID int
	webcam   *gocv.VideoCapture
	mat      gocv.Mat
}

func NewCameraGrabber(deviceID int) (*CameraGrabber, error) {
	webcam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", deviceID, err)
	}
	return &CameraGrabber{deviceID: deviceID, webcam: webcam, mat: gocv.NewMat()}, nil
}

func (g *CameraGrabber) Grab() (*image.RGBA, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.webcam == nil {
		return nil, ErrNoFrame
	}
	if ok := g.webcam.Read(&g.mat); !ok || g.mat.Empty() {
		return nil, fmt.Errorf("cannot read camera device: %d", g.deviceID)
	}
	img, err := g.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("camera frame: %w", err)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

func (g *CameraGrabber) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.webcam == nil {
		return nil
	}
	g.mat.Close()
	err := g.webcam.Close()
	g.webcam = nil
	return err
}
