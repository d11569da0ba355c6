package capture

import (
	"image"
	"sync"
)

// SwitchGrabber forwards Grab to a replaceable Grabber so the frame source
// can change without rebuilding the capture service.
type SwitchGrabber struct {
	mu   sync.Mutex
	cur  Grabber
	name string
}

func NewSwitchGrabber(name string, g Grabber) *SwitchGrabber {
	return &SwitchGrabber{cur: g, name: name}
}

// Swap installs g and returns the previous grabber, which the caller closes.
func (s *SwitchGrabber) Swap(name string, g Grabber) Grabber {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.cur
	s.cur, s.name = g, name
	return prev
}

// Name returns the label given to the active grabber.
func (s *SwitchGrabber) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *SwitchGrabber) Grab() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return nil, ErrNoFrame
	}
	return s.cur.Grab()
}

func (s *SwitchGrabber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return nil
	}
	err := s.cur.Close()
	s.cur = nil
	return err
}
