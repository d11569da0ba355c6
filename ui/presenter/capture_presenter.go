package presenter

// CaptureModel provides enabled state access.
type CaptureModel interface {
	Enabled() bool
	SetEnabled(bool) bool
}

// LifecycleContract narrows what presenter needs from the capture layer.
type LifecycleContract interface {
	Start()
	Stop()
}

// TrackingControl starts and stops the tracking session.
type TrackingControl interface {
	Start()
	Stop()
}

// OverlayResetter clears preview overlay state.
type OverlayResetter interface{ Reset() }

// CaptureView updates UI elements affected by tracking toggling.
// The state label is owned by StatusPresenter.
type CaptureView interface {
	PreviewReset()
	ConfigEditable(bool)
}

// CapturePresenter owns presentation logic for toggling tracking.
type CapturePresenter struct {
	model   CaptureModel
	service LifecycleContract
	session TrackingControl
	overlay OverlayResetter
	view    CaptureView
}

func NewCapturePresenter(model CaptureModel, service LifecycleContract, session TrackingControl, overlay OverlayResetter, view CaptureView) *CapturePresenter {
	return &CapturePresenter{model: model, service: service, session: session, overlay: overlay, view: view}
}

func (c *CapturePresenter) ready() bool {
	return c != nil && c.model != nil && c.service != nil && c.view != nil && c.session != nil
}

// Enable starts frame capture and a new tracking session. Idempotent.
func (c *CapturePresenter) Enable() {
	if !c.ready() || c.model.Enabled() {
		return
	}
	c.service.Start()
	c.model.SetEnabled(true)
	c.session.Start()
	c.view.ConfigEditable(false)
}

// Disable stops capture and the session, clearing the preview. Stopping the
// session also resets its check throttle. Idempotent.
func (c *CapturePresenter) Disable() {
	if !c.ready() || !c.model.Enabled() {
		return
	}
	c.service.Stop()
	c.model.SetEnabled(false)
	c.session.Stop()
	if c.overlay != nil {
		c.overlay.Reset()
	}
	c.view.PreviewReset()
	c.view.ConfigEditable(true)
}

// Toggle flips enabled state delegating to Enable/Disable.
func (c *CapturePresenter) Toggle() {
	if !c.ready() {
		return
	}
	if c.model.Enabled() {
		c.Disable()
		return
	}
	c.Enable()
}
