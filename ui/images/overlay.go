package images

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/soocke/smile-tracker-go/domain/geometry"
)

// Decoration drawn on the primary face.
type Decoration int

const (
	DecorationIcon Decoration = iota
	DecorationHat
)

// Overlay describes everything drawn over one preview frame.
type Overlay struct {
	Placements []geometry.Placement
	Decoration Decoration
	// Smiling selects the expression of the icon; it reflects the most
	// recent completed check.
	Smiling bool
	Status  string
}

var (
	outlineColor   = color.RGBA{0x3d, 0xdc, 0x84, 0xff}
	secondaryColor = color.RGBA{0xf5, 0xf5, 0xf5, 0xc0}
	iconColor      = color.RGBA{0xff, 0xd5, 0x4f, 0xff}
	inkColor       = color.RGBA{0x20, 0x20, 0x20, 0xff}
	hatColor       = color.RGBA{0x26, 0x26, 0x3a, 0xff}
	bandColor      = color.RGBA{0xd3, 0x2f, 0x2f, 0xff}
)

// DrawOverlay draws outlines for every placement and the decoration for the
// primary one directly into dst.
func DrawOverlay(dst *image.RGBA, ov Overlay) {
	if dst == nil {
		return
	}
	dc := gg.NewContextForRGBA(dst)
	for _, p := range ov.Placements {
		c := secondaryColor
		width := 2.0
		if p.Primary {
			c = outlineColor
			width = 3
		}
		dc.SetColor(c)
		dc.SetLineWidth(width)
		dc.DrawRectangle(p.Box.X, p.Box.Y, p.Box.Width, p.Box.Height)
		dc.Stroke()
		if !p.Primary {
			continue
		}
		switch ov.Decoration {
		case DecorationHat:
			drawHat(dc, p.Hat)
		default:
			drawIcon(dc, p.Icon, ov.Smiling)
		}
	}
	if ov.Status != "" {
		dc.SetColor(color.White)
		dc.DrawString(ov.Status, 8, 16)
	}
}

func drawIcon(dc *gg.Context, r geometry.Rect, smiling bool) {
	if r.Empty() {
		return
	}
	// the icon sits in the top-left quarter of its rect
	size := math.Min(r.Width, r.Height) / 3
	cx, cy := r.X+size/2, r.Y+size/2
	radius := size / 2
	dc.SetColor(iconColor)
	dc.DrawCircle(cx, cy, radius)
	dc.Fill()
	dc.SetColor(inkColor)
	dc.SetLineWidth(math.Max(1, radius/8))
	dc.DrawCircle(cx, cy, radius)
	dc.Stroke()
	eye := radius / 8
	dc.DrawCircle(cx-radius/3, cy-radius/4, eye)
	dc.DrawCircle(cx+radius/3, cy-radius/4, eye)
	dc.Fill()
	if smiling {
		dc.DrawArc(cx, cy, radius*0.55, gg.Radians(20), gg.Radians(160))
	} else {
		dc.DrawLine(cx-radius/3, cy+radius/3, cx+radius/3, cy+radius/3)
	}
	dc.Stroke()
}

func drawHat(dc *gg.Context, r geometry.Rect) {
	if r.Empty() {
		return
	}
	// the face top lies a third of the hat rect height above the rect
	brimW := r.Width * 0.6
	brimH := r.Height * 0.05
	crownW := r.Width * 0.36
	crownH := r.Height * 0.3
	brimX := r.X + (r.Width-brimW)/2
	brimY := r.Y - r.Height/3 - brimH
	crownX := r.X + (r.Width-crownW)/2
	crownY := brimY - crownH
	dc.SetColor(hatColor)
	dc.DrawRectangle(brimX, brimY, brimW, brimH)
	dc.DrawRectangle(crownX, crownY, crownW, crownH)
	dc.Fill()
	dc.SetColor(bandColor)
	dc.DrawRectangle(crownX, brimY-crownH*0.2, crownW, crownH*0.15)
	dc.Fill()
}

// Compose letterboxes frame onto the surface, draws ov on top and mirrors
// the result horizontally when mirror is set. Placements in ov must be in
// surface coordinates for the same stream, orientation and surface.
func Compose(frame image.Image, stream geometry.StreamResolution, o geometry.Orientation, surface geometry.DisplaySurface, ov Overlay, mirror bool) image.Image {
	active := geometry.ComputeActiveRect(stream, o, surface)
	canvas := Letterbox(frame, surface, active)
	status := ov.Status
	if mirror {
		// text is drawn after the flip so it stays readable
		ov.Status = ""
	}
	DrawOverlay(canvas, ov)
	if !mirror {
		return canvas
	}
	flipped := imaging.FlipH(canvas)
	if status != "" {
		dc := gg.NewContextForImage(flipped)
		dc.SetColor(color.White)
		dc.DrawString(status, 8, 16)
		return dc.Image()
	}
	return flipped
}
