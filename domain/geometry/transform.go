// Package geometry maps face boxes reported in camera-stream pixels onto the
// display surface that hosts a uniformly scaled (letterboxed) preview.
//
// All functions are pure arithmetic. Degenerate inputs (zero-size stream, a
// surface that has not been laid out yet) yield a zero Rect, which callers
// treat as "nothing to draw yet".
package geometry

// ComputeActiveRect returns the sub-rectangle of surface occupied by the
// stream after uniform scaling and centering. The result is exact; callers
// round when rendering.
func ComputeActiveRect(stream StreamResolution, o Orientation, surface DisplaySurface) Rect {
	if surface.Width < 1 || surface.Height < 1 || stream.Width == 0 || stream.Height == 0 {
		return Rect{}
	}
	sw, sh := stream.Oriented(o)

	r := Rect{Width: surface.Width, Height: surface.Height}
	if surface.Width/surface.Height > sw/sh {
		// surface is wider than the stream: bars on the sides
		scaled := sw * (surface.Height / sh)
		r.X = (surface.Width - scaled) / 2
		r.Width = scaled
	} else {
		// stream is wider: bars on top and bottom
		scaled := sh * (surface.Width / sw)
		r.Y = (surface.Height - scaled) / 2
		r.Height = scaled
	}
	return r
}

// MapBoxToDisplay converts box from stream pixels to display pixels. The
// result is relative to the active rect origin; use ToSurface to composite
// against the full surface. No clamping is applied.
func MapBoxToDisplay(box Rect, stream StreamResolution, o Orientation, surface DisplaySurface) Rect {
	sx, sy, ok := scaleFactors(stream, o, surface)
	if !ok {
		return Rect{}
	}
	return Rect{
		X:      box.X * sx,
		Y:      box.Y * sy,
		Width:  box.Width * sx,
		Height: box.Height * sy,
	}
}

// MapHatToDisplay maps box and enlarges it two-fold, shifting it left by a
// quarter of the enlarged width and down by a third of the enlarged height.
func MapHatToDisplay(box Rect, stream StreamResolution, o Orientation, surface DisplaySurface) Rect {
	m := MapBoxToDisplay(box, stream, o, surface)
	if m == (Rect{}) {
		return m
	}
	w := m.Width * 2
	h := m.Height * 2
	return Rect{
		X:      m.X - w/4,
		Y:      m.Y + h/3,
		Width:  w,
		Height: h,
	}
}

// MapIconToDisplay maps box into the placement of the expression icon drawn
// over the primary face: 1.5x the mapped size, shifted up and left by a
// quarter of the mapped size.
func MapIconToDisplay(box Rect, stream StreamResolution, o Orientation, surface DisplaySurface) Rect {
	m := MapBoxToDisplay(box, stream, o, surface)
	if m == (Rect{}) {
		return m
	}
	return Rect{
		X:      m.X - m.Width/4,
		Y:      m.Y - m.Height/4,
		Width:  m.Width * 1.5,
		Height: m.Height * 1.5,
	}
}

// ToSurface offsets r, expressed relative to the active rect, into full
// surface coordinates.
func ToSurface(r, active Rect) Rect { return r.Translate(active.X, active.Y) }

func scaleFactors(stream StreamResolution, o Orientation, surface DisplaySurface) (sx, sy float64, ok bool) {
	if stream.Width == 0 || stream.Height == 0 {
		return 0, 0, false
	}
	active := ComputeActiveRect(stream, o, surface)
	if active.Empty() {
		return 0, 0, false
	}
	sw, sh := stream.Oriented(o)
	return active.Width / sw, active.Height / sh, true
}
