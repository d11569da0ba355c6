package geometry

import "sort"

// Indexed pairs a box with its position in the detection event.
type Indexed struct {
	Index int
	Box   Rect
}

// OrderByArea sorts boxes by descending area. Equal areas keep input order.
func OrderByArea(boxes []Rect) []Indexed {
	out := make([]Indexed, len(boxes))
	for i, b := range boxes {
		out[i] = Indexed{Index: i, Box: b}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Box.Area() > out[j].Box.Area()
	})
	return out
}

// Placement is one face prepared for rendering. Box and Icon are in full
// surface coordinates. Only the primary (largest) face has an Icon and a Hat.
type Placement struct {
	Index   int
	Primary bool
	Box     Rect
	Icon    Rect
	Hat     Rect
}

// Layout orders faces by area and maps each onto the surface. It returns nil
// when there is nothing to draw or the geometry is not renderable yet.
func Layout(boxes []Rect, stream StreamResolution, o Orientation, surface DisplaySurface) []Placement {
	if len(boxes) == 0 {
		return nil
	}
	active := ComputeActiveRect(stream, o, surface)
	if active.Empty() {
		return nil
	}
	ordered := OrderByArea(boxes)
	out := make([]Placement, 0, len(ordered))
	for i, f := range ordered {
		p := Placement{
			Index: f.Index,
			Box:   ToSurface(MapBoxToDisplay(f.Box, stream, o, surface), active),
		}
		if i == 0 {
			p.Primary = true
			p.Icon = ToSurface(MapIconToDisplay(f.Box, stream, o, surface), active)
			p.Hat = ToSurface(MapHatToDisplay(f.Box, stream, o, surface), active)
		}
		out = append(out, p)
	}
	return out
}
