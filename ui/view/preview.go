package view

import (
	"image"
	"sync/atomic"

	"github.com/soocke/smile-tracker-go/domain/geometry"
	"github.com/soocke/smile-tracker-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Preview shows the composed camera preview and the crop of the last smiling face.
type Preview interface {
	UpdatePreview(img image.Image)
	UpdateFace(img image.Image)
	Reset()
	Surface() geometry.DisplaySurface
	SetSurface(w, h int)
}

type preview struct {
	previewLabel *LabelWidget
	faceLabel    *LabelWidget
	surfaceW     atomic.Int64
	surfaceH     atomic.Int64
	prevPreview  *Img // last Tk photo image instance for the preview
	prevFace     *Img // last Tk photo image instance for the face crop
}

const faceSlot = 160

// NewPreview creates the preview labels, grids them and returns the view.
// Layout: the preview spans columns 0-3; the face crop sits at column 4 of row.
func NewPreview(row, w, h int) Preview {
	v := &preview{}
	v.SetSurface(w, h)
	v.prevPreview = NewPhoto(Data(blank(w, h)))
	v.prevFace = NewPhoto(Data(blank(faceSlot, faceSlot)))
	v.previewLabel = Label(Image(v.prevPreview), Borderwidth(1), Relief("sunken"))
	v.faceLabel = Label(Image(v.prevFace), Borderwidth(1), Relief("sunken"))
	Grid(v.previewLabel, Row(row), Column(0), Columnspan(4), Sticky("nw"), Padx("0.4m"), Pady("0.4m"))
	Grid(v.faceLabel, Row(row), Column(4), Columnspan(1), Sticky("n"), Padx("0.4m"), Pady("0.4m"))
	return v
}

func blank(w, h int) []byte {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return images.EncodePNG(image.NewRGBA(image.Rect(0, 0, w, h)))
}

// Surface is the area the preview is rendered into. Frames passed to
// UpdatePreview are expected to be exactly this size.
func (v *preview) Surface() geometry.DisplaySurface {
	return geometry.DisplaySurface{Width: float64(v.surfaceW.Load()), Height: float64(v.surfaceH.Load())}
}

func (v *preview) SetSurface(w, h int) {
	if w < 50 {
		w = 50
	}
	if h < 50 {
		h = 50
	}
	v.surfaceW.Store(int64(w))
	v.surfaceH.Store(int64(h))
}

func (v *preview) UpdatePreview(img image.Image) {
	if v.previewLabel == nil || img == nil {
		return
	}
	pngBytes := images.EncodePNG(img)
	// Replace previous photo to avoid retaining obsolete pixel buffers.
	if v.prevPreview != nil {
		v.prevPreview.Delete()
	}
	v.prevPreview = NewPhoto(Data(pngBytes))
	v.previewLabel.Configure(Image(v.prevPreview))
}

func (v *preview) UpdateFace(img image.Image) {
	if v.faceLabel == nil || img == nil {
		return
	}
	pngBytes := images.EncodePNG(images.ScaleToFit(img, faceSlot, faceSlot))
	if v.prevFace != nil {
		v.prevFace.Delete()
	}
	v.prevFace = NewPhoto(Data(pngBytes))
	v.faceLabel.Configure(Image(v.prevFace))
}

func (v *preview) Reset() {
	s := v.Surface()
	if v.previewLabel != nil {
		if v.prevPreview != nil {
			v.prevPreview.Delete()
		}
		v.prevPreview = NewPhoto(Data(blank(int(s.Width), int(s.Height))))
		v.previewLabel.Configure(Image(v.prevPreview))
	}
	if v.faceLabel != nil {
		if v.prevFace != nil {
			v.prevFace.Delete()
		}
		v.prevFace = NewPhoto(Data(blank(faceSlot, faceSlot)))
		v.faceLabel.Configure(Image(v.prevFace))
	}
}
