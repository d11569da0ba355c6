package detect

import (
	"image"
	"testing"
)

func TestToRects_FiltersSmallAndSorts(t *testing.T) {
	in := []image.Rectangle{
		image.Rect(100, 50, 160, 110),
		image.Rect(0, 0, 10, 10),
		image.Rect(10, 50, 70, 110),
		image.Rect(5, 5, 55, 55),
	}
	got := toRects(in, 40)
	if len(got) != 3 {
		t.Fatalf("expected 3 rects, got=%d (%+v)", len(got), got)
	}
	if got[0].X != 5 || got[1].X != 10 || got[2].X != 100 {
		t.Fatalf("unexpected order %+v", got)
	}
	if got[2].Width != 60 || got[2].Height != 60 {
		t.Fatalf("unexpected size %+v", got[2])
	}
}

func TestToRects_Empty(t *testing.T) {
	if got := toRects(nil, 10); len(got) != 0 {
		t.Fatalf("expected none, got=%+v", got)
	}
}

func TestNewCascadeDetector_MissingFile(t *testing.T) {
	if _, err := NewCascadeDetector("does-not-exist.xml", DefaultCascadeOptions()); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestNop(t *testing.T) {
	var d Detector = Nop{}
	faces, err := d.Detect(image.NewRGBA(image.Rect(0, 0, 8, 8)))
	if err != nil || len(faces) != 0 {
		t.Fatalf("nop detector returned faces=%v err=%v", faces, err)
	}
}
