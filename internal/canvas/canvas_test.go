package canvas

import (
	"image"
	"math"
	"testing"
)

func newTestContext(w, h int) *Context {
	return New(image.NewRGBA(image.Rect(0, 0, w, h)))
}

func TestFillRectSolid(t *testing.T) {
	c := newTestContext(20, 20)
	c.FillRect(5, 5, 10, 10, Solid(RGBA(255, 0, 0, 1)))

	in := c.Image().RGBAAt(10, 10)
	if in.R != 255 || in.G != 0 || in.A != 255 {
		t.Errorf("inside pixel = %v, want opaque red", in)
	}
	out := c.Image().RGBAAt(2, 2)
	if out.A != 0 {
		t.Errorf("outside pixel = %v, want transparent", out)
	}
}

func TestGlobalAlphaAndSourceOver(t *testing.T) {
	c := newTestContext(4, 4)
	c.FillRect(0, 0, 4, 4, Solid(RGBA(0, 0, 0, 1)))
	c.SetGlobalAlpha(0.5)
	c.FillRect(0, 0, 4, 4, Solid(RGBA(255, 255, 255, 1)))

	px := c.Image().RGBAAt(1, 1)
	if px.R < 125 || px.R > 130 || px.A != 255 {
		t.Errorf("half white over black = %v, want ~128 grey", px)
	}
}

func TestLighterAdds(t *testing.T) {
	c := newTestContext(4, 4)
	c.FillRect(0, 0, 4, 4, Solid(RGBA(100, 0, 0, 1)))
	c.SetComposite(Lighter)
	c.FillRect(0, 0, 4, 4, Solid(RGBA(100, 50, 0, 1)))
	c.FillRect(0, 0, 4, 4, Solid(RGBA(100, 50, 0, 1)))

	px := c.Image().RGBAAt(2, 2)
	if px.R != 255 || px.G != 100 {
		t.Errorf("lighter result = %v, want R saturated and G=100", px)
	}
}

func TestSaveRestore(t *testing.T) {
	c := newTestContext(4, 4)
	c.Save()
	c.Translate(10, 0)
	c.SetGlobalAlpha(0.2)
	c.SetComposite(Lighter)
	c.Restore()

	if c.Transform() != Identity {
		t.Errorf("transform not restored: %+v", c.Transform())
	}
	if c.st.alpha != 1 || c.st.op != SourceOver {
		t.Errorf("state not restored: %+v", c.st)
	}
	// unbalanced restore is ignored
	c.Restore()
}

func TestMatrixInvert(t *testing.T) {
	m := Identity.Mul(Translation(30, -4)).Mul(Rotation(0.7)).Mul(Scaling(2, 1.1))
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("expected invertible matrix")
	}
	x, y := m.Apply(3, 5)
	bx, by := inv.Apply(x, y)
	if math.Abs(bx-3) > 1e-9 || math.Abs(by-5) > 1e-9 {
		t.Errorf("round trip = (%f, %f), want (3, 5)", bx, by)
	}
	if _, ok := Scaling(0, 1).Invert(); ok {
		t.Error("singular matrix reported invertible")
	}
}

func TestArcCircleArea(t *testing.T) {
	c := newTestContext(64, 64)
	c.BeginPath()
	c.Arc(32, 32, 20, 0, 2*math.Pi)
	c.Fill(Solid(RGBA(255, 255, 255, 1)))

	var sum float64
	for i := 3; i < len(c.Image().Pix); i += 4 {
		sum += float64(c.Image().Pix[i]) / 255
	}
	want := math.Pi * 20 * 20
	if math.Abs(sum-want)/want > 0.02 {
		t.Errorf("circle coverage %.1f, want ~%.1f", sum, want)
	}
}

func TestStrokeLine(t *testing.T) {
	c := newTestContext(40, 20)
	c.BeginPath()
	c.MoveTo(5, 10)
	c.LineTo(35, 10)
	c.Stroke(Solid(RGBA(0, 255, 0, 1)), 4)

	if px := c.Image().RGBAAt(20, 10); px.G != 255 {
		t.Errorf("on-line pixel = %v, want green", px)
	}
	if px := c.Image().RGBAAt(20, 3); px.A != 0 {
		t.Errorf("off-line pixel = %v, want transparent", px)
	}
	// round cap extends past the end point
	if px := c.Image().RGBAAt(36, 10); px.A == 0 {
		t.Error("expected round cap coverage beyond the end point")
	}
}

func TestStrokeScalesWithTransform(t *testing.T) {
	c := newTestContext(40, 40)
	c.Scale(2, 2)
	c.BeginPath()
	c.MoveTo(2, 10)
	c.LineTo(18, 10)
	c.Stroke(Solid(RGBA(0, 0, 255, 1)), 4)

	// 4 user units at scale 2 is 8 device pixels wide around y=20
	if px := c.Image().RGBAAt(20, 23); px.B != 255 {
		t.Errorf("pixel inside scaled stroke = %v", px)
	}
	if px := c.Image().RGBAAt(20, 26); px.A != 0 {
		t.Errorf("pixel outside scaled stroke = %v", px)
	}
}

func TestLinearGradient(t *testing.T) {
	g := NewLinearGradient(0, 0, 0, 100,
		Stop{1, MustHex("#ffffff")},
		Stop{0, MustHex("#000000")},
	)

	tests := []struct {
		y    float64
		want float64
	}{
		{-10, 0},
		{0, 0},
		{50, 0.5},
		{100, 1},
		{150, 1},
	}
	for _, tt := range tests {
		if got := g.ColorAt(3, tt.y).R; math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("y=%.0f: R = %f, want %f", tt.y, got, tt.want)
		}
	}
}

func TestRadialGradient(t *testing.T) {
	g := NewRadialGradient(0, 0, 0, 0, 0, 10,
		Stop{0, MustHex("#ff0000")},
		Stop{1, MustHex("#0000ff")},
	)

	if c := g.ColorAt(0, 0); c.R < 0.99 {
		t.Errorf("centre = %+v, want red", c)
	}
	if c := g.ColorAt(5, 0); math.Abs(c.R-0.5) > 1e-6 || math.Abs(c.B-0.5) > 1e-6 {
		t.Errorf("midpoint = %+v, want half blend", c)
	}
	if c := g.ColorAt(0, 30); c.B < 0.99 {
		t.Errorf("outside = %+v, want padded blue", c)
	}
}

func TestHSLWrapsHue(t *testing.T) {
	a := HSL(359, 0.8, 0.5)
	b := HSL(-1, 0.8, 0.5)
	if math.Abs(a.R-b.R) > 1e-9 || math.Abs(a.G-b.G) > 1e-9 || math.Abs(a.B-b.B) > 1e-9 {
		t.Errorf("HSL(359) = %+v, HSL(-1) = %+v", a, b)
	}
}

func TestHexRejectsGarbage(t *testing.T) {
	if _, err := Hex("pink"); err == nil {
		t.Error("Expected error, got nil")
	}
}
