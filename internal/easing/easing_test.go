package easing

import (
	"math"
	"testing"
)

func TestEndpoints(t *testing.T) {
	tests := []struct {
		name string
		fn   Func
	}{
		{"linear", Linear},
		{"in-out-cubic", InOutCubic},
		{"out-cubic", OutCubic},
		{"out-back", OutBack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := tt.fn(0); math.Abs(v) > 1e-9 {
				t.Errorf("f(0) = %f, want 0", v)
			}
			if v := tt.fn(1); math.Abs(v-1) > 1e-9 {
				t.Errorf("f(1) = %f, want 1", v)
			}
		})
	}
}

func TestInOutCubicMidpoint(t *testing.T) {
	if v := InOutCubic(0.5); math.Abs(v-0.5) > 1e-9 {
		t.Errorf("InOutCubic(0.5) = %f, want 0.5", v)
	}
}

func TestOutBackOvershootBounded(t *testing.T) {
	peak := 0.0
	for i := 0; i <= 1000; i++ {
		v := OutBack(float64(i) / 1000)
		if v < -0.2 || v > 1.2 {
			t.Fatalf("OutBack(%f) = %f escapes [-0.2, 1.2]", float64(i)/1000, v)
		}
		peak = math.Max(peak, v)
	}
	if peak <= 1 {
		t.Errorf("expected overshoot above 1, peak = %f", peak)
	}
	t.Logf("OutBack peak: %.4f", peak)
}

func TestToleratesOutOfRangeInput(t *testing.T) {
	for _, fn := range []Func{InOutCubic, OutCubic, OutBack} {
		for _, x := range []float64{-1, -0.1, 1.1, 2} {
			if v := fn(x); math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("f(%f) = %f", x, v)
			}
		}
	}
}

func TestMonotonicCubics(t *testing.T) {
	for _, fn := range []Func{InOutCubic, OutCubic} {
		prev := fn(0)
		for i := 1; i <= 200; i++ {
			v := fn(float64(i) / 200)
			if v < prev {
				t.Fatalf("curve decreased at step %d: %f < %f", i, v, prev)
			}
			prev = v
		}
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		progress, start, scale, want float64
	}{
		{0, 0.12, 1.5, 0},
		{0.12, 0.12, 1.5, 0},
		{0.32, 0.12, 1.5, 0.3},
		{1, 0.12, 1.5, 1},
		{0.5, 0, 1.3, 0.65},
		{-3, 0, 1.3, 0},
	}
	for _, tt := range tests {
		if got := Window(tt.progress, tt.start, tt.scale); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Window(%v, %v, %v) = %v, want %v", tt.progress, tt.start, tt.scale, got, tt.want)
		}
	}
}

func TestNamed(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"out-back", false},
		{"Out-Cubic", false},
		{"out-bounce", false},
		{"in-out-sine", false},
		{"wobble", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := Named(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if v := fn(1); math.Abs(v-1) > 1e-3 {
				t.Errorf("%s(1) = %f, want ~1", tt.name, v)
			}
		})
	}
}
