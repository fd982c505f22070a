package colors

import "testing"

func TestRGBA8RoundTrip(t *testing.T) {
	cases := [][4]byte{
		{0, 0, 0, 255},
		{255, 255, 255, 255},
		{12, 200, 99, 255},
		{64, 32, 0, 128},
	}
	for _, c := range cases {
		var out [4]byte
		FromRGBA8(c[0], c[1], c[2], c[3]).PutRGBA8(out[:])
		for i := range out {
			d := int(out[i]) - int(c[i])
			if d < -1 || d > 1 {
				t.Fatalf("round trip %v -> %v", c, out)
			}
		}
	}
}

func TestMix(t *testing.T) {
	got := Black().Mix(White(), 0.25)
	if got.R != 0.25 || got.G != 0.25 || got.B != 0.25 || got.A != 1 {
		t.Fatalf("Mix = %+v", got)
	}
}

func TestOverOpaque(t *testing.T) {
	red := New(1, 0, 0, 1)
	if got := red.Over(White()); got != red {
		t.Fatalf("opaque over = %+v, want %+v", got, red)
	}
	clear := New(0, 1, 0, 0)
	if got := clear.Over(Black()); got != Black() {
		t.Fatalf("transparent over = %+v, want black", got)
	}
}
