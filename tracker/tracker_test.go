package tracker

import (
	"errors"
	"io"
	"math"
	"path/filepath"
	"testing"
	"time"
)

func TestParseReading(t *testing.T) {
	cases := []struct {
		line string
		want Reading
		ok   bool
	}{
		{"R 1.5", Reading{Rotate, 1.5}, true},
		{"s -0.25", Reading{Scroll, -0.25}, true},
		{"  R   0  ", Reading{Rotate, 0}, true},
		{"X 1", Reading{}, false},
		{"R", Reading{}, false},
		{"R abc", Reading{}, false},
		{"R NaN", Reading{}, false},
	}
	for _, c := range cases {
		got, err := ParseReading(c.line)
		if (err == nil) != c.ok {
			t.Fatalf("ParseReading(%q) err = %v, want ok=%v", c.line, err, c.ok)
		}
		if c.ok && got != c.want {
			t.Fatalf("ParseReading(%q) = %+v, want %+v", c.line, got, c.want)
		}
	}
}

func TestScrollIndex(t *testing.T) {
	cases := []struct {
		angle float64
		want  int
	}{
		{0, 0},
		{math.Pi/3 - 0.01, 0},
		{math.Pi/3 + 0.01, 1},
		{math.Pi + 0.01, 3},
		{-math.Pi/3 + 0.01, 0},
		{-math.Pi/3 - 0.01, -1},
	}
	for _, c := range cases {
		if got := ScrollIndex(c.angle); got != c.want {
			t.Errorf("ScrollIndex(%f) = %d, want %d", c.angle, got, c.want)
		}
	}
}

func waitFor(t *testing.T, b *Bridge, want Reading) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.Poll() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Poll = %+v, want %+v", b.Poll(), want)
}

func TestBridgeKeepsLatest(t *testing.T) {
	pr, pw := io.Pipe()
	b := NewBridge(pr)

	if got := b.Poll(); got.Mode != Idle {
		t.Fatalf("initial mode = %v, want idle", got.Mode)
	}

	io.WriteString(pw, "R 1.0\ngarbage\n")
	waitFor(t, b, Reading{Rotate, 1.0})

	// Without new input the previous reading is repeated.
	if got := b.Poll(); got != (Reading{Rotate, 1.0}) {
		t.Fatalf("repeated Poll = %+v", got)
	}

	io.WriteString(pw, "S 2.5\n")
	waitFor(t, b, Reading{Scroll, 2.5})

	pw.Close()
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "ttyACM9"))
	if !errors.Is(err, ErrOpen) {
		t.Fatalf("err = %v, want ErrOpen", err)
	}
}
