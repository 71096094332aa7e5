package ticks

import "testing"

func TestDiff(t *testing.T) {
	cases := []struct {
		name string
		a, b T
		want int32
	}{
		{"zero", 100, 100, 0},
		{"forward", 1500, 1000, 500},
		{"backward", 1000, 1500, -500},
		{"wrap", 5, 0xFFFFFFFB, 10},
		{"wrap backward", 0xFFFFFFFB, 5, -10},
		{"near max", 0xFFFFFFFF, 0xFFFFFFF0, 15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Diff(tc.a, tc.b); got != tc.want {
				t.Fatalf("Diff(%#x, %#x)=%d want %d", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestAddDiffRoundTrip(t *testing.T) {
	starts := []T{0, 1, 0xFFFFFFF0, 0x7FFFFFFF}
	deltas := []int32{0, 1, 10, 100000, -10}
	for _, s := range starts {
		for _, d := range deltas {
			got := Diff(Add(s, d), s)
			if got != d {
				t.Fatalf("Diff(Add(%#x,%d), %#x)=%d want %d", s, d, s, got, d)
			}
		}
	}
}

func TestAddWrapsAcrossModulus(t *testing.T) {
	a := Add(0xFFFFFFFE, 10)
	if a != 8 {
		t.Fatalf("Add wrapped to %#x want 0x8", a)
	}
	if Diff(a, 0xFFFFFFFE) != 10 {
		t.Fatalf("elapsed across wrap = %d want 10", Diff(a, 0xFFFFFFFE))
	}
}
