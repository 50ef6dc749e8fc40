package surface

import "testing"

type column map[int]bool

func (c column) SolidAt(x, y, z int) bool { return x == 4 && z == 7 && c[y] }

func TestLocate(t *testing.T) {
	r := Range{MaxY: 255, MinY: 0}
	cases := []struct {
		name string
		col  column
		want int
	}{
		{"empty", column{}, None},
		{"single", column{100: true}, 100},
		{"topmost", column{3: true, 60: true, 61: true}, 61},
		{"at max", column{255: true}, 255},
		{"at min", column{0: true}, 0},
		{"above range", column{300: true}, None},
	}
	for _, tc := range cases {
		if got := Locate(tc.col, 4, 7, r); got != tc.want {
			t.Fatalf("%s: Locate=%d want %d", tc.name, got, tc.want)
		}
	}
	if got := Locate(column{10: true}, 0, 0, r); got != None {
		t.Fatalf("other column=%d want None", got)
	}
}

func TestOriginY(t *testing.T) {
	r := Range{MaxY: 128, MinY: 5}
	if got := OriginY(column{64: true}, 4, 7, r); got != 65 {
		t.Fatalf("origin=%d want 65", got)
	}
	if got := OriginY(column{}, 4, 7, r); got != 5 {
		t.Fatalf("origin=%d want 5", got)
	}
}
