package debug

import "github.com/Faultbox/orbitview/pkg/math"

// BoundsLines returns the 12 edges of the box lo..hi as xyz line endpoints
// (24 vertices), padded outward by pad on every side.
func BoundsLines(lo, hi math.Vec3, pad float32) []float32 {
	p := math.Vec3{X: pad, Y: pad, Z: pad}
	lo, hi = lo.Sub(p), hi.Add(p)

	corner := func(i int) math.Vec3 {
		c := lo
		if i&1 != 0 {
			c.X = hi.X
		}
		if i&2 != 0 {
			c.Y = hi.Y
		}
		if i&4 != 0 {
			c.Z = hi.Z
		}
		return c
	}

	// Each edge joins two corners differing in exactly one bit.
	out := make([]float32, 0, 24*3)
	for i := range 8 {
		for _, bit := range [3]int{1, 2, 4} {
			if i&bit != 0 {
				continue
			}
			a, b := corner(i), corner(i|bit)
			out = append(out, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
		}
	}
	return out
}
