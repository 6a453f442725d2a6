package core

import (
	"math"

	"pgregory.net/rand"
)

const (
	noiseSize = 256
	noiseSeed = 0x5eed
)

// noisePerm is the doubled permutation table for gradient lookup
var noisePerm = buildNoisePermutation(noiseSeed)

func buildNoisePermutation(seed uint64) [2 * noiseSize]int {
	var table [2 * noiseSize]int
	perm := rand.New(seed).Perm(noiseSize)
	for i, p := range perm {
		table[i] = p
		table[i+noiseSize] = p
	}
	return table
}

// Noise evaluates improved gradient noise at p. The result lies roughly in [-1, 1].
func Noise(p Vec3) float64 {
	fx, fy, fz := math.Floor(p.X), math.Floor(p.Y), math.Floor(p.Z)
	dx, dy, dz := p.X-fx, p.Y-fy, p.Z-fz

	ix := int(fx) & (noiseSize - 1)
	iy := int(fy) & (noiseSize - 1)
	iz := int(fz) & (noiseSize - 1)

	w000 := noiseGradient(ix, iy, iz, dx, dy, dz)
	w100 := noiseGradient(ix+1, iy, iz, dx-1, dy, dz)
	w010 := noiseGradient(ix, iy+1, iz, dx, dy-1, dz)
	w001 := noiseGradient(ix, iy, iz+1, dx, dy, dz-1)
	w110 := noiseGradient(ix+1, iy+1, iz, dx-1, dy-1, dz)
	w101 := noiseGradient(ix+1, iy, iz+1, dx-1, dy, dz-1)
	w011 := noiseGradient(ix, iy+1, iz+1, dx, dy-1, dz-1)
	w111 := noiseGradient(ix+1, iy+1, iz+1, dx-1, dy-1, dz-1)

	wx, wy, wz := fade(dx), fade(dy), fade(dz)

	x00 := Lerp(w000, w100, wx)
	x10 := Lerp(w010, w110, wx)
	x01 := Lerp(w001, w101, wx)
	x11 := Lerp(w011, w111, wx)
	y0 := Lerp(x00, x10, wy)
	y1 := Lerp(x01, x11, wy)
	return Lerp(y0, y1, wz)
}

// Turbulence sums depth octaves of noise, each at 1.99x the frequency of the last and
// weighted by omega^i, and returns the absolute value of the sum
func Turbulence(p Vec3, depth int, omega float64) float64 {
	sum := 0.0
	weight := 1.0
	for i := 0; i < depth; i++ {
		sum += weight * Noise(p)
		weight *= omega
		p = p.Multiply(1.99)
	}
	return math.Abs(sum)
}

// noiseGradient picks one of 12 edge gradients from the low 4 bits of the hash
func noiseGradient(x, y, z int, dx, dy, dz float64) float64 {
	h := noisePerm[noisePerm[noisePerm[x]+y]+z] & 15

	u := dy
	if h < 8 || h == 12 || h == 13 {
		u = dx
	}
	v := dz
	if h < 4 || h == 12 || h == 13 {
		v = dy
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

// fade is the quintic 6t^5 - 15t^4 + 10t^3
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}
