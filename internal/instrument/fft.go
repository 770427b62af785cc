package instrument

import (
	"math"
	"math/cmplx"
)

// fft computes a radix-2 Cooley-Tukey FFT in place. len(x) must be a
// power of two.
func fft(x []complex128) {
	n := len(x)
	if n <= 1 {
		return
	}
	bits := 0
	for m := n; m > 1; m >>= 1 {
		bits++
	}
	for i := 0; i < n; i++ {
		j := 0
		for b := 0; b < bits; b++ {
			if i&(1<<b) != 0 {
				j |= 1 << (bits - 1 - b)
			}
		}
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		wn := -2.0 * math.Pi / float64(size)
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				tw := cmplx.Rect(1, wn*float64(k)) * x[start+k+half]
				x[start+k+half] = x[start+k] - tw
				x[start+k] = x[start+k] + tw
			}
		}
	}
}
