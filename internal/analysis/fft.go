package analysis

import (
	"math"
	"math/cmplx"
)

// FFT computes the discrete Fourier transform with the recursive
// radix-2 algorithm. The input length must be a power of two;
// [PowerSpectrum] pads arbitrary lengths.
func FFT(data []float64) []complex128 {
	buf := make([]complex128, len(data))
	for i, v := range data {
		buf[i] = complex(v, 0)
	}
	return fft(buf)
}

func fft(x []complex128) []complex128 {
	n := len(x)
	if n <= 1 {
		return x
	}
	if n%2 != 0 {
		panic("analysis: fft length must be a power of two")
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = x[2*i]
		odd[i] = x[2*i+1]
	}
	even, odd = fft(even), fft(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		out[k] = even[k] + w*odd[k]
		out[k+n/2] = even[k] - w*odd[k]
	}
	return out
}

// PowerSpectrum returns per-bin magnitudes up to the Nyquist limit.
// Inputs whose length is not a power of two are zero-padded first.
func PowerSpectrum(data []float64) []float64 {
	padded := padToPowerOfTwo(data)
	spec := FFT(padded)

	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantFrequency finds the strongest non-DC spectrum bin and
// converts it to a frequency via sampleRate. The second return is the
// bin magnitude; near-zero magnitude means no oscillation was found.
func DominantFrequency(data []float64, sampleRate float64) (float64, float64) {
	padded := padToPowerOfTwo(data)
	ps := PowerSpectrum(padded)

	bin, power := 0, 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > power {
			bin, power = i, ps[i]
		}
	}
	if bin == 0 {
		return 0, 0
	}
	return float64(bin) * sampleRate / float64(len(padded)), power
}

func padToPowerOfTwo(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	if n == len(data) {
		return data
	}
	padded := make([]float64, n)
	copy(padded, data)
	return padded
}
