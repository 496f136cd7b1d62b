package pi

// Options configures a π calculation.
type Options struct {
	// MarginBits is the number of guard bits added to the working
	// precision. Zero selects DefaultMarginBits; values below
	// MinMarginBits are raised to it.
	MarginBits uint
	// FFTThreshold is the operand size in bits above which the adaptive
	// strategy uses FFT multiplication. Zero selects DefaultFFTThreshold.
	FFTThreshold int
}

// normalizeOptions returns a copy of opts with defaults filled in.
func normalizeOptions(opts Options) Options {
	normalized := opts
	if normalized.MarginBits < MinMarginBits {
		normalized.MarginBits = DefaultMarginBits
	}
	if normalized.FFTThreshold == 0 {
		normalized.FFTThreshold = DefaultFFTThreshold
	}
	return normalized
}
