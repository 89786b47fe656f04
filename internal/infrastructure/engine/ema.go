package engine

// emaSeries computes an exponential moving average seeded with the first
// value rather than a simple-average warmup, so it is defined from index 0.
func emaSeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}

	k := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]

	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}

	return out
}
