package guess

import "math"

type number interface {
	~int | ~int64 | ~float64
}

// Sum adds up xs.
func Sum[T number](xs []T) T {
	var s T
	for _, x := range xs {
		s += x
	}
	return s
}

// Mean is the arithmetic mean of xs, 0 for an empty slice.
func Mean[T number](xs []T) float64 {
	if len(xs) == 0 {
		return 0
	}
	return float64(Sum(xs)) / float64(len(xs))
}

// Variance is the population variance of xs, 0 for an empty slice.
func Variance[T number](xs []T) float64 {
	if len(xs) == 0 {
		return 0
	}
	avg := Mean(xs)
	var acc float64
	for _, x := range xs {
		d := float64(x) - avg
		acc += d * d
	}
	return acc / float64(len(xs))
}

// StdDev is the population standard deviation of xs.
func StdDev[T number](xs []T) float64 {
	return math.Sqrt(Variance(xs))
}
