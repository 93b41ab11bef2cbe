package guess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 6, Sum([]int{1, 2, 3}))
	assert.Equal(t, 0, Sum([]int(nil)))
	assert.InDelta(t, 2.0, Mean([]int{1, 2, 3}), 1e-12)
	assert.Equal(t, 0.0, Mean([]float64{}))
	assert.InDelta(t, 1.25, Variance([]int{1, 2, 3, 4}), 1e-12)
	assert.Equal(t, 0.0, Variance([]int{}))
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
	assert.Equal(t, 0.0, StdDev([]int{3, 3, 3}))
}
