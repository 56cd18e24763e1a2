package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJumpSteps_Validity(t *testing.T) {
	sizes := []uint32{1, 2, 3, 4, 5, 7, 8, 9, 31, 32, 33, 100, 255, 256, 257, 720, 1080, 1920, 4096, 32767}
	for _, w := range sizes {
		for _, h := range sizes {
			steps := JumpSteps(w, h, StepsFromDimensions)
			require.NotEmpty(t, steps)

			extent := max(w, h)
			first := steps[0]
			assert.GreaterOrEqual(t, first, (extent+1)/2, "%dx%d", w, h)
			if first > 1 {
				assert.Less(t, first/2, (extent+1)/2, "%dx%d: first step not minimal", w, h)
			}
			for _, e := range []int{0, 4, 10} {
				fixed := JumpSteps(w, h, StepsFixed(e))
				assert.GreaterOrEqual(t, fixed[0], first, "%dx%d fixed(2^%d)", w, h, e)
				assert.Equal(t, uint32(1), fixed[len(fixed)-1])
			}

			for i, s := range steps {
				assert.Zero(t, s&(s-1), "%dx%d: %d is not a power of two", w, h, s)
				if i > 0 {
					assert.Equal(t, steps[i-1]/2, s, "%dx%d: sequence halves", w, h)
				}
			}
			assert.Equal(t, uint32(1), steps[len(steps)-1], "%dx%d ends at 1", w, h)
			assert.Len(t, steps, JumpExponent(first)+1)

			// Every offset inside the buffer is reachable.
			var sum uint32
			for _, s := range steps {
				sum += s
			}
			assert.GreaterOrEqual(t, sum, extent-1, "%dx%d", w, h)
		}
	}
}

func TestJumpSteps_Examples(t *testing.T) {
	assert.Equal(t, []uint32{1}, JumpSteps(1, 1, StepsFromDimensions))
	assert.Equal(t, []uint32{1}, JumpSteps(2, 1, StepsFromDimensions))
	assert.Equal(t, []uint32{2, 1}, JumpSteps(3, 3, StepsFromDimensions))
	assert.Equal(t, []uint32{1024, 512, 256, 128, 64, 32, 16, 8, 4, 2, 1}, JumpSteps(1920, 1080, StepsFromDimensions))
}

func TestJumpSteps_Fixed(t *testing.T) {
	steps := JumpSteps(64, 64, StepsFixed(8))
	assert.Equal(t, []uint32{256, 128, 64, 32, 16, 8, 4, 2, 1}, steps)
	assert.Equal(t, JumpSteps(1920, 1080, StepsFromDimensions), JumpSteps(1920, 1080, StepsFixed(8)),
		"a short fixed sequence is raised to reach across the frame")
	assert.Equal(t, uint32(2048), JumpSteps(4000, 4000, StepsFixed(0))[0])
	assert.Equal(t, []uint32{1}, JumpSteps(2, 2, StepsFixed(0)))
}

func TestStepPolicy_Validate(t *testing.T) {
	assert.NoError(t, StepsFromDimensions.Validate())
	assert.NoError(t, StepsFixed(MaxJumpExponent).Validate())
	assert.ErrorIs(t, StepsFixed(MaxJumpExponent+1).Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, StepsFixed(-1).Validate(), ErrInvalidConfig)
	assert.Equal(t, "fixed(2^8)", StepsFixed(8).String())
	assert.Equal(t, "dimensions", StepsFromDimensions.String())
}

func TestJumpExponent(t *testing.T) {
	for e := 0; e <= MaxJumpExponent; e++ {
		assert.Equal(t, e, JumpExponent(uint32(1)<<e))
	}
}
