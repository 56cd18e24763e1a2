package outline

import "fmt"

// MaxJumpExponent bounds the jump distance table: steps range over 2^0..2^15.
const MaxJumpExponent = 15

// StepPolicy chooses how many jump flood iterations run per frame.
type StepPolicy struct {
	// Fixed selects a constant sequence 2^MaxExponent..1 instead of deriving
	// it from the target dimensions. A fixed exponent smaller than the
	// dimensions need is raised to FirstJumpExponent.
	Fixed       bool
	MaxExponent int
}

// StepsFromDimensions derives the sequence from the current resolution.
var StepsFromDimensions = StepPolicy{}

// StepsFixed starts at 2^maxExponent unless the resolution needs a longer
// first jump.
func StepsFixed(maxExponent int) StepPolicy {
	return StepPolicy{Fixed: true, MaxExponent: maxExponent}
}

func (p StepPolicy) Validate() error {
	if p.Fixed && (p.MaxExponent < 0 || p.MaxExponent > MaxJumpExponent) {
		return fmt.Errorf("%w: fixed jump exponent %d outside [0, %d]", ErrInvalidConfig, p.MaxExponent, MaxJumpExponent)
	}
	return nil
}

func (p StepPolicy) String() string {
	if p.Fixed {
		return fmt.Sprintf("fixed(2^%d)", p.MaxExponent)
	}
	return "dimensions"
}

// FirstJumpExponent returns e such that 2^e is the smallest power of two
// greater than or equal to ceil(max(width, height) / 2).
func FirstJumpExponent(width, height uint32) int {
	extent := width
	if height > extent {
		extent = height
	}
	half := (extent + 1) / 2
	e := 0
	for uint32(1)<<e < half {
		e++
	}
	if e > MaxJumpExponent {
		e = MaxJumpExponent
	}
	return e
}

// JumpSteps returns the strictly decreasing power-of-two jump distances for a
// width×height buffer. The first step is never below half the larger
// dimension, so every seed can reach every pixel, and the sequence always
// ends at 1.
func JumpSteps(width, height uint32, policy StepPolicy) []uint32 {
	e := FirstJumpExponent(width, height)
	if policy.Fixed {
		e = max(e, policy.MaxExponent)
	}
	steps := make([]uint32, 0, e+1)
	for ; e >= 0; e-- {
		steps = append(steps, uint32(1)<<e)
	}
	return steps
}

// JumpExponent returns log2(step) for a power-of-two step.
func JumpExponent(step uint32) int {
	e := 0
	for step > 1 {
		step >>= 1
		e++
	}
	return e
}
