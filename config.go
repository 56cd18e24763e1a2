package outline

import (
	"fmt"
)

// Config carries the settings shared by the GPU and software backends.
type Config struct {
	// Style is used for views that do not carry their own (zero Width and
	// zero Color).
	Style Style

	// StepPolicy decides the jump flood iteration count.
	StepPolicy StepPolicy

	// MaskSampleCount is the multisample count of the GPU mask target. 1
	// disables multisampling. The software backend always uses analytic
	// coverage.
	MaskSampleCount uint32

	// KnockoutInterior removes the outline where the mask is covered, so the
	// outline only surrounds the silhouette. Off by default: the outline is
	// fully opaque wherever the distance to a seed is below the width,
	// interior included.
	KnockoutInterior bool

	// Workers bounds the goroutines of a software pass. 0 uses GOMAXPROCS.
	Workers int

	Logger Logger
}

func DefaultConfig() Config {
	return Config{
		Style:           DefaultStyle(),
		StepPolicy:      StepsFromDimensions,
		MaskSampleCount: DefaultMaskSampleCount,
	}
}

func (c Config) WithStyle(s Style) Config {
	c.Style = s
	return c
}

func (c Config) WithStepPolicy(p StepPolicy) Config {
	c.StepPolicy = p
	return c
}

func (c Config) WithWorkers(n int) Config {
	c.Workers = n
	return c
}

func (c Config) WithLogger(l Logger) Config {
	c.Logger = l
	return c
}

func (c Config) Validate() error {
	if err := c.Style.Validate(); err != nil {
		return err
	}
	if err := c.StepPolicy.Validate(); err != nil {
		return err
	}
	switch c.MaskSampleCount {
	case 1, 4:
	default:
		return fmt.Errorf("%w: mask sample count %d (want 1 or 4)", ErrInvalidConfig, c.MaskSampleCount)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// StyleFor returns the view's style, falling back to the configured default.
func (c Config) StyleFor(v *View) Style {
	if v == nil || v.Style == (Style{}) {
		return c.Style
	}
	return v.Style
}
