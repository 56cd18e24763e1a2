// Package shaders holds the WGSL programs of the outline passes.
package shaders

import (
	_ "embed"
)

//go:embed fullscreen.wgsl
var FullscreenWGSL string

//go:embed mask.wgsl
var MaskWGSL string

//go:embed jfa_init.wgsl
var JfaInitWGSL string

//go:embed jfa.wgsl
var JfaWGSL string

//go:embed outline.wgsl
var OutlineWGSL string

// Fullscreen returns a full-screen pass program: the shared vertex stage and
// seed helpers followed by src.
func Fullscreen(src string) string {
	return FullscreenWGSL + "\n" + src
}
