// Package outline computes screen-space silhouette outlines for selected
// meshes with the Jump Flooding Algorithm.
//
// A frame runs four stages in a fixed order:
//
//	mask_pass     view  -> mask    rasterize outlined meshes into coverage
//	jfa_init_pass mask  -> seeds   covered pixels seed their own coordinate
//	jfa_pass      seeds -> seeds   log2 jump flood iterations, ping-ponged
//	outline_pass  seeds -> target  distance, smoothstep, source-over blend
//
// This package holds the backend-neutral pieces: dimensions, the jump
// distance sequence, the seed fixed-point encoding, styles, views and the
// ping-pong selector. The passes themselves live in rt/gpu (WebGPU) and
// rt/soft (CPU reference), both described by rt/graph and backed by the
// texture cache in rt/resource.
//
// Outlines adapted from "The Quest for Very Wide Outlines" by Ben Golus.
package outline
