package outline

// TextureFormat names the backend-neutral formats of the pipeline's own
// textures. Backends map them to native formats.
type TextureFormat int

const (
	FormatUndefined TextureFormat = iota
	// FormatMask is single-channel coverage, 0 (uncovered) to 1 (covered).
	FormatMask
	// FormatSeed is two signed 16-bit channels holding SeedTexel values.
	FormatSeed
)

func (f TextureFormat) String() string {
	switch f {
	case FormatMask:
		return "r8unorm"
	case FormatSeed:
		return "rg16sint"
	default:
		return "undefined"
	}
}

// FullCoverage is the stored mask value of a fully covered pixel.
const FullCoverage = 0xff

// DefaultMaskSampleCount is the multisample count of the mask pass.
const DefaultMaskSampleCount = 4
