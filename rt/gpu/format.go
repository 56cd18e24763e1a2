// Package gpu runs the outline pipeline as WebGPU render passes.
package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/outline"
)

// CheckTargetFormat fails with outline.ErrUnsupportedFormat unless format can
// be used as a blended color attachment without optional device features.
func CheckTargetFormat(format wgpu.TextureFormat) error {
	switch format {
	case wgpu.TextureFormatR8Unorm,
		wgpu.TextureFormatRG8Unorm,
		wgpu.TextureFormatRGBA8Unorm,
		wgpu.TextureFormatRGBA8UnormSrgb,
		wgpu.TextureFormatBGRA8Unorm,
		wgpu.TextureFormatBGRA8UnormSrgb,
		wgpu.TextureFormatRGB10A2Unorm,
		wgpu.TextureFormatR16Float,
		wgpu.TextureFormatRG16Float,
		wgpu.TextureFormatRGBA16Float:
		return nil
	case wgpu.TextureFormatStencil8,
		wgpu.TextureFormatDepth16Unorm,
		wgpu.TextureFormatDepth24Plus,
		wgpu.TextureFormatDepth24PlusStencil8,
		wgpu.TextureFormatDepth32Float,
		wgpu.TextureFormatDepth32FloatStencil8:
		return fmt.Errorf("%w: %v is a depth/stencil format", outline.ErrUnsupportedFormat, format)
	default:
		return fmt.Errorf("%w: %v is not blendable", outline.ErrUnsupportedFormat, format)
	}
}

// nativeFormat maps the pipeline's own texture formats.
func nativeFormat(f outline.TextureFormat) (wgpu.TextureFormat, error) {
	switch f {
	case outline.FormatMask:
		return wgpu.TextureFormatR8Unorm, nil
	case outline.FormatSeed:
		return wgpu.TextureFormatRG16Sint, nil
	default:
		return wgpu.TextureFormatUndefined, fmt.Errorf("%w: %s", outline.ErrUnsupportedFormat, f)
	}
}
