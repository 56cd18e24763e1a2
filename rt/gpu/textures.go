package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/outline"
	"github.com/gekko3d/outline/rt/resource"
)

// Texture is a device texture with its default view.
type Texture struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
}

type allocator struct {
	device *wgpu.Device
}

func (a allocator) Allocate(key resource.Key) (*Texture, error) {
	format, err := nativeFormat(key.Format)
	if err != nil {
		return nil, err
	}
	usage := wgpu.TextureUsageRenderAttachment
	if key.SampleCount == 1 {
		usage |= wgpu.TextureUsageTextureBinding
	}
	tex, err := a.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         string(key.Purpose),
		Size:          wgpu.Extent3D{Width: key.Width, Height: key.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   key.SampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %s: %w", key, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create view %s: %w", key, err)
	}
	return &Texture{Texture: tex, View: view}, nil
}

func (a allocator) Release(t *Texture) {
	if t == nil {
		return
	}
	if t.View != nil {
		t.View.Release()
	}
	if t.Texture != nil {
		t.Texture.Release()
	}
}

// textureTemplates lists the transient textures. The multisampled mask is
// only needed when the mask pass resolves.
func textureTemplates(maskSamples uint32) []resource.Template {
	var ts []resource.Template
	if maskSamples > 1 {
		ts = append(ts, resource.Template{Purpose: resource.MaskMultisample, Format: outline.FormatMask, SampleCount: maskSamples})
	}
	return append(ts,
		resource.Template{Purpose: resource.Mask, Format: outline.FormatMask, SampleCount: 1},
		resource.Template{Purpose: resource.SeedPrimary, Format: outline.FormatSeed, SampleCount: 1},
		resource.Template{Purpose: resource.SeedSecondary, Format: outline.FormatSeed, SampleCount: 1},
	)
}
