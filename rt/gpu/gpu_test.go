package gpu

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/outline"
	"github.com/gekko3d/outline/rt/resource"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTargetFormat(t *testing.T) {
	tests := []struct {
		format wgpu.TextureFormat
		ok     bool
	}{
		{wgpu.TextureFormatBGRA8Unorm, true},
		{wgpu.TextureFormatBGRA8UnormSrgb, true},
		{wgpu.TextureFormatRGBA8Unorm, true},
		{wgpu.TextureFormatRGBA16Float, true},
		{wgpu.TextureFormatDepth24Plus, false},
		{wgpu.TextureFormatDepth24PlusStencil8, false},
		{wgpu.TextureFormatDepth32Float, false},
		{wgpu.TextureFormatRGBA8Uint, false},
		{wgpu.TextureFormatRG16Sint, false},
		{wgpu.TextureFormatRGBA32Float, false},
	}
	for _, tc := range tests {
		err := CheckTargetFormat(tc.format)
		if tc.ok {
			assert.NoError(t, err, "%v", tc.format)
		} else {
			assert.ErrorIs(t, err, outline.ErrUnsupportedFormat, "%v", tc.format)
		}
	}
}

func TestNativeFormat(t *testing.T) {
	f, err := nativeFormat(outline.FormatMask)
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatR8Unorm, f)

	f, err = nativeFormat(outline.FormatSeed)
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatRG16Sint, f)

	_, err = nativeFormat(outline.FormatUndefined)
	assert.ErrorIs(t, err, outline.ErrUnsupportedFormat)
}

func TestJumpTable(t *testing.T) {
	table := jumpTable()
	require.Len(t, table, (outline.MaxJumpExponent+1)*uniformStride)

	for _, step := range outline.JumpSteps(1920, 1080, outline.StepsFromDimensions) {
		off, err := jumpOffset(step)
		require.NoError(t, err)
		assert.Zero(t, off%uniformStride)
		assert.Equal(t, step, binary.LittleEndian.Uint32(table[off:]))
	}

	for _, bad := range []uint32{0, 3, 12, 1 << 16} {
		_, err := jumpOffset(bad)
		assert.ErrorIs(t, err, outline.ErrInvalidConfig, "step %d", bad)
	}
}

func TestModelBytes(t *testing.T) {
	items := []outline.DrawItem{
		{Model: mgl32.Translate3D(1, 2, 3)},
		{Model: mgl32.Scale3D(4, 5, 6)},
	}
	buf := modelBytes(nil, items)
	require.Len(t, buf, 2*uniformStride)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	// Column-major: translation lives in elements 12..14.
	assert.Equal(t, float32(1), f(12*4))
	assert.Equal(t, float32(3), f(14*4))
	assert.Equal(t, float32(4), f(uniformStride))
	assert.Equal(t, float32(6), f(uniformStride+10*4))
	assert.Zero(t, f(mat4Size), "padding between slots stays zero")

	reused := modelBytes(buf, items[:1])
	assert.Len(t, reused, uniformStride)
}

func TestParamsBytes(t *testing.T) {
	style := outline.Style{Color: [4]float32{0.25, 0.5, 0.75, 1}, Width: 12}
	f := func(b []byte, off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[off:])) }

	on := paramsBytes(style, true)
	require.Len(t, on, paramsSize)
	assert.Equal(t, float32(0.75), f(on, 8))
	assert.Equal(t, float32(12), f(on, 16))
	assert.Equal(t, float32(1), f(on, 20))

	off := paramsBytes(style, false)
	assert.Equal(t, float32(0), f(off, 20))
}

func TestTextureTemplates(t *testing.T) {
	purposes := func(ts []resource.Template) []resource.Purpose {
		var ps []resource.Purpose
		for _, tpl := range ts {
			ps = append(ps, tpl.Purpose)
		}
		return ps
	}
	ms := textureTemplates(4)
	assert.Equal(t, []resource.Purpose{resource.MaskMultisample, resource.Mask, resource.SeedPrimary, resource.SeedSecondary}, purposes(ms))
	assert.Equal(t, uint32(4), ms[0].SampleCount)

	single := textureTemplates(1)
	assert.Equal(t, []resource.Purpose{resource.Mask, resource.SeedPrimary, resource.SeedSecondary}, purposes(single))
}

func TestPipelineCache_NotReadyUntilCompiled(t *testing.T) {
	c := newPipelineCache[string](nil)
	release := make(chan struct{})
	c.Queue("jfa", func() (string, error) {
		<-release
		return "compiled", nil
	})

	_, err := c.Get("jfa")
	assert.ErrorIs(t, err, outline.ErrNotReady)

	close(release)
	c.Wait()
	p, err := c.Get("jfa")
	require.NoError(t, err)
	assert.Equal(t, "compiled", p)
}

func TestPipelineCache_FailureIsFatal(t *testing.T) {
	c := newPipelineCache[string](nil)
	compileErr := errors.New("wgsl: unknown identifier")
	c.Queue("outline", func() (string, error) { return "", compileErr })
	c.Wait()

	_, err := c.Get("outline")
	assert.ErrorIs(t, err, compileErr)
	assert.NotErrorIs(t, err, outline.ErrNotReady)

	_, err = c.Get("missing")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, outline.ErrNotReady)
}

func TestPipelineCache_QueueOnce(t *testing.T) {
	c := newPipelineCache[int](nil)
	var mu sync.Mutex
	builds := 0
	for i := 0; i < 5; i++ {
		c.Queue("mask", func() (int, error) {
			mu.Lock()
			builds++
			mu.Unlock()
			return 1, nil
		})
	}
	c.Wait()
	assert.Equal(t, 1, builds)

	var names []string
	c.Each(func(name string, _ int) { names = append(names, name) })
	assert.Equal(t, []string{"mask"}, names)
}
