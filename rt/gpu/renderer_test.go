package gpu

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/outline"
	"github.com/gekko3d/outline/rt/graph"
	"github.com/gekko3d/outline/rt/resource"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newDevicelessRenderer builds a Renderer whose device-independent state is
// usable: pipelines, graph and binding bookkeeping.
func newDevicelessRenderer(t *testing.T) *Renderer {
	r := &Renderer{
		cfg:       outline.DefaultConfig(),
		log:       outline.NewNopLogger(),
		pipelines: newPipelineCache[*wgpu.RenderPipeline](nil),
	}
	var err error
	r.graph, err = graph.Outline(&maskNode{r}, &jfaInitNode{r}, &jfaNode{r}, &outlineNode{r})
	require.NoError(t, err)
	return r
}

func frameInputs() map[string]any {
	return map[string]any{
		graph.InputView: &outline.View{
			Name:       "test",
			ViewMatrix: mgl32.Ident4(),
			Projection: outline.OrthoZO(0, 8, 8, 0, -1, 1),
		},
		graph.InputTarget: (*wgpu.TextureView)(nil),
	}
}

func TestRenderer_SkipsFrameWhilePipelinesCompile(t *testing.T) {
	r := newDevicelessRenderer(t)
	release := make(chan struct{})
	r.pipelines.Queue(maskPipeline, func() (*wgpu.RenderPipeline, error) {
		<-release
		return nil, nil
	})
	defer func() {
		close(release)
		r.pipelines.Wait()
	}()

	res, err := r.graph.Run(frameInputs())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, graph.MaskPass, res.SkippedAt)
	assert.Empty(t, res.Ran, "no pass recorded")
}

func TestRenderer_CompileFailureAbortsFrame(t *testing.T) {
	r := newDevicelessRenderer(t)
	compileErr := errors.New("wgsl: unknown identifier")
	r.pipelines.Queue(maskPipeline, func() (*wgpu.RenderPipeline, error) { return nil, compileErr })
	r.pipelines.Wait()

	res, err := r.graph.Run(frameInputs())
	assert.ErrorIs(t, err, compileErr)
	assert.Contains(t, err.Error(), graph.MaskPass)
	assert.False(t, res.Skipped)
}

type fakeAllocator struct{}

func (fakeAllocator) Allocate(resource.Key) (*Texture, error) { return &Texture{}, nil }
func (fakeAllocator) Release(*Texture)                        {}

func TestRenderer_DimensionsUploadFailureKeepsBindings(t *testing.T) {
	r := newDevicelessRenderer(t)
	uploadErr := errors.New("queue lost")
	var uploaded []string
	fail := false
	r.writeDims = func(d outline.Dimensions) error {
		if fail {
			return uploadErr
		}
		uploaded = append(uploaded, d.String())
		return nil
	}
	cache := resource.NewCache[*Texture](fakeAllocator{}, textureTemplates(1), r.log)
	bind := func(set *resource.Set[*Texture]) error { return r.commit(&bindGroups{}, set) }

	small, err := outline.NewDimensions(64, 32)
	require.NoError(t, err)
	_, err = cache.Ensure(small, bind)
	require.NoError(t, err)
	first := r.groups
	require.NotNil(t, first)
	assert.Equal(t, []string{"64x32"}, uploaded)
	assert.NoError(t, cache.Current().CheckBinding(first.outlineBinding))

	fail = true
	large, err := outline.NewDimensions(128, 64)
	require.NoError(t, err)
	_, err = cache.Ensure(large, bind)
	assert.ErrorIs(t, err, uploadErr)
	assert.Same(t, first, r.groups, "previous bindings stay current")
	assert.Equal(t, small, cache.Current().Dimensions())
	assert.NoError(t, cache.Current().CheckBinding(r.groups.outlineBinding))
	assert.NoError(t, cache.Current().CheckBinding(r.groups.jfaBinding))
	assert.Equal(t, []string{"64x32"}, uploaded)

	fail = false
	_, err = cache.Ensure(large, bind)
	require.NoError(t, err)
	assert.NotSame(t, first, r.groups)
	assert.Equal(t, []string{"64x32", "128x64"}, uploaded)
	assert.NoError(t, cache.Current().CheckBinding(r.groups.outlineBinding))
}
