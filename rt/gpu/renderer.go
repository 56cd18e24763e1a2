package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/outline"
	"github.com/gekko3d/outline/rt/graph"
	"github.com/gekko3d/outline/rt/resource"
)

// seedTarget is one seed texture together with the bind groups that read it.
type seedTarget struct {
	view      *wgpu.TextureView
	jfaRead   *wgpu.BindGroup
	outlineBG *wgpu.BindGroup
}

// bindGroups is the resolution-dependent binding state, rebuilt with the
// texture set.
type bindGroups struct {
	jfaInit            *wgpu.BindGroup
	primary, secondary seedTarget

	mask, jfaInitBinding, jfaBinding, outlineBinding resource.Binding
}

func (b *bindGroups) release() {
	for _, bg := range []*wgpu.BindGroup{
		b.jfaInit,
		b.primary.jfaRead, b.primary.outlineBG,
		b.secondary.jfaRead, b.secondary.outlineBG,
	} {
		if bg != nil {
			bg.Release()
		}
	}
}

// Renderer records the outline passes into a command encoder. It is not safe
// for concurrent use.
type Renderer struct {
	device       *wgpu.Device
	queue        *wgpu.Queue
	cfg          outline.Config
	log          outline.Logger
	targetFormat wgpu.TextureFormat

	layouts   *layouts
	pipelines *pipelineCache[*wgpu.RenderPipeline]
	cache     *resource.Cache[*Texture]
	meshes    *meshCache
	graph     *graph.Graph

	dimsBuf   *wgpu.Buffer
	writeDims func(outline.Dimensions) error
	jumpBuf   *wgpu.Buffer
	viewBuf   *wgpu.Buffer
	paramsBuf *wgpu.Buffer
	modelBuf  *wgpu.Buffer
	modelCap  int
	models    []byte

	viewBG   *wgpu.BindGroup
	modelBG  *wgpu.BindGroup
	jumpBG   *wgpu.BindGroup
	paramsBG *wgpu.BindGroup
	groups   *bindGroups
	seeds    outline.PingPong[*seedTarget]

	encoder *wgpu.CommandEncoder
}

// NewRenderer creates the device objects that do not depend on the
// resolution and starts compiling the programs. targetFormat is the format of
// the color targets passed to Render.
func NewRenderer(device *wgpu.Device, targetFormat wgpu.TextureFormat, cfg outline.Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := CheckTargetFormat(targetFormat); err != nil {
		return nil, err
	}

	r := &Renderer{
		device:       device,
		queue:        device.GetQueue(),
		cfg:          cfg,
		log:          outline.LoggerOrNop(cfg.Logger),
		targetFormat: targetFormat,
		meshes:       newMeshCache(device),
	}
	r.writeDims = func(d outline.Dimensions) error {
		return r.queue.WriteBuffer(r.dimsBuf, 0, d.Bytes())
	}
	r.pipelines = newPipelineCache[*wgpu.RenderPipeline](r.log)
	r.cache = resource.NewCache[*Texture](allocator{device: device}, textureTemplates(cfg.MaskSampleCount), r.log)

	var err error
	if r.layouts, err = newLayouts(device); err != nil {
		return nil, fmt.Errorf("create bind group layouts: %w", err)
	}
	if err = r.createBuffers(); err != nil {
		r.Release()
		return nil, err
	}

	r.graph, err = graph.Outline(&maskNode{r}, &jfaInitNode{r}, &jfaNode{r}, &outlineNode{r})
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("build outline graph: %w", err)
	}

	queuePipelines(r.pipelines, device, r.layouts, cfg.MaskSampleCount, targetFormat)
	return r, nil
}

func (r *Renderer) createBuffers() error {
	var err error
	uniform := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	if r.dimsBuf, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{Label: "outline_dimensions", Size: 16, Usage: uniform}); err != nil {
		return err
	}
	if r.viewBuf, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{Label: "outline_view", Size: mat4Size, Usage: uniform}); err != nil {
		return err
	}
	if r.paramsBuf, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{Label: "outline_params", Size: paramsSize, Usage: uniform}); err != nil {
		return err
	}
	if r.jumpBuf, err = r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "outline_jump_distances",
		Contents: jumpTable(),
		Usage:    wgpu.BufferUsageUniform,
	}); err != nil {
		return err
	}

	if r.viewBG, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "outline_view_bind_group",
		Layout:  r.layouts.view,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: r.viewBuf, Size: mat4Size}},
	}); err != nil {
		return err
	}
	if r.jumpBG, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "outline_jump_bind_group",
		Layout:  r.layouts.jump,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: r.jumpBuf, Size: 16}},
	}); err != nil {
		return err
	}
	if r.paramsBG, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "outline_params_bind_group",
		Layout:  r.layouts.params,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: r.paramsBuf, Size: paramsSize}},
	}); err != nil {
		return err
	}
	return r.ensureModelCapacity(16)
}

// ensureModelCapacity grows the per-item model buffer to hold n matrices.
func (r *Renderer) ensureModelCapacity(n int) error {
	if n <= r.modelCap {
		return nil
	}
	capacity := max(n, 2*r.modelCap)
	buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "outline_models",
		Size:  uint64(capacity * uniformStride),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("grow model buffer to %d: %w", capacity, err)
	}
	bg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "outline_model_bind_group",
		Layout:  r.layouts.model,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: buf, Size: mat4Size}},
	})
	if err != nil {
		buf.Release()
		return fmt.Errorf("grow model buffer to %d: %w", capacity, err)
	}
	if r.modelBG != nil {
		r.modelBG.Release()
	}
	if r.modelBuf != nil {
		r.modelBuf.Release()
	}
	r.modelBuf, r.modelBG, r.modelCap = buf, bg, capacity
	return nil
}

// Prepare sizes the transient textures for a width×height target and
// rebuilds the bind groups that reference them. No-op if the size is
// unchanged.
func (r *Renderer) Prepare(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", outline.ErrInvalidConfig, width, height)
	}
	dims, err := outline.NewDimensions(uint32(width), uint32(height))
	if err != nil {
		return err
	}
	_, err = r.cache.Ensure(dims, r.bind)
	return err
}

func (r *Renderer) bind(set *resource.Set[*Texture]) error {
	if err := set.Validate(set.Dimensions()); err != nil {
		return err
	}
	mask := set.Texture(resource.Mask).View
	primary := set.Texture(resource.SeedPrimary).View
	secondary := set.Texture(resource.SeedSecondary).View

	g := &bindGroups{}
	create := func(dst **wgpu.BindGroup, label string, layout *wgpu.BindGroupLayout, entries ...wgpu.BindGroupEntry) error {
		bg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{Label: label, Layout: layout, Entries: entries})
		if err != nil {
			return fmt.Errorf("create %s: %w", label, err)
		}
		*dst = bg
		return nil
	}
	dims := wgpu.BindGroupEntry{Binding: 0, Buffer: r.dimsBuf, Size: 16}

	err := errors.Join(
		create(&g.jfaInit, "outline_jfa_init_bind_group", r.layouts.jfaInit,
			dims, wgpu.BindGroupEntry{Binding: 1, TextureView: mask}),
		create(&g.primary.jfaRead, "outline_jfa_primary_bind_group", r.layouts.jfa,
			dims, wgpu.BindGroupEntry{Binding: 1, TextureView: primary}),
		create(&g.secondary.jfaRead, "outline_jfa_secondary_bind_group", r.layouts.jfa,
			dims, wgpu.BindGroupEntry{Binding: 1, TextureView: secondary}),
		create(&g.primary.outlineBG, "outline_primary_bind_group", r.layouts.outline,
			dims, wgpu.BindGroupEntry{Binding: 1, TextureView: primary}, wgpu.BindGroupEntry{Binding: 2, TextureView: mask}),
		create(&g.secondary.outlineBG, "outline_secondary_bind_group", r.layouts.outline,
			dims, wgpu.BindGroupEntry{Binding: 1, TextureView: secondary}, wgpu.BindGroupEntry{Binding: 2, TextureView: mask}),
	)
	if err != nil {
		g.release()
		return err
	}
	g.primary.view = primary
	g.secondary.view = secondary
	return r.commit(g, set)
}

// commit uploads the dimensions of set and makes g the current binding state.
// On failure g is released and the previous state stays current.
func (r *Renderer) commit(g *bindGroups, set *resource.Set[*Texture]) error {
	if err := r.writeDims(set.Dimensions()); err != nil {
		g.release()
		return fmt.Errorf("write dimensions: %w", err)
	}

	maskPurposes := []resource.Purpose{resource.Mask}
	if r.cfg.MaskSampleCount > 1 {
		maskPurposes = append(maskPurposes, resource.MaskMultisample)
	}
	g.mask = set.Bind(graph.MaskPass, maskPurposes...)
	g.jfaInitBinding = set.Bind(graph.JfaInitPass, resource.Mask, resource.SeedPrimary)
	g.jfaBinding = set.Bind(graph.JfaPass, resource.SeedPrimary, resource.SeedSecondary)
	g.outlineBinding = set.Bind(graph.OutlinePass, resource.Mask, resource.SeedPrimary, resource.SeedSecondary)

	if r.groups != nil {
		r.groups.release()
	}
	r.groups = g
	r.seeds = outline.NewPingPong(&g.primary, &g.secondary)
	return nil
}

// Dimensions returns the prepared size, or the zero value before Prepare.
func (r *Renderer) Dimensions() outline.Dimensions {
	if set := r.cache.Current(); set != nil {
		return set.Dimensions()
	}
	return outline.Dimensions{}
}

// WaitPipelines blocks until every program has been compiled. Without it the
// first frames are skipped until compilation finishes.
func (r *Renderer) WaitPipelines() {
	r.pipelines.Wait()
}

// CheckTarget verifies that tex can be passed to Render: its format must be
// the renderer's target format and its size the prepared size.
func (r *Renderer) CheckTarget(tex *wgpu.Texture) error {
	if f := tex.GetFormat(); f != r.targetFormat {
		return fmt.Errorf("%w: target is %v, renderer was built for %v", outline.ErrUnsupportedFormat, f, r.targetFormat)
	}
	w, h := r.Dimensions().Size()
	if tex.GetWidth() != w || tex.GetHeight() != h {
		return fmt.Errorf("%w: target is %dx%d, dimensions are %s", outline.ErrResourceMismatch, tex.GetWidth(), tex.GetHeight(), r.Dimensions())
	}
	return nil
}

// Render records the four passes for view into encoder, blending the outline
// into target. Uniforms are written through the queue, so the encoder must be
// submitted before Render is called again for another view. A frame whose
// programs are still compiling is skipped: the result reports Skipped and the
// error is nil.
func (r *Renderer) Render(encoder *wgpu.CommandEncoder, view *outline.View, target *wgpu.TextureView) (graph.Result, error) {
	if r.cache.Current() == nil {
		return graph.Result{}, fmt.Errorf("%w: render before prepare", outline.ErrResourceMismatch)
	}
	if view == nil {
		return graph.Result{}, fmt.Errorf("%w: nil view", outline.ErrInvalidConfig)
	}
	style := r.cfg.StyleFor(view)
	if err := style.Validate(); err != nil {
		return graph.Result{}, fmt.Errorf("view %q: %w", view.Name, err)
	}

	r.encoder = encoder
	defer func() { r.encoder = nil }()

	res, err := r.graph.Run(map[string]any{
		graph.InputView:   view,
		graph.InputTarget: target,
	})
	r.meshes.endFrame()
	if err != nil {
		r.log.Errorf("outline frame for view %q failed: %v", view.Name, err)
		return res, err
	}
	if res.Skipped {
		r.log.Debugf("outline frame for view %q skipped at %s", view.Name, res.SkippedAt)
	}
	return res, nil
}

// Release frees every device object owned by the renderer.
func (r *Renderer) Release() {
	r.pipelines.Wait()
	r.pipelines.Each(func(_ string, p *wgpu.RenderPipeline) { p.Release() })
	if r.groups != nil {
		r.groups.release()
		r.groups = nil
	}
	r.cache.Release()
	r.meshes.release()
	for _, bg := range []*wgpu.BindGroup{r.viewBG, r.modelBG, r.jumpBG, r.paramsBG} {
		if bg != nil {
			bg.Release()
		}
	}
	for _, b := range []*wgpu.Buffer{r.dimsBuf, r.jumpBuf, r.viewBuf, r.paramsBuf, r.modelBuf} {
		if b != nil {
			b.Release()
		}
	}
	if r.layouts != nil {
		r.layouts.release()
	}
}

func (r *Renderer) current(b resource.Binding) (*resource.Set[*Texture], error) {
	set := r.cache.Current()
	if set == nil || r.groups == nil {
		return nil, fmt.Errorf("%w: no resources", outline.ErrResourceMismatch)
	}
	if err := set.CheckBinding(b); err != nil {
		return nil, err
	}
	return set, nil
}
