package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/outline"
	"github.com/gekko3d/outline/rt/graph"
	"github.com/gekko3d/outline/rt/resource"
)

var sentinelClear = wgpu.Color{R: -outline.SeedScale, G: -outline.SeedScale, B: 0, A: 0}

type maskNode struct{ r *Renderer }

func (n *maskNode) Input() []graph.SlotInfo  { return graph.MaskInputs }
func (n *maskNode) Output() []graph.SlotInfo { return graph.MaskOutputs }

func (n *maskNode) Run(ctx *graph.Context) error {
	r := n.r
	view, err := graph.InputAs[*outline.View](ctx, graph.SlotView)
	if err != nil {
		return err
	}
	pipeline, err := r.pipelines.Get(maskPipeline)
	if err != nil {
		return err
	}
	set, err := r.current(r.groups.mask)
	if err != nil {
		return err
	}

	items := view.Visible()
	if err := r.ensureModelCapacity(len(items)); err != nil {
		return err
	}
	if err := r.queue.WriteBuffer(r.viewBuf, 0, viewBytes(view.ViewProjection())); err != nil {
		return fmt.Errorf("write view: %w", err)
	}
	if len(items) > 0 {
		r.models = modelBytes(r.models, items)
		if err := r.queue.WriteBuffer(r.modelBuf, 0, r.models); err != nil {
			return fmt.Errorf("write models: %w", err)
		}
	}

	resolved := set.Texture(resource.Mask)
	attachment := wgpu.RenderPassColorAttachment{
		View:       resolved.View,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 0},
	}
	if ms := set.Texture(resource.MaskMultisample); ms != nil {
		attachment.View = ms.View
		attachment.ResolveTarget = resolved.View
		attachment.StoreOp = wgpu.StoreOpDiscard
	}

	pass := r.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:            graph.MaskPass,
		ColorAttachments: []wgpu.RenderPassColorAttachment{attachment},
	})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, r.viewBG, nil)
	for i, item := range items {
		mesh, err := r.meshes.get(item.Mesh)
		if err != nil {
			pass.End()
			return err
		}
		pass.SetBindGroup(1, r.modelBG, []uint32{uint32(i * uniformStride)})
		pass.SetVertexBuffer(0, mesh.vertex, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(mesh.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(mesh.indexCount, 1, 0, 0, 0)
	}
	if err := pass.End(); err != nil {
		return err
	}
	ctx.SetOutput(graph.SlotMask, resolved.View)
	return nil
}

type jfaInitNode struct{ r *Renderer }

func (n *jfaInitNode) Input() []graph.SlotInfo  { return graph.JfaInitInputs }
func (n *jfaInitNode) Output() []graph.SlotInfo { return graph.JfaInitOutputs }

func (n *jfaInitNode) Run(ctx *graph.Context) error {
	r := n.r
	if _, err := graph.InputAs[*wgpu.TextureView](ctx, graph.SlotMask); err != nil {
		return err
	}
	pipeline, err := r.pipelines.Get(jfaInitPipeline)
	if err != nil {
		return err
	}
	if _, err := r.current(r.groups.jfaInitBinding); err != nil {
		return err
	}

	r.seeds.Reset()
	dst := r.seeds.Read()
	pass := r.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: graph.JfaInitPass,
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       dst.view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: sentinelClear,
		}},
	})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, r.groups.jfaInit, nil)
	pass.Draw(3, 1, 0, 0)
	if err := pass.End(); err != nil {
		return err
	}
	ctx.SetOutput(graph.SlotSeeds, dst.view)
	return nil
}

type jfaNode struct{ r *Renderer }

func (n *jfaNode) Input() []graph.SlotInfo  { return graph.JfaInputs }
func (n *jfaNode) Output() []graph.SlotInfo { return graph.JfaOutputs }

func (n *jfaNode) Run(ctx *graph.Context) error {
	r := n.r
	in, err := graph.InputAs[*wgpu.TextureView](ctx, graph.SlotInSeeds)
	if err != nil {
		return err
	}
	pipeline, err := r.pipelines.Get(jfaPipeline)
	if err != nil {
		return err
	}
	set, err := r.current(r.groups.jfaBinding)
	if err != nil {
		return err
	}
	if in != r.seeds.Read().view {
		return fmt.Errorf("%w: jump flood input is not the primary seed buffer", outline.ErrResourceMismatch)
	}

	w, h := set.Dimensions().Size()
	steps := outline.JumpSteps(w, h, r.cfg.StepPolicy)
	for _, step := range steps {
		offset, err := jumpOffset(step)
		if err != nil {
			return err
		}
		src, dst := r.seeds.Read(), r.seeds.Write()
		pass := r.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			Label: graph.JfaPass,
			ColorAttachments: []wgpu.RenderPassColorAttachment{{
				View:       dst.view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: sentinelClear,
			}},
		})
		pass.SetPipeline(pipeline)
		pass.SetBindGroup(0, src.jfaRead, nil)
		pass.SetBindGroup(1, r.jumpBG, []uint32{offset})
		pass.Draw(3, 1, 0, 0)
		if err := pass.End(); err != nil {
			return err
		}
		r.seeds.Swap()
	}
	r.log.Debugf("jump flood: %d steps %v (%s)", len(steps), steps, r.cfg.StepPolicy)
	ctx.SetOutput(graph.SlotOutSeeds, r.seeds.Read().view)
	return nil
}

type outlineNode struct{ r *Renderer }

func (n *outlineNode) Input() []graph.SlotInfo  { return graph.OutlineInputs }
func (n *outlineNode) Output() []graph.SlotInfo { return graph.OutlineOutputs }

func (n *outlineNode) Run(ctx *graph.Context) error {
	r := n.r
	seeds, err := graph.InputAs[*wgpu.TextureView](ctx, graph.SlotSeeds)
	if err != nil {
		return err
	}
	if _, err := graph.InputAs[*wgpu.TextureView](ctx, graph.SlotMask); err != nil {
		return err
	}
	view, err := graph.InputAs[*outline.View](ctx, graph.SlotView)
	if err != nil {
		return err
	}
	target, err := graph.InputAs[*wgpu.TextureView](ctx, graph.SlotTarget)
	if err != nil {
		return err
	}
	pipeline, err := r.pipelines.Get(outlinePipeline)
	if err != nil {
		return err
	}
	if _, err := r.current(r.groups.outlineBinding); err != nil {
		return err
	}
	result := r.seeds.Read()
	if seeds != result.view {
		return fmt.Errorf("%w: composite input is not the last jump flood output", outline.ErrResourceMismatch)
	}

	if err := r.queue.WriteBuffer(r.paramsBuf, 0, paramsBytes(r.cfg.StyleFor(view), r.cfg.KnockoutInterior)); err != nil {
		return fmt.Errorf("write style: %w", err)
	}

	pass := r.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: graph.OutlinePass,
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    target,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}},
	})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, result.outlineBG, nil)
	pass.SetBindGroup(1, r.paramsBG, nil)
	pass.Draw(3, 1, 0, 0)
	if err := pass.End(); err != nil {
		return err
	}
	ctx.SetOutput(graph.SlotTarget, target)
	return nil
}
