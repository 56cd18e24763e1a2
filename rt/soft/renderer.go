package soft

import (
	"fmt"
	"image"

	"github.com/gekko3d/outline"
	"github.com/gekko3d/outline/rt/graph"
	"github.com/gekko3d/outline/rt/resource"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Renderer draws outlines into in-memory images. It is not safe for
// concurrent use.
type Renderer struct {
	cfg     outline.Config
	log     outline.Logger
	workers int

	cache *resource.Cache[*Texture]
	graph *graph.Graph

	// Rebuilt together with the texture set.
	raster   *vector.Rasterizer
	coverage *image.Alpha
	seeds    outline.PingPong[*SeedBuffer]
	bindings struct {
		mask, jfaInit, jfa, composite resource.Binding
	}
	result *SeedBuffer
}

func NewRenderer(cfg outline.Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Renderer{
		cfg:     cfg,
		log:     outline.LoggerOrNop(cfg.Logger),
		workers: workerCount(cfg.Workers),
	}
	r.cache = resource.NewCache[*Texture](allocator{}, templates, r.log)

	g, err := graph.Outline(&maskNode{r}, &seedInitNode{r}, &jumpFloodNode{r}, &compositeNode{r})
	if err != nil {
		return nil, fmt.Errorf("build outline graph: %w", err)
	}
	r.graph = g
	return r, nil
}

// Prepare sizes every buffer for a width×height target. It is a no-op when
// the size is unchanged.
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
	w, h := set.Dimensions().Size()
	if r.raster == nil {
		r.raster = vector.NewRasterizer(int(w), int(h))
	} else {
		r.raster.Reset(int(w), int(h))
	}
	r.coverage = image.NewAlpha(image.Rect(0, 0, int(w), int(h)))
	r.seeds = outline.NewPingPong(
		set.Texture(resource.SeedPrimary).Seeds,
		set.Texture(resource.SeedSecondary).Seeds,
	)
	r.bindings.mask = set.Bind(graph.MaskPass, resource.Mask)
	r.bindings.jfaInit = set.Bind(graph.JfaInitPass, resource.Mask, resource.SeedPrimary)
	r.bindings.jfa = set.Bind(graph.JfaPass, resource.SeedPrimary, resource.SeedSecondary)
	r.bindings.composite = set.Bind(graph.OutlinePass, resource.Mask, resource.SeedPrimary, resource.SeedSecondary)
	r.result = nil
	return nil
}

// Dimensions returns the prepared size, or the zero value before Prepare.
func (r *Renderer) Dimensions() outline.Dimensions {
	if set := r.cache.Current(); set != nil {
		return set.Dimensions()
	}
	return outline.Dimensions{}
}

// Mask returns the mask of the last frame.
func (r *Renderer) Mask() *image.Alpha {
	if set := r.cache.Current(); set != nil {
		return set.Texture(resource.Mask).Mask
	}
	return nil
}

// Seeds returns the flooded seed buffer of the last frame, or nil.
func (r *Renderer) Seeds() *SeedBuffer { return r.result }

// Render runs the four passes for view and blends the outline into target,
// whose bounds must match the prepared size.
func (r *Renderer) Render(view *outline.View, target draw.Image) (graph.Result, error) {
	set := r.cache.Current()
	if set == nil {
		return graph.Result{}, fmt.Errorf("%w: render before prepare", outline.ErrResourceMismatch)
	}
	if view == nil {
		return graph.Result{}, fmt.Errorf("%w: nil view", outline.ErrInvalidConfig)
	}
	if err := checkTarget(target, set.Dimensions()); err != nil {
		return graph.Result{}, err
	}
	if err := r.cfg.StyleFor(view).Validate(); err != nil {
		return graph.Result{}, fmt.Errorf("view %q: %w", view.Name, err)
	}

	res, err := r.graph.Run(map[string]any{
		graph.InputView:   view,
		graph.InputTarget: target,
	})
	if err != nil {
		r.log.Errorf("outline frame for view %q failed: %v", view.Name, err)
		return res, err
	}
	if res.Skipped {
		r.log.Debugf("outline frame for view %q skipped at %s", view.Name, res.SkippedAt)
	}
	return res, nil
}

// current returns the live set after checking it against the binding a pass
// was prepared with.
func (r *Renderer) current(b resource.Binding) (*resource.Set[*Texture], error) {
	set := r.cache.Current()
	if set == nil {
		return nil, fmt.Errorf("%w: no resources", outline.ErrResourceMismatch)
	}
	if err := set.CheckBinding(b); err != nil {
		return nil, err
	}
	return set, nil
}

type maskNode struct{ r *Renderer }

func (n *maskNode) Input() []graph.SlotInfo  { return graph.MaskInputs }
func (n *maskNode) Output() []graph.SlotInfo { return graph.MaskOutputs }

func (n *maskNode) Run(ctx *graph.Context) error {
	view, err := graph.InputAs[*outline.View](ctx, graph.SlotView)
	if err != nil {
		return err
	}
	set, err := n.r.current(n.r.bindings.mask)
	if err != nil {
		return err
	}
	mask := set.Texture(resource.Mask).Mask
	items := view.Visible()
	tris := rasterizeMask(n.r.raster, mask, items, view.ViewProjection(), set.Dimensions())
	n.r.log.Debugf("mask: %d items, %d triangles", len(items), tris)
	ctx.SetOutput(graph.SlotMask, mask)
	return nil
}

type seedInitNode struct{ r *Renderer }

func (n *seedInitNode) Input() []graph.SlotInfo  { return graph.JfaInitInputs }
func (n *seedInitNode) Output() []graph.SlotInfo { return graph.JfaInitOutputs }

func (n *seedInitNode) Run(ctx *graph.Context) error {
	mask, err := graph.InputAs[*image.Alpha](ctx, graph.SlotMask)
	if err != nil {
		return err
	}
	set, err := n.r.current(n.r.bindings.jfaInit)
	if err != nil {
		return err
	}
	if err := set.Validate(set.Dimensions()); err != nil {
		return err
	}
	n.r.seeds.Reset()
	dst := n.r.seeds.Read()
	initSeeds(dst, mask, set.Dimensions(), n.r.workers)
	ctx.SetOutput(graph.SlotSeeds, dst)
	return nil
}

type jumpFloodNode struct{ r *Renderer }

func (n *jumpFloodNode) Input() []graph.SlotInfo  { return graph.JfaInputs }
func (n *jumpFloodNode) Output() []graph.SlotInfo { return graph.JfaOutputs }

func (n *jumpFloodNode) Run(ctx *graph.Context) error {
	in, err := graph.InputAs[*SeedBuffer](ctx, graph.SlotInSeeds)
	if err != nil {
		return err
	}
	set, err := n.r.current(n.r.bindings.jfa)
	if err != nil {
		return err
	}
	if in != n.r.seeds.Read() {
		return fmt.Errorf("%w: jump flood input is not the primary seed buffer", outline.ErrResourceMismatch)
	}
	dims := set.Dimensions()
	w, h := dims.Size()
	steps := outline.JumpSteps(w, h, n.r.cfg.StepPolicy)
	for _, step := range steps {
		jumpFlood(n.r.seeds.Write(), n.r.seeds.Read(), int(step), dims, n.r.workers)
		n.r.seeds.Swap()
	}
	out := n.r.seeds.Read()
	n.r.result = out
	n.r.log.Debugf("jump flood: %d steps %v (%s)", len(steps), steps, n.r.cfg.StepPolicy)
	ctx.SetOutput(graph.SlotOutSeeds, out)
	return nil
}

type compositeNode struct{ r *Renderer }

func (n *compositeNode) Input() []graph.SlotInfo  { return graph.OutlineInputs }
func (n *compositeNode) Output() []graph.SlotInfo { return graph.OutlineOutputs }

func (n *compositeNode) Run(ctx *graph.Context) error {
	seeds, err := graph.InputAs[*SeedBuffer](ctx, graph.SlotSeeds)
	if err != nil {
		return err
	}
	mask, err := graph.InputAs[*image.Alpha](ctx, graph.SlotMask)
	if err != nil {
		return err
	}
	view, err := graph.InputAs[*outline.View](ctx, graph.SlotView)
	if err != nil {
		return err
	}
	target, err := graph.InputAs[draw.Image](ctx, graph.SlotTarget)
	if err != nil {
		return err
	}
	set, err := n.r.current(n.r.bindings.composite)
	if err != nil {
		return err
	}
	dims := set.Dimensions()
	if w, h := dims.Size(); seeds.Width != int(w) || seeds.Height != int(h) {
		return fmt.Errorf("%w: seeds %dx%d, dimensions %s", outline.ErrResourceMismatch, seeds.Width, seeds.Height, dims)
	}

	style := n.r.cfg.StyleFor(view)
	if outlineCoverage(n.r.coverage, seeds, mask, style, n.r.cfg.KnockoutInterior, dims, n.r.workers) {
		compositeOutline(target, n.r.coverage, style)
	}
	ctx.SetOutput(graph.SlotTarget, target)
	return nil
}
