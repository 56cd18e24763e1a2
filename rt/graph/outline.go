package graph

// Slot declarations shared by both backends' pass nodes.
var (
	MaskInputs  = []SlotInfo{{Name: SlotView, Type: SlotTypeView}}
	MaskOutputs = []SlotInfo{{Name: SlotMask, Type: SlotTypeTexture}}

	JfaInitInputs  = []SlotInfo{{Name: SlotMask, Type: SlotTypeTexture}}
	JfaInitOutputs = []SlotInfo{{Name: SlotSeeds, Type: SlotTypeTexture}}

	JfaInputs  = []SlotInfo{{Name: SlotInSeeds, Type: SlotTypeTexture}}
	JfaOutputs = []SlotInfo{{Name: SlotOutSeeds, Type: SlotTypeTexture}}

	OutlineInputs = []SlotInfo{
		{Name: SlotSeeds, Type: SlotTypeTexture},
		{Name: SlotMask, Type: SlotTypeTexture},
		{Name: SlotView, Type: SlotTypeView},
		{Name: SlotTarget, Type: SlotTypeTarget},
	}
	OutlineOutputs = []SlotInfo{{Name: SlotTarget, Type: SlotTypeTarget}}
)

// Outline builds the four-stage outline graph:
//
//	input.view   -> mask_pass.view
//	mask_pass    -> jfa_init_pass.mask
//	jfa_init     -> jfa_pass.in_seeds
//	jfa_pass     -> outline_pass.seeds
//	mask_pass    -> outline_pass.mask
//	input.view   -> outline_pass.view
//	input.target -> outline_pass.target
func Outline(mask, jfaInit, jfa, composite Node) (*Graph, error) {
	g := New(
		SlotInfo{Name: InputView, Type: SlotTypeView},
		SlotInfo{Name: InputTarget, Type: SlotTypeTarget},
	)

	for _, n := range []struct {
		name string
		node Node
	}{
		{MaskPass, mask},
		{JfaInitPass, jfaInit},
		{JfaPass, jfa},
		{OutlinePass, composite},
	} {
		if err := g.AddNode(n.name, n.node); err != nil {
			return nil, err
		}
	}

	edges := []Edge{
		{InputNode, InputView, MaskPass, SlotView},
		{MaskPass, SlotMask, JfaInitPass, SlotMask},
		{JfaInitPass, SlotSeeds, JfaPass, SlotInSeeds},
		{JfaPass, SlotOutSeeds, OutlinePass, SlotSeeds},
		{MaskPass, SlotMask, OutlinePass, SlotMask},
		{InputNode, InputView, OutlinePass, SlotView},
		{InputNode, InputTarget, OutlinePass, SlotTarget},
	}
	for _, e := range edges {
		if err := g.AddSlotEdge(e.FromNode, e.FromSlot, e.ToNode, e.ToSlot); err != nil {
			return nil, err
		}
	}
	return g, g.Validate()
}
