// Package graph describes the outline pipeline as an ordered list of named
// nodes with typed input and output slots. Nodes run strictly in the order
// they were added; edges may only point forward.
package graph

import (
	"errors"
	"fmt"

	"github.com/gekko3d/outline"
)

// InputNode is the pseudo node that provides the graph inputs.
const InputNode = "input"

// Standard node names of the outline pipeline.
const (
	MaskPass     = "mask_pass"
	JfaInitPass  = "jfa_init_pass"
	JfaPass      = "jfa_pass"
	OutlinePass  = "outline_pass"
	InputView    = "view"
	InputTarget  = "target"
	SlotMask     = "mask"
	SlotSeeds    = "seeds"
	SlotInSeeds  = "in_seeds"
	SlotOutSeeds = "out_seeds"
	SlotView     = "view"
	SlotTarget   = "target"
)

// SlotType is the kind of value travelling along an edge.
type SlotType int

const (
	SlotTypeView SlotType = iota
	SlotTypeTexture
	SlotTypeTarget
)

func (t SlotType) String() string {
	switch t {
	case SlotTypeView:
		return "view"
	case SlotTypeTexture:
		return "texture"
	case SlotTypeTarget:
		return "target"
	default:
		return fmt.Sprintf("SlotType(%d)", int(t))
	}
}

type SlotInfo struct {
	Name string
	Type SlotType
}

// Node is one pass of the pipeline.
type Node interface {
	Input() []SlotInfo
	Output() []SlotInfo
	Run(ctx *Context) error
}

type Edge struct {
	FromNode, FromSlot string
	ToNode, ToSlot     string
}

type namedNode struct {
	name string
	node Node
}

// Graph is a fixed chain of nodes plus the slot edges between them.
type Graph struct {
	inputs []SlotInfo
	nodes  []namedNode
	index  map[string]int
	edges  []Edge
}

var (
	ErrUnknownNode  = errors.New("graph: unknown node")
	ErrUnknownSlot  = errors.New("graph: unknown slot")
	ErrSlotType     = errors.New("graph: slot type mismatch")
	ErrBackwardEdge = errors.New("graph: edge does not point forward")
	ErrUnconnected  = errors.New("graph: input slot not connected")
	ErrDuplicate    = errors.New("graph: duplicate")
	ErrMissingValue = errors.New("graph: missing slot value")
)

// New creates a graph whose InputNode exposes the given slots.
func New(inputs ...SlotInfo) *Graph {
	return &Graph{
		inputs: inputs,
		index:  map[string]int{InputNode: -1},
	}
}

func (g *Graph) AddNode(name string, n Node) error {
	if _, ok := g.index[name]; ok {
		return fmt.Errorf("%w node %q", ErrDuplicate, name)
	}
	g.index[name] = len(g.nodes)
	g.nodes = append(g.nodes, namedNode{name: name, node: n})
	return nil
}

// Nodes returns the node names in execution order.
func (g *Graph) Nodes() []string {
	names := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		names[i] = n.name
	}
	return names
}

func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

func (g *Graph) outputs(name string) ([]SlotInfo, error) {
	i, ok := g.index[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownNode, name)
	}
	if i < 0 {
		return g.inputs, nil
	}
	return g.nodes[i].node.Output(), nil
}

func findSlot(slots []SlotInfo, name string) (SlotInfo, bool) {
	for _, s := range slots {
		if s.Name == name {
			return s, true
		}
	}
	return SlotInfo{}, false
}

// AddSlotEdge wires fromNode.fromSlot into toNode.toSlot.
func (g *Graph) AddSlotEdge(fromNode, fromSlot, toNode, toSlot string) error {
	outs, err := g.outputs(fromNode)
	if err != nil {
		return err
	}
	from, ok := findSlot(outs, fromSlot)
	if !ok {
		return fmt.Errorf("%w %s.%s", ErrUnknownSlot, fromNode, fromSlot)
	}
	ti, ok := g.index[toNode]
	if !ok || ti < 0 {
		return fmt.Errorf("%w %q", ErrUnknownNode, toNode)
	}
	to, ok := findSlot(g.nodes[ti].node.Input(), toSlot)
	if !ok {
		return fmt.Errorf("%w %s.%s", ErrUnknownSlot, toNode, toSlot)
	}
	if from.Type != to.Type {
		return fmt.Errorf("%w: %s.%s is %s, %s.%s is %s", ErrSlotType, fromNode, fromSlot, from.Type, toNode, toSlot, to.Type)
	}
	if g.index[fromNode] >= ti {
		return fmt.Errorf("%w: %s -> %s", ErrBackwardEdge, fromNode, toNode)
	}
	for _, e := range g.edges {
		if e.ToNode == toNode && e.ToSlot == toSlot {
			return fmt.Errorf("%w edge into %s.%s", ErrDuplicate, toNode, toSlot)
		}
	}
	g.edges = append(g.edges, Edge{FromNode: fromNode, FromSlot: fromSlot, ToNode: toNode, ToSlot: toSlot})
	return nil
}

// Validate checks that every node input is fed by exactly one edge.
func (g *Graph) Validate() error {
	for _, n := range g.nodes {
		for _, in := range n.node.Input() {
			found := false
			for _, e := range g.edges {
				if e.ToNode == n.name && e.ToSlot == in.Name {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("%w: %s.%s", ErrUnconnected, n.name, in.Name)
			}
		}
	}
	return nil
}

// Result describes how far a frame got.
type Result struct {
	// Skipped is set when a node reported outline.ErrNotReady; no later node
	// ran and the target was left untouched by the remaining passes.
	Skipped   bool
	SkippedAt string
	Ran       []string
	Outputs   map[string]any
}

// Run executes every node in order. inputs supplies the InputNode slots.
// Transient unavailability skips the frame and is not an error; any other
// node failure aborts the frame.
func (g *Graph) Run(inputs map[string]any) (Result, error) {
	for _, in := range g.inputs {
		if _, ok := inputs[in.Name]; !ok {
			return Result{}, fmt.Errorf("%w: graph input %q", ErrMissingValue, in.Name)
		}
	}

	values := map[string]map[string]any{InputNode: inputs}
	res := Result{}
	for _, n := range g.nodes {
		ctx := &Context{
			node:    n.name,
			inputs:  map[string]any{},
			outputs: map[string]any{},
		}
		for _, e := range g.edges {
			if e.ToNode != n.name {
				continue
			}
			v, ok := values[e.FromNode][e.FromSlot]
			if !ok {
				return res, fmt.Errorf("%w: %s.%s feeding %s.%s", ErrMissingValue, e.FromNode, e.FromSlot, e.ToNode, e.ToSlot)
			}
			ctx.inputs[e.ToSlot] = v
		}

		if err := n.node.Run(ctx); err != nil {
			if errors.Is(err, outline.ErrNotReady) {
				res.Skipped = true
				res.SkippedAt = n.name
				return res, nil
			}
			return res, fmt.Errorf("%s: %w", n.name, err)
		}
		for _, out := range n.node.Output() {
			if _, ok := ctx.outputs[out.Name]; !ok {
				return res, fmt.Errorf("%s: %w: output %q not set", n.name, ErrMissingValue, out.Name)
			}
		}
		values[n.name] = ctx.outputs
		res.Ran = append(res.Ran, n.name)
	}
	if len(g.nodes) > 0 {
		res.Outputs = values[g.nodes[len(g.nodes)-1].name]
	}
	return res, nil
}

// Context is handed to a node while it runs.
type Context struct {
	node    string
	inputs  map[string]any
	outputs map[string]any
}

func (c *Context) NodeName() string { return c.node }

func (c *Context) Input(name string) (any, error) {
	v, ok := c.inputs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrMissingValue, c.node, name)
	}
	return v, nil
}

func (c *Context) SetOutput(name string, v any) {
	c.outputs[name] = v
}

// InputAs fetches a typed input slot value.
func InputAs[T any](c *Context, name string) (T, error) {
	var zero T
	v, err := c.Input(name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s.%s holds %T, want %T", ErrSlotType, c.node, name, v, zero)
	}
	return t, nil
}
