/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: program.go
Description: ProgramInstance, the AST produced by grammar expansion. Provides output
serialization, the canonical debug string used for deduplication, edge lists, Graphviz
rendering and conversion into result records for downstream consumers.
*/

package grammar

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// InstanceID identifies a node within one generated tree. Ids start at 1, so 0 doubles
// as "no parent".
type InstanceID = uint64

// Edge is a parent id -> child id pair
type Edge [2]InstanceID

// Parent returns the parent id of the edge
func (e Edge) Parent() InstanceID { return e[0] }

// Child returns the child id of the edge
func (e Edge) Child() InstanceID { return e[1] }

// ProgramInstance is one node of a generated program tree. Each node exclusively owns its
// children. ParentID is a lookup key back to the parent, never an owning reference.
type ProgramInstance[T Terminal, I NonTerminal] struct {
	ID       InstanceID
	ParentID InstanceID
	Node     Symbol[T, I]
	Children []*ProgramInstance[T, I]
}

// NewProgramInstance creates a parentless node
func NewProgramInstance[T Terminal, I NonTerminal](node Symbol[T, I], id InstanceID) *ProgramInstance[T, I] {
	return &ProgramInstance[T, I]{ID: id, Node: node}
}

// NewChildInstance creates a node that records its parent's id
func NewChildInstance[T Terminal, I NonTerminal](node Symbol[T, I], id, parent InstanceID) *ProgramInstance[T, I] {
	return &ProgramInstance[T, I]{ID: id, ParentID: parent, Node: node}
}

// HasParent reports whether the node records a parent
func (p *ProgramInstance[T, I]) HasParent() bool { return p.ParentID != 0 }

// IsLeaf reports whether the node has no children
func (p *ProgramInstance[T, I]) IsLeaf() bool { return len(p.Children) == 0 }

// Serialize returns the program output. Terminals emit their bytes, non-terminals emit
// their children's output and epsilon emits nothing.
func (p *ProgramInstance[T, I]) Serialize() []byte {
	var out []byte
	p.serializeInto(&out)
	return out
}

func (p *ProgramInstance[T, I]) serializeInto(out *[]byte) {
	switch p.Node.Kind() {
	case KindTerminal:
		*out = append(*out, p.Node.Bytes()...)
	case KindNonTerminal:
		for _, child := range p.Children {
			child.serializeInto(out)
		}
	}
}

// String is the canonical debug form: the node followed by every child's debug form.
// It is the deduplication key for generated programs.
func (p *ProgramInstance[T, I]) String() string {
	var b strings.Builder
	p.writeString(&b)
	return b.String()
}

func (p *ProgramInstance[T, I]) writeString(b *strings.Builder) {
	b.WriteString(p.Node.String())
	for _, child := range p.Children {
		child.writeString(b)
	}
}

// EdgeList returns every parent -> child edge in pre-order: a node's own edges first,
// then each child's subtree in order.
func (p *ProgramInstance[T, I]) EdgeList() []Edge {
	var edges []Edge
	p.appendEdges(&edges)
	return edges
}

func (p *ProgramInstance[T, I]) appendEdges(edges *[]Edge) {
	for _, child := range p.Children {
		*edges = append(*edges, Edge{p.ID, child.ID})
	}
	for _, child := range p.Children {
		child.appendEdges(edges)
	}
}

// Nodes returns every node of the tree in breadth-first order, root first
func (p *ProgramInstance[T, I]) Nodes() []*ProgramInstance[T, I] {
	nodes := []*ProgramInstance[T, I]{}
	queue := []*ProgramInstance[T, I]{p}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		nodes = append(nodes, node)
		queue = append(queue, node.Children...)
	}
	return nodes
}

// NodeCount returns the number of nodes in the tree
func (p *ProgramInstance[T, I]) NodeCount() int {
	count := 1
	for _, child := range p.Children {
		count += child.NodeCount()
	}
	return count
}

// Depth returns the number of nodes on the longest root-to-leaf path
func (p *ProgramInstance[T, I]) Depth() int {
	deepest := 0
	for _, child := range p.Children {
		if d := child.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// Graphviz renders the tree as a DOT digraph, breadth first.
// Terminals are red, non-terminals blue and epsilon yellow.
func (p *ProgramInstance[T, I]) Graphviz() string {
	var b strings.Builder
	b.WriteString("digraph { ")

	queue := []*ProgramInstance[T, I]{p}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		fmt.Fprintf(&b, "n%d [color=%s, label=%q]; ", node.ID, nodeColor(node.Node.Kind()), node.Node.String())
		for _, child := range node.Children {
			queue = append(queue, child)
			fmt.Fprintf(&b, "n%d -> n%d; ", node.ID, child.ID)
		}
	}

	b.WriteString(" }")
	return b.String()
}

func nodeColor(kind SymbolKind) string {
	switch kind {
	case KindTerminal:
		return "red"
	case KindNonTerminal:
		return "blue"
	default:
		return "yellow"
	}
}

// ProgramResult is the record handed to embedding and evaluation collaborators. It never
// exposes the live tree.
type ProgramResult struct {
	Program   *string  `json:"program,omitempty"`
	Graphviz  *string  `json:"graphviz,omitempty"`
	Features  []uint64 `json:"features"`
	EdgeList  []Edge   `json:"edge_list,omitempty"`
	IsPartial bool     `json:"is_partial"`
}

// ResultOptions selects which views ToResult computes
type ResultOptions struct {
	ReturnFeatures  bool
	ReturnEdgeLists bool
	ReturnGraphviz  bool
	Features        FeatureOptions
}

// ToResult converts the tree into a result record. Complete programs carry their serialized
// output, which must be valid UTF-8; partial subtrees carry the debug form instead.
func (p *ProgramInstance[T, I]) ToResult(opts ResultOptions, complete bool) (*ProgramResult, error) {
	res := &ProgramResult{
		Features:  []uint64{},
		IsPartial: !complete,
	}

	if opts.ReturnFeatures {
		res.Features = p.ExtractFeatures(opts.Features)
	}
	if opts.ReturnEdgeLists {
		res.EdgeList = p.EdgeList()
	}
	if opts.ReturnGraphviz {
		dot := p.Graphviz()
		res.Graphviz = &dot
	}

	var text string
	if complete {
		out := p.Serialize()
		if !utf8.Valid(out) {
			return nil, newGenerationError(ErrInvalidUTF8, "program %d", p.ID)
		}
		text = string(out)
	} else {
		text = p.String()
	}
	res.Program = &text

	return res, nil
}
