/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: features.go
Description: Weisfeiler-Lehman style structural feature extraction for program trees.
Every node is relabelled for a fixed number of rounds from its own content, its parent's
previous label and the sorted labels of its children; all labels of all rounds form the
feature vector used for structural similarity.
*/

package grammar

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// WLOrder selects how a node's own bytes, its parent label and its children labels are fed
// into the hash during a relabelling round.
type WLOrder string

const (
	OrderSelfChildrenParent WLOrder = "self_children_parent"
	OrderParentSelfChildren WLOrder = "parent_self_children"
	// OrderTotal is a placeholder: only the sorted children labels are hashed.
	OrderTotal WLOrder = "total_ordered"
)

// ParseWLOrder converts a configuration string into a WLOrder
func ParseWLOrder(s string) (WLOrder, error) {
	switch WLOrder(s) {
	case OrderSelfChildrenParent, OrderParentSelfChildren, OrderTotal:
		return WLOrder(s), nil
	case "":
		return OrderSelfChildrenParent, nil
	default:
		return "", fmt.Errorf("unsupported wl ordering: %s", s)
	}
}

// FeatureOptions configures ExtractFeatures
type FeatureOptions struct {
	Iterations uint32  `json:"iterations"`
	Order      WLOrder `json:"order"`
	Dedup      bool    `json:"dedup"`
	Sort       bool    `json:"sort"`
}

// DefaultFeatureOptions mirrors the defaults used by the generate command
func DefaultFeatureOptions() FeatureOptions {
	return FeatureOptions{Iterations: 3, Order: OrderSelfChildrenParent}
}

// ExtractFeatures runs opts.Iterations relabelling rounds over the tree and returns the
// labels of every node for every round 0..Iterations, in breadth-first node order per round.
func (p *ProgramInstance[T, I]) ExtractFeatures(opts FeatureOptions) []uint64 {
	nodes := p.Nodes()

	byID := make(map[InstanceID]*ProgramInstance[T, I], len(nodes))
	for _, node := range nodes {
		byID[node.ID] = node
	}

	old := make(map[*ProgramInstance[T, I]]uint64, len(nodes))
	features := make([]uint64, 0, len(nodes)*int(opts.Iterations+1))

	for _, node := range nodes {
		label := xxhash.Sum64(node.Node.labelBytes())
		old[node] = label
		features = append(features, label)
	}

	for round := uint32(0); round < opts.Iterations; round++ {
		next := make(map[*ProgramInstance[T, I]]uint64, len(nodes))

		for _, node := range nodes {
			var parent [8]byte
			if node.HasParent() {
				if parentNode, ok := byID[node.ParentID]; ok {
					binary.LittleEndian.PutUint64(parent[:], old[parentNode])
				}
			}

			children := make([]uint64, len(node.Children))
			for i, child := range node.Children {
				children[i] = old[child]
			}
			slices.Sort(children)

			label := relabel(opts.Order, node.Node.labelBytes(), parent[:], children)
			next[node] = label
			features = append(features, label)
		}

		old = next
	}

	if opts.Dedup {
		features = dedupFeatures(features)
	}
	if opts.Sort {
		slices.Sort(features)
	}

	return features
}

func relabel(order WLOrder, self, parent []byte, children []uint64) uint64 {
	h := xxhash.New()
	var buf [8]byte

	writeChildren := func() {
		for _, c := range children {
			binary.LittleEndian.PutUint64(buf[:], c)
			_, _ = h.Write(buf[:])
		}
	}

	switch order {
	case OrderParentSelfChildren:
		_, _ = h.Write(parent)
		_, _ = h.Write(self)
		writeChildren()
	case OrderTotal:
		writeChildren()
	default:
		_, _ = h.Write(self)
		writeChildren()
		_, _ = h.Write(parent)
	}

	return h.Sum64()
}

// dedupFeatures keeps the first occurrence of every label
func dedupFeatures(features []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(features))
	out := features[:0]
	for _, f := range features {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
