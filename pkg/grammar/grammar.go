/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: grammar.go
Description: Grammar definition and the two program generation algorithms of the Lang
Explorer engine: recursive descent for context-free grammars and frontier rewriting for
context-sensitive grammars. Decisions are delegated to a pluggable Expander.
*/

package grammar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// SlotCandidate is a left-hand side together with every frontier index it matches
type SlotCandidate[T Terminal, I NonTerminal] struct {
	LHS     *LeftHandSide[T, I]
	Indices []int
}

// Expander decides which rule to apply and, for context-sensitive grammars, which
// left-hand side and frontier slot to expand next.
//
// Returning a rule that does not belong to the production, or a slot that is not one of
// the candidate indices, is a programming error and panics.
type Expander[T Terminal, I NonTerminal] interface {
	// ExpandRule picks one of production's rules. context is the node being expanded.
	ExpandRule(g *Grammar[T, I], context *ProgramInstance[T, I], production *Production[T, I]) *ProductionRule[T, I]
	// ChooseLHSAndSlot picks a left-hand side and one of its matched frontier indices.
	// context is the root of the partial tree.
	ChooseLHSAndSlot(g *Grammar[T, I], context *ProgramInstance[T, I], candidates []SlotCandidate[T, I]) (*LeftHandSide[T, I], int)
	// Cleanup is called once after every completed program.
	Cleanup()
}

// Grammar is an immutable production table with a root symbol. It is safe to share
// between goroutines once built.
type Grammar[T Terminal, I NonTerminal] struct {
	root             I
	productions      map[string]*Production[T, I]
	order            []string
	contextSensitive bool
	name             string
}

// New builds a grammar. When two productions share a left-hand side the later one wins
// but keeps the position of the first.
func New[T Terminal, I NonTerminal](name string, root I, productions ...Production[T, I]) *Grammar[T, I] {
	g := &Grammar[T, I]{
		root:        root,
		productions: make(map[string]*Production[T, I], len(productions)),
		name:        name,
	}

	for i := range productions {
		p := productions[i]
		key := p.LHS.Key()
		if _, exists := g.productions[key]; !exists {
			g.order = append(g.order, key)
		}
		g.productions[key] = &p
	}

	for _, p := range g.productions {
		if p.LHS.IsContextSensitive() {
			g.contextSensitive = true
			break
		}
	}

	return g
}

// Root returns the root non-terminal
func (g *Grammar[T, I]) Root() I { return g.root }

// CanonicalName returns the human readable name the grammar was built with
func (g *Grammar[T, I]) CanonicalName() string { return g.name }

// IsContextSensitive reports whether any left-hand side carries context
func (g *Grammar[T, I]) IsContextSensitive() bool { return g.contextSensitive }

// Productions returns every production in insertion order
func (g *Grammar[T, I]) Productions() []*Production[T, I] {
	out := make([]*Production[T, I], 0, len(g.order))
	for _, key := range g.order {
		out = append(out, g.productions[key])
	}
	return out
}

// Production looks up the production for a left-hand side
func (g *Grammar[T, I]) Production(lhs LeftHandSide[T, I]) (*Production[T, I], bool) {
	p, ok := g.productions[lhs.Key()]
	return p, ok
}

// Symbols returns every distinct symbol used by the grammar in order of first appearance
func (g *Grammar[T, I]) Symbols() []Symbol[T, I] {
	seen := make(map[Symbol[T, I]]struct{})
	var out []Symbol[T, I]
	add := func(s Symbol[T, I]) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, p := range g.Productions() {
		for _, s := range p.LHS.Symbols() {
			add(s)
		}
		for _, r := range p.Rules {
			for _, s := range r.Symbols {
				add(s)
			}
		}
	}
	return out
}

// Generate expands one program, picking the algorithm from the grammar's context
// sensitivity, and calls the expander's Cleanup hook once the program is complete.
func (g *Grammar[T, I]) Generate(exp Expander[T, I]) (*ProgramInstance[T, I], error) {
	var (
		program *ProgramInstance[T, I]
		err     error
	)
	if g.contextSensitive {
		program, err = g.GenerateContextSensitive(exp)
	} else {
		program, err = g.GenerateContextFree(exp)
	}
	if err != nil {
		return nil, err
	}
	exp.Cleanup()
	return program, nil
}

// GenerateContextFree builds a program by recursive descent from the root. Termination
// depends on the grammar being well founded.
func (g *Grammar[T, I]) GenerateContextFree(exp Expander[T, I]) (*ProgramInstance[T, I], error) {
	prod, ok := g.Production(ContextFree[T, I](g.root))
	if !ok {
		return nil, newGenerationError(ErrNoRootProduction, "root %s", g.root)
	}

	counter := InstanceID(1)
	return g.expandContextFree(prod, exp, &counter, 0)
}

func (g *Grammar[T, I]) expandContextFree(prod *Production[T, I], exp Expander[T, I], counter *InstanceID, parent InstanceID) (*ProgramInstance[T, I], error) {
	program := NewChildInstance(prod.LHS.Target(), *counter, parent)

	rule := exp.ExpandRule(g, program, prod)
	mustOwnRule(prod, rule)

	children := make([]*ProgramInstance[T, I], 0, len(rule.Symbols))
	for _, sym := range rule.Symbols {
		*counter++

		nt, isNonTerminal := sym.NonTerminal()
		if !isNonTerminal {
			children = append(children, NewChildInstance(sym, *counter, program.ID))
			continue
		}

		next, ok := g.Production(ContextFree[T, I](nt))
		if !ok {
			return nil, newGenerationError(ErrUnknownNonTerminal, "%s", nt)
		}

		child, err := g.expandContextFree(next, exp, counter, program.ID)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	program.Children = children
	return program, nil
}

// GenerateContextSensitive builds a program by rewriting a frontier of leaves until no
// non-terminal remains. Nodes live in an arena indexed by id-1 and the frontier is a list
// of arena indices, so replacing one slot with its children never aliases the tree.
//
// No backtracking is attempted: reaching a frontier no left-hand side matches fails with
// ErrNoValidExpansion.
func (g *Grammar[T, I]) GenerateContextSensitive(exp Expander[T, I]) (*ProgramInstance[T, I], error) {
	root := NewProgramInstance(NewNonTerminal[T, I](g.root), 1)
	arena := []*ProgramInstance[T, I]{root}
	frontier := []int{0}
	seq := make([]Symbol[T, I], 0, 16)

	for {
		seq = seq[:0]
		for _, idx := range frontier {
			seq = append(seq, arena[idx].Node)
		}
		if !slices.ContainsFunc(seq, Symbol[T, I].IsNonTerminal) {
			break
		}

		candidates := g.slotCandidates(seq)
		if len(candidates) == 0 {
			return nil, newGenerationError(ErrNoValidExpansion, "frontier %s", symbolsString(seq))
		}

		lhs, slot := exp.ChooseLHSAndSlot(g, root, candidates)
		mustBeCandidate(candidates, lhs, slot)

		prod := g.productions[lhs.Key()]
		parent := arena[frontier[slot]]

		rule := exp.ExpandRule(g, parent, prod)
		mustOwnRule(prod, rule)

		children := make([]*ProgramInstance[T, I], len(rule.Symbols))
		indices := make([]int, len(rule.Symbols))
		for i, sym := range rule.Symbols {
			child := NewChildInstance(sym, InstanceID(len(arena)+1), parent.ID)
			arena = append(arena, child)
			children[i] = child
			indices[i] = len(arena) - 1
		}
		parent.Children = children

		frontier = slices.Replace(frontier, slot, slot+1, indices...)
	}

	return root, nil
}

// slotCandidates matches every left-hand side against the frontier, in insertion order
func (g *Grammar[T, I]) slotCandidates(seq []Symbol[T, I]) []SlotCandidate[T, I] {
	var candidates []SlotCandidate[T, I]
	for _, key := range g.order {
		prod := g.productions[key]
		if !slices.Contains(seq, prod.LHS.Target()) {
			continue
		}
		if indices := prod.LHS.AllContextInstances(seq); len(indices) > 0 {
			candidates = append(candidates, SlotCandidate[T, I]{LHS: &prod.LHS, Indices: indices})
		}
	}
	return candidates
}

func mustOwnRule[T Terminal, I NonTerminal](prod *Production[T, I], rule *ProductionRule[T, I]) {
	for i := range prod.Rules {
		if &prod.Rules[i] == rule {
			return
		}
	}
	panic(fmt.Sprintf("expander returned a rule outside production %s (%d rules)", prod.LHS, len(prod.Rules)))
}

func mustBeCandidate[T Terminal, I NonTerminal](candidates []SlotCandidate[T, I], lhs *LeftHandSide[T, I], slot int) {
	if lhs == nil {
		panic("expander returned a nil left-hand side")
	}
	for _, c := range candidates {
		if c.LHS.Key() == lhs.Key() && slices.Contains(c.Indices, slot) {
			return
		}
	}
	panic(fmt.Sprintf("expander returned slot %d for %s which is not a matched slot", slot, lhs))
}

func symbolsString[T Terminal, I NonTerminal](seq []Symbol[T, I]) string {
	parts := make([]string, len(seq))
	for i, s := range seq {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// UUID is a content hash of the grammar: every left-hand side and rule debug form, in
// insertion order. Identical definitions give identical ids.
func (g *Grammar[T, I]) UUID() string {
	h := sha256.New()
	for _, p := range g.Productions() {
		h.Write([]byte(p.LHS.String()))
		for _, r := range p.Rules {
			h.Write([]byte(r.String()))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Name is the canonical name suffixed with a short content hash, used as a storage key
func (g *Grammar[T, I]) Name() string {
	return fmt.Sprintf("%s_%s", g.name, g.UUID()[:16])
}

// BNF renders one `<lhs> ::= rule | rule` line per production, root productions first
func (g *Grammar[T, I]) BNF() string {
	var b strings.Builder
	productions := g.Productions()
	for _, p := range productions {
		if p.LHS.NonTerminal == g.root {
			fmt.Fprintf(&b, "<%s> ::= %s\n", p.LHS, p.BNF())
		}
	}
	for _, p := range productions {
		if p.LHS.NonTerminal != g.root {
			fmt.Fprintf(&b, "<%s> ::= %s\n", p.LHS, p.BNF())
		}
	}
	return b.String()
}

// String is the debug dump of the grammar
func (g *Grammar[T, I]) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Entry Symbol: %s\n", g.root)
	for _, p := range g.Productions() {
		fmt.Fprintf(&b, "%s: %s\n", p.LHS, p)
	}
	return b.String()
}
