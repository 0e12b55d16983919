/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: production.go
Description: Production rules and productions. A production groups every alternative
right-hand side available for one left-hand side; rules may carry an optional weight used
by weighted expanders.
*/

package grammar

import "strings"

// ProductionRule is one alternative right-hand side.
// A nil or zero Weight means unweighted; weighted expanders substitute the average of the
// production's explicit weights.
type ProductionRule[T Terminal, I NonTerminal] struct {
	Symbols []Symbol[T, I]
	Weight  *uint64
}

// Rule builds an unweighted rule
func Rule[T Terminal, I NonTerminal](symbols ...Symbol[T, I]) ProductionRule[T, I] {
	return ProductionRule[T, I]{Symbols: symbols}
}

// WeightedRule builds a rule with an explicit weight
func WeightedRule[T Terminal, I NonTerminal](weight uint64, symbols ...Symbol[T, I]) ProductionRule[T, I] {
	return ProductionRule[T, I]{Symbols: symbols, Weight: &weight}
}

// ExplicitWeight returns the weight and whether it is set and positive
func (r ProductionRule[T, I]) ExplicitWeight() (uint64, bool) {
	if r.Weight == nil || *r.Weight == 0 {
		return 0, false
	}
	return *r.Weight, true
}

// String is the debug form: symbols concatenated without separators
func (r ProductionRule[T, I]) String() string {
	var b strings.Builder
	for _, s := range r.Symbols {
		b.WriteString(s.String())
	}
	return b.String()
}

// BNF renders the rule as space separated BNF symbols
func (r ProductionRule[T, I]) BNF() string {
	parts := make([]string, len(r.Symbols))
	for i, s := range r.Symbols {
		parts[i] = s.BNF()
	}
	return strings.Join(parts, " ")
}

// Production is the set of alternatives for one left-hand side
type Production[T Terminal, I NonTerminal] struct {
	LHS   LeftHandSide[T, I]
	Rules []ProductionRule[T, I]
}

// NewProduction builds a production
func NewProduction[T Terminal, I NonTerminal](lhs LeftHandSide[T, I], rules ...ProductionRule[T, I]) Production[T, I] {
	return Production[T, I]{LHS: lhs, Rules: rules}
}

// Len returns the number of alternatives
func (p *Production[T, I]) Len() int { return len(p.Rules) }

// Rule returns the i-th alternative, or nil when out of range
func (p *Production[T, I]) Rule(i int) *ProductionRule[T, I] {
	if i < 0 || i >= len(p.Rules) {
		return nil
	}
	return &p.Rules[i]
}

// BNF renders the alternatives separated by |
func (p *Production[T, I]) BNF() string {
	parts := make([]string, len(p.Rules))
	for i, r := range p.Rules {
		parts[i] = r.BNF()
	}
	return strings.Join(parts, " | ")
}

// String is the debug form of the alternatives
func (p *Production[T, I]) String() string {
	parts := make([]string, len(p.Rules))
	for i, r := range p.Rules {
		parts[i] = r.String()
	}
	return strings.Join(parts, " | ")
}
