/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: languages_test.go
Description: Tests for the built-in grammars and the YAML grammar loader.
*/

package languages_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/lang-explorer/pkg/expanders"
	"github.com/kleascm/lang-explorer/pkg/grammar"
	"github.com/kleascm/lang-explorer/pkg/languages"
)

func TestBuiltinRegistry(t *testing.T) {
	assert.Equal(t, []string{"anbncn", "balanced", "toy"}, languages.BuiltinNames())

	for _, name := range languages.BuiltinNames() {
		g, err := languages.Builtin(name)
		require.NoError(t, err)
		assert.Equal(t, name, g.CanonicalName())
	}

	_, err := languages.Builtin("css")
	assert.Error(t, err)

	assert.False(t, languages.Toy().IsContextSensitive())
	assert.True(t, languages.AnBnCn().IsContextSensitive())
}

// isAnBnCn reports whether s is a^n b^n c^n for some n >= 1
func isAnBnCn(s string) bool {
	n := strings.Count(s, "a")
	if n == 0 || len(s) != 3*n {
		return false
	}
	return s == strings.Repeat("a", n)+strings.Repeat("b", n)+strings.Repeat("c", n)
}

func TestAnBnCnDerivations(t *testing.T) {
	g := languages.AnBnCn()

	completed := 0
	for seed := uint64(0); seed < 100; seed++ {
		exp := expanders.NewUniformExpander[languages.StringValue, languages.StringValue](seed)
		p, err := g.Generate(exp)
		if err != nil {
			// Dead ends are expected without backtracking
			assert.True(t, errors.Is(err, grammar.ErrNoValidExpansion), "seed %d: %v", seed, err)
			continue
		}
		completed++

		out := string(p.Serialize())
		assert.True(t, isAnBnCn(out), "seed %d produced %q", seed, out)
		assert.Len(t, p.EdgeList(), p.NodeCount()-1)
	}
	assert.Greater(t, completed, 0)
}

const anbnYAML = `
name: anbn
root: <S>
productions:
  - lhs: S
    rules:
      - symbols: ["'a'", "<S>", "'b'"]
        weight: 1
      - symbols: ["ε"]
        weight: 3
  - lhs: B
    prefix: ["a"]
    suffix: ["<S>"]
    rules:
      - symbols: ["b"]
`

func TestParseGrammar(t *testing.T) {
	g, err := languages.ParseGrammar([]byte(anbnYAML))
	require.NoError(t, err)

	assert.Equal(t, "anbn", g.CanonicalName())
	assert.Equal(t, languages.StringValue("S"), g.Root())
	assert.True(t, g.IsContextSensitive())

	prods := g.Productions()
	require.Len(t, prods, 2)

	s := prods[0]
	require.Len(t, s.Rules, 2)
	assert.Equal(t, []languages.Symbol{languages.T("a"), languages.NT("S"), languages.T("b")}, s.Rules[0].Symbols)
	assert.Equal(t, []languages.Symbol{languages.Eps()}, s.Rules[1].Symbols)
	w, ok := s.Rules[1].ExplicitWeight()
	assert.True(t, ok)
	assert.Equal(t, uint64(3), w)

	b := prods[1]
	assert.Equal(t, []languages.Symbol{languages.T("a")}, b.LHS.Prefix)
	assert.Equal(t, []languages.Symbol{languages.NT("S")}, b.LHS.Suffix)
	assert.Equal(t, "<[a]B[S]> ::= 'b'", strings.Split(strings.TrimSpace(g.BNF()), "\n")[1])
}

func TestParseGrammarErrors(t *testing.T) {
	cases := map[string]string{
		"no root":        "productions:\n  - lhs: S\n    rules:\n      - symbols: [a]\n",
		"no productions": "root: S\n",
		"no lhs":         "root: S\nproductions:\n  - rules:\n      - symbols: [a]\n",
		"no rules":       "root: S\nproductions:\n  - lhs: S\n",
		"empty rule":     "root: S\nproductions:\n  - lhs: S\n    rules:\n      - symbols: []\n",
		"bad yaml":       "root: [S\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := languages.ParseGrammar([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestGrammarFileRoundTrip(t *testing.T) {
	for _, name := range languages.BuiltinNames() {
		builtin, err := languages.Builtin(name)
		require.NoError(t, err)

		data, err := languages.MarshalGrammar(builtin)
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), name+".yaml")
		require.NoError(t, os.WriteFile(path, data, 0644))

		loaded, err := languages.LoadGrammarFile(path)
		require.NoError(t, err)
		assert.Equal(t, builtin.UUID(), loaded.UUID(), name)
		assert.Equal(t, builtin.BNF(), loaded.BNF(), name)
	}

	_, err := languages.LoadGrammarFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseSymbol(t *testing.T) {
	assert.Equal(t, languages.NT("Expr"), languages.ParseSymbol("<Expr>"))
	assert.Equal(t, languages.T("+"), languages.ParseSymbol("'+'"))
	assert.Equal(t, languages.T("<"), languages.ParseSymbol("<"))
	assert.Equal(t, languages.T("<>"), languages.ParseSymbol("<>"))
	assert.Equal(t, languages.T(""), languages.ParseSymbol("''"))
	assert.Equal(t, languages.Eps(), languages.ParseSymbol("ε"))
}
