/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: writer_test.go
Description: Tests for the batch writers.
*/

package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/lang-explorer/pkg/export"
	"github.com/kleascm/lang-explorer/pkg/generator"
	"github.com/kleascm/lang-explorer/pkg/grammar"
	"github.com/kleascm/lang-explorer/pkg/similarity"
)

func strPtr(s string) *string { return &s }

func sampleBatch() *generator.Batch {
	return &generator.Batch{
		RunID:   uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"),
		Grammar: "balanced_0123456789abcdef",
		Programs: []grammar.ProgramResult{
			{
				Program:  strPtr("ab"),
				Graphviz: strPtr("digraph { n1; }"),
				Features: []uint64{1, 2},
				EdgeList: []grammar.Edge{{1, 2}, {1, 3}},
			},
			{
				Program:   strPtr("S,a"),
				Features:  []uint64{3},
				EdgeList:  []grammar.Edge{},
				IsPartial: true,
			},
		},
	}
}

func TestWriteFeaturesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteFeaturesCSV(&buf, sampleBatch().Programs))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"index", "is_partial", "program", "features"},
		{"0", "false", "ab", "1 2"},
		{"1", "true", "S,a", "3"},
	}, rows)
}

func TestWriteEdgeListCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteEdgeListCSV(&buf, sampleBatch().Programs))
	assert.Equal(t, "index,parent,child\n0,1,2\n0,1,3\n", buf.String())
}

func TestWriteBatch(t *testing.T) {
	root := t.TempDir()
	batch := sampleBatch()

	dir, err := export.WriteBatch(root, batch)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dir, filepath.Join(root, batch.Grammar)))
	assert.True(t, strings.HasSuffix(dir, "_123e4567"))

	data, err := os.ReadFile(filepath.Join(dir, export.BatchFile))
	require.NoError(t, err)
	var decoded generator.Batch
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, batch.RunID, decoded.RunID)
	require.Len(t, decoded.Programs, 2)
	assert.Equal(t, "ab", *decoded.Programs[0].Program)

	for _, name := range []string{export.FeaturesFile, export.EdgesFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	dots, err := filepath.Glob(filepath.Join(dir, export.GraphvizDir, "*.dot"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, export.GraphvizDir, "program_00000.dot")}, dots)
}

func TestWriteBatchWithoutViews(t *testing.T) {
	root := t.TempDir()
	batch := &generator.Batch{
		RunID:    uuid.New(),
		Grammar:  "toy",
		Programs: []grammar.ProgramResult{{Program: strPtr("x"), Features: []uint64{}}},
	}

	dir, err := export.WriteBatch(root, batch)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, export.BatchFile, entries[0].Name())
}

func TestWriteJSONFailsOnUnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := export.WriteJSON(filepath.Join(file, "sub"), "out.json", map[string]int{"a": 1})
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	batch := sampleBatch()
	batch.GrammarBNF = "<S> ::= 'a' <S> 'b' | 'ε'\n"
	batch.Stats.Accepted = 1

	dist, err := similarity.NewDistribution("l2", []float64{1, 1, 3})
	require.NoError(t, err)

	path, err := export.WriteReport(dir, batch, dist)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, export.ReportFile), path)

	html, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(html), batch.Grammar)
	assert.Contains(t, string(html), "&lt;S&gt; ::=")
	assert.Contains(t, string(html), "Pairwise distance (l2)")
	assert.Contains(t, string(html), "<li>ab</li>")
}

func TestNewReportData(t *testing.T) {
	dist, err := similarity.NewDistribution("l1", []float64{0, 0, 0, 4})
	require.NoError(t, err)

	data := export.NewReportData(sampleBatch(), dist)
	assert.Equal(t, []string{"ab"}, data.Samples)
	require.Len(t, data.Bars, similarity.HistogramBuckets)
	assert.Equal(t, 100.0, data.Bars[0].Percent)
	assert.InDelta(t, 100.0/3, data.Bars[similarity.HistogramBuckets-1].Percent, 1e-9)

	data = export.NewReportData(sampleBatch(), nil)
	assert.Empty(t, data.Bars)
}
