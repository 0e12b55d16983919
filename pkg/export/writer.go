/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: writer.go
Description: Writers for generated batches. A batch is written into its own timestamped
directory as a JSON record, a features CSV, an edge-list CSV and one DOT file per program.
*/

package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kleascm/lang-explorer/pkg/generator"
	"github.com/kleascm/lang-explorer/pkg/grammar"
)

const (
	BatchFile    = "batch.json"
	FeaturesFile = "features.csv"
	EdgesFile    = "edges.csv"
	GraphvizDir  = "graphviz"
)

// BatchDir returns the directory a batch is written to:
// <root>/<grammar>/<timestamp>_<run id prefix>
func BatchDir(root string, batch *generator.Batch) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(root, batch.Grammar, fmt.Sprintf("%s_%s", timestamp, batch.RunID.String()[:8]))
}

// WriteJSON writes v as indented JSON to dir/name, creating dir when needed
func WriteJSON(dir, name string, v interface{}) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

// WriteBatch writes every view present in the batch under a fresh BatchDir and returns the
// directory
func WriteBatch(root string, batch *generator.Batch) (string, error) {
	dir := BatchDir(root, batch)

	if _, err := WriteJSON(dir, BatchFile, batch); err != nil {
		return "", err
	}

	if hasFeatures(batch.Programs) {
		if err := writeFile(filepath.Join(dir, FeaturesFile), func(w io.Writer) error {
			return WriteFeaturesCSV(w, batch.Programs)
		}); err != nil {
			return "", err
		}
	}

	if hasEdges(batch.Programs) {
		if err := writeFile(filepath.Join(dir, EdgesFile), func(w io.Writer) error {
			return WriteEdgeListCSV(w, batch.Programs)
		}); err != nil {
			return "", err
		}
	}

	if _, err := WriteGraphviz(filepath.Join(dir, GraphvizDir), batch.Programs); err != nil {
		return "", err
	}

	return dir, nil
}

// WriteFeaturesCSV writes one row per program: index, partial flag, program text and the
// space separated feature vector
func WriteFeaturesCSV(w io.Writer, programs []grammar.ProgramResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "is_partial", "program", "features"}); err != nil {
		return fmt.Errorf("failed to write features header: %w", err)
	}

	for i, p := range programs {
		features := make([]string, len(p.Features))
		for j, f := range p.Features {
			features[j] = strconv.FormatUint(f, 10)
		}
		row := []string{
			strconv.Itoa(i),
			strconv.FormatBool(p.IsPartial),
			programText(p),
			strings.Join(features, " "),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write features row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteEdgeListCSV writes one row per edge: program index, parent id, child id
func WriteEdgeListCSV(w io.Writer, programs []grammar.ProgramResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "parent", "child"}); err != nil {
		return fmt.Errorf("failed to write edges header: %w", err)
	}

	for i, p := range programs {
		for _, e := range p.EdgeList {
			row := []string{
				strconv.Itoa(i),
				strconv.FormatUint(e.Parent(), 10),
				strconv.FormatUint(e.Child(), 10),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write edge row %d: %w", i, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteGraphviz writes program_<index>.dot for every program carrying a DOT rendering and
// returns the number of files written
func WriteGraphviz(dir string, programs []grammar.ProgramResult) (int, error) {
	written := 0
	for i, p := range programs {
		if p.Graphviz == nil {
			continue
		}
		if written == 0 {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return 0, fmt.Errorf("failed to create graphviz directory: %w", err)
			}
		}

		path := filepath.Join(dir, fmt.Sprintf("program_%05d.dot", i))
		if err := os.WriteFile(path, []byte(*p.Graphviz), 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written++
	}
	return written, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return write(f)
}

func programText(p grammar.ProgramResult) string {
	if p.Program == nil {
		return ""
	}
	return *p.Program
}

func hasFeatures(programs []grammar.ProgramResult) bool {
	for _, p := range programs {
		if len(p.Features) > 0 {
			return true
		}
	}
	return false
}

func hasEdges(programs []grammar.ProgramResult) bool {
	for _, p := range programs {
		if p.EdgeList != nil {
			return true
		}
	}
	return false
}
