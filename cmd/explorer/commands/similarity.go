/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: similarity.go
Description: Similarity command. Loads a written batch, computes WL-test distances between
every pair of complete programs and summarizes them as a distribution.
*/

package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/lang-explorer/pkg/export"
	"github.com/kleascm/lang-explorer/pkg/generator"
	"github.com/kleascm/lang-explorer/pkg/similarity"
)

// SimilarityFile is written next to the batch it summarizes
const SimilarityFile = "similarity.json"

// RunSimilarity executes the similarity command
func RunSimilarity(cmd *cobra.Command, args []string) error {
	logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Close()
	log := logger.GetLogger()

	metric, err := similarity.ParseMetric(viper.GetString("metric"))
	if err != nil {
		return err
	}

	batch, err := readBatch(args[0])
	if err != nil {
		return err
	}

	dist, err := batchDistribution(cmd, batch, metric, viper.GetInt("similarity_workers"))
	if err != nil {
		return err
	}
	log.Infof("Computed %s distances over %d programs", metric, len(batch.Complete()))

	path, err := export.WriteJSON(filepath.Dir(args[0]), SimilarityFile, dist)
	if err != nil {
		return err
	}
	if _, err := export.WriteReport(filepath.Dir(args[0]), batch, dist); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Grammar:   %s\n", batch.Grammar)
	fmt.Fprintf(out, "Mean:      %.4f\n", dist.Moments[0])
	fmt.Fprintf(out, "Variance:  %.4f\n", dist.Moments[1])
	fmt.Fprintf(out, "Skewness:  %.4f\n", dist.Moments[2])
	fmt.Fprintf(out, "Kurtosis:  %.4f\n", dist.Moments[3])
	fmt.Fprintf(out, "Written:   %s\n", path)
	return nil
}

func readBatch(path string) (*generator.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}
	var batch generator.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse batch: %w", err)
	}
	return &batch, nil
}

func batchDistribution(cmd *cobra.Command, batch *generator.Batch, metric similarity.Metric, workers int) (*similarity.Distribution, error) {
	complete := batch.Complete()
	features := make([][]uint64, 0, len(complete))
	for _, p := range complete {
		if len(p.Features) == 0 {
			return nil, fmt.Errorf("batch %s has no features; generate with --return-features", batch.RunID)
		}
		features = append(features, p.Features)
	}
	if len(features) < 2 {
		return nil, fmt.Errorf("need at least two complete programs, got %d", len(features))
	}

	distances, err := similarity.Pairwise(commandContext(cmd), features, metric, workers)
	if err != nil {
		return nil, fmt.Errorf("failed to compute distances: %w", err)
	}
	return similarity.NewDistribution(string(metric), distances)
}
