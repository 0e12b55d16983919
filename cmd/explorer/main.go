/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for the language explorer. Generates program batches
from built-in or YAML grammars, prints grammars in BNF and summarizes batch similarity.
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kleascm/lang-explorer/cmd/explorer/commands"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "explorer",
		Short: "Grammar-driven random program generator",
		Long: `Explorer derives random programs from context-free and context-sensitive grammars.
Each program is returned as text together with optional WL-kernel features, edge lists and
Graphviz renderings of its derivation tree.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Configuration and logging
	rootCmd.PersistentFlags().String("config", "", "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().String("log-dir", "", "Log output directory (empty logs to the console only)")
	rootCmd.PersistentFlags().Int("log-max-files", 10, "Maximum number of log files to keep")

	// Grammar selection
	rootCmd.PersistentFlags().String("grammar", "balanced", "Built-in grammar name")
	rootCmd.PersistentFlags().String("grammar-file", "", "YAML grammar file (overrides --grammar)")

	bindFlags(rootCmd.PersistentFlags().Lookup, map[string]string{
		"config":        "config",
		"log_level":     "log-level",
		"log_format":    "log-format",
		"log_dir":       "log-dir",
		"log_max_files": "log-max-files",
		"grammar":       "grammar",
		"grammar_file":  "grammar-file",
	})

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of programs",
		Long: `Generate a batch of distinct programs from the selected grammar. Programs are
printed to stdout, or written with their features, edge lists and Graphviz files to a run
directory under --output-dir.`,
		Args: cobra.NoArgs,
		RunE: commands.RunGenerate,
	}

	generateCmd.Flags().Int("count", 100, "Number of programs to generate")
	generateCmd.Flags().Uint64("seed", 0, "Base seed; worker i uses seed + 5i")
	generateCmd.Flags().Int("workers", 0, "Number of parallel workers (0 = one per CPU)")
	generateCmd.Flags().String("expander", "montecarlo", "Expander policy (montecarlo, weighted, learned)")
	generateCmd.Flags().Float64("novelty-strength", 1.0, "Penalty strength of the learned novelty policy")
	generateCmd.Flags().Int("max-attempts", 0, "Derivations per worker before giving up (0 = 1000 per program)")

	generateCmd.Flags().Bool("return-features", true, "Compute WL-kernel features")
	generateCmd.Flags().Bool("return-edge-lists", false, "Include derivation tree edge lists")
	generateCmd.Flags().Bool("return-graphviz", false, "Include Graphviz renderings")
	generateCmd.Flags().Bool("return-partial-graphs", false, "Also emit every proper subtree as a partial program")

	generateCmd.Flags().Uint32("wl-iterations", 3, "WL relabelling rounds")
	generateCmd.Flags().String("wl-order", "self_children_parent", "WL label ordering (self_children_parent, parent_self_children, total_ordered)")
	generateCmd.Flags().Bool("wl-dedup", false, "Deduplicate features")
	generateCmd.Flags().Bool("wl-sort", false, "Sort features")

	generateCmd.Flags().String("output-dir", "", "Directory for batch output (empty prints programs)")
	generateCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while generating")

	bindFlags(generateCmd.Flags().Lookup, map[string]string{
		"count":                 "count",
		"seed":                  "seed",
		"workers":               "workers",
		"expander":              "expander",
		"novelty_strength":      "novelty-strength",
		"max_attempts":          "max-attempts",
		"return_features":       "return-features",
		"return_edge_lists":     "return-edge-lists",
		"return_graphviz":       "return-graphviz",
		"return_partial_graphs": "return-partial-graphs",
		"wl_iterations":         "wl-iterations",
		"wl_order":              "wl-order",
		"wl_dedup":              "wl-dedup",
		"wl_sort":               "wl-sort",
		"output_dir":            "output-dir",
		"metrics_addr":          "metrics-addr",
	})

	bnfCmd := &cobra.Command{
		Use:   "bnf",
		Short: "Print the selected grammar",
		Args:  cobra.NoArgs,
		RunE:  commands.RunBNF,
	}
	bnfCmd.Flags().Bool("yaml", false, "Print the grammar as a YAML grammar file")
	bindFlags(bnfCmd.Flags().Lookup, map[string]string{"yaml": "yaml"})

	similarityCmd := &cobra.Command{
		Use:   "similarity <batch.json>",
		Short: "Summarize pairwise WL distances of a generated batch",
		Long: `Load a batch written by generate --return-features, compute the WL-test distance
between every pair of complete programs and print the distance distribution.`,
		Args: cobra.ExactArgs(1),
		RunE: commands.RunSimilarity,
	}
	similarityCmd.Flags().String("metric", "l2", "Distance metric (l2, l1)")
	similarityCmd.Flags().Int("workers", 0, "Rows computed in parallel (0 = unbounded)")
	bindFlags(similarityCmd.Flags().Lookup, map[string]string{
		"metric":             "metric",
		"similarity_workers": "workers",
	})

	rootCmd.AddCommand(generateCmd, bnfCmd, similarityCmd, &cobra.Command{
		Use:   "list-grammars",
		Short: "List the built-in grammars",
		Args:  cobra.NoArgs,
		Run:   commands.ListGrammars,
	})

	return rootCmd
}

func bindFlags(lookup func(string) *pflag.Flag, keys map[string]string) {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}
}
