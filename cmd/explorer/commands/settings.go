/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: settings.go
Description: Generation settings decoded from viper and their translation into a generator
request.
*/

package commands

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/kleascm/lang-explorer/pkg/expanders"
	"github.com/kleascm/lang-explorer/pkg/generator"
	"github.com/kleascm/lang-explorer/pkg/grammar"
	"github.com/kleascm/lang-explorer/pkg/languages"
)

// GenerateSettings holds every key the generate command reads
type GenerateSettings struct {
	Grammar     string `mapstructure:"grammar"`
	GrammarFile string `mapstructure:"grammar_file"`

	Count           int     `mapstructure:"count"`
	Seed            uint64  `mapstructure:"seed"`
	Workers         int     `mapstructure:"workers"`
	Expander        string  `mapstructure:"expander"`
	NoveltyStrength float64 `mapstructure:"novelty_strength"`
	MaxAttempts     int     `mapstructure:"max_attempts"`

	ReturnFeatures      bool `mapstructure:"return_features"`
	ReturnEdgeLists     bool `mapstructure:"return_edge_lists"`
	ReturnGraphviz      bool `mapstructure:"return_graphviz"`
	ReturnPartialGraphs bool `mapstructure:"return_partial_graphs"`

	WLIterations uint32 `mapstructure:"wl_iterations"`
	WLOrder      string `mapstructure:"wl_order"`
	WLDedup      bool   `mapstructure:"wl_dedup"`
	WLSort       bool   `mapstructure:"wl_sort"`

	OutputDir   string `mapstructure:"output_dir"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// LoadGenerateSettings decodes the generate keys from viper
func LoadGenerateSettings() (*GenerateSettings, error) {
	var s GenerateSettings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings for invalid values
func (s *GenerateSettings) Validate() error {
	if s.Count <= 0 {
		return fmt.Errorf("count must be positive")
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if s.Grammar == "" && s.GrammarFile == "" {
		return fmt.Errorf("no grammar selected: set --grammar or --grammar-file")
	}
	if _, err := expanders.ParseKind(s.Expander); err != nil {
		return err
	}
	if s.ReturnFeatures {
		if _, err := grammar.ParseWLOrder(s.WLOrder); err != nil {
			return err
		}
	}
	return nil
}

// Request translates the settings into a generator request
func (s *GenerateSettings) Request() (generator.Request[languages.StringValue, languages.StringValue], error) {
	kind, err := expanders.ParseKind(s.Expander)
	if err != nil {
		return generator.Request[languages.StringValue, languages.StringValue]{}, err
	}

	req := generator.Request[languages.StringValue, languages.StringValue]{
		Count:    s.Count,
		Seed:     s.Seed,
		Workers:  s.Workers,
		Expander: kind,
		Results: grammar.ResultOptions{
			ReturnFeatures:  s.ReturnFeatures,
			ReturnEdgeLists: s.ReturnEdgeLists,
			ReturnGraphviz:  s.ReturnGraphviz,
		},
		ReturnPartialGraphs:  s.ReturnPartialGraphs,
		MaxAttemptsPerWorker: s.MaxAttempts,
	}

	if s.ReturnFeatures {
		order, err := grammar.ParseWLOrder(s.WLOrder)
		if err != nil {
			return req, err
		}
		req.Results.Features = grammar.FeatureOptions{
			Iterations: s.WLIterations,
			Order:      order,
			Dedup:      s.WLDedup,
			Sort:       s.WLSort,
		}
	}

	if kind == expanders.KindLearned {
		req.Policy = expanders.NewNoveltyPolicy[languages.StringValue, languages.StringValue](s.NoveltyStrength)
	}

	return req, nil
}
