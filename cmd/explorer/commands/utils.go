/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared helpers for the explorer commands: configuration loading, logging setup
and grammar resolution.
*/

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/lang-explorer/pkg/languages"
	"github.com/kleascm/lang-explorer/pkg/logging"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	viper.SetEnvPrefix("EXPLORER")
	viper.AutomaticEnv()

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return nil
}

// SetupLogging builds the logger described by the log_* keys
func SetupLogging() (*logging.Logger, error) {
	config := logging.DefaultConfig()
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode logging settings: %w", err)
	}

	logger, err := logging.NewLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// loadGrammar resolves the grammar_file key first, then the built-in grammar name
func loadGrammar(name, file string) (*languages.Grammar, error) {
	if file != "" {
		g, err := languages.LoadGrammarFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load grammar file: %w", err)
		}
		return g, nil
	}
	if name == "" {
		return nil, fmt.Errorf("no grammar selected: set --grammar or --grammar-file")
	}
	return languages.Builtin(name)
}

// bootstrap runs the steps every command starts with
func bootstrap() (*logging.Logger, error) {
	if err := LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return SetupLogging()
}

// commandContext returns the command context, or Background when the command runs outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
