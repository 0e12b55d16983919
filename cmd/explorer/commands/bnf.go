/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: bnf.go
Description: BNF command. Prints the selected grammar in BNF or YAML form along with its
identity and alphabet.
*/

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/lang-explorer/pkg/languages"
)

// RunBNF executes the bnf command
func RunBNF(cmd *cobra.Command, args []string) error {
	logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Close()

	g, err := loadGrammar(viper.GetString("grammar"), viper.GetString("grammar_file"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if viper.GetBool("yaml") {
		data, err := languages.MarshalGrammar(g)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	fmt.Fprintf(out, "# %s\n", g.Name())
	fmt.Fprintf(out, "# uuid: %s\n", g.UUID())
	fmt.Fprintf(out, "# context sensitive: %v\n", g.IsContextSensitive())

	var symbols []string
	for _, s := range g.Symbols() {
		symbols = append(symbols, s.String())
	}
	fmt.Fprintf(out, "# symbols: %s\n", strings.Join(symbols, " "))
	fmt.Fprint(out, g.BNF())
	return nil
}

// ListGrammars prints the built-in grammars
func ListGrammars(cmd *cobra.Command, args []string) {
	for _, name := range languages.BuiltinNames() {
		g, err := languages.Builtin(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", name, g.Name())
	}
}
