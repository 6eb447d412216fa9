package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "evoprompt",
	Short: "Genetic optimization for natural-language prompts",
	Long: `evoprompt evolves a prompt toward an improvement goal using a genetic
algorithm whose fitness function and crossover operators are LLM calls.

Each generation the population is scored by self-consistent LLM judgment
(or an external evaluator process), the best candidates survive, and the
rest is refilled with LLM-merged children of tournament-selected parents.
The run stops when the best score reaches the threshold or the iteration
budget is spent.`,
	Version: "0.1.0",
}

func main() {
	rootCmd.AddCommand(newOptimizeCommand())
	rootCmd.AddCommand(newHistoryCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
