package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evoprompt-go/pkg/config"
	"github.com/XiaoConstantine/evoprompt-go/pkg/history"
	"github.com/XiaoConstantine/evoprompt-go/pkg/llms"
	"github.com/XiaoConstantine/evoprompt-go/pkg/logging"
	"github.com/XiaoConstantine/evoprompt-go/pkg/optimizer"
)

func newOptimizeCommand() *cobra.Command {
	var (
		prompt     string
		goal       string
		configPath string

		population  int
		iterations  int
		elites      int
		tournament  int
		threshold   float64
		samples     int
		concurrency int

		provider string
		model    string
		apiKey   string
		baseURL  string
		rpm      int

		evaluatorCmd string
		historyDB    string
		logLevel     string
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Evolve a prompt toward an improvement goal",
		Example: `  # Optimize a prompt with an explicit goal
  evoprompt optimize -p "Summarize the text." -g "produce faithful three-sentence summaries"

  # Let the model infer the goal from the prompt itself
  evoprompt optimize -p "Translate {input} to French."

  # Score candidates with an external process instead of the LLM
  evoprompt optimize -p "Classify the ticket." --evaluator "./score.sh"

  # Keep an archive of runs
  evoprompt optimize -p "Summarize the text." --history runs.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("population") {
				cfg.Optimizer.PopulationSize = population
			}
			if flags.Changed("iterations") {
				cfg.Optimizer.NumIterations = iterations
			}
			if flags.Changed("elites") {
				cfg.Optimizer.NumElites = elites
			}
			if flags.Changed("tournament") {
				cfg.Optimizer.TournamentSize = tournament
			}
			if flags.Changed("threshold") {
				cfg.Optimizer.Threshold = threshold
			}
			if flags.Changed("samples") {
				cfg.Optimizer.NumSamples = samples
			}
			if flags.Changed("concurrency") {
				cfg.Optimizer.Concurrency = concurrency
			}
			if flags.Changed("provider") {
				cfg.Provider.Name = provider
			}
			if flags.Changed("model") {
				cfg.Provider.Model = model
			}
			if flags.Changed("api-key") {
				cfg.Provider.APIKey = apiKey
			}
			if flags.Changed("base-url") {
				cfg.Provider.BaseURL = baseURL
			}
			if flags.Changed("rpm") {
				cfg.Provider.RequestsPerMinute = rpm
			}
			if flags.Changed("evaluator") {
				if parts := strings.Fields(evaluatorCmd); len(parts) > 0 {
					cfg.Evaluator.Command = parts[0]
					cfg.Evaluator.Args = parts[1:]
				}
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logging.SetLogger(logging.NewLogger(logging.Config{
				Severity: logging.ParseSeverity(cfg.LogLevel),
				Outputs:  []logging.Output{logging.NewConsoleOutput(true)},
			}))

			if prompt == "" {
				prompt, err = readPromptInteractive(cmd)
				if err != nil {
					return err
				}
			}

			return runOptimization(cmd, cfg, prompt, goal, historyDB)
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "seed prompt to optimize (read interactively when omitted)")
	cmd.Flags().StringVarP(&goal, "goal", "g", "", "improvement goal (inferred from the prompt when omitted)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	cmd.Flags().IntVar(&population, "population", 0, "candidates per generation")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "maximum number of generations")
	cmd.Flags().IntVar(&elites, "elites", 0, "top candidates carried over unevaluated")
	cmd.Flags().IntVar(&tournament, "tournament", 0, "tournament size for parent selection")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "best-score bar for early termination (0..1)")
	cmd.Flags().IntVar(&samples, "samples", 0, "self-consistency samples per evaluation")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum concurrent backend calls (0 = unbounded)")

	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (anthropic or openai)")
	cmd.Flags().StringVar(&model, "model", "", "model identifier")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "provider API key (falls back to the provider's environment variable)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "provider base URL override")
	cmd.Flags().IntVar(&rpm, "rpm", 0, "client-side request rate limit per minute (0 = off)")

	cmd.Flags().StringVar(&evaluatorCmd, "evaluator", "", "external evaluator command; candidate on stdin, score on stdout")
	cmd.Flags().StringVar(&historyDB, "history", "", "SQLite file for the run archive")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log severity (DEBUG, INFO, WARN, ERROR)")

	return cmd
}

func runOptimization(cmd *cobra.Command, cfg *config.Config, prompt, goal, historyDB string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llm, err := llms.New(cfg.Provider)
	if err != nil {
		return err
	}

	opts := []optimizer.Option{
		optimizer.WithSink(newConsoleSink(cmd.OutOrStdout())),
	}
	if cfg.Evaluator.Command != "" {
		opts = append(opts, optimizer.WithEvaluator(
			optimizer.NewProcessEvaluator(cfg.Evaluator.Command, cfg.Evaluator.Args...)))
	}

	var (
		store *history.Store
		runID string
	)
	if historyDB != "" {
		store, err = history.NewStore(historyDB)
		if err != nil {
			return err
		}
		defer store.Close()

		runID, err = store.BeginRun(ctx, prompt, goal, llm.ProviderName(), llm.ModelID())
		if err != nil {
			return err
		}
		ctx = logging.WithRunID(ctx, runID)
		opts = append(opts, optimizer.WithSink(store.SinkFor(ctx, runID)))
	}

	opt, err := optimizer.New(llm, cfg.Optimizer, opts...)
	if err != nil {
		return err
	}

	result, err := opt.Run(ctx, prompt, goal)
	if store != nil {
		// Archive the outcome even when the run failed partway.
		outcome := history.Outcome{Status: history.StatusFailed}
		if err == nil {
			outcome = history.Outcome{
				Status:           history.StatusFinished,
				BestPrompt:       result.BestPrompt,
				BestScore:        result.BestScore,
				Generations:      result.Generations,
				PromptsEvaluated: result.PromptsEvaluated,
				Usage:            result.Usage,
			}
		}
		if archiveErr := store.FinishRun(context.WithoutCancel(ctx), runID, outcome); archiveErr != nil {
			logging.GetLogger().Warn(ctx, "failed to archive run outcome: %v", archiveErr)
		}
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Best prompt (score %.3f after %d generations):\n\n", result.BestScore, result.Generations)
	fmt.Fprintln(out, result.BestPrompt)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Prompts evaluated: %d  Tokens: %d in / %d out\n",
		result.PromptsEvaluated, result.Usage.InputTokens, result.Usage.OutputTokens)
	return nil
}

// readPromptInteractive asks for the seed prompt on standard input. Literal
// \n sequences are expanded so multi-line prompts can be entered on one line.
func readPromptInteractive(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Prompt to optimize: ")

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read prompt: %w", err)
	}

	prompt := expandEscapedNewlines(strings.TrimSpace(line))
	if prompt == "" {
		return "", fmt.Errorf("no prompt given")
	}
	return prompt, nil
}

func expandEscapedNewlines(s string) string {
	return strings.NewReplacer(`\n`, "\n", `\t`, "\t").Replace(s)
}
