package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/swarm/internal/llm"
	"github.com/ppiankov/swarm/internal/model"
	"github.com/ppiankov/swarm/internal/search"
	"github.com/ppiankov/swarm/internal/strategy"
	"github.com/ppiankov/swarm/internal/worker"
)

var (
	entityFlags  []string
	entitiesFile string
	searchFlags  []string
	searchesFile string
	runTimeout   time.Duration
)

// researchCmd represents the research command
var researchCmd = &cobra.Command{
	Use:   "research <query>",
	Short: "Evaluate one query against many entities in parallel",
	Long: `Research runs the configured search templates for every entity, scores
each entity against the query and prints the entities scoring above the
threshold, best first, as JSON lines.

Search templates use {company} (or {entity}) as the entity placeholder.

Example:
  swarm research "has a podcast" --entity AAPL --entity MSFT -s "{company} podcast"
  swarm research "net revenue retention above 120%" \
      --entities-file tickers.txt --searches-file searches.txt --json results.jsonl
  swarm research "who is the CEO" --strategy answer --all --entity NVDA -s "{company} CEO"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)

	f := researchCmd.Flags()

	// Input flags
	f.StringArrayVarP(&entityFlags, "entity", "e", nil, "entity identifier (repeatable)")
	f.StringVar(&entitiesFile, "entities-file", "", "file with one entity per line")
	f.StringArrayVarP(&searchFlags, "search", "s", nil, "search template, e.g. \"{company} podcast\" (repeatable)")
	f.StringVar(&searchesFile, "searches-file", "", "file with one search template per line")
	f.DurationVar(&runTimeout, "timeout", 30*time.Minute, "overall research timeout")

	// Swarm flags
	f.Int("workers", 0, "max concurrent entity tasks")
	f.Int("rps", 0, "admissions allowed per window")
	f.Duration("window", 0, "rate limit window")
	f.String("strategy", "", "scoring strategy (eval, answer)")
	f.Int("threshold", 0, "show only results scoring above this")

	// Backend flags
	f.String("search-provider", "", "search backend (serper, brave, tavily)")
	f.Int("limit", 0, "search results per query")
	f.String("llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	f.String("model", "", "LLM model name")

	// Output flags
	f.String("json", "", "write ranked JSON lines to this file instead of stdout")
	f.Bool("all", false, "include results at or below the threshold")

	for key, flag := range map[string]string{
		"swarm.workers":             "workers",
		"swarm.requests_per_window": "rps",
		"swarm.window":              "window",
		"swarm.strategy":            "strategy",
		"swarm.threshold":           "threshold",
		"search.provider":           "search-provider",
		"search.limit":              "limit",
		"llm.provider":              "llm-provider",
		"llm.model":                 "model",
		"output.json":               "json",
		"output.all":                "all",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}
}

func runResearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	entities, err := collectLines(entityFlags, entitiesFile)
	if err != nil {
		return fmt.Errorf("read entities: %w", err)
	}
	if len(entities) == 0 {
		return fmt.Errorf("no entities: use --entity or --entities-file")
	}

	rawTemplates, err := collectLines(searchFlags, searchesFile)
	if err != nil {
		return fmt.Errorf("read search templates: %w", err)
	}
	templates := model.Templates(rawTemplates)

	if err := resolveSearchKey(cfg); err != nil {
		return err
	}
	if err := resolveLLMKey(cfg); err != nil {
		return err
	}

	searcher, err := search.New(search.ConfigFromModel(cfg.Search))
	if err != nil {
		return fmt.Errorf("search backend: %w", err)
	}
	scorer, err := llm.NewProvider(llm.ConfigFromModel(cfg))
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	strat, err := strategy.New(cfg.Swarm.Strategy, searcher, scorer)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Output.Verbose)
	progress := progressPrinter{w: os.Stderr}

	dispatcher := worker.NewDispatcher(strat,
		cfg.Swarm.Workers,
		cfg.Swarm.RequestsPerWindow,
		cfg.Swarm.Window,
		worker.WithLogger(logger),
		worker.WithProgress(progress.mark),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "Researching %q across %d entities (%s strategy, %d searches each)\n",
		query, len(entities), strat.Name(), len(templates))

	outcome, err := dispatcher.Research(ctx, query, entities, templates)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("research failed: %w", err)
	}

	threshold := cfg.Swarm.Threshold
	if cfg.Output.All {
		threshold = -1
	}
	ranked := model.Rank(outcome.Results, threshold)

	if err := writeResults(cfg.Output.JSON, ranked); err != nil {
		return err
	}
	if cfg.Output.JSON != "" {
		printResults(os.Stdout, ranked, cfg.Swarm.Threshold)
	}

	printFailures(outcome.Failures)
	printTotals(os.Stderr, outcome, len(ranked), searcher, scorer.Usage())

	return nil
}

// collectLines merges flag values with the lines of an optional file
func collectLines(values []string, file string) ([]string, error) {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	if file != "" {
		lines, err := worker.ReadLinesFromFile(file)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}

	return out, nil
}

// writeResults writes one JSON object per line to path, or stdout when empty
func writeResults(path string, ranked []model.QueryResult) (err error) {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output: %w", closeErr)
			}
		}()
		w = f
	}

	return writeJSONLines(w, ranked)
}

func writeJSONLines(w io.Writer, ranked []model.QueryResult) error {
	enc := json.NewEncoder(w)
	for _, r := range ranked {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return nil
}

// printTotals reports counts, elapsed time and estimated spend
func printTotals(w io.Writer, outcome *model.Outcome, shown int, searcher *search.Client, usage llm.Usage) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	_, _ = cyan.Fprintf(w, "  Run %s\n", outcome.RunID)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Entities:  %d scored, %d failed, %d shown\n", len(outcome.Results), len(outcome.Failures), shown)
	fmt.Fprintf(w, "  Duration:  %s\n", outcome.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Searches:  %d ($%.4f)\n", searcher.Searches(), searcher.Cost())
	fmt.Fprintf(w, "  Tokens:    %d in / %d out ($%.4f)\n", usage.InputTokens, usage.OutputTokens, usage.Cost())
	fmt.Fprintf(w, "  Total:     $%.4f\n", searcher.Cost()+usage.Cost())
	fmt.Fprintln(w)
}
