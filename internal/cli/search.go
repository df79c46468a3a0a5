package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/swarm/internal/search"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query> [query...]",
	Short: "Run web searches and print the formatted results",
	Long: `Search runs one or more queries against the configured search backend and
prints the results in the same Title/Snippet form the research command feeds
to the language model. Several queries run concurrently.

Example:
  swarm search "Apple podcast"
  swarm search "Apple podcast" "Microsoft podcast" --provider brave --urls`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().String("provider", "", "search backend (serper, brave, tavily)")
	searchCmd.Flags().Int("limit", 0, "results per query")
	searchCmd.Flags().Bool("urls", false, "include result URLs")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	// Local overrides; search.* keys are bound to the research flags
	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Search.Provider, _ = flags.GetString("provider")
	}
	if flags.Changed("limit") {
		cfg.Search.Limit, _ = flags.GetInt("limit")
	}
	if flags.Changed("urls") {
		cfg.Search.IncludeURLs, _ = flags.GetBool("urls")
	}

	if err := resolveSearchKey(cfg); err != nil {
		return err
	}

	client, err := search.New(search.ConfigFromModel(cfg.Search))
	if err != nil {
		return fmt.Errorf("search backend: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var text string
	if len(args) == 1 {
		text, err = client.Search(ctx, args[0])
	} else {
		text, err = client.Batch(ctx, args)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	_, _ = faint.Fprintf(os.Stderr, "%s: %d searches ($%.4f)\n", client.Provider(), client.Searches(), client.Cost())

	return nil
}
