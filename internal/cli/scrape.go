package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/swarm/internal/scrape"
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Fetch one page and print its readable content as JSON",
	Long: `Scrape fetches a single URL, honouring robots.txt and per-host rate limits,
and prints the page title, description, language and main text as JSON.

Example:
  swarm scrape https://example.com
  swarm scrape https://example.com/about --max-chars 4000`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().Int("max-chars", 0, "truncate content to this many characters")
	scrapeCmd.Flags().Bool("ignore-robots", false, "do not consult robots.txt")
	scrapeCmd.Flags().String("user-agent", "", "User-Agent header")

	_ = viper.BindPFlag("scrape.max_content_chars", scrapeCmd.Flags().Lookup("max-chars"))
	_ = viper.BindPFlag("scrape.user_agent", scrapeCmd.Flags().Lookup("user-agent"))
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if ignore, _ := cmd.Flags().GetBool("ignore-robots"); ignore {
		cfg.Scrape.RespectRobots = false
	}

	if err := scrape.ValidateURL(args[0]); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	scraper := scrape.New(cfg.Scrape, cfg.Proxy, newLogger(cfg.Output.Verbose))
	page, err := scraper.Scrape(ctx, args[0])
	if err != nil {
		return fmt.Errorf("scrape %s: %w", args[0], err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(page)
}
