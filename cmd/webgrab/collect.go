package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"webgrab/pkg/collector"
	"webgrab/pkg/config"
	"webgrab/pkg/logger"
	"webgrab/pkg/render"
	"webgrab/pkg/ui"
)

var (
	// Collect command flags
	outputDir    string
	concurrent   int
	minSize      int64
	candidateCap int
	interactive  bool
	dailyMode    bool
	noRender     bool
	saveArticles bool
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect <url>",
	Short: "Collect images and articles from a page and its discovered links",
	Long: `Render the given page, discover article and gallery links on it, and
download every image from the selected pages at its highest declared
resolution. Duplicate content is skipped by byte fingerprint, and files
smaller than the minimum size threshold are filtered out.

By default all discovered candidates (up to the cap) are processed; pass
--interactive to choose from the discovered list instead.`,
	Example: `  # Collect everything linked from a gallery page
  webgrab collect https://example.com/gallery

  # Pick pages by hand, skip article documents
  webgrab collect https://example.com/blog --interactive --articles=false

  # Daily-updates mode without a headless browser
  webgrab collect https://example.com --daily --no-render`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runCollect(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVarP(&outputDir, "output", "o", "", "root output directory (default ./collected)")
	collectCmd.Flags().IntVar(&concurrent, "concurrent", 5, "number of concurrent downloads")
	collectCmd.Flags().Int64Var(&minSize, "min-size", config.MinFileSizeDefault, "minimum image size in bytes")
	collectCmd.Flags().IntVar(&candidateCap, "candidate-cap", 15, "maximum candidates to select")
	collectCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "choose candidates interactively")
	collectCmd.Flags().BoolVar(&dailyMode, "daily", false, "look for daily/recommended updates")
	collectCmd.Flags().BoolVar(&noRender, "no-render", false, "fetch pages over plain HTTP instead of a headless browser")
	collectCmd.Flags().BoolVar(&saveArticles, "articles", true, "save a reader-view article document per page")
}

func runCollect(cmd *cobra.Command, args []string) {
	seedURL := strings.TrimSpace(args[0])
	ui.PrintInfo("Target page", seedURL)

	// Build flags map from command line
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if concurrent != 5 {
		flags["concurrent"] = concurrent
	}
	if minSize != config.MinFileSizeDefault {
		flags["min-size"] = minSize
	}
	if candidateCap != 15 {
		flags["candidate-cap"] = candidateCap
	}
	if interactive {
		flags["selection-mode"] = config.SelectionInteractive
	}
	if dailyMode {
		flags["daily"] = true
	}
	if noRender {
		flags["render-engine"] = config.RenderEngineHTTP
	}
	if cmd.Flags().Changed("articles") {
		flags["articles"] = saveArticles
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	logger.Initialize(&cfg.Logging)
	log := logger.GetLogger()
	log.WithField("version", version).Info("webgrab starting")

	renderer, err := render.New(cfg, log)
	if err != nil {
		ui.PrintError("Failed to initialize renderer", err.Error())
		os.Exit(1)
	}

	var selector ui.Selector
	if cfg.Discovery.SelectionMode == config.SelectionInteractive {
		selector = ui.PromptSelector{Cap: cfg.Discovery.CandidateCap, In: os.Stdin, Out: os.Stdout}
	} else {
		selector = ui.AutoSelector{Cap: cfg.Discovery.CandidateCap}
	}

	c, err := collector.New(cfg, renderer, selector, log)
	if err != nil {
		renderer.Close()
		ui.PrintError("Failed to initialize collector", err.Error())
		os.Exit(1)
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := c.Run(ctx, seedURL)
	printSummary(summary)
	if err != nil {
		log.WithError(err).WithField("url", seedURL).Error("collection failed")
		ui.PrintError("COLLECTION FAILED", err.Error())
		os.Exit(1)
	}

	log.WithField("url", seedURL).Info("collection completed")
	ui.PrintSuccess("Collection completed")
}

func printSummary(s *collector.Summary) {
	if s == nil {
		return
	}
	ui.PrintInfo("Pages processed", fmt.Sprintf("%d (%d failed)", s.PagesProcessed, s.PagesFailed))
	ui.PrintInfo("Images saved", fmt.Sprintf("%d", s.ImagesSaved))
	ui.PrintInfo("Skipped duplicates", fmt.Sprintf("%d", s.Duplicates))
	ui.PrintInfo("Skipped too small", fmt.Sprintf("%d", s.TooSmall))
	ui.PrintInfo("Failed downloads", fmt.Sprintf("%d", s.ImagesFailed))
	ui.PrintInfo("Articles saved", fmt.Sprintf("%d", s.ArticlesSaved))
}

// Make collect the default command when no subcommand is specified
func init() {
	origRunE := rootCmd.RunE
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if origRunE != nil {
			return origRunE(cmd, args)
		}
		if len(args) > 0 && !isKnownCommand(args[0]) {
			// First argument is not a known command, treat it as a URL
			return collectCmd.RunE(collectCmd, args)
		}
		return cmd.Help()
	}

	rootCmd.Args = cobra.ArbitraryArgs
}

func isKnownCommand(arg string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == arg || cmd.HasAlias(arg) {
			return true
		}
	}
	return false
}
