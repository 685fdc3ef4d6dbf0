// Command genfeeds aggregates classification results and synthesizes the
// three feed variants, exporting each to CSV and PDF.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/yousefh409/llm-censorship/pkg/config"
	"github.com/yousefh409/llm-censorship/pkg/export"
	"github.com/yousefh409/llm-censorship/pkg/feedgen"
	"github.com/yousefh409/llm-censorship/pkg/logging"
	"github.com/yousefh409/llm-censorship/pkg/resultlog"
	"github.com/yousefh409/llm-censorship/pkg/types"
)

func main() {
	outDir := flag.String("out", "./output", "Output directory for feed files")
	policyName := flag.String("policy", "v1", "Action taxonomy the results were classified under")
	fontPath := flag.String("font", "", "UTF-8 TTF font for CJK content (default from CJK_FONT_PATH)")
	flag.Parse()

	logger := logging.NewLoggerWithService("genfeeds")
	config.LoadEnv(logger)

	sources := flag.Args()
	if len(sources) == 0 {
		logger.Fatal("At least one result source (log directory or JSON file) is required")
	}
	policy, ok := types.PolicyByName(*policyName)
	if !ok {
		logger.Fatalf("Unknown policy %q", *policyName)
	}
	if *fontPath == "" {
		*fontPath = config.GetEnv("CJK_FONT_PATH", "")
	}
	if *fontPath == "" {
		logger.Warn("No CJK font configured; falling back to Helvetica, CJK glyphs will not render")
	}

	posts, err := resultlog.Merge(sources...)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load classification results")
	}
	fmt.Printf("Loaded %d total posts\n", len(posts))

	counts := resultlog.Counts(posts)
	fmt.Println("\nAction distribution:")
	actions := make([]types.Action, 0, len(counts))
	for action := range counts {
		actions = append(actions, action)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	for _, action := range actions {
		fmt.Printf("  %s: %d\n", action, counts[action])
	}
	for action, n := range resultlog.Drift(policy, posts) {
		logger.WithFields(logging.Fields{"action": action, "posts": n}).
			Warn("Action outside the configured taxonomy")
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.WithError(err).Fatal("Failed to create output directory")
	}

	for _, variant := range feedgen.CanonicalVariants() {
		feed := feedgen.Synthesize(posts, variant, policy)

		csvPath := filepath.Join(*outDir, variant.Name+"_feed.csv")
		if err := export.WriteCSV(csvPath, feed, variant.AttachReply); err != nil {
			logger.WithError(err).Fatalf("Failed to write %s", csvPath)
		}
		fmt.Printf("Generated: %s (%d posts)\n", csvPath, len(feed))

		pdfPath := filepath.Join(*outDir, variant.Name+"_feed.pdf")
		err := export.WritePDF(pdfPath, feed, export.PDFOptions{
			WithReply: variant.AttachReply,
			FontPath:  *fontPath,
		})
		if err != nil {
			logger.WithError(err).Fatalf("Failed to write %s", pdfPath)
		}
		fmt.Printf("Generated: %s (%d posts)\n", pdfPath, len(feed))
	}

	fmt.Println("\nAll feeds generated successfully!")
}
