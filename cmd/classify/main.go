// Command classify runs one classification pass over a posts CSV: it selects
// posts, submits each one to the oracle, and persists the classification log.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/yousefh409/llm-censorship/pkg/classifier"
	"github.com/yousefh409/llm-censorship/pkg/config"
	"github.com/yousefh409/llm-censorship/pkg/export"
	"github.com/yousefh409/llm-censorship/pkg/logging"
	"github.com/yousefh409/llm-censorship/pkg/oracle"
	"github.com/yousefh409/llm-censorship/pkg/poststore"
	"github.com/yousefh409/llm-censorship/pkg/resultlog"
	"github.com/yousefh409/llm-censorship/pkg/selection"
	"github.com/yousefh409/llm-censorship/pkg/types"
)

func main() {
	input := flag.String("input", "", "Posts CSV file (post_id, content, ...)")
	logDir := flag.String("log", "./data/results", "Result log directory")
	jsonOut := flag.String("json", "", "Optional plain JSON results file")
	annotate := flag.String("annotate", "", "Optional annotated CSV output (mode=all)")
	mode := flag.String("mode", "random", "Selection mode: random, themed, or all")
	n := flag.Int("n", 20, "Sample size for random mode")
	themes := flag.String("themes", "corruption,nationalist,pro_freedom", "Themes for themed mode")
	perTheme := flag.Int("per-theme", 30, "Posts per theme for themed mode")
	policyName := flag.String("policy", "v1", "Action taxonomy: v1 or v2")
	model := flag.String("model", "", "Oracle model (default from GOOGLE_MODEL)")
	seed := flag.Int64("seed", 0, "Random seed for reproducible sampling (0 = time-based)")
	flag.Parse()

	logger := logging.NewLoggerWithService("classify")
	config.LoadEnv(logger)

	if *input == "" {
		logger.Fatal("-input is required")
	}
	policy, ok := types.PolicyByName(*policyName)
	if !ok {
		logger.Fatalf("Unknown policy %q", *policyName)
	}

	posts, err := poststore.Load(*input)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load posts")
	}
	logger.WithField("posts", len(posts)).Info("Loaded posts")

	ctx := context.Background()
	geminiCfg := oracle.DefaultGeminiConfig(policy)
	geminiCfg.Model = *model
	orc, err := oracle.NewGeminiOracle(ctx, geminiCfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create oracle")
	}

	logWriter, err := resultlog.OpenWriter(resultlog.WriterConfig{
		Dir:    *logDir,
		Policy: policy.Name,
		Append: true,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open result log")
	}
	defer logWriter.Close()

	runner := &classifier.Runner{
		Oracle: orc,
		Policy: policy,
		Logger: logger,
		Log:    logWriter,
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	var classified []types.ClassifiedPost
	switch *mode {
	case "random":
		sample := selection.Random(rng, posts, *n)
		logger.WithField("sample", len(sample)).Info("Classifying random sample")
		classified, err = runner.Run(ctx, sample, "random")

	case "themed":
		themeList := strings.Split(*themes, ",")
		grouped := selection.TopThemed(posts, themeList, *perTheme)
		for _, theme := range themeList {
			logger.WithFields(logging.Fields{
				"theme": theme,
				"posts": len(grouped[theme]),
			}).Info("Classifying top themed posts")
			var batch []types.ClassifiedPost
			batch, err = runner.Run(ctx, grouped[theme], "themed:"+theme)
			classified = append(classified, batch...)
			if err != nil {
				break
			}
		}

	case "all":
		classified, err = runner.Run(ctx, posts, "all")

	default:
		logger.Fatalf("Unknown mode %q", *mode)
	}
	if err != nil {
		logger.WithError(err).Fatal("Classification pass aborted")
	}

	if *jsonOut != "" {
		if err := resultlog.WriteFile(*jsonOut, classified); err != nil {
			logger.WithError(err).Fatal("Failed to write JSON results")
		}
	}
	if *annotate != "" {
		if err := export.WriteAnnotatedCSV(*annotate, classified); err != nil {
			logger.WithError(err).Fatal("Failed to write annotated CSV")
		}
	}

	printDistribution(classified, policy)
}

func printDistribution(classified []types.ClassifiedPost, policy types.PolicyVersion) {
	counts := resultlog.Counts(classified)
	fmt.Printf("\nClassified %d posts\n", len(classified))
	fmt.Println("Action distribution:")
	for _, action := range sortedActions(counts) {
		fmt.Printf("  %s: %d\n", action, counts[action])
	}
	if drift := resultlog.Drift(policy, classified); len(drift) > 0 {
		fmt.Println("Actions outside the configured taxonomy:")
		for _, action := range sortedActions(drift) {
			fmt.Printf("  %s: %d\n", action, drift[action])
		}
	}
}

func sortedActions(counts map[types.Action]int) []types.Action {
	actions := make([]types.Action, 0, len(counts))
	for action := range counts {
		actions = append(actions, action)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}
