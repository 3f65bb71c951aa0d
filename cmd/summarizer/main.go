package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/config"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core"
	"github.com/nevergoodstudy-hub/wechat-article-summarizer-sub002/internal/core/model"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.toml", "path to TOML config file")
		inputPath  = flag.String("input", "-", "article file to summarize, - for stdin")
		strategy   = flag.String("strategy", "auto", "auto, direct, mapreduce, rag, hyde or graphrag")
		style      = flag.String("style", "concise", "concise, detailed or bullet")
		evaluate   = flag.Bool("evaluate", false, "score the summary against the original text")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Warn("config file not loaded, using defaults")
		cfg = config.Default()
	}

	content, err := readInput(*inputPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to read input")
	}
	if strings.TrimSpace(content) == "" {
		logger.Fatal("input is empty")
	}

	service, err := core.NewService(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize service")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := service.Summarize(ctx, content, core.Strategy(*strategy), model.SummaryStyle(*style))
	if err != nil {
		logger.WithError(err).Fatal("summarization failed")
	}

	printSummary(summary)

	if *evaluate {
		result, suggestions := service.Evaluate(ctx, content, summary.Content)
		fmt.Println()
		fmt.Printf("评分: %.3f（%s）\n", result.Overall(), result.Grade())
		fmt.Printf("ROUGE-1/2/L: %.3f / %.3f / %.3f\n", result.Rouge1, result.Rouge2, result.RougeL)
		if result.Hallucination != nil && result.Hallucination.HasHallucination {
			fmt.Printf("幻觉风险: %.2f（实体 %v，数字 %v）\n",
				result.Hallucination.HallucinationRatio,
				result.Hallucination.SuspiciousEntities,
				result.Hallucination.SuspiciousNumbers)
		}
		for _, s := range suggestions {
			fmt.Println("- " + s)
		}
	}
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func printSummary(summary *model.Summary) {
	fmt.Println(summary.Content)
	if len(summary.KeyPoints) > 0 {
		fmt.Println()
		fmt.Println("要点:")
		for _, p := range summary.KeyPoints {
			fmt.Println("- " + p)
		}
	}
	if len(summary.Tags) > 0 {
		fmt.Println()
		fmt.Println("标签: " + strings.Join(summary.Tags, ", "))
	}
	fmt.Println()
	fmt.Printf("方法: %s（%s），tokens: %d\n", summary.Method, summary.ModelName, summary.TotalTokens())
}
