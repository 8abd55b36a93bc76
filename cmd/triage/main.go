package main

import (
	"context"
	"encoding/json"
	"os"

	"go.uber.org/zap"

	"github.com/xaenox/inbox-triage/internal/analyzer"
	"github.com/xaenox/inbox-triage/internal/models"
	"github.com/xaenox/inbox-triage/internal/unsubscriber"
	"github.com/xaenox/inbox-triage/pkg/config"
)

type output struct {
	Report      models.BatchReport                    `json:"report"`
	Results     []models.AnalyzedEmail                `json:"results"`
	Unsubscribe map[string][]models.UnsubscribeResult `json:"unsubscribe,omitempty"`
}

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	if cfg.Logging.Development {
		logger, _ = zap.NewDevelopment()
	}

	if len(os.Args) < 2 {
		logger.Fatal("Usage: triage <messages.json>")
	}

	// Read the message dump exported by the mailbox integration
	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		logger.Fatal("Failed to read messages file", zap.Error(err), zap.String("path", os.Args[1]))
	}

	var messages []models.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		logger.Fatal("Failed to parse messages file", zap.Error(err))
	}

	ctx := context.Background()

	// Initialize the analyzer
	a := analyzer.NewGPTAnalyzer(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		analyzer.RetryPolicy{
			MaxAttempts: cfg.OpenAI.RetryAttempts,
			BaseDelay:   cfg.OpenAI.RetryBaseWait,
		},
		logger,
	)

	// Classify the batch
	results := a.AnalyzeBatch(ctx, messages)
	report := analyzer.SummaryReport(results)

	logger.Info("Batch analysis complete",
		zap.Int("total", report.TotalEmails),
		zap.Int("deletion_candidates", len(analyzer.DeletionCandidates(results, cfg.Analyzer.MinConfidence))),
		zap.Int("unsubscribe_candidates", len(analyzer.UnsubscribeCandidates(results))),
		zap.Float64("avg_confidence", report.AvgConfidence))

	// Run the unsubscribe flow for flagged messages
	u := unsubscriber.NewUnsubscriber(
		cfg.Unsubscriber.UserEmail,
		cfg.Unsubscriber.UserAgent,
		cfg.Unsubscriber.Timeout,
		logger,
	)

	attempts := make(map[string][]models.UnsubscribeResult)
	for _, candidate := range analyzer.UnsubscribeCandidates(results) {
		attemptResults := u.UnsubscribeFromEmail(ctx, candidate.Message)
		attempts[candidate.Message.ID] = attemptResults
		logger.Info("Unsubscribe finished",
			zap.String("message_id", candidate.Message.ID),
			zap.Bool("success", unsubscriber.Succeeded(attemptResults)),
			zap.Int("attempts", len(attemptResults)))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output{Report: report, Results: results, Unsubscribe: attempts}); err != nil {
		logger.Fatal("Failed to write output", zap.Error(err))
	}
}
