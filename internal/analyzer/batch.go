package analyzer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/inbox-triage/internal/models"
)

// batchPacing is the delay between generation service calls, applied
// to respect the provider's rate limits. Skipped when running on the
// rule-based fallback only.
const batchPacing = time.Second

// AnalyzeBatch classifies messages strictly in input order. A failure
// on one message never aborts the batch; the affected message gets the
// rule-based fallback decision instead.
func (a *GPTAnalyzer) AnalyzeBatch(ctx context.Context, msgs []models.Message) []models.AnalyzedEmail {
	batchID := uuid.New().String()
	results := make([]models.AnalyzedEmail, 0, len(msgs))

	for i, msg := range msgs {
		a.logger.Info("Analyzing email",
			zap.String("batch_id", batchID),
			zap.Int("index", i+1),
			zap.Int("total", len(msgs)),
			zap.String("subject", truncate(msg.Subject, 50)))

		decision := a.AnalyzeEmail(ctx, msg)
		results = append(results, models.AnalyzedEmail{Message: msg, Decision: decision})

		if a.client != nil && i < len(msgs)-1 {
			a.sleep(batchPacing)
		}
	}

	return results
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// DeletionCandidates returns the analyzed emails that are safe to
// delete: action delete, confidence at or above minConfidence, and
// low priority.
func DeletionCandidates(results []models.AnalyzedEmail, minConfidence float64) []models.AnalyzedEmail {
	var candidates []models.AnalyzedEmail
	for _, r := range results {
		if r.Decision.Action == models.ActionDelete &&
			r.Decision.Confidence >= minConfidence &&
			r.Decision.PriorityScore <= 3 {
			candidates = append(candidates, r)
		}
	}
	return candidates
}

// UnsubscribeCandidates returns the analyzed emails worth running the
// unsubscribe flow against.
func UnsubscribeCandidates(results []models.AnalyzedEmail) []models.AnalyzedEmail {
	var candidates []models.AnalyzedEmail
	for _, r := range results {
		if r.Decision.Action == models.ActionUnsubscribe &&
			r.Decision.HasUnsubscribe &&
			(r.Decision.Category == models.CategoryPromotions ||
				r.Decision.Category == models.CategoryNewsletters) {
			candidates = append(candidates, r)
		}
	}
	return candidates
}

// SummaryReport aggregates a finished batch in a single pass. An empty
// batch yields the zero report.
func SummaryReport(results []models.AnalyzedEmail) models.BatchReport {
	if len(results) == 0 {
		return models.BatchReport{}
	}

	report := models.BatchReport{
		TotalEmails:          len(results),
		Categories:           make(map[models.Category]int),
		Actions:              make(map[models.Action]int),
		PriorityDistribution: make(map[int]int, 10),
	}
	for p := 1; p <= 10; p++ {
		report.PriorityDistribution[p] = 0
	}

	var totalConfidence float64
	var sizeEstimate float64

	for _, r := range results {
		report.Categories[r.Decision.Category]++
		report.Actions[r.Decision.Action]++
		report.PriorityDistribution[r.Decision.PriorityScore]++
		totalConfidence += r.Decision.Confidence
		sizeEstimate += float64(len(r.Message.BodyHTML)+len(r.Message.BodyText)) * 0.001
	}

	report.EstimatedSizeKB = int(sizeEstimate)
	report.DeletionCandidates = report.Actions[models.ActionDelete]
	report.UnsubscribeCandidates = report.Actions[models.ActionUnsubscribe]
	report.AvgConfidence = totalConfidence / float64(len(results))

	return report
}
