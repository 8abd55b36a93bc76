package analyzer

import (
	"strings"

	"github.com/xaenox/inbox-triage/internal/models"
)

// Keyword families for the rule-based fallback. Order of evaluation
// matters: spam wins over promotions, promotions over newsletters, and
// so on down to the keep default.
var (
	spamKeywords = []string{
		"viagra", "lottery", "winner", "click here", "urgent",
		"congratulations", "free money", "nigerian prince",
	}
	promoKeywords = []string{
		"sale", "offer", "deal", "discount", "%", "free", "limited time",
	}
	newsletterKeywords = []string{
		"newsletter", "update", "weekly", "monthly", "digest",
	}
	receiptKeywords = []string{
		"receipt", "confirmation", "order", "invoice", "payment",
	}
	socialSenders = []string{
		"facebook", "linkedin", "twitter", "instagram",
	}
)

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// fallbackAnalysis is the deterministic rule-based classification used
// whenever the generation service is unavailable or returns unusable
// output. It is a pure function of the lower-cased subject and sender.
func fallbackAnalysis(msg models.Message) models.TriageDecision {
	subject := strings.ToLower(msg.Subject)
	sender := strings.ToLower(msg.From)

	var (
		category  models.Category
		action    models.Action
		priority  int
		reasoning string
	)

	switch {
	case containsAny(subject, spamKeywords):
		category, action, priority = models.CategorySpam, models.ActionDelete, 1
		reasoning = "Detected spam keywords"
	case containsAny(subject, promoKeywords):
		category, action, priority = models.CategoryPromotions, models.ActionUnsubscribe, 3
		reasoning = "Promotional content detected"
	case containsAny(subject, newsletterKeywords):
		category, action, priority = models.CategoryNewsletters, models.ActionArchive, 4
		reasoning = "Newsletter content detected"
	case containsAny(subject, receiptKeywords):
		category, action, priority = models.CategoryReceipts, models.ActionArchive, 6
		reasoning = "Receipt/confirmation detected"
	case containsAny(sender, socialSenders):
		category, action, priority = models.CategorySocial, models.ActionArchive, 4
		reasoning = "Social media notification"
	default:
		category, action, priority = models.CategoryNotifications, models.ActionKeep, 5
		reasoning = "Rule-based analysis (AI unavailable)"
	}

	return models.TriageDecision{
		Category:       category,
		Action:         action,
		Confidence:     0.6,
		Reasoning:      reasoning,
		PriorityScore:  priority,
		HasUnsubscribe: false,
		IsAutomated:    true,
		Reputation:     models.ReputationUnknown,
		ContentSummary: "Content analysis unavailable",
	}
}
