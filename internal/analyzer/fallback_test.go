package analyzer

import (
	"testing"

	"github.com/xaenox/inbox-triage/internal/models"
)

func TestFallbackAnalysisRules(t *testing.T) {
	tests := []struct {
		name         string
		subject      string
		from         string
		wantCategory models.Category
		wantAction   models.Action
		wantPriority int
	}{
		{
			name:         "spam keywords",
			subject:      "You Won the Lottery!!!",
			from:         "someone@random.biz",
			wantCategory: models.CategorySpam,
			wantAction:   models.ActionDelete,
			wantPriority: 1,
		},
		{
			name:         "promotional keywords",
			subject:      "Special 50% Off Sale - Limited Time!",
			from:         "marketing@store.com",
			wantCategory: models.CategoryPromotions,
			wantAction:   models.ActionUnsubscribe,
			wantPriority: 3,
		},
		{
			name:         "newsletter keywords",
			subject:      "Your Weekly Digest",
			from:         "news@blog.example",
			wantCategory: models.CategoryNewsletters,
			wantAction:   models.ActionArchive,
			wantPriority: 4,
		},
		{
			name:         "receipt keywords",
			subject:      "Your order invoice",
			from:         "billing@shop.example",
			wantCategory: models.CategoryReceipts,
			wantAction:   models.ActionArchive,
			wantPriority: 6,
		},
		{
			name:         "social sender",
			subject:      "Someone viewed your profile",
			from:         "notifications@linkedin.com",
			wantCategory: models.CategorySocial,
			wantAction:   models.ActionArchive,
			wantPriority: 4,
		},
		{
			name:         "default",
			subject:      "Meeting notes",
			from:         "colleague@company.com",
			wantCategory: models.CategoryNotifications,
			wantAction:   models.ActionKeep,
			wantPriority: 5,
		},
		{
			// Spam keywords outrank promotional ones.
			name:         "spam beats promotions",
			subject:      "Urgent: claim your free sale discount",
			from:         "x@y.example",
			wantCategory: models.CategorySpam,
			wantAction:   models.ActionDelete,
			wantPriority: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := fallbackAnalysis(models.Message{Subject: tc.subject, From: tc.from})
			if got.Category != tc.wantCategory {
				t.Errorf("category = %q; want %q", got.Category, tc.wantCategory)
			}
			if got.Action != tc.wantAction {
				t.Errorf("action = %q; want %q", got.Action, tc.wantAction)
			}
			if got.PriorityScore != tc.wantPriority {
				t.Errorf("priority = %d; want %d", got.PriorityScore, tc.wantPriority)
			}
			if got.Confidence != 0.6 {
				t.Errorf("confidence = %v; want 0.6", got.Confidence)
			}
			if !got.IsAutomated {
				t.Error("is_automated = false; want true")
			}
			if got.HasUnsubscribe {
				t.Error("has_unsubscribe = true; want false")
			}
			if got.Reputation != models.ReputationUnknown {
				t.Errorf("reputation = %q; want %q", got.Reputation, models.ReputationUnknown)
			}
		})
	}
}

func TestFallbackAnalysisDeterministic(t *testing.T) {
	msg := models.Message{Subject: "Weekly Update", From: "team@example.com"}
	first := fallbackAnalysis(msg)
	for i := 0; i < 10; i++ {
		if got := fallbackAnalysis(msg); got != first {
			t.Fatalf("fallbackAnalysis not deterministic: %+v vs %+v", got, first)
		}
	}
}
