// Package unsubscriber discovers unsubscribe links in a message and
// executes them against the sender's web flow: form submission first,
// confirmation-link click second. Everything here is best-effort;
// failures surface as result values, never as errors or panics.
package unsubscriber

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/inbox-triage/internal/models"
)

// attemptPacing is the delay between visits to different candidate
// links of one message, to avoid hammering third-party servers.
const attemptPacing = 2 * time.Second

// UnsubscribeFromEmail runs the full unsubscribe flow for one message:
// extract candidate links, attempt each in extraction order, stop at
// the first success. Results are returned in attempt order.
func (u *Unsubscriber) UnsubscribeFromEmail(ctx context.Context, msg models.Message) []models.UnsubscribeResult {
	content := msg.Content()
	if content == "" {
		return []models.UnsubscribeResult{{
			Success: false,
			Message: "No email content (HTML or text) found for unsubscribe",
			Method:  models.MethodNone,
			URL:     "",
		}}
	}

	links := ExtractLinks(content)
	if msg.ListUnsubscribe != "" {
		links = mergeLinks(links, ExtractLinks(msg.ListUnsubscribe))
	}

	if len(links) == 0 {
		return []models.UnsubscribeResult{{
			Success: false,
			Message: "No unsubscribe links found in email",
			Method:  models.MethodNone,
			URL:     "",
		}}
	}

	var results []models.UnsubscribeResult
	for i, link := range links {
		if i > 0 {
			u.sleep(attemptPacing)
		}

		u.logger.Info("Attempting unsubscribe",
			zap.String("message_id", msg.ID), zap.String("url", link))

		result := u.AttemptURL(ctx, link)
		results = append(results, result)
		if result.Success {
			break
		}
	}

	return results
}

// Succeeded reports whether any attempt in the list succeeded.
func Succeeded(results []models.UnsubscribeResult) bool {
	for _, r := range results {
		if r.Success {
			return true
		}
	}
	return false
}

func mergeLinks(links, extra []string) []string {
	seen := make(map[string]struct{}, len(links))
	for _, l := range links {
		seen[l] = struct{}{}
	}
	for _, l := range extra {
		if _, ok := seen[l]; !ok {
			seen[l] = struct{}{}
			links = append(links, l)
		}
	}
	return links
}
