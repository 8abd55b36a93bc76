// Package mailbox defines the narrow interface this system consumes
// from the mailbox provider integration. The concrete implementation
// (Gmail, IMAP, ...) lives with the host application; tests use an
// in-memory fake.
package mailbox

import (
	"context"
	"fmt"

	"github.com/xaenox/inbox-triage/internal/models"
)

// BackupLabel is applied to messages before destructive actions so a
// user can recover from a bad batch.
const BackupLabel = "AI_CLEANER_BACKUP"

// Service is what the provider integration must implement.
type Service interface {
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
	Fetch(ctx context.Context, id string) (models.Message, error)
	Trash(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) error
	MarkImportant(ctx context.Context, id string) error
	EnsureLabel(ctx context.Context, name string) (string, error)
	Label(ctx context.Context, id, labelID string) error
}

// Apply carries out a triage decision's action against the mailbox.
// Delete maps to Trash so messages stay recoverable; keep and
// unsubscribe require no mailbox change.
func Apply(ctx context.Context, svc Service, msg models.Message, decision models.TriageDecision) error {
	switch decision.Action {
	case models.ActionDelete:
		return svc.Trash(ctx, msg.ID)
	case models.ActionArchive:
		return svc.Archive(ctx, msg.ID)
	case models.ActionMarkImportant:
		return svc.MarkImportant(ctx, msg.ID)
	case models.ActionKeep, models.ActionUnsubscribe:
		return nil
	default:
		return fmt.Errorf("unknown action %q", decision.Action)
	}
}

// ApplyAll applies every decision in order, labeling messages with the
// backup label before any destructive action. Per-message failures are
// collected; one failure does not stop the rest of the batch.
func ApplyAll(ctx context.Context, svc Service, results []models.AnalyzedEmail) []error {
	var errs []error

	labelID, err := svc.EnsureLabel(ctx, BackupLabel)
	if err != nil {
		labelID = ""
		errs = append(errs, fmt.Errorf("ensure backup label: %w", err))
	}

	for _, r := range results {
		if labelID != "" && r.Decision.Action == models.ActionDelete {
			if err := svc.Label(ctx, r.Message.ID, labelID); err != nil {
				errs = append(errs, fmt.Errorf("label %s: %w", r.Message.ID, err))
			}
		}
		if err := Apply(ctx, svc, r.Message, r.Decision); err != nil {
			errs = append(errs, fmt.Errorf("apply %s: %w", r.Message.ID, err))
		}
	}

	return errs
}
