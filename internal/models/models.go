package models

import (
	"fmt"
	"strings"
)

// Category is the closed set of triage categories.
type Category string

const (
	CategoryImportant      Category = "important"
	CategorySpam           Category = "spam"
	CategoryPromotions     Category = "promotions"
	CategoryNewsletters    Category = "newsletters"
	CategorySocial         Category = "social"
	CategoryOldUnimportant Category = "old_unimportant"
	CategoryReceipts       Category = "receipts"
	CategoryNotifications  Category = "notifications"
	CategoryPersonal       Category = "personal"
	CategoryWork           Category = "work"
)

// Action is the closed set of triage actions.
type Action string

const (
	ActionKeep          Action = "keep"
	ActionDelete        Action = "delete"
	ActionUnsubscribe   Action = "unsubscribe"
	ActionArchive       Action = "archive"
	ActionMarkImportant Action = "mark_important"
)

// Reputation classifies how much a sender can be trusted.
type Reputation string

const (
	ReputationTrusted    Reputation = "trusted"
	ReputationUnknown    Reputation = "unknown"
	ReputationSuspicious Reputation = "suspicious"
)

var categories = map[Category]struct{}{
	CategoryImportant:      {},
	CategorySpam:           {},
	CategoryPromotions:     {},
	CategoryNewsletters:    {},
	CategorySocial:         {},
	CategoryOldUnimportant: {},
	CategoryReceipts:       {},
	CategoryNotifications:  {},
	CategoryPersonal:       {},
	CategoryWork:           {},
}

var actions = map[Action]struct{}{
	ActionKeep:          {},
	ActionDelete:        {},
	ActionUnsubscribe:   {},
	ActionArchive:       {},
	ActionMarkImportant: {},
}

var reputations = map[Reputation]struct{}{
	ReputationTrusted:    {},
	ReputationUnknown:    {},
	ReputationSuspicious: {},
}

// ParseCategory normalizes s and returns the matching Category.
// Values outside the closed set are an error, never coerced.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categories[c]; !ok {
		return "", fmt.Errorf("invalid category %q", s)
	}
	return c, nil
}

// ParseAction normalizes s and returns the matching Action.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := actions[a]; !ok {
		return "", fmt.Errorf("invalid action %q", s)
	}
	return a, nil
}

// ParseReputation normalizes s and returns the matching Reputation.
func ParseReputation(s string) (Reputation, error) {
	r := Reputation(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := reputations[r]; !ok {
		return "", fmt.Errorf("invalid sender reputation %q", s)
	}
	return r, nil
}
