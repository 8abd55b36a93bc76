package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/xaenox/inbox-triage/internal/models"
)

// maxContentChars bounds the message excerpt embedded in the prompt.
const maxContentChars = 2000

const analysisPrompt = `Analyze this email and provide a JSON response with the following structure:
{
    "category": "one of: important, spam, promotions, newsletters, social, old_unimportant, receipts, notifications, personal, work",
    "action": "one of: keep, delete, unsubscribe, archive, mark_important",
    "confidence": 0.85,
    "reasoning": "Brief explanation of why this categorization",
    "priority_score": 7,
    "has_unsubscribe": true,
    "is_automated": true,
    "sender_reputation": "one of: trusted, unknown, suspicious",
    "content_summary": "Brief 1-2 sentence summary of email content"
}

Email Details:
Subject: %s
From: %s
Date: %s
Content: %s

Analysis Guidelines:
- SPAM: Obvious spam, phishing, suspicious links
- PROMOTIONS: Marketing emails, sales, deals
- NEWSLETTERS: Regular updates, blogs, news
- IMPORTANT: Banking, legal, urgent personal/work
- OLD_UNIMPORTANT: Emails older than 30 days with low priority
- RECEIPTS: Purchase confirmations, invoices
- SOCIAL: Facebook, LinkedIn, social media notifications
- PERSONAL: Personal conversations, family, friends
- WORK: Job-related, professional communications

Actions:
- DELETE: Spam, very old unimportant emails
- UNSUBSCRIBE: Unwanted marketing/newsletters
- ARCHIVE: Keep but remove from inbox
- KEEP: Important emails to keep in inbox
- MARK_IMPORTANT: Critical emails needing attention

Priority Score (1-10):
10: Critical (banking, legal, urgent)
7-9: Important (work, personal important)
4-6: Medium (newsletters, notifications)
1-3: Low (promotions, old emails)

Please respond ONLY with valid JSON, no other text.`

// completionClient is the slice of the OpenAI client the analyzer
// needs. *openai.Client satisfies it.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// GPTAnalyzer classifies messages with the generation service and
// falls back to rule-based analysis on any failure. AnalyzeEmail never
// returns an error: every failure mode resolves to a usable decision.
type GPTAnalyzer struct {
	client      completionClient
	model       string
	maxTokens   int
	temperature float32
	retry       RetryPolicy
	sleep       func(time.Duration)
	logger      *zap.Logger
}

// NewGPTAnalyzer connects to the generation service and probes it with
// a minimal request. If the probe fails the analyzer still works,
// serving rule-based fallback decisions only.
func NewGPTAnalyzer(apiKey, model string, maxTokens int, temperature float64, retry RetryPolicy, logger *zap.Logger) *GPTAnalyzer {
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryPolicy
	}
	a := &GPTAnalyzer{
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
		retry:       retry,
		sleep:       time.Sleep,
		logger:      logger,
	}

	if apiKey == "" {
		logger.Warn("No API key provided, using rule-based analysis only")
		return a
	}

	client := openai.NewClient(apiKey)
	_, err := client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "Test message"},
		},
		MaxTokens:   10,
		Temperature: 0.1,
	})
	if err != nil {
		logger.Error("Failed to initialize generation service, using rule-based analysis only",
			zap.Error(err))
		return a
	}

	logger.Info("Generation service connection successful", zap.String("model", model))
	a.client = client
	return a
}

// Available reports whether the generation service survived the
// startup probe.
func (a *GPTAnalyzer) Available() bool {
	return a.client != nil
}

// AnalyzeEmail classifies a single message.
func (a *GPTAnalyzer) AnalyzeEmail(ctx context.Context, msg models.Message) models.TriageDecision {
	if a.client == nil {
		return fallbackAnalysis(msg)
	}

	prompt := a.buildPrompt(msg)

	raw, err := a.callWithRetry(ctx, prompt)
	if err != nil {
		a.logger.Error("All generation service attempts failed, using fallback",
			zap.Error(err), zap.String("message_id", msg.ID))
		return fallbackAnalysis(msg)
	}

	cleaned := cleanJSONResponse(raw)
	if cleaned == "" {
		a.logger.Error("Empty response from generation service",
			zap.String("message_id", msg.ID))
		return fallbackAnalysis(msg)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		a.logger.Error("Failed to parse analysis response",
			zap.Error(err), zap.String("response", cleaned))
		return fallbackAnalysis(msg)
	}

	decision, err := decisionFromResponse(data)
	if err != nil {
		a.logger.Error("Invalid analysis response",
			zap.Error(err), zap.String("response", cleaned))
		return fallbackAnalysis(msg)
	}

	return decision
}

func (a *GPTAnalyzer) buildPrompt(msg models.Message) string {
	content := prepareContent(msg)
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}
	return fmt.Sprintf(analysisPrompt, msg.Subject, msg.From, msg.Date, content)
}

func (a *GPTAnalyzer) callWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < a.retry.MaxAttempts; attempt++ {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: a.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			MaxTokens:   a.maxTokens,
			Temperature: a.temperature,
		})
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", nil
			}
			return resp.Choices[0].Message.Content, nil
		}

		lastErr = err
		a.logger.Warn("Generation service call failed",
			zap.Int("attempt", attempt+1), zap.Error(err))
		if attempt < a.retry.MaxAttempts-1 {
			a.sleep(a.retry.Backoff(attempt))
		}
	}

	return "", fmt.Errorf("generation service: %w", lastErr)
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// prepareContent flattens a message into one text blob: plain body,
// tag-stripped HTML body, then snippet.
func prepareContent(msg models.Message) string {
	var parts []string

	if msg.BodyText != "" {
		parts = append(parts, msg.BodyText)
	}
	if msg.BodyHTML != "" {
		text := htmlTagRe.ReplaceAllString(msg.BodyHTML, " ")
		text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
		parts = append(parts, text)
	}
	if msg.Snippet != "" {
		parts = append(parts, msg.Snippet)
	}

	return strings.Join(parts, " ")
}

// decisionFromResponse validates and coerces a parsed response object.
// Category and action are required and strictly enum-checked; the
// remaining fields default when absent.
func decisionFromResponse(data map[string]any) (models.TriageDecision, error) {
	rawCategory, ok := data["category"].(string)
	if !ok {
		return models.TriageDecision{}, fmt.Errorf("missing required field %q", "category")
	}
	rawAction, ok := data["action"].(string)
	if !ok {
		return models.TriageDecision{}, fmt.Errorf("missing required field %q", "action")
	}

	category, err := models.ParseCategory(rawCategory)
	if err != nil {
		return models.TriageDecision{}, err
	}
	action, err := models.ParseAction(rawAction)
	if err != nil {
		return models.TriageDecision{}, err
	}

	confidence, err := floatField(data, "confidence", 0.5)
	if err != nil {
		return models.TriageDecision{}, err
	}
	priority, err := intField(data, "priority_score", 5)
	if err != nil {
		return models.TriageDecision{}, err
	}
	if priority < 1 {
		priority = 1
	} else if priority > 10 {
		priority = 10
	}

	reputation := models.ReputationUnknown
	if raw, ok := data["sender_reputation"].(string); ok {
		reputation, err = models.ParseReputation(raw)
		if err != nil {
			return models.TriageDecision{}, err
		}
	}

	return models.TriageDecision{
		Category:       category,
		Action:         action,
		Confidence:     confidence,
		Reasoning:      stringField(data, "reasoning"),
		PriorityScore:  priority,
		HasUnsubscribe: boolField(data, "has_unsubscribe"),
		IsAutomated:    boolField(data, "is_automated"),
		Reputation:     reputation,
		ContentSummary: stringField(data, "content_summary"),
	}, nil
}

func floatField(data map[string]any, key string, def float64) (float64, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return def, nil
	}
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", key, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("field %q: unexpected type %T", key, v)
	}
}

func intField(data map[string]any, key string, def int) (int, error) {
	f, err := floatField(data, key, float64(def))
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func boolField(data map[string]any, key string) bool {
	b, _ := data[key].(bool)
	return b
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}
