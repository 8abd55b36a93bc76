package unsubscriber

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/xaenox/inbox-triage/internal/models"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxBodyBytes caps how much of a target page is read.
const maxBodyBytes = 512 * 1024

// successIndicators are the confirmation phrases checked against a
// response body. Fixed English phrases only; success detection on
// differently-worded pages is best-effort and may under-detect.
var successIndicators = []string{
	"successfully unsubscribed",
	"removed from list",
	"unsubscribed",
	"opt out successful",
	"email preferences updated",
}

// Unsubscriber executes unsubscribe attempts against third-party web
// pages. One HTTP session (with cookie jar) is shared across the
// redirect chains and form submissions of a run.
type Unsubscriber struct {
	session   *http.Client
	userAgent string
	userEmail string
	sleep     func(time.Duration)
	logger    *zap.Logger
}

// NewUnsubscriber builds an Unsubscriber. userEmail may be empty; it
// is only used to fill email form fields. An empty userAgent selects
// the default browser-like header.
func NewUnsubscriber(userEmail, userAgent string, timeout time.Duration, logger *zap.Logger) *Unsubscriber {
	jar, _ := cookiejar.New(nil)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Unsubscriber{
		session: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		userAgent: userAgent,
		userEmail: userEmail,
		sleep:     time.Sleep,
		logger:    logger,
	}
}

type formField struct {
	name  string
	typ   string
	value string
}

type parsedForm struct {
	action string
	method string
	fields []formField
}

// AttemptURL visits one candidate unsubscribe page and executes the
// most promising action on it. It never returns an error: transport
// and parse failures become a failed result with method "error". At
// most one successful action per page is pursued.
func (u *Unsubscriber) AttemptURL(ctx context.Context, target string) models.UnsubscribeResult {
	doc, finalURL, err := u.fetchPage(ctx, target)
	if err != nil {
		u.logger.Error("Error visiting unsubscribe page",
			zap.String("url", target), zap.Error(err))
		return models.UnsubscribeResult{
			Success: false,
			Message: fmt.Sprintf("Error: %v", err),
			Method:  models.MethodError,
			URL:     target,
		}
	}

	if form := findUnsubscribeForm(doc); form != nil {
		result := u.attemptForm(ctx, form, finalURL)
		if result.Success {
			return result
		}
		if link := findConfirmationLink(doc); link != "" {
			return u.attemptLink(ctx, link, finalURL)
		}
		return result
	}

	if link := findConfirmationLink(doc); link != "" {
		return u.attemptLink(ctx, link, finalURL)
	}

	return models.UnsubscribeResult{
		Success: false,
		Message: "No unsubscribe form or confirmation control found on page",
		Method:  models.MethodNone,
		URL:     target,
	}
}

// fetchPage GETs the target following redirects and parses the body.
// It returns the parsed document and the final URL after redirects,
// which later requests resolve against.
func (u *Unsubscriber) fetchPage(ctx context.Context, target string) (*goquery.Document, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", u.userAgent)

	resp, err := u.session.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("parse error: %w", err)
	}

	return doc, resp.Request.URL.String(), nil
}

// findUnsubscribeForm returns the first form whose visible text
// expresses unsubscribe intent, or nil.
func findUnsubscribeForm(doc *goquery.Document) *parsedForm {
	var found *parsedForm

	doc.Find("form").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.ToLower(sel.Text())
		if !unsubscribeIntent.Match(text) {
			return true
		}

		form := &parsedForm{
			action: sel.AttrOr("action", ""),
			method: strings.ToLower(sel.AttrOr("method", "get")),
		}
		sel.Find("input, select, textarea").Each(func(_ int, field *goquery.Selection) {
			name := field.AttrOr("name", "")
			if name == "" {
				return
			}
			form.fields = append(form.fields, formField{
				name:  name,
				typ:   field.AttrOr("type", "text"),
				value: field.AttrOr("value", ""),
			})
		})

		found = form
		return false
	})

	return found
}

// findConfirmationLink returns the href of the first anchor whose text
// matches a confirmation intent, or "".
func findConfirmationLink(doc *goquery.Document) string {
	var href string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		if confirmationIntent.Match(text) {
			href = sel.AttrOr("href", "")
			return false
		}
		return true
	})
	return href
}

// buildFormValues assembles the values submitted for a form. Hidden
// and submit fields carry their declared defaults, email-ish fields
// carry the user's address, other matched fields keep their defaults.
func (u *Unsubscriber) buildFormValues(form *parsedForm) url.Values {
	values := url.Values{}

	for _, f := range form.fields {
		lowName := strings.ToLower(f.name)
		switch {
		case f.typ == "hidden":
			values.Set(f.name, f.value)
		case f.typ == "email" && u.userEmail != "":
			values.Set(f.name, u.userEmail)
		case formFieldIntent.Match(f.name):
			if u.userEmail != "" && (strings.Contains(lowName, "email") || strings.Contains(lowName, "address")) {
				values.Set(f.name, u.userEmail)
			} else if f.value != "" {
				values.Set(f.name, f.value)
			}
		case f.typ == "submit" || f.typ == "button":
			if f.value != "" {
				values.Set(f.name, f.value)
			}
		}
	}

	return values
}

// attemptForm submits the form via its declared method against its
// action URL resolved relative to the page URL.
func (u *Unsubscriber) attemptForm(ctx context.Context, form *parsedForm, pageURL string) models.UnsubscribeResult {
	actionURL, err := resolveURL(pageURL, form.action)
	if err != nil {
		return models.UnsubscribeResult{
			Success: false,
			Message: fmt.Sprintf("Error: %v", err),
			Method:  models.MethodForm,
			URL:     form.action,
		}
	}

	values := u.buildFormValues(form)

	var req *http.Request
	if form.method == "post" {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, actionURL, strings.NewReader(values.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		withQuery, qerr := appendQuery(actionURL, values)
		if qerr == nil {
			req, err = http.NewRequestWithContext(ctx, http.MethodGet, withQuery, nil)
		} else {
			err = qerr
		}
	}
	if err != nil {
		return models.UnsubscribeResult{
			Success: false,
			Message: fmt.Sprintf("Error: %v", err),
			Method:  models.MethodForm,
			URL:     actionURL,
		}
	}
	req.Header.Set("User-Agent", u.userAgent)

	status, body, err := u.do(req)
	if err != nil {
		u.logger.Error("Error during form unsubscribe",
			zap.String("url", actionURL), zap.Error(err))
		return models.UnsubscribeResult{
			Success: false,
			Message: fmt.Sprintf("Error: %v", err),
			Method:  models.MethodForm,
			URL:     actionURL,
		}
	}

	return models.UnsubscribeResult{
		Success: containsSuccessIndicator(body),
		Message: fmt.Sprintf("Form submission completed. Status: %d", status),
		Method:  models.MethodForm,
		URL:     actionURL,
	}
}

// attemptLink follows a confirmation anchor with a plain GET.
func (u *Unsubscriber) attemptLink(ctx context.Context, href, pageURL string) models.UnsubscribeResult {
	linkURL, err := resolveURL(pageURL, href)
	if err != nil {
		return models.UnsubscribeResult{
			Success: false,
			Message: fmt.Sprintf("Error: %v", err),
			Method:  models.MethodLink,
			URL:     href,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, linkURL, nil)
	if err != nil {
		return models.UnsubscribeResult{
			Success: false,
			Message: fmt.Sprintf("Error: %v", err),
			Method:  models.MethodLink,
			URL:     linkURL,
		}
	}
	req.Header.Set("User-Agent", u.userAgent)

	status, body, err := u.do(req)
	if err != nil {
		u.logger.Error("Error during link unsubscribe",
			zap.String("url", linkURL), zap.Error(err))
		return models.UnsubscribeResult{
			Success: false,
			Message: fmt.Sprintf("Error: %v", err),
			Method:  models.MethodLink,
			URL:     linkURL,
		}
	}

	return models.UnsubscribeResult{
		Success: containsSuccessIndicator(body),
		Message: fmt.Sprintf("Link clicked. Status: %d", status),
		Method:  models.MethodLink,
		URL:     linkURL,
	}
}

// do executes the request and reads the body, treating a non-2xx
// status as an error.
func (u *Unsubscriber) do(req *http.Request) (int, string, error) {
	resp, err := u.session.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return resp.StatusCode, string(raw), nil
}

func containsSuccessIndicator(body string) bool {
	lower := strings.ToLower(body)
	for _, indicator := range successIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func resolveURL(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

func appendQuery(rawURL string, values url.Values) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := parsed.Query()
	for key, vals := range values {
		for _, v := range vals {
			q.Set(key, v)
		}
	}
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}
