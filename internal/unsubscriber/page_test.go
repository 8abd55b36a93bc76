package unsubscriber

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/inbox-triage/internal/models"
)

func newTestUnsubscriber(email string) *Unsubscriber {
	u := NewUnsubscriber(email, "", 5*time.Second, zap.NewNop())
	u.sleep = func(time.Duration) {}
	return u
}

func TestAttemptURLFormPost(t *testing.T) {
	var submitted map[string][]string

	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<form action="/do-unsubscribe" method="post">
				<p>Enter your address to unsubscribe from our list.</p>
				<input type="hidden" name="token" value="abc123">
				<input type="email" name="email" value="">
				<input type="submit" name="go" value="Unsubscribe">
			</form>
		</body></html>`)
	})
	mux.HandleFunc("/do-unsubscribe", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s; want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		submitted = r.PostForm
		fmt.Fprint(w, "You have been successfully unsubscribed.")
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	u := newTestUnsubscriber("user@example.com")
	result := u.AttemptURL(context.Background(), srv.URL+"/page")

	if !result.Success {
		t.Fatalf("success = false; message %q", result.Message)
	}
	if result.Method != models.MethodForm {
		t.Errorf("method = %q; want form", result.Method)
	}
	if got := submitted["token"]; len(got) != 1 || got[0] != "abc123" {
		t.Errorf("hidden field token = %v; want abc123", got)
	}
	if got := submitted["email"]; len(got) != 1 || got[0] != "user@example.com" {
		t.Errorf("email field = %v; want user address", got)
	}
	if got := submitted["go"]; len(got) != 1 || got[0] != "Unsubscribe" {
		t.Errorf("submit field = %v; want declared value", got)
	}
}

func TestAttemptURLFormGet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<form action="confirm">
				<span>Click below to opt-out of future emails.</span>
				<input type="hidden" name="id" value="42">
			</form>
		</body></html>`)
	})
	mux.HandleFunc("/confirm", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s; want GET", r.Method)
		}
		if got := r.URL.Query().Get("id"); got != "42" {
			t.Errorf("query id = %q; want 42", got)
		}
		fmt.Fprint(w, "Opt out successful!")
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	u := newTestUnsubscriber("")
	result := u.AttemptURL(context.Background(), srv.URL+"/page")

	if !result.Success {
		t.Fatalf("success = false; message %q", result.Message)
	}
	if result.Method != models.MethodForm {
		t.Errorf("method = %q; want form", result.Method)
	}
}

func TestAttemptURLFormWithoutConfirmationPhrase(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<form action="/do" method="post">unsubscribe here
				<input type="hidden" name="t" value="1">
			</form>
		</body></html>`)
	})
	mux.HandleFunc("/do", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Thanks! We received your request.")
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	u := newTestUnsubscriber("")
	result := u.AttemptURL(context.Background(), srv.URL+"/page")

	if result.Success {
		t.Error("success = true; response had no confirmation phrase")
	}
	if result.Method != models.MethodForm {
		t.Errorf("method = %q; want form", result.Method)
	}
}

func TestAttemptURLConfirmationLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<p>Sorry to see you go.</p>
			<a href="/really-unsubscribe">Yes, unsubscribe me</a>
		</body></html>`)
	})
	mux.HandleFunc("/really-unsubscribe", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "You are now unsubscribed from our mailing list.")
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	u := newTestUnsubscriber("")
	result := u.AttemptURL(context.Background(), srv.URL+"/page")

	if !result.Success {
		t.Fatalf("success = false; message %q", result.Message)
	}
	if result.Method != models.MethodLink {
		t.Errorf("method = %q; want link", result.Method)
	}
}

func TestAttemptURLNon2xxStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	u := newTestUnsubscriber("")
	result := u.AttemptURL(context.Background(), srv.URL)

	if result.Success {
		t.Error("success = true; want false")
	}
	if result.Method != models.MethodError {
		t.Errorf("method = %q; want error", result.Method)
	}
}

func TestAttemptURLUnreachable(t *testing.T) {
	u := newTestUnsubscriber("")
	result := u.AttemptURL(context.Background(), "http://127.0.0.1:1/nope")

	if result.Success {
		t.Error("success = true; want false")
	}
	if result.Method != models.MethodError {
		t.Errorf("method = %q; want error", result.Method)
	}
}

func TestAttemptURLNoMechanism(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>Welcome to our site.</p></body></html>`)
	}))
	defer srv.Close()

	u := newTestUnsubscriber("")
	result := u.AttemptURL(context.Background(), srv.URL)

	if result.Success {
		t.Error("success = true; want false")
	}
	if result.Method != models.MethodNone {
		t.Errorf("method = %q; want none", result.Method)
	}
}

func TestAttemptURLFailedFormFallsBackToLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<form action="/form" method="post">unsubscribe form
				<input type="hidden" name="t" value="1">
			</form>
			<a href="/link">Confirm</a>
		</body></html>`)
	})
	mux.HandleFunc("/form", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "request received") // no confirmation phrase
	})
	mux.HandleFunc("/link", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Removed from list.")
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	u := newTestUnsubscriber("")
	result := u.AttemptURL(context.Background(), srv.URL+"/page")

	if !result.Success {
		t.Fatalf("success = false; message %q", result.Message)
	}
	if result.Method != models.MethodLink {
		t.Errorf("method = %q; want link fallback after failed form", result.Method)
	}
}

func TestBuildFormValues(t *testing.T) {
	u := newTestUnsubscriber("user@example.com")

	form := &parsedForm{fields: []formField{
		{name: "token", typ: "hidden", value: "abc"},
		{name: "email", typ: "email"},
		{name: "email_address", typ: "text"},
		{name: "reason", typ: "text", value: ""},
		{name: "submit", typ: "submit", value: "Go"},
		{name: "noop", typ: "button"},
	}}

	values := u.buildFormValues(form)

	if got := values.Get("token"); got != "abc" {
		t.Errorf("token = %q; want abc", got)
	}
	if got := values.Get("email"); got != "user@example.com" {
		t.Errorf("email = %q; want user address", got)
	}
	if got := values.Get("email_address"); got != "user@example.com" {
		t.Errorf("email_address = %q; want user address", got)
	}
	if _, ok := values["reason"]; ok {
		t.Error("reason included; want omitted (no default value)")
	}
	if got := values.Get("submit"); got != "Go" {
		t.Errorf("submit = %q; want Go", got)
	}
	if _, ok := values["noop"]; ok {
		t.Error("valueless button included; want omitted")
	}
}
