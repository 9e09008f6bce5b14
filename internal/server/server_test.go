package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/brief-engine/internal/deliver"
	"github.com/pdiddy/brief-engine/internal/generate"
	"github.com/pdiddy/brief-engine/pkg/types"
)

type fakeInsights struct {
	text  string
	calls []string
}

func (f *fakeInsights) Insights(_ context.Context, domain, role string, _ int) string {
	f.calls = append(f.calls, domain+"/"+role)
	return f.text
}

type fakeGenerator struct {
	result  generate.Result
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) generate.Result {
	f.prompts = append(f.prompts, prompt)
	if f.result.Outcome == "" {
		return generate.Result{Outcome: generate.OutcomeOK, Text: "the report"}
	}
	return f.result
}

type fakeAppender struct {
	subs []types.Subscription
	err  error
}

func (f *fakeAppender) Append(sub types.Subscription) error {
	if f.err != nil {
		return f.err
	}
	f.subs = append(f.subs, sub)
	return nil
}

type sentMail struct {
	to, subject, body string
}

type fakeChannel struct {
	ok   bool
	sent []sentMail
}

func (f *fakeChannel) Send(to, subject, body string) bool {
	f.sent = append(f.sent, sentMail{to, subject, body})
	return f.ok
}

type fixture struct {
	ins   *fakeInsights
	gen   *fakeGenerator
	store *fakeAppender
	ch    *fakeChannel
	h     http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		ins:   &fakeInsights{text: "Insights as of April 2025:\n- something"},
		gen:   &fakeGenerator{},
		store: &fakeAppender{},
		ch:    &fakeChannel{ok: true},
	}
	f.h = New(Deps{
		Insights:      f.ins,
		Generator:     f.gen,
		Subscriptions: f.store,
		Channel:       f.ch,
	}).Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	f.h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestRootLiveness(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodGet, "/", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := decodeBody(t, rr)["message"]; got != LivenessMessage {
		t.Errorf("message = %q, want %q", got, LivenessMessage)
	}
}

func TestRootUnknownPath(t *testing.T) {
	f := newFixture()

	if rr := f.do(t, http.MethodGet, "/nope", ""); rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestGenerateHappyPath(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodPost, "/generate", `{"domain": "Marketing", "role": "Data Analyst"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if got := decodeBody(t, rr)["output"]; got != "the report" {
		t.Errorf("output = %q, want the generated report", got)
	}
	if len(f.ins.calls) != 1 || f.ins.calls[0] != "Marketing/Data Analyst" {
		t.Errorf("insight calls = %v", f.ins.calls)
	}
	if len(f.gen.prompts) != 1 {
		t.Fatalf("generator calls = %d, want 1", len(f.gen.prompts))
	}
	prompt := f.gen.prompts[0]
	if !strings.Contains(prompt, "6. Actionable Insights") {
		t.Error("prompt is not the detailed on-demand shape")
	}
	if !strings.Contains(prompt, f.ins.text) {
		t.Error("prompt must embed the trend text verbatim")
	}
}

func TestGenerateTrimsFields(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodPost, "/generate", `{"domain": "  Marketing ", "role": " Analyst "}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if f.ins.calls[0] != "Marketing/Analyst" {
		t.Errorf("fields not trimmed: %v", f.ins.calls)
	}
}

func TestGenerateMissingFields(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"both missing", `{}`},
		{"role missing", `{"domain": "Marketing"}`},
		{"domain missing", `{"role": "Analyst"}`},
		{"whitespace only", `{"domain": "  ", "role": "\t"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()

			rr := f.do(t, http.MethodPost, "/generate", tc.body)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			want := "Please provide both 'domain' and 'role'."
			if got := decodeBody(t, rr)["error"]; got != want {
				t.Errorf("error = %q, want %q", got, want)
			}
			// Validation failures never reach the pipeline.
			if len(f.ins.calls) != 0 || len(f.gen.prompts) != 0 {
				t.Error("downstream calls made despite invalid request")
			}
		})
	}
}

func TestGenerateInvalidJSON(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodPost, "/generate", `{broken`)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
	if len(f.gen.prompts) != 0 {
		t.Error("generator called despite undecodable request")
	}
}

func TestGenerateMethodNotAllowed(t *testing.T) {
	f := newFixture()

	if rr := f.do(t, http.MethodGet, "/generate", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
}

func TestGenerateRendersFailureSurface(t *testing.T) {
	cases := []struct {
		name   string
		result generate.Result
		want   string
	}{
		{"timeout", generate.Result{Outcome: generate.OutcomeTimeout}, generate.TimeoutMessage},
		{"engine exit", generate.Result{Outcome: generate.OutcomeEmpty}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.gen.result = tc.result

			rr := f.do(t, http.MethodPost, "/generate", `{"domain": "d", "role": "r"}`)

			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rr.Code)
			}
			if got := decodeBody(t, rr)["output"]; got != tc.want {
				t.Errorf("output = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSubscribeStoresAndConfirms(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodPost, "/subscribe",
		`{"email": "a@example.com", "phone": "9876543210", "domain": "Marketing", "role": "Data Analyst"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	want := "Subscription successful! Confirmation email sent to a@example.com"
	if got := decodeBody(t, rr)["message"]; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}

	if len(f.store.subs) != 1 {
		t.Fatalf("stored %d records, want 1", len(f.store.subs))
	}
	sub := f.store.subs[0]
	if sub.Email != "a@example.com" || sub.Domain != "Marketing" || sub.Role != "Data Analyst" {
		t.Errorf("stored record = %+v", sub)
	}

	if len(f.ch.sent) != 1 {
		t.Fatalf("sent %d confirmations, want 1", len(f.ch.sent))
	}
	mail := f.ch.sent[0]
	if mail.to != "a@example.com" || mail.subject != deliver.ConfirmationSubject {
		t.Errorf("confirmation = %+v", mail)
	}
	if !strings.Contains(mail.body, "Marketing") {
		t.Error("confirmation body should name the domain")
	}
}

func TestSubscribePhoneOnly(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodPost, "/subscribe",
		`{"phone": "9876543210", "domain": "Finance", "role": "Auditor"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := decodeBody(t, rr)["message"]; got != "Subscription successful! (no email provided)" {
		t.Errorf("message = %q", got)
	}
	if len(f.store.subs) != 1 {
		t.Error("record not stored")
	}
	if len(f.ch.sent) != 0 {
		t.Error("no confirmation email expected without an address")
	}
}

func TestSubscribeConfirmationFailureIsNonFatal(t *testing.T) {
	f := newFixture()
	f.ch.ok = false

	rr := f.do(t, http.MethodPost, "/subscribe",
		`{"email": "a@example.com", "domain": "Retail", "role": "Buyer"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := decodeBody(t, rr)["message"]; got != "Subscription saved, but failed to send email (check logs)." {
		t.Errorf("message = %q", got)
	}
	if len(f.store.subs) != 1 {
		t.Error("record must be stored even when the confirmation fails")
	}
}

func TestSubscribeMissingContacts(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodPost, "/subscribe", `{"domain": "Marketing", "role": "Analyst"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	want := "Please provide at least an email or phone number."
	if got := decodeBody(t, rr)["error"]; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
	if len(f.store.subs) != 0 {
		t.Error("nothing may be stored on a rejected subscribe")
	}
}

// Domain and role are not validated at subscribe time; blank values are
// stored and skipped later by the scheduler.
func TestSubscribeBlankTopicAccepted(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodPost, "/subscribe", `{"email": "a@example.com"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if len(f.store.subs) != 1 || f.store.subs[0].Domain != "" || f.store.subs[0].Role != "" {
		t.Errorf("stored = %+v, want blank domain and role kept", f.store.subs)
	}
}

func TestSubscribeStoreFailure(t *testing.T) {
	f := newFixture()
	f.store.err = errors.New("disk full")

	rr := f.do(t, http.MethodPost, "/subscribe", `{"email": "a@example.com"}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if got := decodeBody(t, rr)["error"]; !strings.HasPrefix(got, "Subscription failed:") {
		t.Errorf("error = %q", got)
	}
	if len(f.ch.sent) != 0 {
		t.Error("no confirmation may be sent when the store write fails")
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodOptions, "/generate", "")

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing allow-origin header")
	}
}

func TestCORSHeaderOnRegularResponses(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodGet, "/", "")

	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing allow-origin header on a GET response")
	}
}
