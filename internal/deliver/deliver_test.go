// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deliver

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func init() {
	// Keep the retry path fast under test.
	retryBackoff = time.Millisecond
}

// fakeTransport fails its first `failures` sends, then succeeds.
type fakeTransport struct {
	failures   int
	calls      int
	gotTo      string
	gotSubject string
	gotBody    string
}

func (f *fakeTransport) Send(to, subject, htmlBody string) error {
	f.calls++
	f.gotTo = to
	f.gotSubject = subject
	f.gotBody = htmlBody
	if f.calls <= f.failures {
		return errors.New("smtp unavailable")
	}
	return nil
}

func TestSendFirstAttemptSucceeds(t *testing.T) {
	ft := &fakeTransport{}
	ch := NewChannel(ft)

	if !ch.Send("a@example.com", "subject", "<p>body</p>") {
		t.Fatal("send = false, want true")
	}
	if ft.calls != 1 {
		t.Errorf("attempts = %d, want 1", ft.calls)
	}
}

func TestSendRetriesOnceThenSucceeds(t *testing.T) {
	ft := &fakeTransport{failures: 1}
	ch := NewChannel(ft)

	if !ch.Send("a@example.com", "subject", "<p>body</p>") {
		t.Fatal("send = false, want true after one retry")
	}
	if ft.calls != 2 {
		t.Errorf("attempts = %d, want exactly 2", ft.calls)
	}
}

func TestSendExhaustsAttempts(t *testing.T) {
	ft := &fakeTransport{failures: 10}
	ch := NewChannel(ft)

	if ch.Send("a@example.com", "subject", "<p>body</p>") {
		t.Fatal("send = true, want false when every attempt fails")
	}
	if ft.calls != 2 {
		t.Errorf("attempts = %d, want exactly 2 and no more", ft.calls)
	}
}

func TestSendPassesMessageThrough(t *testing.T) {
	ft := &fakeTransport{}
	ch := NewChannel(ft)

	ch.Send("user@example.com", "Weekly Update", "<h2>hi</h2>")

	if ft.gotTo != "user@example.com" {
		t.Errorf("to = %q", ft.gotTo)
	}
	if ft.gotSubject != "Weekly Update" {
		t.Errorf("subject = %q", ft.gotSubject)
	}
	if ft.gotBody != "<h2>hi</h2>" {
		t.Errorf("body = %q", ft.gotBody)
	}
}

func TestRenderWeekly(t *testing.T) {
	body := RenderWeekly("Marketing", "Data Analyst", "line one\nline two")

	wantFragments := []string{
		"<h2>Your Weekly Intelligence Update</h2>",
		"Marketing / Data Analyst",
		`<pre style="background:#f9f9f9;padding:12px;border-radius:8px;white-space:pre-wrap;">`,
		"line one\nline two",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(body, frag) {
			t.Errorf("weekly body missing %q", frag)
		}
	}
}

func TestRenderWeeklyEscapesReport(t *testing.T) {
	body := RenderWeekly("Retail", "Buyer", "<script>alert(1)</script>")

	if strings.Contains(body, "<script>") {
		t.Error("report text must be HTML-escaped")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Error("escaped report text missing from body")
	}
}

func TestRenderConfirmation(t *testing.T) {
	body := RenderConfirmation("Finance", "Auditor")

	for _, frag := range []string{
		"You're now subscribed to weekly updates",
		"<b>Domain:</b> Finance",
		"<b>Role:</b> Auditor",
	} {
		if !strings.Contains(body, frag) {
			t.Errorf("confirmation body missing %q", frag)
		}
	}
}

func TestWeeklySubject(t *testing.T) {
	got := WeeklySubject("Marketing", "Data Analyst")
	want := "Weekly Marketing / Data Analyst Intelligence Update"
	if got != want {
		t.Errorf("subject = %q, want %q", got, want)
	}
}
