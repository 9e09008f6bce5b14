// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deliver formats reports as HTML email and sends them through an
// authenticated SMTP session. Delivery is best-effort: the channel retries
// once, reports failure as a boolean, and never aborts its caller.
// Implements: prd005-delivery (R1-R3, R5);
//
//	docs/ARCHITECTURE § Delivery.
package deliver

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"

	"github.com/pdiddy/brief-engine/internal/logging"
	"github.com/pdiddy/brief-engine/pkg/types"
)

var logger = logging.New("deliver")

// maxAttempts bounds delivery tries per message: one initial send plus one
// retry.
const maxAttempts = 2

// retryBackoff is the pause between the two delivery attempts. Tests can
// override this to speed up test execution.
var retryBackoff = 3 * time.Second

// plainFallback is the text part of the multipart message, shown by mail
// clients that do not render HTML.
const plainFallback = "This report is delivered as HTML. Please open it in an HTML-capable mail client."

// Transport performs one delivery attempt of one composed message.
type Transport interface {
	Send(to, subject, htmlBody string) error
}

// SMTPTransport sends mail over an authenticated, TLS-protected SMTP
// session. Credentials are fixed at construction.
type SMTPTransport struct {
	cfg types.MailConfig
}

// NewSMTPTransport returns a Transport backed by the configured SMTP relay.
func NewSMTPTransport(cfg types.MailConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

// Send composes a multipart-alternative message (plain fallback plus HTML
// body) and delivers it in one dial-send-quit session.
func (t *SMTPTransport) Send(to, subject, htmlBody string) error {
	client, err := mail.NewClient(
		t.cfg.Host,
		mail.WithPort(t.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(t.cfg.Username),
		mail.WithPassword(t.cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(t.cfg.From); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, plainFallback)
	msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

// Channel wraps a Transport with bounded retry.
type Channel struct {
	transport Transport
}

// NewChannel returns a Channel that delivers through transport.
func NewChannel(transport Transport) *Channel {
	return &Channel{transport: transport}
}

// Send attempts delivery at most twice, sleeping a fixed backoff between
// attempts. It returns true as soon as one attempt succeeds and false once
// both attempts fail. A false return is non-fatal to the caller.
func (c *Channel) Send(to, subject, htmlBody string) bool {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := c.transport.Send(to, subject, htmlBody)
		if err == nil {
			logger.WithFields(logrus.Fields{"to": to, "attempt": attempt}).Info("email sent")
			return true
		}
		logger.WithError(err).WithFields(logrus.Fields{"to": to, "attempt": attempt}).Warn("email delivery failed")
		if attempt < maxAttempts {
			time.Sleep(retryBackoff)
		}
	}
	logger.WithField("to", to).Error("all delivery attempts failed")
	return false
}

// weeklyBodyTmpl renders the recurring digest email. The report lands in a
// pre block so the engine's plain-text layout survives HTML rendering.
var weeklyBodyTmpl = template.Must(template.New("weekly-email").Parse(`<h2>Your Weekly Intelligence Update</h2>
<p>Here is your latest {{.Domain}} / {{.Role}} update:</p>
<pre style="background:#f9f9f9;padding:12px;border-radius:8px;white-space:pre-wrap;">
{{.Report}}
</pre>
<p>Stay smart, stay ahead.</p>
`))

// confirmationBodyTmpl renders the one-off subscribe acknowledgement.
var confirmationBodyTmpl = template.Must(template.New("confirmation-email").Parse(`<h3>You're now subscribed to weekly updates</h3>
<p>Every week, you'll receive a fresh report for:</p>
<b>Domain:</b> {{.Domain}}<br>
<b>Role:</b> {{.Role}}<br>
`))

// ConfirmationSubject is the fixed subject of the subscribe acknowledgement.
const ConfirmationSubject = "You're subscribed to weekly intelligence updates!"

// WeeklySubject returns the subject line for one subscriber's digest.
func WeeklySubject(domain, role string) string {
	return fmt.Sprintf("Weekly %s / %s Intelligence Update", domain, role)
}

type bodyInput struct {
	Domain string
	Role   string
	Report string
}

// RenderWeekly wraps one generated report as the weekly email body. Report
// text is HTML-escaped by the template.
func RenderWeekly(domain, role, report string) string {
	return render(weeklyBodyTmpl, bodyInput{Domain: domain, Role: role, Report: report})
}

// RenderConfirmation builds the subscribe acknowledgement body.
func RenderConfirmation(domain, role string) string {
	return render(confirmationBodyTmpl, bodyInput{Domain: domain, Role: role})
}

func render(t *template.Template, in bodyInput) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, in); err != nil {
		// Static templates over plain string fields cannot fail to execute.
		panic(err)
	}
	return buf.String()
}
