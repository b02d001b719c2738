// Package email sends account notifications. Sender talks to SendGrid;
// ConsoleSender logs the message instead and is used when no API key is configured.
package email

import (
	"context"
	"fmt"
	"html"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/waste3d/codelearn/internal/logging"
)

const (
	defaultHost = "https://api.sendgrid.com"
	endpoint    = "/v3/mail/send"
	senderName  = "Codelearn"
)

type Sender struct {
	apiKey   string
	host     string
	from     *sgmail.Email
	frontend string
}

func NewSender(apiKey, senderEmail, frontend string) *Sender {
	return &Sender{
		apiKey:   apiKey,
		host:     defaultHost,
		from:     sgmail.NewEmail(senderName, senderEmail),
		frontend: frontend,
	}
}

func (s *Sender) SendWelcome(ctx context.Context, to, name string) error {
	req := sendgrid.GetRequest(s.apiKey, endpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.welcome(to, name))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func (s *Sender) welcome(to, name string) *sgmail.SGMailV3 {
	subject, text, body := welcomeContent(name, s.frontend)

	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail(name, to))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", text),
		sgmail.NewContent("text/html", body),
	)
	return m
}

// welcomeContent builds the message parts. The name is user input and is
// escaped in the HTML part.
func welcomeContent(name, frontend string) (subject, text, body string) {
	if name == "" {
		name = "there"
	}
	subject = "Welcome to Codelearn"
	link := frontend + "/courses"
	text = fmt.Sprintf("Hi %s,\n\nYour account is ready. Pick a course to start: %s\n", name, link)
	body = fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif;">
<h2>Hi %s,</h2>
<p>Your account is ready.</p>
<p><a href="%s">Pick a course to start</a></p>
</body></html>`, html.EscapeString(name), html.EscapeString(link))
	return subject, text, body
}

type ConsoleSender struct {
	log      logging.Logger
	frontend string
}

func NewConsoleSender(log logging.Logger, frontend string) *ConsoleSender {
	return &ConsoleSender{log: log, frontend: frontend}
}

func (c *ConsoleSender) SendWelcome(ctx context.Context, to, name string) error {
	subject, text, _ := welcomeContent(name, c.frontend)
	c.log.Info(ctx, "email (console)", "to", to, "subject", subject, "body", text)
	return nil
}
