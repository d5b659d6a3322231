package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"net/url"

	"github.com/olopez/tasknest/internal/config"
	"github.com/olopez/tasknest/internal/logger"
	"github.com/olopez/tasknest/internal/model"
)

var _ model.Dispatcher = (*SMTPDispatcher)(nil)

// sendMail is a seam for testing message delivery.
var sendMail = smtp.SendMail

const verifyEmailTemplate = `<h2>Hi {{.Username}},</h2>
<p>Welcome to tasknest. Please confirm your email address by following the link below:</p>
<p><a href="{{.Link}}">Verify your email</a></p>
<p>If you did not create this account, you can ignore this message.</p>`

const resetPasswordTemplate = `<h2>Hi {{.Username}},</h2>
<p>We received a request to reset your password. Follow the link below to choose a new one:</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>The link expires in one hour. If you did not request a reset, you can ignore this message.</p>`

type templateContext struct {
	Username string
	Link     string
}

// SMTPDispatcher sends transactional email through an SMTP relay. Links
// point at the frontend, which calls back into the API with the token.
type SMTPDispatcher struct {
	cfg         config.SMTP
	frontendURL string
	verify      *template.Template
	reset       *template.Template
	logger      *logger.Logger
}

// NewSMTPDispatcher creates a dispatcher for the given relay and frontend
// base URL.
func NewSMTPDispatcher(cfg config.SMTP, frontendURL string, logger *logger.Logger) *SMTPDispatcher {
	return &SMTPDispatcher{
		cfg:         cfg,
		frontendURL: frontendURL,
		verify:      template.Must(template.New("verifyEmail").Parse(verifyEmailTemplate)),
		reset:       template.Must(template.New("resetPassword").Parse(resetPasswordTemplate)),
		logger:      logger,
	}
}

// SendVerificationEmail mails the email-verification link.
func (d *SMTPDispatcher) SendVerificationEmail(ctx context.Context, to, username, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", d.frontendURL, url.QueryEscape(token))
	return d.send(ctx, to, "Verify your email - tasknest", d.verify, templateContext{Username: username, Link: link})
}

// SendPasswordResetEmail mails the password-reset link.
func (d *SMTPDispatcher) SendPasswordResetEmail(ctx context.Context, to, username, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", d.frontendURL, url.QueryEscape(token))
	return d.send(ctx, to, "Password reset instructions - tasknest", d.reset, templateContext{Username: username, Link: link})
}

func (d *SMTPDispatcher) send(ctx context.Context, to, subject string, tmpl *template.Template, tctx templateContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, tctx); err != nil {
		return fmt.Errorf("failed to render %s template: %w", tmpl.Name(), err)
	}

	msg := buildMessage(d.cfg.From, to, subject, body.String())

	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
	var auth smtp.Auth
	if d.cfg.Username != "" {
		auth = smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	}

	if err := sendMail(addr, auth, d.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	d.logger.Debug("Mail dispatcher: message sent", "to", to, "template", tmpl.Name())
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.Bytes()
}
