package mail

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olopez/tasknest/internal/config"
	"github.com/olopez/tasknest/internal/testutil"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  []byte
}

func captureSendMail(t *testing.T, sendErr error) *capturedMail {
	t.Helper()
	captured := &capturedMail{}
	orig := sendMail
	sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		captured.addr = addr
		captured.from = from
		captured.to = to
		captured.msg = msg
		return sendErr
	}
	t.Cleanup(func() { sendMail = orig })
	return captured
}

func newTestDispatcher() *SMTPDispatcher {
	cfg := config.SMTP{Host: "mail.example.com", Port: 2525, From: "no-reply@tasknest.local"}
	return NewSMTPDispatcher(cfg, "https://app.example.com", testutil.MakeNoopLogger())
}

func TestSMTPDispatcher_SendVerificationEmail(t *testing.T) {
	captured := captureSendMail(t, nil)
	d := newTestDispatcher()

	err := d.SendVerificationEmail(context.Background(), "alice@x.com", "alice1", "tok-123")
	require.NoError(t, err)

	assert.Equal(t, "mail.example.com:2525", captured.addr)
	assert.Equal(t, "no-reply@tasknest.local", captured.from)
	assert.Equal(t, []string{"alice@x.com"}, captured.to)
	assert.Contains(t, string(captured.msg), "Subject: Verify your email - tasknest")
	assert.Contains(t, string(captured.msg), "https://app.example.com/verify-email?token=tok-123")
	assert.Contains(t, string(captured.msg), "alice1")
}

func TestSMTPDispatcher_SendPasswordResetEmail(t *testing.T) {
	captured := captureSendMail(t, nil)
	d := newTestDispatcher()

	err := d.SendPasswordResetEmail(context.Background(), "alice@x.com", "alice1", "tok-456")
	require.NoError(t, err)

	assert.Contains(t, string(captured.msg), "Subject: Password reset instructions - tasknest")
	assert.Contains(t, string(captured.msg), "https://app.example.com/reset-password?token=tok-456")
	assert.Contains(t, string(captured.msg), "expires in one hour")
}

func TestSMTPDispatcher_RelayError(t *testing.T) {
	captureSendMail(t, assert.AnError)
	d := newTestDispatcher()

	err := d.SendVerificationEmail(context.Background(), "alice@x.com", "alice1", "tok-123")
	require.Error(t, err)
}

func TestSMTPDispatcher_TokenEscaping(t *testing.T) {
	captured := captureSendMail(t, nil)
	d := newTestDispatcher()

	err := d.SendVerificationEmail(context.Background(), "alice@x.com", "alice1", "a b&c")
	require.NoError(t, err)
	assert.Contains(t, string(captured.msg), "token=a+b%26c")
}
