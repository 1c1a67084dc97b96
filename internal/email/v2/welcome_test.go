package emailv2

import (
	"context"
	"errors"
	"testing"

	mail "github.com/go-mail/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantprov/internal/domain/repository"
)

type captureSender struct {
	to, subject, html, text string
	err                     error
}

func (c *captureSender) Send(ctx context.Context, to, subject, html, text string) error {
	c.to, c.subject, c.html, c.text = to, subject, html, text
	return c.err
}

type tenantsStub struct{ err error }

func (s tenantsStub) GetByID(ctx context.Context, id string) (*repository.Tenant, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &repository.Tenant{ID: id, Slug: "acme", Name: "Acme <Corp>"}, nil
}

func TestWelcomeNotifier_Send(t *testing.T) {
	s := &captureSender{}
	n := NewWelcomeNotifier(s, tenantsStub{}, "Portal", "https://app.example.com/login")

	require.NoError(t, n.SendWelcome(context.Background(), "a@example.com", "Ada", "T1"))
	assert.Equal(t, "a@example.com", s.to)
	assert.Equal(t, "Bienvenido a Acme <Corp>", s.subject)
	assert.Contains(t, s.text, "Tu cuenta a@example.com fue creada como admin en Acme <Corp>.")
	assert.Contains(t, s.text, "https://app.example.com/login")
	// html escapa el nombre del tenant
	assert.Contains(t, s.html, "Acme &lt;Corp&gt;")
}

func TestWelcomeNotifier_TenantLookupFailureFallsBackToID(t *testing.T) {
	s := &captureSender{}
	n := NewWelcomeNotifier(s, tenantsStub{err: repository.ErrNotFound}, "", "")

	require.NoError(t, n.SendWelcome(context.Background(), "a@example.com", "Ada", "T1"))
	assert.Equal(t, "Bienvenido a la plataforma", s.subject)
	assert.Contains(t, s.text, "en T1.")
	assert.NotContains(t, s.html, "<a href")
}

func TestWelcomeNotifier_PropagatesSenderError(t *testing.T) {
	n := NewWelcomeNotifier(&captureSender{err: errors.New("smtp down")}, nil, "", "")
	assert.Error(t, n.SendWelcome(context.Background(), "a@example.com", "Ada", "T1"))
}

func TestSMTPSender_WrapsDiagnosis(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", FromEmail: "no-reply@example.com"})
	var got *mail.Message
	s.dial = func(d *mail.Dialer, m *mail.Message) error {
		got = m
		assert.Equal(t, 587, d.Port)
		return errors.New("535 5.7.8 Username and Password not accepted")
	}

	err := s.Send(context.Background(), "a@example.com", "hi", "<p>hi</p>", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp send (auth)")
	require.NotNil(t, got)
	assert.Equal(t, []string{"a@example.com"}, got.GetHeader("To"))
}

func TestDiagnoseSMTP(t *testing.T) {
	cases := map[string]string{
		"dial tcp 10.0.0.1:587: connect: connection refused": "dial",
		"421 4.7.0 Try again later":                          "rate_limited",
		"550 5.1.1 user unknown":                             "invalid_recipient",
		"550 5.7.1 message rejected by DMARC":                "rejected",
		"something odd":                                      "unknown",
	}
	for msg, want := range cases {
		assert.Equal(t, want, DiagnoseSMTP(errors.New(msg)).Code, msg)
	}
}
